package models

import "time"

// Snapshot is a complete by-value copy of one replica's state.
// Version is the store's mutation counter at the time the copy was taken.
type Snapshot struct {
	Version    uint64           `json:"version"`
	Origin     string           `json:"origin"`
	TakenAt    time.Time        `json:"taken_at"`
	NextUserID int64            `json:"next_user_id"`
	NextItemID int64            `json:"next_item_id"`
	Users      []*User          `json:"users"`
	Items      []*Item          `json:"items"`
	Tokens     map[int64]Token  `json:"tokens"`
	Challenges map[int64]string `json:"challenges"`
	Checksum   []byte           `json:"checksum,omitempty"`
}
