package models

// SaleItem is what a seller submits when opening an auction.
type SaleItem struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ReservePrice int64  `json:"reserve_price"`
}

// Item is the full auction record. It stays in the store after the auction is
// closed; only open items are publicly listed.
type Item struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ReservePrice    int64  `json:"reserve_price"`
	HighestBid      int64  `json:"highest_bid"`
	HighestBidderID int64  `json:"highest_bidder_id"`
	OwnerID         int64  `json:"owner_id"`
	Open            bool   `json:"open"`
}

// Listing is the public projection of an Item.
type Listing struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HighestBid  int64  `json:"highest_bid"`
}

func (i *Item) Listing() Listing {
	return Listing{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		HighestBid:  i.HighestBid,
	}
}

// HasBidder reports whether any bid was accepted.
func (i *Item) HasBidder() bool {
	return i.HighestBidderID != 0
}

// Result is the outcome of closing an auction. HasWinner is false when nobody
// bid, in which case WinningEmail is empty.
type Result struct {
	WinningEmail string `json:"winning_email"`
	WinningPrice int64  `json:"winning_price"`
	HasWinner    bool   `json:"has_winner"`
}
