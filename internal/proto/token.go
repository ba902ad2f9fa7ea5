package proto

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type tokenJSON struct {
	Value     string          `json:"value"`
	ExpiresAt json.RawMessage `json:"expires_at"`
}

// MarshalJSON writes ExpiresAt in the protobuf JSON form (an RFC 3339 string).
func (t Token) MarshalJSON() ([]byte, error) {
	exp := json.RawMessage("null")
	if t.ExpiresAt != nil {
		b, err := protojson.Marshal(t.ExpiresAt)
		if err != nil {
			return nil, err
		}
		exp = b
	}
	return json.Marshal(tokenJSON{Value: t.Value, ExpiresAt: exp})
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var raw tokenJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Value = raw.Value
	t.ExpiresAt = nil
	if len(raw.ExpiresAt) == 0 || string(raw.ExpiresAt) == "null" {
		return nil
	}

	ts := &timestamppb.Timestamp{}
	if err := protojson.Unmarshal(raw.ExpiresAt, ts); err != nil {
		return err
	}
	t.ExpiresAt = ts
	return nil
}
