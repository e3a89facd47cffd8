package repository

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

var ErrInvalidCursor = errors.New("invalid continuation token")

// Cursor is the native pagination position: the (upload_timestamp,
// image_id) pair of the last row a page ended on. Its encoded form is
// opaque to clients and must round-trip exactly.
type Cursor struct {
	Timestamp int64  `json:"ts"`
	ImageID   string `json:"id"`
}

func EncodeCursor(c Cursor) string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

func DecodeCursor(token string) (Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	if c.ImageID == "" {
		return Cursor{}, ErrInvalidCursor
	}
	return c, nil
}
