package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the keyset position after the last item of a page, for lists
// ordered by created_at DESC, id DESC. Clients only ever see it encoded.
type Cursor struct {
	ID          string `json:"id"`
	CreatedUnix int64  `json:"created_unix,omitempty"` // millis
}

// IsZero reports whether the cursor points at the first page.
func (c Cursor) IsZero() bool { return c.ID == "" || c.CreatedUnix == 0 }

func (c Cursor) Time() time.Time { return time.UnixMilli(c.CreatedUnix).UTC() }

func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a token from a previous page. An empty token is the first page.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.ID == "" {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}

// Next builds the token for the page after the item at (id, created).
func Next(id string, created time.Time) *string {
	token, err := Encode(Cursor{ID: id, CreatedUnix: created.UnixMilli()})
	if err != nil {
		return nil
	}
	return &token
}

// Trim takes rows fetched with Limit(limit+1) and cuts them down to one page.
// The returned token is nil on the last page.
func Trim[T any](rows []T, limit int, key func(T) (string, time.Time)) ([]T, *string) {
	if limit <= 0 || len(rows) <= limit {
		return rows, nil
	}
	rows = rows[:limit]
	id, created := key(rows[limit-1])
	return rows, Next(id, created)
}

// ClampLimit keeps page sizes within bounds.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
