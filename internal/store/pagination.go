package store

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects one page of an ordered listing.
type PaginationParams struct {
	Limit  int    // Items per page.
	Cursor string // Opaque cursor from a previous page; empty for the first page.
}

// PaginatedResult is one page of a listing.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
	Total      int    `json:"total"`
}

// Validate clamps Limit into [1, MaxPageSize], defaulting to DefaultPageSize.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

// Offset decodes the cursor into a row offset.
func (p PaginationParams) Offset() (int, error) {
	key, err := DecodeCursor(p.Cursor)
	if err != nil || key == "" {
		return 0, err
	}
	raw, ok := strings.CutPrefix(key, "offset:")
	if !ok {
		return 0, fmt.Errorf("invalid cursor: %q", p.Cursor)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid cursor: %q", p.Cursor)
	}
	return n, nil
}

// NewPage builds a page from items fetched at offset, given the total row count.
func NewPage[T any](items []T, offset, total int) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	next := offset + len(items)
	page := &PaginatedResult[T]{Items: items, Total: total}
	if len(items) > 0 && next < total {
		page.HasMore = true
		page.NextCursor = EncodeCursor("offset:" + strconv.Itoa(next))
	}
	return page
}

// EncodeCursor wraps a key into an opaque cursor.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor unwraps a cursor back to its key.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}
	return string(decoded), nil
}
