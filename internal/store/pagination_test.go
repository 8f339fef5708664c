package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name          string
		input         PaginationParams
		expectedLimit int
	}{
		{"valid parameters", PaginationParams{Limit: 10}, 10},
		{"zero limit defaults", PaginationParams{Limit: 0}, DefaultPageSize},
		{"negative limit defaults", PaginationParams{Limit: -10}, DefaultPageSize},
		{"over max is capped", PaginationParams{Limit: 5000}, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.input
			params.Validate()
			assert.Equal(t, tt.expectedLimit, params.Limit)
		})
	}
}

func TestNewPage_Walk(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	limit := 5
	var seen []int

	params := PaginationParams{Limit: limit}
	for {
		offset, err := params.Offset()
		require.NoError(t, err)

		end := min(offset+limit, len(rows))
		page := NewPage(rows[offset:end], offset, len(rows))
		seen = append(seen, page.Items...)
		assert.Equal(t, len(rows), page.Total)

		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		params.Cursor = page.NextCursor
	}

	assert.Equal(t, rows, seen)
}

func TestNewPage_Empty(t *testing.T) {
	page := NewPage[string](nil, 0, 0)
	assert.NotNil(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestOffset_InvalidCursor(t *testing.T) {
	_, err := PaginationParams{Cursor: "not-valid-base64!!!"}.Offset()
	assert.Error(t, err)

	_, err = PaginationParams{Cursor: EncodeCursor("book:001")}.Offset()
	assert.Error(t, err)

	_, err = PaginationParams{Cursor: EncodeCursor("offset:-3")}.Offset()
	assert.Error(t, err)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, original := range []string{"offset:10", "session:ses-1"} {
		decoded, err := DecodeCursor(EncodeCursor(original))
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	}
	assert.Empty(t, EncodeCursor(""))
}
