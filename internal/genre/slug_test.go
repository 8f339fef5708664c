package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Science Fiction", "science-fiction"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"  LitRPG  ", "litrpg"},
		{"Ciencia Ficción", "ciencia-ficcion"},
		{"Sword & Sorcery", "sword-and-sorcery"},
		{"---", ""},
		{"日本語", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestCanonicalSlug(t *testing.T) {
	assert.Equal(t, "science-fiction", CanonicalSlug("Sci-Fi"))
	assert.Equal(t, "science-fiction", CanonicalSlug("Science  Fiction"))
	assert.Equal(t, "poetry", CanonicalSlug("Poetry"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Science Fiction", NormalizeName("  Science \t Fiction "))
}

func TestDefaultGenres_UniqueSlugs(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range DefaultGenres {
		slug := CanonicalSlug(name)
		assert.NotEmpty(t, slug)
		assert.False(t, seen[slug], "duplicate slug %s", slug)
		seen[slug] = true
	}
}
