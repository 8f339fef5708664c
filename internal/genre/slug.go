// Package genre normalizes genre names into slugs and carries the default genre list.
package genre

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented letters and drops the combining marks: "Fantástico" -> "Fantastico".
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a genre name to a URL-safe slug.
//
//	"Science Fiction" -> "science-fiction"
//	"Sci-Fi/Fantasy"  -> "sci-fi-fantasy"
//	"Ciencia Ficción" -> "ciencia-ficcion"
//	"Sword & Sorcery" -> "sword-and-sorcery"
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err == nil {
		s = folded
	}
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	b.Grow(len(s))
	hyphen := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NormalizeName collapses runs of whitespace and trims the ends.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// aliases maps common spellings to the slug of the genre they mean.
var aliases = map[string]string{
	"sci-fi":        "science-fiction",
	"scifi":         "science-fiction",
	"sf":            "science-fiction",
	"whodunit":      "mystery",
	"ya":            "young-adult",
	"non-fiction":   "nonfiction",
	"biographies":   "biography",
	"autobiography": "biography",
}

// CanonicalSlug slugifies name and resolves well-known aliases.
func CanonicalSlug(name string) string {
	slug := Slugify(name)
	if canonical, ok := aliases[slug]; ok {
		return canonical
	}
	return slug
}
