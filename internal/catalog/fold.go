package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Vietnamese titles carry diacritics the operator rarely types when
// searching, so books keep a folded search_text column and queries are
// folded the same way before matching.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	// đ/Đ are letters, not combining marks, and survive NFD
	out = strings.ReplaceAll(out, "đ", "d")
	out = strings.ReplaceAll(out, "Đ", "D")
	return strings.ToLower(out)
}

func searchText(b *Book) string {
	parts := []string{b.ISBN, b.Title, b.Author}
	if b.Genre.Valid {
		parts = append(parts, b.Genre.String)
	}
	if b.Publisher.Valid {
		parts = append(parts, b.Publisher.String)
	}
	return fold(strings.Join(parts, " "))
}
