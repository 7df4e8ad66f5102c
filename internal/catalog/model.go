package catalog

import (
	"database/sql"
)

// Book is one row of the books table. IsBorrowed is a projection of the
// lending ledger and is only flipped inside ledger transactions.
type Book struct {
	ISBN        string
	Title       string
	Author      string
	Publisher   sql.NullString
	PublishDate sql.NullTime
	PageCount   int
	Genre       sql.NullString
	Language    sql.NullString
	Rating      float64
	RatingCount int
	Description sql.NullString
	IsBorrowed  bool
}

// AddRating folds a new rating into the running mean. Out-of-range
// ratings are ignored.
func (b *Book) AddRating(r float64) bool {
	if r < 1.0 || r > 5.0 {
		return false
	}
	total := b.Rating * float64(b.RatingCount)
	b.RatingCount++
	b.Rating = (total + r) / float64(b.RatingCount)
	return true
}

// Search filter for catalog listings.
type BookFilter struct {
	Genre         *string
	OnlyAvailable bool
}
