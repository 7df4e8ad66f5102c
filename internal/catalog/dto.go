package catalog

import (
	"database/sql"
	"time"
)

type CreateBookRequest struct {
	ISBN        string  `json:"isbn" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	Publisher   *string `json:"publisher,omitempty"`
	// "2006-01-02" (DATE)
	PublishDate *string `json:"publish_date,omitempty"`
	PageCount   int     `json:"page_count"`
	Genre       *string `json:"genre,omitempty"`
	Language    *string `json:"language,omitempty"`
	Description *string `json:"description,omitempty"`
}

type UpdateBookRequest struct {
	Title       string  `json:"title" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	Publisher   *string `json:"publisher,omitempty"`
	PublishDate *string `json:"publish_date,omitempty"`
	PageCount   int     `json:"page_count"`
	Genre       *string `json:"genre,omitempty"`
	Language    *string `json:"language,omitempty"`
	Description *string `json:"description,omitempty"`
}

type RateBookRequest struct {
	Rating float64 `json:"rating" binding:"required"`
}

type BookResponse struct {
	ISBN        string     `json:"isbn"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Publisher   *string    `json:"publisher,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	PageCount   int        `json:"page_count"`
	Genre       *string    `json:"genre,omitempty"`
	Language    *string    `json:"language,omitempty"`
	Rating      float64    `json:"rating"`
	RatingCount int        `json:"rating_count"`
	Description *string    `json:"description,omitempty"`
	IsBorrowed  bool       `json:"is_borrowed"`
}

type CatalogCounts struct {
	Available int `json:"available"`
	Borrowed  int `json:"borrowed"`
}

func buildBookResponse(b *Book) BookResponse {
	resp := BookResponse{
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		PageCount:   b.PageCount,
		Rating:      b.Rating,
		RatingCount: b.RatingCount,
		IsBorrowed:  b.IsBorrowed,
	}
	if b.Publisher.Valid {
		v := b.Publisher.String
		resp.Publisher = &v
	}
	if b.PublishDate.Valid {
		v := b.PublishDate.Time
		resp.PublishDate = &v
	}
	if b.Genre.Valid {
		v := b.Genre.String
		resp.Genre = &v
	}
	if b.Language.Valid {
		v := b.Language.String
		resp.Language = &v
	}
	if b.Description.Valid {
		v := b.Description.String
		resp.Description = &v
	}
	return resp
}

func toNullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
