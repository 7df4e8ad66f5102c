package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type Service struct {
	store *Store
}

func NewService(conn *sql.DB) *Service {
	return &Service{store: NewStore(conn)}
}

// Store exposes the underlying store for the ledger engine, which
// consumes it through its own narrow interface.
func (s *Service) Store() *Store { return s.store }

func (s *Service) CreateBook(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	if strings.TrimSpace(req.ISBN) == "" {
		return nil, ErrInvalid("isbn is required")
	}

	existing, err := s.store.FindByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict("book already registered: " + req.ISBN)
	}

	b := &Book{
		ISBN:        strings.TrimSpace(req.ISBN),
		Title:       req.Title,
		Author:      req.Author,
		PageCount:   req.PageCount,
		Publisher:   toNullString(req.Publisher),
		Genre:       toNullString(req.Genre),
		Language:    toNullString(req.Language),
		Description: toNullString(req.Description),
	}
	if req.PublishDate != nil && *req.PublishDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.PublishDate)
		if err != nil {
			return nil, ErrInvalid("invalid publish_date format, expected YYYY-MM-DD")
		}
		b.PublishDate = sql.NullTime{Time: parsed, Valid: true}
	}

	if err := s.store.Save(ctx, b); err != nil {
		return nil, err
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) UpdateBook(ctx context.Context, isbn string, req UpdateBookRequest) (*BookResponse, error) {
	b, err := s.store.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found: " + isbn)
	}

	b.Title = req.Title
	b.Author = req.Author
	b.PageCount = req.PageCount
	b.Publisher = toNullString(req.Publisher)
	b.Genre = toNullString(req.Genre)
	b.Language = toNullString(req.Language)
	b.Description = toNullString(req.Description)
	b.PublishDate = sql.NullTime{}
	if req.PublishDate != nil && *req.PublishDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.PublishDate)
		if err != nil {
			return nil, ErrInvalid("invalid publish_date format, expected YYYY-MM-DD")
		}
		b.PublishDate = sql.NullTime{Time: parsed, Valid: true}
	}

	aff, err := s.store.Update(ctx, b)
	if err != nil {
		return nil, err
	}
	if aff == 0 {
		return nil, ErrNotFound("book not found: " + isbn)
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) DeleteBook(ctx context.Context, isbn string) error {
	b, err := s.store.FindByISBN(ctx, isbn)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrNotFound("book not found: " + isbn)
	}
	aff, err := s.store.Delete(ctx, isbn)
	if err != nil {
		return err
	}
	if aff == 0 {
		// Exists but the conditional DELETE skipped it: still on loan.
		return ErrConflict("book has an open loan: " + isbn)
	}
	return nil
}

func (s *Service) GetBook(ctx context.Context, isbn string) (*BookResponse, error) {
	b, err := s.store.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found: " + isbn)
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

func (s *Service) ListBooks(ctx context.Context, f BookFilter) ([]BookResponse, error) {
	books, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return buildBookResponses(books), nil
}

func (s *Service) SearchBooks(ctx context.Context, term string) ([]BookResponse, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrInvalid("search term is required")
	}
	books, err := s.store.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return buildBookResponses(books), nil
}

func (s *Service) Genres(ctx context.Context) ([]string, error) {
	return s.store.Genres(ctx)
}

func (s *Service) Counts(ctx context.Context) (*CatalogCounts, error) {
	avail, err := s.store.CountByBorrowed(ctx, false)
	if err != nil {
		return nil, err
	}
	borrowed, err := s.store.CountByBorrowed(ctx, true)
	if err != nil {
		return nil, err
	}
	return &CatalogCounts{Available: avail, Borrowed: borrowed}, nil
}

// RateBook folds one rating into the running mean (1.0 - 5.0).
func (s *Service) RateBook(ctx context.Context, isbn string, rating float64) (*BookResponse, error) {
	b, err := s.store.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound("book not found: " + isbn)
	}
	if !b.AddRating(rating) {
		return nil, ErrInvalid("rating must be between 1.0 and 5.0")
	}
	if _, err := s.store.UpdateRating(ctx, isbn, b.Rating, b.RatingCount); err != nil {
		return nil, err
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

func buildBookResponses(books []Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, buildBookResponse(&books[i]))
	}
	return out
}
