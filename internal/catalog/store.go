package catalog

import (
	"context"
	"database/sql"
	"strings"

	"thuvien-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const bookColumns = `isbn, title, author, publisher, publish_date, page_count, genre, language, rating, rating_count, description, is_borrowed`

func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	var b Book
	err := row.Scan(
		&b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.PublishDate, &b.PageCount,
		&b.Genre, &b.Language, &b.Rating, &b.RatingCount, &b.Description, &b.IsBorrowed,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Save(ctx context.Context, b *Book) error {
	const q = `
	INSERT INTO books
	(isbn, title, author, publisher, publish_date, page_count, genre, language, rating, rating_count, description, search_text, is_borrowed)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE)`
	_, err := s.db.ExecContext(ctx, q,
		b.ISBN, b.Title, b.Author, b.Publisher, b.PublishDate, b.PageCount,
		b.Genre, b.Language, b.Rating, b.RatingCount, b.Description, searchText(b),
	)
	return err
}

// Update rewrites the descriptive fields. is_borrowed is excluded on
// purpose: only ledger transactions may flip it.
func (s *Store) Update(ctx context.Context, b *Book) (int64, error) {
	const q = `
	UPDATE books SET
	title=?, author=?, publisher=?, publish_date=?, page_count=?, genre=?, language=?, rating=?, rating_count=?, description=?, search_text=?
	WHERE isbn=?`
	res, err := s.db.ExecContext(ctx, q,
		b.Title, b.Author, b.Publisher, b.PublishDate, b.PageCount,
		b.Genre, b.Language, b.Rating, b.RatingCount, b.Description, searchText(b),
		b.ISBN,
	)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// Delete refuses to remove a borrowed book; the ledger still references it.
func (s *Store) Delete(ctx context.Context, isbn string) (int64, error) {
	const q = `DELETE FROM books WHERE isbn = ? AND is_borrowed = FALSE`
	res, err := s.db.ExecContext(ctx, q, isbn)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// FindByISBN returns (nil, nil) when the book does not exist.
func (s *Store) FindByISBN(ctx context.Context, isbn string) (*Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (s *Store) List(ctx context.Context, f BookFilter) ([]Book, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + bookColumns + ` FROM books WHERE 1=1`)
	args := []any{}
	if f.Genre != nil {
		sb.WriteString(` AND LOWER(genre) = LOWER(?)`)
		args = append(args, *f.Genre)
	}
	if f.OnlyAvailable {
		sb.WriteString(` AND is_borrowed = FALSE`)
	}
	sb.WriteString(` ORDER BY title`)
	return s.queryBooks(ctx, sb.String(), args...)
}

// Search matches a diacritic-folded term against the folded search_text.
func (s *Store) Search(ctx context.Context, term string) ([]Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE search_text LIKE ? ORDER BY title`
	return s.queryBooks(ctx, q, "%"+fold(term)+"%")
}

func (s *Store) queryBooks(ctx context.Context, q string, args ...any) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) Genres(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT genre FROM books WHERE genre IS NOT NULL AND genre <> '' ORDER BY genre`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) CountByBorrowed(ctx context.Context, borrowed bool) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books WHERE is_borrowed = ?`, borrowed).Scan(&n)
	return n, err
}

func (s *Store) UpdateRating(ctx context.Context, isbn string, rating float64, count int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE books SET rating = ?, rating_count = ? WHERE isbn = ?`, rating, count, isbn)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// SetBorrowed flips the borrowed flag only when it currently holds the
// opposite value, and reports the rows affected. Running this inside the
// ledger transaction is what keeps two concurrent borrows of one book
// from both committing.
func (s *Store) SetBorrowed(ctx context.Context, q db.DBTX, isbn string, borrowed bool) (int64, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE books SET is_borrowed = ? WHERE isbn = ? AND is_borrowed = ?`,
		borrowed, isbn, !borrowed,
	)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
