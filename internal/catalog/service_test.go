package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thuvien-backend/internal/platform/db"
)

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	conn, err := db.Connect(db.DatabaseConfig{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn, "sqlite3"))
	return NewService(conn), conn
}

func codeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

func TestCreateAndGetBook(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, CreateBookRequest{
		ISBN:        "9786041034792",
		Title:       "Đắc Nhân Tâm",
		Author:      "Dale Carnegie",
		Publisher:   strPtr("NXB Tổng Hợp"),
		PublishDate: strPtr("2016-01-01"),
		PageCount:   320,
		Genre:       strPtr("Kỹ năng sống"),
		Language:    strPtr("Tiếng Việt"),
	})
	require.NoError(t, err)
	assert.False(t, created.IsBorrowed)
	require.NotNil(t, created.PublishDate)
	assert.Equal(t, 2016, created.PublishDate.Year())

	got, err := svc.GetBook(ctx, "9786041034792")
	require.NoError(t, err)
	assert.Equal(t, "Đắc Nhân Tâm", got.Title)
	require.NotNil(t, got.Publisher)
	assert.Equal(t, "NXB Tổng Hợp", *got.Publisher)

	// duplicate ISBN
	_, err = svc.CreateBook(ctx, CreateBookRequest{ISBN: "9786041034792", Title: "x", Author: "y"})
	assert.Equal(t, CodeConflict, codeOf(err))

	// bad date format
	_, err = svc.CreateBook(ctx, CreateBookRequest{
		ISBN: "9786040000001", Title: "x", Author: "y", PublishDate: strPtr("01/02/2016"),
	})
	assert.Equal(t, CodeInvalidArgument, codeOf(err))

	_, err = svc.GetBook(ctx, "missing")
	assert.Equal(t, CodeNotFound, codeOf(err))
}

func TestUpdateBook(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookRequest{ISBN: "111", Title: "Cũ", Author: "A"})
	require.NoError(t, err)

	updated, err := svc.UpdateBook(ctx, "111", UpdateBookRequest{
		Title: "Mới", Author: "B", Genre: strPtr("Văn học"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mới", updated.Title)
	require.NotNil(t, updated.Genre)
	assert.Equal(t, "Văn học", *updated.Genre)

	_, err = svc.UpdateBook(ctx, "missing", UpdateBookRequest{Title: "x", Author: "y"})
	assert.Equal(t, CodeNotFound, codeOf(err))
}

func TestDeleteBookBlockedWhileBorrowed(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookRequest{ISBN: "111", Title: "Sách", Author: "A"})
	require.NoError(t, err)

	aff, err := svc.Store().SetBorrowed(ctx, conn, "111", true)
	require.NoError(t, err)
	require.EqualValues(t, 1, aff)

	err = svc.DeleteBook(ctx, "111")
	assert.Equal(t, CodeConflict, codeOf(err))

	aff, err = svc.Store().SetBorrowed(ctx, conn, "111", false)
	require.NoError(t, err)
	require.EqualValues(t, 1, aff)

	require.NoError(t, svc.DeleteBook(ctx, "111"))
	assert.Equal(t, CodeNotFound, codeOf(svc.DeleteBook(ctx, "111")))
}

func TestSetBorrowedIsConditional(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookRequest{ISBN: "111", Title: "Sách", Author: "A"})
	require.NoError(t, err)

	// flipping to the value already held affects no rows
	aff, err := svc.Store().SetBorrowed(ctx, conn, "111", false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, aff)

	aff, err = svc.Store().SetBorrowed(ctx, conn, "111", true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, aff)

	aff, err = svc.Store().SetBorrowed(ctx, conn, "111", true)
	require.NoError(t, err)
	assert.EqualValues(t, 0, aff)
}

func TestSearchFoldsDiacritics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []CreateBookRequest{
		{ISBN: "111", Title: "Đắc Nhân Tâm", Author: "Dale Carnegie"},
		{ISBN: "222", Title: "Tuổi Trẻ Đáng Giá Bao Nhiêu", Author: "Rosie Nguyễn"},
		{ISBN: "333", Title: "Clean Code", Author: "Robert Martin"},
	}
	for _, req := range seed {
		_, err := svc.CreateBook(ctx, req)
		require.NoError(t, err)
	}

	books, err := svc.SearchBooks(ctx, "dac nhan")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "111", books[0].ISBN)

	// accented input matches too
	books, err = svc.SearchBooks(ctx, "Tuổi Trẻ")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "222", books[0].ISBN)

	// author search
	books, err = svc.SearchBooks(ctx, "nguyen")
	require.NoError(t, err)
	require.Len(t, books, 1)

	books, err = svc.SearchBooks(ctx, "khong co")
	require.NoError(t, err)
	assert.Empty(t, books)

	_, err = svc.SearchBooks(ctx, "  ")
	assert.Equal(t, CodeInvalidArgument, codeOf(err))
}

func TestListBooksFilters(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	for _, req := range []CreateBookRequest{
		{ISBN: "111", Title: "A", Author: "x", Genre: strPtr("Văn học")},
		{ISBN: "222", Title: "B", Author: "x", Genre: strPtr("Văn học")},
		{ISBN: "333", Title: "C", Author: "x", Genre: strPtr("Khoa học")},
	} {
		_, err := svc.CreateBook(ctx, req)
		require.NoError(t, err)
	}
	_, err := svc.Store().SetBorrowed(ctx, conn, "222", true)
	require.NoError(t, err)

	genre := "Văn học"
	books, err := svc.ListBooks(ctx, BookFilter{Genre: &genre})
	require.NoError(t, err)
	assert.Len(t, books, 2)

	books, err = svc.ListBooks(ctx, BookFilter{Genre: &genre, OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "111", books[0].ISBN)

	genres, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Khoa học", "Văn học"}, genres)

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Available)
	assert.Equal(t, 1, counts.Borrowed)
}

func TestRateBook(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, CreateBookRequest{ISBN: "111", Title: "Sách", Author: "A"})
	require.NoError(t, err)

	r, err := svc.RateBook(ctx, "111", 4.0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, r.Rating)
	assert.Equal(t, 1, r.RatingCount)

	r, err = svc.RateBook(ctx, "111", 5.0)
	require.NoError(t, err)
	assert.Equal(t, 4.5, r.Rating)
	assert.Equal(t, 2, r.RatingCount)

	// the mean is persisted, not just returned
	got, err := svc.GetBook(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.Rating)

	_, err = svc.RateBook(ctx, "111", 5.5)
	assert.Equal(t, CodeInvalidArgument, codeOf(err))
	_, err = svc.RateBook(ctx, "111", 0.5)
	assert.Equal(t, CodeInvalidArgument, codeOf(err))
	_, err = svc.RateBook(ctx, "missing", 3.0)
	assert.Equal(t, CodeNotFound, codeOf(err))
}
