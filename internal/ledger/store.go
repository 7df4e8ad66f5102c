package ledger

import (
	"context"
	"database/sql"
	"time"

	"thuvien-backend/internal/platform/db"
)

// Store owns borrow_records. Every mutating method takes a db.DBTX so
// the service can run it inside the borrow/return transaction.
type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const recordColumns = `record_id, member_id, book_isbn, borrow_date, due_date, return_date, is_returned, fine_amount, notes`

func scanRecord(row interface{ Scan(...any) error }) (*BorrowRecord, error) {
	var r BorrowRecord
	err := row.Scan(
		&r.RecordID, &r.MemberID, &r.BookISBN, &r.BorrowDate, &r.DueDate,
		&r.ReturnDate, &r.IsReturned, &r.FineAmount, &r.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) Insert(ctx context.Context, q db.DBTX, r *BorrowRecord) error {
	const stmt = `
	INSERT INTO borrow_records
	(member_id, book_isbn, borrow_date, due_date, is_returned, fine_amount, notes)
	VALUES (?, ?, ?, ?, FALSE, 0, ?)`
	res, err := q.ExecContext(ctx, stmt, r.MemberID, r.BookISBN, r.BorrowDate, r.DueDate, r.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.RecordID = id
	return nil
}

// FindOpen returns the single open record for (member, book), or (nil, nil).
func (s *Store) FindOpen(ctx context.Context, q db.DBTX, memberID, isbn string) (*BorrowRecord, error) {
	const stmt = `
	SELECT ` + recordColumns + ` FROM borrow_records
	WHERE member_id = ? AND book_isbn = ? AND is_returned = FALSE
	ORDER BY borrow_date DESC LIMIT 1`
	r, err := scanRecord(q.QueryRowContext(ctx, stmt, memberID, isbn))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *Store) FindByID(ctx context.Context, q db.DBTX, recordID int64) (*BorrowRecord, error) {
	const stmt = `SELECT ` + recordColumns + ` FROM borrow_records WHERE record_id = ?`
	r, err := scanRecord(q.QueryRowContext(ctx, stmt, recordID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (s *Store) CountOpenByMember(ctx context.Context, q db.DBTX, memberID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE member_id = ? AND is_returned = FALSE`,
		memberID).Scan(&n)
	return n, err
}

// MarkReturned closes an open record. The is_returned guard makes the
// close idempotent-safe: a record can only leave OPEN once.
func (s *Store) MarkReturned(ctx context.Context, q db.DBTX, recordID int64, returnDate time.Time, fine float64) (int64, error) {
	const stmt = `
	UPDATE borrow_records
	SET return_date = ?, is_returned = TRUE, fine_amount = ?
	WHERE record_id = ? AND is_returned = FALSE`
	res, err := q.ExecContext(ctx, stmt, returnDate, fine, recordID)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

func (s *Store) UpdateDueDate(ctx context.Context, q db.DBTX, recordID int64, due time.Time) (int64, error) {
	const stmt = `UPDATE borrow_records SET due_date = ? WHERE record_id = ? AND is_returned = FALSE`
	res, err := q.ExecContext(ctx, stmt, due, recordID)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// ---- Queries (no transaction needed) ----

func (s *Store) ListOpen(ctx context.Context) ([]BorrowRecord, error) {
	const stmt = `
	SELECT ` + recordColumns + ` FROM borrow_records
	WHERE is_returned = FALSE
	ORDER BY borrow_date DESC`
	return s.queryRecords(ctx, stmt)
}

func (s *Store) ListOpenByMember(ctx context.Context, memberID string) ([]BorrowRecord, error) {
	const stmt = `
	SELECT ` + recordColumns + ` FROM borrow_records
	WHERE member_id = ? AND is_returned = FALSE
	ORDER BY borrow_date DESC`
	return s.queryRecords(ctx, stmt, memberID)
}

func (s *Store) ListByMember(ctx context.Context, memberID string) ([]BorrowRecord, error) {
	const stmt = `
	SELECT ` + recordColumns + ` FROM borrow_records
	WHERE member_id = ?
	ORDER BY borrow_date DESC`
	return s.queryRecords(ctx, stmt, memberID)
}

// ListOverdue orders ascending by due date so the longest-overdue loan
// comes first.
func (s *Store) ListOverdue(ctx context.Context, asOf time.Time) ([]BorrowRecord, error) {
	const stmt = `
	SELECT ` + recordColumns + ` FROM borrow_records
	WHERE is_returned = FALSE AND due_date < ?
	ORDER BY due_date ASC`
	return s.queryRecords(ctx, stmt, asOf)
}

func (s *Store) queryRecords(ctx context.Context, stmt string, args ...any) ([]BorrowRecord, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BorrowRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) TotalFineByMember(ctx context.Context, memberID string) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(fine_amount), 0) FROM borrow_records WHERE member_id = ? AND fine_amount > 0`,
		memberID).Scan(&total)
	return total, err
}

func (s *Store) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE is_returned = FALSE`).Scan(&n)
	return n, err
}

func (s *Store) CountOverdue(ctx context.Context, asOf time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE is_returned = FALSE AND due_date < ?`, asOf).Scan(&n)
	return n, err
}

func (s *Store) SumFines(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(fine_amount), 0) FROM borrow_records WHERE fine_amount > 0`).Scan(&total)
	return total, err
}
