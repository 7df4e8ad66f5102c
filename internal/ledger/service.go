package ledger

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"thuvien-backend/internal/catalog"
	"thuvien-backend/internal/members"
	"thuvien-backend/internal/platform/db"
)

// Catalog is the slice of the book store the ledger engine needs: a
// lookup and the conditional borrowed-flag flip executed inside the
// engine's transaction.
type Catalog interface {
	FindByISBN(ctx context.Context, isbn string) (*catalog.Book, error)
	SetBorrowed(ctx context.Context, q db.DBTX, isbn string, borrowed bool) (int64, error)
}

// Directory is the slice of the member store the engine needs.
type Directory interface {
	FindByID(ctx context.Context, id string) (*members.Member, error)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Whole-second UTC instants; overdue comparisons assume one canonical
// precision across drivers.
func (realClock) Now() time.Time { return time.Now().UTC().Truncate(time.Second) }

// Policy is the lending policy the engine enforces.
type Policy struct {
	LoanPeriodDays int
	FinePerDay     float64
	Quota          members.Quota
}

func DefaultPolicy() Policy {
	return Policy{LoanPeriodDays: 14, FinePerDay: 5000, Quota: members.DefaultQuota()}
}

// Service is the ledger engine. It owns borrow_records exclusively and
// keeps books.is_borrowed in lockstep with the existence of an open
// record, inside one transaction per borrow/return.
type Service struct {
	db     *sql.DB
	store  *Store
	books  Catalog
	dir    Directory
	policy Policy
	clock  Clock
}

func NewService(conn *sql.DB, books Catalog, dir Directory, policy Policy) *Service {
	if policy.LoanPeriodDays <= 0 {
		policy = DefaultPolicy()
	}
	return &Service{
		db:     conn,
		store:  NewStore(conn),
		books:  books,
		dir:    dir,
		policy: policy,
		clock:  realClock{},
	}
}

// Borrow opens a loan. Preconditions are checked in order and the first
// failure wins: member exists and is active, book exists, book not
// borrowed, member under quota. The ledger insert and the flag flip
// commit together or not at all; the conditional flag flip inside the
// transaction is what decides a race between two borrowers.
func (s *Service) Borrow(ctx context.Context, req BorrowRequest) (*LoanResponse, error) {
	memberID := strings.TrimSpace(req.MemberID)
	isbn := strings.TrimSpace(req.BookISBN)
	if memberID == "" || isbn == "" {
		return nil, ErrInvalid("member_id and book_isbn are required")
	}

	member, err := s.dir.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound("member not found: " + memberID)
	}
	if !member.IsActive {
		return nil, ErrMemberInactive(memberID)
	}

	book, err := s.books.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrNotFound("book not found: " + isbn)
	}
	if book.IsBorrowed {
		return nil, ErrBookUnavailable(isbn)
	}

	limit := s.policy.Quota.Limit(member.Category)
	openCount, err := s.store.CountOpenByMember(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	if openCount >= limit {
		return nil, ErrLimitReached(memberID, limit)
	}

	now := s.clock.Now()
	rec := &BorrowRecord{
		MemberID:   memberID,
		BookISBN:   isbn,
		BorrowDate: now,
		DueDate:    now.AddDate(0, 0, s.policy.LoanPeriodDays),
		Notes:      toNullString(req.Notes),
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		// The flag flip only succeeds while is_borrowed is still false,
		// so of two concurrent borrows exactly one sees a row affected.
		aff, err := s.books.SetBorrowed(ctx, tx, isbn, true)
		if err != nil {
			return err
		}
		if aff == 0 {
			return ErrBookUnavailable(isbn)
		}

		// Re-validate under the transaction's isolation.
		if open, err := s.store.FindOpen(ctx, tx, memberID, isbn); err != nil {
			return err
		} else if open != nil {
			return ErrDuplicateLoan(memberID, isbn)
		}
		if n, err := s.store.CountOpenByMember(ctx, tx, memberID); err != nil {
			return err
		} else if n >= limit {
			return ErrLimitReached(memberID, limit)
		}

		return s.store.Insert(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] loan opened: record=%d member=%s book=%s due=%s",
		rec.RecordID, memberID, isbn, rec.DueDate.Format(time.RFC3339))
	resp := buildLoanResponse(rec)
	return &resp, nil
}

// Return closes the open loan for (member, book), computes the fine as
// of now and flips the book back to available, all in one transaction.
func (s *Service) Return(ctx context.Context, req ReturnRequest) (*LoanResponse, error) {
	memberID := strings.TrimSpace(req.MemberID)
	isbn := strings.TrimSpace(req.BookISBN)
	if memberID == "" || isbn == "" {
		return nil, ErrInvalid("member_id and book_isbn are required")
	}

	now := s.clock.Now()
	var rec *BorrowRecord

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		rec, err = s.store.FindOpen(ctx, tx, memberID, isbn)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrNoActiveLoan(memberID, isbn)
		}

		rec.ReturnDate = sql.NullTime{Time: now, Valid: true}
		rec.IsReturned = true
		rec.FineAmount = CalculateFine(rec, now, s.policy.FinePerDay)

		aff, err := s.store.MarkReturned(ctx, tx, rec.RecordID, now, rec.FineAmount)
		if err != nil {
			return err
		}
		if aff == 0 {
			return ErrAlreadyReturned(rec.RecordID)
		}

		aff, err = s.books.SetBorrowed(ctx, tx, isbn, false)
		if err != nil {
			return err
		}
		if aff == 0 {
			// Flag and ledger diverged; roll everything back.
			return ErrInternal("book flag out of sync with ledger: " + isbn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] loan closed: record=%d member=%s book=%s fine=%.2f",
		rec.RecordID, memberID, isbn, rec.FineAmount)
	resp := buildLoanResponse(rec)
	return &resp, nil
}

// ExtendDueDate pushes an open record's due date forward. Fines already
// accrued are not recomputed until the next fine computation touches the
// record.
func (s *Service) ExtendDueDate(ctx context.Context, recordID int64, additionalDays int) (*LoanResponse, error) {
	if additionalDays <= 0 {
		return nil, ErrInvalid("additional_days must be > 0")
	}

	var rec *BorrowRecord
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		rec, err = s.store.FindByID(ctx, tx, recordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrNotFound("borrow record not found")
		}
		if rec.IsReturned {
			return ErrAlreadyReturned(recordID)
		}

		rec.DueDate = rec.DueDate.AddDate(0, 0, additionalDays)
		aff, err := s.store.UpdateDueDate(ctx, tx, recordID, rec.DueDate)
		if err != nil {
			return err
		}
		if aff == 0 {
			return ErrAlreadyReturned(recordID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := buildLoanResponse(rec)
	return &resp, nil
}

// ActiveLoans lists every open loan across all members, most recent
// first.
func (s *Service) ActiveLoans(ctx context.Context) ([]LoanResponse, error) {
	recs, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	return buildLoanResponsesAt(recs, s.clock.Now()), nil
}

// CurrentBorrows lists a member's open loans, most recent first.
func (s *Service) CurrentBorrows(ctx context.Context, memberID string) ([]LoanResponse, error) {
	recs, err := s.store.ListOpenByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return buildLoanResponsesAt(recs, s.clock.Now()), nil
}

// BorrowHistory lists all of a member's loans, open and closed, most
// recent first.
func (s *Service) BorrowHistory(ctx context.Context, memberID string) ([]LoanResponse, error) {
	recs, err := s.store.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return buildLoanResponsesAt(recs, s.clock.Now()), nil
}

// OverdueRecords lists open loans past due as of the given instant,
// longest overdue first.
func (s *Service) OverdueRecords(ctx context.Context, asOf time.Time) ([]LoanResponse, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	recs, err := s.store.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return buildLoanResponsesAt(recs, asOf), nil
}

func (s *Service) TotalFine(ctx context.Context, memberID string) (*TotalFineResponse, error) {
	total, err := s.store.TotalFineByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return &TotalFineResponse{MemberID: memberID, TotalFine: total}, nil
}

// Statistics is computed as of call time, never cached.
func (s *Service) Statistics(ctx context.Context) (*StatisticsResponse, error) {
	now := s.clock.Now()

	active, err := s.store.CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.store.CountOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	fines, err := s.store.SumFines(ctx)
	if err != nil {
		return nil, err
	}

	return &StatisticsResponse{
		ActiveLoans:  active,
		OverdueLoans: overdue,
		TotalFines:   fines,
		AsOf:         now,
	}, nil
}
