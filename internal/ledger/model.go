package ledger

import (
	"database/sql"
	"time"
)

// BorrowRecord is one row of borrow_records: a single loan, open until
// returned and never deleted afterwards. A record is OPEN while
// IsReturned is false and terminal once it flips; nothing reopens it.
type BorrowRecord struct {
	RecordID   int64
	MemberID   string
	BookISBN   string
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate sql.NullTime
	IsReturned bool
	FineAmount float64
	Notes      sql.NullString
}
