package ledger

import (
	"database/sql"
	"time"
)

type BorrowRequest struct {
	MemberID string  `json:"member_id" binding:"required"`
	BookISBN string  `json:"book_isbn" binding:"required"`
	Notes    *string `json:"notes,omitempty"`
}

type ReturnRequest struct {
	MemberID string `json:"member_id" binding:"required"`
	BookISBN string `json:"book_isbn" binding:"required"`
}

type ExtendRequest struct {
	AdditionalDays int `json:"additional_days" binding:"required"`
}

type LoanResponse struct {
	RecordID   int64      `json:"record_id"`
	MemberID   string     `json:"member_id"`
	BookISBN   string     `json:"book_isbn"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	IsReturned bool       `json:"is_returned"`
	FineAmount float64    `json:"fine_amount"`

	// Whole days until due for an open loan, negative once past due.
	// Unset on single-record responses and closed loans.
	DaysUntilDue *int    `json:"days_until_due,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

type StatisticsResponse struct {
	ActiveLoans  int       `json:"active_loans"`
	OverdueLoans int       `json:"overdue_loans"`
	TotalFines   float64   `json:"total_fines"`
	AsOf         time.Time `json:"as_of"`
}

type TotalFineResponse struct {
	MemberID  string  `json:"member_id"`
	TotalFine float64 `json:"total_fine"`
}

func buildLoanResponse(r *BorrowRecord) LoanResponse {
	resp := LoanResponse{
		RecordID:   r.RecordID,
		MemberID:   r.MemberID,
		BookISBN:   r.BookISBN,
		BorrowDate: r.BorrowDate,
		DueDate:    r.DueDate,
		IsReturned: r.IsReturned,
		FineAmount: r.FineAmount,
	}
	if r.ReturnDate.Valid {
		v := r.ReturnDate.Time
		resp.ReturnDate = &v
	}
	if r.Notes.Valid {
		v := r.Notes.String
		resp.Notes = &v
	}
	return resp
}

// buildLoanResponsesAt annotates open records with their due countdown
// as of the given instant.
func buildLoanResponsesAt(recs []BorrowRecord, asOf time.Time) []LoanResponse {
	out := make([]LoanResponse, 0, len(recs))
	for i := range recs {
		resp := buildLoanResponse(&recs[i])
		if !recs[i].IsReturned {
			d := DaysUntilDue(&recs[i], asOf)
			resp.DaysUntilDue = &d
		}
		out = append(out, resp)
	}
	return out
}

func toNullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
