package ledger

import "time"

// Overdue comparison point: the return date for a closed record, the
// supplied "as of" instant for an open one. Keeping the time explicit
// keeps fine computation reproducible without a wall clock.
func comparisonInstant(rec *BorrowRecord, asOf time.Time) time.Time {
	if rec.IsReturned && rec.ReturnDate.Valid {
		return rec.ReturnDate.Time
	}
	return asOf
}

func IsOverdue(rec *BorrowRecord, asOf time.Time) bool {
	return comparisonInstant(rec, asOf).After(rec.DueDate)
}

// CalculateFine charges finePerDay per whole day overdue. The division
// truncates: 23h59m past due is zero whole days and owes nothing.
func CalculateFine(rec *BorrowRecord, asOf time.Time, finePerDay float64) float64 {
	if !IsOverdue(rec, asOf) {
		return 0
	}
	overdueDays := comparisonInstant(rec, asOf).Sub(rec.DueDate) / (24 * time.Hour)
	fine := float64(overdueDays) * finePerDay
	if fine < 0 {
		return 0
	}
	return fine
}

// DaysUntilDue is negative once the due date has passed (whole days).
func DaysUntilDue(rec *BorrowRecord, asOf time.Time) int {
	return int(rec.DueDate.Sub(asOf) / (24 * time.Hour))
}
