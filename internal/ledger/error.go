package ledger

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeMemberInactive  Code = "MEMBER_INACTIVE"
	CodeBookUnavailable Code = "BOOK_UNAVAILABLE"
	CodeLimitReached    Code = "LIMIT_REACHED"
	CodeDuplicateLoan   Code = "DUPLICATE_LOAN"
	CodeNoActiveLoan    Code = "NO_ACTIVE_LOAN"
	CodeAlreadyReturned Code = "ALREADY_RETURNED"
	CodeInternal        Code = "INTERNAL"
)

// DomainError lets callers branch on exactly which precondition failed
// instead of getting an undifferentiated false.
type DomainError struct {
	Code    Code
	Message string
}

func (e *DomainError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *DomainError  { return &DomainError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *DomainError { return &DomainError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *DomainError { return &DomainError{Code: CodeInternal, Message: msg} }

func ErrMemberInactive(id string) *DomainError {
	return &DomainError{Code: CodeMemberInactive, Message: "member is inactive: " + id}
}

func ErrBookUnavailable(isbn string) *DomainError {
	return &DomainError{Code: CodeBookUnavailable, Message: "book already borrowed: " + isbn}
}

func ErrLimitReached(id string, limit int) *DomainError {
	return &DomainError{Code: CodeLimitReached, Message: fmt.Sprintf("member %s reached borrow limit of %d", id, limit)}
}

func ErrDuplicateLoan(id, isbn string) *DomainError {
	return &DomainError{Code: CodeDuplicateLoan, Message: fmt.Sprintf("member %s already has an open loan for %s", id, isbn)}
}

func ErrNoActiveLoan(id, isbn string) *DomainError {
	return &DomainError{Code: CodeNoActiveLoan, Message: fmt.Sprintf("no active loan for member %s and book %s", id, isbn)}
}

func ErrAlreadyReturned(recordID int64) *DomainError {
	return &DomainError{Code: CodeAlreadyReturned, Message: fmt.Sprintf("record %d is already returned", recordID)}
}

// CodeOf extracts the domain code, CodeInternal for anything else
// (driver errors, rollback failures).
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound, CodeNoActiveLoan:
		return http.StatusNotFound
	case CodeMemberInactive, CodeBookUnavailable, CodeLimitReached, CodeDuplicateLoan, CodeAlreadyReturned:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
