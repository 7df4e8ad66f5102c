package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT" // duplicate ISBN, delete while borrowed
	CodeInternal        Code = "INTERNAL"
)

type DomainError struct {
	Code    Code
	Message string
}

func (e *DomainError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *DomainError  { return &DomainError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *DomainError { return &DomainError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *DomainError { return &DomainError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *DomainError { return &DomainError{Code: CodeInternal, Message: msg} }

func ToHTTPStatus(err error) int {
	var de *DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Code {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
