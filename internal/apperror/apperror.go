// Package apperror carries the error kinds the service layer reports to callers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

func Forbidden(format string, args ...any) *Error { return newf(KindForbidden, format, args...) }

func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}

func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }

// Internal wraps an unexpected storage or infrastructure failure.
func Internal(err error, format string, args ...any) *Error {
	e := newf(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides internal error details from clients.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return "internal server error"
		}
		return e.Message
	}
	return "internal server error"
}
