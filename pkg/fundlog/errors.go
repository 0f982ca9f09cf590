package fundlog

import (
	"errors"
	"fmt"
)

// ErrorCode classifies errors returned by Core.
type ErrorCode string

const (
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeDatabase          ErrorCode = "DATABASE_ERROR"
	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// Error is a structured error with a classification code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps err with a classification code and context.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsErrorCode reports whether any error in err's chain carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Quote acquisition errors. Use errors.Is to test a *FetchError against them.
var (
	// ErrQuoteNotFound means the source answered but the page carried no price.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrSourceUnavailable covers transport failures, bad status codes and
	// undecodable pages.
	ErrSourceUnavailable = errors.New("price source unavailable")
	// ErrMalformedNumber is returned by the locale parsers.
	ErrMalformedNumber = errors.New("malformed number")
)

// FetchErrorKind tells apart the two ways a single fund fetch can fail.
type FetchErrorKind int

const (
	FetchUnavailable FetchErrorKind = iota + 1
	FetchNotFound
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchUnavailable:
		return "unavailable"
	case FetchNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

func (k FetchErrorKind) sentinel() error {
	if k == FetchNotFound {
		return ErrQuoteNotFound
	}
	return ErrSourceUnavailable
}

// FetchError is returned by a QuoteFetcher for one fund code.
type FetchError struct {
	Code string
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Code, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Code, e.Kind)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}
