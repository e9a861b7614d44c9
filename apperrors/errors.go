package apperrors

import (
	"fmt"
	"net/http"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap copies a sentinel and attaches a cause, so sentinels stay
// comparable with errors.Is on the copy.
func Wrap(sentinel *Error, err error) *Error {
	return &Error{
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Err:     err,
	}
}

// Is lets wrapped copies of a sentinel match the sentinel itself.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Common error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden      = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Checkout and cart error types
var (
	ErrEmptyCart            = New(http.StatusBadRequest, "No items selected for order", nil)
	ErrNoOrderDraft         = New(http.StatusBadRequest, "No order in progress", nil)
	ErrAgreementsIncomplete = New(http.StatusBadRequest, "All required agreements must be accepted", nil)
	ErrSubmitInFlight       = New(http.StatusConflict, "Order submission already in progress", nil)
	ErrInvalidQuantity      = New(http.StatusBadRequest, "Quantity must be at least 1", nil)
)

// Session error types
var (
	ErrSessionRequired = New(http.StatusUnauthorized, "Sign in required", nil)
	ErrSessionExpired  = New(http.StatusUnauthorized, "Session expired", nil)
)
