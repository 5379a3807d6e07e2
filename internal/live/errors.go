package live

import (
	"errors"
	"fmt"
)

// Error classes. Wire codes refine these per failure site; the class decides
// the fallback code when nothing more specific applies.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrStorage      = errors.New("storage failure")
)

// Error carries the wire code and client-facing message for one failure.
type Error struct {
	Class   error
	Code    string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func (e *Error) Unwrap() error { return e.Class }

func errf(class error, code, format string, args ...any) *Error {
	return &Error{Class: class, Code: code, Message: fmt.Sprintf(format, args...)}
}

// wireError resolves any handler error to the (code, message) pair of the
// error event answered to the originating connection.
func wireError(err error) (string, string) {
	var le *Error
	if errors.As(err, &le) {
		return le.Code, le.Message
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "game_not_found", err.Error()
	case errors.Is(err, ErrInvalidState):
		return "invalid_state", err.Error()
	case errors.Is(err, ErrValidation):
		return "invalid_payload", err.Error()
	default:
		return "storage_error", "storage operation failed"
	}
}
