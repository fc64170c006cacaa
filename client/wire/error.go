package wire

import (
	"errors"
	"fmt"
	"net"
	"os"
)

var (
	// ErrConnection reports a refused connection, a failed resolution or a
	// peer that went away while the request was written.
	ErrConnection = errors.New("connection error")
	// ErrTimeout reports an I/O operation that exceeded its deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrInvalidURL reports an endpoint that cannot be dialled as host:port.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidResponse reports a structural violation of the status line,
	// header block or Content-Length value.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrIO is the catch-all for other I/O failures.
	ErrIO = errors.New("i/o error")
)

// Error carries one of the sentinel kinds above together with the input
// fragment or operation that caused it.
type Error struct {
	Err    error
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Cause != nil:
		return fmt.Sprintf("%v: %s: %v", e.Err, e.Detail, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%v: %v", e.Err, e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("%v: %s", e.Err, e.Detail)
	default:
		return e.Err.Error()
	}
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func invalidResponse(format string, args ...any) *Error {
	return &Error{Err: ErrInvalidResponse, Detail: fmt.Sprintf(format, args...)}
}

// IOError classifies err as ErrTimeout when it is a deadline failure and as
// ErrIO otherwise. op names the operation for the message.
func IOError(op string, err error) *Error {
	if IsTimeout(err) {
		return &Error{Err: ErrTimeout, Detail: op, Cause: err}
	}
	return &Error{Err: ErrIO, Detail: op, Cause: err}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
