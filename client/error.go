package client

import (
	"errors"
	"net"
	"syscall"

	"github.com/adamwoolhether/rangefetch/client/wire"
)

// dialError maps a failed dial onto the wire error kinds.
func dialError(addr string, err error) error {
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		return &wire.Error{Err: wire.ErrConnection, Detail: "failed to resolve host " + addr, Cause: err}
	case wire.IsTimeout(err):
		return &wire.Error{Err: wire.ErrTimeout, Detail: "dialing " + addr, Cause: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &wire.Error{Err: wire.ErrConnection, Detail: "connection refused", Cause: err}
	default:
		return &wire.Error{Err: wire.ErrConnection, Detail: "dialing " + addr, Cause: err}
	}
}

// writeError maps a failed request write onto the wire error kinds.
func writeError(err error) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return &wire.Error{Err: wire.ErrConnection, Detail: "connection closed by server", Cause: err}
	}
	return wire.IOError("writing request", err)
}
