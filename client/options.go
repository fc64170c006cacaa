package client

import (
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	dialer       *net.Dialer
	timeout      *time.Duration
	dialTimeout  *time.Duration
	host         string
	path         string
	logResponses bool
	logger       *slog.Logger
}

// WithDialer replaces the default [net.Dialer]. Its Timeout is overridden by
// WithDialTimeout when both are given.
func WithDialer(d *net.Dialer) Option {
	return func(o *options) error {
		if d == nil {
			return errors.New("dialer must not be nil")
		}
		o.dialer = d
		return nil
	}
}

// WithTimeout sets the idle deadline applied to every read and write on the
// connection. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("dial timeout must not be negative")
		}
		o.dialTimeout = &d
		return nil
	}
}

// WithHost overrides the Host header, which defaults to the dialled address.
func WithHost(host string) Option {
	return func(o *options) error {
		if host == "" {
			return errors.New("host must not be empty")
		}
		o.host = host
		return nil
	}
}

// WithPath sets the request target. Default is "/".
func WithPath(path string) Option {
	return func(o *options) error {
		if !strings.HasPrefix(path, "/") {
			return errors.New("path must start with '/'")
		}
		o.path = path
		return nil
	}
}

// WithResponseLogging logs the status line and headers of every response.
func WithResponseLogging() Option {
	return func(o *options) error {
		o.logResponses = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
