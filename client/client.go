package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/adamwoolhether/rangefetch/client/wire"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultDialTimeout = 30 * time.Second
)

// Client issues single-shot exchanges against one pre-configured endpoint.
// Every call to Do opens and closes its own connection.
type Client struct {
	addr         string
	host         string
	path         string
	dialer       *net.Dialer
	timeout      time.Duration
	logResponses bool
	logger       *slog.Logger
}

// Build creates a Client for addr, which must be in host:port form.
func Build(addr string, optFns ...Option) (*Client, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, &wire.Error{Err: wire.ErrInvalidURL, Detail: addr, Cause: err}
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	c := &Client{
		addr:    addr,
		host:    addr,
		path:    "/",
		dialer:  &net.Dialer{Timeout: defaultDialTimeout},
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}

	if opts.dialer != nil {
		d := *opts.dialer
		c.dialer = &d
	}
	if opts.dialTimeout != nil {
		c.dialer.Timeout = *opts.dialTimeout
	}
	if opts.timeout != nil {
		c.timeout = *opts.timeout
	}
	if opts.host != "" {
		c.host = opts.host
	}
	if opts.path != "" {
		c.path = opts.path
	}
	if opts.logger != nil {
		c.logger = opts.logger
	}
	c.logResponses = opts.logResponses

	return c, nil
}

// Addr returns the endpoint the Client dials.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one request and reads the response until the server closes the
// connection. A nil rng requests the whole resource.
func (c *Client) Do(ctx context.Context, rng *wire.Range) (*wire.Response, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("dial: %w", ctxErr)
		}
		return nil, dialError(c.addr, err)
	}
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			c.logger.Error("failed to close connection", "error", err)
		}
	}()

	// Closing the conn is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	ic := &idleConn{Conn: conn, timeout: c.timeout}

	req := wire.Request{Path: c.path, Host: c.host, Range: rng}
	if _, err := req.WriteTo(ic); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("write: %w", ctxErr)
		}
		return nil, writeError(err)
	}

	resp, err := wire.Read(ic)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("read: %w", ctxErr)
		}
		return nil, err
	}

	if c.logResponses {
		c.logger.Info("received response", "status", resp.StatusCode, "text", resp.StatusText, "headers", resp.Header)
	}
	c.logger.Debug("exchange complete", "addr", c.addr, "range", rangeAttr(rng), "received", resp.Received(), "declared", resp.DeclaredLength)

	return resp, nil
}

func rangeAttr(rng *wire.Range) string {
	if rng == nil {
		return "whole"
	}
	return rng.String()
}

// idleConn refreshes the connection deadline before every read and write,
// so the timeout bounds each operation rather than the whole exchange.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleConn) Read(p []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(p)
}

func (c *idleConn) Write(p []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(p)
}
