package glitchy

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a Handler.
type Option func(*options)

type options struct {
	maxChunk     int
	seed         *uint64
	glitchRanges *bool
	logger       *slog.Logger
	tracer       trace.Tracer
}

// WithMaxChunk caps the bytes written per response. Zero means no cap.
func WithMaxChunk(n int) Option {
	return func(o *options) {
		o.maxChunk = n
	}
}

// WithSeed fixes the truncation sequence.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithGlitchRanges controls whether range responses are truncated too.
// Default is true; false makes only whole-resource responses unreliable.
func WithGlitchRanges(glitch bool) Option {
	return func(o *options) {
		o.glitchRanges = &glitch
	}
}

// WithLogger sets the request logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for per-request spans. Default is a
// no-op tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// WithAddr sets the address the server listens on. Default is ":8080".
func WithAddr(addr string) ServerOption {
	return func(o *serverOptions) {
		o.addr = addr
	}
}

// WithReadTimeout sets the maximum duration for reading the entire
// request. Default is 5s.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.readTimeout = d
	}
}

// WithWriteTimeout sets the maximum duration before timing out writes of
// the response. Default is 30s.
func WithWriteTimeout(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.writeTimeout = d
	}
}

// WithIdleTimeout sets the keep-alive idle timeout. Default is 120s.
func WithIdleTimeout(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.idleTimeout = d
	}
}

// WithShutdownTimeout bounds graceful shutdown. Default is 20s.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.shutdownTimeout = d
	}
}

// WithServerLogger sets the server lifecycle logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = logger
	}
}
