package fetch

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring a [Fetcher] via [New].
//
// WithPolicy selects the range policy; the default is [Remainder].
// WithMaxStalls bounds consecutive cycles that fail to move the offset.
// WithProgress registers a callback invoked after every cycle.
// WithProgressLogging logs progress at most once per second.
type Option func(*options) error

type options struct {
	policy          Policy
	logger          *slog.Logger
	tracer          trace.Tracer
	maxStalls       *int
	progressFn      ProgressFunc
	progressLogging bool
}

// ProgressFunc receives the assembled byte count and the target length.
type ProgressFunc func(assembled, total int64)

func WithPolicy(p Policy) Option {
	return func(o *options) error {
		if p == nil {
			return errors.New("policy must not be nil")
		}
		if v, ok := p.(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		o.policy = p
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithTracer records a span per run and per cycle.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// WithMaxStalls ends the run after n consecutive cycles that leave the
// offset unchanged. Zero retries forever.
func WithMaxStalls(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.New("max stalls must not be negative")
		}
		o.maxStalls = &n
		return nil
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(o *options) error {
		o.progressFn = fn
		return nil
	}
}

func WithProgressLogging() Option {
	return func(o *options) error {
		o.progressLogging = true
		return nil
	}
}
