package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/rangefetch/client/throttle"
	"github.com/adamwoolhether/rangefetch/client/wire"
)

const defaultMaxStalls = 3

// Doer performs one exchange; a nil rng requests the whole resource.
type Doer interface {
	Do(ctx context.Context, rng *wire.Range) (*wire.Response, error)
}

// DoerFunc adapts an ordinary function to a Doer.
type DoerFunc func(ctx context.Context, rng *wire.Range) (*wire.Response, error)

func (f DoerFunc) Do(ctx context.Context, rng *wire.Range) (*wire.Response, error) {
	return f(ctx, rng)
}

// Result is the outcome of one run.
type Result struct {
	// Data is the assembled byte sequence. It is owned by the caller.
	Data []byte
	// DeclaredLength is the initial response's Content-Length.
	DeclaredLength int64
	// Cycles counts every exchange, the initial request included.
	Cycles int
	// Complete reports whether len(Data) equals DeclaredLength.
	Complete bool
	RunID    string
}

// Fetcher runs the resumable fetch loop against a Doer.
type Fetcher struct {
	doer            Doer
	policy          Policy
	logger          *slog.Logger
	tracer          trace.Tracer
	maxStalls       int
	progressFn      ProgressFunc
	progressLogging bool
}

// New creates a Fetcher. Unless overridden, it uses the Remainder policy,
// the default slog logger and a no-op tracer.
func New(doer Doer, optFns ...Option) (*Fetcher, error) {
	if doer == nil {
		return nil, errors.New("doer must not be nil")
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying fetch option: %w", err)
		}
	}

	f := &Fetcher{
		doer:            doer,
		policy:          Remainder{},
		logger:          slog.Default(),
		tracer:          noop.NewTracerProvider().Tracer("no-op tracer"),
		maxStalls:       defaultMaxStalls,
		progressFn:      opts.progressFn,
		progressLogging: opts.progressLogging,
	}

	if opts.policy != nil {
		f.policy = opts.policy
	}
	if opts.logger != nil {
		f.logger = opts.logger
	}
	if opts.tracer != nil {
		f.tracer = opts.tracer
	}
	if opts.maxStalls != nil {
		f.maxStalls = *opts.maxStalls
	}

	return f, nil
}

// Fetch retrieves the resource. A failed initial request always returns an
// error; a failed range cycle is handed to the policy's OnCycleFailure.
func (f *Fetcher) Fetch(ctx context.Context) (*Result, error) {
	ctx, span := f.tracer.Start(ctx, "fetch.run", trace.WithAttributes(attribute.String("policy", f.policy.String())))
	defer span.End()

	runID := span.SpanContext().TraceID().String()
	if !span.SpanContext().TraceID().IsValid() {
		runID = uuid.New().String()
	}
	log := f.logger.With("run", runID, "policy", f.policy.String())

	res, err := f.run(ctx, runID, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("declared", res.DeclaredLength),
		attribute.Int("assembled", len(res.Data)),
		attribute.Int("cycles", res.Cycles),
	)

	return res, nil
}

func (f *Fetcher) run(ctx context.Context, runID string, log *slog.Logger) (*Result, error) {
	doer := f.doer
	if pause := f.policy.Pause(); pause > 0 {
		d, err := throttle.New(pause, 1, func() *slog.Logger { return log }, f.doer)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		doer = d
	}

	first, err := f.cycle(ctx, doer, nil)
	if err != nil {
		return nil, fmt.Errorf("initial request: %w", err)
	}

	res := &Result{
		DeclaredLength: first.DeclaredLength,
		Cycles:         1,
		RunID:          runID,
	}
	total := first.DeclaredLength
	data := slices.Clip(first.Body) // appends must never write into the response's backing array
	offset := first.Received()

	prog := progress{
		logger:    log,
		enabled:   f.progressLogging,
		fn:        f.progressFn,
		total:     total,
		startTime: time.Now(),
	}
	prog.add(offset)

	log.Info("initial response", "status", first.StatusCode, "received", offset, "declared", total)

	var stalls int
	for offset < total {
		rng := f.policy.NextRange(offset, total)

		resp, err := f.cycle(ctx, doer, &rng)
		res.Cycles++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("range cycle %s: %w", rng, err)
			}
			if err := f.policy.OnCycleFailure(err); err != nil {
				return nil, fmt.Errorf("range cycle %s: %w", rng, err)
			}
			log.Warn("range cycle failed, returning assembled bytes", "range", rng.String(), "assembled", len(data), "error", err)
			break
		}

		data = append(data, resp.Body...)
		prog.add(resp.Received())

		next, done := f.policy.Advance(offset, rng, resp)
		if done {
			log.Debug("range reported as fully satisfied", "range", rng.String(), "received", resp.Received())
			break
		}

		if next <= offset {
			stalls++
			if f.maxStalls > 0 && stalls >= f.maxStalls {
				log.Warn("no progress, giving up", "offset", offset, "stalls", stalls)
				break
			}
			continue
		}
		stalls = 0
		offset = next
	}

	prog.done()

	res.Data = data
	res.Complete = int64(len(data)) == total

	log.Info("fetch finished", "assembled", len(data), "declared", total, "cycles", res.Cycles, "complete", res.Complete)

	return res, nil
}

// cycle performs one exchange inside its own span.
func (f *Fetcher) cycle(ctx context.Context, doer Doer, rng *wire.Range) (*wire.Response, error) {
	ctx, span := f.tracer.Start(ctx, "fetch.cycle")
	defer span.End()

	if rng != nil {
		span.SetAttributes(attribute.Int64("range.start", rng.Start), attribute.Int64("range.end", rng.End))
	}

	resp, err := doer.Do(ctx, rng)
	if err == nil && resp == nil {
		err = &wire.Error{Err: wire.ErrIO, Detail: "exchange returned no response"}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("status", resp.StatusCode),
		attribute.Int64("received", resp.Received()),
		attribute.Int64("declared", resp.DeclaredLength),
	)

	return resp, nil
}
