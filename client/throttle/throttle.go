package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/adamwoolhether/rangefetch/client/wire"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Doer performs one exchange. It matches client.Client and fetch.Doer.
type Doer interface {
	Do(ctx context.Context, rng *wire.Range) (*wire.Response, error)
}

// throttle is a Doer, using the time/rate token bucket limiter to
// restrict outbound exchanges. The bucket is drained whenever an exchange
// returns, so the interval runs from the end of one exchange to the start
// of the next.
type throttle struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	interval time.Duration
	burst    int
	next     Doer
	logFn    func() *slog.Logger
}

// New returns a Doer that waits at least interval after an exchange
// returns before starting the next. The first burst exchanges start
// without waiting. logFn lazily resolves the logger at request time; a nil-returning
// logFn disables the wait logging.
func New(interval time.Duration, burst int, logFn func() *slog.Logger, next Doer) (Doer, error) {
	if interval <= 0 || burst <= 0 {
		return nil, fmt.Errorf("interval[%s] and burst[%d] %w", interval, burst, ErrMustNotBeZero)
	}
	if next == nil {
		return nil, errors.New("next doer must not be nil")
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter:  rate.NewLimiter(rate.Every(interval), burst),
		interval: interval,
		burst:    burst,
		next:     next,
		logFn:    logFn,
	}

	return t, nil
}

func (t *throttle) Do(ctx context.Context, rng *wire.Range) (*wire.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	start := time.Now()

	err := t.currentLimiter().Wait(ctx)
	waited := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	if logger := t.logFn(); logger != nil && waited > time.Millisecond {
		logger.Debug("throttle wait complete", "waited", waited.Round(time.Millisecond).String(), "interval", t.interval.String(), "burst", t.burst)
	}

	resp, err := t.next.Do(ctx, rng)
	t.drain(time.Now())

	return resp, err
}

func (t *throttle) currentLimiter() *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limiter
}

// drain replaces the limiter with one whose bucket is empty at end, so the
// next token is only available one interval later.
func (t *throttle) drain(end time.Time) {
	lim := rate.NewLimiter(rate.Every(t.interval), t.burst)
	lim.ReserveN(end, t.burst)

	t.mu.Lock()
	t.limiter = lim
	t.mu.Unlock()
}
