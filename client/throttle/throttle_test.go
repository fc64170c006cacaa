package throttle

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamwoolhether/rangefetch/client/wire"
)

type countingDoer struct {
	calls atomic.Int32
}

func (d *countingDoer) Do(context.Context, *wire.Range) (*wire.Response, error) {
	d.calls.Add(1)
	return &wire.Response{StatusCode: 200}, nil
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		interval time.Duration
		burst    int
		expErr   error
	}{
		{
			name:     "Invalid interval (zero)",
			interval: 0,
			burst:    1,
			expErr:   ErrMustNotBeZero,
		},
		{
			name:     "Invalid interval (negative)",
			interval: -time.Second,
			burst:    1,
			expErr:   ErrMustNotBeZero,
		},
		{
			name:     "Invalid Burst (zero)",
			interval: time.Second,
			burst:    0,
			expErr:   ErrMustNotBeZero,
		},
		{
			name:     "Valid input",
			interval: time.Second,
			burst:    1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(tc.interval, tc.burst, func() *slog.Logger { return nil }, &countingDoer{})

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("exp nil err, got: %v", err)
			}
			if d == nil {
				t.Error("exp non-nil Doer")
			}
		})
	}

	t.Run("Nil next", func(t *testing.T) {
		if _, err := New(time.Second, 1, nil, nil); err == nil {
			t.Error("exp error for nil next doer")
		}
	})
}

func TestThrottle_SpacesExchanges(t *testing.T) {
	const interval = 40 * time.Millisecond
	next := &countingDoer{}

	d, err := New(interval, 1, nil, next)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	start := time.Now()
	for range 3 {
		if _, err := d.Do(t.Context(), nil); err != nil {
			t.Fatalf("do: %v", err)
		}
	}
	elapsed := time.Since(start)

	// The first exchange uses the burst token; the next two wait.
	if floor := 2*interval - 10*time.Millisecond; elapsed < floor {
		t.Errorf("exp exchanges slowed to >= %v, took %v", floor, elapsed)
	}
	if got := next.calls.Load(); got != 3 {
		t.Errorf("exp 3 calls, got %d", got)
	}
}

// slowDoer records when each exchange starts and ends.
type slowDoer struct {
	delay  time.Duration
	starts []time.Time
	ends   []time.Time
}

func (d *slowDoer) Do(context.Context, *wire.Range) (*wire.Response, error) {
	d.starts = append(d.starts, time.Now())
	time.Sleep(d.delay)
	d.ends = append(d.ends, time.Now())
	return &wire.Response{StatusCode: 200}, nil
}

func TestThrottle_IntervalRunsFromExchangeEnd(t *testing.T) {
	const interval = 40 * time.Millisecond

	testCases := []struct {
		name  string
		delay time.Duration
	}{
		{name: "Exchange slower than interval", delay: 60 * time.Millisecond},
		{name: "Exchange faster than interval", delay: 5 * time.Millisecond},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := &slowDoer{delay: tc.delay}

			d, err := New(interval, 1, nil, next)
			if err != nil {
				t.Fatalf("new: %v", err)
			}

			for range 3 {
				if _, err := d.Do(t.Context(), nil); err != nil {
					t.Fatalf("do: %v", err)
				}
			}

			for i := 1; i < len(next.starts); i++ {
				if gap := next.starts[i].Sub(next.ends[i-1]); gap < interval-time.Millisecond {
					t.Errorf("exchange %d started %v after the previous one ended, exp >= %v", i, gap, interval)
				}
			}
		})
	}
}

func TestThrottle_ContextErrors(t *testing.T) {
	t.Run("Cancelled before wait", func(t *testing.T) {
		next := &countingDoer{}
		d, err := New(time.Second, 1, nil, next)
		if err != nil {
			t.Fatalf("new: %v", err)
		}

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err = d.Do(ctx, nil)
		if !errors.Is(err, ErrContextEnded) || !errors.Is(err, context.Canceled) {
			t.Errorf("exp ErrContextEnded wrapping context.Canceled, got: %v", err)
		}
		if next.calls.Load() != 0 {
			t.Error("exp next not to be called")
		}
	})

	t.Run("Deadline shorter than interval", func(t *testing.T) {
		next := &countingDoer{}
		d, err := New(time.Second, 1, nil, next)
		if err != nil {
			t.Fatalf("new: %v", err)
		}

		if _, err := d.Do(t.Context(), nil); err != nil {
			t.Fatalf("first do: %v", err)
		}

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()

		if _, err := d.Do(ctx, nil); !errors.Is(err, ErrWaitingFailed) {
			t.Errorf("exp ErrWaitingFailed, got: %v", err)
		}
		if got := next.calls.Load(); got != 1 {
			t.Errorf("exp 1 call, got %d", got)
		}
	})
}
