package fetch

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/adamwoolhether/rangefetch/client/wire"
)

func TestPolicy_NextRange(t *testing.T) {
	testCases := []struct {
		name   string
		policy Policy
		offset int64
		total  int64
		exp    wire.Range
	}{
		{name: "Remainder", policy: Remainder{}, offset: 4, total: 10, exp: wire.Range{Start: 4, End: 10}},
		{name: "Chunked inside", policy: Chunked{ChunkSize: 5}, offset: 0, total: 12, exp: wire.Range{Start: 0, End: 5}},
		{name: "Chunked clamps to total", policy: Chunked{ChunkSize: 5}, offset: 10, total: 12, exp: wire.Range{Start: 10, End: 12}},
		{name: "Chunked default size", policy: Chunked{}, offset: 0, total: 1 << 20, exp: wire.Range{Start: 0, End: DefaultChunkSize}},
		{name: "Chunked huge size saturates", policy: Chunked{ChunkSize: math.MaxInt64}, offset: 2, total: 12, exp: wire.Range{Start: 2, End: 12}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.NextRange(tc.offset, tc.total); got != tc.exp {
				t.Errorf("exp %v, got %v", tc.exp, got)
			}
		})
	}
}

func TestPolicy_Advance(t *testing.T) {
	testCases := []struct {
		name     string
		policy   Policy
		offset   int64
		received int
		declared int64
		expNext  int64
		expDone  bool
	}{
		{name: "Remainder short body", policy: Remainder{}, offset: 4, received: 3, declared: 6, expNext: 7},
		{name: "Remainder satisfied", policy: Remainder{}, offset: 4, received: 6, declared: 6, expNext: 10, expDone: true},
		{name: "Remainder empty body", policy: Remainder{}, offset: 4, received: 0, declared: 6, expNext: 4},
		{name: "Chunked ignores bytes received", policy: Chunked{ChunkSize: 5}, offset: 5, received: 1, declared: 5, expNext: 10},
		{name: "Chunked never done", policy: Chunked{ChunkSize: 5}, offset: 10, received: 2, declared: 2, expNext: 15},
		{name: "Chunked huge size saturates", policy: Chunked{ChunkSize: math.MaxInt64}, offset: 2, received: 10, declared: 10, expNext: math.MaxInt64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &wire.Response{Body: make([]byte, tc.received), DeclaredLength: tc.declared}
			rng := tc.policy.NextRange(tc.offset, tc.offset+tc.declared)

			next, done := tc.policy.Advance(tc.offset, rng, resp)
			if next != tc.expNext || done != tc.expDone {
				t.Errorf("exp (%d, %v), got (%d, %v)", tc.expNext, tc.expDone, next, done)
			}
		})
	}
}

func TestChunked_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		policy Chunked
		expErr bool
	}{
		{name: "Zero value", policy: Chunked{}},
		{name: "Largest chunk", policy: Chunked{ChunkSize: MaxChunkSize}},
		{name: "Negative chunk", policy: Chunked{ChunkSize: -1}, expErr: true},
		{name: "Chunk too large", policy: Chunked{ChunkSize: MaxChunkSize + 1}, expErr: true},
		{name: "Unknown failure mode", policy: Chunked{OnFailure: "retry"}, expErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.policy.Validate(); (err != nil) != tc.expErr {
				t.Errorf("exp error %v, got: %v", tc.expErr, err)
			}
		})
	}
}

func TestPolicy_OnCycleFailure(t *testing.T) {
	boom := errors.New("boom")

	testCases := []struct {
		name   string
		policy Policy
		expErr error
	}{
		{name: "Remainder default", policy: Remainder{}, expErr: boom},
		{name: "Remainder stop", policy: Remainder{OnFailure: Stop}},
		{name: "Chunked default", policy: Chunked{}},
		{name: "Chunked abort", policy: Chunked{OnFailure: Abort}, expErr: boom},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.policy.OnCycleFailure(boom); !errors.Is(err, tc.expErr) {
				t.Errorf("exp %v, got %v", tc.expErr, err)
			}
		})
	}
}

func TestPolicy_Pause(t *testing.T) {
	testCases := []struct {
		name   string
		policy Policy
		exp    time.Duration
	}{
		{name: "Remainder", policy: Remainder{}, exp: 0},
		{name: "Chunked default", policy: Chunked{}, exp: DefaultChunkPause},
		{name: "Chunked custom", policy: Chunked{Interval: time.Second}, exp: time.Second},
		{name: "Chunked disabled", policy: Chunked{Interval: -1}, exp: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.Pause(); got != tc.exp {
				t.Errorf("exp %v, got %v", tc.exp, got)
			}
		})
	}
}

func TestParseFailureMode(t *testing.T) {
	for _, s := range []string{"abort", "stop"} {
		if m, err := ParseFailureMode(s); err != nil || string(m) != s {
			t.Errorf("exp %s, got %q, %v", s, m, err)
		}
	}

	if _, err := ParseFailureMode("ignore"); err == nil {
		t.Error("exp error for unknown mode")
	}
}
