package fetch

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/adamwoolhether/rangefetch/client/wire"
)

const (
	// DefaultChunkSize is the range size used by Chunked when unset.
	DefaultChunkSize = 64 << 10 // 64KiB
	// MaxChunkSize is the largest ChunkSize Chunked accepts.
	MaxChunkSize = 1 << 30 // 1GiB
	// DefaultChunkPause is the pause between Chunked range requests.
	DefaultChunkPause = 500 * time.Millisecond
)

// FailureMode decides what a failed range cycle does to the run.
type FailureMode string

const (
	// Abort propagates the failure and discards the assembled bytes.
	Abort FailureMode = "abort"
	// Stop ends the run early and returns the bytes assembled so far.
	Stop FailureMode = "stop"
)

// ParseFailureMode maps "abort" and "stop" onto a FailureMode.
func ParseFailureMode(s string) (FailureMode, error) {
	switch m := FailureMode(s); m {
	case Abort, Stop:
		return m, nil
	default:
		return "", fmt.Errorf("unknown failure mode %q", s)
	}
}

// handle returns err for Abort and nil for Stop.
func (m FailureMode) handle(err error) error {
	if m == Stop {
		return nil
	}
	return err
}

func (m FailureMode) validate() error {
	switch m {
	case "", Abort, Stop:
		return nil
	default:
		return fmt.Errorf("unknown failure mode %q", string(m))
	}
}

// Policy drives the range cycles that follow the initial request.
type Policy interface {
	// NextRange returns the range to request given the current offset and
	// the target length.
	NextRange(offset, total int64) wire.Range
	// Advance returns the next offset after resp answered rng, and whether
	// the run should end now.
	Advance(offset int64, rng wire.Range, resp *wire.Response) (next int64, done bool)
	// OnCycleFailure returns nil to end the run with the bytes assembled so
	// far, or an error to abort it.
	OnCycleFailure(err error) error
	// Pause is how long to wait after one exchange returns before the next
	// request goes out; zero disables it.
	Pause() time.Duration
	fmt.Stringer
}

// Remainder requests everything still missing on every cycle. The zero
// value aborts on range failures.
type Remainder struct {
	OnFailure FailureMode
}

func (Remainder) NextRange(offset, total int64) wire.Range {
	return wire.Range{Start: offset, End: total}
}

// Advance moves by the bytes actually received. A cycle whose body matches
// its own Content-Length ends the run, which also covers a server that
// ignored the Range header and re-sent the whole resource.
func (Remainder) Advance(offset int64, _ wire.Range, resp *wire.Response) (int64, bool) {
	return offset + resp.Received(), resp.Received() == resp.DeclaredLength
}

func (p Remainder) OnCycleFailure(err error) error {
	if p.OnFailure == "" {
		return Abort.handle(err)
	}
	return p.OnFailure.handle(err)
}

func (Remainder) Pause() time.Duration { return 0 }

func (p Remainder) String() string { return "remainder" }

// Validate reports an unknown failure mode.
func (p Remainder) Validate() error {
	return p.OnFailure.validate()
}

// Chunked requests fixed-size ranges with a pause between requests. Zero
// fields take the defaults, a negative Interval disables the pause, and
// range failures stop the run unless OnFailure says otherwise.
type Chunked struct {
	ChunkSize int64
	Interval  time.Duration
	OnFailure FailureMode
}

func (p Chunked) chunkSize() int64 {
	if p.ChunkSize == 0 {
		return DefaultChunkSize
	}
	return p.ChunkSize
}

func (p Chunked) NextRange(offset, total int64) wire.Range {
	end := total
	if n := p.chunkSize(); n < total-offset {
		end = offset + n
	}
	return wire.Range{Start: offset, End: end}
}

// Advance moves by the chunk size regardless of how many bytes arrived, so
// a short chunk leaves a gap in the assembled bytes. The result saturates
// at math.MaxInt64.
func (p Chunked) Advance(offset int64, _ wire.Range, _ *wire.Response) (int64, bool) {
	if n := p.chunkSize(); n > math.MaxInt64-offset {
		return math.MaxInt64, false
	}
	return offset + p.chunkSize(), false
}

func (p Chunked) OnCycleFailure(err error) error {
	if p.OnFailure == "" {
		return Stop.handle(err)
	}
	return p.OnFailure.handle(err)
}

func (p Chunked) Pause() time.Duration {
	switch {
	case p.Interval == 0:
		return DefaultChunkPause
	case p.Interval < 0:
		return 0
	default:
		return p.Interval
	}
}

func (p Chunked) String() string { return "chunked" }

// Validate reports a chunk size outside [0, MaxChunkSize] and an unknown
// failure mode.
func (p Chunked) Validate() error {
	var errs []error
	switch {
	case p.ChunkSize < 0:
		errs = append(errs, fmt.Errorf("chunk size %d must not be negative", p.ChunkSize))
	case p.ChunkSize > MaxChunkSize:
		errs = append(errs, fmt.Errorf("chunk size %d exceeds %d", p.ChunkSize, MaxChunkSize))
	}
	if err := p.OnFailure.validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
