package glitchy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errUnsatisfiable = errors.New("range not satisfiable")

// parseRange parses a single "bytes=first-last" Range header against a
// resource of size bytes and returns the half-open interval it selects.
// The last position is inclusive and clamped to the resource; "first-" and
// the suffix form "-n" are accepted.
func parseRange(header string, size int64) (start, end int64, err error) {
	set, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("invalid range unit: %s", header)
	}
	if strings.Contains(set, ",") {
		return 0, 0, fmt.Errorf("multiple ranges not supported: %s", header)
	}

	first, last, ok := strings.Cut(strings.TrimSpace(set), "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid range format: %s", header)
	}

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("invalid suffix length: %s", header)
		}
		return max(size-n, 0), size, nil
	}

	start, err = strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("invalid start byte: %s", header)
	}
	if start >= size {
		return 0, 0, fmt.Errorf("%w: start %d, size %d", errUnsatisfiable, start, size)
	}

	if last == "" {
		return start, size, nil
	}

	stop, err := strconv.ParseInt(last, 10, 64)
	if err != nil || stop < start {
		return 0, 0, fmt.Errorf("invalid end byte: %s", header)
	}

	return start, min(stop+1, size), nil
}
