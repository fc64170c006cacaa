package wire

import (
	"fmt"
	"io"
	"strings"
)

// Range is the half-open byte interval [Start, End) of the resource.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes the range covers.
func (r Range) Len() int64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// HeaderValue renders the range for a Range header. The header's last-byte
// position is inclusive, so End is rendered as End-1.
func (r Range) HeaderValue() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End-1)
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Request describes a single-shot request. Method defaults to GET and Path
// to "/".
type Request struct {
	Method string
	Path   string
	Host   string
	Range  *Range
}

// WriteTo writes the request line, headers and terminating blank line to w.
func (r Request) WriteTo(w io.Writer) (int64, error) {
	method := r.Method
	if method == "" {
		method = "GET"
	}
	path := r.Path
	if path == "" {
		path = "/"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", method, path)
	fmt.Fprintf(&b, "Host: %s\r\n", r.Host)
	b.WriteString("Connection: close\r\n")
	if r.Range != nil {
		fmt.Fprintf(&b, "Range: %s\r\n", r.Range.HeaderValue())
	}
	b.WriteString("\r\n")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
