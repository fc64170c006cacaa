package wire

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

const (
	versionPrefix       = "HTTP/"
	contentLengthHeader = "Content-Length"
)

// Header maps header names to values exactly as they were written.
// Keys are case-sensitive and a repeated name keeps its last value.
type Header map[string]string

// Get returns the value stored under key, matching case exactly.
func (h Header) Get(key string) string {
	return h[key]
}

// Response is one parsed exchange.
type Response struct {
	StatusCode int
	StatusText string
	Header     Header
	// Body holds the bytes that followed the header block, up to the end
	// of the stream.
	Body []byte
	// DeclaredLength is the Content-Length value, or 0 if absent.
	DeclaredLength int64
}

// Received returns the number of body bytes that physically arrived.
func (r *Response) Received() int64 {
	return int64(len(r.Body))
}

// Read parses one exchange off r. It returns a fully built Response or an
// error; a partially parsed Response never escapes.
func Read(r io.Reader) (*Response, error) {
	br := bufio.NewReader(r)

	statusLine, err := readLine(br)
	if err != nil {
		return nil, IOError("reading status line", err)
	}
	if statusLine == "" {
		return nil, invalidResponse("received an empty response")
	}

	code, text, err := parseStatusLine(statusLine)
	if err != nil {
		return nil, err
	}

	header := make(Header)
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, IOError("reading headers", err)
		}
		if line == "" {
			return nil, invalidResponse("unexpected end of headers")
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, invalidResponse("invalid header format: %s", strings.TrimSpace(line))
		}
		header[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	var declared int64
	if v, ok := header[contentLengthHeader]; ok {
		n, err := parseUnsigned(v, 63)
		if err != nil {
			return nil, invalidResponse("invalid length: %s", v)
		}
		declared = int64(n)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, IOError("reading body", err)
	}

	return &Response{
		StatusCode:     code,
		StatusText:     text,
		Header:         header,
		Body:           body,
		DeclaredLength: declared,
	}, nil
}

// parseStatusLine splits "HTTP/1.1 206 Partial Content" into its code and
// text.
func parseStatusLine(line string) (int, string, error) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return 0, "", invalidResponse("invalid status line: %s", strings.TrimSpace(line))
	}

	if !strings.HasPrefix(parts[0], versionPrefix) {
		return 0, "", invalidResponse("invalid http version: '%s'", parts[0])
	}

	code, err := parseUnsigned(parts[1], 16)
	if err != nil {
		return 0, "", invalidResponse("invalid status code: %s", parts[1])
	}

	return int(code), strings.Join(parts[2:], " "), nil
}

// parseUnsigned parses a decimal that may carry one leading '+'.
func parseUnsigned(s string, bitSize int) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, bitSize)
}

// readLine returns the next line including its terminator. A final line
// without a terminator is returned as is; an empty string means the stream
// ended before any byte was read.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}
