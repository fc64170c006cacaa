// Package wire reads and writes the single-shot, Connection: close
// exchanges spoken by the fetch client.
//
// # Reading Responses
//
// [Read] consumes one complete exchange from a byte stream and returns a
// fully constructed [Response] or a typed error:
//
//	resp, err := wire.Read(conn)
//	if errors.Is(err, wire.ErrInvalidResponse) { ... }
//
// The body is whatever arrived before the stream closed. The reader never
// truncates or pads it to the declared Content-Length; comparing the two is
// the caller's job.
//
// # Writing Requests
//
// [Request.WriteTo] renders the request line, Host, Connection: close and an
// optional Range header:
//
//	req := wire.Request{Host: "localhost:8080", Range: &wire.Range{Start: 4, End: 10}}
//	_, err := req.WriteTo(conn)
package wire
