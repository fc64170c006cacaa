// Package client provides the transport used by the resumable fetcher: one
// fresh TCP connection per exchange to a fixed endpoint, with the response
// parsed by [github.com/adamwoolhether/rangefetch/client/wire].
//
// # Building a Client
//
// Use [Build] with the endpoint and functional options:
//
//	c, err := client.Build("localhost:8080",
//		client.WithTimeout(30 * time.Second),
//		client.WithLogger(logger),
//	)
//
// # Making Requests
//
// [Client.Do] issues a whole-resource request when rng is nil and a
// range-qualified request otherwise:
//
//	resp, err := c.Do(ctx, nil)
//	resp, err = c.Do(ctx, &wire.Range{Start: int64(len(resp.Body)), End: resp.DeclaredLength})
//
// Failures are reported with the sentinel kinds from the wire package
// (wire.ErrConnection, wire.ErrTimeout, wire.ErrInvalidURL,
// wire.ErrInvalidResponse, wire.ErrIO).
//
// For resuming truncated transfers see the
// [github.com/adamwoolhether/rangefetch/client/fetch] package.
package client
