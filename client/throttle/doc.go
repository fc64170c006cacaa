// Package throttle spaces out fetch exchanges using a token-bucket limiter
// from [golang.org/x/time/rate].
//
// # Usage
//
// Wrap an existing [Doer] with [New]:
//
//	d, err := throttle.New(
//		500*time.Millisecond, // pause after each exchange
//		1,                    // burst capacity
//		func() *slog.Logger { return slog.Default() },
//		c, // *client.Client
//	)
//
// The bucket is emptied whenever an exchange returns, so Do blocks for a
// full interval after the previous response, or until the context is
// cancelled.
package throttle
