// Package glitchy serves a fixed payload the way an unreliable server
// would: every response declares the full Content-Length of what was asked
// for, but only a random prefix of it is written before the connection is
// closed. Range requests are honoured, so a client can resume.
//
// # Serving
//
//	payload := glitchy.Payload(1<<20, 42)
//	h := glitchy.NewHandler(payload, glitchy.WithMaxChunk(64<<10))
//	srv := glitchy.NewServer(h, glitchy.WithAddr(":8080"))
//	err := srv.Run() // blocks until SIGINT or SIGTERM
//
// In tests the handler can be mounted on an [net/http/httptest.Server].
package glitchy
