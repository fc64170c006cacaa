package rangefetch_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/adamwoolhether/rangefetch"
	"github.com/adamwoolhether/rangefetch/client/fetch"
	"github.com/adamwoolhether/rangefetch/digest"
	"github.com/adamwoolhether/rangefetch/glitchy"
)

func ExampleNewFetcher() {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	payload := glitchy.Payload(64<<10, 1)
	ts := httptest.NewServer(glitchy.NewHandler(payload, glitchy.WithMaxChunk(4<<10), glitchy.WithLogger(quiet)))
	defer ts.Close()

	f, err := rangefetch.NewFetcher(ts.Listener.Addr().String(), fetch.WithLogger(quiet))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	res, err := f.Fetch(context.Background())
	if err != nil {
		fmt.Println("fetch error:", err)
		return
	}

	fmt.Println(res.Complete, digest.Match(digest.Sum(res.Data), digest.Sum(payload)))
	// Output: true true
}
