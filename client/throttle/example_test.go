package throttle_test

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adamwoolhether/rangefetch/client/throttle"
	"github.com/adamwoolhether/rangefetch/client/wire"
)

type staticDoer struct{}

func (staticDoer) Do(context.Context, *wire.Range) (*wire.Response, error) {
	return &wire.Response{StatusCode: 200, StatusText: "OK"}, nil
}

func ExampleNew() {
	d, err := throttle.New(
		500*time.Millisecond, // one exchange per interval
		1,                    // burst capacity
		func() *slog.Logger { return slog.Default() },
		staticDoer{},
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	resp, err := d.Do(context.Background(), nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(resp.StatusCode, resp.StatusText)
	// Output: 200 OK
}
