// Command glitchyserver serves a random payload over HTTP while cutting
// responses short, for exercising rangefetch.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/rangefetch/digest"
	"github.com/adamwoolhether/rangefetch/glitchy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("error", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr         string
		size         int
		seed         uint64
		maxChunk     int
		glitchRanges bool
		readTimeout  time.Duration
		writeTimeout time.Duration
		idleTimeout  time.Duration
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:          "glitchyserver",
		Short:        "Serve a payload over a deliberately unreliable HTTP server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 {
				return fmt.Errorf("size must be positive, got %d", size)
			}
			if maxChunk < 0 {
				return fmt.Errorf("max chunk must not be negative, got %d", maxChunk)
			}
			if readTimeout < 0 || writeTimeout < 0 || idleTimeout < 0 {
				return fmt.Errorf("timeouts must not be negative")
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			payload := glitchy.Payload(size, seed)
			logger.Info("payload ready", "bytes", size, "sha256", digest.Sum(payload))

			h := glitchy.NewHandler(payload,
				glitchy.WithMaxChunk(maxChunk),
				glitchy.WithGlitchRanges(glitchRanges),
				glitchy.WithLogger(logger),
			)

			srv := glitchy.NewServer(h,
				glitchy.WithAddr(addr),
				glitchy.WithReadTimeout(readTimeout),
				glitchy.WithWriteTimeout(writeTimeout),
				glitchy.WithIdleTimeout(idleTimeout),
				glitchy.WithServerLogger(logger),
			)

			return srv.Run()
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "localhost:8080", "listen address")
	f.IntVar(&size, "size", 1<<20, "payload size in bytes")
	f.Uint64Var(&seed, "seed", 1, "payload seed")
	f.IntVar(&maxChunk, "max-chunk", 64<<10, "most bytes written per response, 0 for no cap")
	f.BoolVar(&glitchRanges, "glitch-ranges", true, "truncate range responses too")
	f.DurationVar(&readTimeout, "read-timeout", 5*time.Second, "maximum time to read a request")
	f.DurationVar(&writeTimeout, "write-timeout", 30*time.Second, "maximum time to write a response")
	f.DurationVar(&idleTimeout, "idle-timeout", 120*time.Second, "keep-alive idle timeout")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
