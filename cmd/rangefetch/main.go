// Command rangefetch downloads a resource over repeated range requests,
// prints its SHA-256 digest and optionally compares it to an expected one.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/adamwoolhether/rangefetch/client"
	"github.com/adamwoolhether/rangefetch/client/fetch"
	"github.com/adamwoolhether/rangefetch/digest"
	"github.com/adamwoolhether/rangefetch/internal/config"
	"github.com/adamwoolhether/rangefetch/internal/save"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		configPath string
		verbose    bool
		flags      = config.Default()
	)

	cmd := &cobra.Command{
		Use:   "rangefetch [expected-sha256]",
		Short: "Fetch a resource from an unreliable server using range requests",
		Long: `Examples:
  rangefetch
  rangefetch --policy chunked --chunk-size 65536 --pause 500ms
  rangefetch 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			overrideFromFlags(cmd, &cfg, flags)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			var expected string
			if len(args) == 1 {
				expected = args[0]
			}

			return run(cmd.Context(), cfg, expected, logger, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "TOML configuration file")
	f.StringVar(&flags.Addr, "addr", flags.Addr, "server address (host:port)")
	f.StringVar(&flags.Path, "path", flags.Path, "request path")
	f.StringVar(&flags.Policy, "policy", flags.Policy, "range policy: remainder or chunked")
	f.Int64Var(&flags.ChunkSize, "chunk-size", flags.ChunkSize, "bytes per range request (chunked policy)")
	f.DurationVar(&flags.Pause, "pause", flags.Pause, "pause between requests (chunked policy), 0 disables")
	f.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "dial, read and write timeout")
	f.StringVar(&flags.FailureMode, "on-failure", flags.FailureMode, "range failure handling: abort or stop (default depends on policy)")
	f.IntVar(&flags.MaxStalls, "max-stalls", flags.MaxStalls, "give up after this many cycles without progress, 0 never")
	f.BoolVar(&flags.Progress, "progress", flags.Progress, "show a progress bar")
	f.StringVarP(&flags.Output, "output", "o", flags.Output, "also write the fetched bytes to this file")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// overrideFromFlags copies explicitly set flags over the file configuration.
func overrideFromFlags(cmd *cobra.Command, cfg *config.Config, flags config.Config) {
	set := cmd.Flags().Changed
	if set("addr") {
		cfg.Addr = flags.Addr
	}
	if set("path") {
		cfg.Path = flags.Path
	}
	if set("policy") {
		cfg.Policy = flags.Policy
	}
	if set("chunk-size") {
		cfg.ChunkSize = flags.ChunkSize
	}
	if set("pause") {
		cfg.Pause = flags.Pause
	}
	if set("timeout") {
		cfg.Timeout = flags.Timeout
	}
	if set("on-failure") {
		cfg.FailureMode = flags.FailureMode
	}
	if set("max-stalls") {
		cfg.MaxStalls = flags.MaxStalls
	}
	if set("progress") {
		cfg.Progress = flags.Progress
	}
	if set("output") {
		cfg.Output = flags.Output
	}
}

func run(ctx context.Context, cfg config.Config, expected string, logger *slog.Logger, stdout, stderr io.Writer) error {
	c, err := client.Build(cfg.Addr,
		client.WithPath(cfg.Path),
		client.WithTimeout(cfg.Timeout),
		client.WithDialTimeout(cfg.Timeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	policy, err := cfg.FetchPolicy()
	if err != nil {
		return err
	}

	opts := []fetch.Option{
		fetch.WithPolicy(policy),
		fetch.WithLogger(logger),
		fetch.WithMaxStalls(cfg.MaxStalls),
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts, fetch.WithProgressLogging())
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		opts = append(opts, fetch.WithProgress(func(assembled, total int64) {
			if bar == nil {
				bar = newBar(stderr, total)
			}
			_ = bar.Set64(assembled)
		}))
	}

	f, err := fetch.New(c, opts...)
	if err != nil {
		return err
	}

	res, err := f.Fetch(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	if !res.Complete {
		logger.Warn("fetch incomplete", "runid", res.RunID, "assembled", len(res.Data), "declared", res.DeclaredLength)
	}

	sum := digest.Sum(res.Data)
	fmt.Fprintf(stdout, "Hashed value: %s\n", sum)

	if expected != "" {
		if digest.Match(sum, expected) {
			fmt.Fprintln(stdout, "Hashes match!")
		} else {
			fmt.Fprintln(stdout, "Hashes do NOT match!")
		}
	}

	if cfg.Output == "" {
		return nil
	}

	var saveOpts []save.Option
	if expected != "" {
		saveOpts = append(saveOpts, save.WithChecksum(expected))
	}
	if err := save.File(ctx, bytes.NewReader(res.Data), int64(len(res.Data)), cfg.Output, logger, saveOpts...); err != nil {
		return fmt.Errorf("saving %s: %w", cfg.Output, err)
	}

	return nil
}

func newBar(w io.Writer, total int64) *progressbar.ProgressBar {
	if total <= 0 {
		total = -1 // spinner
	}
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription("fetching"),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}
