// Package save writes fetched bytes to disk atomically: the data goes to a
// temp file next to the destination, which is renamed into place only once
// every check has passed.
package save

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adamwoolhether/rangefetch/digest"
)

var (
	ErrLengthMismatch = errors.New("length mismatch")
	ErrCancelled      = errors.New("save cancelled")
)

type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Option defines optional settings for File.
//
// WithChecksum verifies the written bytes against an expected hex SHA-256
// digest; on mismatch the destination is left untouched.
//
// WithSkipExisting makes File return nil immediately when the destination
// already exists.
type Option func(*options) error

type options struct {
	verifier     *digest.Verifier
	skipExisting bool
}

func WithChecksum(expected string) Option {
	return func(o *options) error {
		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}
		o.verifier = digest.NewVerifier(nil, expected)
		return nil
	}
}

func WithSkipExisting() Option {
	return func(o *options) error {
		o.skipExisting = true
		return nil
	}
}

// File streams r to destPath. size is the number of bytes r must yield;
// a negative size skips the check. On any error the temp file is removed.
func File(ctx context.Context, r io.Reader, size int64, destPath string, logger *slog.Logger, optFns ...Option) error {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	if opts.skipExisting {
		if _, err := os.Stat(destPath); err == nil {
			logger.Info("skipping existing file", "path", destPath)
			return nil
		}
	}

	file, err := os.CreateTemp(filepath.Dir(destPath), ".rangefetch-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil {
				logger.Error("failed to remove temp file", "error", err)
			}
		}
	}()

	var w io.Writer = file
	if opts.verifier != nil {
		w = io.MultiWriter(w, opts.verifier)
	}

	n, err := io.Copy(w, &contextReader{ctx: ctx, r: r})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		return fmt.Errorf("copying data: %w", err)
	}

	if size >= 0 && n != size {
		return &Error{
			Err:    ErrLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", size, n),
		}
	}

	if err := opts.verifier.Verify(); err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true
	logger.Debug("saved", "path", destPath, "bytes", n)

	return nil
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
