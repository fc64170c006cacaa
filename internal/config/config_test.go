package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/rangefetch/client/fetch"
	"github.com/adamwoolhether/rangefetch/internal/config"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rangefetch.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("exp default config to validate, got: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
addr = "example.com:9000"
policy = "chunked"
chunk_size = 1024
pause = "250ms"
on_failure = "abort"
progress = true
`)

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	exp := config.Default()
	exp.Addr = "example.com:9000"
	exp.Policy = config.PolicyChunked
	exp.ChunkSize = 1024
	exp.Pause = 250 * time.Millisecond
	exp.FailureMode = "abort"
	exp.Progress = true

	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("config mismatch (-exp +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name      string
		contents  string
		expField  string
		expSubstr string
	}{
		{name: "Unknown policy", contents: `policy = "sometimes"`, expField: "policy"},
		{name: "Missing port", contents: `addr = "localhost"`, expField: "addr"},
		{name: "Relative path", contents: `path = "file.bin"`, expField: "path"},
		{name: "Negative chunk", contents: `chunk_size = -1`, expField: "chunk_size"},
		{name: "Oversized chunk", contents: `chunk_size = 9223372036854775807`, expField: "chunk_size"},
		{name: "Unknown failure mode", contents: `on_failure = "retry"`, expField: "on_failure"},
		{name: "Unknown key", contents: `retries = 3`, expSubstr: "unknown keys: retries"},
		{name: "Malformed", contents: `addr = `, expSubstr: "decoding"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tc.contents))
			if err == nil {
				t.Fatal("exp error, got nil")
			}

			if tc.expSubstr != "" {
				if !strings.Contains(err.Error(), tc.expSubstr) {
					t.Errorf("exp error containing %q, got: %v", tc.expSubstr, err)
				}
				return
			}

			var fe config.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("exp FieldErrors, got %T: %v", err, err)
			}
			if _, ok := fe.Fields()[tc.expField]; !ok {
				t.Errorf("exp error for %q, got %v", tc.expField, fe.Fields())
			}
		})
	}
}

func TestFetchPolicy(t *testing.T) {
	testCases := []struct {
		name string
		mod  func(*config.Config)
		exp  fetch.Policy
	}{
		{
			name: "Remainder",
			mod:  func(*config.Config) {},
			exp:  fetch.Remainder{},
		},
		{
			name: "Remainder with stop",
			mod:  func(c *config.Config) { c.FailureMode = "stop" },
			exp:  fetch.Remainder{OnFailure: fetch.Stop},
		},
		{
			name: "Chunked",
			mod: func(c *config.Config) {
				c.Policy = config.PolicyChunked
				c.ChunkSize = 10
				c.Pause = time.Second
			},
			exp: fetch.Chunked{ChunkSize: 10, Interval: time.Second},
		},
		{
			name: "Chunked without pause",
			mod: func(c *config.Config) {
				c.Policy = config.PolicyChunked
				c.Pause = 0
				c.FailureMode = "abort"
			},
			exp: fetch.Chunked{ChunkSize: fetch.DefaultChunkSize, Interval: -1, OnFailure: fetch.Abort},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mod(&cfg)

			got, err := cfg.FetchPolicy()
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}
			if got != tc.exp {
				t.Errorf("exp %#v, got %#v", tc.exp, got)
			}
		})
	}
}
