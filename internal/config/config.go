// Package config holds the rangefetch run configuration: defaults, TOML
// file loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/adamwoolhether/rangefetch/client/fetch"
)

// Policy names accepted in configuration.
const (
	PolicyRemainder = "remainder"
	PolicyChunked   = "chunked"
)

// Config describes one fetch run.
type Config struct {
	Addr        string        `toml:"addr" validate:"required,hostname_port"`
	Path        string        `toml:"path" validate:"required,startswith=/"`
	Policy      string        `toml:"policy" validate:"required,oneof=remainder chunked"`
	ChunkSize   int64         `toml:"chunk_size" validate:"gte=0,lte=1073741824"`
	Pause       time.Duration `toml:"pause"`
	Timeout     time.Duration `toml:"timeout" validate:"gte=0s"`
	FailureMode string        `toml:"on_failure" validate:"omitempty,oneof=abort stop"`
	MaxStalls   int           `toml:"max_stalls" validate:"gte=0"`
	Progress    bool          `toml:"progress"`
	Output      string        `toml:"output"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Addr:      "localhost:8080",
		Path:      "/",
		Policy:    PolicyRemainder,
		ChunkSize: fetch.DefaultChunkSize,
		Pause:     fetch.DefaultChunkPause,
		Timeout:   30 * time.Second,
		MaxStalls: 3,
	}
}

// Load reads a TOML file over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("decoding %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration against its declared tags.
func (c Config) Validate() error {
	return validate(c)
}

// FetchPolicy builds the range policy the configuration names.
func (c Config) FetchPolicy() (fetch.Policy, error) {
	mode, err := c.failureMode()
	if err != nil {
		return nil, err
	}

	switch c.Policy {
	case PolicyRemainder:
		return fetch.Remainder{OnFailure: mode}, nil
	case PolicyChunked:
		pause := c.Pause
		if pause == 0 {
			pause = -1
		}
		return fetch.Chunked{ChunkSize: c.ChunkSize, Interval: pause, OnFailure: mode}, nil
	}

	return nil, fmt.Errorf("unknown policy %q", c.Policy)
}

func (c Config) failureMode() (fetch.FailureMode, error) {
	if c.FailureMode == "" {
		return "", nil
	}

	mode, err := fetch.ParseFailureMode(c.FailureMode)
	if err != nil {
		return "", fmt.Errorf("on_failure: %w", err)
	}

	return mode, nil
}
