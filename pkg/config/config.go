// Package config loads debugger server startup parameters: listen
// address, per-message buffer size, the cooperative-scheduling
// constants, and the diagnostics HTTP address. Defaults are applied
// first, then an optional TOML file, then environment variables, in
// that order, mirroring the override precedence the teacher's own
// server entrypoint uses for its WEBOS_* variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every value the debugger session needs before it can
// accept a connection.
type Config struct {
	Server     Server     `toml:"server"`
	Session    Session    `toml:"session"`
	Diagnostics Diagnostics `toml:"diagnostics"`
}

// Server configures the TCP listener.
type Server struct {
	Addr string `toml:"addr"`
}

// Session configures the protocol engine's buffering and scheduling.
type Session struct {
	// BufferSize is B in spec terms: the fixed send/recv buffer size.
	// Validate rejects values outside [64,256].
	BufferSize int `toml:"buffer_size"`

	// MessageFrequency is how many bytecode dispatches elapse between
	// non-blocking polls.
	MessageFrequency int `toml:"message_frequency"`

	// PollInterval is the sleep between poll attempts while blocked
	// waiting on the client (breakpoint, parser-wait, client-source).
	PollInterval time.Duration `toml:"poll_interval"`

	// MaxAccumulationSize caps a single fragmented transfer (eval input,
	// client source, exception text) to bound memory a hostile or
	// confused client could otherwise force the debugger to allocate.
	MaxAccumulationSize int `toml:"max_accumulation_size"`

	// CompressedPointerSize is 2 or 4, advertised in CONFIGURATION.
	CompressedPointerSize int `toml:"compressed_pointer_size"`
}

// Diagnostics configures the read-only HTTP introspection endpoint.
type Diagnostics struct {
	Addr    string `toml:"addr"`
	Enabled bool   `toml:"enabled"`
}

// Default returns the built-in defaults, applied before any file or
// environment override.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Session: Session{
			BufferSize:            128,
			MessageFrequency:      5,
			PollInterval:          100 * time.Millisecond,
			MaxAccumulationSize:   64 * 1024,
			CompressedPointerSize: 4,
		},
		Diagnostics: Diagnostics{Addr: ":8081", Enabled: true},
	}
}

// Load builds a Config starting from Default(), applying path (if
// non-empty) as a TOML overlay, then applying JDB_* environment
// variables, then validating the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("JDB_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("JDB_DIAG_ADDR"); v != "" {
		cfg.Diagnostics.Addr = v
	}
	if v := os.Getenv("JDB_BUFFER_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: JDB_BUFFER_SIZE: %w", err)
		}
		cfg.Session.BufferSize = n
	}
	if v := os.Getenv("JDB_MESSAGE_FREQUENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: JDB_MESSAGE_FREQUENCY: %w", err)
		}
		cfg.Session.MessageFrequency = n
	}
	if v := os.Getenv("JDB_POLL_INTERVAL_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: JDB_POLL_INTERVAL_MS: %w", err)
		}
		cfg.Session.PollInterval = time.Duration(n) * time.Millisecond
	}
	if v := os.Getenv("JDB_CPOINTER_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: JDB_CPOINTER_SIZE: %w", err)
		}
		cfg.Session.CompressedPointerSize = n
	}
	return nil
}

// Validate rejects values that violate the protocol's own constraints
// (buffer size range, valid pointer size) before a Session is built on
// top of them.
func (c Config) Validate() error {
	if c.Session.BufferSize < 64 || c.Session.BufferSize > 256 {
		return fmt.Errorf("config: buffer_size %d out of range [64,256]", c.Session.BufferSize)
	}
	if c.Session.CompressedPointerSize != 2 && c.Session.CompressedPointerSize != 4 {
		return fmt.Errorf("config: compressed_pointer_size must be 2 or 4, got %d", c.Session.CompressedPointerSize)
	}
	if c.Session.MessageFrequency <= 0 {
		return fmt.Errorf("config: message_frequency must be positive, got %d", c.Session.MessageFrequency)
	}
	if c.Session.MaxAccumulationSize <= 0 {
		return fmt.Errorf("config: max_accumulation_size must be positive, got %d", c.Session.MaxAccumulationSize)
	}
	return nil
}
