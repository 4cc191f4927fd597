// Package config loads tactic configuration: defaults, then an optional YAML
// file, then TACTIC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jward/tactic"
)

// Config is the top-level configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	Search SearchConfig `yaml:"search"`
	Bench  BenchConfig  `yaml:"bench"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Trace  TraceConfig  `yaml:"trace"`
}

// SearchConfig holds Search Driver settings.
type SearchConfig struct {
	// Bound is "first", "first-N" or "all".
	Bound    string        `yaml:"bound"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxPulls int           `yaml:"max_pulls"`
	// Rollback is "none" or "snapshot".
	Rollback string `yaml:"rollback"`
	Metrics  bool   `yaml:"metrics"`
}

// BenchConfig holds benchmark runner settings.
type BenchConfig struct {
	Parallel int   `yaml:"parallel"`
	Queens   []int `yaml:"queens"`
	Repeat   int   `yaml:"repeat"`
}

// StoreConfig locates the run database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TraceConfig configures evaluation tracing.
type TraceConfig struct {
	// Dump, when set, is the file the evaluation call tree is written to.
	Dump string `yaml:"dump"`
	// Spans is the OpenTelemetry span exporter: "none" or "stdout".
	Spans string `yaml:"spans"`
	// Stats prints per-strategy timing after each search.
	Stats bool `yaml:"stats"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Bound:    "all",
			Timeout:  30 * time.Second,
			Rollback: "none",
			Metrics:  true,
		},
		Bench: BenchConfig{
			Parallel: 4,
			Queens:   []int{4, 5, 6, 8},
			Repeat:   1,
		},
		Store: StoreConfig{Path: ".tactic/runs.db"},
		Log:   LogConfig{Level: "info", Format: "text"},
		Trace: TraceConfig{Spans: "none"},
	}
}

// Load loads configuration with priority: env > file > defaults. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = i
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true" || v == "1"
		}
	}

	str("TACTIC_SEARCH_BOUND", &cfg.Search.Bound)
	if v := os.Getenv("TACTIC_SEARCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TACTIC_SEARCH_TIMEOUT: %w", err))
		} else {
			cfg.Search.Timeout = d
		}
	}
	num("TACTIC_SEARCH_MAX_PULLS", &cfg.Search.MaxPulls)
	str("TACTIC_SEARCH_ROLLBACK", &cfg.Search.Rollback)
	flag("TACTIC_SEARCH_METRICS", &cfg.Search.Metrics)
	num("TACTIC_BENCH_PARALLEL", &cfg.Bench.Parallel)
	num("TACTIC_BENCH_REPEAT", &cfg.Bench.Repeat)
	if v := os.Getenv("TACTIC_BENCH_QUEENS"); v != "" {
		var sizes []int
		for _, f := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				errs = append(errs, fmt.Errorf("TACTIC_BENCH_QUEENS: %w", err))
				break
			}
			sizes = append(sizes, n)
		}
		cfg.Bench.Queens = sizes
	}
	str("TACTIC_STORE_PATH", &cfg.Store.Path)
	str("TACTIC_LOG_LEVEL", &cfg.Log.Level)
	str("TACTIC_LOG_FORMAT", &cfg.Log.Format)
	str("TACTIC_TRACE_DUMP", &cfg.Trace.Dump)
	str("TACTIC_TRACE_SPANS", &cfg.Trace.Spans)
	flag("TACTIC_TRACE_STATS", &cfg.Trace.Stats)
	return errors.Join(errs...)
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if _, err := tactic.ParseBound(c.Search.Bound); err != nil {
		return fmt.Errorf("search.bound: %w", err)
	}
	if _, err := tactic.ParseRollback(c.Search.Rollback); err != nil {
		return fmt.Errorf("search.rollback: %w", err)
	}
	if c.Search.Timeout < 0 {
		return fmt.Errorf("search.timeout must be >= 0")
	}
	if c.Search.MaxPulls < 0 {
		return fmt.Errorf("search.max_pulls must be >= 0")
	}
	if c.Bench.Parallel < 1 {
		return fmt.Errorf("bench.parallel must be >= 1")
	}
	if c.Bench.Repeat < 1 {
		return fmt.Errorf("bench.repeat must be >= 1")
	}
	for _, n := range c.Bench.Queens {
		if n < 1 {
			return fmt.Errorf("bench.queens: board size %d must be >= 1", n)
		}
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must be set")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format: %q is not text or json", c.Log.Format)
	}
	if c.Trace.Spans != "none" && c.Trace.Spans != "stdout" {
		return fmt.Errorf("trace.spans: %q is not none or stdout", c.Trace.Spans)
	}
	return nil
}

// Bound returns the parsed search bound. The config must be valid.
func (c Config) Bound() tactic.Bound {
	b, _ := tactic.ParseBound(c.Search.Bound)
	return b
}

// SearchOptions returns the driver options described by the search section.
func (c Config) SearchOptions(logger *slog.Logger) []tactic.Option {
	rb, _ := tactic.ParseRollback(c.Search.Rollback)
	return []tactic.Option{
		tactic.WithLogger(logger),
		tactic.WithTimeout(c.Search.Timeout),
		tactic.WithMaxPulls(c.Search.MaxPulls),
		tactic.WithRollback(rb),
		tactic.WithMetrics(c.Search.Metrics),
	}
}

// Logger returns a logger writing to w in the configured format and level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return l, nil
}
