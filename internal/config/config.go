// Package config loads the TOML tunables that select and shape a
// heap.Heap: which page back-end to run, page size, the growth
// threshold, whether to run in stress mode, and how to configure
// tracing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"picgc/internal/heap"
	"picgc/internal/trace"
)

// Config mirrors picgc.toml. A missing file is not an error — Load
// falls back to Default() — but a malformed one is.
type Config struct {
	Backend           string `toml:"backend"`             // "freelist" or "bitmap"
	PageUnits         int    `toml:"page_units"`
	GrowthNumerator   int    `toml:"growth_numerator"`
	GrowthDenominator int    `toml:"growth_denominator"`
	Stress            bool   `toml:"stress"`
	TraceLevel        string `toml:"trace_level"`  // "off", "error", "phase", "detail", "debug"
	TraceMode         string `toml:"trace_mode"`   // "stream", "ring", "both"
	TraceOutput       string `toml:"trace_output"` // "-" for stderr, or a file path
}

// Default returns the built-in tunables: free-list backend, 1024-unit
// pages, 7/8 growth threshold, stress mode off, tracing off.
func Default() Config {
	return Config{
		Backend:           "freelist",
		PageUnits:         1024,
		GrowthNumerator:   7,
		GrowthDenominator: 8,
		Stress:            false,
		TraceLevel:        "off",
		TraceMode:         "ring",
		TraceOutput:       "-",
	}
}

// Load reads path and overlays it onto Default(). A missing file
// returns Default() with no error; any other read or parse failure is
// returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, nil
}

// HeapOptions translates Config into heap.Options, constructing a
// tracer for TraceLevel/TraceMode/TraceOutput along the way.
func (c Config) HeapOptions() (heap.Options, error) {
	backend := heap.BackendFreeList
	switch c.Backend {
	case "", "freelist":
		backend = heap.BackendFreeList
	case "bitmap":
		backend = heap.BackendBitmap
	default:
		return heap.Options{}, fmt.Errorf("unknown backend %q (want \"freelist\" or \"bitmap\")", c.Backend)
	}

	level, err := trace.ParseLevel(c.TraceLevel)
	if err != nil {
		return heap.Options{}, err
	}

	mode := trace.ModeRing
	if c.TraceMode != "" {
		mode, err = trace.ParseMode(c.TraceMode)
		if err != nil {
			return heap.Options{}, err
		}
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: c.TraceOutput,
	})
	if err != nil {
		return heap.Options{}, fmt.Errorf("failed to build tracer: %w", err)
	}

	return heap.Options{
		Backend:           backend,
		PageUnits:         c.PageUnits,
		GrowthNumerator:   c.GrowthNumerator,
		GrowthDenominator: c.GrowthDenominator,
		Stress:            c.Stress,
		Tracer:            tracer,
	}, nil
}

