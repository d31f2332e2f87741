package main

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"picgc/internal/config"
	"picgc/internal/heap"
)

// loadHeapOptions loads the configured TOML file and applies any
// --trace-level override before turning it into heap.Options.
func loadHeapOptions() (heap.Options, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return heap.Options{}, err
	}
	if flagTraceLevel != "" {
		cfg.TraceLevel = flagTraceLevel
	}
	return cfg.HeapOptions()
}

// applyColorPreference resolves --color (auto|on|off) against whether
// stdout is a terminal and sets the global fatih/color switch
// accordingly.
func applyColorPreference() {
	switch flagColor {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	}
}
