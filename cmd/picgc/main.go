// Command picgc drives the heap package for manual and automated
// exercise: running seed scenarios to completion, dumping and comparing
// occupancy snapshots, and watching a live dashboard while a scenario
// runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"picgc/internal/heap"
	"picgc/internal/version"
)

var (
	flagConfigPath string
	flagColor      string
	flagTraceLevel string
)

var rootCmd = &cobra.Command{
	Use:   "picgc",
	Short: "Exercise and inspect the picgc object heap",
	Long:  "picgc drives the tracing garbage collector in internal/heap directly, without a surrounding interpreter.",
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "picgc.toml", "path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().StringVar(&flagTraceLevel, "trace-level", "", "override the configured trace level (off|error|phase|detail|debug)")

	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run executes the root command and recovers a heap.OOMError panicking
// out of it, reporting it as a plain error instead of a raw Go stack
// trace — the one condition a heap raises by panicking rather than
// returning an error.
func run() (runErr error) {
	defer func() {
		if r := recover(); r != nil {
			if oom, ok := r.(*heap.OOMError); ok {
				fmt.Fprintln(os.Stderr, oom.Error())
				runErr = oom
				return
			}
			panic(r)
		}
	}()
	return rootCmd.Execute()
}
