package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"picgc/internal/heap"
	"picgc/internal/observ"
	"picgc/internal/prof"
)

var (
	stressScenario  string
	stressCPUProf   string
	stressMemProf   string
	stressExecTrace string
)

func init() {
	stressCmd.Flags().StringVar(&stressScenario, "scenario", "pairs", "scenario to run (pairs|cycle|weakmap|symbols|data|growth|all)")
	stressCmd.Flags().Int64Var(&scenarioCount, "count", scenarioCount, "element count for the pairs/growth scenarios")
	stressCmd.Flags().StringVar(&stressCPUProf, "cpuprofile", "", "write a pprof CPU profile to this path")
	stressCmd.Flags().StringVar(&stressMemProf, "memprofile", "", "write a pprof heap profile to this path")
	stressCmd.Flags().StringVar(&stressExecTrace, "exectrace", "", "write a runtime execution trace to this path (view with 'go tool trace')")
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run a seed scenario to completion and report pass/fail",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyColorPreference()

		if stressCPUProf != "" {
			if err := prof.StartCPU(stressCPUProf); err != nil {
				return err
			}
			defer prof.StopCPU()
		}

		if stressExecTrace != "" {
			if err := prof.StartTrace(stressExecTrace); err != nil {
				return err
			}
			defer prof.StopTrace()
		}

		var runErr error
		if stressScenario == "all" {
			runErr = runAllScenarios(cmd)
		} else {
			s, err := lookupScenario(stressScenario)
			if err != nil {
				return err
			}
			runErr = runOneScenario(cmd, s)
		}

		if stressMemProf != "" {
			if err := prof.WriteMem(stressMemProf); err != nil {
				return err
			}
		}
		return runErr
	},
}

// runOneScenario opens one heap, times the scenario with an
// internal/observ.Timer, and prints a colorized pass/fail line.
func runOneScenario(cmd *cobra.Command, s scenario) error {
	opts, err := loadHeapOptions()
	if err != nil {
		return err
	}
	h := heap.Open(opts)
	defer h.Close()

	timer := observ.NewTimer()
	idx := timer.Begin(s.name)
	runErr := s.run(h)
	timer.End(idx, s.name)

	report := timer.Report()
	printResult(cmd, s.name, runErr, report.TotalMS)
	if runErr != nil {
		return fmt.Errorf("scenario %s failed", s.name)
	}
	return nil
}

// runAllScenarios runs every scenario concurrently, each against its own
// *heap.Heap — the heap type itself has no internal locking (spec §5),
// so isolation across goroutines comes entirely from giving each
// scenario its own instance, coordinated with errgroup.
func runAllScenarios(cmd *cobra.Command) error {
	g, _ := errgroup.WithContext(context.Background())
	results := make([]error, len(scenarios))
	timings := make([]float64, len(scenarios))

	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			opts, err := loadHeapOptions()
			if err != nil {
				return err
			}
			h := heap.Open(opts)
			defer h.Close()

			timer := observ.NewTimer()
			idx := timer.Begin(s.name)
			results[i] = s.run(h)
			timer.End(idx, s.name)
			timings[i] = timer.Report().TotalMS
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	failed := false
	for i, s := range scenarios {
		printResult(cmd, s.name, results[i], timings[i])
		if results[i] != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more scenarios failed")
	}
	return nil
}

func printResult(cmd *cobra.Command, name string, err error, ms float64) {
	out := cmd.OutOrStdout()
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprint(out, "FAIL")
		fmt.Fprintf(out, " %-10s %7.2fms  %v\n", name, ms, err)
		return
	}
	color.New(color.FgGreen, color.Bold).Fprint(out, "PASS")
	fmt.Fprintf(out, " %-10s %7.2fms\n", name, ms)
}
