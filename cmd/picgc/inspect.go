package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"picgc/internal/heap"
	"picgc/internal/snapshot"
)

var (
	inspectDumpPath string
	inspectLoadPath string
	inspectScenario string
)

func init() {
	inspectCmd.Flags().StringVar(&inspectDumpPath, "dump", "", "run --scenario and write a snapshot to this path")
	inspectCmd.Flags().StringVar(&inspectLoadPath, "load", "", "read back a previously dumped snapshot")
	inspectCmd.Flags().StringVar(&inspectScenario, "scenario", "pairs", "scenario to run before dumping")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump or load a heap occupancy snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectDumpPath == "" && inspectLoadPath == "" {
			return fmt.Errorf("inspect needs --dump or --load")
		}
		if inspectLoadPath != "" {
			return loadAndPrint(cmd, inspectLoadPath)
		}
		return dumpScenario(cmd, inspectScenario, inspectDumpPath)
	},
}

func dumpScenario(cmd *cobra.Command, scenarioName, path string) error {
	s, err := lookupScenario(scenarioName)
	if err != nil {
		return err
	}

	opts, err := loadHeapOptions()
	if err != nil {
		return err
	}
	h := heap.Open(opts)
	defer h.Close()

	if err := s.run(h); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "scenario %s reported: %v (dumping anyway)\n", scenarioName, err)
	}

	if err := snapshot.Dump(path, h); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote snapshot to %s\n", path)
	return printSnapshot(cmd, snapshot.Capture(h))
}

func loadAndPrint(cmd *cobra.Command, path string) error {
	snap, err := snapshot.Load(path)
	if err != nil {
		return err
	}
	return printSnapshot(cmd, snap)
}

func printSnapshot(cmd *cobra.Command, snap *snapshot.HeapSnapshot) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "objects:      %d\n", snap.Objects)
	fmt.Fprintf(out, "arena depth:  %d\n", snap.ArenaSize)
	fmt.Fprintf(out, "pages:        %d\n", snap.Pages)
	fmt.Fprintf(out, "units:        %d in use / %d total\n", snap.InuseUnits, snap.TotalUnits)
	fmt.Fprintf(out, "weak entries: %d\n", snap.WeakEntries)
	for kind, n := range snap.ByKind {
		fmt.Fprintf(out, "  %-10s %d\n", kind, n)
	}
	return nil
}
