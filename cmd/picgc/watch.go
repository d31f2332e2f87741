package main

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"picgc/internal/heap"
)

const kindColumnWidth = 12

func truncateKind(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

var watchScenario string

func init() {
	watchCmd.Flags().StringVar(&watchScenario, "scenario", "growth", "scenario to run while watching (pairs|cycle|weakmap|symbols|data|growth)")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch live heap occupancy while a scenario runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := lookupScenario(watchScenario)
		if err != nil {
			return err
		}
		opts, err := loadHeapOptions()
		if err != nil {
			return err
		}

		gh := &guardedHeap{h: heap.Open(opts)}
		defer gh.h.Close()

		m := newWatchModel(gh, s)
		p := tea.NewProgram(m)
		_, err = p.Run()
		return err
	},
}

// guardedHeap serializes access between the scenario goroutine, which
// mutates the heap, and the UI's polling goroutine, which only reads
// Stats() — the heap type itself carries no locking (spec §5), so any
// concurrent access across goroutines is the embedder's job, same as
// here.
type guardedHeap struct {
	mu sync.Mutex
	h  *heap.Heap
}

func (g *guardedHeap) stats() heap.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.h.Stats()
}

type tickMsg time.Time
type scenarioDoneMsg struct{ err error }

type watchModel struct {
	gh       *guardedHeap
	scenario scenario
	table    table.Model
	stats    heap.Stats
	done     bool
	err      error
}

func newWatchModel(gh *guardedHeap, s scenario) *watchModel {
	cols := []table.Column{
		{Title: "Kind", Width: kindColumnWidth},
		{Title: "Count", Width: 8},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(false), table.WithHeight(10))
	return &watchModel{gh: gh, scenario: s, table: t}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.runScenarioCmd(), tickCmd())
}

func (m *watchModel) runScenarioCmd() tea.Cmd {
	return func() tea.Msg {
		m.gh.mu.Lock()
		err := m.scenario.run(m.gh.h)
		m.gh.mu.Unlock()
		return scenarioDoneMsg{err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		m.stats = m.gh.stats()
		m.table.SetRows(statsToRows(m.stats))
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case scenarioDoneMsg:
		m.done = true
		m.err = msg.err
	}
	return m, nil
}

func statsToRows(s heap.Stats) []table.Row {
	kinds := make([]heap.ObjectKind, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	rows := make([]table.Row, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, table.Row{truncateKind(k.String(), kindColumnWidth), fmt.Sprintf("%d", s.ByKind[k])})
	}
	return rows
}

func (m *watchModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("picgc watch — %s", m.scenario.name))
	status := fmt.Sprintf(
		"pages=%d units=%d/%d objects=%d arena=%d weak-entries=%d",
		m.stats.Pages, m.stats.InuseUnits, m.stats.TotalUnits, m.stats.Objects, m.stats.ArenaSize, m.stats.WeakEntries,
	)
	footer := "press q to quit"
	if m.done {
		if m.err != nil {
			footer = fmt.Sprintf("scenario failed: %v — press q to quit", m.err)
		} else {
			footer = "scenario complete — press q to quit"
		}
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n", title, status, m.table.View(), footer)
}
