// Package resultview renders a live-updating table of per-destination probe
// results as a bubbletea program.
package resultview

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pcekm/mpinger/internal/mpinger"
	"github.com/pcekm/mpinger/internal/stats"
)

const averageWindow = 20

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var quitKey = key.NewBinding(
	key.WithKeys("q", "ctrl+c"),
	key.WithHelp("q", "quit"),
)

// row is one destination's latest state.
type row struct {
	destID  int
	address string
	ptype   mpinger.Type
	avg     *stats.RunningAverage
	last    mpinger.Result
	total   int
	errors  int
}

// resultMsg wraps one mpinger.Result as a bubbletea message.
type resultMsg struct {
	r  mpinger.Result
	ok bool
}

// Model is the bubbletea model for the live result table.
type Model struct {
	it      *mpinger.ResultIterator
	order   []int
	rows    map[int]*row
	done    bool
	started time.Time
}

// New builds a Model that reads from it, labeling each destination with its
// address and probe type from labels (keyed by destination ID).
func New(it *mpinger.ResultIterator, labels map[int]struct {
	Address string
	Type    mpinger.Type
}) *Model {
	rows := make(map[int]*row, len(labels))
	var order []int
	for id, l := range labels {
		rows[id] = &row{destID: id, address: l.Address, ptype: l.Type, avg: stats.NewRunningAverage(averageWindow)}
		order = append(order, id)
	}
	return &Model{it: it, rows: rows, order: order, started: time.Now()}
}

// Init starts the first read from the iterator.
func (m *Model) Init() tea.Cmd {
	return m.waitForResult()
}

func (m *Model) waitForResult() tea.Cmd {
	return func() tea.Msg {
		r, ok := m.it.Next()
		return resultMsg{r: r, ok: ok}
	}
}

// Update applies one message to the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return m, tea.Quit
		}
	case resultMsg:
		if !msg.ok {
			m.done = true
			return m, nil
		}
		m.apply(msg.r)
		return m, m.waitForResult()
	}
	return m, nil
}

func (m *Model) apply(r mpinger.Result) {
	rw, ok := m.rows[r.DestinationID]
	if !ok {
		return
	}
	rw.last = r
	rw.total++
	if r.IsError {
		rw.errors++
	} else {
		rw.avg.Add(r.Duration)
	}
}

// View renders the table.
func (m *Model) View() string {
	out := headerStyle.Render(fmt.Sprintf("%-4s %-22s %-16s %10s %10s %8s", "ID", "ADDRESS", "TYPE", "LAST", "AVG", "ERRORS"))
	out += "\n"
	for _, id := range m.order {
		rw := m.rows[id]
		last := "-"
		if rw.total > 0 {
			last = rw.last.RTT().String()
		}
		avg := "-"
		if v, ok := rw.avg.Get(); ok {
			avg = fmt.Sprintf("%.1f", v)
		}
		line := fmt.Sprintf("%-4d %-22s %-16s %10s %10s %8d", rw.destID, rw.address, rw.ptype, last, avg, rw.errors)
		if rw.total > 0 && rw.last.IsError {
			out += errStyle.Render(line)
		} else {
			out += okStyle.Render(line)
		}
		out += "\n"
	}
	if m.done {
		out += "\n(stream ended)\n"
	}
	return out
}
