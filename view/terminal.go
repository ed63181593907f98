package view

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/kbukum/flowview/graph"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiBlue  = "\033[34m"
	ansiRed   = "\033[31m"
)

// Terminal renders models as a status table.
type Terminal struct {
	w     io.Writer
	color bool
	opts  Options
}

// NewTerminal creates a renderer writing to w. Colours are used only when
// w is a terminal.
func NewTerminal(w io.Writer, opts Options) *Terminal {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Terminal{w: w, color: color, opts: opts}
}

// Render writes one listing. The status column is last so colour codes do
// not disturb the alignment.
func (t *Terminal) Render(m Model) error {
	last := "never"
	if !m.Poll.LastSuccess.IsZero() {
		last = humanize.Time(m.Poll.LastSuccess)
	}
	if _, err := fmt.Fprintf(t.w, "instance %s  seq %d  updated %s  (%d fetches, %d failed)\n",
		m.InstanceID, m.Seq, last, m.Poll.Fetches, m.Poll.Failures); err != nil {
		return err
	}
	if m.Poll.LastError != "" {
		if _, err := fmt.Fprintf(t.w, "last error: %s\n", m.Poll.LastError); err != nil {
			return err
		}
	}

	tasks := make(map[string]string, len(m.Tasks))
	for _, task := range m.Tasks {
		if _, ok := tasks[task.NodeID]; !ok {
			tasks[task.NodeID] = task.ID
		}
	}

	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tLABEL\tTYPE\tTASK\tSTATUS")
	for _, n := range m.Nodes {
		task := tasks[n.ID]
		if task == "" {
			task = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Data.Label, n.Data.NodeType, task, t.status(n.Status))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(t.w, "%d completed, %d active, %d pending\n",
		m.Counts[graph.StatusCompleted], m.Counts[graph.StatusActive], m.Counts[graph.StatusPending])
	return err
}

func (t *Terminal) status(s graph.Status) string {
	if !t.color {
		return string(s)
	}
	switch s {
	case graph.StatusCompleted:
		return ansiGreen + string(s) + ansiReset
	case graph.StatusActive:
		return ansiBlue + string(s) + ansiReset
	case graph.StatusPending:
		if t.opts.PendingTint {
			return ansiRed + string(s) + ansiReset
		}
	}
	return string(s)
}
