// Package render prints task lists and reports for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"habline/internal/domain"
	"habline/internal/score"
	habiticasdk "habline/sdk/go"
)

// Options controls task list output.
type Options struct {
	// Checklists prints checklist items under each task.
	Checklists bool
	// NoteFirst prints the (truncated) notes before the task text.
	NoteFirst bool
}

const noteFirstWidth = 50

// Tasks prints a numbered daily or todo list.
func Tasks(w io.Writer, tasks []habiticasdk.Task, opts Options) {
	for i, t := range tasks {
		var line string
		if opts.NoteFirst {
			line = fmt.Sprintf("[%s] %d <%s> %s", mark(t.Completed), i+1, truncate(t.Notes, noteFirstWidth), t.Text)
		} else {
			line = fmt.Sprintf("[%s] %d %s <%s>", mark(t.Completed), i+1, t.Text, t.Notes)
		}
		if n := len(t.Checklist); n > 0 {
			line += fmt.Sprintf(" (%d/%d)", checklistDone(t), n)
		}
		fmt.Fprintln(w, line)
		if opts.Checklists {
			for _, item := range t.Checklist {
				fmt.Fprintf(w, "    [%s] %s\n", mark(item.Completed), item.Text)
			}
		}
	}
}

// Habits prints habits with their qualitative score.
func Habits(w io.Writer, habits []habiticasdk.Task) {
	for i, h := range habits {
		fmt.Fprintf(w, "[%s] %d %s\n", score.Symbol(h.Value), i+1, h.Text)
	}
}

// HabitNotes prints habits with notes first.
func HabitNotes(w io.Writer, habits []habiticasdk.Task) {
	for i, h := range habits {
		fmt.Fprintf(w, "[%d] [%s] %s\n", i+1, h.Notes, h.Text)
	}
}

// Field is one labelled line of a report.
type Field struct {
	Label string
	Value string
}

// Report prints a title banner followed by right-aligned labels.
func Report(w io.Writer, title string, fields []Field) {
	width := 0
	for _, f := range fields {
		if l := len(f.Label) + 1; l > width {
			width = l
		}
	}
	rule := strings.Repeat("-", len(title))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
	for _, f := range fields {
		fmt.Fprintf(w, "%*s %s\n", width, f.Label+":", f.Value)
	}
}

// Challenges prints joined challenges as a table.
func Challenges(w io.Writer, items []habiticasdk.Challenge) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Challenge", "ID", "Name"})
	for _, c := range items {
		tw.AppendRow(table.Row{c.ShortName, c.ID, c.Name})
	}
	tw.Render()
}

// Events prints the local event log as a table.
func Events(w io.Writer, items []domain.Event) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Time", "Type", "List", "Summary"})
	for _, e := range items {
		tw.AppendRow(table.Row{e.ID, e.TS, e.Type, e.TaskType, e.Summary})
	}
	tw.Render()
}

func mark(done bool) string {
	if done {
		return "x"
	}
	return " "
}

func checklistDone(t habiticasdk.Task) int {
	n := 0
	for _, item := range t.Checklist {
		if item.Completed {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
