package ui

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/Makepad-fr/tada/internal/i18n"
	"github.com/Makepad-fr/tada/internal/model"
)

const maxTitleWidth = 80

// Stats counts completed and pending todos.
func Stats(todos []model.Todo) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Header is the title line plus progress bar shown above a list.
func Header(todos []model.Todo) []string {
	t := Current()
	d, p := Stats(todos)
	return []string{
		fmt.Sprintf("%s  %s %d  %s %d  %s %d",
			C(t.Title, "Todos"),
			C(t.Success, t.SymDone), d,
			C(t.Pending, t.SymPending), p,
			C(t.Accent, "Total"), len(todos),
		),
		C(t.Muted, ProgressBar(d, d+p, 28)),
	}
}

// TodoLines renders one line per todo, prefixed with its id.
func TodoLines(todos []model.Todo, loc i18n.Locale) []string {
	t := Current()
	if len(todos) == 0 {
		return []string{C(t.Muted, "no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		box, color := t.BoxUnchecked, t.Muted
		if td.Completed {
			box, color = t.BoxChecked, t.Success
		}
		label := runewidth.Truncate(loc.Label(td), maxTitleWidth, "...")
		if td.Title == "" {
			label = C(t.Muted, label)
		}
		out = append(out, fmt.Sprintf("%s %s %s", Dim(fmt.Sprintf("#%-3s", td.ID)), C(color, box), label))
	}
	return out
}

// GroupedLines splits the list into Pending and Done sections.
func GroupedLines(todos []model.Todo, loc i18n.Locale) []string {
	var pend, done []model.Todo
	for _, td := range todos {
		if td.Completed {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	t := Current()
	section := func(name string, items []model.Todo) []string {
		lines := []string{C(t.Accent, name)}
		if len(items) == 0 {
			return append(lines, C(t.Muted, "(none)"))
		}
		return append(lines, TodoLines(items, loc)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
