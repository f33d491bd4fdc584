package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/Makepad-fr/tada/internal/i18n"
	"github.com/Makepad-fr/tada/internal/model"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, ProgressBar(1, 2, 10), "█████░░░░░  50%")
	assert.Equal(t, ProgressBar(0, 0, 5), "░░░░░   0%")
}

func TestTodoLinesUseFallbackLabel(t *testing.T) {
	SetColorForcing(false, true)
	defer SetColorForcing(false, false)

	lines := TodoLines([]model.Todo{
		{ID: "1", Title: "Buy milk"},
		{ID: "2", Title: "", Completed: true},
	}, i18n.New("en"))
	assert.Equal(t, len(lines), 2)
	assert.MatchRegex(t, lines[0], `^#1 +☐ Buy milk$`)
	assert.MatchRegex(t, lines[1], `^#2 +☑ Untitled #2$`)
}

func TestGroupedLines(t *testing.T) {
	SetColorForcing(false, true)
	defer SetColorForcing(false, false)

	lines := GroupedLines([]model.Todo{{ID: "1", Title: "A", Completed: true}}, i18n.New("en"))
	joined := strings.Join(lines, "\n")
	assert.MatchRegex(t, joined, `(?s)Pending\n\(none\)\n\nDone\n#1 +☑ A`)
}

func TestPanelPadsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	defer func() { Out = prev }()
	assert.Equal(t, SetTheme("classic"), nil)

	Panel([]string{"새할일", "abcdef"})
	rows := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, len(rows), 4)
	assert.Equal(t, rows[1], "│ 새할일 │")
	assert.Equal(t, rows[2], "│ abcdef │")
}

func TestSetTheme(t *testing.T) {
	assert.NotEqual(t, SetTheme("plaid"), nil)
	assert.Equal(t, SetTheme("neon"), nil)
	assert.Equal(t, Current().BoxChecked, "◼")
	assert.Equal(t, SetTheme(""), nil)
	assert.Equal(t, Current().BoxChecked, "☑")
}

func TestColorForcing(t *testing.T) {
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	defer func() { Out = prev }()
	defer SetColorForcing(false, false)

	SetColorForcing(false, false)
	assert.Equal(t, C(fgRed, "x"), "x")
	SetColorForcing(true, false)
	assert.Equal(t, C(fgRed, "x"), fgRed+"x"+reset)
	SetColorForcing(true, true)
	assert.Equal(t, C(fgRed, "x"), "x")
}
