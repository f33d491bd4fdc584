// Package tui is the interactive list. It renders a todos.Controller and a
// todos.Session and turns key presses into their operations; it holds no
// todo state of its own.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/i18n"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todos"
	"github.com/Makepad-fr/tada/internal/ui"
)

// listItem adapts model.Todo to bubbles/list.Item
type listItem struct {
	todo    model.Todo
	label   string
	editing bool
}

func (i listItem) Title() string       { return i.label }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.label }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	box := mutedStyle.Render(boxUnchecked)
	text := it.label
	if it.todo.Title == "" {
		text = mutedStyle.Render(text)
	}
	if it.todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(it.label)
	}
	if it.editing {
		text += " " + accentStyle.Render(editMark)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

// opDoneMsg reports the end of one asynchronous controller call.
type opDoneMsg struct {
	op  string
	err error
}

type keyMap struct {
	toggle, add, edit, del, refresh key.Binding
}

var keys = keyMap{
	toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	del:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}

func (k keyMap) bindings() []key.Binding { return []key.Binding{k.toggle, k.add, k.edit, k.del, k.refresh} }

type Model struct {
	ctl  *todos.Controller
	sess *todos.Session
	loc  i18n.Locale
	ctx  context.Context

	list list.Model
	ti   textinput.Model

	width, height int
	inflight      int
	status        string
	statusErr     bool
	editingID     model.ID
}

// New builds the TUI model. ctx is handed to every controller call.
func New(ctx context.Context, ctl *todos.Controller, sess *todos.Session, loc i18n.Locale) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Edit title..."
	ti.CharLimit = 200

	m := Model{ctl: ctl, sess: sess, loc: loc, ctx: ctx, list: l, ti: ti, width: 80, height: 24, inflight: 1}
	m.sync()
	return m
}

// Run starts the program on the alt screen and blocks until the user quits.
func Run(ctx context.Context, ctl *todos.Controller, sess *todos.Session, loc i18n.Locale) error {
	_, err := tea.NewProgram(New(ctx, ctl, sess, loc), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Init loads the collection; New already counted it as in flight.
func (m Model) Init() tea.Cmd {
	return call(m.ctx, "refresh", m.ctl.Refresh)
}

// run dispatches fn on its own goroutine. Several may be in flight.
func (m *Model) run(op string, fn func(context.Context) error) tea.Cmd {
	m.inflight++
	return call(m.ctx, op, fn)
}

func call(ctx context.Context, op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case opDoneMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		if msg.err != nil {
			m.status, m.statusErr = msg.op+" failed: "+msg.err.Error(), true
		} else {
			m.status, m.statusErr = msg.op+" ok", false
		}
		m.sync()
		return m, nil
	case tea.KeyMsg:
		if m.editingID != "" {
			return m.updateEditing(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.updateBrowsing(msg)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.ctl
	sel, hasSel := m.list.SelectedItem().(listItem)
	switch {
	case msg.String() == "q", msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, keys.toggle):
		if hasSel {
			id := sel.todo.ID
			cmd := m.run("toggle", func(ctx context.Context) error { return ctl.Toggle(ctx, id) })
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, keys.add):
		in := model.Input{Title: m.loc.Placeholder(), Completed: false}
		cmd := m.run("create", func(ctx context.Context) error { return ctl.Create(ctx, in) })
		return m, cmd
	case key.Matches(msg, keys.del):
		if hasSel {
			id := sel.todo.ID
			cmd := m.run("delete", func(ctx context.Context) error { return ctl.Delete(ctx, id) })
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, keys.refresh):
		cmd := m.run("refresh", ctl.Refresh)
		return m, cmd
	case key.Matches(msg, keys.edit):
		if hasSel {
			m.sess.Begin(sel.todo)
			m.sync()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if err := m.sess.SetDraft(m.ti.Value()); err != nil {
			m.sync()
			return m, nil
		}
		cmd := m.run("save", m.sess.Commit)
		return m, cmd
	case "esc":
		m.sess.Cancel()
		m.sync()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	_ = m.sess.SetDraft(m.ti.Value())
	return m, cmd
}

// sync rebuilds the list from the controller and the input from the session.
func (m *Model) sync() {
	editing, isEditing := m.sess.State().(todos.Editing)

	all := m.ctl.Todos()
	items := make([]list.Item, 0, len(all))
	for _, t := range all {
		items = append(items, listItem{todo: t, label: m.loc.Label(t), editing: isEditing && t.ID == editing.ID})
	}
	m.list.SetItems(items)

	d, p := ui.Stats(all)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), d,
		pendingStyle.Render("•"), p,
		accentStyle.Render("Total"), len(all),
	)

	switch {
	case isEditing && m.editingID != editing.ID:
		m.editingID = editing.ID
		m.ti.SetValue(editing.Draft)
		m.ti.CursorEnd()
		m.ti.Focus()
	case !isEditing && m.editingID != "":
		m.editingID = ""
		m.ti.SetValue("")
		m.ti.Blur()
	}
}

func (m Model) View() string {
	listHeight := m.height - 4
	if m.editingID != "" {
		listHeight -= 3
	}
	if m.status != "" {
		listHeight--
	}
	m.list.SetSize(m.width-4, max(listHeight, 1))

	content := m.list.View()
	if m.editingID != "" {
		title := fmt.Sprintf("Edit #%s  %s", m.editingID, helpStyle.Render("enter save · esc cancel"))
		content += "\n" + borderStyle.Render(title+"\n"+m.ti.View())
	}
	if m.status != "" {
		line := mutedStyle.Render(m.status)
		if m.statusErr {
			line = errorStyle.Render("✖ " + m.status)
		}
		if m.inflight > 0 {
			line += mutedStyle.Render(strings.Repeat(".", min(m.inflight, 3)))
		}
		content += "\n" + line
	}
	return borderStyle.Render(content)
}
