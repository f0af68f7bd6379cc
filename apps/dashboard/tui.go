package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/trezcool/uniguide/console"
	"github.com/trezcool/uniguide/core/user"
)

type mode int

const (
	browsing mode = iota
	searching
	confirming
	editing
)

type keyMap struct {
	Next, Prev     key.Binding
	Up, Down       key.Binding
	Search         key.Binding
	Refresh        key.Binding
	Toggle, Delete key.Binding
	Create, Edit   key.Binding
	Dismiss        key.Binding
	Quit           key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Search, k.Create, k.Edit, k.Toggle, k.Delete, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down},
		{k.Search, k.Refresh, k.Dismiss},
		{k.Create, k.Edit, k.Toggle, k.Delete},
		{k.Quit},
	}
}

var keys = keyMap{
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous page")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Toggle:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle status")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Create:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:    key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	Dismiss: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss message")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Messages sent back by commands once the network call they run returns.
type (
	loadedMsg    struct{ page string }
	doneMsg      struct{}
	submittedMsg struct{ saved bool }
)

type modelTUI struct {
	ctx   context.Context
	shell *console.Shell
	me    user.User

	mode   mode
	cursor int

	search     textinput.Model
	prevSearch string // restored when a search is cancelled
	prompt     string // pending delete confirmation

	input textinput.Model // focused form field
	field int

	help          help.Model
	width, height int
}

func newModel(ctx context.Context, shell *console.Shell, me user.User) modelTUI {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search..."
	search.CharLimit = 100

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 500

	return modelTUI{
		ctx:    ctx,
		shell:  shell,
		me:     me,
		search: search,
		input:  input,
		help:   help.New(),
		width:  80,
		height: 24,
	}
}

func loadCmd(ctx context.Context, p console.Page) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		p.Load(ctx)
		return loadedMsg{page: p.Name()}
	}
}

func (m modelTUI) Init() tea.Cmd {
	return loadCmd(m.ctx, m.shell.Active())
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case loadedMsg, doneMsg:
		m.clampCursor()
		return m, nil
	case submittedMsg:
		m.clampCursor()
		if msg.saved || m.shell.Modal() == nil {
			m.mode = browsing
			m.input.Blur()
			return m, nil
		}
		m.focusField()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case searching:
			return m.updateSearch(msg)
		case confirming:
			return m.updateConfirm(msg)
		case editing:
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m modelTUI) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.shell.Active()
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Next):
		m.shell.Next()
		m.cursor = 0
		return m, loadCmd(m.ctx, m.shell.Active())
	case key.Matches(msg, keys.Prev):
		m.shell.Prev()
		m.cursor = 0
		return m, loadCmd(m.ctx, m.shell.Active())
	}
	if p == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(p.Rows())-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Search):
		m.mode = searching
		m.prevSearch = p.Query().Search
		m.search.SetValue(m.prevSearch)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, keys.Refresh):
		return m, loadCmd(m.ctx, p)
	case key.Matches(msg, keys.Dismiss):
		p.Dismiss()
	case key.Matches(msg, keys.Toggle):
		row, ctx := m.cursor, m.ctx
		return m, func() tea.Msg {
			p.ToggleAt(ctx, row)
			return doneMsg{}
		}
	case key.Matches(msg, keys.Delete):
		if prompt, ok := p.AskDeleteAt(m.cursor); ok {
			m.prompt = prompt
			m.mode = confirming
		}
	case key.Matches(msg, keys.Create):
		if m.shell.Create() != nil {
			return m.openForm()
		}
	case key.Matches(msg, keys.Edit):
		if _, ok := m.shell.Edit(m.cursor); ok {
			return m.openForm()
		}
	}
	return m, nil
}

// updateSearch filters the list as the term is typed; esc restores the previous term.
func (m modelTUI) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.shell.Active()
	switch msg.String() {
	case "enter":
		m.mode = browsing
		m.search.Blur()
		return m, nil
	case "esc":
		if p != nil {
			p.SetSearch(m.prevSearch)
		}
		m.mode = browsing
		m.search.Blur()
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if p != nil {
		p.SetSearch(m.search.Value())
	}
	m.cursor = 0
	return m, cmd
}

func (m modelTUI) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.shell.Active()
	switch msg.String() {
	case "y", "Y":
		m.mode = browsing
		m.prompt = ""
		ctx := m.ctx
		return m, func() tea.Msg {
			p.ConfirmDelete(ctx, true)
			return doneMsg{}
		}
	case "n", "N", "esc":
		p.ConfirmDelete(m.ctx, false)
		m.mode = browsing
		m.prompt = ""
	}
	return m, nil
}

func (m modelTUI) openForm() (tea.Model, tea.Cmd) {
	m.mode = editing
	m.field = 0
	m.focusField()
	return m, textinput.Blink
}

func (m *modelTUI) focusField() {
	form := m.shell.Modal()
	if form == nil || len(form.Fields()) == 0 {
		return
	}
	f := form.Fields()[m.field]
	m.input.SetValue(form.Value(f.Key))
	m.input.Placeholder = f.Label
	m.input.EchoMode = textinput.EchoNormal
	if f.Kind == console.Password {
		m.input.EchoMode = textinput.EchoPassword
	}
	m.input.CursorEnd()
	m.input.Focus()
}

func (m modelTUI) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := m.shell.Modal()
	if form == nil {
		m.mode = browsing
		return m, nil
	}
	if form.State() == console.Submitting {
		return m, nil
	}
	fields := form.Fields()
	if len(fields) == 0 {
		m.shell.CloseModal()
		m.mode = browsing
		return m, nil
	}
	f := fields[m.field]

	switch msg.String() {
	case "esc":
		m.shell.CloseModal()
		m.mode = browsing
		m.input.Blur()
		return m, nil
	case "tab", "down":
		m.field = (m.field + 1) % len(fields)
		m.focusField()
		return m, nil
	case "shift+tab", "up":
		m.field = (m.field - 1 + len(fields)) % len(fields)
		m.focusField()
		return m, nil
	case "enter":
		ctx := m.ctx
		return m, func() tea.Msg {
			return submittedMsg{saved: form.Submit(ctx)}
		}
	}

	switch f.Kind {
	case console.Checkbox:
		if msg.String() == " " {
			form.Set(f.Key, strconv.FormatBool(!isChecked(form.Value(f.Key))))
		}
		return m, nil
	case console.Select:
		switch msg.String() {
		case "left", "right", " ":
			form.Set(f.Key, cycle(f.Options, form.Value(f.Key), msg.String() == "left"))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	form.Set(f.Key, m.input.Value())
	return m, cmd
}

func (m *modelTUI) clampCursor() {
	p := m.shell.Active()
	if p == nil {
		m.cursor = 0
		return
	}
	if n := len(p.Rows()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func isChecked(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// cycle returns the option after (or before) current, wrapping around.
func cycle(options []string, current string, backwards bool) string {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	switch {
	case idx < 0:
		return options[0]
	case backwards:
		return options[(idx-1+len(options))%len(options)]
	}
	return options[(idx+1)%len(options)]
}

func (m modelTUI) View() string {
	header := fmt.Sprintf("%s   %s %s",
		titleStyle.Render("Uniguide"),
		accentStyle.Render(m.me.Name()),
		mutedStyle.Render("("+m.me.Role()+")"),
	)

	var nav []string
	for _, p := range m.shell.Pages() {
		if p == m.shell.Active() {
			nav = append(nav, selectedStyle.Render(p.Title()))
			continue
		}
		nav = append(nav, p.Title())
	}
	sidebar := sidebarStyle.Render(strings.Join(nav, "\n"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.pageView())
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", m.footer()))
}

func (m modelTUI) pageView() string {
	p := m.shell.Active()
	if p == nil {
		return mutedStyle.Render("Nothing to manage for this role.")
	}

	lines := []string{titleStyle.Render(p.Title()) + "  " + stateStyle(p.State()).Render(p.State().String())}
	if b := p.Banner(); !b.Empty() {
		lines = append(lines, bannerStyle(b.Severity).Render(b.Text))
	}
	if m.mode == searching {
		lines = append(lines, m.search.View())
	} else if q := p.Query().Search; q != "" {
		lines = append(lines, mutedStyle.Render("search: "+q))
	}
	lines = append(lines, "")

	rows := p.Rows()
	switch {
	case len(rows) == 0 && p.State() == console.Loading:
		lines = append(lines, mutedStyle.Render("Loading..."))
	case len(rows) == 0:
		lines = append(lines, mutedStyle.Render("No records."))
	default:
		lines = append(lines, m.visibleRows(table(p.Columns(), rows, m.cursor))...)
	}

	if m.mode == confirming {
		lines = append(lines, "", errorStyle.Render(m.prompt)+" "+helpStyle.Render("(y/n)"))
	}
	view := strings.Join(lines, "\n")
	if m.mode == editing {
		view = lipgloss.JoinVertical(lipgloss.Left, view, "", m.formView())
	}
	return view
}

// visibleRows scrolls the table so that the cursor stays on screen. lines[0] is the header.
func (m modelTUI) visibleRows(lines []string) []string {
	room := m.height - 12
	if m.mode == editing {
		room = 3
	}
	if room < 3 {
		room = 3
	}
	if len(lines)-1 <= room {
		return lines
	}
	start := m.cursor - room + 1
	if start < 0 {
		start = 0
	}
	return append([]string{lines[0]}, lines[1+start:1+start+room]...)
}

func (m modelTUI) formView() string {
	form := m.shell.Modal()
	if form == nil {
		return ""
	}
	errs := form.Errors()

	lines := []string{titleStyle.Render(form.Title())}
	if msg := form.SubmitError(); msg != "" {
		lines = append(lines, errorStyle.Render(msg))
	}
	for i, f := range form.Fields() {
		label := f.Label
		if i == m.field {
			label = accentStyle.Render(label)
		}

		var value string
		switch f.Kind {
		case console.Checkbox:
			value = "[ ]"
			if isChecked(form.Value(f.Key)) {
				value = "[x]"
			}
		case console.Select:
			value = "‹ " + form.Value(f.Key) + " ›"
		case console.Password:
			value = strings.Repeat("•", len([]rune(form.Value(f.Key))))
		default:
			value = form.Value(f.Key)
		}
		if i == m.field && f.Kind != console.Checkbox && f.Kind != console.Select {
			value = m.input.View()
		}

		lines = append(lines, label+": "+value)
		if msg, ok := errs[f.Key]; ok {
			lines = append(lines, "  "+errorStyle.Render(msg))
		}
	}
	if form.State() == console.Submitting {
		lines = append(lines, pendingStyle.Render("Saving..."))
	}
	lines = append(lines, helpStyle.Render("tab/↑↓ move · space toggle · ←→ choose · enter save · esc cancel"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m modelTUI) footer() string {
	if m.mode == editing || m.mode == searching {
		return ""
	}
	return m.help.View(keys)
}
