package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/civcore/cli"
	"github.com/nathoo/civcore/engine"
	"github.com/nathoo/civcore/types"
)

// entry is one unstyled log line, kept so the log can be re-wrapped
// when the terminal is resized.
type entry struct {
	text   string
	kind   lineKind
	input  bool
	system bool
	table  bool
}

// Model is the Bubble Tea model for the inspector.
type Model struct {
	session *engine.Session
	console *cli.Console

	viewport viewport.Model
	input    textinput.Model
	history  *History
	log      []entry

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates an inspector over s. The status bar and /research follow
// the first player until /follow picks another.
func New(s *engine.Session, version string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	console := cli.NewConsole(s)
	console.Version = version
	console.Hints = []string{"PgUp/PgDn scroll, Up/Down history, Tab completes"}
	return Model{
		session: s,
		console: console,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(s *engine.Session, version string) error {
	_, err := tea.NewProgram(New(s, version), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// bannerMsg carries the greeting into the first Update.
type bannerMsg []string

func (m Model) Init() tea.Cmd {
	banner := bannerMsg{
		cli.Banner(m.session),
		"Type help for commands, /help for console commands. Tab completes names.",
	}
	return tea.Batch(textinput.Blink, func() tea.Msg { return banner })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "tab":
			m.setInput(Complete(m.input.Value(), m.completions()))
			return m, nil
		case "up":
			if prev, ok := m.history.Prev(m.input.Value()); ok {
				m.setInput(prev)
			}
			return m, nil
		case "down":
			next, _ := m.history.Next()
			m.setInput(next)
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case bannerMsg:
		m.appendLines(msg, false, false)
		m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// resize fits the viewport above the status bar and input line.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	vh := max(height-2, 1)
	if !m.ready {
		m.viewport = viewport.New(width, vh)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	} else {
		m.viewport.Width, m.viewport.Height = width, vh
	}
	m.refresh()
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// completions are the words Tab can complete: verbs, players, techs and
// cities.
func (m Model) completions() []string {
	out := append(engine.Verbs(), m.session.Players()...)
	for _, a := range m.session.Defs.Advances[types.AFirst:] {
		out = append(out, a.Name)
	}
	for _, c := range m.session.World.AllCities() {
		out = append(out, c.Name)
	}
	return out
}

// submit runs the input line through the console.
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)
	m.history.ResetCursor()

	r := m.console.Exec(input)
	m.log = append(m.log, entry{text: "> " + input, input: true})
	m.appendLines(r.Lines, r.System, r.Table)
	m.appendLines(r.Trace, false, false)
	m.refresh()
	if r.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// appendLines adds a block of output followed by a blank separator.
func (m *Model) appendLines(lines []string, system, table bool) {
	if len(lines) == 0 {
		return
	}
	for _, line := range lines {
		e := entry{text: line, system: system, table: table}
		if !system && !table {
			e.kind = classifyLine(line)
		}
		m.log = append(m.log, e)
	}
	m.log = append(m.log, entry{})
}

// refresh re-wraps and re-styles the log at the current width. Tables
// are never wrapped.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)

	styled := make([]string, 0, len(m.log))
	for _, e := range m.log {
		switch {
		case e.text == "", e.table:
			styled = append(styled, e.text)
		case e.input:
			styled = append(styled, stylePlayerInput.Render(wordWrap(e.text, width)))
		case e.system:
			styled = append(styled, styledSystemMsg(wordWrap(e.text, width)))
		default:
			styled = append(styled, renderLineKind(wordWrap(e.text, width), e.kind))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap breaks text at spaces so no line exceeds width, unless a
// single word does. The first line keeps its indentation.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	trimmed := strings.TrimLeft(text, " ")
	var lines []string
	line := text[:len(text)-len(trimmed)]
	for i, word := range strings.Fields(trimmed) {
		switch {
		case i == 0:
			line += word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	return strings.Join(append(lines, line), "\n")
}

func (m Model) View() string {
	switch {
	case m.quitting:
		return ""
	case !m.ready:
		return "Loading..."
	}
	return strings.Join([]string{m.viewport.View(), m.renderStatusBar(), m.input.View()}, "\n")
}

// viewportKeyMap leaves Up and Down to the input history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
