// Package tui is the terminal viewer: a search box above a scrollable
// outline, driven by one viewer session.
package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/render"
	"github.com/ziadkadry99/emsguide/internal/viewer"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 4 // title, input, status, help
)

// SnapshotMsg carries a session snapshot into the program.
type SnapshotMsg viewer.Snapshot

// Model is the bubbletea model of the terminal viewer.
type Model struct {
	title    string
	sess     *viewer.Session
	input    textinput.Model
	viewport viewport.Model
	styles   render.Styles

	snap      viewer.Snapshot
	lines     render.Lines
	cursor    int // index into lines.Headers
	searching bool
	width     int
	height    int
}

// New creates a model over sess.
func New(doc *guide.Document, sess *viewer.Session) Model {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "搜尋"
	in.CharLimit = 64

	m := Model{
		title:    doc.Title,
		sess:     sess,
		input:    in,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		styles:   terminalStyles(),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.apply(sess.Snapshot())
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reads the session state after a synchronous change.
func (m Model) refresh() tea.Cmd {
	sess := m.sess
	return func() tea.Msg { return SnapshotMsg(sess.Snapshot()) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		m.relayout(false)
		return m, nil

	case SnapshotMsg:
		if msg.Version <= m.snap.Version {
			return m, nil
		}
		m.apply(viewer.Snapshot(msg))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.input.Blur()
		m.input.SetValue("")
		m.sess.SetQuery("")
		return m, m.refresh()
	case "enter":
		m.searching = false
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.sess.SetQuery(v)
		return m, tea.Batch(cmd, m.refresh())
	}
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.relayout(false)
		return m, m.input.Focus()
	case "esc":
		if m.snap.Query == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.sess.SetQuery("")
		return m, m.refresh()
	case "n":
		m.sess.Next()
		return m, m.refresh()
	case "N":
		m.sess.Previous()
		return m, m.refresh()
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "enter", " ":
		if m.cursor < len(m.lines.Headers) {
			toggle(m.sess, m.lines.Headers[m.cursor].Path)
			return m, m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	n := len(m.lines.Headers)
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	m.relayout(false)

	line := m.lines.Headers[m.cursor].Line
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// apply takes a new snapshot, keeping the cursor on the same header and
// centring the focused match when it changed.
func (m *Model) apply(snap viewer.Snapshot) {
	var cursorPath string
	if m.cursor < len(m.lines.Headers) {
		cursorPath = m.lines.Headers[m.cursor].Path
	}
	focusChanged := snap.Current != m.snap.Current || snap.Query != m.snap.Query
	m.snap = snap
	m.lines = render.Lines{}
	if snap.View != nil {
		m.lines = snap.View.Text(m.styles, m.focusedIndex())
	}

	m.cursor = 0
	for i, h := range m.lines.Headers {
		if h.Path == cursorPath {
			m.cursor = i
			break
		}
	}
	m.relayout(focusChanged)
}

func (m *Model) focusedIndex() int {
	if m.snap.Focused == nil {
		return render.NoMatch
	}
	return m.snap.Focused.Index
}

// relayout refreshes the viewport content. center scrolls the focused
// match to the middle of the viewport.
func (m *Model) relayout(center bool) {
	lines := append([]string(nil), m.lines.Lines...)
	if m.cursor < len(m.lines.Headers) && !m.searching {
		i := m.lines.Headers[m.cursor].Line
		lines[i] = cursorStyle.Render(lines[i])
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	if !center {
		return
	}
	if line, ok := m.lines.FragmentLine[m.focusedIndex()]; ok {
		m.viewport.SetYOffset(max(0, line-m.viewport.Height/2))
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleBarStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("/ 搜尋  enter 展開  n/N 下一個/上一個  esc 清除  q 離開"))
	return b.String()
}

func (m Model) status() string {
	var parts []string
	if m.snap.View != nil {
		parts = append(parts, strconv.Itoa(m.snap.View.Matched)+"/"+strconv.Itoa(m.snap.View.Total))
	}
	if m.snap.Query != "" {
		if m.snap.Settled {
			parts = append(parts, "符合 "+m.snap.Label)
		} else {
			parts = append(parts, "計算中…")
		}
	}
	return " " + strings.Join(parts, "  ")
}

// toggle maps a header path onto the matching accordion level.
func toggle(sess *viewer.Session, path string) {
	parts := strings.Split(path, "/")
	switch len(parts) {
	case 1:
		sess.ToggleEntry(guide.ID(parts[0]))
	case 2:
		sess.ToggleSub(guide.ID(parts[0]), guide.ID(parts[1]))
	case 3:
		sess.ToggleGrand(guide.ID(parts[0]), guide.ID(parts[1]), guide.ID(parts[2]))
	}
}
