package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/render"
)

var (
	colorMuted   = lipgloss.Color("#8b949e")
	colorMatch   = lipgloss.Color("#fff3a3")
	colorCurrent = lipgloss.Color("#ff9632")
	colorInk     = lipgloss.Color("#1f2328")

	toneColors = map[string]lipgloss.Color{
		"law":       lipgloss.Color("#6e7781"),
		"procedure": lipgloss.Color("#6e7781"),
		"general":   lipgloss.Color("#0969da"),
		"medical":   lipgloss.Color("#1a7f37"),
		"trauma":    lipgloss.Color("#cf222e"),
		"special":   lipgloss.Color("#8250df"),
	}

	titleBarStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	helpStyle     = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)

// terminalStyles colours matches, tags and badges for the viewport.
func terminalStyles() render.Styles {
	match := lipgloss.NewStyle().Background(colorMatch).Foreground(colorInk)
	current := lipgloss.NewStyle().Background(colorCurrent).Foreground(colorInk).Bold(true)
	muted := lipgloss.NewStyle().Foreground(colorMuted)
	return render.Styles{
		Match: func(s string, focused bool) string {
			if focused {
				return current.Render(s)
			}
			return match.Render(s)
		},
		Tag: func(tone, s string) string {
			c, ok := toneColors[tone]
			if !ok {
				return lipgloss.NewStyle().Bold(true).Render(s)
			}
			return lipgloss.NewStyle().Bold(true).Foreground(c).Render(s)
		},
		Title:  renderer(lipgloss.NewStyle().Bold(true)),
		Header: renderer(lipgloss.NewStyle().Underline(true)),
		Badge: func(kind guide.SegmentKind, label string) string {
			bg := toneColors["trauma"]
			if kind == guide.SegmentOnlineOrder {
				bg = toneColors["special"]
			}
			return lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("#ffffff")).Padding(0, 1).Render(label)
		},
		Link:  renderer(lipgloss.NewStyle().Underline(true).Foreground(toneColors["general"])),
		Muted: renderer(muted),
	}
}

func renderer(st lipgloss.Style) func(string) string {
	return func(s string) string { return st.Render(s) }
}
