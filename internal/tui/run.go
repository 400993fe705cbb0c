package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/viewer"
)

// Run starts the terminal viewer and blocks until the user quits.
// Delayed match counts reach the program through Program.Send.
func Run(doc *guide.Document, opts viewer.Options) error {
	var p *tea.Program
	opts.OnUpdate = func(snap viewer.Snapshot) {
		// Also called from inside Model.Update, which Send must not block.
		go p.Send(SnapshotMsg(snap))
	}
	sess := viewer.New(doc, opts)
	defer sess.Close()

	p = tea.NewProgram(New(doc, sess), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
