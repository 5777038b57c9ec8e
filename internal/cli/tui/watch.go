package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/fsgit/internal/session"
)

// RunWatch renders the staged-session monitor until the user quits or ctx
// is canceled.
func RunWatch(ctx context.Context, store *session.Store) error {
	model := NewModel()
	program := tea.NewProgram(model, tea.WithAltScreen())

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	poller := NewPoller(program, store, 0)
	go poller.Run(pollCtx)

	_, err := program.Run()
	return err
}
