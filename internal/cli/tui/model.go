package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SessionRow is one staged session's display state.
type SessionRow struct {
	ID         string
	BaseBranch string
	WorkBranch string
	State      string
	StartedAt  string
}

// Model is the bubbletea model for the staged-session monitor.
type Model struct {
	Styles Styles

	Sessions  map[string]SessionRow
	StartTime time.Time
	LogLines  []string
	LogLimit  int
	ShowLogs  bool
	Width     int
	Height    int

	Quitting bool
	Done     bool
}

// NewModel creates a new session-monitor TUI model.
func NewModel() *Model {
	return &Model{
		Styles:    DefaultStyles(),
		Sessions:  make(map[string]SessionRow),
		StartTime: time.Now(),
		LogLimit:  500,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg is sent every second to update the timer.
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the TUI should exit.
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C).
type QuitMsg struct{}

// SessionsMsg carries a fresh poll of the session store.
type SessionsMsg struct {
	Rows []SessionRow
}
