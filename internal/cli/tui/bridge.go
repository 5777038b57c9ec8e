package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/fsgit/internal/session"
)

// Poller periodically lists a session store and feeds the results into a
// bubbletea program as SessionsMsg, replacing the donor's event-bus Bridge
// with a pull-based poll loop (spec.md's session store is a plain directory
// of JSON files, not an event source).
type Poller struct {
	program  *tea.Program
	store    *session.Store
	interval time.Duration
}

// NewPoller creates a Poller that refreshes program from store every
// interval (or every second if interval is zero or negative).
func NewPoller(program *tea.Program, store *session.Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{program: program, store: store, interval: interval}
}

// Run polls until ctx is canceled, sending SessionsMsg on every tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll()
	for {
		select {
		case <-ctx.Done():
			p.program.Send(DoneMsg{})
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	records, err := p.store.List()
	if err != nil {
		return
	}
	rows := make([]SessionRow, len(records))
	for i, rec := range records {
		rows[i] = SessionRow{
			ID:         rec.ID,
			BaseBranch: rec.BaseBranch,
			WorkBranch: rec.WorkBranch,
			State:      string(rec.State),
			StartedAt:  rec.StartedAt,
		}
	}
	p.program.Send(SessionsMsg{Rows: rows})
}
