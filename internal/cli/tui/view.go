package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}

	showLogs := m.ShowLogs || len(m.LogLines) > 0
	if m.Height <= 0 || !showLogs {
		return m.renderBaseView()
	}
	logHeight := m.Height / 2
	if logHeight < 3 {
		return m.renderBaseView()
	}
	topHeight := m.Height - logHeight

	top := m.renderTopArea(topHeight)
	logs := m.renderLogArea(logHeight)

	if logs == "" {
		return top
	}
	return top + "\n" + logs
}

func (m *Model) renderBaseView() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderSessions())
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderTopArea(height int) string {
	if height <= 0 {
		return ""
	}

	header := m.renderHeader()
	status := m.renderStatusLine()
	footer := m.renderFooter()
	sessions := strings.TrimRight(m.renderSessions(), "\n")
	sessionLines := []string{}
	if sessions != "" {
		sessionLines = strings.Split(sessions, "\n")
	}

	lines := []string{header}
	if height >= 4 {
		lines = append(lines, "")
	}

	reserved := 2
	remaining := height - len(lines) - reserved
	if remaining < 0 {
		remaining = 0
	}
	if len(sessionLines) > remaining {
		sessionLines = sessionLines[:remaining]
	}
	lines = append(lines, sessionLines...)
	lines = append(lines, status)
	lines = append(lines, footer)

	return padOrTrim(lines, height)
}

func (m *Model) renderLogArea(height int) string {
	if height <= 0 {
		return ""
	}

	lines := make([]string, 0, height)
	lines = append(lines, m.renderLogHeader())

	visible := height - 1
	logLines := m.tailLogLines(visible)
	for _, line := range logLines {
		lines = append(lines, m.Styles.LogLine.Render(m.truncateLine(line)))
	}

	return padOrTrim(lines, height)
}

func (m *Model) renderLogHeader() string {
	width := m.Width
	if width <= 0 {
		return m.Styles.LogTitle.Render("Logs")
	}
	title := " Logs "
	if len(title) >= width {
		return m.Styles.LogTitle.Render(title)
	}
	left := (width - len(title)) / 2
	right := width - len(title) - left
	return m.Styles.LogTitle.Render(strings.Repeat("─", left) + title + strings.Repeat("─", right))
}

func (m *Model) tailLogLines(max int) []string {
	if max <= 0 {
		return nil
	}
	if len(m.LogLines) == 0 {
		return []string{"(no logs yet)"}
	}
	if len(m.LogLines) <= max {
		return m.LogLines
	}
	return m.LogLines[len(m.LogLines)-max:]
}

func (m *Model) truncateLine(line string) string {
	if m.Width <= 0 {
		return line
	}
	if len(line) <= m.Width {
		return line
	}
	if m.Width <= 3 {
		return line[:m.Width]
	}
	return line[:m.Width-3] + "..."
}

func padOrTrim(lines []string, height int) string {
	if height <= 0 {
		return ""
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))
	return fmt.Sprintf("%s  %s",
		m.Styles.Title.Render("fsgit staged sessions"),
		m.Styles.Timer.Render(timer),
	)
}

func (m *Model) renderSessions() string {
	if len(m.Sessions) == 0 {
		return "  No staged sessions\n\n"
	}

	var b strings.Builder
	ids := make([]string, 0, len(m.Sessions))
	for id := range m.Sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		b.WriteString(m.renderSession(m.Sessions[id]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderSession(row SessionRow) string {
	icon := m.iconFor(row.State)
	name := m.Styles.UnitName.Render(row.ID)
	branches := m.Styles.PhaseText.Render(fmt.Sprintf("%s -> %s", row.BaseBranch, row.WorkBranch))
	return fmt.Sprintf("  %s %s  %s  %s", icon, name, branches, row.StartedAt)
}

func (m *Model) iconFor(state string) string {
	switch state {
	case "finalized":
		return m.Styles.UnitComplete.Render(IconComplete)
	case "aborted":
		return m.Styles.UnitFailed.Render(IconFailed)
	default:
		return m.Styles.UnitActive.Render(IconActive)
	}
}

func (m *Model) renderStatusLine() string {
	var active, finalized, aborted int
	for _, row := range m.Sessions {
		switch row.State {
		case "finalized":
			finalized++
		case "aborted":
			aborted++
		default:
			active++
		}
	}

	return fmt.Sprintf("  Sessions: %d active | %s | %s",
		active,
		m.Styles.StatusComplete.Render(fmt.Sprintf("%d finalized", finalized)),
		m.Styles.StatusFailed.Render(fmt.Sprintf("%d aborted", aborted)),
	)
}

func (m *Model) renderFooter() string {
	key := m.Styles.FooterKey.Render("q")
	return m.Styles.Footer.Render(fmt.Sprintf("  Press %s to quit", key))
}

func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	mm := d / time.Minute
	d -= mm * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, mm, s)
}
