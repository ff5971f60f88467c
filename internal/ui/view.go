package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ramanasai/checkin/internal/schedule"
	"github.com/ramanasai/checkin/internal/version"
)

func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	body := m.renderTab(width)
	sections := []string{m.renderTopBar(width), m.renderTabs(), body, m.statusBar()}
	ui := lipgloss.JoinVertical(lipgloss.Left, sections...)

	switch m.mode {
	case modePopup:
		ui = overlayCenter(ui, m.renderPopup())
	case modeAddTodo:
		ui = overlayCenter(ui, m.modal("New todo", m.input.View()+"\n\n"+m.st.Hint.Render("#word adds a tag • enter to save • esc to cancel")))
	case modeAddGoal:
		ui = overlayCenter(ui, m.modal("New goal for this week", m.input.View()+"\n\n"+m.st.Hint.Render("enter to save • esc to cancel")))
	case modeLinkGoal, modeUnlinkGoal:
		title := "Link todo to goal"
		if m.mode == modeUnlinkGoal {
			title = "Unlink todo from goal"
		}
		ui = overlayCenter(ui, m.modal(title, m.input.View()+"\n\n"+m.st.Hint.Render("goal ids are shown on the Goals tab")))
	case modeTag:
		ui = overlayCenter(ui, m.modal("Add tag", m.tagInput.View()))
	case modeUntag:
		ui = overlayCenter(ui, m.modal("Remove tag", m.tagInput.View()))
	case modeHelp:
		ui = overlayCenter(ui, m.helpView())
	}
	return ui
}

func (m Model) renderTopBar(width int) string {
	now := m.clock.Now()
	clock := now.In(m.loc).Format("Jan 02 03:04 PM")
	name := version.GetShortVersion()

	if m.sched == nil {
		return m.st.TopBar.Width(width).Render(name + "  |  " + clock)
	}
	snap := m.sched.Snapshot()
	switch snap.Mode {
	case schedule.Running:
		left := max(0, snap.NextFire.Sub(now))
		text := fmt.Sprintf("%s • next check-in in %s (every %s)  |  %s",
			name, formatCountdown(left), snap.Interval, clock)
		return m.st.TopBar.Width(width).Render(text)
	case schedule.PausedManual:
		text := fmt.Sprintf("%s • paused with %s left • p to resume  |  %s", name, formatCountdown(snap.Remaining), clock)
		return m.st.Paused.Width(width).Render(text)
	default:
		text := fmt.Sprintf("%s • check-in open, timer held at %s  |  %s", name, formatCountdown(snap.Remaining), clock)
		return m.st.Paused.Width(width).Render(text)
	}
}

func (m Model) renderTabs() string {
	var parts []string
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == m.tab {
			parts = append(parts, m.st.TabOn.Render(label))
		} else {
			parts = append(parts, m.st.TabOff.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderTab(width int) string {
	rows := max(5, m.height-4)
	switch m.tab {
	case tabTodos:
		return m.renderTodos(width, rows)
	case tabGoals:
		return m.renderGoals(width, rows)
	default:
		return m.renderHistory(width, rows)
	}
}

func (m Model) renderHistory(width, rows int) string {
	if len(m.entries) == 0 {
		return m.st.Hint.Render("No check-ins yet. Press l to log one now.")
	}
	var lines []string
	var lastDay string
	for i, e := range m.entries {
		at := e.At.In(m.loc)
		if day := at.Format("Mon Jan 02"); day != lastDay {
			lines = append(lines, m.st.Title.Render(day))
			lastDay = day
		}
		line := fmt.Sprintf("  %s  %s", m.st.Label.Render(at.Format("03:04 PM")), truncate(e.Text, width-14))
		lines = append(lines, m.highlight(line, i == m.cursor[tabHistory]))
	}
	return window(lines, m.cursorLine(lines), rows)
}

func (m Model) renderTodos(width, rows int) string {
	if len(m.todos) == 0 {
		return m.st.Hint.Render("No todos yet. Press a to add one.")
	}
	lines := make([]string, 0, len(m.todos))
	for i, t := range m.todos {
		box, text := "[ ]", truncate(t.Text, width-30)
		if t.Completed {
			box, text = "[x]", m.st.Done.Render(text)
		}
		line := fmt.Sprintf("%s %s %s", m.st.Label.Render(fmt.Sprintf("%4d", t.ID)), box, text)
		if len(t.Tags) > 0 {
			names := make([]string, 0, len(t.Tags))
			for _, tag := range t.Tags {
				names = append(names, "#"+tag.Name)
			}
			line += "  " + m.st.Tags.Render(strings.Join(names, " "))
		}
		lines = append(lines, m.highlight(line, i == m.cursor[tabTodos]))
	}
	return window(lines, m.cursor[tabTodos], rows)
}

func (m Model) renderGoals(width, rows int) string {
	header := m.st.Title.Render(fmt.Sprintf("Week %d, %d", m.week, m.year)) + "  " + m.st.Hint.Render("[ ] to change week")
	if len(m.goals) == 0 {
		return header + "\n" + m.st.Hint.Render("No goals for this week. Press a to add one.")
	}
	var lines []string
	selected := 0
	for i, g := range m.goals {
		box, text := "[ ]", truncate(g.Text, width-12)
		if g.Completed {
			box, text = "[x]", m.st.Done.Render(text)
		}
		if i == m.cursor[tabGoals] {
			selected = len(lines)
		}
		line := fmt.Sprintf("%s %s %s", m.st.Label.Render(fmt.Sprintf("%4d", g.ID)), box, text)
		lines = append(lines, m.highlight(line, i == m.cursor[tabGoals]))
		for _, t := range g.Todos {
			mark := "·"
			if t.Completed {
				mark = "✓"
			}
			lines = append(lines, m.st.Hint.Render(fmt.Sprintf("       %s #%d %s", mark, t.ID, truncate(t.Text, width-20))))
		}
	}
	return header + "\n" + window(lines, selected, rows-1)
}

func (m Model) renderPopup() string {
	var b strings.Builder
	b.WriteString(m.popup.View())
	if open := m.openTodos(); len(open) > 0 {
		b.WriteString("\n\n" + m.st.Label.Render("Open todos (tab to pick):") + "\n")
		for i, t := range open {
			if i >= 5 {
				b.WriteString(m.st.Hint.Render(fmt.Sprintf("  … and %d more", len(open)-i)) + "\n")
				break
			}
			b.WriteString(m.highlight("  "+t.Text, i == m.popupTodo) + "\n")
		}
	}
	if m.errMsg != "" {
		b.WriteString("\n" + m.st.Error.Render(m.errMsg))
	}
	b.WriteString("\n" + m.st.Hint.Render("ctrl+s to save • esc to skip"))
	return m.modal("What have you been working on?", b.String())
}

func (m Model) statusBar() string {
	if m.errMsg != "" && m.mode != modePopup {
		return m.st.Error.Render("error: "+m.errMsg) + "  " + m.st.Hint.Render("(any key to dismiss)")
	}
	hints := map[tab]string{
		tabHistory: "d delete",
		tabTodos:   "a add • space toggle • d delete • t tag • u untag • g/G link/unlink goal",
		tabGoals:   "a add • space toggle • d delete • [ ] week",
	}[m.tab]
	line := m.st.Hint.Render("p pause • l log now • tab switch • ? help • q quit • " + hints)
	if m.status != "" {
		line = m.st.Success.Render(m.status) + "  " + line
	}
	return line
}

func (m Model) helpView() string {
	rows := [][2]string{
		{"p", "pause / resume check-ins"},
		{"l", "open the check-in popup now"},
		{"ctrl+s / esc", "save / skip a check-in"},
		{"tab, 1-3", "switch tabs"},
		{"j/k", "move"},
		{"a", "add todo or goal"},
		{"space", "toggle done"},
		{"d", "delete selected"},
		{"t / u", "tag / untag todo"},
		{"g / G", "link / unlink todo and goal"},
		{"[ / ]", "previous / next week"},
		{"r", "reload"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(m.st.Label.Render(padRight(r[0], 14)) + m.st.Value.Render(r[1]) + "\n")
	}
	b.WriteString("\n" + m.st.Hint.Render("any key to close"))
	return m.modal("Keys", b.String())
}

func (m Model) modal(title, content string) string {
	box := lipgloss.JoinVertical(lipgloss.Left,
		m.st.Title.Render(title),
		"",
		content,
	)
	return m.st.Border.Render(box)
}

func (m Model) highlight(line string, on bool) string {
	if on {
		return m.st.Selected.Render("▶ " + line)
	}
	return "  " + line
}

// cursorLine maps the history cursor onto rendered lines, which include day headers.
func (m Model) cursorLine(lines []string) int {
	var lastDay string
	line := 0
	for i, e := range m.entries {
		if day := e.At.In(m.loc).Format("Mon Jan 02"); day != lastDay {
			line++
			lastDay = day
		}
		if i == m.cursor[tabHistory] {
			return min(line, len(lines)-1)
		}
		line++
	}
	return 0
}

// window returns at most rows lines, scrolled so that line sel is visible.
func window(lines []string, sel, rows int) string {
	if rows <= 0 || len(lines) <= rows {
		return strings.Join(lines, "\n")
	}
	start := clamp(sel-rows/2, 0, len(lines)-rows)
	return strings.Join(lines[start:start+rows], "\n")
}

func overlayCenter(base, modal string) string {
	baseH := lipgloss.Height(base)
	mh := lipgloss.Height(modal)
	topPad := max(0, (baseH-mh)/3)
	return lipgloss.JoinVertical(lipgloss.Left, strings.Repeat("\n", topPad), lipgloss.PlaceHorizontal(lipgloss.Width(base), lipgloss.Center, modal), "")
}

func formatCountdown(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	mins := int(d/time.Minute) % 60
	secs := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

func truncate(s string, w int) string {
	r := []rune(s)
	if w <= 1 || len(r) <= w {
		return s
	}
	return string(r[:w-1]) + "…"
}

func padRight(s string, w int) string {
	if len([]rune(s)) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len([]rune(s)))
}
