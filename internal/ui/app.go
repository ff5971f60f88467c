package ui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ramanasai/checkin/internal/config"
	"github.com/ramanasai/checkin/internal/db"
	"github.com/ramanasai/checkin/internal/notify"
	"github.com/ramanasai/checkin/internal/schedule"
)

type tab int

const (
	tabHistory tab = iota
	tabTodos
	tabGoals
)

var tabNames = []string{"History", "Todos", "Goals"}

type mode int

const (
	modeNormal mode = iota
	modePopup
	modeAddTodo
	modeAddGoal
	modeTag
	modeUntag
	modeLinkGoal
	modeUnlinkGoal
	modeHelp
)

const historyLimit = 200

type Model struct {
	cfg   config.Config
	dbh   *sql.DB
	sched *schedule.Scheduler
	clock schedule.Clock
	loc   *time.Location
	st    Theme

	width, height int
	now           time.Time

	tab    tab
	mode   mode
	cursor [3]int

	entries []db.Entry
	todos   []db.Todo
	goals   []db.Goal
	week    int
	year    int

	popup     textarea.Model
	popupTodo int // index into openTodos() offered as "Working on", -1 for none
	input     textinput.Model
	tagInput  TagInput

	status string
	errMsg string
}

// New builds the model and loads the current data. A nil clock means the wall clock.
func New(cfg config.Config, dbh *sql.DB, sched *schedule.Scheduler, clock schedule.Clock) Model {
	if clock == nil {
		clock = schedule.SystemClock
	}

	ed := textarea.New()
	ed.Placeholder = "What have you been working on?"
	ed.ShowLineNumbers = false
	ed.CharLimit = 2000
	ed.SetWidth(60)
	ed.SetHeight(6)
	ed.FocusedStyle.CursorLine = lipgloss.NewStyle().Background(lipgloss.Color("#313244"))

	in := textinput.New()
	in.CharLimit = 500
	in.Width = 50

	tags := NewTagInput(dbh, 6)
	tags.SetPlaceholder("tag name (tab cycles suggestions)")

	m := Model{
		cfg:       cfg,
		dbh:       dbh,
		sched:     sched,
		clock:     clock,
		loc:       cfg.Location(),
		st:        ThemeByName(cfg.Theme),
		now:       clock.Now(),
		popup:     ed,
		popupTodo: -1,
		input:     in,
		tagInput:  tags,
	}
	m.week, m.year = db.WeekOf(m.now.In(m.loc))
	m.refresh()
	return m
}

// Run opens the TUI with the check-in scheduler running until the user quits.
func Run(cfg config.Config, dbh *sql.DB) error {
	obs := &programObserver{}
	sched := schedule.New(cfg.Timer.Interval, func() {
		if cfg.Notifications.Enabled {
			if err := notify.Checkin(cfg.Timer.Interval, cfg.Notifications.Sound); err != nil {
				log.Printf("notify: %v", err)
			}
		}
		obs.send(showPopupMsg{})
	}, schedule.WithTick(cfg.Timer.Tick), schedule.WithObserver(obs))

	m := New(cfg, dbh, sched, nil)
	p := tea.NewProgram(m, tea.WithAltScreen())
	obs.attach(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	_, err := p.Run()
	obs.detach()
	return err
}

func (m Model) Init() tea.Cmd {
	return tickNow()
}

// ---------- messages ----------

type tickMsg struct{ now time.Time }

// showPopupMsg asks the model to open the check-in popup.
type showPopupMsg struct{}

// scheduleChangedMsg is sent by the observer; the view re-reads the scheduler state.
type scheduleChangedMsg struct{}

func tickNow() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg{now: t} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = msg.now
		return m, tickNow()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.popup.SetWidth(min(70, max(20, msg.Width-10)))
		return m, nil

	case scheduleChangedMsg:
		m.now = m.clock.Now()
		return m, nil

	case showPopupMsg:
		return m.openPopup()

	case AutocompleteMsg:
		var cmd tea.Cmd
		m.tagInput, cmd = m.tagInput.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closePopup()
			return m, tea.Quit
		}
		switch m.mode {
		case modePopup:
			return m.updatePopup(msg)
		case modeAddTodo, modeAddGoal, modeLinkGoal, modeUnlinkGoal:
			return m.updateInput(msg)
		case modeTag, modeUntag:
			return m.updateTagInput(msg)
		case modeHelp:
			m.mode = modeNormal
			return m, nil
		}
		if m.errMsg != "" {
			m.errMsg = ""
			return m, nil
		}
		return m.updateNormal(msg.String())
	}

	if m.mode == modePopup {
		var cmd tea.Cmd
		m.popup, cmd = m.popup.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ---------- popup ----------

// openPopup freezes the countdown and shows the check-in prompt. A popup that is
// already open is dismissed first so only one is ever showing.
func (m Model) openPopup() (tea.Model, tea.Cmd) {
	if m.mode == modePopup {
		m.closePopup()
	}
	m.input.Blur()
	m.tagInput.Blur()
	if m.sched != nil {
		m.sched.PauseForPopup()
	}
	m.mode = modePopup
	m.popupTodo = -1
	m.popup.Reset()
	m.refreshTodos()
	return m, m.popup.Focus()
}

func (m *Model) closePopup() {
	if m.mode != modePopup {
		return
	}
	m.popup.Blur()
	m.mode = modeNormal
	if m.sched != nil {
		m.sched.ResumeAfterPopup()
	}
	m.now = m.clock.Now()
}

func (m Model) updatePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePopup()
		m.status = "check-in skipped"
		return m, nil
	case "ctrl+s":
		text := strings.TrimSpace(m.popup.Value())
		if text == "" {
			return m, nil
		}
		if _, err := db.SaveEntry(m.dbh, text, m.clock.Now()); err != nil {
			// keep the popup open so the text is not lost
			m.errMsg = err.Error()
			return m, nil
		}
		m.closePopup()
		m.status = "check-in saved"
		m.refreshEntries()
		return m, nil
	case "tab":
		// offer open todos as "Working on: ..." answers
		open := m.openTodos()
		if len(open) == 0 {
			return m, nil
		}
		m.popupTodo = (m.popupTodo + 1) % len(open)
		m.popup.SetValue("Working on: " + open[m.popupTodo].Text)
		return m, nil
	}

	var cmd tea.Cmd
	m.popup, cmd = m.popup.Update(msg)
	return m, cmd
}

func (m Model) openTodos() []db.Todo {
	var open []db.Todo
	for _, t := range m.todos {
		if !t.Completed {
			open = append(open, t)
		}
	}
	return open
}

// ---------- normal mode ----------

func (m Model) updateNormal(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "q":
		return m, tea.Quit
	case "?":
		m.mode = modeHelp
		return m, nil
	case "tab", "right":
		m.tab = (m.tab + 1) % tab(len(tabNames))
		return m, nil
	case "shift+tab", "left":
		m.tab = (m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames))
		return m, nil
	case "1", "2", "3":
		m.tab = tab(k[0] - '1')
		return m, nil
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "p":
		m.togglePause()
		return m, nil
	case "l":
		return m.openPopup()
	case "r":
		m.refresh()
		m.status = "reloaded"
		return m, nil
	}

	switch m.tab {
	case tabHistory:
		if k == "d" {
			if e, ok := m.selectedEntry(); ok {
				m.report(db.DeleteEntry(m.dbh, e.ID), "entry deleted")
				m.refreshEntries()
			}
		}
	case tabTodos:
		return m.updateTodos(k)
	case tabGoals:
		return m.updateGoals(k)
	}
	return m, nil
}

func (m *Model) togglePause() {
	if m.sched == nil {
		return
	}
	if m.sched.Mode() == schedule.PausedManual {
		if m.sched.ResumeManual() {
			m.status = "check-ins resumed"
			if at, ok := m.sched.NextFireTime(); ok {
				log.Printf("ui: check-ins resumed, next at %s", at.In(m.loc).Format(time.Kitchen))
			}
		}
	} else if m.sched.PauseManual() {
		m.status = "check-ins paused"
		log.Printf("ui: check-ins paused with %s left", m.sched.Snapshot().Remaining.Round(time.Second))
	}
	m.now = m.clock.Now()
}

func (m Model) updateTodos(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "a":
		return m.startInput(modeAddTodo, "buy milk #errands #home")
	}

	t, ok := m.selectedTodo()
	if !ok {
		return m, nil
	}
	switch k {
	case " ", "x":
		m.report(db.SetTodoCompleted(m.dbh, t.ID, !t.Completed, m.clock.Now()), "")
		m.refreshTodos()
	case "d":
		m.report(db.DeleteTodo(m.dbh, t.ID), "todo deleted")
		m.refreshTodos()
		m.refreshGoals()
	case "t":
		m.mode = modeTag
		m.tagInput.Reset()
		return m, m.tagInput.Focus()
	case "u":
		if len(t.Tags) == 0 {
			m.errMsg = fmt.Sprintf("todo #%d has no tags", t.ID)
			return m, nil
		}
		m.mode = modeUntag
		m.tagInput.Reset()
		return m, m.tagInput.Focus()
	case "g":
		return m.startInput(modeLinkGoal, "goal id")
	case "G":
		return m.startInput(modeUnlinkGoal, "goal id")
	}
	return m, nil
}

func (m Model) updateGoals(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "a":
		return m.startInput(modeAddGoal, "ship the release")
	case "[":
		m.week, m.year = shiftWeek(m.week, m.year, -1, m.loc)
		m.cursor[tabGoals] = 0
		m.refreshGoals()
		return m, nil
	case "]":
		m.week, m.year = shiftWeek(m.week, m.year, 1, m.loc)
		m.cursor[tabGoals] = 0
		m.refreshGoals()
		return m, nil
	}

	g, ok := m.selectedGoal()
	if !ok {
		return m, nil
	}
	switch k {
	case " ", "x":
		m.report(db.SetGoalCompleted(m.dbh, g.ID, !g.Completed, m.clock.Now()), "")
		m.refreshGoals()
	case "d":
		m.report(db.DeleteGoal(m.dbh, g.ID), "goal deleted")
		m.refreshGoals()
	}
	return m, nil
}

// ---------- input forms ----------

func (m Model) startInput(md mode, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m, m.input.Focus()
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = modeNormal
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		md := m.mode
		m.input.Blur()
		m.mode = modeNormal
		if value == "" {
			return m, nil
		}
		m.submitInput(md, value)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitInput(md mode, value string) {
	now := m.clock.Now()
	switch md {
	case modeAddTodo:
		text, tags := parseTodoInput(value)
		if text == "" {
			m.errMsg = "todo text is empty"
			return
		}
		_, err := db.CreateTodo(m.dbh, text, tags, now)
		m.report(err, "todo added")
		m.refreshTodos()
	case modeAddGoal:
		// goals always land in the current week
		local := now.In(m.loc)
		_, err := db.CreateGoal(m.dbh, value, local)
		m.report(err, "goal added")
		m.week, m.year = db.WeekOf(local)
		m.refreshGoals()
	case modeLinkGoal, modeUnlinkGoal:
		t, ok := m.selectedTodo()
		if !ok {
			return
		}
		goalID, err := strconv.ParseInt(strings.TrimPrefix(value, "#"), 10, 64)
		if err != nil {
			m.errMsg = fmt.Sprintf("not a goal id: %q", value)
			return
		}
		if md == modeLinkGoal {
			changed, err := db.LinkTodoToGoal(m.dbh, t.ID, goalID)
			if err == nil && !changed {
				m.status = "already linked"
				return
			}
			m.report(err, fmt.Sprintf("linked to goal #%d", goalID))
		} else {
			m.report(db.UnlinkTodoFromGoal(m.dbh, t.ID, goalID), fmt.Sprintf("unlinked from goal #%d", goalID))
		}
		m.refreshGoals()
	}
}

func (m Model) updateTagInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.tagInput.Showing() {
			break
		}
		m.tagInput.Blur()
		m.mode = modeNormal
		return m, nil
	case "enter":
		if m.tagInput.Showing() {
			break
		}
		name := m.tagInput.Value()
		md := m.mode
		m.tagInput.Blur()
		m.mode = modeNormal
		if name != "" {
			m.submitTag(md, name)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.tagInput, cmd = m.tagInput.Update(msg)
	return m, cmd
}

func (m *Model) submitTag(md mode, name string) {
	t, ok := m.selectedTodo()
	if !ok {
		return
	}
	if md == modeTag {
		_, changed, err := db.AssignTagByName(m.dbh, t.ID, name)
		if err == nil && !changed {
			m.status = "already tagged #" + name
			return
		}
		m.report(err, "tagged #"+name)
		m.refreshTodos()
		return
	}

	for _, tag := range t.Tags {
		if strings.EqualFold(tag.Name, name) {
			m.report(db.RemoveTag(m.dbh, t.ID, tag.ID), "removed #"+tag.Name)
			m.refreshTodos()
			return
		}
	}
	m.errMsg = fmt.Sprintf("todo #%d is not tagged #%s", t.ID, name)
}

// ---------- data ----------

func (m *Model) refresh() {
	m.refreshEntries()
	m.refreshTodos()
	m.refreshGoals()
}

func (m *Model) refreshEntries() {
	entries, err := db.ListEntries(m.dbh, time.Time{}, time.Time{}, historyLimit, 0)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.entries = entries
	m.clampCursor(tabHistory, len(entries))
}

func (m *Model) refreshTodos() {
	todos, err := db.ListTodos(m.dbh)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.todos = todos
	m.clampCursor(tabTodos, len(todos))
}

func (m *Model) refreshGoals() {
	goals, err := db.GoalsForWeek(m.dbh, m.week, m.year)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.goals = goals
	m.clampCursor(tabGoals, len(goals))
}

// report turns a persistence result into the error line or a status message.
func (m *Model) report(err error, ok string) {
	if err != nil {
		log.Printf("ui: %v", err)
		m.errMsg = err.Error()
		if errors.Is(err, db.ErrNotFound) {
			m.errMsg += " (press r to reload)"
		}
		return
	}
	if ok != "" {
		m.status = ok
	}
}

func (m *Model) moveCursor(delta int) {
	n := [3]int{len(m.entries), len(m.todos), len(m.goals)}[m.tab]
	m.cursor[m.tab] = clamp(m.cursor[m.tab]+delta, 0, max(0, n-1))
}

func (m *Model) clampCursor(t tab, n int) {
	m.cursor[t] = clamp(m.cursor[t], 0, max(0, n-1))
}

func (m Model) selectedEntry() (db.Entry, bool) {
	i := m.cursor[tabHistory]
	if i < 0 || i >= len(m.entries) {
		return db.Entry{}, false
	}
	return m.entries[i], true
}

func (m Model) selectedTodo() (db.Todo, bool) {
	i := m.cursor[tabTodos]
	if i < 0 || i >= len(m.todos) {
		return db.Todo{}, false
	}
	return m.todos[i], true
}

func (m Model) selectedGoal() (db.Goal, bool) {
	i := m.cursor[tabGoals]
	if i < 0 || i >= len(m.goals) {
		return db.Goal{}, false
	}
	return m.goals[i], true
}

// parseTodoInput splits "text #tag #other" into the todo text and its tag names.
func parseTodoInput(s string) (string, []string) {
	var words, tags []string
	for _, f := range strings.Fields(s) {
		if strings.HasPrefix(f, "#") && len(f) > 1 {
			tags = append(tags, strings.TrimPrefix(f, "#"))
			continue
		}
		words = append(words, f)
	}
	return strings.Join(words, " "), tags
}

// shiftWeek moves by delta weeks, crossing year boundaries using WeekOf's numbering.
func shiftWeek(week, year, delta int, loc *time.Location) (int, int) {
	week += delta
	if week < 1 {
		year--
		return weeksIn(year, loc), year
	}
	if week > weeksIn(year, loc) {
		return 1, year + 1
	}
	return week, year
}

func weeksIn(year int, loc *time.Location) int {
	w, _ := db.WeekOf(time.Date(year, time.December, 31, 12, 0, 0, 0, loc))
	return w
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
