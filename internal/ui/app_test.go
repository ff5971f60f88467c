package ui

import (
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ramanasai/checkin/internal/config"
	"github.com/ramanasai/checkin/internal/db"
	"github.com/ramanasai/checkin/internal/schedule"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	clock *fakeClock
	sched *schedule.Scheduler
	m     Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureIn(t, "UTC", time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
}

func newFixtureIn(t *testing.T, timezone string, now time.Time) *fixture {
	t.Helper()
	dbh, err := db.Open(filepath.Join(t.TempDir(), "checkin.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	cfg := config.Default()
	cfg.Timezone = timezone
	clock := &fakeClock{now: now}
	sched := schedule.New(15*time.Minute, nil, schedule.WithClock(clock))
	return &fixture{clock: clock, sched: sched, m: New(cfg, dbh, sched, clock)}
}

func (f *fixture) send(msg tea.Msg) {
	next, _ := f.m.Update(msg)
	f.m = next.(Model)
}

func (f *fixture) key(s string) {
	switch s {
	case "enter":
		f.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		f.send(tea.KeyMsg{Type: tea.KeyEscape})
	case "ctrl+s":
		f.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	case "tab":
		f.send(tea.KeyMsg{Type: tea.KeyTab})
	case " ":
		f.send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	default:
		f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func TestPopupPausesAndEscResumes(t *testing.T) {
	f := newFixture(t)
	f.clock.advance(5 * time.Minute)

	f.send(showPopupMsg{})
	if f.m.mode != modePopup {
		t.Fatalf("mode = %v, want popup", f.m.mode)
	}
	if got := f.sched.Mode(); got != schedule.PausedForPopup {
		t.Fatalf("scheduler mode = %v", got)
	}

	// the popup stays open for a while; the countdown must not move
	f.clock.advance(7 * time.Minute)
	f.key("esc")

	if f.m.mode != modeNormal {
		t.Fatalf("mode after esc = %v", f.m.mode)
	}
	next, ok := f.sched.NextFireTime()
	if !ok {
		t.Fatal("scheduler still paused after esc")
	}
	if want := f.clock.now.Add(10 * time.Minute); !next.Equal(want) {
		t.Fatalf("next fire = %v, want %v", next, want)
	}
	if n, _ := db.CountEntries(f.m.dbh, time.Time{}, time.Time{}); n != 0 {
		t.Fatalf("esc saved %d entries", n)
	}
}

func TestPopupSaveStoresEntryAndResumes(t *testing.T) {
	f := newFixture(t)
	f.send(showPopupMsg{})

	f.key("ctrl+s")
	if f.m.mode != modePopup {
		t.Fatal("blank answer closed the popup")
	}

	f.m.popup.SetValue("  reviewing pull requests  ")
	f.key("ctrl+s")

	if f.m.mode != modeNormal {
		t.Fatalf("mode = %v, want normal", f.m.mode)
	}
	if f.sched.IsPaused() {
		t.Fatal("scheduler still paused after save")
	}
	if len(f.m.entries) != 1 || f.m.entries[0].Text != "reviewing pull requests" {
		t.Fatalf("entries = %+v", f.m.entries)
	}
	if !f.m.entries[0].At.Equal(f.clock.now) {
		t.Fatalf("entry stamped %v, want %v", f.m.entries[0].At, f.clock.now)
	}
}

func TestSecondPopupReplacesFirst(t *testing.T) {
	f := newFixture(t)
	f.send(showPopupMsg{})
	f.m.popup.SetValue("half written")
	f.clock.advance(time.Minute)
	f.send(showPopupMsg{})

	if f.m.mode != modePopup || f.m.popup.Value() != "" {
		t.Fatalf("mode %v value %q", f.m.mode, f.m.popup.Value())
	}
	if f.sched.Mode() != schedule.PausedForPopup {
		t.Fatalf("scheduler mode = %v", f.sched.Mode())
	}
	f.key("esc")
	if f.sched.IsPaused() {
		t.Fatal("one esc should close the only popup")
	}
}

func TestPopupOffersOpenTodos(t *testing.T) {
	f := newFixture(t)
	if _, err := db.CreateTodo(f.m.dbh, "write the changelog", nil, f.clock.now); err != nil {
		t.Fatal(err)
	}
	f.send(showPopupMsg{})
	f.key("tab")
	if got := f.m.popup.Value(); got != "Working on: write the changelog" {
		t.Fatalf("popup value = %q", got)
	}
}

func TestManualPauseToggle(t *testing.T) {
	f := newFixture(t)
	f.clock.advance(4 * time.Minute)

	f.key("p")
	if f.sched.Mode() != schedule.PausedManual {
		t.Fatalf("mode = %v", f.sched.Mode())
	}
	f.clock.advance(time.Hour)
	f.key("p")
	next, ok := f.sched.NextFireTime()
	if !ok || !next.Equal(f.clock.now.Add(11*time.Minute)) {
		t.Fatalf("next = %v ok=%v", next, ok)
	}
}

func TestManualPauseSurvivesPopup(t *testing.T) {
	f := newFixture(t)
	f.key("p")
	f.send(showPopupMsg{})
	f.key("esc")
	if f.sched.Mode() != schedule.PausedManual {
		t.Fatalf("mode = %v, want manual pause to hold", f.sched.Mode())
	}
}

func TestAddTodoWithTags(t *testing.T) {
	f := newFixture(t)
	f.key("2")
	f.key("a")
	if f.m.mode != modeAddTodo {
		t.Fatalf("mode = %v", f.m.mode)
	}
	f.m.input.SetValue("ship it #work #urgent")
	f.key("enter")

	if len(f.m.todos) != 1 {
		t.Fatalf("todos = %+v", f.m.todos)
	}
	todo := f.m.todos[0]
	if todo.Text != "ship it" || len(todo.Tags) != 2 {
		t.Fatalf("todo = %+v", todo)
	}

	f.key(" ")
	if !f.m.todos[0].Completed {
		t.Fatal("space did not complete the todo")
	}
	f.key("d")
	if len(f.m.todos) != 0 {
		t.Fatalf("todo not deleted: %+v", f.m.todos)
	}
}

func TestTagAndUntag(t *testing.T) {
	f := newFixture(t)
	if _, err := db.CreateTodo(f.m.dbh, "refactor", nil, f.clock.now); err != nil {
		t.Fatal(err)
	}
	f.m.refresh()
	f.m.tab = tabTodos

	f.key("t")
	f.m.tagInput.SetValue("#backend")
	f.key("enter")
	if got := f.m.todos[0].Tags; len(got) != 1 || got[0].Name != "backend" {
		t.Fatalf("tags = %+v", got)
	}

	f.key("t")
	f.m.tagInput.SetValue("backend")
	f.key("enter")
	if f.m.status != "already tagged #backend" {
		t.Fatalf("status = %q", f.m.status)
	}

	f.key("u")
	f.m.tagInput.SetValue("nope")
	f.key("enter")
	if f.m.errMsg == "" {
		t.Fatal("removing a missing tag should report an error")
	}
	f.key("x") // any key dismisses the error
	if f.m.errMsg != "" {
		t.Fatal("error line not dismissed")
	}

	f.key("u")
	f.m.tagInput.SetValue("backend")
	f.key("enter")
	if len(f.m.todos[0].Tags) != 0 {
		t.Fatalf("tag not removed: %+v", f.m.todos[0].Tags)
	}
}

func TestLinkTodoToGoal(t *testing.T) {
	f := newFixture(t)
	todoID, err := db.CreateTodo(f.m.dbh, "draft notes", nil, f.clock.now)
	if err != nil {
		t.Fatal(err)
	}
	goalID, err := db.CreateGoal(f.m.dbh, "release 1.0", f.clock.now)
	if err != nil {
		t.Fatal(err)
	}
	f.m.refresh()
	f.m.tab = tabTodos

	f.key("g")
	f.m.input.SetValue(strconv.FormatInt(goalID, 10))
	f.key("enter")
	if len(f.m.goals) != 1 || len(f.m.goals[0].Todos) != 1 || f.m.goals[0].Todos[0].ID != todoID {
		t.Fatalf("goals = %+v", f.m.goals)
	}

	f.key("G")
	f.m.input.SetValue("999")
	f.key("enter")
	if f.m.errMsg == "" {
		t.Fatal("unlinking an unknown goal should report an error")
	}
	f.key("x")

	f.key("G")
	f.m.input.SetValue(strconv.FormatInt(goalID, 10))
	f.key("enter")
	if len(f.m.goals[0].Todos) != 0 {
		t.Fatalf("link not removed: %+v", f.m.goals[0].Todos)
	}
}

func TestGoalsWeekNavigation(t *testing.T) {
	f := newFixture(t)
	if _, err := db.CreateGoal(f.m.dbh, "this week", f.clock.now); err != nil {
		t.Fatal(err)
	}
	f.m.refresh()
	f.m.tab = tabGoals
	week := f.m.week

	f.key("[")
	if f.m.week != week-1 || len(f.m.goals) != 0 {
		t.Fatalf("week %d goals %d", f.m.week, len(f.m.goals))
	}
	f.key("]")
	if f.m.week != week || len(f.m.goals) != 1 {
		t.Fatalf("week %d goals %d", f.m.week, len(f.m.goals))
	}
}

func TestAddGoalUsesConfiguredTimezone(t *testing.T) {
	// Tuesday noon UTC is already Wednesday 02:00 in UTC+14, one week later by WeekOf
	f := newFixtureIn(t, "Pacific/Kiritimati", time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC))
	if f.m.week != 2 || f.m.year != 2025 {
		t.Fatalf("viewing week %d/%d, want 2/2025", f.m.week, f.m.year)
	}
	f.key("3")
	f.key("a")
	f.m.input.SetValue("plan the quarter")
	f.key("enter")

	if len(f.m.goals) != 1 || f.m.goals[0].Text != "plan the quarter" {
		t.Fatalf("goals shown = %+v (status %q, error %q)", f.m.goals, f.m.status, f.m.errMsg)
	}
	utcWeek, err := db.GoalsForWeek(f.m.dbh, 1, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(utcWeek) != 0 {
		t.Fatalf("goal stored in the UTC week: %+v", utcWeek)
	}
}

func TestShiftWeekCrossesYears(t *testing.T) {
	last := weeksIn(2024, time.UTC)
	if last != 53 {
		// Dec 31 2024 is day 365 of a leap year
		t.Fatalf("weeksIn(2024) = %d", last)
	}
	if w, y := shiftWeek(1, 2025, -1, time.UTC); w != last || y != 2024 {
		t.Fatalf("back from week 1 = %d/%d", w, y)
	}
	if w, y := shiftWeek(last, 2024, 1, time.UTC); w != 1 || y != 2025 {
		t.Fatalf("forward from last week = %d/%d", w, y)
	}
}

func TestParseTodoInput(t *testing.T) {
	tests := []struct {
		in       string
		wantText string
		wantTags []string
	}{
		{"buy milk", "buy milk", nil},
		{"buy milk #errands", "buy milk", []string{"errands"}},
		{"#home fix  the sink #diy", "fix the sink", []string{"home", "diy"}},
		{"issue # 42", "issue # 42", nil},
		{"#only #tags", "", []string{"only", "tags"}},
	}
	for _, tc := range tests {
		text, tags := parseTodoInput(tc.in)
		if text != tc.wantText || !reflect.DeepEqual(tags, tc.wantTags) {
			t.Errorf("parseTodoInput(%q) = %q %v, want %q %v", tc.in, text, tags, tc.wantText, tc.wantTags)
		}
	}
}

func TestViewShowsCountdownAndPause(t *testing.T) {
	f := newFixture(t)
	f.clock.advance(3 * time.Minute)
	if v := f.m.View(); !strings.Contains(v, "next check-in in 12:00") {
		t.Fatalf("view missing countdown:\n%s", v)
	}
	f.key("p")
	if v := f.m.View(); !strings.Contains(v, "paused with 12:00 left") {
		t.Fatalf("view missing pause:\n%s", v)
	}
}

func TestObserverAliveness(t *testing.T) {
	var o programObserver
	if o.Alive() {
		t.Fatal("unattached observer reports alive")
	}
	o.attach(tea.NewProgram(nil))
	if !o.Alive() {
		t.Fatal("attached observer reports dead")
	}
	o.detach()
	if o.Alive() {
		t.Fatal("detached observer reports alive")
	}
	o.Paused() // must not block or panic
}

func TestFormatCountdown(t *testing.T) {
	for d, want := range map[time.Duration]string{
		0:                               "00:00",
		90 * time.Second:                "01:30",
		15 * time.Minute:                "15:00",
		time.Hour + 2*time.Minute:       "1:02:00",
		1500 * time.Millisecond:         "00:02",
		14*time.Minute + 59*time.Second: "14:59",
	} {
		if got := formatCountdown(d); got != want {
			t.Errorf("formatCountdown(%v) = %q, want %q", d, got, want)
		}
	}
}
