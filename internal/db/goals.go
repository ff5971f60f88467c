package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Goal struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	Week        int       `json:"week"`
	Year        int       `json:"year"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at"`
	Todos       []Todo    `json:"todos,omitempty"` // linked todos, without their tags
}

// WeekOf numbers weeks from January 1st of t's year in t's location: days 0-6 are week 1.
// This is not the ISO week.
func WeekOf(t time.Time) (week, year int) {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return int(t.Sub(start)/(7*24*time.Hour)) + 1, t.Year()
}

// CreateGoal adds a goal to the week containing now.
func CreateGoal(dbh *sql.DB, text string, now time.Time) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("goal text is empty")
	}
	week, year := WeekOf(now)
	res, err := dbh.Exec(`
		INSERT INTO weekly_goals (text, created_at, week_number, year) VALUES (?, ?, ?, ?)
	`, text, formatTS(now), week, year)
	if err != nil {
		return 0, fmt.Errorf("create goal: %w", err)
	}
	return res.LastInsertId()
}

// CurrentWeekGoals is GoalsForWeek for the week containing now.
func CurrentWeekGoals(dbh *sql.DB, now time.Time) ([]Goal, error) {
	week, year := WeekOf(now)
	return GoalsForWeek(dbh, week, year)
}

// GoalsForWeek returns open goals first, oldest first within each group, each with
// its linked todos.
func GoalsForWeek(dbh *sql.DB, week, year int) ([]Goal, error) {
	rows, err := dbh.Query(`
		SELECT id, text, created_at, week_number, year, completed, completed_at
		FROM weekly_goals
		WHERE week_number = ? AND year = ?
		ORDER BY completed ASC, created_at ASC, id ASC
	`, week, year)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	goals, err := scanGoals(rows)
	if err != nil {
		return nil, err
	}

	for i := range goals {
		todoRows, err := dbh.Query(`
			SELECT todos.id, todos.text, todos.created_at, todos.completed, todos.completed_at
			FROM todos
			JOIN todo_goals ON todos.id = todo_goals.todo_id
			WHERE todo_goals.goal_id = ?
			ORDER BY todos.completed ASC, todos.created_at DESC
		`, goals[i].ID)
		if err != nil {
			return nil, fmt.Errorf("goal todos: %w", err)
		}
		if goals[i].Todos, err = scanTodos(todoRows); err != nil {
			return nil, err
		}
	}
	return goals, nil
}

func SetGoalCompleted(dbh *sql.DB, id int64, completed bool, now time.Time) error {
	var at any
	if completed {
		at = formatTS(now)
	}
	res, err := dbh.Exec(`UPDATE weekly_goals SET completed = ?, completed_at = ? WHERE id = ?`, boolInt(completed), at, id)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return mustAffect(res, "goal", id)
}

// DeleteGoal removes a goal; its todo links cascade, the todos stay.
func DeleteGoal(dbh *sql.DB, id int64) error {
	res, err := dbh.Exec(`DELETE FROM weekly_goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return mustAffect(res, "goal", id)
}

// LinkTodoToGoal reports false when the link already existed.
func LinkTodoToGoal(dbh *sql.DB, todoID, goalID int64) (bool, error) {
	res, err := dbh.Exec(`INSERT OR IGNORE INTO todo_goals (todo_id, goal_id) VALUES (?, ?)`, todoID, goalID)
	if err != nil {
		return false, fmt.Errorf("link todo to goal: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func UnlinkTodoFromGoal(dbh *sql.DB, todoID, goalID int64) error {
	res, err := dbh.Exec(`DELETE FROM todo_goals WHERE todo_id = ? AND goal_id = ?`, todoID, goalID)
	if err != nil {
		return fmt.Errorf("unlink todo from goal: %w", err)
	}
	return mustAffect(res, "goal link on todo", todoID)
}

func GoalsForTodo(dbh *sql.DB, todoID int64) ([]Goal, error) {
	rows, err := dbh.Query(`
		SELECT g.id, g.text, g.created_at, g.week_number, g.year, g.completed, g.completed_at
		FROM weekly_goals g
		JOIN todo_goals ON g.id = todo_goals.goal_id
		WHERE todo_goals.todo_id = ?
		ORDER BY g.year DESC, g.week_number DESC, g.id ASC
	`, todoID)
	if err != nil {
		return nil, fmt.Errorf("goals for todo: %w", err)
	}
	return scanGoals(rows)
}

func scanGoals(rows *sql.Rows) ([]Goal, error) {
	defer rows.Close()
	var goals []Goal
	for rows.Next() {
		var g Goal
		var created string
		var completedAt sql.NullString
		if err := rows.Scan(&g.ID, &g.Text, &created, &g.Week, &g.Year, &g.Completed, &completedAt); err != nil {
			return nil, err
		}
		g.CreatedAt = parseTS(created)
		g.CompletedAt = parseNullTS(completedAt)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
