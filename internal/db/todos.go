package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Todo struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at"` // zero unless Completed
	Tags        []Tag     `json:"tags,omitempty"`
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// CreateTodo inserts a todo and attaches the given tag names, creating missing tags.
// Blank names are skipped. Everything happens in one transaction.
func CreateTodo(dbh *sql.DB, text string, tags []string, now time.Time) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("todo text is empty")
	}

	tx, err := dbh.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`INSERT INTO todos (text, created_at) VALUES (?, ?)`, text, formatTS(now))
	if err != nil {
		return 0, fmt.Errorf("create todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := getOrCreateTag(tx, name)
		if err != nil {
			return 0, err
		}
		if _, err := assignTag(tx, id, tag.ID); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// ListTodos returns open todos first, newest first within each group, with their tags.
func ListTodos(dbh *sql.DB) ([]Todo, error) {
	rows, err := dbh.Query(`
		SELECT id, text, created_at, completed, completed_at
		FROM todos
		ORDER BY completed ASC, created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	todos, err := scanTodos(rows)
	if err != nil {
		return nil, err
	}

	for i := range todos {
		tags, err := TagsForTodo(dbh, todos[i].ID)
		if err != nil {
			return nil, err
		}
		todos[i].Tags = tags
	}
	return todos, nil
}

func GetTodo(dbh *sql.DB, id int64) (Todo, error) {
	var t Todo
	var created string
	var completedAt sql.NullString
	err := dbh.QueryRow(`
		SELECT id, text, created_at, completed, completed_at FROM todos WHERE id = ?
	`, id).Scan(&t.ID, &t.Text, &created, &t.Completed, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("todo #%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return t, err
	}
	t.CreatedAt = parseTS(created)
	t.CompletedAt = parseNullTS(completedAt)
	t.Tags, err = TagsForTodo(dbh, id)
	return t, err
}

// DeleteTodo removes a todo; its tag and goal links cascade.
func DeleteTodo(dbh *sql.DB, id int64) error {
	res, err := dbh.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return mustAffect(res, "todo", id)
}

// SetTodoCompleted marks a todo done (stamping now) or reopens it.
func SetTodoCompleted(dbh *sql.DB, id int64, completed bool, now time.Time) error {
	var at any
	if completed {
		at = formatTS(now)
	}
	res, err := dbh.Exec(`UPDATE todos SET completed = ?, completed_at = ? WHERE id = ?`, boolInt(completed), at, id)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return mustAffect(res, "todo", id)
}

func ListTags(dbh *sql.DB) ([]Tag, error) {
	rows, err := dbh.Query(`SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return scanTags(rows)
}

// SearchTags returns tag names containing query, exact and prefix matches first.
func SearchTags(dbh *sql.DB, query string, limit int) ([]string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	rows, err := dbh.Query(`
		SELECT name FROM tags
		WHERE LOWER(name) LIKE ?
		ORDER BY
			CASE WHEN LOWER(name) = ? THEN 1 WHEN LOWER(name) LIKE ? THEN 2 ELSE 3 END,
			name
		LIMIT ?
	`, "%"+q+"%", q, q+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func GetOrCreateTag(dbh *sql.DB, name string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, fmt.Errorf("tag name is empty")
	}
	return getOrCreateTag(dbh, name)
}

func getOrCreateTag(q queryer, name string) (Tag, error) {
	tag := Tag{Name: name}
	err := q.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&tag.ID)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return tag, fmt.Errorf("lookup tag %q: %w", name, err)
	}
	res, err := q.Exec(`INSERT INTO tags (name) VALUES (?)`, name)
	if err != nil {
		return tag, fmt.Errorf("create tag %q: %w", name, err)
	}
	tag.ID, err = res.LastInsertId()
	return tag, err
}

// AssignTag links a tag to a todo. It reports false when the link already existed.
func AssignTag(dbh *sql.DB, todoID, tagID int64) (bool, error) {
	return assignTag(dbh, todoID, tagID)
}

func assignTag(q queryer, todoID, tagID int64) (bool, error) {
	res, err := q.Exec(`INSERT OR IGNORE INTO todo_tags (todo_id, tag_id) VALUES (?, ?)`, todoID, tagID)
	if err != nil {
		return false, fmt.Errorf("assign tag: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AssignTagByName is the get-or-create + assign pair the UI uses.
func AssignTagByName(dbh *sql.DB, todoID int64, name string) (Tag, bool, error) {
	tag, err := GetOrCreateTag(dbh, name)
	if err != nil {
		return tag, false, err
	}
	changed, err := AssignTag(dbh, todoID, tag.ID)
	return tag, changed, err
}

func RemoveTag(dbh *sql.DB, todoID, tagID int64) error {
	res, err := dbh.Exec(`DELETE FROM todo_tags WHERE todo_id = ? AND tag_id = ?`, todoID, tagID)
	if err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	return mustAffect(res, "tag link on todo", todoID)
}

func TagsForTodo(dbh *sql.DB, todoID int64) ([]Tag, error) {
	rows, err := dbh.Query(`
		SELECT tags.id, tags.name FROM tags
		JOIN todo_tags ON tags.id = todo_tags.tag_id
		WHERE todo_tags.todo_id = ?
		ORDER BY tags.name
	`, todoID)
	if err != nil {
		return nil, fmt.Errorf("tags for todo: %w", err)
	}
	return scanTags(rows)
}

func scanTags(rows *sql.Rows) ([]Tag, error) {
	defer rows.Close()
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func scanTodos(rows *sql.Rows) ([]Todo, error) {
	defer rows.Close()
	var todos []Todo
	for rows.Next() {
		var t Todo
		var created string
		var completedAt sql.NullString
		if err := rows.Scan(&t.ID, &t.Text, &created, &t.Completed, &completedAt); err != nil {
			return nil, err
		}
		t.CreatedAt = parseTS(created)
		t.CompletedAt = parseNullTS(completedAt)
		todos = append(todos, t)
	}
	return todos, rows.Err()
}
