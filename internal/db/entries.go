package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Entry is one answer to a check-in popup.
type Entry struct {
	ID   int64     `json:"id"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// SaveEntry stores a check-in answer stamped with now.
func SaveEntry(dbh *sql.DB, text string, now time.Time) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("entry text is empty")
	}
	res, err := dbh.Exec(`INSERT INTO entries (text, ts) VALUES (?, ?)`, text, formatTS(now))
	if err != nil {
		return 0, fmt.Errorf("save entry: %w", err)
	}
	return res.LastInsertId()
}

// ListEntries returns entries in [since, until) newest first. A zero since or until
// leaves that side open; limit <= 0 means no limit.
func ListEntries(dbh *sql.DB, since, until time.Time, limit, offset int) ([]Entry, error) {
	conds, args := entryRange("ts", since, until)
	query := `SELECT id, text, ts FROM entries` + whereClause(conds) + ` ORDER BY ts DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := dbh.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &e.Text, &ts); err != nil {
			return nil, err
		}
		e.At = parseTS(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountEntries counts entries in [since, until).
func CountEntries(dbh *sql.DB, since, until time.Time) (int, error) {
	conds, args := entryRange("ts", since, until)
	var n int
	if err := dbh.QueryRow(`SELECT COUNT(*) FROM entries`+whereClause(conds), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func DeleteEntry(dbh *sql.DB, id int64) error {
	res, err := dbh.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return mustAffect(res, "entry", id)
}

// entryRange builds the [since, until) conditions on col; zero times add nothing.
func entryRange(col string, since, until time.Time) ([]string, []any) {
	var conds []string
	var args []any
	if !since.IsZero() {
		conds = append(conds, col+" >= ?")
		args = append(args, formatTS(since))
	}
	if !until.IsZero() {
		conds = append(conds, col+" < ?")
		args = append(args, formatTS(until))
	}
	return conds, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// UpdateEntry replaces an entry's text, keeping its timestamp.
func UpdateEntry(dbh *sql.DB, id int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("entry text is empty")
	}
	res, err := dbh.Exec(`UPDATE entries SET text = ? WHERE id = ?`, text, id)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return mustAffect(res, "entry", id)
}

// SearchHit is an entry matched by SearchEntries. Snippet marks matches with [ and ].
type SearchHit struct {
	Entry
	Snippet string `json:"snippet"`
}

// SearchEntries runs a full-text query over entries in [since, until), best match first.
// Each word is matched as a literal term; a trailing * makes it a prefix.
func SearchEntries(dbh *sql.DB, query string, since, until time.Time, limit int) ([]SearchHit, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = 200
	}

	conds, args := entryRange("e.ts", since, until)
	where := ""
	for _, c := range conds {
		where += " AND " + c
	}
	args = append([]any{match}, args...)
	args = append(args, limit)

	rows, err := dbh.Query(`
		SELECT e.id, e.text, e.ts, snippet(entries_fts, 0, '[', ']', '…', 10)
		FROM entries_fts
		JOIN entries e ON e.id = entries_fts.rowid
		WHERE entries_fts MATCH ?`+where+`
		ORDER BY bm25(entries_fts) ASC, e.ts DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var ts string
		if err := rows.Scan(&h.ID, &h.Text, &ts, &h.Snippet); err != nil {
			return nil, err
		}
		h.At = parseTS(ts)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ftsQuery quotes each word so user input never trips the FTS5 query syntax.
func ftsQuery(q string) string {
	var terms []string
	for _, w := range strings.Fields(q) {
		prefix := strings.HasSuffix(w, "*")
		w = strings.ReplaceAll(strings.TrimRight(w, "*"), `"`, `""`)
		if w == "" {
			continue
		}
		term := `"` + w + `"`
		if prefix {
			term += "*"
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, " ")
}
