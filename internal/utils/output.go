package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ramanasai/checkin/internal/db"
)

// OutputFormat represents different output formats
type OutputFormat string

const (
	FormatDefault OutputFormat = "default"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatQuiet   OutputFormat = "quiet"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatDefault:
		return FormatDefault, nil
	case FormatJSON, FormatCSV, FormatQuiet:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want default, json, csv or quiet)", s)
	}
}

type RenderConfig struct {
	Format   OutputFormat
	Width    int
	Color    bool
	Location *time.Location
}

// DefaultRenderConfig sizes output from $COLUMNS.
func DefaultRenderConfig() *RenderConfig {
	width := 100
	if colEnv := os.Getenv("COLUMNS"); colEnv != "" {
		if v, err := strconv.Atoi(colEnv); err == nil && v > 40 {
			width = v
		}
	}
	return &RenderConfig{
		Format:   FormatDefault,
		Width:    width,
		Color:    true,
		Location: time.Local,
	}
}

// EntryList is a page of check-in entries.
type EntryList struct {
	Entries    []db.Entry `json:"entries"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
	Since      time.Time  `json:"-"`
}

type Renderer struct {
	config *RenderConfig
	styles *Styles
}

type Styles struct {
	Title     lipgloss.Style
	Separator lipgloss.Style
	Meta      lipgloss.Style
	ID        lipgloss.Style
	Text      lipgloss.Style
	Tags      lipgloss.Style
	Done      lipgloss.Style
}

func NewRenderer(config *RenderConfig) *Renderer {
	if config == nil {
		config = DefaultRenderConfig()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &Renderer{config: config, styles: initStyles(config.Color)}
}

func initStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{
			Title:     plain.Bold(true),
			Separator: plain,
			Meta:      plain,
			ID:        plain,
			Text:      plain,
			Tags:      plain,
			Done:      plain,
		}
	}
	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Meta:      lipgloss.NewStyle().Faint(true),
		ID:        lipgloss.NewStyle().Faint(true),
		Text:      lipgloss.NewStyle(),
		Tags:      lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#CBA6F7")),
		Done:      lipgloss.NewStyle().Strikethrough(true).Faint(true),
	}
}

func (r *Renderer) rule() string {
	return r.styles.Separator.Render(strings.Repeat("─", min(r.config.Width, 120)))
}

// RenderEntries renders a page of entries in the configured format.
func (r *Renderer) RenderEntries(list *EntryList) (string, error) {
	switch r.config.Format {
	case FormatJSON:
		return marshal(list)
	case FormatCSV:
		rows := [][]string{{"id", "timestamp", "text"}}
		for _, e := range list.Entries {
			rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.At.Format(time.RFC3339), e.Text})
		}
		return writeCSV(rows)
	case FormatQuiet:
		var b strings.Builder
		for _, e := range list.Entries {
			b.WriteString(e.Text)
			b.WriteString("\n")
		}
		return b.String(), nil
	}

	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Check-ins"))
	if !list.Since.IsZero() {
		b.WriteString("  ")
		b.WriteString(r.styles.Separator.Render("since "))
		b.WriteString(r.styles.Meta.Render(list.Since.In(r.config.Location).Format("2006-01-02 03:04 PM")))
	}
	b.WriteString("\n" + r.rule() + "\n")

	if len(list.Entries) == 0 {
		b.WriteString(r.styles.Meta.Render("no entries") + "\n")
		return b.String(), nil
	}

	var lastDay string
	for _, e := range list.Entries {
		at := e.At.In(r.config.Location)
		if day := at.Format("Mon 2006-01-02"); day != lastDay {
			if lastDay != "" {
				b.WriteString("\n")
			}
			b.WriteString(r.styles.Title.Render(day) + "\n")
			lastDay = day
		}
		b.WriteString(fmt.Sprintf("  %s %s  %s\n",
			r.styles.ID.Render(fmt.Sprintf("[%d]", e.ID)),
			r.styles.Meta.Render(at.Format("03:04 PM")),
			r.styles.Text.Render(e.Text)))
	}

	b.WriteString(r.rule() + "\n")
	p := NewPagination(list.Total, list.PerPage, list.Page)
	b.WriteString(r.styles.Meta.Render(p.FormatSummary()) + "\n")
	if nav := p.FormatNavigation(); nav != "" {
		b.WriteString(r.styles.Meta.Render(nav) + "\n")
	}
	return b.String(), nil
}

// RenderTodos renders todos with their tags.
func (r *Renderer) RenderTodos(todos []db.Todo) (string, error) {
	switch r.config.Format {
	case FormatJSON:
		return marshal(todos)
	case FormatCSV:
		rows := [][]string{{"id", "text", "completed", "created_at", "tags"}}
		for _, t := range todos {
			rows = append(rows, []string{
				strconv.FormatInt(t.ID, 10), t.Text, strconv.FormatBool(t.Completed),
				t.CreatedAt.Format(time.RFC3339), strings.Join(TagNames(t.Tags), ","),
			})
		}
		return writeCSV(rows)
	case FormatQuiet:
		var b strings.Builder
		for _, t := range todos {
			b.WriteString(t.Text + "\n")
		}
		return b.String(), nil
	}

	var b strings.Builder
	b.WriteString(r.styles.Title.Render("Todos") + "\n" + r.rule() + "\n")
	if len(todos) == 0 {
		b.WriteString(r.styles.Meta.Render("nothing to do") + "\n")
	}
	for _, t := range todos {
		b.WriteString(r.todoLine(t) + "\n")
	}
	return b.String(), nil
}

func (r *Renderer) todoLine(t db.Todo) string {
	box, text := "[ ]", r.styles.Text.Render(t.Text)
	if t.Completed {
		box, text = "[x]", r.styles.Done.Render(t.Text)
	}
	line := fmt.Sprintf("%s %s %s", r.styles.ID.Render(fmt.Sprintf("%4d", t.ID)), box, text)
	if len(t.Tags) > 0 {
		line += "  " + r.styles.Tags.Render("#"+strings.Join(TagNames(t.Tags), " #"))
	}
	return line
}

// RenderGoals renders one week's goals with their linked todos.
func (r *Renderer) RenderGoals(week, year int, goals []db.Goal) (string, error) {
	switch r.config.Format {
	case FormatJSON:
		return marshal(struct {
			Week  int       `json:"week"`
			Year  int       `json:"year"`
			Goals []db.Goal `json:"goals"`
		}{week, year, goals})
	case FormatCSV:
		rows := [][]string{{"id", "text", "completed", "week", "year", "todo_ids"}}
		for _, g := range goals {
			ids := make([]string, 0, len(g.Todos))
			for _, t := range g.Todos {
				ids = append(ids, strconv.FormatInt(t.ID, 10))
			}
			rows = append(rows, []string{
				strconv.FormatInt(g.ID, 10), g.Text, strconv.FormatBool(g.Completed),
				strconv.Itoa(week), strconv.Itoa(year), strings.Join(ids, ";"),
			})
		}
		return writeCSV(rows)
	case FormatQuiet:
		var b strings.Builder
		for _, g := range goals {
			b.WriteString(g.Text + "\n")
		}
		return b.String(), nil
	}

	var b strings.Builder
	b.WriteString(r.styles.Title.Render(fmt.Sprintf("Goals · week %d, %d", week, year)) + "\n" + r.rule() + "\n")
	if len(goals) == 0 {
		b.WriteString(r.styles.Meta.Render("no goals this week") + "\n")
	}
	for _, g := range goals {
		b.WriteString(r.todoLine(db.Todo{ID: g.ID, Text: g.Text, Completed: g.Completed}) + "\n")
		for _, t := range g.Todos {
			b.WriteString("      " + r.todoLine(t) + "\n")
		}
	}
	return b.String(), nil
}

func TagNames(tags []db.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func marshal(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func writeCSV(rows [][]string) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return b.String(), nil
}
