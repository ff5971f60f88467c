package ui

import (
	"database/sql"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ramanasai/checkin/internal/db"
)

// TagInput is a text input that suggests existing tag names as you type.
type TagInput struct {
	input          textinput.Model
	suggestions    []string
	showing        bool
	selected       int
	search         func(query string, limit int) ([]string, error)
	style          lipgloss.Style
	maxSuggestions int
}

// AutocompleteMsg carries suggestions for the query they were fetched for.
type AutocompleteMsg struct {
	Query       string
	Suggestions []string
}

func NewTagInput(dbh *sql.DB, maxSuggestions int) TagInput {
	input := textinput.New()
	input.Placeholder = "tag name"
	input.CharLimit = 64
	input.Width = 30

	t := TagInput{
		input:          input,
		maxSuggestions: maxSuggestions,
		style:          lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
	if dbh != nil {
		t.search = func(q string, limit int) ([]string, error) { return db.SearchTags(dbh, q, limit) }
	}
	return t
}

// Update handles the autocomplete keys. Enter is only consumed while suggestions are
// showing; otherwise the caller treats it as submit.
func (m TagInput) Update(msg tea.Msg) (TagInput, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyTab:
			if m.showing && len(m.suggestions) > 0 {
				m.selected = (m.selected + 1) % len(m.suggestions)
			}
			return m, nil
		case tea.KeyShiftTab:
			if m.showing && len(m.suggestions) > 0 {
				m.selected = (m.selected - 1 + len(m.suggestions)) % len(m.suggestions)
			}
			return m, nil
		case tea.KeyEnter:
			if m.showing && len(m.suggestions) > 0 {
				m.input.SetValue(m.suggestions[m.selected])
				m.input.CursorEnd()
				m.hide()
			}
			return m, nil
		case tea.KeyEscape:
			m.hide()
			return m, nil
		}

		old := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != old {
			return m, tea.Batch(cmd, m.fetchSuggestions())
		}
		return m, cmd

	case AutocompleteMsg:
		// drop stale answers
		if msg.Query != m.Value() {
			return m, nil
		}
		m.suggestions = msg.Suggestions
		m.selected = 0
		m.showing = len(m.suggestions) > 0 && m.Value() != ""
		return m, nil
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m TagInput) fetchSuggestions() tea.Cmd {
	query := m.Value()
	search, limit := m.search, m.maxSuggestions
	return func() tea.Msg {
		if search == nil || query == "" {
			return AutocompleteMsg{Query: query}
		}
		suggestions, err := search(query, limit)
		if err != nil {
			return AutocompleteMsg{Query: query}
		}
		return AutocompleteMsg{Query: query, Suggestions: suggestions}
	}
}

func (m TagInput) View() string {
	var content strings.Builder
	content.WriteString(m.input.View())

	if m.showing {
		content.WriteString("\n")
		for i, suggestion := range m.suggestions {
			if i >= m.maxSuggestions {
				break
			}
			if i == m.selected {
				content.WriteString(m.style.Copy().Foreground(lipgloss.Color("12")).Render("▶ #" + suggestion))
			} else {
				content.WriteString(m.style.Render("  #" + suggestion))
			}
			content.WriteString("\n")
		}
	}
	return content.String()
}

// Value is the typed tag name without a leading '#'.
func (m TagInput) Value() string {
	return strings.TrimPrefix(strings.TrimSpace(m.input.Value()), "#")
}

func (m *TagInput) SetValue(value string) {
	m.input.SetValue(value)
}

func (m *TagInput) Focus() tea.Cmd {
	m.hide()
	return m.input.Focus()
}

func (m *TagInput) Blur() {
	m.input.Blur()
	m.hide()
}

// Reset clears the text and any suggestions.
func (m *TagInput) Reset() {
	m.input.Reset()
	m.suggestions = nil
	m.hide()
}

func (m *TagInput) SetPlaceholder(placeholder string) {
	m.input.Placeholder = placeholder
}

func (m TagInput) Suggestions() []string { return m.suggestions }

// Showing reports whether the suggestion list is open.
func (m TagInput) Showing() bool { return m.showing }

func (m *TagInput) hide() {
	m.showing = false
	m.selected = 0
}
