package ui

import (
	"context"
	"database/sql"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/flowlog/flowlog/internal/db"
)

// AutocompleteModel is a text input that offers previously used values.
type AutocompleteModel struct {
	input          textinput.Model
	suggestions    []string
	showing        bool
	selected       int
	db             *sql.DB
	field          db.SuggestField
	style          lipgloss.Style
	maxSuggestions int
}

// AutocompleteMsg carries suggestions for the input value they were fetched for.
type AutocompleteMsg struct {
	Field       db.SuggestField
	Query       string
	Suggestions []string
}

func NewAutocomplete(dbh *sql.DB, field db.SuggestField, maxSuggestions int) AutocompleteModel {
	input := textinput.New()
	input.Placeholder = placeholderFor(field)
	input.CharLimit = 64

	return AutocompleteModel{
		input:          input,
		db:             dbh,
		field:          field,
		maxSuggestions: maxSuggestions,
		style:          lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func placeholderFor(field db.SuggestField) string {
	switch field {
	case db.SuggestProject:
		return "Project..."
	case db.SuggestCategory:
		return "Category..."
	default:
		return "Type..."
	}
}

// Update handles the autocomplete logic
func (m AutocompleteModel) Update(msg tea.Msg) (AutocompleteModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyTab:
			if m.showing && len(m.suggestions) > 0 {
				m.selected = (m.selected + 1) % len(m.suggestions)
				return m, nil
			}
		case tea.KeyShiftTab:
			if m.showing && len(m.suggestions) > 0 {
				m.selected = (m.selected - 1 + len(m.suggestions)) % len(m.suggestions)
				return m, nil
			}
		case tea.KeyEnter:
			if m.showing && len(m.suggestions) > 0 {
				m.input.SetValue(m.suggestions[m.selected])
				m.input.CursorEnd()
				m.showing = false
				m.selected = 0
				return m, nil
			}
		case tea.KeyEscape:
			if m.showing {
				m.showing = false
				m.selected = 0
				return m, nil
			}
		}
		old := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != old {
			return m, tea.Batch(cmd, m.fetchSuggestions())
		}
		return m, cmd

	case AutocompleteMsg:
		// ignore answers for another field or an outdated query
		if msg.Field != m.field || msg.Query != m.input.Value() {
			return m, nil
		}
		m.suggestions = msg.Suggestions
		m.showing = len(m.suggestions) > 0 && m.input.Value() != ""
		m.selected = 0
		return m, nil
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AutocompleteModel) fetchSuggestions() tea.Cmd {
	query := m.input.Value()
	dbh, field, limit := m.db, m.field, m.maxSuggestions
	return func() tea.Msg {
		out := AutocompleteMsg{Field: field, Query: query}
		if dbh == nil || strings.TrimSpace(query) == "" {
			return out
		}
		s, err := db.Suggest(context.Background(), dbh, field, query, limit)
		if err == nil {
			out.Suggestions = s
		}
		return out
	}
}

// View renders the input and any suggestions
func (m AutocompleteModel) View() string {
	var content strings.Builder
	content.WriteString(m.input.View())

	if m.showing && len(m.suggestions) > 0 {
		for i, suggestion := range m.suggestions {
			if i >= m.maxSuggestions {
				break
			}
			content.WriteString("\n")
			if i == m.selected {
				content.WriteString(m.style.Foreground(lipgloss.Color("12")).Render("▶ " + suggestion))
			} else {
				content.WriteString(m.style.Render("  " + suggestion))
			}
		}
	}
	return content.String()
}

func (m AutocompleteModel) Value() string { return m.input.Value() }

func (m *AutocompleteModel) SetValue(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
}

func (m *AutocompleteModel) Focus() tea.Cmd {
	m.showing = false
	m.selected = 0
	return m.input.Focus()
}

func (m *AutocompleteModel) Blur() {
	m.input.Blur()
	m.showing = false
	m.selected = 0
}

func (m AutocompleteModel) Focused() bool { return m.input.Focused() }

// Showing reports whether the suggestion list is open.
func (m AutocompleteModel) Showing() bool { return m.showing }

func (m AutocompleteModel) Suggestions() []string { return m.suggestions }
