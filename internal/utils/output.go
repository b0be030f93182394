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
	"github.com/dustin/go-humanize"
	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
)

// OutputFormat represents different output formats
type OutputFormat string

const (
	FormatDefault OutputFormat = "default"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatCompact OutputFormat = "compact"
	FormatQuiet   OutputFormat = "quiet"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDefault, nil
	case FormatDefault, FormatTable, FormatJSON, FormatCSV, FormatCompact, FormatQuiet:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (default, table, json, csv, compact, quiet)", s)
	}
}

// RenderConfig contains configuration for output rendering
type RenderConfig struct {
	Format    OutputFormat
	Width     int
	Use12Hour bool
	ShowID    bool
	ShowDate  bool
	Color     bool
	// Now anchors relative "edited ..." labels.
	Now time.Time
}

// DefaultRenderConfig returns a default render configuration
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
		ShowID:   true,
		ShowDate: true,
		Color:    true,
		Now:      time.Now(),
	}
}

// EntryList is a page of entries plus the context it was selected with.
type EntryList struct {
	Title      string            `json:"-"`
	Entries    []entry.TimeEntry `json:"entries"`
	Total      int               `json:"total"`
	Page       int               `json:"page,omitempty"`
	PerPage    int               `json:"per_page,omitempty"`
	TotalPages int               `json:"total_pages,omitempty"`
	Query      string            `json:"query,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
}

// TotalMinutes sums the durations on this page.
func (l *EntryList) TotalMinutes() int {
	n := 0
	for _, e := range l.Entries {
		n += e.DurationMinutes
	}
	return n
}

// Renderer handles output formatting
type Renderer struct {
	config *RenderConfig
	styles *Styles
}

// Styles contains lipgloss styles for different elements
type Styles struct {
	Title     lipgloss.Style
	Separator lipgloss.Style
	Meta      lipgloss.Style
	ID        lipgloss.Style
	Time      lipgloss.Style
	Duration  lipgloss.Style
	Category  lipgloss.Style
	Project   lipgloss.Style
	Billable  lipgloss.Style
	Text      lipgloss.Style
	Highlight lipgloss.Style
}

// NewRenderer creates a new renderer with the given config
func NewRenderer(config *RenderConfig) *Renderer {
	if config == nil {
		config = DefaultRenderConfig()
	}
	if config.Now.IsZero() {
		config.Now = time.Now()
	}
	return &Renderer{config: config, styles: initStyles(config.Color)}
}

func initStyles(color bool) *Styles {
	s := &Styles{
		Title:     lipgloss.NewStyle().Bold(true),
		Separator: lipgloss.NewStyle(),
		Meta:      lipgloss.NewStyle(),
		ID:        lipgloss.NewStyle(),
		Time:      lipgloss.NewStyle(),
		Duration:  lipgloss.NewStyle().Bold(true),
		Category:  lipgloss.NewStyle().Bold(true),
		Project:   lipgloss.NewStyle(),
		Billable:  lipgloss.NewStyle(),
		Text:      lipgloss.NewStyle(),
		Highlight: lipgloss.NewStyle().Bold(true),
	}
	if !color {
		return s
	}
	s.Title = s.Title.Foreground(lipgloss.Color("#A6E3A1"))
	s.Separator = s.Separator.Foreground(lipgloss.Color("#6C7086"))
	s.Meta = s.Meta.Faint(true)
	s.ID = s.ID.Faint(true)
	s.Time = s.Time.Faint(true)
	s.Duration = s.Duration.Foreground(lipgloss.Color("#F9E2AF"))
	s.Project = s.Project.Foreground(lipgloss.Color("#89B4FA"))
	s.Billable = s.Billable.Foreground(lipgloss.Color("#A6E3A1"))
	s.Highlight = s.Highlight.Foreground(lipgloss.Color("#F9E2AF"))
	return s
}

// RenderEntryList renders a list of entries according to the configured format
func (r *Renderer) RenderEntryList(list *EntryList) (string, error) {
	switch r.config.Format {
	case FormatJSON:
		return r.renderJSON(list)
	case FormatCSV:
		return r.renderCSV(list)
	case FormatTable:
		return r.renderTable(list), nil
	case FormatCompact:
		return r.renderCompact(list), nil
	case FormatQuiet:
		return r.renderQuiet(list), nil
	default:
		return r.renderDefault(list), nil
	}
}

func (r *Renderer) rule() string {
	return r.styles.Separator.Render(strings.Repeat("─", min(r.config.Width, 120)))
}

func (r *Renderer) span(e entry.TimeEntry) string {
	return e.StartTime.Display(r.config.Use12Hour) + "–" + e.EndTime.Display(r.config.Use12Hour)
}

func (r *Renderer) renderDefault(list *EntryList) string {
	var b strings.Builder

	title := list.Title
	if title == "" {
		title = "Entries"
		if list.Query != "" {
			title = "Search Results"
		}
	}
	b.WriteString(r.styles.Title.Render(title))
	if list.Query != "" {
		b.WriteString("  ")
		b.WriteString(r.styles.Separator.Render("query: "))
		b.WriteString(list.Query)
	}
	b.WriteString("\n")
	b.WriteString(r.rule())
	b.WriteString("\n")

	if len(list.Entries) == 0 {
		b.WriteString(r.styles.Meta.Render("No entries"))
		b.WriteString("\n")
		return b.String()
	}

	for _, e := range list.Entries {
		b.WriteString(r.renderSingleEntry(e))
	}
	b.WriteString(r.rule())
	b.WriteString("\n")
	b.WriteString(r.styles.Meta.Render("Total "))
	b.WriteString(r.styles.Duration.Render(duration.FormatDuration(list.TotalMinutes())))
	b.WriteString("\n")

	if list.TotalPages > 1 {
		p := PageOf(list.Total, list.PerPage, list.Page)
		b.WriteString(r.styles.Meta.Render(p.String()))
		b.WriteString("\n")
		if nav := p.Hint(); nav != "" {
			b.WriteString(r.styles.Meta.Render(nav))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *Renderer) renderSingleEntry(e entry.TimeEntry) string {
	var b strings.Builder

	var meta []string
	if r.config.ShowID {
		meta = append(meta, r.styles.ID.Render("["+shortID(e.ID)+"]"))
	}
	if r.config.ShowDate {
		meta = append(meta, r.styles.Time.Render(e.Date))
	}
	meta = append(meta, r.styles.Time.Render(r.span(e)))
	meta = append(meta, r.styles.Duration.Render(duration.FormatDuration(e.DurationMinutes)))
	if e.Category != "" {
		meta = append(meta, r.styles.Category.Foreground(colorForCategory(e.Category)).Render(e.Category))
	}
	if e.Project != "" {
		meta = append(meta, r.styles.Project.Render("["+e.Project+"]"))
	}
	if e.Billable {
		label := "$"
		if e.Rate > 0 {
			label = fmt.Sprintf("$%.2f", e.Earnings())
		}
		meta = append(meta, r.styles.Billable.Render(label))
	}
	b.WriteString(strings.Join(meta, "  "))
	b.WriteString("\n")

	text := strings.ReplaceAll(e.Description, "\n", " ")
	if text == "" {
		text = "(no description)"
	}
	b.WriteString(r.styles.Text.Render("  " + text))
	b.WriteString("\n")

	if e.EditedAt != nil {
		b.WriteString(r.styles.Meta.Render("  edited " + humanize.RelTime(*e.EditedAt, r.config.Now, "ago", "from now")))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) renderJSON(list *EntryList) (string, error) {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func (r *Renderer) renderCSV(list *EntryList) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	header := []string{"id", "date", "start", "end", "duration_minutes", "description", "category", "project", "billable", "rate", "source"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, e := range list.Entries {
		row := []string{
			e.ID,
			e.Date,
			e.StartTime.String(),
			e.EndTime.String(),
			strconv.Itoa(e.DurationMinutes),
			e.Description,
			e.Category,
			e.Project,
			strconv.FormatBool(e.Billable),
			strconv.FormatFloat(e.Rate, 'f', 2, 64),
			string(e.Source),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return b.String(), nil
}

func (r *Renderer) renderTable(list *EntryList) string {
	var b strings.Builder
	b.WriteString("ID\tDate\tSpan\tDuration\tCategory\tProject\tDescription\n")
	b.WriteString(strings.Repeat("-", r.config.Width))
	b.WriteString("\n")
	for _, e := range list.Entries {
		row := []string{
			shortID(e.ID),
			e.Date,
			r.span(e),
			duration.FormatDuration(e.DurationMinutes),
			e.Category,
			e.Project,
			truncate(e.Description, 50),
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) renderCompact(list *EntryList) string {
	var b strings.Builder
	for _, e := range list.Entries {
		line := fmt.Sprintf("%s %s %s %s",
			r.styles.Time.Render(e.StartTime.Display(r.config.Use12Hour)),
			r.styles.Duration.Render(duration.FormatDuration(e.DurationMinutes)),
			r.styles.Category.Render(e.Category),
			truncate(e.Description, 80))
		if e.Project != "" {
			line += " " + r.styles.Project.Render("["+e.Project+"]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderQuiet prints only entry IDs, for piping into edit or delete.
func (r *Renderer) renderQuiet(list *EntryList) string {
	var b strings.Builder
	for _, e := range list.Entries {
		b.WriteString(e.ID)
		b.WriteString("\n")
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

func colorForCategory(cat string) lipgloss.Color {
	switch strings.ToLower(cat) {
	case "work", "dev":
		return lipgloss.Color("#A6E3A1") // green
	case "meeting":
		return lipgloss.Color("#F5C2E7") // pink
	case "admin":
		return lipgloss.Color("#F9E2AF") // yellow
	case "learning", "research":
		return lipgloss.Color("#89B4FA") // blue
	default:
		return lipgloss.Color("#94E2D5") // teal
	}
}
