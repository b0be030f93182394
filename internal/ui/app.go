package ui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/flowlog/flowlog/internal/config"
	"github.com/flowlog/flowlog/internal/db"
	"github.com/flowlog/flowlog/internal/duration"
	"github.com/flowlog/flowlog/internal/entry"
	"github.com/flowlog/flowlog/internal/notify"
	"github.com/flowlog/flowlog/internal/timer"
)

const toastFor = 5 * time.Second

// Options wires the dashboard to its timer and store. Timer must already be
// restored from the store.
type Options struct {
	DB       *sql.DB
	Timer    *timer.Timer
	Config   config.Config
	Clock    timer.Clock
	Notifier notify.Notifier
	Logger   *slog.Logger
	// TickEvery is the display refresh interval, one second by default.
	TickEvery time.Duration
}

type editField int

const (
	editDescription editField = iota
	editCategory
)

// Model is the bubbletea timer dashboard.
type Model struct {
	dbh      *sql.DB
	t        *timer.Timer
	cfg      config.Config
	clock    timer.Clock
	loc      *time.Location
	notifier notify.Notifier
	log      *slog.Logger
	every    time.Duration

	keys  keyMap
	help  help.Model
	theme Theme
	use12 bool

	// gen invalidates in-flight ticks: a tick carrying an older generation
	// is dropped and not rescheduled.
	gen     int
	seconds int

	today      []entry.TimeEntry
	toast      string
	toastUntil time.Time
	status     string
	err        error

	editing bool
	field   editField
	desc    textinput.Model
	cat     AutocompleteModel

	width, height int
}

type tickMsg struct{ gen int }

type todayLoadedMsg struct {
	entries []entry.TimeEntry
	err     error
}

// New builds the dashboard model.
func New(opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = timer.SystemClock{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.TickEvery <= 0 {
		opts.TickEvery = time.Second
	}
	if opts.Timer == nil {
		opts.Timer = timer.New(timer.WithClock(opts.Clock), timer.WithLocation(opts.Config.Location()), timer.WithLogger(opts.Logger))
	}

	desc := textinput.New()
	desc.Placeholder = "What are you working on?"
	desc.CharLimit = 200

	m := Model{
		dbh:      opts.DB,
		t:        opts.Timer,
		cfg:      opts.Config,
		clock:    opts.Clock,
		loc:      opts.Config.Location(),
		notifier: opts.Notifier,
		log:      opts.Logger,
		every:    opts.TickEvery,
		keys:     defaultKeys(),
		help:     help.New(),
		theme:    ThemeFor(opts.Config.Display.Theme),
		use12:    opts.Config.Display.Use12Hour,
		desc:     desc,
		cat:      NewAutocomplete(opts.DB, db.SuggestCategory, 5),
	}
	m.seconds = m.t.CurrentDisplaySeconds()
	return m
}

// Run opens the dashboard on the terminal and blocks until it quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadToday()}
	if m.t.State() == timer.Running {
		cmds = append(cmds, m.tick())
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.every, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (m Model) loadToday() tea.Cmd {
	dbh := m.dbh
	day := m.clock.Now().In(m.loc).Format(entry.DateLayout)
	return func() tea.Msg {
		if dbh == nil {
			return todayLoadedMsg{}
		}
		es, err := db.ListDay(context.Background(), dbh, day)
		return todayLoadedMsg{entries: es, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.gen != m.gen || m.t.State() != timer.Running {
			return m, nil
		}
		if m.sync() {
			return m, m.adopted()
		}
		m.seconds = m.t.CurrentDisplaySeconds()
		if ms, ok := m.t.Tick(); ok {
			m.milestone(ms)
		}
		if m.toast != "" && !m.clock.Now().Before(m.toastUntil) {
			m.toast = ""
		}
		return m, m.tick()

	case todayLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.today = msg.entries
		return m, nil

	case AutocompleteMsg:
		var cmd tea.Cmd
		m.cat, cmd = m.cat.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEdit(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	if key.Matches(msg, m.keys.Quit) {
		m.sync()
		m.persist()
		return m, tea.Quit
	}
	if m.sync() {
		return m, m.adopted()
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Clock):
		m.use12 = !m.use12
		return m, nil

	case key.Matches(msg, m.keys.Start):
		switch m.t.State() {
		case timer.Running:
			// space toggles
			if msg.String() == " " {
				return m.pause()
			}
			m.err = timer.ErrAlreadyRunning
			return m, nil
		case timer.Stopped:
			m.t.SetDetails(m.defaultDetails())
		}
		if err := m.t.Start(); err != nil {
			m.err = err
			return m, nil
		}
		m.gen++
		m.seconds = m.t.CurrentDisplaySeconds()
		m.status = "Running"
		m.persist()
		return m, m.tick()

	case key.Matches(msg, m.keys.Pause):
		return m.pause()

	case key.Matches(msg, m.keys.Stop):
		return m.stop()

	case key.Matches(msg, m.keys.Edit):
		if m.t.State() == timer.Stopped {
			m.err = timer.ErrNotStarted
			return m, nil
		}
		d := m.t.Details()
		m.editing = true
		m.field = editDescription
		m.desc.SetValue(d.Description)
		m.desc.CursorEnd()
		m.cat.SetValue(d.Category)
		m.cat.Blur()
		return m, m.desc.Focus()
	}
	return m, nil
}

func (m Model) pause() (tea.Model, tea.Cmd) {
	if err := m.t.Pause(); err != nil {
		m.err = err
		return m, nil
	}
	m.gen++
	m.seconds = m.t.CurrentDisplaySeconds()
	m.status = "Paused"
	m.persist()
	return m, nil
}

func (m Model) stop() (tea.Model, tea.Cmd) {
	before := m.t.Snapshot()
	e, err := m.t.Stop()
	if err != nil {
		m.err = err
		return m, nil
	}
	m.gen++
	m.seconds = 0
	m.toast = ""
	if m.dbh != nil {
		if err := db.CommitStop(context.Background(), m.dbh, e); err != nil {
			m.err = fmt.Errorf("saving entry: %w", err)
			// the session is still stored; keep tracking it
			if rerr := m.t.Restore(before); rerr != nil {
				m.log.Warn("restoring timer after failed stop", "err", rerr)
			}
			m.seconds = m.t.CurrentDisplaySeconds()
			if m.t.State() == timer.Running {
				return m, m.tick()
			}
			return m, nil
		}
	}
	m.status = notify.FormatStopped(e, m.use12)
	if err := m.notifier.Notify("Flowlog", m.status); err != nil {
		m.log.Warn("stop notification failed", "err", err)
	}
	return m, m.loadToday()
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Cancel) && !(m.field == editCategory && m.cat.Showing()):
		m.closeEdit()
		m.status = "Edit cancelled"
		return m, nil

	case key.Matches(msg, m.keys.Save) && m.field == editDescription:
		if strings.TrimSpace(m.desc.Value()) == "" {
			m.err = errors.New("description is required")
			return m, nil
		}
		m.field = editCategory
		m.desc.Blur()
		return m, m.cat.Focus()

	case key.Matches(msg, m.keys.Save) && m.field == editCategory && !m.cat.Showing():
		if m.sync() {
			m.closeEdit()
			return m, m.adopted()
		}
		d := m.t.Details()
		d.Description = strings.TrimSpace(m.desc.Value())
		if c := strings.TrimSpace(m.cat.Value()); c != "" {
			d.Category = c
		}
		m.t.SetDetails(d)
		m.persist()
		m.closeEdit()
		m.status = "Updated"
		return m, nil
	}

	if m.field == editDescription {
		m.desc, cmd = m.desc.Update(msg)
	} else {
		m.cat, cmd = m.cat.Update(msg)
	}
	return m, cmd
}

func (m *Model) closeEdit() {
	m.editing = false
	m.err = nil
	m.desc.Blur()
	m.cat.Blur()
}

func (m *Model) milestone(ms timer.Milestone) {
	title, body := notify.FormatMilestone(ms.Hours, m.t.Details().Description)
	m.toast = title
	m.toastUntil = ms.At.Add(toastFor)
	m.persist()
	if !m.cfg.Timer.Milestones {
		return
	}
	if err := m.notifier.Notify(title, body); err != nil {
		m.log.Warn("milestone notification failed", "err", err)
	}
}

func (m Model) defaultDetails() entry.Details {
	return entry.Details{
		Category: m.cfg.Timer.Category,
		Billable: m.cfg.Timer.Billable,
		Rate:     m.cfg.Timer.Rate,
	}
}

// sync adopts the stored timer when another flowlog process changed it and
// reports whether it did. Adopting starts a new tick generation.
func (m *Model) sync() bool {
	if m.dbh == nil {
		return false
	}
	stored, err := db.LoadTimer(context.Background(), m.dbh)
	if err != nil {
		m.log.Warn("reading timer state failed", "err", err)
		return false
	}
	if stored.SameSession(m.t.Snapshot()) {
		return false
	}
	if err := m.t.Restore(stored); err != nil {
		m.log.Warn("stored timer state rejected", "err", err)
		return false
	}
	m.gen++
	m.seconds = m.t.CurrentDisplaySeconds()
	m.toast = ""
	m.status = "Timer changed in another flowlog: now " + stored.State.String()
	m.log.Debug("adopted stored timer", "state", stored.State)
	return true
}

// adopted resumes ticking and refreshes today's entries after sync.
func (m Model) adopted() tea.Cmd {
	if m.t.State() == timer.Running {
		return tea.Batch(m.loadToday(), m.tick())
	}
	return m.loadToday()
}

// persist saves the timer snapshot. Failures are logged; the dashboard keeps running.
func (m *Model) persist() {
	if m.dbh == nil {
		return
	}
	if err := db.SaveTimer(context.Background(), m.dbh, m.t.Snapshot()); err != nil {
		m.log.Warn("saving timer state failed", "err", err)
		m.err = err
	}
}

func (m Model) View() string {
	th := m.theme
	var b strings.Builder

	state := m.t.State()
	stateStyle := th.Label
	switch state {
	case timer.Running:
		stateStyle = th.Running
	case timer.Paused:
		stateStyle = th.Paused
	}
	b.WriteString(th.Title.Render("Flowlog"))
	b.WriteString("  ")
	b.WriteString(stateStyle.Render(strings.ToUpper(state.String())))
	if m.toast != "" {
		b.WriteString("  ")
		b.WriteString(th.Toast.Render(m.toast))
	}
	b.WriteString("\n\n")

	b.WriteString(th.Clock.Render(duration.FormatElapsed(m.seconds)))
	b.WriteString("\n\n")

	if state != timer.Stopped {
		d := m.t.Details()
		desc := d.Description
		if desc == "" {
			desc = "(no description, press e)"
		}
		parts := []string{th.Value.Render(desc)}
		if d.Category != "" {
			parts = append(parts, th.Label.Render(d.Category))
		}
		if d.Project != "" {
			parts = append(parts, th.Label.Render("["+d.Project+"]"))
		}
		if d.Billable {
			parts = append(parts, th.Success.Render("billable"))
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteString("\n\n")
	}

	if m.editing {
		form := th.Label.Render("Description") + "\n" + m.desc.View() + "\n\n" +
			th.Label.Render("Category") + "\n" + m.cat.View()
		b.WriteString(th.Border.Render(form))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderToday())

	if m.err != nil {
		b.WriteString(th.Error.Render("! " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(th.Hint.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString(m.help.View(editKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) renderToday() string {
	th := m.theme
	total := 0
	for _, e := range m.today {
		total += e.DurationMinutes
	}

	var b strings.Builder
	header := th.Label.Render("Today ") + th.Value.Render(duration.FormatDuration(total))
	if goal := m.cfg.Profile.DailyGoalMinutes; goal > 0 {
		header += th.Label.Render(fmt.Sprintf(" of %s goal", duration.FormatDuration(goal)))
	}
	b.WriteString(header)
	b.WriteString("\n")

	if len(m.today) == 0 {
		b.WriteString(th.Hint.Render("  nothing logged yet"))
		b.WriteString("\n\n")
		return b.String()
	}
	spanWidth := 13
	if m.use12 {
		spanWidth = 19
	}
	for _, e := range m.today {
		span := e.StartTime.Display(m.use12) + "–" + e.EndTime.Display(m.use12)
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(spanWidth+2).Render("  "+span),
			lipgloss.NewStyle().Width(9).Render(duration.FormatDuration(e.DurationMinutes)),
			th.Label.Render(e.Category), " ",
			e.Description,
		)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
