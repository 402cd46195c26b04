// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/retype/internal/document"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/session"
	statsPkg "github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/store"
)

// chromeHeight is the number of rows below the text: status, footer, help.
const chromeHeight = 3

// DocumentSource yields the document for each run.
type DocumentSource interface {
	Next(filterComments bool) (*document.Document, error)
}

type fileSource struct {
	path string
}

func (f fileSource) Next(filterComments bool) (*document.Document, error) {
	return document.Load(f.path, filterComments)
}

// FileSource returns a source that reloads path for every run.
func FileSource(path string) DocumentSource {
	return fileSource{path: path}
}

type tickMsg time.Time

// Model implements the Bubble Tea typing UI.
type Model struct {
	config model.Config
	store  *store.Store
	sess   *session.Session
	source DocumentSource
	filter bool

	keys   keyMap
	help   help.Model
	styles styles

	width  int
	height int

	prompting bool
	prompt    textinput.Model
	status    string

	lastWPM float64
	lastAcc float64
	hasLast bool

	allWPM       float64
	allAcc       float64
	allCorrect   int
	allIncorrect int
	allDuration  int64
}

// NewModel constructs a typing TUI model and loads the first document.
// st may be nil, in which case runs are not saved.
func NewModel(cfg model.Config, st *store.Store, sess *session.Session, src DocumentSource) (*Model, error) {
	doc, err := src.Next(cfg.FilterComments)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	prompt := textinput.New()
	prompt.Prompt = "Open: "
	prompt.Placeholder = "path/to/file"
	m := &Model{
		config: cfg,
		store:  st,
		sess:   sess,
		source: src,
		filter: cfg.FilterComments,
		keys:   defaultKeyMap(),
		help:   help.New(),
		styles: newStyles(cfg.GoodColor, cfg.BadColor),
		prompt: prompt,
	}
	sess.Load(doc)
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.prompting {
			return m.updatePrompt(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Open):
			m.prompting = true
			m.prompt.SetValue("")
			return m, m.prompt.Focus()
		case key.Matches(msg, m.keys.Restart):
			m.sess.Restart()
			m.status = ""
			return m, nil
		case key.Matches(msg, m.keys.ToggleFilter):
			m.toggleFilter()
			return m, nil
		}
		m.handleKey(msg)
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	body := renderViewport(m.sess.Document(), m.sess.Surface(), m.sess.Caret(), m.styles)
	if m.width == 0 || m.height == 0 {
		return body
	}
	bodyHeight := max(m.height-chromeHeight, 0)
	lines := strings.Split(body, "\n")
	if len(lines) > bodyHeight {
		lines = lines[:bodyHeight]
	}
	for len(lines) < bodyHeight {
		lines = append(lines, "")
	}
	status := m.styles.status.Render(m.status)
	if m.prompting {
		status = m.prompt.View()
	}
	lines = append(lines, status, m.renderFooter(), m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m *Model) resize() {
	m.sess.Resize(m.width, max(m.height-chromeHeight, 0))
	m.help.Width = m.width
	m.prompt.Width = max(m.width-lipgloss.Width(m.prompt.Prompt)-1, 10)
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	var keys []session.Key
	switch msg.Type {
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			keys = append(keys, session.Char(r))
		}
	case tea.KeySpace:
		keys = append(keys, session.Char(' '))
	case tea.KeyBackspace:
		keys = append(keys, session.Backspace())
	case tea.KeyEnter:
		keys = append(keys, session.Enter())
	}
	for _, k := range keys {
		if err := m.sess.HandleKey(k); err != nil {
			m.status = fmt.Sprintf("keystroke dropped: %v", err)
			return
		}
		if m.sess.Done() {
			m.finishRun()
			return
		}
	}
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.prompting = false
		m.prompt.Blur()
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.prompting = false
		m.prompt.Blur()
		m.openFile(strings.TrimSpace(m.prompt.Value()))
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) openFile(path string) {
	if path == "" {
		return
	}
	src := FileSource(path)
	doc, err := src.Next(m.filter)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to open document")
		m.status = err.Error()
		return
	}
	m.source = src
	m.sess.Load(doc)
	m.status = ""
}

func (m *Model) toggleFilter() {
	doc := m.sess.Document()
	next, err := doc.WithCommentFilter(!m.filter)
	if err != nil {
		m.status = fmt.Sprintf("comment filter: %v", err)
		return
	}
	m.filter = !m.filter
	m.sess.Load(next)
	switch {
	case m.filter && !next.Filtered():
		m.status = "comment filter on (no comments recognized)"
	case m.filter:
		m.status = "comment filter on"
	default:
		m.status = "comment filter off"
	}
}

func (m *Model) finishRun() {
	stats, chars := m.sess.Result()
	if m.store != nil {
		if _, err := m.store.InsertSession(context.Background(), stats, chars); err != nil {
			log.Error().Err(err).Str("run", stats.RunID).Msg("failed to save run")
		}
	}
	wpm, _, acc := statsPkg.SessionMetrics(stats.Correct, stats.Incorrect, stats.DurationMs)
	m.lastWPM = wpm
	m.lastAcc = acc
	m.hasLast = true
	m.allCorrect += stats.Correct
	m.allIncorrect += stats.Incorrect
	m.allDuration += stats.DurationMs
	m.recomputeAllTime()
	m.status = fmt.Sprintf("run complete: %.1f WPM, %d errors", wpm, stats.Errors)

	doc, err := m.source.Next(m.filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to load next document")
		m.sess.Restart()
		return
	}
	m.sess.Load(doc)
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	ctx := context.Background()
	sessions, err := m.store.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		log.Error().Err(err).Msg("failed to load run history")
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	wpm, _, acc := statsPkg.SessionMetrics(last.Correct, last.Incorrect, last.DurationMs)
	m.lastWPM = wpm
	m.lastAcc = acc
	m.hasLast = true

	totals, err := m.store.TotalsFor(ctx, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to load run totals")
		return
	}
	m.allCorrect = totals.Correct
	m.allIncorrect = totals.Incorrect
	m.allDuration = totals.DurationMs
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	wpm, _, acc := statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, m.allDuration)
	m.allWPM = wpm
	m.allAcc = acc
}

func (m *Model) renderFooter() string {
	errs, wpm := m.sess.Counter().Snapshot()
	segments := []string{
		fmt.Sprintf("Errors %d", errs),
		fmt.Sprintf("WPM %.1f", wpm),
		fmt.Sprintf("Progress %d%%", int(m.sess.Progress()*100)),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc*100))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPM, m.allAcc*100))
	return m.styles.footer.Render(strings.Join(segments, "  "))
}
