// Package statsui is the interactive run history browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/store"
)

const (
	tabOverview = iota
	tabCharTable
)

var tabNames = []string{"Overview", "Characters"}

// Filter form fields, in focus order.
const (
	fieldSource = iota
	fieldSince
	fieldLast
	fieldWindow
)

const (
	dateLayout = "2006-01-02"
	// runsShown bounds the recent-runs table; the viewport scrolls it.
	runsShown = 50
	// windowStep is the -/= increment of the curve window.
	windowStep = 5
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("2"))
	inactiveTabStyle = lipgloss.NewStyle().
				Faint(true).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Model browses stored runs.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig
	now   func() time.Time
	keys  keyMap
	help  help.Model

	report stats.Report
	errMsg string

	activeTab   int
	windowChars bool
	overview    viewport.Model
	charTable   table.Model

	width  int
	height int

	editing   bool
	inputs    []textinput.Model
	focused   int
	formError string
}

// NewModel loads the report for cfg from st.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:     st,
		cfg:       cfg,
		now:       time.Now,
		keys:      defaultKeyMap(),
		help:      help.New(),
		overview:  viewport.New(0, 0),
		charTable: newCharTable(),
		inputs: []textinput.Model{
			newInput("Source: "),
			newInput("Since (" + dateLayout + "): "),
			newInput("Last runs: "),
			newInput("Curve window: "),
		},
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)
		return m, nil
	case key.Matches(msg, m.keys.Wider):
		m.cfg.CurveWindow = stepWindow(m.cfg.CurveWindow, 1)
		m.reload()
		return m, nil
	case key.Matches(msg, m.keys.Narrower):
		m.cfg.CurveWindow = stepWindow(m.cfg.CurveWindow, -1)
		m.reload()
		return m, nil
	case key.Matches(msg, m.keys.CharWindow):
		m.windowChars = !m.windowChars
		m.fillCharTable()
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.editing = true
		m.formError = ""
		m.fillForm()
		return m, m.focus(0)
	}
	var cmd tea.Cmd
	if m.activeTab == tabCharTable {
		m.charTable, cmd = m.charTable.Update(msg)
	} else {
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		return m, nil
	case key.Matches(msg, m.keys.Apply):
		cfg, err := parseFilter(m.cfg, m.inputs)
		if err != nil {
			m.formError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.editing = false
		m.reload()
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m, m.focus(m.focused + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.focus(m.focused - 1)
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header, body, footer := m.heights()
	return strings.Join([]string{
		fitLines(m.viewHeader(), m.width, header),
		fitLines(m.viewBody(), m.width, body),
		fitLines(m.viewFooter(), m.width, footer),
	}, "\n")
}

func newInput(prompt string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Cursor.SetMode(cursor.CursorBlink)
	return in
}

func (m *Model) fillForm() {
	since := ""
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	last := ""
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	m.inputs[fieldSource].SetValue(m.cfg.Source)
	m.inputs[fieldSince].SetValue(since)
	m.inputs[fieldLast].SetValue(last)
	m.inputs[fieldWindow].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) focus(idx int) tea.Cmd {
	n := len(m.inputs)
	m.focused = (idx%n + n) % n
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focused {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) heights() (header, body, footer int) {
	header = lipgloss.Height(activeTabStyle.Render("x")) + 1
	footer = 1
	if m.errMsg != "" && !m.editing {
		footer++
	}
	body = max(m.height-header-footer, 1)
	return header, body, footer
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, body, _ := m.heights()
	m.help.Width = m.width
	m.overview.Width = m.width
	m.overview.Height = body
	m.charTable.SetWidth(m.width)
	m.charTable.SetHeight(max(body-1, 1))
	for i := range m.inputs {
		m.inputs[i].Width = max(10, m.width-lipgloss.Width(m.inputs[i].Prompt)-2)
	}
}

func (m *Model) switchTab(delta int) {
	n := len(tabNames)
	m.activeTab = ((m.activeTab+delta)%n + n) % n
	if m.activeTab == tabCharTable {
		m.charTable.Focus()
	} else {
		m.charTable.Blur()
	}
}

func (m *Model) reload() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load history.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.fillCharTable()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	if err := m.report.RenderOverview(&buf, m.cfg, width, runsShown, m.now()); err != nil {
		m.overview.SetContent(fmt.Sprintf("Failed to render history: %v", err))
		return
	}
	m.overview.SetContent(strings.TrimRight(buf.String(), "\n"))
}

func (m *Model) charAggs() []model.CharAggregate {
	if m.windowChars {
		return m.report.WindowChars
	}
	return m.report.Chars
}

func (m *Model) fillCharTable() {
	aggs := m.charAggs()
	m.charTable.SetRows(charRows(aggs, stats.SelectWeakChars(aggs, 0)))
	m.charTable.GotoTop()
}

func (m *Model) viewHeader() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := inactiveTabStyle
		if i == m.activeTab {
			style = activeTabStyle
		}
		tabs[i] = style.Render(name)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n" + mutedStyle.Render(runewidth.Truncate(m.describeFilter(), m.width, "..."))
}

func (m *Model) describeFilter() string {
	source, since, last := "any", "any", "all"
	if m.cfg.Source != "" {
		source = m.cfg.Source
	}
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	chars := "all runs"
	if m.windowChars {
		chars = "window"
	}
	return fmt.Sprintf("source=%s  since=%s  last=%s  window=%d  chars=%s", source, since, last, m.cfg.CurveWindow, chars)
}

func (m *Model) viewFooter() string {
	if m.editing {
		return m.help.View(formKeys(m.keys))
	}
	out := m.help.View(browseKeys(m.keys))
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	}
	return out
}

func (m *Model) viewBody() string {
	switch {
	case m.editing:
		lines := []string{"Filter history"}
		for _, in := range m.inputs {
			lines = append(lines, in.View())
		}
		if m.formError != "" {
			lines = append(lines, errorStyle.Render(m.formError))
		}
		return strings.Join(lines, "\n")
	case m.activeTab == tabCharTable:
		if len(m.charAggs()) == 0 {
			return "No character stats found."
		}
		return m.charTable.View()
	default:
		return m.overview.View()
	}
}

// parseFilter applies the form to base. Empty fields clear their filter,
// except the curve window which keeps its value.
func parseFilter(base model.StatsConfig, inputs []textinput.Model) (model.StatsConfig, error) {
	field := func(i int) string { return strings.TrimSpace(inputs[i].Value()) }
	cfg := base
	cfg.Source = field(fieldSource)

	cfg.Since = nil
	if v := field(fieldSince); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return base, fmt.Errorf("invalid since date %q", v)
		}
		cfg.Since = &parsed
	}

	cfg.Last = 0
	if v := field(fieldLast); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return base, fmt.Errorf("last runs must be a non-negative number")
		}
		cfg.Last = n
	}

	if v := field(fieldWindow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return base, fmt.Errorf("curve window must be >= 1")
		}
		cfg.CurveWindow = n
	}
	return cfg, nil
}

func newCharTable() table.Model {
	t := table.New(table.WithColumns([]table.Column{
		{Title: "Char", Width: 8},
		{Title: "Accuracy", Width: 9},
		{Title: "Latency", Width: 8},
		{Title: "Correct", Width: 8},
		{Title: "Missed", Width: 7},
		{Title: "Weak", Width: 5},
	}))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.Bold(true)
	t.SetStyles(styles)
	return t
}

// charRows lists aggs weakest first and marks the members of weak.
func charRows(aggs []model.CharAggregate, weak map[rune]struct{}) []table.Row {
	sorted := stats.SortWeakestFirst(aggs)
	rows := make([]table.Row, 0, len(sorted))
	for _, agg := range sorted {
		label := agg.Char
		if label == " " {
			label = "<space>"
		}
		acc := 100.0
		if total := agg.Correct + agg.Incorrect; total > 0 {
			acc = float64(agg.Correct) / float64(total) * 100
		}
		latency := "-"
		if agg.LatencyCount > 0 {
			latency = fmt.Sprintf("%dms", agg.LatencySumMs/agg.LatencyCount)
		}
		mark := ""
		if r := []rune(agg.Char); len(r) > 0 {
			if _, ok := weak[r[0]]; ok {
				mark = "*"
			}
		}
		rows = append(rows, table.Row{
			label,
			fmt.Sprintf("%.1f%%", acc),
			latency,
			strconv.Itoa(agg.Correct),
			strconv.Itoa(agg.Incorrect),
			mark,
		})
	}
	return rows
}

// stepWindow moves n to the next multiple of windowStep in direction dir,
// never below 1.
func stepWindow(n, dir int) int {
	if dir > 0 {
		return (n/windowStep + 1) * windowStep
	}
	if n <= windowStep {
		return 1
	}
	if n%windowStep != 0 {
		return n / windowStep * windowStep
	}
	return n - windowStep
}

// fitLines pads or cuts s to exactly height lines of width cells.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if pad := width - lipgloss.Width(line); pad > 0 {
			lines[i] = line + strings.Repeat(" ", pad)
		}
	}
	return strings.Join(lines, "\n")
}
