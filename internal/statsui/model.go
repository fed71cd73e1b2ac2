// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/preflop/internal/model"
	"github.com/verte-zerg/preflop/internal/stats"
	"github.com/verte-zerg/preflop/internal/store"
)

const (
	tabOverview = iota
	tabHands
	tabScenarios
	tabRecent
)

const (
	plotHeight         = 10
	defaultCurveWindow = 3
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Options configures the stats UI.
type Options struct {
	Weak     stats.WeakOptions
	Location *time.Location
	// CurveWindow is the moving-average window of the accuracy curve.
	CurveWindow int
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	opts  Options

	report    stats.Report
	errMsg    string
	noticeMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	handTable   table.Model
	tableLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a stats UI model. The weak-hand count is recorded once,
// when the model is created.
func NewModel(st *store.Store, opts Options) *Model {
	if opts.CurveWindow <= 0 {
		opts.CurveWindow = defaultCurveWindow
	}
	m := &Model{
		store: st,
		opts:  opts,
		tabs:  []string{"Overview", "Hands", "Scenarios", "Recent"},
	}
	m.initInputs()
	m.handTable = buildHandTable(nil, nil, 0, 1)
	m.initViewports()
	m.refreshReport(true)
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
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.activeTab == tabHands {
			m.handTable.Focus()
		} else {
			m.handTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.opts.CurveWindow = nextCurveWindow(m.opts.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "-":
			m.opts.CurveWindow = prevCurveWindow(m.opts.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "/":
			return m.startFilter()
		case "w":
			m.queueWeakHands()
			return m, nil
		case "g", "home":
			if m.activeTab == tabHands {
				m.handTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHands {
				m.handTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHands {
				var cmd tea.Cmd
				m.handTable, cmd = m.handTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Min sample: "),
		newFilterInput("Max accuracy (0-1): "),
	}
	m.setInputsFromOptions()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromOptions() {
	m.filterInputs[0].SetValue(strconv.Itoa(m.opts.Weak.MinSample))
	m.filterInputs[1].SetValue(strconv.FormatFloat(m.opts.Weak.MaxAccuracy, 'f', -1, 64))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && (m.errMsg != "" || m.noticeMsg != "") {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setHandTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabHands {
		m.handTable.Focus()
	} else {
		m.handTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	summary := fmt.Sprintf("Settings: min-sample=%d  max-accuracy=%.0f%%  window=%d",
		m.opts.Weak.MinSample, m.opts.Weak.MaxAccuracy*100, m.opts.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.activeTab == tabHands {
		help = "Nav: left/right  Scroll: up/down  Review weak: w  Settings: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	switch {
	case m.errMsg != "":
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	case m.noticeMsg != "":
		return m.renderHelp() + "\n" + noticeStyle.Render(m.noticeMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Weak hand settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabHands {
		if len(m.report.Snapshot.ByHand) == 0 {
			return fitLines("No hands found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.handTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport(recordWeak bool) {
	report, err := stats.BuildReport(context.Background(), m.store, stats.ReportOptions{
		Weak:            m.opts.Weak,
		Location:        m.opts.Location,
		RecordWeakCount: recordWeak,
	})
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applyHandTable(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.opts.CurveWindow, width))
	m.viewports[tabScenarios].SetContent(renderSections(m.report,
		func(b *bytes.Buffer) error { return stats.RenderScenarioTable(b, m.report.Snapshot.ByScenario) },
		func(b *bytes.Buffer) error { return stats.RenderCategoryTable(b, m.report.Categories) },
	))
	m.viewports[tabRecent].SetContent(renderSections(m.report,
		func(b *bytes.Buffer) error { return stats.RenderRecent(b, m.report.Snapshot.RecentSessions) },
	))
}

func renderOverview(report stats.Report, window, width int) string {
	if report.Snapshot.Global.TotalSessions == 0 {
		return "No sessions found."
	}
	var buf bytes.Buffer
	buf.WriteString(renderSummaryCards(report, width))
	buf.WriteString("\n\n")
	if err := stats.RenderInsights(&buf, report.Insights()); err != nil {
		return fmt.Sprintf("Failed to render insights: %v", err)
	}
	if len(report.Accuracies) > 1 {
		values := stats.MovingAverage(report.Accuracies, window)
		if err := stats.PlotAccuracy(&buf, "Accuracy per Session", values, stats.PlotWidthFor(width), plotHeight, true); err != nil {
			return fmt.Sprintf("Failed to render curve: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderSummaryCards(report stats.Report, width int) string {
	g := report.Snapshot.Global
	cards := []string{
		metricCard("Sessions", strconv.Itoa(g.TotalSessions)),
		metricCard("Questions", strconv.Itoa(g.TotalQuestions)),
		metricCard("Accuracy", fmt.Sprintf("%.1f%%", g.Accuracy*100)),
		metricCard("Streak", fmt.Sprintf("%dd", report.StreakDays)),
		metricCard("Weak hands", strconv.Itoa(len(report.Weak))),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderSections(report stats.Report, sections ...func(*bytes.Buffer) error) string {
	if report.Snapshot.Global.TotalSessions == 0 {
		return "No sessions found."
	}
	var buf bytes.Buffer
	for _, section := range sections {
		if err := section(&buf); err != nil {
			return fmt.Sprintf("Failed to render stats: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func handTableColumns() []table.Column {
	return []table.Column{
		{Title: "Hand", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Correct", Width: 7},
		{Title: "Total", Width: 6},
		{Title: "Weak", Width: 4},
	}
}

func buildHandRows(hands []model.HandStats, weak []model.HandStats) []table.Row {
	weakSet := make(map[model.HandCode]struct{}, len(weak))
	for _, h := range weak {
		weakSet[h.Hand] = struct{}{}
	}
	sorted := stats.TopHandsByVolume(hands, len(hands))
	rows := make([]table.Row, 0, len(sorted))
	for _, h := range sorted {
		marker := ""
		if _, ok := weakSet[h.Hand]; ok {
			marker = "*"
		}
		rows = append(rows, table.Row{
			h.Hand,
			fmt.Sprintf("%.1f%%", h.Accuracy*100),
			strconv.Itoa(h.TotalCorrect),
			strconv.Itoa(h.TotalQuestions),
			marker,
		})
	}
	return rows
}

func buildHandTable(hands []model.HandStats, weak []model.HandStats, width, height int) table.Model {
	t := table.New(
		table.WithColumns(handTableColumns()),
		table.WithRows(buildHandRows(hands, weak)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(handTableStyles())
	return t
}

func (m *Model) applyHandTable(width, height int) {
	rows := buildHandRows(m.report.Snapshot.ByHand, m.report.Weak)
	m.handTable.SetRows(rows)
	m.tableLayout.rowCount = len(rows)
	m.tableLayout.width = 0
	m.setHandTableSize(width, height)
}

func (m *Model) setHandTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.handTable.SetWidth(width)
	m.handTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustHandTableHeight(height)
	if m.tableLayout.height != viewportHeight {
		m.tableLayout.height = viewportHeight
		m.handTable.SetHeight(viewportHeight)
	}
}

func handTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) adjustHandTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.handTable.Height()
	viewHeight := lipgloss.Height(m.handTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func (m *Model) queueWeakHands() {
	hands := stats.HandCodes(m.report.Weak)
	if len(hands) == 0 {
		m.noticeMsg = "No weak hands to review."
		return
	}
	m.store.SaveReviewHands(context.Background(), hands)
	m.noticeMsg = fmt.Sprintf("Queued %d weak hands for the next session.", len(hands))
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromOptions()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterMode = false
		m.filterError = ""
		m.filterInputs[m.filterIndex].Blur()
		return m, nil
	case "tab", "down":
		return m, m.setFilterIndex((m.filterIndex + 1) % len(m.filterInputs))
	case "shift+tab", "up":
		return m, m.setFilterIndex((m.filterIndex + len(m.filterInputs) - 1) % len(m.filterInputs))
	case "enter":
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterInputs[m.filterIndex].Blur()
		m.refreshReport(false)
		m.updateLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
	m.filterIndex = idx
	return m.filterInputs[idx].Focus()
}

func (m *Model) applyFilter() error {
	minSample, err := strconv.Atoi(strings.TrimSpace(m.filterInputs[0].Value()))
	if err != nil || minSample < 1 {
		return fmt.Errorf("min sample must be a positive integer")
	}
	maxAcc, err := strconv.ParseFloat(strings.TrimSpace(m.filterInputs[1].Value()), 64)
	if err != nil || maxAcc < 0 || maxAcc > 1 {
		return fmt.Errorf("max accuracy must be between 0 and 1")
	}
	m.opts.Weak = stats.WeakOptions{MinSample: minSample, MaxAccuracy: maxAcc}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
