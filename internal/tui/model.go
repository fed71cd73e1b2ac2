// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/preflop/internal/generator"
	"github.com/verte-zerg/preflop/internal/hand"
	"github.com/verte-zerg/preflop/internal/model"
	"github.com/verte-zerg/preflop/internal/trainer"
)

// SessionStore persists sessions while the quiz runs.
type SessionStore interface {
	UpsertSession(ctx context.Context, session *model.TrainingSession) error
	LoadSessions(ctx context.Context) []model.TrainingSession
}

// Options tweaks the quiz model.
type Options struct {
	// Title is shown above the cards, usually the scenario name.
	Title string
	// Source picks suits when dealing. Nil seeds from the clock.
	Source generator.Source
	Log    *zap.Logger
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	trainer *trainer.Trainer
	store   SessionStore
	rnd     generator.Source
	log     *zap.Logger
	title   string

	width  int
	height int

	session  *model.TrainingSession
	question *model.TrainingQuestion
	dealt    string

	last         *model.QuestionResult
	lastDecision model.HandDecision
	finished     bool
	saveFailed   bool
	startErr     string

	allCorrect int
	allTotal   int
}

var (
	cardStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	redSuitStyle   = cardStyle.Foreground(lipgloss.Color("#FF4D4F"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a quiz model for a session already started on tr.
func NewModel(tr *trainer.Trainer, store SessionStore, session *model.TrainingSession, opts Options) *Model {
	m := &Model{
		trainer: tr,
		store:   store,
		rnd:     opts.Source,
		log:     opts.Log,
		title:   opts.Title,
		session: session,
	}
	if m.rnd == nil {
		m.rnd = generator.NewSource()
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	m.loadFooterStats()
	m.advance()
	return m
}

// Session returns the session driven by the model.
func (m *Model) Session() *model.TrainingSession {
	return m.session
}

// Finished reports whether the current session was completed.
func (m *Model) Finished() bool {
	return m.finished
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
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quit()
			return m, tea.Quit
		}
		if m.finished {
			if msg.String() == "n" || msg.String() == "enter" {
				m.restart()
			}
			return m, nil
		}
		if action, ok := keyAction(msg.String()); ok {
			m.answer(action)
		}
		return m, nil
	default:
		return m, nil
	}
}

func keyAction(key string) (model.Action, bool) {
	switch key {
	case "r", "1", "left":
		return model.ActionRaise, true
	case "c", "2", "down":
		return model.ActionCall, true
	case "f", "3", "right":
		return model.ActionFold, true
	}
	return "", false
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return m.renderContent(0)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	content := lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Center).Render(m.renderContent(contentWidth))
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderContent(width int) string {
	lines := []string{}
	if m.title != "" {
		lines = append(lines, titleStyle.Render(m.title), "")
	}
	if m.startErr != "" {
		lines = append(lines, wrapStyledRunes(styleText(m.startErr, incorrectStyle), width))
		return strings.Join(lines, "\n")
	}
	if m.finished {
		lines = append(lines, m.renderSummary())
		if m.last != nil {
			lines = append(lines, "", wrapStyledRunes(buildFeedbackRunes(*m.last, m.lastDecision), width))
		}
		lines = append(lines, "", hintStyle.Render("n new session  q quit"))
		return strings.Join(lines, "\n")
	}
	lines = append(lines, renderStyledRunes(buildCardRunes(m.dealt)), "")
	if m.last != nil {
		lines = append(lines, wrapStyledRunes(buildFeedbackRunes(*m.last, m.lastDecision), width))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, "", hintStyle.Render("r raise  c call  f fold  q quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderSummary() string {
	total := len(m.session.Results)
	return fmt.Sprintf("Session complete: %d/%d correct (%.1f%%)", m.session.Correct(), total, m.session.Accuracy()*100)
}

func (m *Model) renderFooter() string {
	if m.session == nil {
		return ""
	}
	segments := []string{}
	if !m.finished {
		current, total := m.trainer.Progress(m.session)
		segments = append(segments, fmt.Sprintf("Question %d/%d", current, total), fmt.Sprintf("%d left", m.trainer.Remaining(m.session)))
	}
	if len(m.session.Results) > 0 {
		segments = append(segments, fmt.Sprintf("Session %.1f%%", m.session.Accuracy()*100))
	}
	if m.allTotal > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f%%", float64(m.allCorrect)/float64(m.allTotal)*100))
	}
	segments = append(segments, string(m.trainer.Settings().JudgeMode))
	if m.saveFailed {
		segments = append(segments, "not saved")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) loadFooterStats() {
	m.allCorrect, m.allTotal = 0, 0
	for _, s := range m.store.LoadSessions(context.Background()) {
		if s.ID == m.session.ID {
			continue
		}
		m.allCorrect += s.Correct()
		m.allTotal += len(s.Results)
	}
}

func (m *Model) answer(action model.Action) {
	if m.question == nil {
		return
	}
	result := m.trainer.AnswerQuestion(m.session, *m.question, action)
	m.last = &result
	m.lastDecision = m.question.CorrectProbabilities
	m.allTotal++
	if result.IsCorrect {
		m.allCorrect++
	}
	m.save()
	m.advance()
}

func (m *Model) advance() {
	m.question = m.trainer.NextQuestion(m.session)
	if m.question == nil {
		if len(m.session.Results) > 0 {
			m.trainer.FinishSession(m.session)
			m.save()
		} else {
			m.trainer.AbandonSession(m.session)
		}
		m.finished = true
		return
	}
	dealt, err := hand.Deal(m.question.Hand, m.rnd)
	if err != nil {
		m.log.Warn("failed to deal hand", zap.String("hand", m.question.Hand), zap.Error(err))
		dealt = m.question.Hand
	}
	m.dealt = dealt
}

func (m *Model) save() {
	if err := m.store.UpsertSession(context.Background(), m.session); err != nil {
		m.saveFailed = true
		m.log.Error("failed to save session", zap.String("session", m.session.ID), zap.Error(err))
	}
}

func (m *Model) quit() {
	if m.finished || m.session == nil {
		return
	}
	m.trainer.AbandonSession(m.session)
}

func (m *Model) restart() {
	session, err := m.trainer.StartSession(trainer.StartOptions{})
	if err != nil {
		m.startErr = trainer.UserMessage(err)
		return
	}
	m.session = session
	m.last = nil
	m.finished = false
	m.startErr = ""
	m.advance()
}
