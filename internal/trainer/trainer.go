// Package trainer builds quiz sessions and records answers.
package trainer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/preflop/internal/generator"
	"github.com/verte-zerg/preflop/internal/hand"
	"github.com/verte-zerg/preflop/internal/judge"
	"github.com/verte-zerg/preflop/internal/model"
)

// DefaultQuestionCount is the length of a session built from a normal pool.
const DefaultQuestionCount = 20

// Trainer owns the current settings and the question queues of live sessions.
type Trainer struct {
	mu        sync.Mutex
	settings  model.AppSettings
	rangeSets []model.RangeSet

	gen      *generator.Generator
	now      func() time.Time
	count    int
	policy   judge.Policy
	log      *zap.Logger
	sessions *SessionStore
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithSource sets the randomness used for sequences and judging.
func WithSource(src generator.Source) Option {
	return func(t *Trainer) {
		t.gen = generator.New(src)
	}
}

// WithClock sets the time source for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Trainer) {
		if now != nil {
			t.now = now
		}
	}
}

// WithQuestionCount overrides the number of questions per session.
func WithQuestionCount(n int) Option {
	return func(t *Trainer) {
		if n > 0 {
			t.count = n
		}
	}
}

// WithPolicy sets how PROBABILISTIC answers are judged.
func WithPolicy(p judge.Policy) Option {
	return func(t *Trainer) {
		if p != "" {
			t.policy = p
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(t *Trainer) {
		if log != nil {
			t.log = log
		}
	}
}

// New returns a Trainer for the given settings and range sets.
func New(settings model.AppSettings, rangeSets []model.RangeSet, opts ...Option) *Trainer {
	t := &Trainer{
		settings:  settings,
		rangeSets: rangeSets,
		now:       time.Now,
		count:     DefaultQuestionCount,
		policy:    judge.PolicyResample,
		log:       zap.NewNop(),
		sessions:  NewSessionStore(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.gen == nil {
		t.gen = generator.New(nil)
	}
	return t
}

// StartOptions customizes a session.
type StartOptions struct {
	// Hands replaces the scenario pool, e.g. for weak-hand review.
	Hands []model.HandCode
}

// UpdateConfig replaces settings and range sets. Live sessions keep their queues.
func (t *Trainer) UpdateConfig(settings model.AppSettings, rangeSets []model.RangeSet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings = settings
	t.rangeSets = rangeSets
}

// Settings returns the current settings.
func (t *Trainer) Settings() model.AppSettings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// StartSession resolves the active scenario and builds a new question queue.
func (t *Trainer) StartSession(opts StartOptions) (*model.TrainingSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, scenario, err := t.resolve()
	if err != nil {
		return nil, err
	}
	pool := questionPool(scenario, opts.Hands)
	if len(pool) == 0 {
		return nil, fmt.Errorf("failed to start session for scenario %s: %w", scenario.ID, ErrNoPlayableHands)
	}

	id := uuid.NewString()
	rnd := t.gen.Source()
	sequence := t.gen.Sequence(pool, t.count)
	questions := make([]model.TrainingQuestion, len(sequence))
	for i, code := range sequence {
		decision, ok := scenario.Hands[code]
		if !ok {
			decision = model.ForcedFold
		}
		questions[i] = model.TrainingQuestion{
			ID:                   fmt.Sprintf("%s_q%d", id, i),
			Hand:                 code,
			CorrectAction:        judge.CorrectAction(rnd, decision, t.settings.JudgeMode),
			CorrectProbabilities: decision,
		}
	}
	t.sessions.Create(id, questions)

	session := &model.TrainingSession{
		ID:            id,
		StartedAt:     t.now(),
		RangeSetID:    set.Meta.ID,
		ScenarioID:    scenario.ID,
		QuestionCount: len(questions),
		Results:       []model.QuestionResult{},
	}
	t.log.Info("session started",
		zap.String("session", id),
		zap.String("range_set", set.Meta.ID),
		zap.String("scenario", scenario.ID),
		zap.Int("pool", len(pool)),
		zap.Int("questions", len(questions)),
		zap.Bool("review", len(opts.Hands) > 0),
	)
	return session, nil
}

func (t *Trainer) resolve() (*model.RangeSet, *model.RangeScenario, error) {
	if t.settings.ActiveRangeSetID == "" {
		return nil, nil, ErrNoActiveRangeSet
	}
	var set *model.RangeSet
	for i := range t.rangeSets {
		if t.rangeSets[i].Meta.ID == t.settings.ActiveRangeSetID {
			set = &t.rangeSets[i]
			break
		}
	}
	if set == nil {
		return nil, nil, fmt.Errorf("failed to find range set %q: %w", t.settings.ActiveRangeSetID, ErrNoActiveRangeSet)
	}
	if t.settings.ActiveScenarioID == "" {
		return nil, nil, ErrNoActiveScenario
	}
	for i := range set.Scenarios {
		if set.Scenarios[i].ID == t.settings.ActiveScenarioID {
			return set, &set.Scenarios[i], nil
		}
	}
	return nil, nil, fmt.Errorf("failed to find scenario %q in %s: %w", t.settings.ActiveScenarioID, set.Meta.ID, ErrNoActiveScenario)
}

func questionPool(scenario *model.RangeScenario, explicit []model.HandCode) []model.HandCode {
	if len(explicit) > 0 {
		return append([]model.HandCode(nil), explicit...)
	}
	if len(scenario.EnabledHandCodes) > 0 {
		return append([]model.HandCode(nil), scenario.EnabledHandCodes...)
	}
	pool := make([]model.HandCode, 0, len(scenario.Hands))
	for code := range scenario.Hands {
		pool = append(pool, code)
	}
	hand.SortCanonical(pool)
	return pool
}

// NextQuestion returns the question at the current position, or nil when the
// session is complete or unknown.
func (t *Trainer) NextQuestion(session *model.TrainingSession) *model.TrainingQuestion {
	questions, ok := t.sessions.Get(session.ID)
	if !ok {
		return nil
	}
	idx := len(session.Results)
	if idx >= len(questions) {
		return nil
	}
	q := questions[idx]
	return &q
}

// AnswerQuestion judges answer with the judge mode configured now and records the result.
func (t *Trainer) AnswerQuestion(session *model.TrainingSession, question model.TrainingQuestion, answer model.Action) model.QuestionResult {
	t.mu.Lock()
	verdict := judge.Judge(t.gen.Source(), question, answer, t.settings.JudgeMode, t.policy)
	t.mu.Unlock()

	result := model.QuestionResult{
		QuestionID:    question.ID,
		Hand:          question.Hand,
		UserAnswer:    answer,
		IsCorrect:     verdict.IsCorrect,
		CorrectAction: verdict.CorrectAction,
		ScenarioID:    session.ScenarioID,
		RangeSetID:    session.RangeSetID,
		Timestamp:     t.now(),
	}
	session.Results = append(session.Results, result)
	t.log.Debug("answer recorded",
		zap.String("session", session.ID),
		zap.String("hand", question.Hand),
		zap.String("answer", string(answer)),
		zap.Bool("correct", verdict.IsCorrect),
	)
	return result
}

// FinishSession seals the session and drops its queue.
func (t *Trainer) FinishSession(session *model.TrainingSession) *model.TrainingSession {
	finished := t.now()
	session.FinishedAt = &finished
	session.QuestionCount = len(session.Results)
	t.sessions.Remove(session.ID)
	t.log.Info("session finished",
		zap.String("session", session.ID),
		zap.Int("questions", session.QuestionCount),
		zap.Float64("accuracy", session.Accuracy()),
	)
	return session
}

// AbandonSession drops the queue of a session without sealing it.
func (t *Trainer) AbandonSession(session *model.TrainingSession) {
	t.sessions.Remove(session.ID)
	t.log.Info("session abandoned", zap.String("session", session.ID), zap.Int("answered", len(session.Results)))
}

// Remaining returns how many questions are left, 0 for unknown sessions.
func (t *Trainer) Remaining(session *model.TrainingSession) int {
	questions, ok := t.sessions.Get(session.ID)
	if !ok {
		return 0
	}
	left := len(questions) - len(session.Results)
	if left < 0 {
		return 0
	}
	return left
}

// Progress returns the 1-based index of the current question and the queue length.
func (t *Trainer) Progress(session *model.TrainingSession) (int, int) {
	questions, ok := t.sessions.Get(session.ID)
	if !ok {
		return len(session.Results), len(session.Results)
	}
	current := len(session.Results) + 1
	if current > len(questions) {
		current = len(questions)
	}
	return current, len(questions)
}

// LiveSessions returns the number of sessions with a stored queue.
func (t *Trainer) LiveSessions() int {
	return t.sessions.Len()
}
