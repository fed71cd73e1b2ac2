package trainer

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/preflop/internal/model"
)

func fixedClock() func() time.Time {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func scenarioSet(hands map[model.HandCode]model.HandDecision, enabled []model.HandCode) []model.RangeSet {
	return []model.RangeSet{{
		Meta: model.RangeSetMeta{ID: "set"},
		Scenarios: []model.RangeScenario{{
			ID:               "open",
			Name:             "Open",
			HeroPosition:     model.PositionBTN,
			ScenarioType:     model.ScenarioOpen,
			Hands:            hands,
			EnabledHandCodes: enabled,
		}},
	}}
}

func activeSettings(mode model.JudgeMode) model.AppSettings {
	s := model.DefaultSettings()
	s.JudgeMode = mode
	s.ActiveRangeSetID = "set"
	s.ActiveScenarioID = "open"
	return s
}

func newTrainer(mode model.JudgeMode, sets []model.RangeSet, seed int64) *Trainer {
	return New(activeSettings(mode), sets,
		WithSource(rand.New(rand.NewSource(seed))),
		WithClock(fixedClock()),
	)
}

func playAll(t *testing.T, tr *Trainer, session *model.TrainingSession, answer model.Action) {
	t.Helper()
	for {
		q := tr.NextQuestion(session)
		if q == nil {
			return
		}
		tr.AnswerQuestion(session, *q, answer)
	}
}

func TestSingleHandPoolAllRaise(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"AA": {Raise: 100}}, []model.HandCode{"AA"})
	tr := newTrainer(model.JudgeFrequency, sets, 1)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.QuestionCount != DefaultQuestionCount {
		t.Fatalf("expected %d questions, got %d", DefaultQuestionCount, session.QuestionCount)
	}
	for i := 0; ; i++ {
		q := tr.NextQuestion(session)
		if q == nil {
			break
		}
		if q.Hand != "AA" || q.CorrectAction != model.ActionRaise {
			t.Fatalf("unexpected question %+v", q)
		}
		if want := session.ID + "_q" + strconv.Itoa(i); q.ID != want {
			t.Fatalf("expected question id %s, got %s", want, q.ID)
		}
		tr.AnswerQuestion(session, *q, model.ActionRaise)
	}
	tr.FinishSession(session)
	if len(session.Results) != 20 || session.QuestionCount != 20 {
		t.Fatalf("expected 20 results, got %d (count %d)", len(session.Results), session.QuestionCount)
	}
	if session.Accuracy() != 1 {
		t.Fatalf("expected accuracy 1, got %v", session.Accuracy())
	}
	if session.FinishedAt == nil || !session.FinishedAt.Equal(fixedClock()()) {
		t.Fatalf("unexpected finished time %v", session.FinishedAt)
	}
	if tr.LiveSessions() != 0 {
		t.Fatalf("expected queue to be removed")
	}
}

func TestPoolCoverageBeforeRepeat(t *testing.T) {
	enabled := []model.HandCode{"AA", "KK", "QQ", "JJ", "TT", "99", "88"}
	hands := map[model.HandCode]model.HandDecision{}
	for _, h := range enabled {
		hands[h] = model.HandDecision{Raise: 100}
	}
	tr := newTrainer(model.JudgeFrequency, scenarioSet(hands, enabled), 7)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	counts := map[model.HandCode]int{}
	firstPass := map[model.HandCode]bool{}
	for i := 0; ; i++ {
		q := tr.NextQuestion(session)
		if q == nil {
			break
		}
		if i < len(enabled) {
			if firstPass[q.Hand] {
				t.Fatalf("hand %s repeated within the first pass", q.Hand)
			}
			firstPass[q.Hand] = true
		}
		counts[q.Hand]++
		tr.AnswerQuestion(session, *q, model.ActionRaise)
	}
	for _, h := range enabled {
		if c := counts[h]; c < 2 || c > 3 {
			t.Fatalf("hand %s appeared %d times", h, c)
		}
	}
}

func TestLargePoolIsSubsampled(t *testing.T) {
	hands := map[model.HandCode]model.HandDecision{}
	enabled := []model.HandCode{}
	for _, h := range []string{"AA", "KK", "QQ", "JJ", "TT", "99", "88", "77", "66", "55", "44", "33", "22",
		"AKs", "AQs", "AJs", "ATs", "A9s", "A8s", "A7s", "A6s", "A5s", "A4s", "A3s", "A2s"} {
		hands[h] = model.HandDecision{Raise: 100}
		enabled = append(enabled, h)
	}
	tr := newTrainer(model.JudgeFrequency, scenarioSet(hands, enabled), 3)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	seen := map[model.HandCode]bool{}
	for {
		q := tr.NextQuestion(session)
		if q == nil {
			break
		}
		if seen[q.Hand] {
			t.Fatalf("hand %s repeated in a sub-sampled session", q.Hand)
		}
		seen[q.Hand] = true
		tr.AnswerQuestion(session, *q, model.ActionRaise)
	}
	if len(seen) != DefaultQuestionCount {
		t.Fatalf("expected %d distinct hands, got %d", DefaultQuestionCount, len(seen))
	}
}

func TestProbabilisticPureFold(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"72o": {Fold: 100}}, nil)
	tr := newTrainer(model.JudgeProbabilistic, sets, 5)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	playAll(t, tr, session, model.ActionFold)
	if len(session.Results) != 20 {
		t.Fatalf("expected 20 results, got %d", len(session.Results))
	}
	for _, r := range session.Results {
		if !r.IsCorrect || r.CorrectAction != model.ActionFold {
			t.Fatalf("expected FOLD to be correct, got %+v", r)
		}
		if r.ScenarioID != "open" || r.RangeSetID != "set" {
			t.Fatalf("result missing scenario context: %+v", r)
		}
	}
}

func TestEnabledHandWithoutDecisionIsForcedFold(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{}, []model.HandCode{"T2o"})
	tr := newTrainer(model.JudgeFrequency, sets, 9)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	q := tr.NextQuestion(session)
	if q == nil {
		t.Fatalf("expected a question")
	}
	if q.CorrectAction != model.ActionFold || q.CorrectProbabilities != model.ForcedFold {
		t.Fatalf("expected forced fold, got %+v", q)
	}
}

func TestPoolFallsBackToHandKeys(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"AKs": {Raise: 100}, "AKo": {Call: 100}}, nil)
	tr := newTrainer(model.JudgeFrequency, sets, 4)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	for {
		q := tr.NextQuestion(session)
		if q == nil {
			break
		}
		if q.Hand != "AKs" && q.Hand != "AKo" {
			t.Fatalf("unexpected hand %s", q.Hand)
		}
		tr.AnswerQuestion(session, *q, model.ActionRaise)
	}
}

func TestExplicitHandsOverridePool(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"AA": {Raise: 100}, "KK": {Raise: 100}}, []model.HandCode{"AA", "KK"})
	tr := New(activeSettings(model.JudgeFrequency), sets,
		WithSource(rand.New(rand.NewSource(2))),
		WithQuestionCount(6),
	)
	session, err := tr.StartSession(StartOptions{Hands: []model.HandCode{"QJs"}})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.QuestionCount != 6 {
		t.Fatalf("expected 6 questions, got %d", session.QuestionCount)
	}
	q := tr.NextQuestion(session)
	if q == nil || q.Hand != "QJs" {
		t.Fatalf("expected review hand QJs, got %+v", q)
	}
}

func TestStartSessionErrors(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{}, nil)

	noSet := activeSettings(model.JudgeFrequency)
	noSet.ActiveRangeSetID = ""
	if _, err := New(noSet, sets).StartSession(StartOptions{}); !errors.Is(err, ErrNoActiveRangeSet) {
		t.Fatalf("expected ErrNoActiveRangeSet, got %v", err)
	}

	missingSet := activeSettings(model.JudgeFrequency)
	missingSet.ActiveRangeSetID = "gone"
	if _, err := New(missingSet, sets).StartSession(StartOptions{}); !errors.Is(err, ErrNoActiveRangeSet) {
		t.Fatalf("expected ErrNoActiveRangeSet for unknown id, got %v", err)
	}

	missingScenario := activeSettings(model.JudgeFrequency)
	missingScenario.ActiveScenarioID = "gone"
	if _, err := New(missingScenario, sets).StartSession(StartOptions{}); !errors.Is(err, ErrNoActiveScenario) {
		t.Fatalf("expected ErrNoActiveScenario, got %v", err)
	}

	tr := New(activeSettings(model.JudgeFrequency), sets)
	_, err := tr.StartSession(StartOptions{})
	if !errors.Is(err, ErrNoPlayableHands) {
		t.Fatalf("expected ErrNoPlayableHands, got %v", err)
	}
	if msg := UserMessage(err); !strings.Contains(msg, "no playable hands") {
		t.Fatalf("unexpected message %q", msg)
	}
	if tr.LiveSessions() != 0 {
		t.Fatalf("failed start must not store a queue")
	}
}

func TestModeChangeAppliesAtAnswerTime(t *testing.T) {
	d := model.HandDecision{Raise: 50, Call: 50}
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"AQo": d}, nil)
	tr := newTrainer(model.JudgeProbabilistic, sets, 6)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	tr.UpdateConfig(activeSettings(model.JudgeFrequency), sets)
	q := tr.NextQuestion(session)
	if q == nil {
		t.Fatalf("expected a question")
	}
	if q.CorrectProbabilities != d {
		t.Fatalf("frozen decision changed: %+v", q.CorrectProbabilities)
	}
	for _, a := range []model.Action{model.ActionRaise, model.ActionCall} {
		if r := tr.AnswerQuestion(session, *q, a); !r.IsCorrect {
			t.Fatalf("frequency mode should accept tied %s", a)
		}
	}
	if r := tr.AnswerQuestion(session, *q, model.ActionFold); r.IsCorrect {
		t.Fatalf("frequency mode should reject FOLD")
	}
}

func TestUpdateConfigKeepsQueues(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"AA": {Raise: 100}}, []model.HandCode{"AA"})
	tr := newTrainer(model.JudgeFrequency, sets, 8)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	tr.UpdateConfig(model.DefaultSettings(), nil)
	q := tr.NextQuestion(session)
	if q == nil || q.Hand != "AA" {
		t.Fatalf("expected frozen queue after config change, got %+v", q)
	}
}

func TestFinishEarlyOverwritesCount(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"AA": {Raise: 100}}, []model.HandCode{"AA"})
	tr := newTrainer(model.JudgeFrequency, sets, 10)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	for i := 0; i < 3; i++ {
		q := tr.NextQuestion(session)
		tr.AnswerQuestion(session, *q, model.ActionFold)
	}
	if current, total := tr.Progress(session); current != 4 || total != 20 {
		t.Fatalf("unexpected progress %d/%d", current, total)
	}
	if tr.Remaining(session) != 17 {
		t.Fatalf("expected 17 remaining, got %d", tr.Remaining(session))
	}
	tr.FinishSession(session)
	if session.QuestionCount != 3 {
		t.Fatalf("expected question count 3, got %d", session.QuestionCount)
	}
	if tr.NextQuestion(session) != nil {
		t.Fatalf("finished session must have no next question")
	}
	if session.Accuracy() != 0 {
		t.Fatalf("expected accuracy 0, got %v", session.Accuracy())
	}
}

func TestAbandonSession(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"AA": {Raise: 100}}, []model.HandCode{"AA"})
	tr := newTrainer(model.JudgeFrequency, sets, 11)
	session, err := tr.StartSession(StartOptions{})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	tr.AbandonSession(session)
	if session.FinishedAt != nil {
		t.Fatalf("abandon must not seal the session")
	}
	if tr.NextQuestion(session) != nil || tr.LiveSessions() != 0 {
		t.Fatalf("expected queue to be dropped")
	}
}

func TestConcurrentSessions(t *testing.T) {
	sets := scenarioSet(map[model.HandCode]model.HandDecision{"AA": {Raise: 100}, "KK": {Raise: 100}}, []model.HandCode{"AA", "KK"})
	tr := newTrainer(model.JudgeProbabilistic, sets, 12)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := tr.StartSession(StartOptions{})
			if err != nil {
				t.Errorf("start session: %v", err)
				return
			}
			for {
				q := tr.NextQuestion(session)
				if q == nil {
					break
				}
				tr.AnswerQuestion(session, *q, model.ActionRaise)
			}
			tr.FinishSession(session)
			if session.Accuracy() != 1 {
				t.Errorf("expected accuracy 1, got %v", session.Accuracy())
			}
		}()
	}
	wg.Wait()
	if tr.LiveSessions() != 0 {
		t.Fatalf("expected all queues removed, got %d", tr.LiveSessions())
	}
}
