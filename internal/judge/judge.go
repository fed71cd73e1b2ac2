// Package judge decides which answers count as correct.
package judge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/preflop/internal/generator"
	"github.com/verte-zerg/preflop/internal/model"
)

// ErrUnknownAction is returned by ParseAction for unrecognized input.
var ErrUnknownAction = errors.New("unknown action")

// Policy controls what PROBABILISTIC answers are judged against.
type Policy string

const (
	// PolicyResample draws a fresh action every time an answer is judged.
	PolicyResample Policy = "resample"
	// PolicyFreeze judges against the label drawn when the question was built.
	PolicyFreeze Policy = "freeze"
)

// Actions lists actions in display order.
var Actions = []model.Action{model.ActionRaise, model.ActionCall, model.ActionFold}

// ParsePolicy accepts "resample" or "freeze".
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyResample:
		return PolicyResample, nil
	case PolicyFreeze:
		return PolicyFreeze, nil
	}
	return "", fmt.Errorf("unknown judge policy %q (want resample or freeze)", s)
}

// ParseMode accepts FREQUENCY or PROBABILISTIC in any case.
func ParseMode(s string) (model.JudgeMode, error) {
	switch model.JudgeMode(strings.ToUpper(strings.TrimSpace(s))) {
	case model.JudgeFrequency:
		return model.JudgeFrequency, nil
	case model.JudgeProbabilistic:
		return model.JudgeProbabilistic, nil
	}
	return "", fmt.Errorf("unknown judge mode %q (want FREQUENCY or PROBABILISTIC)", s)
}

// ParseAction accepts full action names or r/c/f.
func ParseAction(s string) (model.Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RAISE", "R":
		return model.ActionRaise, nil
	case "CALL", "C":
		return model.ActionCall, nil
	case "FOLD", "F":
		return model.ActionFold, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// BestActions returns every action tied for the highest weight.
// An all-zero decision ties all three, fold included.
func BestActions(d model.HandDecision) []model.Action {
	best := d.Raise
	if d.Call > best {
		best = d.Call
	}
	if d.Fold > best {
		best = d.Fold
	}
	out := make([]model.Action, 0, 3)
	for _, a := range Actions {
		if d.Weight(a) == best {
			out = append(out, a)
		}
	}
	return out
}

// IsBest reports whether a is among the best actions of d.
func IsBest(d model.HandDecision, a model.Action) bool {
	for _, b := range BestActions(d) {
		if b == a {
			return true
		}
	}
	return false
}

// Sample draws an action with probability proportional to its weight.
// Non-positive totals always fold.
func Sample(rnd generator.Source, d model.HandDecision) model.Action {
	total := d.Total()
	if total <= 0 {
		return model.ActionFold
	}
	x := rnd.Float64() * float64(total)
	switch {
	case x < float64(d.Raise):
		return model.ActionRaise
	case x < float64(d.Raise+d.Call):
		return model.ActionCall
	default:
		return model.ActionFold
	}
}

// CorrectAction picks the label shown for a question under mode.
func CorrectAction(rnd generator.Source, d model.HandDecision, mode model.JudgeMode) model.Action {
	if mode == model.JudgeProbabilistic {
		return Sample(rnd, d)
	}
	return generator.Pick(rnd, BestActions(d))
}

// Verdict is the outcome of judging one answer.
type Verdict struct {
	IsCorrect bool
	// CorrectAction is the action the answer was compared with.
	CorrectAction model.Action
}

// Judge evaluates answer for q under the given mode and policy.
// FREQUENCY accepts any tied-best action regardless of the displayed label.
func Judge(rnd generator.Source, q model.TrainingQuestion, answer model.Action, mode model.JudgeMode, policy Policy) Verdict {
	if mode == model.JudgeProbabilistic {
		expected := q.CorrectAction
		if policy != PolicyFreeze || expected == "" {
			expected = Sample(rnd, q.CorrectProbabilities)
		}
		return Verdict{IsCorrect: answer == expected, CorrectAction: expected}
	}
	return Verdict{
		IsCorrect:     IsBest(q.CorrectProbabilities, answer),
		CorrectAction: q.CorrectAction,
	}
}
