package judge

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/verte-zerg/preflop/internal/model"
)

type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0] % n
	s.ints = s.ints[1:]
	return v
}

func TestBestActions(t *testing.T) {
	tests := []struct {
		name string
		d    model.HandDecision
		want []model.Action
	}{
		{"unique raise", model.HandDecision{Raise: 70, Call: 20, Fold: 10}, []model.Action{model.ActionRaise}},
		{"unique fold", model.HandDecision{Raise: 10, Call: 10, Fold: 80}, []model.Action{model.ActionFold}},
		{"raise call tie", model.HandDecision{Raise: 50, Call: 50}, []model.Action{model.ActionRaise, model.ActionCall}},
		{"all zero", model.HandDecision{}, []model.Action{model.ActionRaise, model.ActionCall, model.ActionFold}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BestActions(tt.d)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestFrequencyUniqueMaximum(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	d := model.HandDecision{Raise: 20, Call: 65, Fold: 15}
	for i := 0; i < 50; i++ {
		if got := CorrectAction(rnd, d, model.JudgeFrequency); got != model.ActionCall {
			t.Fatalf("expected CALL label, got %s", got)
		}
	}
	q := model.TrainingQuestion{CorrectAction: model.ActionCall, CorrectProbabilities: d}
	for _, a := range Actions {
		v := Judge(rnd, q, a, model.JudgeFrequency, PolicyResample)
		if v.IsCorrect != (a == model.ActionCall) {
			t.Fatalf("answer %s: unexpected verdict %+v", a, v)
		}
	}
}

func TestFrequencyTieAcceptsBothTiedActions(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	d := model.HandDecision{Raise: 50, Call: 50, Fold: 0}
	q := model.TrainingQuestion{CorrectAction: model.ActionRaise, CorrectProbabilities: d}
	if !Judge(rnd, q, model.ActionRaise, model.JudgeFrequency, PolicyResample).IsCorrect {
		t.Fatalf("expected RAISE to be accepted")
	}
	if !Judge(rnd, q, model.ActionCall, model.JudgeFrequency, PolicyResample).IsCorrect {
		t.Fatalf("expected CALL to be accepted even though the label is RAISE")
	}
	if Judge(rnd, q, model.ActionFold, model.JudgeFrequency, PolicyResample).IsCorrect {
		t.Fatalf("expected FOLD to be rejected")
	}
}

func TestAllZeroClassifiesAsFold(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	d := model.HandDecision{}
	for i := 0; i < 100; i++ {
		if got := Sample(rnd, d); got != model.ActionFold {
			t.Fatalf("expected FOLD sample, got %s", got)
		}
	}
	q := model.TrainingQuestion{CorrectAction: model.ActionFold, CorrectProbabilities: d}
	for _, mode := range []model.JudgeMode{model.JudgeFrequency, model.JudgeProbabilistic} {
		if !Judge(rnd, q, model.ActionFold, mode, PolicyResample).IsCorrect {
			t.Fatalf("mode %s: expected FOLD to be correct", mode)
		}
	}
}

func TestSampleBoundaries(t *testing.T) {
	d := model.HandDecision{Raise: 30, Call: 20, Fold: 50}
	src := &scriptedSource{floats: []float64{0.0, 0.299, 0.3, 0.499, 0.5, 0.999}}
	want := []model.Action{
		model.ActionRaise, model.ActionRaise,
		model.ActionCall, model.ActionCall,
		model.ActionFold, model.ActionFold,
	}
	for i, w := range want {
		if got := Sample(src, d); got != w {
			t.Fatalf("draw %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestProbabilisticPureFold(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	d := model.HandDecision{Fold: 100}
	q := model.TrainingQuestion{CorrectAction: CorrectAction(rnd, d, model.JudgeProbabilistic), CorrectProbabilities: d}
	if q.CorrectAction != model.ActionFold {
		t.Fatalf("expected FOLD label, got %s", q.CorrectAction)
	}
	for i := 0; i < 100; i++ {
		v := Judge(rnd, q, model.ActionFold, model.JudgeProbabilistic, PolicyResample)
		if !v.IsCorrect || v.CorrectAction != model.ActionFold {
			t.Fatalf("expected FOLD to always be correct, got %+v", v)
		}
	}
}

func TestProbabilisticPolicies(t *testing.T) {
	d := model.HandDecision{Raise: 50, Fold: 50}
	q := model.TrainingQuestion{CorrectAction: model.ActionRaise, CorrectProbabilities: d}

	src := &scriptedSource{floats: []float64{0.9}}
	v := Judge(src, q, model.ActionRaise, model.JudgeProbabilistic, PolicyResample)
	if v.IsCorrect || v.CorrectAction != model.ActionFold {
		t.Fatalf("resample: expected fresh FOLD draw, got %+v", v)
	}

	frozen := Judge(&scriptedSource{}, q, model.ActionRaise, model.JudgeProbabilistic, PolicyFreeze)
	if !frozen.IsCorrect || frozen.CorrectAction != model.ActionRaise {
		t.Fatalf("freeze: expected build-time RAISE, got %+v", frozen)
	}
}

func TestParseAction(t *testing.T) {
	for in, want := range map[string]model.Action{"raise": model.ActionRaise, "C": model.ActionCall, " fold ": model.ActionFold} {
		got, err := ParseAction(in)
		if err != nil || got != want {
			t.Fatalf("ParseAction(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseAction("limp"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestParseModeAndPolicy(t *testing.T) {
	if m, err := ParseMode("probabilistic"); err != nil || m != model.JudgeProbabilistic {
		t.Fatalf("unexpected mode %s, %v", m, err)
	}
	if _, err := ParseMode("gto"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if p, err := ParsePolicy("Freeze"); err != nil || p != PolicyFreeze {
		t.Fatalf("unexpected policy %s, %v", p, err)
	}
	if _, err := ParsePolicy("sometimes"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
