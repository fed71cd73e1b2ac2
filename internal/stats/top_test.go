package stats

import (
	"testing"

	"github.com/verte-zerg/preflop/internal/model"
)

func TestTopHandsByVolume(t *testing.T) {
	hands := []model.HandStats{
		{Hand: "KK", TotalQuestions: 4},
		{Hand: "AA", TotalQuestions: 4},
		{Hand: "72o", TotalQuestions: 1},
	}
	top := TopHandsByVolume(hands, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 hands, got %d", len(top))
	}
	if top[0].Hand != "AA" || top[1].Hand != "KK" {
		t.Fatalf("unexpected order: %+v", top)
	}
	if hands[0].Hand != "KK" {
		t.Fatalf("input must not be reordered")
	}
	if TopHandsByVolume(hands, 0) != nil {
		t.Fatalf("expected nil for n=0")
	}
}
