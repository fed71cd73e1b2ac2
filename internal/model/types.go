// Package model defines shared data structures.
package model

import "time"

// HandCode is a 169-grid label ("AA", "AKs", "AKo") or a dealt two-card code ("AhKh").
type HandCode = string

// Action is a preflop decision.
type Action string

// Actions a hand can take.
const (
	ActionRaise Action = "RAISE"
	ActionCall  Action = "CALL"
	ActionFold  Action = "FOLD"
)

// JudgeMode selects how answers are judged.
type JudgeMode string

// Judge modes.
const (
	JudgeFrequency     JudgeMode = "FREQUENCY"
	JudgeProbabilistic JudgeMode = "PROBABILISTIC"
)

// Position is a seat at a 6 or 8-max table.
type Position string

// Positions.
const (
	PositionUTG  Position = "UTG"
	PositionUTG1 Position = "UTG+1"
	PositionMP   Position = "MP"
	PositionHJ   Position = "HJ"
	PositionCO   Position = "CO"
	PositionBTN  Position = "BTN"
	PositionSB   Position = "SB"
	PositionBB   Position = "BB"
)

// ScenarioType is the kind of preflop spot.
type ScenarioType string

// Scenario types.
const (
	ScenarioOpen     ScenarioType = "OPEN"
	ScenarioThreeBet ScenarioType = "THREE_BET"
	ScenarioFourBet  ScenarioType = "FOUR_BET"
)

// HandDecision holds action weights for one hand, nominally summing to 100.
type HandDecision struct {
	Raise int `json:"raise" yaml:"raise"`
	Call  int `json:"call" yaml:"call"`
	Fold  int `json:"fold" yaml:"fold"`
}

// Total returns the sum of all weights.
func (d HandDecision) Total() int {
	return d.Raise + d.Call + d.Fold
}

// Weight returns the weight of a single action.
func (d HandDecision) Weight(a Action) int {
	switch a {
	case ActionRaise:
		return d.Raise
	case ActionCall:
		return d.Call
	case ActionFold:
		return d.Fold
	default:
		return 0
	}
}

// ForcedFold is used for enabled hands without an explicit decision.
var ForcedFold = HandDecision{Fold: 100}

// RangeScenario is a named decision context with its hand table.
type RangeScenario struct {
	ID               string                    `json:"id" yaml:"id"`
	Name             string                    `json:"name" yaml:"name"`
	HeroPosition     Position                  `json:"heroPosition" yaml:"hero-position"`
	VillainPosition  Position                  `json:"villainPosition,omitempty" yaml:"villain-position,omitempty"`
	StackSizeBB      int                       `json:"stackSizeBB" yaml:"stack-bb"`
	ScenarioType     ScenarioType              `json:"scenarioType" yaml:"type"`
	Hands            map[HandCode]HandDecision `json:"hands" yaml:"hands"`
	EnabledHandCodes []HandCode                `json:"enabledHandCodes" yaml:"enabled,omitempty"`
}

// RangeSetMeta describes a range set.
type RangeSetMeta struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Version     int       `json:"version" yaml:"version"`
	GameType    string    `json:"gameType" yaml:"game-type"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created-at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated-at"`
}

// RangeSet groups scenarios with optional tier categories and a strength ranking.
type RangeSet struct {
	Meta      RangeSetMeta    `json:"meta" yaml:"meta"`
	Scenarios []RangeScenario `json:"scenarios" yaml:"scenarios"`
	// Categories maps position -> tier -> hands.
	Categories  map[Position]map[string][]HandCode `json:"categories,omitempty" yaml:"categories,omitempty"`
	RankedHands []HandCode                         `json:"rankedHands,omitempty" yaml:"ranked-hands,omitempty"`
}

// AppSettings is the persisted user selection.
type AppSettings struct {
	JudgeMode        JudgeMode  `json:"judgeMode"`
	ActiveRangeSetID string     `json:"activeRangeSetId,omitempty"`
	ActiveScenarioID string     `json:"activeScenarioId,omitempty"`
	UsePresetScopeID string     `json:"usePresetScopeId,omitempty"`
	CustomScopeHands []HandCode `json:"customScopeHands"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() AppSettings {
	return AppSettings{
		JudgeMode:        JudgeFrequency,
		CustomScopeHands: []HandCode{},
	}
}

// TrainingQuestion is a single frozen quiz item.
type TrainingQuestion struct {
	ID                   string       `json:"id"`
	Hand                 HandCode     `json:"hand"`
	CorrectAction        Action       `json:"correctAction"`
	CorrectProbabilities HandDecision `json:"correctProbabilities"`
}

// QuestionResult records one judged answer.
type QuestionResult struct {
	QuestionID    string    `json:"questionId"`
	Hand          HandCode  `json:"hand"`
	UserAnswer    Action    `json:"userAnswer"`
	IsCorrect     bool      `json:"isCorrect"`
	CorrectAction Action    `json:"correctAction"`
	ScenarioID    string    `json:"scenarioId"`
	RangeSetID    string    `json:"rangeSetId"`
	Timestamp     time.Time `json:"timestamp"`
}

// TrainingSession is a quiz run owned by the caller.
type TrainingSession struct {
	ID            string           `json:"id"`
	StartedAt     time.Time        `json:"startedAt"`
	FinishedAt    *time.Time       `json:"finishedAt,omitempty"`
	RangeSetID    string           `json:"rangeSetId"`
	ScenarioID    string           `json:"scenarioId"`
	QuestionCount int              `json:"questionCount"`
	Results       []QuestionResult `json:"results"`
}

// Correct counts correct results.
func (s *TrainingSession) Correct() int {
	n := 0
	for _, r := range s.Results {
		if r.IsCorrect {
			n++
		}
	}
	return n
}

// Accuracy returns the share of correct answers, 0 when nothing was answered.
func (s *TrainingSession) Accuracy() float64 {
	if len(s.Results) == 0 {
		return 0
	}
	return float64(s.Correct()) / float64(len(s.Results))
}

// GlobalStats aggregates every session.
type GlobalStats struct {
	TotalSessions  int
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
}

// ScenarioStats aggregates sessions of one scenario.
type ScenarioStats struct {
	ScenarioID     string
	ScenarioName   string
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
}

// HandStats aggregates answers for one literal hand code.
type HandStats struct {
	Hand           HandCode
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
}

// CategoryStats aggregates answers for a caller-defined category key.
type CategoryStats struct {
	CategoryKey    string
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
}

// RecentSessionSummary summarizes a session for reporting.
type RecentSessionSummary struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    *time.Time
	ScenarioID    string
	ScenarioName  string
	Accuracy      float64
	QuestionCount int
}

// StatsSnapshot is derived from the full session history.
type StatsSnapshot struct {
	Global         GlobalStats
	ByScenario     []ScenarioStats
	ByHand         []HandStats
	RecentSessions []RecentSessionSummary
}

// GrowthMetrics compares the latest session with the preceding ones.
type GrowthMetrics struct {
	HasEnoughData    bool
	LatestAccuracy   float64
	BaselineAccuracy float64
	Diff             float64
	LatestQuestions  int
	BaselineSessions int
}

// Hand-strength tiers used by range set categories, strongest first.
const (
	TierPremium     = "premium"
	TierStrong      = "strong"
	TierMedium      = "medium"
	TierSpeculative = "speculative"
)

// Tiers lists tiers in display order.
var Tiers = []string{TierPremium, TierStrong, TierMedium, TierSpeculative}

// PositionOrder lists positions in table order for reports.
var PositionOrder = []Position{PositionUTG, PositionUTG1, PositionMP, PositionHJ, PositionCO, PositionBTN, PositionSB, PositionBB}
