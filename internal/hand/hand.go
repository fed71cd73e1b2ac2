// Package hand provides poker starting-hand codes and conversions.
package hand

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paulhankin/poker"

	"github.com/verte-zerg/preflop/internal/generator"
	"github.com/verte-zerg/preflop/internal/model"
)

// Ranks in descending strength.
const Ranks = "AKQJT98765432"

// Suits in paulhankin/poker order: club, diamond, heart, spade.
const Suits = "cdhs"

// Count is the number of distinct starting hands on the grid.
const Count = 169

var (
	gridOrder = buildGridOrder()
	gridIndex = buildGridIndex(gridOrder)
)

func buildGridOrder() []model.HandCode {
	pairs := make([]model.HandCode, 0, len(Ranks))
	suited := make([]model.HandCode, 0, 78)
	offsuit := make([]model.HandCode, 0, 78)
	for i := 0; i < len(Ranks); i++ {
		pairs = append(pairs, string([]byte{Ranks[i], Ranks[i]}))
		for j := i + 1; j < len(Ranks); j++ {
			suited = append(suited, string([]byte{Ranks[i], Ranks[j], 's'}))
			offsuit = append(offsuit, string([]byte{Ranks[i], Ranks[j], 'o'}))
		}
	}
	out := make([]model.HandCode, 0, Count)
	out = append(out, pairs...)
	out = append(out, suited...)
	return append(out, offsuit...)
}

func buildGridIndex(order []model.HandCode) map[model.HandCode]int {
	idx := make(map[model.HandCode]int, len(order))
	for i, h := range order {
		idx[h] = i
	}
	return idx
}

// GridOrder returns all 169 grid codes: pairs, then suited, then offsuit,
// each by descending rank.
func GridOrder() []model.HandCode {
	out := make([]model.HandCode, len(gridOrder))
	copy(out, gridOrder)
	return out
}

// IsGrid reports whether code is one of the 169 canonical grid codes.
func IsGrid(code model.HandCode) bool {
	_, ok := gridIndex[code]
	return ok
}

// SortCanonical sorts codes in grid order. Unknown codes go last, by string.
func SortCanonical(codes []model.HandCode) {
	sort.SliceStable(codes, func(i, j int) bool {
		ai, aok := gridIndex[codes[i]]
		bi, bok := gridIndex[codes[j]]
		switch {
		case aok && bok:
			return ai < bi
		case aok != bok:
			return aok
		default:
			return codes[i] < codes[j]
		}
	})
}

func rankIndex(b byte) int {
	return strings.IndexByte(Ranks, upper(b))
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// pokerRank maps a rank index in Ranks to paulhankin/poker's 1-13 scale (ace = 1).
func pokerRank(idx int) poker.Rank {
	if idx == 0 {
		return poker.Rank(1)
	}
	return poker.Rank(14 - idx)
}

// parseCard reads a card such as "Ah" through poker's card names ("HA").
func parseCard(rankByte, suitByte byte) (poker.Card, error) {
	c, ok := poker.NameToCard[string([]byte{upper(suitByte), upper(rankByte)})]
	if !ok {
		return 0, fmt.Errorf("invalid card %q", string([]byte{rankByte, suitByte}))
	}
	return c, nil
}

// CardString formats a card rank first with a lowercase suit, e.g. "Ah".
func CardString(c poker.Card) string {
	return c.Rank().String() + strings.ToLower(c.Suit().String())
}

func cardRank(c poker.Card) byte {
	return c.Rank().String()[0]
}

// ToGrid converts a hand code to its 169-grid form. Grid codes are normalized
// (higher rank first); dealt codes like "AhKh" become "AKs".
func ToGrid(code model.HandCode) (model.HandCode, bool) {
	raw := strings.TrimSpace(code)
	switch len(raw) {
	case 2, 3:
		return normalizeGrid(raw)
	case 4:
		return dealtToGrid(raw)
	}
	return "", false
}

func normalizeGrid(raw string) (model.HandCode, bool) {
	r1, r2 := rankIndex(raw[0]), rankIndex(raw[1])
	if r1 < 0 || r2 < 0 {
		return "", false
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if len(raw) == 2 {
		if r1 != r2 {
			return "", false
		}
		return string([]byte{Ranks[r1], Ranks[r2]}), true
	}
	suffix := lower(raw[2])
	if r1 == r2 || (suffix != 's' && suffix != 'o') {
		return "", false
	}
	return string([]byte{Ranks[r1], Ranks[r2], suffix}), true
}

func dealtToGrid(raw string) (model.HandCode, bool) {
	c1, err := parseCard(raw[0], raw[1])
	if err != nil {
		return "", false
	}
	c2, err := parseCard(raw[2], raw[3])
	if err != nil || c1 == c2 {
		return "", false
	}
	if c1.Rank() == c2.Rank() {
		return string([]byte{cardRank(c1), cardRank(c2)}), true
	}
	if c1.RawRank() < c2.RawRank() {
		c1, c2 = c2, c1
	}
	suffix := byte('o')
	if c1.Suit() == c2.Suit() {
		suffix = 's'
	}
	return string([]byte{cardRank(c1), cardRank(c2), suffix}), true
}

// DealCards returns a concrete two-card combo for a grid code. Suited codes
// share a suit; pairs and offsuit codes never do.
func DealCards(code model.HandCode, rnd generator.Source) ([2]poker.Card, error) {
	var cards [2]poker.Card
	grid, ok := ToGrid(code)
	if !ok {
		return cards, fmt.Errorf("invalid hand code %q", code)
	}
	s1 := rnd.Intn(len(Suits))
	s2 := s1
	if len(grid) == 2 || grid[2] == 'o' {
		s2 = (s1 + 1 + rnd.Intn(len(Suits)-1)) % len(Suits)
	}
	var err error
	if cards[0], err = poker.MakeCard(poker.Suit(s1), pokerRank(rankIndex(grid[0]))); err != nil {
		return cards, fmt.Errorf("failed to deal %s: %w", grid, err)
	}
	if cards[1], err = poker.MakeCard(poker.Suit(s2), pokerRank(rankIndex(grid[1]))); err != nil {
		return cards, fmt.Errorf("failed to deal %s: %w", grid, err)
	}
	return cards, nil
}

// Deal returns DealCards formatted as a string, e.g. "AKs" -> "AhKh".
func Deal(code model.HandCode, rnd generator.Source) (string, error) {
	cards, err := DealCards(code, rnd)
	if err != nil {
		return "", err
	}
	return CardString(cards[0]) + CardString(cards[1]), nil
}

// ChenScore rates a grid hand with Bill Chen's formula, without final rounding.
func ChenScore(code model.HandCode) (float64, bool) {
	grid, ok := ToGrid(code)
	if !ok {
		return 0, false
	}
	hi, lo := rankIndex(grid[0]), rankIndex(grid[1])
	score := chenCardPoints(hi)
	if hi == lo {
		return math.Max(score*2, 5), true
	}
	if grid[2] == 's' {
		score += 2
	}
	gap := lo - hi - 1
	switch {
	case gap == 1:
		score--
	case gap == 2:
		score -= 2
	case gap == 3:
		score -= 4
	case gap >= 4:
		score -= 5
	}
	// Connected or one-gapped hands below a queen.
	if gap <= 1 && hi > rankIndex('Q') {
		score++
	}
	return score, true
}

func chenCardPoints(idx int) float64 {
	switch Ranks[idx] {
	case 'A':
		return 10
	case 'K':
		return 8
	case 'Q':
		return 7
	case 'J':
		return 6
	}
	// T=5 down to 2=1.
	return float64(14-idx) / 2
}

// RankedByStrength returns all grid hands ordered by Chen score, strongest first.
func RankedByStrength() []model.HandCode {
	out := GridOrder()
	scores := make(map[model.HandCode]float64, len(out))
	for _, h := range out {
		scores[h], _ = ChenScore(h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i]] > scores[out[j]]
	})
	return out
}
