package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/preflop/internal/model"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

var suitSymbols = map[byte]rune{
	'c': '♣',
	'd': '♦',
	'h': '♥',
	's': '♠',
}

// buildCardRunes renders a dealt combo like "AhKd" as "A♥ K♦".
// Anything that is not a pair of cards is shown as plain text.
func buildCardRunes(dealt string) []styledRune {
	if len(dealt) != 4 {
		return styleText(dealt, cardStyle)
	}
	out := make([]styledRune, 0, 5)
	for i := 0; i < 4; i += 2 {
		if i > 0 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
		rank, suit := dealt[i], dealt[i+1]
		symbol, ok := suitSymbols[suit]
		if !ok {
			return styleText(dealt, cardStyle)
		}
		style := cardStyle
		if suit == 'h' || suit == 'd' {
			style = redSuitStyle
		}
		out = append(out,
			styledRune{s: style.Render(string(rank)), width: 1},
			styledRune{s: style.Render(string(symbol)), width: runewidth.RuneWidth(symbol)},
		)
	}
	return out
}

func styleText(text string, style lipgloss.Style) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

// feedbackText describes the last judged answer.
func feedbackText(result model.QuestionResult, d model.HandDecision) string {
	verdict := "Correct"
	if !result.IsCorrect {
		verdict = "Wrong"
	}
	return fmt.Sprintf("%s: %s %s, expected %s (raise %d%% call %d%% fold %d%%)",
		verdict, result.Hand, strings.ToLower(string(result.UserAnswer)),
		strings.ToLower(string(result.CorrectAction)), d.Raise, d.Call, d.Fold)
}

func buildFeedbackRunes(result model.QuestionResult, d model.HandDecision) []styledRune {
	style := correctStyle
	if !result.IsCorrect {
		style = incorrectStyle
	}
	return styleText(feedbackText(result, d), style)
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
			}
			lineWidth = lineWidthOf(line)
			lastSpaceIdx = lastSpaceIndex(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
