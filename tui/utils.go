package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bassamadnan/triage/triage"
)

// cardHeight is the number of terminal lines one email card occupies.
const cardHeight = 8

// truncate shortens s to maxWidth display cells, adding "..." if truncated.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// singleLine folds whitespace so body previews stay on their rows.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// wrapLines wraps s to width and returns at most n lines.
func wrapLines(s string, width, n int) []string {
	if width <= 0 || n <= 0 {
		return nil
	}
	lines := strings.Split(runewidth.Wrap(s, width), "\n")
	if len(lines) > n {
		lines = lines[:n]
		lines[n-1] = truncate(lines[n-1]+"...", width)
	}
	return lines
}

// formatSender drops the address part of "Name <addr>".
func formatSender(from string) string {
	if idx := strings.Index(from, "<"); idx > 0 {
		from = strings.TrimSpace(from[:idx])
	}
	if from == "" {
		return "(Unknown Sender)"
	}
	return strings.Trim(from, `"`)
}

// renderCard draws one email card. contentWidth is the width of the text
// between the vertical bars, excluding the one-space padding on each side.
func renderCard(card triage.Card, focused bool, contentWidth int, now time.Time) string {
	boxCharStyle, subjectStyle, secondaryTextStyle := NormalBoxCharStyle, NormalSubjectStyle, NormalSecondaryTextStyle
	if focused {
		boxCharStyle, subjectStyle, secondaryTextStyle = SelectedBoxCharStyle, SelectedSubjectStyle, SelectedSecondaryTextStyle
	}
	if contentWidth < 10 {
		contentWidth = 10
	}

	checkbox := "[ ] "
	if card.Selected {
		checkbox = CheckedStyle.Render("[x]") + " "
	}
	age := triage.DateAge(card.Received, now)
	subjectWidth := contentWidth - 4 - runewidth.StringWidth(age) - 1
	subjectLine := checkbox + subjectStyle.Render(pad(card.Subject, subjectWidth)) + " " + secondaryTextStyle.Render(age)

	fromLine := secondaryTextStyle.Render(pad(fmt.Sprintf("From: %s  Date: %s", formatSender(card.Sender), card.Date), contentWidth))

	preview := wrapLines(singleLine(card.Preview), contentWidth, 2)
	for len(preview) < 2 {
		preview = append(preview, "")
	}
	bodyLines := make([]string, len(preview))
	for i, l := range preview {
		bodyLines[i] = pad(l, contentWidth)
	}

	sentimentLine := secondaryTextStyle.Render(pad(card.Sentiment, contentWidth))

	chips := make([]string, 0, len(card.Keywords))
	used := 0
	for _, kw := range card.Keywords {
		w := runewidth.StringWidth(kw) + 2
		if used+w > contentWidth {
			break
		}
		chips = append(chips, ChipStyle.Render(" "+kw+" "))
		used += w + 1
	}
	chipLine := strings.Join(chips, " ")
	if gap := contentWidth - lipgloss.Width(chipLine); gap > 0 {
		chipLine += strings.Repeat(" ", gap)
	}

	horizontalBar := boxCharStyle.Render(strings.Repeat(BoxHorizontal, contentWidth+2))
	side := boxCharStyle.Render(BoxVertical)
	row := func(s string) string { return side + " " + s + " " + side }

	lines := []string{
		boxCharStyle.Render(BoxTopLeft) + horizontalBar + boxCharStyle.Render(BoxTopRight),
		row(subjectLine),
		row(fromLine),
		row(bodyLines[0]),
		row(bodyLines[1]),
		row(sentimentLine),
		row(chipLine),
		boxCharStyle.Render(BoxBottomLeft) + horizontalBar + boxCharStyle.Render(BoxBottomRight),
	}
	return strings.Join(lines, "\n")
}
