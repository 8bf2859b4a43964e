package analysis

import (
	"fmt"
	"strings"
)

// Reds shown in the ranked listing; the full red table is long and the cold
// tail is what the picker cares about.
const reportRedLimit = 10

// FormatReport renders a plain frequency report over the given tables.
func FormatReport(reds, blues Count, totalDraws int) string {
	var b strings.Builder
	b.WriteString("Union Lotto frequency report\n")
	b.WriteString(strings.Repeat("-", 64) + "\n")
	fmt.Fprintf(&b, "Draws analyzed: %d\n", totalDraws)
	writeTables(&b, reds, blues)
	return b.String()
}

// FormatWeightedReport renders a recency-weighted frequency report, noting
// the window and weight that produced the tables.
func FormatWeightedReport(reds, blues Count, totalDraws, recentWindow int, recentWeight float64) string {
	var b strings.Builder
	b.WriteString("Union Lotto frequency report (recency-weighted)\n")
	b.WriteString(strings.Repeat("-", 64) + "\n")
	fmt.Fprintf(&b, "Draws analyzed: %d\n", totalDraws)
	fmt.Fprintf(&b, "Recent window: last %d draws at weight %g\n", recentWindow, recentWeight)
	writeTables(&b, reds, blues)
	return b.String()
}

func writeTables(b *strings.Builder, reds, blues Count) {
	redLimit := reportRedLimit
	if len(reds) < redLimit {
		redLimit = len(reds)
	}

	fmt.Fprintf(b, "\nRed balls (coldest %d of %d):\n", redLimit, len(reds))
	for _, bc := range Ranked(reds)[:redLimit] {
		fmt.Fprintf(b, "  %2d: %g\n", bc.Ball, bc.Count)
	}
	coldReds, minRed := MinCount(reds)
	fmt.Fprintf(b, "Coldest reds: %s (%g)\n", formatBallList(coldReds), minRed)

	fmt.Fprintf(b, "\nBlue balls (all %d, coldest first):\n", len(blues))
	for _, bc := range Ranked(blues) {
		fmt.Fprintf(b, "  %2d: %g\n", bc.Ball, bc.Count)
	}
	coldBlues, minBlue := MinCount(blues)
	fmt.Fprintf(b, "Coldest blues: %s (%g)\n", formatBallList(coldBlues), minBlue)
}

func formatBallList(balls []int) string {
	if len(balls) == 0 {
		return "none"
	}
	parts := make([]string, len(balls))
	for i, ball := range balls {
		parts[i] = fmt.Sprintf("%02d", ball)
	}
	return strings.Join(parts, " ")
}
