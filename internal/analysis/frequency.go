// Package analysis computes ball appearance frequencies over archived draws
// and derives the inverse-frequency weights used for sampling. Counts are
// float64 so that plain and recency-weighted tallies share one representation.
package analysis

import (
	"sort"

	"github.com/rewired-gh/lottoracle/internal/models"
)

// Count maps each ball value of a range to its (possibly weighted) tally.
// A table built by Tally or TallyWeighted has one entry per ball in the
// range, including balls that never appeared.
type Count map[int]float64

// Picker selects which balls of a draw feed a tally.
type Picker func(models.Draw) []int

// RedPicker feeds the red balls of a draw.
func RedPicker(d models.Draw) []int {
	return d.RedBalls
}

// BluePicker feeds the blue ball of a draw.
func BluePicker(d models.Draw) []int {
	return []int{d.BlueBall}
}

// Tally counts how often each ball in r appears across the draws.
// Every ball of the range is present in the result, zero when it never
// appeared. Balls outside the range are skipped. An empty draw list yields
// an all-zero table.
func Tally(draws []models.Draw, r models.Range, pick Picker) Count {
	counts := make(Count, r.Size())
	for ball := r.Lo; ball <= r.Hi; ball++ {
		counts[ball] = 0
	}
	for _, d := range draws {
		for _, ball := range pick(d) {
			if !r.Contains(ball) {
				continue
			}
			counts[ball]++
		}
	}
	return counts
}

// TallyWeighted counts like Tally but weights the last recentWindow draws by
// recentWeight per appearance while earlier draws contribute 1. A window of
// zero or less leaves every draw at weight 1; a window covering the whole
// list weights every draw. recentWeight == 1 degenerates to a plain Tally.
func TallyWeighted(draws []models.Draw, r models.Range, pick Picker, recentWindow int, recentWeight float64) Count {
	if recentWindow < 0 {
		recentWindow = 0
	}
	if recentWindow > len(draws) {
		recentWindow = len(draws)
	}
	split := len(draws) - recentWindow

	counts := Tally(draws[:split], r, pick)
	for _, d := range draws[split:] {
		for _, ball := range pick(d) {
			if !r.Contains(ball) {
				continue
			}
			counts[ball] += recentWeight
		}
	}
	return counts
}

// InverseWeights turns a count table into sampling weights that favor cold
// balls: weight = max(count) - count + 1. The hottest ball gets weight 1 and
// every weight is at least 1, so no ball is ever unreachable. An empty table
// yields an empty map.
func InverseWeights(counts Count) map[int]float64 {
	weights := make(map[int]float64, len(counts))
	if len(counts) == 0 {
		return weights
	}
	max := 0.0
	first := true
	for _, c := range counts {
		if first || c > max {
			max = c
			first = false
		}
	}
	for ball, c := range counts {
		weights[ball] = max - c + 1
	}
	return weights
}

// MinCount returns the balls that appeared least often, ascending, together
// with that minimum tally. An empty table yields nil and 0.
func MinCount(counts Count) ([]int, float64) {
	if len(counts) == 0 {
		return nil, 0
	}
	min := 0.0
	first := true
	for _, c := range counts {
		if first || c < min {
			min = c
			first = false
		}
	}
	var balls []int
	for ball, c := range counts {
		if c == min {
			balls = append(balls, ball)
		}
	}
	sort.Ints(balls)
	return balls, min
}

// BallCount pairs a ball with its tally for ranked listings.
type BallCount struct {
	Ball  int
	Count float64
}

// Ranked lists the table coldest first; balls with equal counts order by value.
func Ranked(counts Count) []BallCount {
	ranked := make([]BallCount, 0, len(counts))
	for ball, c := range counts {
		ranked = append(ranked, BallCount{Ball: ball, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count < ranked[j].Count
		}
		return ranked[i].Ball < ranked[j].Ball
	})
	return ranked
}
