package analysis

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/rewired-gh/lottoracle/internal/models"
)

func makeDraw(issue string, reds []int, blue int) models.Draw {
	return models.Draw{Issue: issue, RedBalls: reds, BlueBall: blue}
}

func sumCounts(c Count) float64 {
	total := 0.0
	for _, v := range c {
		total += v
	}
	return total
}

func TestTally(t *testing.T) {
	r := models.Range{Lo: 1, Hi: 10}
	draws := []models.Draw{
		makeDraw("1", []int{1, 2, 3}, 5),
		makeDraw("2", []int{1, 2, 4}, 5),
		makeDraw("3", []int{1, 5, 6}, 5),
	}

	counts := Tally(draws, r, RedPicker)

	if len(counts) != r.Size() {
		t.Fatalf("expected %d buckets, got %d", r.Size(), len(counts))
	}
	want := map[int]float64{1: 3, 2: 2, 3: 1, 4: 1, 5: 1, 6: 1, 7: 0, 8: 0, 9: 0, 10: 0}
	for ball, c := range want {
		if counts[ball] != c {
			t.Errorf("count(%d) = %g, want %g", ball, counts[ball], c)
		}
	}
	if got := sumCounts(counts); got != float64(len(draws)*3) {
		t.Errorf("total count = %g, want %d", got, len(draws)*3)
	}
}

func TestTallyEmpty(t *testing.T) {
	r := models.Range{Lo: 1, Hi: 16}
	counts := Tally(nil, r, BluePicker)

	if len(counts) != 16 {
		t.Fatalf("expected 16 buckets, got %d", len(counts))
	}
	for ball, c := range counts {
		if c != 0 {
			t.Errorf("count(%d) = %g, want 0", ball, c)
		}
	}
}

func TestTallySkipsOutOfRange(t *testing.T) {
	r := models.Range{Lo: 1, Hi: 5}
	draws := []models.Draw{
		makeDraw("1", []int{1, 2, 99}, 1),
	}

	counts := Tally(draws, r, RedPicker)

	if got := sumCounts(counts); got != 2 {
		t.Errorf("total count = %g, want 2 (out-of-range ball skipped)", got)
	}
	if _, ok := counts[99]; ok {
		t.Error("out-of-range ball must not gain a bucket")
	}
}

func TestTallyWeighted(t *testing.T) {
	r := models.Range{Lo: 1, Hi: 10}
	draws := []models.Draw{
		makeDraw("1", []int{1, 2, 3}, 5), // early
		makeDraw("2", []int{4, 5, 6}, 5), // early
		makeDraw("3", []int{1, 7, 8}, 5), // recent
	}

	counts := TallyWeighted(draws, r, RedPicker, 1, 3.0)

	// Ball 1 appears once early and once recent: 1 + 3.
	if counts[1] != 4 {
		t.Errorf("count(1) = %g, want 4", counts[1])
	}
	if counts[2] != 1 {
		t.Errorf("count(2) = %g, want 1", counts[2])
	}
	if counts[7] != 3 {
		t.Errorf("count(7) = %g, want 3", counts[7])
	}
	// Two early draws at 3 balls each plus one recent draw at 3 balls x3.
	if got := sumCounts(counts); got != 2*3+1*3*3 {
		t.Errorf("total count = %g, want %d", got, 2*3+1*3*3)
	}
}

func TestTallyWeightedDegeneratesToTally(t *testing.T) {
	r := models.Range{Lo: 1, Hi: 16}
	draws := []models.Draw{
		makeDraw("1", []int{1, 2, 3}, 7),
		makeDraw("2", []int{4, 5, 6}, 7),
		makeDraw("3", []int{7, 8, 9}, 12),
	}

	plain := Tally(draws, r, BluePicker)
	weighted := TallyWeighted(draws, r, BluePicker, 2, 1.0)

	if !reflect.DeepEqual(plain, weighted) {
		t.Errorf("recentWeight=1 should equal plain tally: %v vs %v", plain, weighted)
	}
}

func TestTallyWeightedWindowClamp(t *testing.T) {
	r := models.Range{Lo: 1, Hi: 10}
	draws := []models.Draw{
		makeDraw("1", []int{1, 2, 3}, 5),
		makeDraw("2", []int{4, 5, 6}, 5),
	}

	// Window longer than the archive weights everything.
	all := TallyWeighted(draws, r, RedPicker, 100, 2.0)
	if got := sumCounts(all); got != 12 {
		t.Errorf("total with oversized window = %g, want 12", got)
	}

	// Window of zero weights nothing.
	none := TallyWeighted(draws, r, RedPicker, 0, 2.0)
	if got := sumCounts(none); got != 6 {
		t.Errorf("total with zero window = %g, want 6", got)
	}
}

func TestInverseWeights(t *testing.T) {
	counts := Count{1: 5, 2: 3, 3: 0, 4: 5}

	weights := InverseWeights(counts)

	want := map[int]float64{1: 1, 2: 3, 3: 6, 4: 1}
	if !reflect.DeepEqual(weights, want) {
		t.Errorf("InverseWeights() = %v, want %v", weights, want)
	}
	for ball, w := range weights {
		if w < 1 {
			t.Errorf("weight(%d) = %g, want >= 1", ball, w)
		}
	}
}

func TestInverseWeightsUniform(t *testing.T) {
	counts := Count{1: 7, 2: 7, 3: 7}

	weights := InverseWeights(counts)

	for ball, w := range weights {
		if w != 1 {
			t.Errorf("weight(%d) = %g, want 1 for equal counts", ball, w)
		}
	}
}

func TestInverseWeightsEmpty(t *testing.T) {
	weights := InverseWeights(Count{})
	if len(weights) != 0 {
		t.Errorf("expected empty weight map, got %v", weights)
	}
}

func TestMinCount(t *testing.T) {
	counts := Count{1: 4, 2: 1, 3: 9, 4: 1}

	balls, min := MinCount(counts)

	if !reflect.DeepEqual(balls, []int{2, 4}) {
		t.Errorf("MinCount balls = %v, want [2 4]", balls)
	}
	if min != 1 {
		t.Errorf("MinCount min = %g, want 1", min)
	}

	balls, min = MinCount(Count{})
	if balls != nil || min != 0 {
		t.Errorf("MinCount on empty table = %v, %g, want nil, 0", balls, min)
	}
}

func TestRanked(t *testing.T) {
	counts := Count{1: 2, 2: 0, 3: 2, 4: 1}

	ranked := Ranked(counts)

	want := []BallCount{{2, 0}, {4, 1}, {1, 2}, {3, 2}}
	if !reflect.DeepEqual(ranked, want) {
		t.Errorf("Ranked() = %v, want %v", ranked, want)
	}
}

func TestTallyWeightedFractionalSum(t *testing.T) {
	r := models.Range{Lo: 1, Hi: 10}
	draws := []models.Draw{
		makeDraw("1", []int{1, 2, 3}, 5),
		makeDraw("2", []int{4, 5, 6}, 5),
	}

	counts := TallyWeighted(draws, r, RedPicker, 1, 2.5)
	if got, want := sumCounts(counts), 3+3*2.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("total count = %g, want %g", got, want)
	}
}

func TestTallyRepeatedDraws(t *testing.T) {
	draws := make([]models.Draw, 10)
	for i := range draws {
		draws[i] = makeDraw("x", []int{1, 2, 3, 4, 5, 6}, 7)
	}

	counts := Tally(draws, models.Range{Lo: 1, Hi: 33}, RedPicker)
	for ball := 1; ball <= 6; ball++ {
		if counts[ball] != 10 {
			t.Errorf("count(%d) = %g, want 10", ball, counts[ball])
		}
	}
	for ball := 7; ball <= 33; ball++ {
		if counts[ball] != 0 {
			t.Errorf("count(%d) = %g, want 0", ball, counts[ball])
		}
	}

	blues := Tally(draws, models.Range{Lo: 1, Hi: 16}, BluePicker)
	if blues[7] != 10 {
		t.Errorf("blue count(7) = %g, want 10", blues[7])
	}
}

func TestTallyIdempotent(t *testing.T) {
	r := models.Range{Lo: 1, Hi: 10}
	draws := []models.Draw{
		makeDraw("1", []int{1, 2, 3}, 5),
		makeDraw("2", []int{4, 5, 6}, 9),
	}

	first := Tally(draws, r, RedPicker)
	second := Tally(draws, r, RedPicker)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated tally differs: %v vs %v", first, second)
	}
}

func TestFormatReport(t *testing.T) {
	reds := Count{1: 0, 2: 3, 3: 1}
	blues := Count{1: 2, 2: 0}

	got := FormatReport(reds, blues, 3)

	for _, want := range []string{
		"Draws analyzed: 3",
		"Coldest reds: 01 (0)",
		"Coldest blues: 02 (0)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestFormatWeightedReport(t *testing.T) {
	reds := Count{1: 0, 2: 3}
	blues := Count{1: 2, 2: 0}

	got := FormatWeightedReport(reds, blues, 3, 160, 3.0)

	if !strings.Contains(got, "Recent window: last 160 draws at weight 3") {
		t.Errorf("weighted report missing window line:\n%s", got)
	}
}
