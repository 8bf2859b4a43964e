// Package sampler draws ball values from a weighted pool using roulette-wheel
// selection without replacement. Selection walks the pool in ascending ball
// order and picks the first ball whose cumulative weight reaches the spin, so
// results are reproducible for a given random source.
package sampler

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rewired-gh/lottoracle/internal/models"
)

// ErrBadDrawCount is returned when the requested number of balls cannot be
// drawn from the pool.
var ErrBadDrawCount = errors.New("draw count must be between 1 and the pool size")

// Sampler draws balls using the supplied random source. It is not safe for
// concurrent use; callers that share one across goroutines must serialize
// access.
type Sampler struct {
	rng *rand.Rand
}

// New creates a sampler around rng. A nil rng gets a time-seeded source;
// tests pass a seeded one for reproducible sequences.
func New(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{rng: rng}
}

// Draw picks k distinct balls from the range r without replacement, favoring
// balls with higher weights. Balls missing from weights count as weight 1 and
// a nil map is the uniform distribution. The result is ascending. k outside
// 1..pool size is an error; k equal to the pool size returns the whole pool.
func (s *Sampler) Draw(weights map[int]float64, r models.Range, k int) ([]int, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ball range: %w", err)
	}
	pool := r.Size()
	if k < 1 || k > pool {
		return nil, fmt.Errorf("%w: got %d with pool size %d", ErrBadDrawCount, k, pool)
	}

	// Balls are tracked by index so the ascending walk order never changes
	// as picks accumulate.
	taken := make([]bool, pool)
	picks := make([]int, 0, k)
	for len(picks) < k {
		chosen, last := s.spin(weights, r, taken)
		if chosen < 0 {
			// Floating-point residue kept the walk from reaching the spin;
			// fall back to the last ball the walk saw.
			chosen = last
		}
		taken[chosen] = true
		picks = append(picks, r.Lo+chosen)
	}

	sort.Ints(picks)
	return picks, nil
}

// SampleOne picks a single ball from the range r, favoring higher weights.
// When floating-point residue exhausts the walk, it falls back to the low
// bound of the range.
func (s *Sampler) SampleOne(weights map[int]float64, r models.Range) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, fmt.Errorf("invalid ball range: %w", err)
	}

	chosen, _ := s.spin(weights, r, nil)
	if chosen < 0 {
		return r.Lo, nil
	}
	return r.Lo + chosen, nil
}

// spin runs one roulette round over the untaken balls of r. It returns the
// chosen index, or -1 with the index of the last untaken ball when the
// cumulative walk never reached the spin value. A nil taken slice means the
// whole pool is available.
func (s *Sampler) spin(weights map[int]float64, r models.Range, taken []bool) (chosen, last int) {
	total := 0.0
	for i := 0; i < r.Size(); i++ {
		if taken != nil && taken[i] {
			continue
		}
		total += weightOf(weights, r.Lo+i)
	}

	x := s.rng.Float64() * total
	acc := 0.0
	chosen, last = -1, -1
	for i := 0; i < r.Size(); i++ {
		if taken != nil && taken[i] {
			continue
		}
		last = i
		acc += weightOf(weights, r.Lo+i)
		if acc >= x {
			chosen = i
			break
		}
	}
	return chosen, last
}

// weightOf looks up a ball's weight; balls without an entry weigh 1.
func weightOf(weights map[int]float64, ball int) float64 {
	if weights == nil {
		return 1
	}
	w, ok := weights[ball]
	if !ok {
		return 1
	}
	return w
}
