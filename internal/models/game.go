// Package models defines the core domain entities for the lottoracle application.
// These models describe the lottery game shape, archived draw results, and
// generated number predictions. All models include built-in validation to
// ensure data integrity throughout the application.
//
// Terminology (matching Union Lotto's own naming):
//   - Draw: one official drawing, identified by its issue number.
//   - Red balls: the primary numbers of a draw, picked without replacement.
//   - Blue ball: the secondary number, picked independently of the reds.
package models

import (
	"errors"
	"fmt"
)

// Range is an inclusive span of ball values, e.g. 1..33 for Union Lotto reds.
type Range struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Validate checks that the range bounds are usable.
func (r Range) Validate() error {
	if r.Lo < 1 {
		return errors.New("range low bound must be at least 1")
	}
	if r.Hi < r.Lo {
		return fmt.Errorf("range high bound %d must be >= low bound %d", r.Hi, r.Lo)
	}
	return nil
}

// Size returns the number of values in the range.
func (r Range) Size() int {
	return r.Hi - r.Lo + 1
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v int) bool {
	return v >= r.Lo && v <= r.Hi
}

// Game describes the shape of a lottery game: the red and blue ball ranges
// and how many red balls each draw picks.
type Game struct {
	RedLo    int `json:"red_lo"`
	RedHi    int `json:"red_hi"`
	RedCount int `json:"red_count"` // Red balls picked per draw
	BlueLo   int `json:"blue_lo"`
	BlueHi   int `json:"blue_hi"`
}

// DefaultGame returns the Union Lotto rules: 6 reds from 1..33, 1 blue from 1..16.
func DefaultGame() Game {
	return Game{RedLo: 1, RedHi: 33, RedCount: 6, BlueLo: 1, BlueHi: 16}
}

// RedRange returns the red ball range.
func (g Game) RedRange() Range {
	return Range{Lo: g.RedLo, Hi: g.RedHi}
}

// BlueRange returns the blue ball range.
func (g Game) BlueRange() Range {
	return Range{Lo: g.BlueLo, Hi: g.BlueHi}
}

// Validate checks that the game shape is playable.
func (g Game) Validate() error {
	if err := g.RedRange().Validate(); err != nil {
		return fmt.Errorf("red range: %w", err)
	}
	if err := g.BlueRange().Validate(); err != nil {
		return fmt.Errorf("blue range: %w", err)
	}
	if g.RedCount < 1 {
		return errors.New("red count must be at least 1")
	}
	if g.RedCount > g.RedRange().Size() {
		return fmt.Errorf("red count %d exceeds red pool size %d", g.RedCount, g.RedRange().Size())
	}
	return nil
}
