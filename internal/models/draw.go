package models

import (
	"errors"
	"fmt"
)

// Draw represents one official drawing result from the archive.
// Red balls are stored in strictly ascending order; the issue number is the
// unique key used for deduplication and chronological ordering.
type Draw struct {
	Issue    string `json:"issue"`     // Official issue number, e.g. "2024101"
	RedBalls []int  `json:"red_balls"` // Ascending, len == Game.RedCount
	BlueBall int    `json:"blue_ball"`
	Date     string `json:"date,omitempty"` // Draw date label as published by the feed
}

// Validate checks the draw against the given game shape.
func (d *Draw) Validate(game Game) error {
	if d.Issue == "" {
		return errors.New("draw issue must not be empty")
	}
	for _, c := range d.Issue {
		if c < '0' || c > '9' {
			return fmt.Errorf("draw issue %q must contain digits only", d.Issue)
		}
	}
	if len(d.RedBalls) != game.RedCount {
		return fmt.Errorf("draw must have %d red balls, got %d", game.RedCount, len(d.RedBalls))
	}
	redRange := game.RedRange()
	for i, ball := range d.RedBalls {
		if !redRange.Contains(ball) {
			return fmt.Errorf("red ball %d is outside range %d..%d", ball, redRange.Lo, redRange.Hi)
		}
		if i > 0 && ball <= d.RedBalls[i-1] {
			return errors.New("red balls must be strictly ascending")
		}
	}
	if blueRange := game.BlueRange(); !blueRange.Contains(d.BlueBall) {
		return fmt.Errorf("blue ball %d is outside range %d..%d", d.BlueBall, blueRange.Lo, blueRange.Hi)
	}
	return nil
}
