package models

import (
	"errors"
	"fmt"
	"time"
)

// Prediction methods. UniformRandom marks picks that fell back to uniform
// sampling because no draw history was available.
const (
	MethodGlobalFrequency = "global-frequency"
	MethodRecencyWeighted = "recency-weighted"
	MethodUniformRandom   = "uniform-random"
)

// Prediction is one generated set of numbers together with how it was produced.
type Prediction struct {
	ID           string    `json:"id"`
	Method       string    `json:"method"`
	RedBalls     []int     `json:"red_balls"` // Ascending, len == Game.RedCount
	BlueBall     int       `json:"blue_ball"`
	RecentWindow int       `json:"recent_window,omitempty"` // Draws weighted as recent; 0 for non-recency methods
	Predictor    string    `json:"predictor"`               // Name of the producing instance
	GeneratedAt  time.Time `json:"generated_at"`
}

// Validate checks the prediction against the given game shape.
func (p *Prediction) Validate(game Game) error {
	if p.ID == "" {
		return errors.New("prediction ID must not be empty")
	}
	switch p.Method {
	case MethodGlobalFrequency, MethodRecencyWeighted, MethodUniformRandom:
	default:
		return fmt.Errorf("unknown prediction method %q", p.Method)
	}
	if len(p.RedBalls) != game.RedCount {
		return fmt.Errorf("prediction must have %d red balls, got %d", game.RedCount, len(p.RedBalls))
	}
	redRange := game.RedRange()
	for i, ball := range p.RedBalls {
		if !redRange.Contains(ball) {
			return fmt.Errorf("red ball %d is outside range %d..%d", ball, redRange.Lo, redRange.Hi)
		}
		if i > 0 && ball <= p.RedBalls[i-1] {
			return errors.New("red balls must be strictly ascending")
		}
	}
	if blueRange := game.BlueRange(); !blueRange.Contains(p.BlueBall) {
		return fmt.Errorf("blue ball %d is outside range %d..%d", p.BlueBall, blueRange.Lo, blueRange.Hi)
	}
	if p.RecentWindow < 0 {
		return errors.New("recent window must not be negative")
	}
	if p.Predictor == "" {
		return errors.New("predictor name must not be empty")
	}
	if p.GeneratedAt.IsZero() {
		return errors.New("generated at must be set")
	}
	return nil
}
