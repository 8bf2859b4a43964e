// Package predictor generates lottery number picks from archived draws.
// Two strategies are supported: global inverse-frequency over the whole
// archive, and a recency-weighted variant that counts recent draws more
// heavily. With no archive at all, picks fall back to uniform sampling and
// are labeled as such.
package predictor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/lottoracle/internal/analysis"
	"github.com/rewired-gh/lottoracle/internal/models"
	"github.com/rewired-gh/lottoracle/internal/sampler"
)

const (
	defaultName         = "lottoracle"
	defaultRecentWeight = 3.0
	// The derived recent window is this many times the blue pool size, which
	// lands on 160 draws for the standard game.
	recentWindowFactor = 10
)

// Option configures a Producer.
type Option func(*Producer)

// WithName sets the name stamped into produced predictions.
func WithName(name string) Option {
	return func(p *Producer) {
		if name != "" {
			p.name = name
		}
	}
}

// WithSampler sets the sampler, letting callers inject a seeded one.
func WithSampler(s *sampler.Sampler) Option {
	return func(p *Producer) {
		if s != nil {
			p.smp = s
		}
	}
}

// WithRecentWindow sets how many trailing draws count as recent. Zero or
// negative keeps the derived default.
func WithRecentWindow(n int) Option {
	return func(p *Producer) {
		if n > 0 {
			p.recentWindow = n
		}
	}
}

// WithRecentWeight sets the weight applied to recent draws. Values at or
// below zero keep the default.
func WithRecentWeight(w float64) Option {
	return func(p *Producer) {
		if w > 0 {
			p.recentWeight = w
		}
	}
}

// WithHistoryLimit bounds how many produced predictions are retained in
// memory. Zero (the default) disables retention entirely; history is the
// caller's responsibility to size.
func WithHistoryLimit(n int) Option {
	return func(p *Producer) {
		if n > 0 {
			p.historyLimit = n
		}
	}
}

// Producer generates predictions for one game. It serializes access to its
// sampler and history, so a single Producer is safe to share across
// goroutines.
type Producer struct {
	mu           sync.Mutex
	game         models.Game
	name         string
	smp          *sampler.Sampler
	recentWindow int
	recentWeight float64
	historyLimit int
	history      []models.Prediction
}

// New creates a Producer for the given game.
func New(game models.Game, opts ...Option) (*Producer, error) {
	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game: %w", err)
	}

	p := &Producer{
		game:         game,
		name:         defaultName,
		recentWeight: defaultRecentWeight,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.smp == nil {
		p.smp = sampler.New(nil)
	}
	if p.recentWindow <= 0 {
		p.recentWindow = recentWindowFactor * game.BlueRange().Size()
	}
	return p, nil
}

// PredictGlobal picks numbers weighted by inverse frequency over the whole
// archive. An empty archive yields a uniform pick labeled uniform-random.
func (p *Producer) PredictGlobal(draws []models.Draw) (models.Prediction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.predictGlobal(draws)
}

// PredictRecent picks numbers weighted by inverse frequency with the trailing
// window counted more heavily. An empty archive yields a uniform pick labeled
// uniform-random.
func (p *Producer) PredictRecent(draws []models.Draw) (models.Prediction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.predictRecent(draws)
}

// PredictBoth produces a global and a recency-weighted pick in one locked
// sweep, the way the watch daemon consumes them.
func (p *Producer) PredictBoth(draws []models.Draw) (global, recent models.Prediction, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	global, err = p.predictGlobal(draws)
	if err != nil {
		return models.Prediction{}, models.Prediction{}, err
	}
	recent, err = p.predictRecent(draws)
	if err != nil {
		return models.Prediction{}, models.Prediction{}, err
	}
	return global, recent, nil
}

// History returns the retained predictions, oldest first.
func (p *Producer) History() []models.Prediction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Prediction, len(p.history))
	copy(out, p.history)
	return out
}

func (p *Producer) predictGlobal(draws []models.Draw) (models.Prediction, error) {
	if len(draws) == 0 {
		return p.compose(models.MethodUniformRandom, nil, nil, 0)
	}
	redCounts := analysis.Tally(draws, p.game.RedRange(), analysis.RedPicker)
	blueCounts := analysis.Tally(draws, p.game.BlueRange(), analysis.BluePicker)
	return p.compose(models.MethodGlobalFrequency,
		analysis.InverseWeights(redCounts), analysis.InverseWeights(blueCounts), 0)
}

func (p *Producer) predictRecent(draws []models.Draw) (models.Prediction, error) {
	if len(draws) == 0 {
		return p.compose(models.MethodUniformRandom, nil, nil, 0)
	}
	redCounts := analysis.TallyWeighted(draws, p.game.RedRange(), analysis.RedPicker, p.recentWindow, p.recentWeight)
	blueCounts := analysis.TallyWeighted(draws, p.game.BlueRange(), analysis.BluePicker, p.recentWindow, p.recentWeight)
	return p.compose(models.MethodRecencyWeighted,
		analysis.InverseWeights(redCounts), analysis.InverseWeights(blueCounts), p.recentWindow)
}

func (p *Producer) compose(method string, redWeights, blueWeights map[int]float64, window int) (models.Prediction, error) {
	reds, err := p.smp.Draw(redWeights, p.game.RedRange(), p.game.RedCount)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("drawing red balls: %w", err)
	}
	blue, err := p.smp.SampleOne(blueWeights, p.game.BlueRange())
	if err != nil {
		return models.Prediction{}, fmt.Errorf("drawing blue ball: %w", err)
	}

	pred := models.Prediction{
		ID:           uuid.New().String(),
		Method:       method,
		RedBalls:     reds,
		BlueBall:     blue,
		RecentWindow: window,
		Predictor:    p.name,
		GeneratedAt:  time.Now(),
	}
	p.remember(pred)
	return pred, nil
}

func (p *Producer) remember(pred models.Prediction) {
	if p.historyLimit <= 0 {
		return
	}
	p.history = append(p.history, pred)
	if len(p.history) > p.historyLimit {
		p.history = p.history[len(p.history)-p.historyLimit:]
	}
}
