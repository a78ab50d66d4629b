package frontier

import (
	"fmt"

	"github.com/Jingtingtina/pragact-router/internal/features"
	"github.com/Jingtingtina/pragact-router/internal/gate"
)

// #region types
// Item is one evaluation example with both completion paths already scored.
type Item struct {
	ID           string
	Features     features.Vector
	Margin       float64
	Cost         float64 // cost of the heavy path
	BaseQuality  float64
	HeavyQuality float64
	Failed       bool // probe failed; never escalated by a gate
}

// Kind identifies which gating policy produced a point.
type Kind string

const (
	KindLearned Kind = "learned"
	KindMargin  Kind = "margin"
	KindBase    Kind = "base"
	KindHeavy   Kind = "heavy"
)

// Point is the aggregate outcome of one policy setting over an item set.
type Point struct {
	Kind        Kind
	Params      gate.Params // learned sweeps only
	Tau         float64     // margin sweeps only
	N           int
	AvgQuality  float64
	TotalTokens float64
	Escalated   int
}

// Param returns the swept value: lambda for learned points, tau for margin points.
func (p Point) Param() float64 {
	if p.Kind == KindMargin {
		return p.Tau
	}
	return p.Params.Lambda
}

// String renders the point as a one-line sweep log.
func (p Point) String() string {
	switch p.Kind {
	case KindLearned:
		return fmt.Sprintf("[gate] N=%d avg_quality=%.3f total_tokens=%.1f lambda=%g gain_scale=%g",
			p.N, p.AvgQuality, p.TotalTokens, p.Params.Lambda, p.Params.GainScale)
	case KindMargin:
		return fmt.Sprintf("[gate-margin] N=%d avg_quality=%.3f total_tokens=%.1f tau=%g",
			p.N, p.AvgQuality, p.TotalTokens, p.Tau)
	default:
		return fmt.Sprintf("[%s] N=%d avg_quality=%.3f total_tokens=%.1f", p.Kind, p.N, p.AvgQuality, p.TotalTokens)
	}
}

// Config controls sweep evaluation.
type Config struct {
	Concurrency int // parallel parameter evaluations; <= 0 means unbounded
}

// DefaultConfig returns a config evaluating four settings at a time.
func DefaultConfig() Config {
	return Config{Concurrency: 4}
}

// #endregion types
