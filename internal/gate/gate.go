package gate

import (
	"fmt"
	"math"

	"github.com/Jingtingtina/pragact-router/internal/features"
	"github.com/Jingtingtina/pragact-router/internal/metrics"
)

// #region gate
// Gate decides between base and heavy by the value-of-compute rule.
type Gate struct {
	model GainModel
}

// NewGate creates a gate backed by model. A *LogisticModel is validated and
// its feature mask prepared, so hand-built artifacts need no separate Init.
func NewGate(model GainModel) (*Gate, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	if lm, ok := model.(*LogisticModel); ok {
		if lm == nil {
			return nil, ErrNoModel
		}
		if err := lm.Init(); err != nil {
			return nil, fmt.Errorf("new gate: %w", err)
		}
	}
	return &Gate{model: model}, nil
}

// Decide escalates iff P(gain)*gain_scale >= lambda*cost.
func (g *Gate) Decide(x features.Vector, cost float64, params Params) Decision {
	return DecideProba(g.model.PredictProba(x), cost, params)
}

// Escalate reports whether p*gain_scale >= lambda*cost. A NaN probability
// never escalates.
func Escalate(p, cost float64, params Params) bool {
	value := p * params.GainScale
	return !math.IsNaN(value) && value >= params.Lambda*cost
}

// DecideProba applies the rule to an already computed probability.
func DecideProba(p, cost float64, params Params) Decision {
	value := p * params.GainScale
	threshold := params.Lambda * cost
	d := Decision{
		Chosen:      ChoiceBase,
		Probability: p,
		Value:       value,
		Threshold:   threshold,
		Cost:        cost,
		Params:      params,
	}
	if Escalate(p, cost, params) {
		d.Chosen = ChoiceHeavy
		d.Reason = fmt.Sprintf("escalate: p*s=%.4f >= lambda*cost=%.4f", value, threshold)
	} else {
		d.Reason = fmt.Sprintf("stay base: p*s=%.4f < lambda*cost=%.4f", value, threshold)
	}
	metrics.ObserveGate("voc", string(d.Chosen))
	return d
}

// #endregion gate

// #region margin-gate
// MarginGate is the baseline: escalate iff the probe margin is below tau.
type MarginGate struct {
	Tau float64
}

// NewMarginGate creates a margin gate.
func NewMarginGate(tau float64) MarginGate {
	return MarginGate{Tau: tau}
}

// Decide escalates low-margin items.
func (m MarginGate) Decide(margin float64) Decision {
	d := Decision{
		Chosen:    ChoiceBase,
		Value:     margin,
		Threshold: m.Tau,
	}
	if margin < m.Tau {
		d.Chosen = ChoiceHeavy
		d.Reason = fmt.Sprintf("escalate: margin=%.4f < tau=%.4f", margin, m.Tau)
	} else {
		d.Reason = fmt.Sprintf("stay base: margin=%.4f >= tau=%.4f", margin, m.Tau)
	}
	metrics.ObserveGate("margin", string(d.Chosen))
	return d
}

// #endregion margin-gate
