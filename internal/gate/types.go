package gate

import (
	"errors"

	"github.com/Jingtingtina/pragact-router/internal/features"
)

// #region choice
// Choice is the completion path a gate selects.
type Choice string

const (
	ChoiceBase  Choice = "base"
	ChoiceHeavy Choice = "heavy"
)

// #endregion choice

// #region gain-model
// GainModel predicts the probability that the heavy path improves quality.
type GainModel interface {
	PredictProba(x features.Vector) float64
}

// #endregion gain-model

// #region params
// Params are the economic knobs of the value-of-compute rule.
type Params struct {
	Lambda    float64 `yaml:"lambda" json:"lambda"`         // price per unit cost
	GainScale float64 `yaml:"gain_scale" json:"gain_scale"` // value of one expected gain
}

// DefaultParams returns lambda=0.002 and gain_scale=1.
func DefaultParams() Params {
	return Params{Lambda: 0.002, GainScale: 1.0}
}

// DefaultTau is the default margin-gate threshold.
const DefaultTau = 0.25

// #endregion params

// #region decision
// Decision is the output of a gate evaluation.
type Decision struct {
	Chosen      Choice
	Probability float64 // P(gain); unset for the margin gate
	Value       float64 // p*gain_scale, or the margin for the margin gate
	Threshold   float64 // lambda*cost, or tau for the margin gate
	Cost        float64
	Params      Params
	Reason      string
}

// Heavy reports whether the decision escalates.
func (d Decision) Heavy() bool { return d.Chosen == ChoiceHeavy }

// #endregion decision

// #region errors
var (
	// ErrFeatureDims is returned when an artifact's weights do not match the feature layout.
	ErrFeatureDims = errors.New("gate: weight count does not match feature dimension")
	// ErrNoModel is returned when a learned gate has no gain model.
	ErrNoModel = errors.New("gate: no gain model")
)

// #endregion errors
