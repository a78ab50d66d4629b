package gate

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Jingtingtina/pragact-router/internal/features"
)

// #region artifact
// Platt holds sigmoid calibration parameters: p = 1 / (1 + exp(A*f + B)).
type Platt struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
}

// LogisticModel is a fitted logistic gain classifier loaded from an artifact.
// Weights cover the full feature layout; features outside FeatureSet are
// zeroed before the dot product.
type LogisticModel struct {
	FeatureSet  features.Set `yaml:"feature_set" json:"feature_set"`
	Weights     []float64    `yaml:"weights" json:"weights"`
	Bias        float64      `yaml:"bias" json:"bias"`
	Calibration *Platt       `yaml:"calibration,omitempty" json:"calibration,omitempty"`
	Classes     []int        `yaml:"classes,omitempty" json:"classes,omitempty"`

	mask [features.Dim]float64
}

// #endregion artifact

// #region load
// LoadModel reads a YAML or JSON artifact and validates it.
func LoadModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var m LogisticModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if err := m.Init(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

// Init validates the artifact and prepares the feature mask. Single-class
// artifacts need no weights.
func (m *LogisticModel) Init() error {
	mask, err := m.FeatureSet.Mask()
	if err != nil {
		return err
	}
	m.mask = mask
	if _, ok := m.constant(); ok {
		return nil
	}
	if len(m.Weights) != features.Dim {
		return fmt.Errorf("%d weights: %w", len(m.Weights), ErrFeatureDims)
	}
	return nil
}

// #endregion load

// #region predict
// PredictProba returns P(gain=1 | x).
func (m *LogisticModel) PredictProba(x features.Vector) float64 {
	if p, ok := m.constant(); ok {
		return p
	}
	f := m.Bias
	for i := range x {
		f += m.Weights[i] * x[i] * m.mask[i]
	}
	if m.Calibration != nil {
		return 1 / (1 + math.Exp(m.Calibration.A*f+m.Calibration.B))
	}
	return 1 / (1 + math.Exp(-f))
}

// constant handles artifacts fitted on a single class: the positive-class
// probability is 1 when that class is 1, else 0.
func (m *LogisticModel) constant() (float64, bool) {
	if len(m.Classes) != 1 {
		return 0, false
	}
	if m.Classes[0] == 1 {
		return 1, true
	}
	return 0, true
}

// #endregion predict

// #region constant-model
// ConstantModel always predicts the same probability.
type ConstantModel float64

// PredictProba implements GainModel.
func (c ConstantModel) PredictProba(features.Vector) float64 { return float64(c) }

// #endregion constant-model
