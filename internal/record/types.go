package record

import (
	"errors"
	"fmt"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

// #region record
// Record is one JSONL line flowing through probe, gate and sweep stages.
// Later stages add fields; unknown input fields are dropped.
type Record struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Lang act.Lang `json:"lang,omitempty"`
	Gold string   `json:"gold,omitempty"`

	ProbeLabel  string             `json:"probe_label,omitempty"`
	ProbeMargin *float64           `json:"probe_margin,omitempty"`
	ProbeSource string             `json:"probe_source,omitempty"`
	ProbeRule   string             `json:"probe_rule,omitempty"`
	ProbeProbs  map[string]float64 `json:"probe_probs,omitempty"`
	CueBits     map[string]int     `json:"cue_bits,omitempty"`
	Actions     []string           `json:"actions,omitempty"`

	Cost       float64  `json:"cost,omitempty"`
	CostHeavy  float64  `json:"cost_heavy,omitempty"`
	Chosen     string   `json:"chosen,omitempty"`
	PGain      *float64 `json:"p_gain,omitempty"`
	DeltaScore *float64 `json:"delta_score,omitempty"`
	Gain       *int     `json:"gain,omitempty"`

	ScoreBase  map[string]float64 `json:"score_base,omitempty"`
	ScoreHeavy map[string]float64 `json:"score_heavy,omitempty"`

	Error string `json:"error,omitempty"`
}

// #endregion record

// #region task
// Task selects the quality metric of a scored record.
type Task string

const (
	TaskQA    Task = "qa"
	TaskInstr Task = "instr"
)

// Metric returns the score key used for the task.
func (t Task) Metric() (string, error) {
	switch t {
	case TaskQA:
		return "f1", nil
	case TaskInstr:
		return "rougeL", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTask, string(t))
}

// #endregion task

// #region errors
var (
	// ErrUnknownTask is returned for a task other than qa or instr.
	ErrUnknownTask = errors.New("record: unknown task")
	// ErrMissingPair is returned when a base record has no heavy counterpart.
	ErrMissingPair = errors.New("record: no heavy record for id")
	// ErrMissingID is returned for a record without an id.
	ErrMissingID = errors.New("record: missing id")
)

// #endregion errors
