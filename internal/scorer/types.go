package scorer

import (
	"errors"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

// #region source
// Source records which path produced a result. It also fixes the scale of
// Result.Margin: a log-score gap for ensemble, a vote-entropy confidence for
// vote, and a rule confidence for fast_cue.
type Source string

const (
	SourceEnsemble Source = "ensemble"
	SourceVote     Source = "vote"
	SourceFastCue  Source = "fast_cue"
)

// #endregion source

// #region result
// Result is the outcome of one scoring call.
type Result struct {
	Label     act.Label
	Margin    float64
	RawScores []float64 // aligned to label order; zeros for vote, nil for fast_cue
	Votes     []int     // per-label vote counts; vote path only
	Source    Source
}

// #endregion result

// #region config
// VoteTieBreakThreshold is the vote confidence below which the tie-break table may override.
const VoteTieBreakThreshold = 0.30

// Config selects the scoring path.
type Config struct {
	UseLogprobs bool   // ensemble when true and MCQ templates exist, else vote
	Calibrate   bool   // compute the neutral-filler prior on first ensemble use
	Backend     string // scoring model identity; priors are cached per backend
}

// DefaultConfig returns the calibrated ensemble configuration.
func DefaultConfig() Config {
	return Config{UseLogprobs: true, Calibrate: true}
}

// #endregion config

// #region errors
var (
	// ErrNoTemplates is returned when the selected path has no templates.
	ErrNoTemplates = errors.New("scorer: no templates")
	// ErrOptionOrder is returned when options are not aligned to the label order.
	ErrOptionOrder = errors.New("scorer: options not in label order")
)

// #endregion errors
