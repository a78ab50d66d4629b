package probe

import (
	"time"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/scorer"
)

// #region config
// Config controls the deterministic fast path.
type Config struct {
	FastCues       bool          // consult the cue tables before the scorer
	FastConfidence float64       // minimum rule confidence that short-circuits
	Timeout        time.Duration // per-example deadline in Evaluate; 0 disables
}

// DefaultConfig enables the fast path for strong cues only.
func DefaultConfig() Config {
	return Config{FastCues: true, FastConfidence: 0.95}
}

// #endregion config

// #region outcome
// Meta carries provenance for routing.
type Meta struct {
	Source scorer.Source
	Rule   string // cue rule name when Source is fast_cue
}

// Outcome is the full result of probing one utterance.
type Outcome struct {
	scorer.Result
	Lang  act.Lang
	Probs act.Distribution
	Meta  Meta
}

// #endregion outcome
