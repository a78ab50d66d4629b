package probe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/cue"
	"github.com/Jingtingtina/pragact-router/internal/llm"
	"github.com/Jingtingtina/pragact-router/internal/metrics"
	"github.com/Jingtingtina/pragact-router/internal/scorer"
)

// ErrNoScorer is returned when the fast path misses and no scorer is configured.
var ErrNoScorer = errors.New("probe: no scorer configured")

// #region probe
// Probe runs the cue fast path and falls back to the act scorer.
type Probe struct {
	scorer *scorer.Scorer
	config Config
}

// NewProbe creates a probe. s may be nil for a cue-only probe.
func NewProbe(s *scorer.Scorer, config Config) *Probe {
	return &Probe{scorer: s, config: config}
}

// #endregion probe

// #region score
// Score classifies an utterance. The language tag selects the cue table and
// is detected from the text only when empty. A strong cue returns immediately
// without calling the client, which may then be nil.
func (p *Probe) Score(ctx context.Context, u act.Utterance, client llm.Client) (Outcome, error) {
	start := time.Now()
	text, lang := u.Text, u.Lang
	if lang == "" {
		lang = act.DetectLang(text)
	}

	if p.config.FastCues {
		if hit, ok := cue.NewEngine(lang).Match(text); ok && hit.Confidence >= p.config.FastConfidence {
			out := Outcome{
				Result: scorer.Result{
					Label:  hit.Label,
					Margin: hit.Confidence,
					Source: scorer.SourceFastCue,
				},
				Lang:  lang,
				Probs: act.PointMass(hit.Label, hit.Confidence),
				Meta:  Meta{Source: scorer.SourceFastCue, Rule: hit.Rule},
			}
			metrics.ObserveProbe(string(scorer.SourceFastCue), hit.Label.Key(), time.Since(start))
			return out, nil
		}
	}

	if p.scorer == nil {
		return Outcome{}, ErrNoScorer
	}
	res, err := p.scorer.Score(ctx, text, client)
	if err != nil {
		metrics.ObserveProbeError()
		log.Printf("[PROBE] score failed: %v", err)
		return Outcome{}, fmt.Errorf("probe: %w", err)
	}

	out := Outcome{
		Result: res,
		Lang:   lang,
		Probs:  Probabilities(res),
		Meta:   Meta{Source: res.Source},
	}
	metrics.ObserveProbe(string(res.Source), res.Label.Key(), time.Since(start))
	return out, nil
}

// #endregion score

// #region probabilities
// Probabilities turns a scorer result into a label distribution: softmax of
// the averaged scores for ensemble, vote shares for vote, and a point mass at
// the rule confidence for fast_cue.
func Probabilities(res scorer.Result) act.Distribution {
	switch res.Source {
	case scorer.SourceEnsemble:
		return act.Softmax(res.RawScores)
	case scorer.SourceVote:
		var d act.Distribution
		total := 0
		for _, v := range res.Votes {
			total += v
		}
		if total == 0 {
			return act.PointMass(res.Label, res.Margin)
		}
		for i := 0; i < act.NumLabels && i < len(res.Votes); i++ {
			d[i] = float64(res.Votes[i]) / float64(total)
		}
		return d
	default:
		return act.PointMass(res.Label, res.Margin)
	}
}

// #endregion probabilities
