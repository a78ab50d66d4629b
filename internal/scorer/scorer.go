package scorer

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/cue"
	"github.com/Jingtingtina/pragact-router/internal/llm"
)

// #region scorer
// Scorer classifies an utterance into an act label through an LLM client.
type Scorer struct {
	templates Templates
	config    Config
	key       string
	store     PriorStore
}

// NewScorer validates templates and builds a scorer. store may be nil.
func NewScorer(templates Templates, config Config, store PriorStore) (*Scorer, error) {
	if err := templates.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		templates: templates,
		config:    config,
		key:       priorKey(templates, config.Backend),
		store:     store,
	}, nil
}

// Templates returns the scorer's prompt set.
func (s *Scorer) Templates() Templates { return s.templates }

// #endregion scorer

// #region score
// Score runs the ensemble path when log-probabilities are enabled and MCQ
// templates exist, otherwise the discrete vote path. LLM errors are returned
// wrapped and never retried here.
func (s *Scorer) Score(ctx context.Context, text string, client llm.Client) (Result, error) {
	if s.config.UseLogprobs && len(s.templates.MCQ) > 0 {
		return s.scoreEnsemble(ctx, text, client)
	}
	return s.scoreVote(ctx, text, client)
}

// #endregion score

// #region ensemble
func (s *Scorer) scoreEnsemble(ctx context.Context, text string, client llm.Client) (Result, error) {
	prior, ok := s.Prior()
	if !ok && s.config.Calibrate {
		p, err := s.calibrateOnce(ctx, client)
		switch {
		case p != nil:
			prior = p
			if err != nil {
				log.Printf("[SCORER] prior computed but not persisted: %v", err)
			}
		case err != nil:
			log.Printf("[SCORER] calibration failed, scoring uncalibrated: %v", err)
		}
	}

	n := len(s.templates.Options)
	sum := make([]float64, n)
	for i, tpl := range s.templates.MCQ {
		z, err := client.ScoreOptions(ctx, Render(tpl, text), s.templates.Options)
		if err != nil {
			return Result{}, fmt.Errorf("score template %d: %w", i, err)
		}
		if len(z) != n {
			return Result{}, fmt.Errorf("score template %d: got %d scores for %d options", i, len(z), n)
		}
		for j := range sum {
			if prior != nil {
				sum[j] += z[j] - prior[j]
			} else {
				sum[j] += z[j]
			}
		}
	}
	for j := range sum {
		sum[j] /= float64(len(s.templates.MCQ))
	}

	best := 0
	for j := 1; j < n; j++ {
		if sum[j] > sum[best] {
			best = j
		}
	}
	return Result{
		Label:     act.Label(best),
		Margin:    act.TopTwoGap(sum),
		RawScores: sum,
		Source:    SourceEnsemble,
	}, nil
}

// #endregion ensemble

// #region vote
func (s *Scorer) scoreVote(ctx context.Context, text string, client llm.Client) (Result, error) {
	tpls := s.templates.WordTemplates()
	if len(tpls) == 0 {
		return Result{}, ErrNoTemplates
	}

	counts := make(map[string]int)
	var order []string
	for i, tpl := range tpls {
		choice, err := client.ChooseOption(ctx, Render(tpl, text), s.templates.Options)
		if err != nil {
			return Result{}, fmt.Errorf("vote template %d: %w", i, err)
		}
		if counts[choice] == 0 {
			order = append(order, choice)
		}
		counts[choice]++
	}

	winner := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[winner] {
			winner = c
		}
	}
	idx, ok := act.IndexOf(s.templates.Options, winner)
	if !ok {
		return Result{}, fmt.Errorf("vote winner %q: %w", winner, llm.ErrUnparseable)
	}
	label := act.Label(idx)

	votes := make([]int, len(s.templates.Options))
	for choice, c := range counts {
		if i, ok := act.IndexOf(s.templates.Options, choice); ok {
			votes[i] += c
		}
	}

	confidence := VoteConfidence(counts)
	if confidence < VoteTieBreakThreshold {
		if tb, ok := cue.TieBreak(text, s.templates.Lang); ok {
			label = tb
		}
	}

	return Result{
		Label:     label,
		Margin:    confidence,
		RawScores: make([]float64, len(s.templates.Options)),
		Votes:     votes,
		Source:    SourceVote,
	}, nil
}

// VoteConfidence is 1 - H/log(k) over the k observed categories. A unanimous
// vote has confidence 1.
func VoteConfidence(counts map[string]int) float64 {
	k := 0
	total := 0
	for _, c := range counts {
		if c > 0 {
			k++
			total += c
		}
	}
	if k <= 1 {
		return 1.0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	return 1.0 - h/math.Log(float64(k))
}

// #endregion vote
