package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/llm"
)

// #region types
// Example is one gold-labelled utterance.
type Example struct {
	Text string
	Lang act.Lang // empty means detect
	Gold act.Label
}

// LabelStats holds per-label precision, recall, and F1.
type LabelStats struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report aggregates probe accuracy against gold labels.
type Report struct {
	Total     int
	Correct   int
	Failed    int
	Confusion [act.NumLabels][act.NumLabels]int // [gold][pred]
}

// #endregion types

// #region evaluate
// Evaluate probes every example and tallies the confusion matrix. Examples
// whose scoring fails are counted in Failed and excluded from accuracy.
func (p *Probe) Evaluate(ctx context.Context, examples []Example, client llm.Client) Report {
	var r Report
	for _, ex := range examples {
		out, err := p.scoreExample(ctx, ex, client)
		if err != nil {
			r.Failed++
			continue
		}
		r.Add(ex.Gold, out.Label)
	}
	return r
}

func (p *Probe) scoreExample(ctx context.Context, ex Example, client llm.Client) (Outcome, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}
	return p.Score(ctx, act.Utterance{Text: ex.Text, Lang: ex.Lang}, client)
}

// Add records one prediction.
func (r *Report) Add(gold, pred act.Label) {
	if !gold.Valid() || !pred.Valid() {
		return
	}
	r.Total++
	if gold == pred {
		r.Correct++
	}
	r.Confusion[gold][pred]++
}

// Accuracy returns Correct/Total, or 0 for an empty report.
func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Stats returns precision, recall, and F1 for label l.
func (r Report) Stats(l act.Label) LabelStats {
	tp := r.Confusion[l][l]
	var predicted, support int
	for i := 0; i < act.NumLabels; i++ {
		predicted += r.Confusion[i][l]
		support += r.Confusion[l][i]
	}
	s := LabelStats{Support: support}
	if predicted > 0 {
		s.Precision = float64(tp) / float64(predicted)
	}
	if support > 0 {
		s.Recall = float64(tp) / float64(support)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

// #endregion evaluate

// #region format
// Format renders the per-label table and the confusion matrix.
func (r Report) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %9s %9s %9s %8s\n", "label", "precision", "recall", "f1", "support")
	for _, l := range act.Labels {
		s := r.Stats(l)
		fmt.Fprintf(&b, "%-12s %9.3f %9.3f %9.3f %8d\n", l.Key(), s.Precision, s.Recall, s.F1, s.Support)
	}
	fmt.Fprintf(&b, "\naccuracy: %d/%d = %.3f", r.Correct, r.Total, r.Accuracy())
	if r.Failed > 0 {
		fmt.Fprintf(&b, " (failed: %d)", r.Failed)
	}
	b.WriteString("\n\nconfusion (rows=gold, cols=pred)\n")
	for _, g := range act.Labels {
		fmt.Fprintf(&b, "%-12s", g.Key())
		for _, p := range act.Labels {
			fmt.Fprintf(&b, " %4d", r.Confusion[g][p])
		}
		b.WriteString("\n")
	}
	return b.String()
}

// #endregion format
