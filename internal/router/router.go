package router

import (
	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/metrics"
	"github.com/Jingtingtina/pragact-router/internal/scorer"
)

// #region default-plans

// Question/request plans gain RAG_rerank only at or above threshold.
var (
	seekingPlan   = []Action{PromptStepByStep}
	seekingRerank = []Action{PromptStepByStep, RAGRerank}
	otherPlan     = []Action{PromptConcise, RAGDefinitionalBoost}
)

// #endregion default-plans

// #region select
// SelectActions picks the plan for a label key. English and Chinese keys for
// the same label route identically. Unknown keys get the non-seeking plan.
func SelectActions(label string, confidence, threshold float64) []Action {
	if isQuestionOrRequest(label) {
		if confidence >= threshold {
			return clone(seekingRerank)
		}
		return clone(seekingPlan)
	}
	return clone(otherPlan)
}

func isQuestionOrRequest(label string) bool {
	l, err := act.Parse(label)
	return err == nil && l.IsQuestionOrRequest()
}

// #endregion select

// #region filter
// FilterFastPath strips heavy actions from question/request plans produced by
// the fast path when confidence is below fastTau. A plan left empty becomes
// the minimal action. Any other input is returned unchanged.
func FilterFastPath(ctx Context, actions []Action, fastTau float64) []Action {
	if !filterApplies(ctx, fastTau) {
		return actions
	}

	seen := make(map[Action]bool, len(actions))
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		if IsHeavy(a) || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	if len(out) == 0 {
		out = append(out, MinimalAction)
	}
	return out
}

func filterApplies(ctx Context, fastTau float64) bool {
	return ctx.Source == scorer.SourceFastCue && isQuestionOrRequest(ctx.Label) && ctx.Margin < fastTau
}

// #endregion filter

// #region router
// Router applies selection and the fast-path filter with fixed thresholds.
type Router struct {
	config Config
}

// NewRouter creates a router.
func NewRouter(config Config) *Router {
	return &Router{config: config}
}

// Plan selects actions for ctx and applies the fast-path filter.
func (r *Router) Plan(ctx Context) []Action {
	selected := SelectActions(ctx.Label, ctx.Margin, r.config.Threshold)
	if !filterApplies(ctx, r.config.FastTau) {
		return selected
	}
	metrics.ObserveFiltered()
	return FilterFastPath(ctx, selected, r.config.FastTau)
}

// #endregion router

// #region helpers
func clone(a []Action) []Action {
	out := make([]Action, len(a))
	copy(out, a)
	return out
}

// Strings converts a plan for serialization.
func Strings(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

// #endregion helpers
