package router

import "github.com/Jingtingtina/pragact-router/internal/scorer"

// #region action
// Action is a downstream prompting or retrieval directive.
type Action string

const (
	PromptStepByStep     Action = "Prompt_StepByStep"
	PromptConcise        Action = "Prompt_Concise"
	RAGRerank            Action = "RAG_rerank"
	RAGDefinitionalBoost Action = "RAG_definitional_boost"
	ToolExec             Action = "Tool_exec"
)

// MinimalAction replaces a plan that filtering left empty.
const MinimalAction = PromptConcise

// #endregion action

// #region catalog
// ActionInfo describes one action in the vocabulary.
type ActionInfo struct {
	Action      Action
	Heavy       bool
	Description string
}

// Catalog is the full action vocabulary.
var Catalog = map[Action]ActionInfo{
	PromptStepByStep: {
		Action:      PromptStepByStep,
		Heavy:       true,
		Description: "step-by-step reasoning prompt",
	},
	PromptConcise: {
		Action:      PromptConcise,
		Heavy:       false,
		Description: "short direct answer prompt",
	},
	RAGRerank: {
		Action:      RAGRerank,
		Heavy:       true,
		Description: "cross-encoder rerank of retrieved passages",
	},
	RAGDefinitionalBoost: {
		Action:      RAGDefinitionalBoost,
		Heavy:       false,
		Description: "boost definition-style passages in retrieval",
	},
	ToolExec: {
		Action:      ToolExec,
		Heavy:       true,
		Description: "execute an external tool",
	},
}

// IsHeavy reports whether a is in the heavy subset.
func IsHeavy(a Action) bool {
	return Catalog[a].Heavy
}

// #endregion catalog

// #region context
// Context is the routing input for one utterance. Margin is on the scale
// implied by Source.
type Context struct {
	Label  string
	Margin float64
	Source scorer.Source
}

// #endregion context

// #region config
// Config holds routing thresholds.
type Config struct {
	Threshold float64 // rerank is added for question/request at or above this confidence
	FastTau   float64 // fast-path plans below this confidence lose heavy actions
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{Threshold: 0.25, FastTau: 0.30}
}

// #endregion config
