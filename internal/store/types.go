package store

import "time"

// #region run
// Run groups the decisions written by one command invocation.
type Run struct {
	RunID      string
	Command    string
	ConfigJSON string
	CreatedAt  time.Time
}

// #endregion run

// #region decision-entry
// DecisionEntry is a single row in the decision_log table.
type DecisionEntry struct {
	ID        int64
	RunID     string
	ItemID    string
	TextHash  string
	Lang      string
	Label     string
	Source    string // "ensemble" | "vote" | "fast_cue"
	Rule      string
	Margin    float64
	Probs     []float64
	Actions   []string
	Gate      string // "voc" | "margin" | "" when not gated
	Chosen    string // "base" | "heavy" | ""
	PGain     *float64
	Cost      float64
	Error     string
	CreatedAt time.Time
}

// #endregion decision-entry
