package cue

import "github.com/Jingtingtina/pragact-router/internal/act"

// #region confidence
// Confidence levels a rule can assign.
const (
	ConfidenceStrong = 1.0
	ConfidenceWeak   = 0.2
)

// #endregion confidence

// #region rule
// Rule is one ordered predicate of a cue table. Match receives the
// NFC-normalized trimmed text and its lowercased form.
type Rule struct {
	Name       string
	Label      act.Label
	Confidence float64
	Match      func(raw, lower string) bool
}

// Hit is the result of the first matching rule.
type Hit struct {
	Label      act.Label
	Confidence float64
	Rule       string
}

// #endregion rule

// #region bits
// Bits are the binary lexical cues fed to the gain model.
type Bits struct {
	StartsWH   bool `json:"starts_wh"`
	EndsQMark  bool `json:"ends_qmark"`
	Imperative bool `json:"imperative"`
	ZHQMark    bool `json:"zh_qmark"`
	ZHPlease   bool `json:"zh_request_please"`
}

// NumBits is the number of cue bits in the feature vector.
const NumBits = 5

// Vector returns the bits as 0/1 floats in feature order.
func (b Bits) Vector() [NumBits]float64 {
	return [NumBits]float64{f(b.StartsWH), f(b.EndsQMark), f(b.Imperative), f(b.ZHQMark), f(b.ZHPlease)}
}

func f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion bits
