package act

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// #region keys
// Key returns the canonical English key ("statement", "question", ...).
func (l Label) Key() string {
	if !l.Valid() {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return englishKeys[l]
}

// Chinese returns the Chinese display key (陈述, 疑问, ...).
func (l Label) Chinese() string {
	if !l.Valid() {
		return ""
	}
	return chineseKeys[l]
}

// String implements fmt.Stringer.
func (l Label) String() string { return l.Key() }

// Valid reports whether l is inside the canonical enumeration.
func (l Label) Valid() bool { return l >= 0 && int(l) < NumLabels }

// IsQuestionOrRequest reports whether the label is an information or action seeking act.
func (l Label) IsQuestionOrRequest() bool { return l == Question || l == Request }

// KeyFor returns the option key for l in the given language.
func KeyFor(l Label, lang Lang) string {
	if lang == LangZH {
		return l.Chinese()
	}
	return l.Key()
}

// #endregion keys

// #region parse
// Parse maps an English key (any case) or a Chinese display key to its label.
func Parse(s string) (Label, error) {
	t := strings.TrimSpace(s)
	lower := strings.ToLower(t)
	for i := range englishKeys {
		if lower == englishKeys[i] || t == chineseKeys[i] {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("unknown act label %q", s)
}

// IndexOf returns the position of key among options, matching either the
// literal option text or the label the key parses to.
func IndexOf(options []string, key string) (int, bool) {
	for i, o := range options {
		if o == key {
			return i, true
		}
	}
	want, err := Parse(key)
	if err != nil {
		return 0, false
	}
	for i, o := range options {
		if got, err := Parse(o); err == nil && got == want {
			return i, true
		}
	}
	return 0, false
}

// #endregion parse

// #region lang-detect
// DetectLang returns LangZH when text contains any Han ideograph, else LangEN.
func DetectLang(text string) Lang {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return LangZH
		}
	}
	return LangEN
}

// NewUtterance builds an utterance, detecting the language when lang is empty.
func NewUtterance(text string, lang Lang) Utterance {
	if lang == "" {
		lang = DetectLang(text)
	}
	return Utterance{Text: text, Lang: lang}
}

// #endregion lang-detect

// #region distribution-ops
// Argmax returns the highest-probability label. Ties go to the lower index.
func (d Distribution) Argmax() Label {
	best := 0
	for i := 1; i < NumLabels; i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return Label(best)
}

// Margin returns top1 - top2 over the distribution.
func (d Distribution) Margin() float64 {
	return TopTwoGap(d[:])
}

// Entropy returns the natural-log entropy after renormalization with values
// clipped to 1e-9. A non-positive total yields the uniform entropy ln 6.
func (d Distribution) Entropy() float64 {
	var sum float64
	for _, p := range d {
		sum += p
	}
	if sum <= 0 {
		return math.Log(NumLabels)
	}
	var h float64
	for _, p := range d {
		q := math.Max(p/sum, 1e-9)
		h -= q * math.Log(q)
	}
	return h
}

// Softmax converts log-scores aligned to label order into a distribution.
// Missing trailing scores are treated as -Inf.
func Softmax(scores []float64) Distribution {
	var d Distribution
	if len(scores) == 0 {
		for i := range d {
			d[i] = 1.0 / NumLabels
		}
		return d
	}
	maxS := math.Inf(-1)
	for i := 0; i < NumLabels && i < len(scores); i++ {
		maxS = math.Max(maxS, scores[i])
	}
	var sum float64
	for i := 0; i < NumLabels && i < len(scores); i++ {
		d[i] = math.Exp(scores[i] - maxS)
		sum += d[i]
	}
	for i := range d {
		d[i] /= sum
	}
	return d
}

// PointMass places confidence on l and spreads the remainder evenly over the other labels.
func PointMass(l Label, confidence float64) Distribution {
	var d Distribution
	c := math.Max(0, math.Min(1, confidence))
	rest := (1 - c) / (NumLabels - 1)
	for i := range d {
		d[i] = rest
	}
	if l.Valid() {
		d[l] = c
	}
	return d
}

// TopTwoGap returns the difference between the largest and second largest values.
// Fewer than two values yields 0.
func TopTwoGap(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	top, second := math.Inf(-1), math.Inf(-1)
	for _, x := range xs {
		switch {
		case x > top:
			second = top
			top = x
		case x > second:
			second = x
		}
	}
	return top - second
}

// #endregion distribution-ops
