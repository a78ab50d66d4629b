package cue

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

// #region engine
// Engine evaluates an ordered rule table. First match wins.
type Engine struct {
	rules []Rule
}

// NewEngine returns the engine for the given language. Unknown languages use the English table.
func NewEngine(lang act.Lang) *Engine {
	return NewEngineWithRules(Rules(lang))
}

// NewEngineWithRules builds an engine over a caller-supplied table.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns a copy of the built-in table for lang.
func Rules(lang act.Lang) []Rule {
	src := enRules
	if lang == act.LangZH {
		src = zhRules
	}
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}

// #endregion engine

// #region match
// Match returns the first rule that fires on text.
func (e *Engine) Match(text string) (Hit, bool) {
	raw, lower := normalize(text)
	if raw == "" {
		return Hit{}, false
	}
	for _, r := range e.rules {
		if r.Match(raw, lower) {
			return Hit{Label: r.Label, Confidence: r.Confidence, Rule: r.Name}, true
		}
	}
	return Hit{}, false
}

// Detect runs the table matching the detected language of text.
func Detect(text string) (Hit, bool) {
	return NewEngine(act.DetectLang(text)).Match(text)
}

// normalize returns the NFC form of the trimmed text and its lowercase fold.
func normalize(text string) (raw, lower string) {
	raw = strings.TrimSpace(norm.NFC.String(text))
	raw = strings.ReplaceAll(raw, "’", "'")
	lower = cases.Lower(language.Und).String(raw)
	return raw, lower
}

// #endregion match

// #region bits
// ExtractBits computes the lexical cue bits for text.
func ExtractBits(text string) Bits {
	raw, lower := normalize(text)
	return Bits{
		StartsWH:   hasPrefixAny(lower, enWHWords),
		EndsQMark:  endsWithQMark(raw),
		Imperative: strings.Contains(lower, "please") || strings.Contains(raw, "请"),
		ZHQMark:    strings.Contains(raw, "？"),
		ZHPlease:   strings.Contains(raw, "请"),
	}
}

// #endregion bits
