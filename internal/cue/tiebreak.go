package cue

import (
	"regexp"
	"strings"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

// #region patterns

var (
	zhTieQuestionRe    = regexp.MustCompile(`(吗|呢|什么|为何|为什么).*[？?]$`)
	zhTieRequestRe     = regexp.MustCompile(`(^请|请.*?。|麻烦|能否|可以.*?吗)`)
	zhTiePromiseRe     = regexp.MustCompile(`(保证|承诺)`)
	zhTieExpressiveRe  = regexp.MustCompile(`(谢谢|多谢|抱歉|对不起)`)
	zhTieDeclarationRe = regexp.MustCompile(`(兹宣布|宣布|特此声明)`)

	enTieImperativeRe = regexp.MustCompile(`^(summarize|open|list|explain|give|write|translate|show|provide|compute|calculate|answer)\b`)
	enTieWillRe       = regexp.MustCompile(`\b(i|we)\s+will\b`)
)

var enTieRequestPhrases = []string{"please", "could you", "would you", "can you", "kindly"}

var enTiePromisePhrases = []string{"i promise", "we promise"}

var enTieExpressivePhrases = []string{"thanks", "thank you", "sorry", "apologies"}

var enTieDeclarationPhrases = []string{"hereby declare", "is hereby declared"}

// #endregion patterns

// #region tie-break
// TieBreak is the disambiguation table consulted when a discrete vote is too
// flat to trust. Checks run question, request, promise, expressive, declaration.
func TieBreak(text string, lang act.Lang) (act.Label, bool) {
	raw, lower := normalize(text)
	if lang == act.LangZH {
		switch {
		case strings.Contains(raw, "？") || zhTieQuestionRe.MatchString(raw):
			return act.Question, true
		case zhTieRequestRe.MatchString(raw):
			return act.Request, true
		case zhTiePromiseRe.MatchString(raw):
			return act.Promise, true
		case zhTieExpressiveRe.MatchString(raw):
			return act.Expressive, true
		case zhTieDeclarationRe.MatchString(raw):
			return act.Declaration, true
		}
		return 0, false
	}

	switch {
	case strings.Contains(raw, "?"):
		return act.Question, true
	case containsAny(lower, enTieRequestPhrases) || enTieImperativeRe.MatchString(lower):
		return act.Request, true
	case containsAny(lower, enTiePromisePhrases) || enTieWillRe.MatchString(lower):
		return act.Promise, true
	case containsAny(lower, enTieExpressivePhrases):
		return act.Expressive, true
	case containsAny(lower, enTieDeclarationPhrases):
		return act.Declaration, true
	}
	return 0, false
}

// #endregion tie-break
