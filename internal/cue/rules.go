package cue

import (
	"regexp"
	"strings"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

// #region en-keywords

var enNoticePrefixes = []string{
	"please note", "note that", "fyi", "for your information",
	"as a reminder", "just a reminder", "reminder:", "heads up", "heads-up",
	"please be advised", "please be aware",
}

var enPoliteRequestPhrases = []string{
	"could you please", "would you please", "can you please", "will you please",
	"would you mind", "would you be able to", "kindly",
}

var enModalPrefixes = []string{"could you", "can you", "would you", "will you"}

var enKnowledgeVerbs = []string{"explain", "tell", "describe", "clarify", "say"}

var enDeclarationPhrases = []string{
	"hereby", "we declare", "i declare", "i pronounce", "is adjourned", "is now open", "is now closed",
}

var enPromisePhrases = []string{"i promise", "we promise", "i guarantee", "we guarantee", "i swear"}

var enExpressivePhrases = []string{
	"thank", "sorry", "apolog", "congratulations", "congrats", "i appreciate", "we appreciate",
}

var enWHWords = []string{"who", "what", "when", "where", "why", "how", "which"}

var enAuxStarts = []string{"is", "are", "was", "were", "do", "does", "did", "has", "have", "should", "may"}

var enImperativeVerbs = []string{
	"summarize", "open", "list", "explain", "give", "write", "translate", "show",
	"provide", "compute", "calculate", "answer", "update", "send", "check", "create", "describe",
}

var enHedgePhrases = []string{
	"it seems", "it looks like", "it would be great", "it would be nice", "apparently", "it appears",
}

var enWillRe = regexp.MustCompile(`^(i|we)\s+will\b|^(i|we)'ll\b|\b(i|we)\s+will\s+(send|do|get|make|finish|deliver|call|follow)\b`)

// #endregion en-keywords

// #region zh-keywords

var zhNoticePhrases = []string{"请注意", "请知悉", "特此通知", "温馨提示", "提醒一下", "通知："}

var zhPoliteRequestPhrases = []string{"麻烦", "能否", "可否", "劳驾", "请帮", "请你", "请您"}

var zhDeclarationPhrases = []string{"兹宣布", "特此宣布", "特此声明", "宣布"}

var zhPromisePhrases = []string{"保证", "承诺", "我会", "我们会", "一定会"}

var zhExpressivePhrases = []string{"谢谢", "多谢", "感谢", "抱歉", "对不起", "恭喜"}

var zhHedgePhrases = []string{"看起来", "似乎", "好像"}

// #endregion zh-keywords

// #region en-table

// enRules is the English table. Notices precede polite requests, which precede
// knowledge-seeking modal questions, which precede the generic modal request.
// The generic question-mark rule comes after all of them.
var enRules = []Rule{
	{Name: "en_notice", Label: act.Statement, Confidence: ConfidenceStrong, Match: func(_, lower string) bool {
		return hasPrefixAny(lower, enNoticePrefixes)
	}},
	{Name: "en_polite_request", Label: act.Request, Confidence: ConfidenceStrong, Match: func(_, lower string) bool {
		return containsAny(lower, enPoliteRequestPhrases) || strings.HasPrefix(lower, "please ")
	}},
	{Name: "en_knowledge_question", Label: act.Question, Confidence: ConfidenceStrong, Match: func(_, lower string) bool {
		for _, p := range enModalPrefixes {
			if rest, ok := strings.CutPrefix(lower, p+" "); ok && hasPrefixAny(rest, enKnowledgeVerbs) {
				return true
			}
		}
		return false
	}},
	{Name: "en_modal_request", Label: act.Request, Confidence: ConfidenceStrong, Match: func(_, lower string) bool {
		return hasWordPrefixAny(lower, enModalPrefixes)
	}},
	{Name: "en_declaration", Label: act.Declaration, Confidence: ConfidenceStrong, Match: func(_, lower string) bool {
		return containsAny(lower, enDeclarationPhrases)
	}},
	{Name: "en_promise", Label: act.Promise, Confidence: ConfidenceStrong, Match: func(_, lower string) bool {
		return containsAny(lower, enPromisePhrases) || enWillRe.MatchString(lower)
	}},
	{Name: "en_expressive", Label: act.Expressive, Confidence: ConfidenceStrong, Match: func(_, lower string) bool {
		return containsAny(lower, enExpressivePhrases)
	}},
	{Name: "en_question_mark", Label: act.Question, Confidence: ConfidenceStrong, Match: func(raw, lower string) bool {
		return endsWithQMark(raw) || (hasWordPrefixAny(lower, enWHWords) && strings.Contains(raw, "?"))
	}},
	{Name: "en_wh_or_aux_start", Label: act.Question, Confidence: ConfidenceWeak, Match: func(_, lower string) bool {
		return hasWordPrefixAny(lower, enWHWords) || hasWordPrefixAny(lower, enAuxStarts)
	}},
	{Name: "en_imperative", Label: act.Request, Confidence: ConfidenceStrong, Match: func(_, lower string) bool {
		return hasWordPrefixAny(lower, enImperativeVerbs)
	}},
	{Name: "en_hedge", Label: act.Statement, Confidence: ConfidenceWeak, Match: func(_, lower string) bool {
		return hasPrefixAny(lower, enHedgePhrases)
	}},
}

// #endregion en-table

// #region zh-table

// zhRules is the Chinese table. Notices, 请问 and a 吗/呢 particle with a
// trailing ？ precede the polite-request and declaration patterns, so a
// particle question stays a question even when it contains a request verb.
var zhRules = []Rule{
	{Name: "zh_notice", Label: act.Statement, Confidence: ConfidenceStrong, Match: func(raw, _ string) bool {
		return containsAny(raw, zhNoticePhrases)
	}},
	{Name: "zh_qingwen", Label: act.Question, Confidence: ConfidenceStrong, Match: func(raw, _ string) bool {
		return strings.Contains(raw, "请问")
	}},
	{Name: "zh_particle_question", Label: act.Question, Confidence: ConfidenceStrong, Match: func(raw, _ string) bool {
		return endsWithQMark(raw) && (strings.Contains(raw, "吗") || strings.Contains(raw, "呢"))
	}},
	{Name: "zh_polite_request", Label: act.Request, Confidence: ConfidenceStrong, Match: func(raw, _ string) bool {
		return containsAny(raw, zhPoliteRequestPhrases) || strings.HasPrefix(raw, "请")
	}},
	{Name: "zh_declaration", Label: act.Declaration, Confidence: ConfidenceStrong, Match: func(raw, _ string) bool {
		return containsAny(raw, zhDeclarationPhrases)
	}},
	{Name: "zh_promise", Label: act.Promise, Confidence: ConfidenceStrong, Match: func(raw, _ string) bool {
		return containsAny(raw, zhPromisePhrases)
	}},
	{Name: "zh_expressive", Label: act.Expressive, Confidence: ConfidenceStrong, Match: func(raw, _ string) bool {
		return containsAny(raw, zhExpressivePhrases)
	}},
	{Name: "zh_question_mark", Label: act.Question, Confidence: ConfidenceStrong, Match: func(raw, _ string) bool {
		return endsWithQMark(raw)
	}},
	{Name: "zh_hedge", Label: act.Statement, Confidence: ConfidenceWeak, Match: func(raw, _ string) bool {
		return containsAny(raw, zhHedgePhrases)
	}},
}

// #endregion zh-table

// #region helpers

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// hasWordPrefixAny matches prefixes only on a word boundary, so "is" does not match "island".
func hasWordPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(s, p)
		if !ok {
			continue
		}
		if rest == "" || !isWordByte(rest[0]) {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '\'' || b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func endsWithQMark(s string) bool {
	return strings.HasSuffix(s, "?") || strings.HasSuffix(s, "？")
}

// #endregion helpers
