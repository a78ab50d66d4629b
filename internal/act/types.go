package act

// #region label
// Label is a speech-act category. The integer value is the position in the
// canonical option order shared by the scorer, features, and gate.
type Label int

const (
	Statement Label = iota
	Question
	Request
	Promise
	Expressive
	Declaration
)

// NumLabels is the size of the canonical label enumeration.
const NumLabels = 6

// Labels lists every label in canonical order.
var Labels = [NumLabels]Label{Statement, Question, Request, Promise, Expressive, Declaration}

var englishKeys = [NumLabels]string{"statement", "question", "request", "promise", "expressive", "declaration"}

var chineseKeys = [NumLabels]string{"陈述", "疑问", "请求", "承诺", "表达", "宣告"}

// #endregion label

// #region lang
// Lang tags the language of an utterance.
type Lang string

const (
	LangEN Lang = "en"
	LangZH Lang = "zh"
)

// #endregion lang

// #region utterance
// Utterance is an input text with its language tag.
type Utterance struct {
	Text string
	Lang Lang
}

// #endregion utterance

// #region distribution
// Distribution is a probability vector aligned to the canonical label order.
type Distribution [NumLabels]float64

// #endregion distribution
