package features

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/cue"
)

// #region layout
// Dim is the fixed feature dimension shared with trained gain models.
const Dim = 12

// Vector is the gate's input. Order matters: see Names.
type Vector [Dim]float64

// Names lists feature names in vector order.
var Names = [Dim]string{
	"p_q", "p_req", "p_stmt", "margin", "entropy", "log_len", "lang_zh",
	"cue_starts_wh", "cue_ends_q", "cue_imperative", "cue_zh_q", "cue_zh_please",
}

const (
	idxPQ = iota
	idxPReq
	idxPStmt
	idxMargin
	idxEntropy
	idxLogLen
	idxLangZH
	idxCueStart
)

// #endregion layout

// #region build
// Input is everything needed to build one feature vector.
type Input struct {
	Text  string
	Lang  act.Lang
	Probs act.Distribution
	Bits  cue.Bits
}

// Build assembles the vector. The margin is the top-two gap of Probs, so it
// is on the probability scale regardless of which probe path produced them.
func Build(in Input) Vector {
	var v Vector
	v[idxPQ] = in.Probs[act.Question]
	v[idxPReq] = in.Probs[act.Request]
	v[idxPStmt] = in.Probs[act.Statement]
	v[idxMargin] = in.Probs.Margin()
	v[idxEntropy] = in.Probs.Entropy()
	v[idxLogLen] = math.Log1p(float64(utf8.RuneCountInString(in.Text)))
	if in.Lang == act.LangZH {
		v[idxLangZH] = 1
	}
	bits := in.Bits.Vector()
	copy(v[idxCueStart:], bits[:])
	return v
}

// FromText builds the vector, deriving language and cue bits from text.
func FromText(text string, lang act.Lang, probs act.Distribution) Vector {
	if lang == "" {
		lang = act.DetectLang(text)
	}
	return Build(Input{Text: text, Lang: lang, Probs: probs, Bits: cue.ExtractBits(text)})
}

// Slice returns the vector as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Dim)
	copy(out, v[:])
	return out
}

// FromSlice converts a slice of exactly Dim values.
func FromSlice(xs []float64) (Vector, error) {
	var v Vector
	if len(xs) != Dim {
		return v, fmt.Errorf("feature vector has %d values, want %d", len(xs), Dim)
	}
	copy(v[:], xs)
	return v, nil
}

// #endregion build

// #region feature-sets
// Set names a subset of features a gain model was trained on.
type Set string

const (
	SetAll             Set = "all"
	SetNoActs          Set = "no_acts"
	SetUncertaintyOnly Set = "uncertainty_only"
	SetActsOnly        Set = "acts_only"
)

var actNames = []string{"p_q", "p_req", "p_stmt"}

var uncertaintyNames = []string{"margin", "entropy", "log_len"}

// Mask returns 1 for kept features and 0 for dropped ones.
func (s Set) Mask() ([Dim]float64, error) {
	var m [Dim]float64
	keep := func(names []string) {
		for i, n := range Names {
			for _, k := range names {
				if n == k {
					m[i] = 1
				}
			}
		}
	}
	switch s {
	case SetAll, "":
		for i := range m {
			m[i] = 1
		}
	case SetNoActs:
		for i := range m {
			m[i] = 1
		}
		for i, n := range Names {
			if isAny(n, actNames) {
				m[i] = 0
			}
		}
	case SetUncertaintyOnly:
		keep(uncertaintyNames)
	case SetActsOnly:
		keep(actNames)
	default:
		return m, fmt.Errorf("unknown feature set %q", string(s))
	}
	return m, nil
}

// Apply zeroes the features outside the set.
func (s Set) Apply(v Vector) (Vector, error) {
	m, err := s.Mask()
	if err != nil {
		return v, err
	}
	for i := range v {
		v[i] *= m[i]
	}
	return v, nil
}

// Kept returns the names of the features the set keeps, in vector order.
func (s Set) Kept() []string {
	m, err := s.Mask()
	if err != nil {
		return nil
	}
	var out []string
	for i, n := range Names {
		if m[i] == 1 {
			out = append(out, n)
		}
	}
	return out
}

func isAny(s string, list []string) bool {
	for _, x := range list {
		if strings.EqualFold(s, x) {
			return true
		}
	}
	return false
}

// #endregion feature-sets
