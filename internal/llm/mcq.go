package llm

import (
	"fmt"
	"math"
	"strings"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

// #region letters
const letters = "ABCDEFGHIJ"

// FormatMCQ appends a lettered option block to prompt.
func FormatMCQ(prompt string, options []string) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}
	if len(options) > len(letters) {
		return "", fmt.Errorf("%d options: %w", len(options), ErrTooManyOptions)
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(prompt, "\n"))
	b.WriteString("\n\n")
	for i, o := range options {
		fmt.Fprintf(&b, "%c. %s\n", letters[i], o)
	}
	b.WriteString("Answer with a single letter.\nAnswer:")
	return b.String(), nil
}

// #endregion letters

// #region logprobs
// LetterScores maps per-letter log-probabilities onto options. A letter the
// model never produced gets floor.
func LetterScores(tokenLogprobs map[string]float64, n int, floor float64) []float64 {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = floor
	}
	for tok, lp := range tokenLogprobs {
		t := strings.ToUpper(strings.TrimSpace(tok))
		t = strings.TrimSuffix(strings.TrimSuffix(t, "."), ")")
		if len(t) != 1 {
			continue
		}
		i := strings.IndexByte(letters, t[0])
		if i < 0 || i >= n {
			continue
		}
		scores[i] = math.Max(scores[i], lp)
	}
	return scores
}

// #endregion logprobs

// #region parse-choice
// ParseChoice maps a model reply to one of options. A leading letter wins;
// otherwise the reply is matched against option text and label keys.
func ParseChoice(reply string, options []string) (string, error) {
	r := strings.TrimSpace(reply)
	if r == "" {
		return "", ErrUnparseable
	}
	up := strings.ToUpper(r)
	if i := strings.IndexByte(letters, up[0]); i >= 0 && i < len(options) {
		if len(up) == 1 || !isLetter(up[1]) {
			return options[i], nil
		}
	}
	first := strings.Trim(strings.Fields(r)[0], ".,:;!?。，：")
	if i, ok := act.IndexOf(options, first); ok {
		return options[i], nil
	}
	lower := strings.ToLower(r)
	for _, o := range options {
		if strings.Contains(lower, strings.ToLower(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("reply %q: %w", reply, ErrUnparseable)
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// #endregion parse-choice
