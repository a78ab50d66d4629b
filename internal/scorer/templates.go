package scorer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

// #region templates
// Templates is the prompt set for one language. Templates embed {text}.
type Templates struct {
	Lang    act.Lang `yaml:"lang"`
	Options []string `yaml:"options"`
	MCQ     []string `yaml:"mcq_templates"`
	Word    []string `yaml:"word_templates"`
	Filler  string   `yaml:"calibration_filler"`
}

// Render substitutes text into template.
func Render(template, text string) string {
	return strings.ReplaceAll(template, "{text}", text)
}

// WordTemplates returns the vote templates, falling back to the MCQ set.
func (t Templates) WordTemplates() []string {
	if len(t.Word) > 0 {
		return t.Word
	}
	return t.MCQ
}

// Validate checks that options cover the label enumeration in canonical order.
func (t Templates) Validate() error {
	if len(t.Options) != act.NumLabels {
		return fmt.Errorf("%d options: %w", len(t.Options), ErrOptionOrder)
	}
	for i, o := range t.Options {
		l, err := act.Parse(o)
		if err != nil || int(l) != i {
			return fmt.Errorf("option %d %q: %w", i, o, ErrOptionOrder)
		}
	}
	if len(t.MCQ) == 0 && len(t.Word) == 0 {
		return ErrNoTemplates
	}
	return nil
}

// Hash identifies the prompt configuration for prior caching.
func (t Templates) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "lang=%s\nfiller=%s\n", t.Lang, t.Filler)
	for _, o := range t.Options {
		fmt.Fprintf(h, "opt=%s\n", o)
	}
	for _, m := range t.MCQ {
		fmt.Fprintf(h, "mcq=%s\n", m)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// priorKey scopes the template hash to a scoring backend, since each model
// carries its own label bias.
func priorKey(t Templates, backend string) string {
	if backend == "" {
		return t.Hash()
	}
	sum := sha256.Sum256([]byte(t.Hash() + "\nbackend=" + backend))
	return hex.EncodeToString(sum[:])[:16]
}

// #endregion templates

// #region defaults
// DefaultTemplates returns the built-in prompt set for lang.
func DefaultTemplates(lang act.Lang) Templates {
	if lang == act.LangZH {
		return Templates{
			Lang:    act.LangZH,
			Options: []string{"陈述", "疑问", "请求", "承诺", "表达", "宣告"},
			MCQ: []string{
				"判断下面这句话的言语行为类型。\n句子：「{text}」",
				"说话人用这句话在做什么？\n句子：{text}",
				"言语行为分类。文本：{text}\n哪一类最合适？",
			},
			Filler: "N/A",
		}
	}
	return Templates{
		Lang:    act.LangEN,
		Options: []string{"statement", "question", "request", "promise", "expressive", "declaration"},
		MCQ: []string{
			"Classify the speech act of the utterance.\nUtterance: \"{text}\"",
			"What is the speaker doing with this sentence?\nSentence: {text}",
			"Speech act analysis. Text: {text}\nWhich category fits best?",
		},
		Filler: "N/A",
	}
}

// LoadTemplates reads a YAML template file. Missing fields fall back to the
// defaults for the file's language.
func LoadTemplates(path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Templates{}, fmt.Errorf("read templates %s: %w", path, err)
	}
	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Templates{}, fmt.Errorf("parse templates %s: %w", path, err)
	}
	def := DefaultTemplates(t.Lang)
	if t.Lang == "" {
		t.Lang = def.Lang
	}
	if len(t.Options) == 0 {
		t.Options = def.Options
	}
	if t.Filler == "" {
		t.Filler = def.Filler
	}
	if err := t.Validate(); err != nil {
		return Templates{}, fmt.Errorf("templates %s: %w", path, err)
	}
	return t, nil
}

// #endregion defaults
