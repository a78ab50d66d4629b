package record

import (
	"fmt"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/cue"
	"github.com/Jingtingtina/pragact-router/internal/features"
	"github.com/Jingtingtina/pragact-router/internal/frontier"
	"github.com/Jingtingtina/pragact-router/internal/gate"
	"github.com/Jingtingtina/pragact-router/internal/probe"
	"github.com/Jingtingtina/pragact-router/internal/router"
)

// #region probe-fields
// Utterance returns the record's text and language tag for probing. An
// empty tag is left for the probe to detect.
func (r Record) Utterance() act.Utterance {
	return act.Utterance{Text: r.Text, Lang: r.Lang}
}

// SetOutcome stores a probe outcome and its routing plan on the record. A
// language tag supplied with the input is kept.
func (r *Record) SetOutcome(o probe.Outcome, actions []router.Action) {
	margin := o.Margin
	if r.Lang == "" {
		r.Lang = o.Lang
	}
	r.ProbeLabel = o.Label.Key()
	r.ProbeMargin = &margin
	r.ProbeSource = string(o.Meta.Source)
	r.ProbeRule = o.Meta.Rule
	r.ProbeProbs = ProbsMap(o.Probs)
	r.CueBits = BitsMap(cue.ExtractBits(r.Text))
	r.Actions = router.Strings(actions)
	r.Error = ""
}

// SetError marks the record as failed. Failed records gate to base.
func (r *Record) SetError(err error) {
	r.Error = err.Error()
}

// ProbsMap keys a distribution by English label.
func ProbsMap(d act.Distribution) map[string]float64 {
	out := make(map[string]float64, act.NumLabels)
	for _, l := range act.Labels {
		out[l.Key()] = d[l]
	}
	return out
}

// BitsMap renders cue bits as 0/1 integers.
func BitsMap(b cue.Bits) map[string]int {
	v := b.Vector()
	keys := [cue.NumBits]string{"starts_wh", "ends_qmark", "imperative", "zh_qmark", "zh_request_please"}
	out := make(map[string]int, cue.NumBits)
	for i, k := range keys {
		out[k] = int(v[i])
	}
	return out
}

// #endregion probe-fields

// #region derived
// Probs returns the stored probe distribution. Keys may be English or Chinese.
func (r Record) Probs() act.Distribution {
	var d act.Distribution
	for k, v := range r.ProbeProbs {
		if l, err := act.Parse(k); err == nil {
			d[l] = v
		}
	}
	return d
}

// Margin returns probe_margin, or the top-two gap of probe_probs when the
// margin was not recorded.
func (r Record) Margin() float64 {
	if r.ProbeMargin != nil {
		return *r.ProbeMargin
	}
	d := r.Probs()
	return act.TopTwoGap(d[:])
}

// Language returns the recorded language, detecting it from text if unset.
func (r Record) Language() act.Lang {
	if r.Lang != "" {
		return r.Lang
	}
	return act.DetectLang(r.Text)
}

// Features builds the gate feature vector. Cue bits are recomputed from text.
func (r Record) Features() features.Vector {
	return features.Build(features.Input{
		Text:  r.Text,
		Lang:  r.Language(),
		Probs: r.Probs(),
		Bits:  cue.ExtractBits(r.Text),
	})
}

// Quality returns the base or heavy score for the task metric. A missing
// score counts as zero.
func (r Record) Quality(task Task, heavy bool) (float64, error) {
	metric, err := task.Metric()
	if err != nil {
		return 0, err
	}
	if heavy {
		return r.ScoreHeavy[metric], nil
	}
	return r.ScoreBase[metric], nil
}

// #endregion derived

// #region gating
// SetDecision stores a gate decision. The probability is recorded only for
// the learned gate; the margin gate records the heavy cost it did not weigh.
func (r *Record) SetDecision(d gate.Decision, learned bool) {
	r.Chosen = string(d.Chosen)
	if !learned {
		r.Cost = r.CostHeavy
		return
	}
	p := d.Probability
	r.PGain = &p
	r.Cost = d.Cost
}

// GainLabel is 1 when heavy beats base by more than delta.
func GainLabel(base, heavy, delta float64) int {
	if heavy-base > delta {
		return 1
	}
	return 0
}

// Pair joins base records with their heavy counterparts by id, copying the
// heavy scores and heavy cost onto a copy of each base record. Output keeps
// base order.
func Pair(base, heavy []Record) ([]Record, error) {
	byID := make(map[string]Record, len(heavy))
	for _, h := range heavy {
		byID[h.ID] = h
	}
	out := make([]Record, 0, len(base))
	for _, b := range base {
		h, ok := byID[b.ID]
		if !ok {
			return nil, fmt.Errorf("%w %s", ErrMissingPair, b.ID)
		}
		b.ScoreHeavy = h.ScoreHeavy
		b.CostHeavy = h.CostHeavy
		out = append(out, b)
	}
	return out, nil
}

// TrainRow builds a gain-model training row from a paired record.
func (r Record) TrainRow(task Task, delta float64) (Record, error) {
	sb, err := r.Quality(task, false)
	if err != nil {
		return Record{}, err
	}
	sh, _ := r.Quality(task, true)
	d := sh - sb
	gain := GainLabel(sb, sh, delta)
	return Record{
		ID:         r.ID,
		Text:       r.Text,
		Lang:       r.Language(),
		ProbeProbs: r.ProbeProbs,
		CueBits:    BitsMap(cue.ExtractBits(r.Text)),
		Cost:       r.CostHeavy,
		DeltaScore: &d,
		Gain:       &gain,
	}, nil
}

// Item converts a paired record into a sweep item.
func (r Record) Item(task Task) (frontier.Item, error) {
	sb, err := r.Quality(task, false)
	if err != nil {
		return frontier.Item{}, err
	}
	sh, _ := r.Quality(task, true)
	return frontier.Item{
		ID:           r.ID,
		Features:     r.Features(),
		Margin:       r.Margin(),
		Cost:         r.CostHeavy,
		BaseQuality:  sb,
		HeavyQuality: sh,
		Failed:       r.Error != "",
	}, nil
}

// Items converts paired records into sweep items.
func Items(recs []Record, task Task) ([]frontier.Item, error) {
	out := make([]frontier.Item, 0, len(recs))
	for _, r := range recs {
		it, err := r.Item(task)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", r.ID, err)
		}
		out = append(out, it)
	}
	return out, nil
}

// #endregion gating
