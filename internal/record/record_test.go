package record

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/gate"
	"github.com/Jingtingtina/pragact-router/internal/probe"
	"github.com/Jingtingtina/pragact-router/internal/router"
	"github.com/Jingtingtina/pragact-router/internal/scorer"
)

const sample = `{"id":"1","text":"What is the plan?","lang":"en","probe_probs":{"question":0.7,"request":0.2,"statement":0.1},"score_base":{"f1":0.4}}

{"id":"2","text":"请帮我总结这篇文章。","probe_margin":0.05,"score_base":{"f1":0.9,"rougeL":0.5}}
`

func TestRead(t *testing.T) {
	recs, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].ID != "1" || recs[1].Text != "请帮我总结这篇文章。" {
		t.Errorf("unexpected records: %+v", recs)
	}
}

func TestReadRejectsBadLines(t *testing.T) {
	if _, err := Read(strings.NewReader("{not json}\n")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Read(strings.NewReader(`{"text":"no id"}` + "\n")); !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestWriteReadRoundTripKeepsChinese(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(Record{ID: "z", Text: "请问<现在>可以吗？"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "请问<现在>可以吗？") {
		t.Errorf("text escaped: %s", buf.String())
	}
	recs, err := Read(&buf)
	if err != nil || len(recs) != 1 || recs[0].Text != "请问<现在>可以吗？" {
		t.Fatalf("round trip failed: %v %+v", err, recs)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	in := []Record{{ID: "a", Text: "x"}, {ID: "b", Text: "y", Chosen: "heavy"}}
	if err := WriteFile(path, in); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out) != 2 || out[1].Chosen != "heavy" {
		t.Errorf("got %+v", out)
	}
}

func TestMarginReconstructedFromProbs(t *testing.T) {
	recs, _ := Read(strings.NewReader(sample))
	if m := recs[0].Margin(); math.Abs(m-0.5) > 1e-12 {
		t.Errorf("reconstructed margin = %f, want 0.5", m)
	}
	if m := recs[1].Margin(); m != 0.05 {
		t.Errorf("recorded margin = %f, want 0.05", m)
	}
}

func TestProbsAcceptsChineseKeys(t *testing.T) {
	r := Record{ProbeProbs: map[string]float64{"疑问": 0.6, "请求": 0.3, "bogus": 1}}
	d := r.Probs()
	if d[act.Question] != 0.6 || d[act.Request] != 0.3 {
		t.Errorf("got %v", d)
	}
}

func TestLanguageDetectedWhenMissing(t *testing.T) {
	recs, _ := Read(strings.NewReader(sample))
	if recs[0].Language() != act.LangEN || recs[1].Language() != act.LangZH {
		t.Errorf("languages = %s, %s", recs[0].Language(), recs[1].Language())
	}
	if v := recs[1].Features(); v[6] != 1 {
		t.Error("lang_zh feature should be set")
	}
}

func TestQualityByTask(t *testing.T) {
	r := Record{ScoreBase: map[string]float64{"f1": 0.4, "rougeL": 0.3}, ScoreHeavy: map[string]float64{"f1": 0.8}}
	tests := []struct {
		task  Task
		heavy bool
		want  float64
	}{
		{TaskQA, false, 0.4},
		{TaskQA, true, 0.8},
		{TaskInstr, false, 0.3},
		{TaskInstr, true, 0},
	}
	for _, tt := range tests {
		got, err := r.Quality(tt.task, tt.heavy)
		if err != nil || got != tt.want {
			t.Errorf("%s heavy=%v: got %f, %v", tt.task, tt.heavy, got, err)
		}
	}
	if _, err := r.Quality("chat", false); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestGainLabel(t *testing.T) {
	if GainLabel(0.4, 0.8, 0) != 1 {
		t.Error("improvement should be labelled 1")
	}
	if GainLabel(0.4, 0.4, 0) != 0 {
		t.Error("no change should be labelled 0")
	}
	if GainLabel(0.4, 0.45, 0.1) != 0 {
		t.Error("gain under delta should be labelled 0")
	}
}

func TestPairAndTrainRow(t *testing.T) {
	base := []Record{
		{ID: "1", Text: "Please summarize this.", ScoreBase: map[string]float64{"f1": 0.2}},
		{ID: "2", Text: "Hi.", ScoreBase: map[string]float64{"f1": 0.9}},
	}
	heavy := []Record{
		{ID: "2", ScoreHeavy: map[string]float64{"f1": 0.9}, CostHeavy: 50},
		{ID: "1", ScoreHeavy: map[string]float64{"f1": 0.7}, CostHeavy: 120},
	}
	paired, err := Pair(base, heavy)
	if err != nil {
		t.Fatalf("Pair: %v", err)
	}
	if paired[0].ID != "1" || paired[0].CostHeavy != 120 || paired[0].ScoreHeavy["f1"] != 0.7 {
		t.Errorf("paired[0] = %+v", paired[0])
	}

	row, err := paired[0].TrainRow(TaskQA, 0)
	if err != nil {
		t.Fatalf("TrainRow: %v", err)
	}
	if *row.Gain != 1 || math.Abs(*row.DeltaScore-0.5) > 1e-12 || row.Cost != 120 {
		t.Errorf("row = %+v", row)
	}
	if row.CueBits["imperative"] != 1 || row.CueBits["starts_wh"] != 0 {
		t.Errorf("cue bits = %v", row.CueBits)
	}
	row2, _ := paired[1].TrainRow(TaskQA, 0)
	if *row2.Gain != 0 {
		t.Error("equal scores should not be a gain")
	}

	if _, err := Pair(base, heavy[:1]); !errors.Is(err, ErrMissingPair) {
		t.Errorf("expected ErrMissingPair, got %v", err)
	}
}

func TestItems(t *testing.T) {
	m := 0.1
	recs := []Record{{
		ID:          "1",
		Text:        "Why?",
		ProbeMargin: &m,
		CostHeavy:   80,
		ScoreBase:   map[string]float64{"rougeL": 0.3},
		ScoreHeavy:  map[string]float64{"rougeL": 0.6},
	}}
	items, err := Items(recs, TaskInstr)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	it := items[0]
	if it.Margin != 0.1 || it.Cost != 80 || it.BaseQuality != 0.3 || it.HeavyQuality != 0.6 {
		t.Errorf("item = %+v", it)
	}
	if it.Features[7] != 1 || it.Features[8] != 1 {
		t.Errorf("cue features = %v", it.Features[7:])
	}
	if _, err := Items(recs, "bogus"); err == nil {
		t.Error("expected task error")
	}
}

func TestSetOutcomeKeepsSuppliedLang(t *testing.T) {
	r := Record{ID: "1", Text: "FYI: 张伟 joins on Monday.", Lang: act.LangEN}
	if u := r.Utterance(); u.Lang != act.LangEN || u.Text != r.Text {
		t.Fatalf("utterance = %+v", u)
	}
	r.SetOutcome(probe.Outcome{
		Result: scorer.Result{Label: act.Statement, Margin: 1.0, Source: scorer.SourceFastCue},
		Lang:   act.LangZH,
		Probs:  act.PointMass(act.Statement, 1.0),
	}, nil)
	if r.Lang != act.LangEN {
		t.Errorf("lang = %q, want the supplied en tag", r.Lang)
	}
	if r.Features()[6] != 0 { // lang_zh
		t.Error("lang_zh feature must follow the supplied tag")
	}
}

func TestSetOutcomeAndDecision(t *testing.T) {
	r := Record{ID: "1", Text: "Could you please explain the experiment?", Error: "old"}
	o := probe.Outcome{
		Result: scorer.Result{Label: act.Request, Margin: 1.0, Source: scorer.SourceFastCue},
		Lang:   act.LangEN,
		Probs:  act.PointMass(act.Request, 1.0),
		Meta:   probe.Meta{Source: scorer.SourceFastCue, Rule: "en_polite_request"},
	}
	r.SetOutcome(o, []router.Action{router.PromptStepByStep})

	if r.ProbeLabel != "request" || *r.ProbeMargin != 1.0 || r.ProbeSource != "fast_cue" || r.Error != "" {
		t.Errorf("record = %+v", r)
	}
	if r.Lang != act.LangEN {
		t.Errorf("lang = %q, want detected en", r.Lang)
	}
	if r.ProbeProbs["request"] != 1.0 || len(r.ProbeProbs) != act.NumLabels {
		t.Errorf("probs = %v", r.ProbeProbs)
	}
	if len(r.Actions) != 1 || r.Actions[0] != string(router.PromptStepByStep) {
		t.Errorf("actions = %v", r.Actions)
	}

	d := gate.DecideProba(0.5, 100, gate.DefaultParams())
	r.SetDecision(d, true)
	if r.Chosen != "heavy" || r.Cost != 100 || r.PGain == nil || *r.PGain != 0.5 {
		t.Errorf("decision fields = %+v", r)
	}
	r2 := Record{}
	r2.SetDecision(gate.NewMarginGate(0.25).Decide(0.9), false)
	if r2.Chosen != "base" || r2.PGain != nil {
		t.Errorf("margin decision fields = %+v", r2)
	}
}
