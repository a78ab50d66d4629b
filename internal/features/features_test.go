package features

import (
	"math"
	"reflect"
	"testing"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

func TestNamesOrder(t *testing.T) {
	want := []string{
		"p_q", "p_req", "p_stmt", "margin", "entropy", "log_len", "lang_zh",
		"cue_starts_wh", "cue_ends_q", "cue_imperative", "cue_zh_q", "cue_zh_please",
	}
	if !reflect.DeepEqual(Names[:], want) {
		t.Errorf("got %v", Names)
	}
}

func TestFromText_English(t *testing.T) {
	probs := act.Distribution{0.1, 0.6, 0.2, 0.05, 0.05, 0}
	v := FromText("What is the plan?", "", probs)

	if v[0] != 0.6 || v[1] != 0.2 || v[2] != 0.1 {
		t.Errorf("act probs = %v", v[:3])
	}
	if math.Abs(v[3]-0.4) > 1e-12 {
		t.Errorf("margin = %f, want 0.4", v[3])
	}
	if v[4] <= 0 || v[4] >= math.Log(6) {
		t.Errorf("entropy = %f out of range", v[4])
	}
	if math.Abs(v[5]-math.Log1p(17)) > 1e-12 {
		t.Errorf("log_len = %f", v[5])
	}
	if v[6] != 0 {
		t.Error("lang_zh should be 0")
	}
	wantBits := []float64{1, 1, 0, 0, 0}
	if !reflect.DeepEqual(v[7:], wantBits) {
		t.Errorf("cue bits = %v, want %v", v[7:], wantBits)
	}
}

func TestFromText_Chinese(t *testing.T) {
	v := FromText("请问现在系统可用吗？", "", act.PointMass(act.Question, 1))
	if v[6] != 1 {
		t.Error("lang_zh should be 1")
	}
	if math.Abs(v[5]-math.Log1p(10)) > 1e-12 {
		t.Errorf("log_len counts runes: got %f", v[5])
	}
	wantBits := []float64{0, 1, 1, 1, 1}
	if !reflect.DeepEqual(v[7:], wantBits) {
		t.Errorf("cue bits = %v, want %v", v[7:], wantBits)
	}
}

func TestFromSlice(t *testing.T) {
	if _, err := FromSlice(make([]float64, 11)); err == nil {
		t.Fatal("expected dimension error")
	}
	v, err := FromSlice(make([]float64, Dim))
	if err != nil || len(v.Slice()) != Dim {
		t.Fatalf("unexpected: %v %v", v, err)
	}
}

func TestFeatureSets(t *testing.T) {
	tests := []struct {
		set  Set
		want []string
	}{
		{SetAll, Names[:]},
		{SetUncertaintyOnly, []string{"margin", "entropy", "log_len"}},
		{SetActsOnly, []string{"p_q", "p_req", "p_stmt"}},
		{SetNoActs, Names[3:]},
	}
	for _, tt := range tests {
		t.Run(string(tt.set), func(t *testing.T) {
			if got := tt.set.Kept(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	var v Vector
	for i := range v {
		v[i] = float64(i + 1)
	}
	out, err := SetActsOnly.Apply(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 1 || out[2] != 3 || out[3] != 0 || out[11] != 0 {
		t.Errorf("got %v", out)
	}
	if _, err := Set("bogus").Apply(v); err == nil {
		t.Error("expected error for unknown set")
	}
}
