package act

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"statement", Statement},
		{"Question", Question},
		{" REQUEST ", Request},
		{"promise", Promise},
		{"Expressive", Expressive},
		{"declaration", Declaration},
		{"陈述", Statement},
		{"疑问", Question},
		{"请求", Request},
		{"承诺", Promise},
		{"表达", Expressive},
		{"宣告", Declaration},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	if _, err := Parse("command"); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

func TestLabelOrderIsStable(t *testing.T) {
	want := []string{"statement", "question", "request", "promise", "expressive", "declaration"}
	for i, l := range Labels {
		if int(l) != i {
			t.Errorf("label %v at position %d", l, i)
		}
		if l.Key() != want[i] {
			t.Errorf("position %d: got %q, want %q", i, l.Key(), want[i])
		}
	}
}

func TestBilingualKeysMapToSameLabel(t *testing.T) {
	for _, l := range Labels {
		en, _ := Parse(KeyFor(l, LangEN))
		zh, _ := Parse(KeyFor(l, LangZH))
		if en != zh || en != l {
			t.Errorf("label %v: en=%v zh=%v", l, en, zh)
		}
	}
}

func TestIndexOf(t *testing.T) {
	options := []string{"Statement", "Question", "Request", "Promise", "Expressive", "Declaration"}
	if i, ok := IndexOf(options, "request"); !ok || i != 2 {
		t.Errorf("got (%d, %v), want (2, true)", i, ok)
	}
	if i, ok := IndexOf(options, "疑问"); !ok || i != 1 {
		t.Errorf("got (%d, %v), want (1, true)", i, ok)
	}
	if _, ok := IndexOf(options, "banana"); ok {
		t.Error("expected no match")
	}
}

func TestDetectLang(t *testing.T) {
	if DetectLang("Could you explain?") != LangEN {
		t.Error("expected en")
	}
	if DetectLang("请问现在系统可用吗？") != LangZH {
		t.Error("expected zh")
	}
	u := NewUtterance("兹宣布比赛结束。", "")
	if u.Lang != LangZH {
		t.Errorf("got %q, want zh", u.Lang)
	}
}

func TestTopTwoGap(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{1}, 0},
		{"ordered", []float64{-0.5, -2.0, -1.0}, 0.5},
		{"tie", []float64{0.3, 0.3, 0.1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopTwoGap(tt.xs); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSoftmaxSumsToOne(t *testing.T) {
	d := Softmax([]float64{-1, -2, -3, -4, -5, -6})
	var sum float64
	for _, p := range d {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("sum = %f", sum)
	}
	if d.Argmax() != Statement {
		t.Errorf("argmax = %v", d.Argmax())
	}
}

func TestPointMass(t *testing.T) {
	d := PointMass(Question, 1.0)
	if d[Question] != 1 || d.Margin() != 1 {
		t.Errorf("got %v", d)
	}
	d = PointMass(Promise, 0.5)
	if math.Abs(d[Statement]-0.1) > 1e-12 {
		t.Errorf("remainder = %f, want 0.1", d[Statement])
	}
}

func TestEntropy(t *testing.T) {
	var zero Distribution
	if math.Abs(zero.Entropy()-math.Log(6)) > 1e-12 {
		t.Errorf("zero entropy = %f", zero.Entropy())
	}
	if h := PointMass(Statement, 1).Entropy(); h > 1e-6 {
		t.Errorf("point mass entropy = %f", h)
	}
}
