package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var labelOptions = []string{"statement", "question", "request", "promise", "expressive", "declaration"}

// #region mock
type mockClient struct {
	scoreErrs  []error
	chooseErrs []error
	scores     []float64
	choice     string
	calls      int
}

func (m *mockClient) ScoreOptions(_ context.Context, _ string, _ []string) ([]float64, error) {
	m.calls++
	if m.calls <= len(m.scoreErrs) && m.scoreErrs[m.calls-1] != nil {
		return nil, m.scoreErrs[m.calls-1]
	}
	return m.scores, nil
}

func (m *mockClient) ChooseOption(_ context.Context, _ string, _ []string) (string, error) {
	m.calls++
	if m.calls <= len(m.chooseErrs) && m.chooseErrs[m.calls-1] != nil {
		return "", m.chooseErrs[m.calls-1]
	}
	return m.choice, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

// #endregion mock

// #region mcq-tests
func TestFormatMCQ(t *testing.T) {
	got, err := FormatMCQ("Classify: hello\n", labelOptions[:2])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Classify: hello", "A. statement", "B. question", "Answer:"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestFormatMCQ_Errors(t *testing.T) {
	if _, err := FormatMCQ("p", nil); !errors.Is(err, ErrNoOptions) {
		t.Errorf("expected ErrNoOptions, got %v", err)
	}
	if _, err := FormatMCQ("p", make([]string, 11)); !errors.Is(err, ErrTooManyOptions) {
		t.Errorf("expected ErrTooManyOptions, got %v", err)
	}
}

func TestLetterScores(t *testing.T) {
	scores := LetterScores(map[string]float64{
		"B":   -0.2,
		" B":  -0.1,
		"A":   -2.0,
		"F.":  -3.0,
		"G":   -0.5, // beyond the option count
		"the": -0.01,
	}, 6, -20)

	want := []float64{-2.0, -0.1, -20, -20, -20, -3.0}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("scores[%d] = %f, want %f", i, scores[i], want[i])
		}
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"B", "question"},
		{" c.", "request"},
		{"D) promise", "promise"},
		{"Expressive", "expressive"},
		{"Declaration.", "declaration"},
		{"The answer is statement", "statement"},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := ParseChoice(tt.reply, labelOptions)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseChoice_Chinese(t *testing.T) {
	zh := []string{"陈述", "疑问", "请求", "承诺", "表达", "宣告"}
	got, err := ParseChoice("疑问", zh)
	if err != nil || got != "疑问" {
		t.Errorf("got (%q, %v), want 疑问", got, err)
	}
}

func TestParseChoice_Unparseable(t *testing.T) {
	for _, reply := range []string{"", "   ", "no idea"} {
		if _, err := ParseChoice(reply, labelOptions); !errors.Is(err, ErrUnparseable) {
			t.Errorf("%q: expected ErrUnparseable, got %v", reply, err)
		}
	}
}

// #endregion mcq-tests

// #region retry-tests
func TestRetrying_RecoversAfterTransientError(t *testing.T) {
	inner := &mockClient{scoreErrs: []error{errors.New("503")}, scores: []float64{-1, -2}}
	r := NewRetrying(inner, 2, 0)
	r.sleep = noSleep

	got, err := r.ScoreOptions(context.Background(), "p", labelOptions[:2])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || inner.calls != 2 {
		t.Errorf("got %v after %d calls", got, inner.calls)
	}
}

func TestRetrying_GivesUpAfterMaxRetries(t *testing.T) {
	boom := errors.New("boom")
	inner := &mockClient{chooseErrs: []error{boom, boom, boom, boom}}
	r := NewRetrying(inner, 2, 0)
	r.sleep = noSleep

	_, err := r.ChooseOption(context.Background(), "p", labelOptions)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestRetrying_NoRetryOnDeterministicError(t *testing.T) {
	inner := &mockClient{scoreErrs: []error{ErrNoOptions}}
	r := NewRetrying(inner, 2, 0)
	r.sleep = noSleep

	if _, err := r.ScoreOptions(context.Background(), "p", nil); !errors.Is(err, ErrNoOptions) {
		t.Fatalf("expected ErrNoOptions, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 attempt, got %d", inner.calls)
	}
}

func TestRetrying_DefaultMaxRetries(t *testing.T) {
	r := NewRetrying(&mockClient{}, -1, time.Millisecond)
	if r.maxRetries != defaultMaxRetries {
		t.Errorf("got %d, want %d", r.maxRetries, defaultMaxRetries)
	}
}

// #endregion retry-tests

// #region openai-tests
func TestNewOpenAIClient_Defaults(t *testing.T) {
	c := NewOpenAIClient(Config{APIKey: "k", Model: "m"})
	if c.config.TopLogprobs != 20 {
		t.Errorf("TopLogprobs = %d, want 20", c.config.TopLogprobs)
	}
}

func TestOpenAIClient_RejectsEmptyOptions(t *testing.T) {
	c := NewOpenAIClient(DefaultConfig())
	if _, err := c.ScoreOptions(context.Background(), "p", nil); !errors.Is(err, ErrNoOptions) {
		t.Errorf("expected ErrNoOptions, got %v", err)
	}
	if _, err := c.ChooseOption(context.Background(), "p", nil); !errors.Is(err, ErrNoOptions) {
		t.Errorf("expected ErrNoOptions, got %v", err)
	}
}

// #endregion openai-tests
