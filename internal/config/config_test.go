package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Jingtingtina/pragact-router/internal/act"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	c := Default()
	if !c.Probe.FastCues || c.Probe.FastConfidence != 0.95 || c.Probe.FastTau != 0.30 || c.Probe.Threshold != 0.25 {
		t.Errorf("probe defaults = %+v", c.Probe)
	}
	if c.Gate.Lambda != 0.002 || c.Gate.GainScale != 1.0 || c.Gate.Tau != 0.25 {
		t.Errorf("gate defaults = %+v", c.Gate)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
lang: zh
use_logprobs: false
probe:
  threshold: 0.4
gate:
  lambda: 0.01
llm:
  model: test/model
  timeout_seconds: 5
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Lang != act.LangZH || c.UseLogprobs {
		t.Errorf("top-level = %+v", c)
	}
	if c.Probe.Threshold != 0.4 || c.Probe.FastTau != 0.30 {
		t.Errorf("probe = %+v", c.Probe)
	}
	if c.Gate.Lambda != 0.01 || c.Gate.GainScale != 1.0 {
		t.Errorf("gate = %+v", c.Gate)
	}
	if c.LLMConfig().Model != "test/model" || c.Timeout() != 5*time.Second {
		t.Errorf("llm = %+v", c.LLM)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PRAGACT_FAST_CUES", "0")
	t.Setenv("PRAGACT_FAST_TAU", "0.5")
	t.Setenv("PRAGACT_LAMBDA", "0.004")
	t.Setenv("PRAGACT_GAIN_SCALE", "2")
	t.Setenv("PRAGACT_TAU", "not-a-number")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("PRAGACT_DB", "/tmp/x.db")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Probe.FastCues || c.Probe.FastTau != 0.5 {
		t.Errorf("probe = %+v", c.Probe)
	}
	if p := c.GateParams(); p.Lambda != 0.004 || p.GainScale != 2 {
		t.Errorf("gate params = %+v", p)
	}
	if c.Gate.Tau != 0.25 {
		t.Errorf("malformed tau should be ignored, got %g", c.Gate.Tau)
	}
	if c.LLM.APIKey != "secret" || c.Store.Path != "/tmp/x.db" {
		t.Errorf("llm/store = %+v %+v", c.LLM, c.Store)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []string{
		"lang: fr\n",
		"gate:\n  lambda: -1\n",
		"probe:\n  fast_confidence: 2\n",
		"probe: [unclosed\n",
		"llm:\n  timeout_seconds: 0\n",
		"llm:\n  timeout_seconds: -5\n",
	}
	for _, body := range tests {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConverters(t *testing.T) {
	c := Default()
	c.Probe.FastCues = false
	if pc := c.ProbeConfig(); pc.FastCues || pc.FastConfidence != 0.95 || pc.Timeout != 30*time.Second {
		t.Errorf("probe config = %+v", pc)
	}
	if rc := c.RouterConfig(); rc.Threshold != 0.25 || rc.FastTau != 0.30 {
		t.Errorf("router config = %+v", rc)
	}
	if sc := c.ScorerConfig(); !sc.UseLogprobs || !sc.Calibrate {
		t.Errorf("scorer config = %+v", sc)
	}
	if b := c.Backend(); !strings.HasPrefix(b, "openai:") {
		t.Errorf("backend = %q", b)
	}
	other := c
	other.LLM.Model = "another/model"
	if other.ScorerConfig().Backend == c.ScorerConfig().Backend {
		t.Error("different models must give different scorer backends")
	}
	other.LLM.CodecAddr = "localhost:50051"
	if b := other.Backend(); b != "codec:localhost:50051/another/model" {
		t.Errorf("codec backend = %q", b)
	}
	if fc := c.FrontierConfig(); fc.Concurrency != 4 {
		t.Errorf("frontier config = %+v", fc)
	}
	tpl, err := c.Templates()
	if err != nil || tpl.Lang != act.LangEN || len(tpl.MCQ) == 0 {
		t.Errorf("templates = %+v, %v", tpl, err)
	}
}

func TestNewClient(t *testing.T) {
	c := Default()
	c.LLM.APIKey = "k"
	client, closeFn, err := c.NewClient()
	if err != nil || client == nil {
		t.Fatalf("openai backend: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}

	c.LLM.CodecAddr = "localhost:50051"
	client, closeFn, err = c.NewClient()
	if err != nil || client == nil {
		t.Fatalf("codec backend: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close codec: %v", err)
	}
}

func TestRedacted(t *testing.T) {
	c := Default()
	c.LLM.APIKey = "secret"
	if c.Redacted().LLM.APIKey != "" || c.LLM.APIKey != "secret" {
		t.Error("Redacted should clear the key on a copy only")
	}
}
