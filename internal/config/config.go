package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Jingtingtina/pragact-router/internal/act"
	"github.com/Jingtingtina/pragact-router/internal/frontier"
	"github.com/Jingtingtina/pragact-router/internal/gate"
	"github.com/Jingtingtina/pragact-router/internal/llm"
	"github.com/Jingtingtina/pragact-router/internal/probe"
	"github.com/Jingtingtina/pragact-router/internal/router"
	"github.com/Jingtingtina/pragact-router/internal/scorer"
)

// #region types
// Config is the file-level configuration shared by the command-line tools.
type Config struct {
	Lang          act.Lang `yaml:"lang"`
	TemplatesFile string   `yaml:"templates_file"`
	UseLogprobs   bool     `yaml:"use_logprobs"`
	Calibrate     bool     `yaml:"calibrate"`

	Probe ProbeSection `yaml:"probe"`
	Gate  GateSection  `yaml:"gate"`
	LLM   LLMSection   `yaml:"llm"`
	Store StoreSection `yaml:"store"`
}

// ProbeSection configures the fast path and the router thresholds.
type ProbeSection struct {
	FastCues       bool    `yaml:"fast_cues"`
	FastConfidence float64 `yaml:"fast_confidence"`
	FastTau        float64 `yaml:"fast_tau"`
	Threshold      float64 `yaml:"threshold"`
}

// GateSection configures both gates and sweep evaluation.
type GateSection struct {
	Lambda      float64 `yaml:"lambda"`
	GainScale   float64 `yaml:"gain_scale"`
	Tau         float64 `yaml:"tau"`
	ModelFile   string  `yaml:"model_file"`
	Concurrency int     `yaml:"concurrency"`
}

// LLMSection selects and configures the scoring backend.
type LLMSection struct {
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	CodecAddr   string `yaml:"codec_addr"` // non-empty selects the gRPC backend
	TimeoutSec  int    `yaml:"timeout_seconds"`
	MaxRetries  int    `yaml:"max_retries"`
	Concurrency int    `yaml:"concurrency"`
}

// StoreSection locates the decision log database.
type StoreSection struct {
	Path string `yaml:"path"`
}

// #endregion types

// #region defaults
// Default returns the built-in configuration.
func Default() Config {
	pc := probe.DefaultConfig()
	rc := router.DefaultConfig()
	gp := gate.DefaultParams()
	lc := llm.DefaultConfig()
	sc := scorer.DefaultConfig()
	return Config{
		Lang:        act.LangEN,
		UseLogprobs: sc.UseLogprobs,
		Calibrate:   sc.Calibrate,
		Probe: ProbeSection{
			FastCues:       pc.FastCues,
			FastConfidence: pc.FastConfidence,
			FastTau:        rc.FastTau,
			Threshold:      rc.Threshold,
		},
		Gate: GateSection{
			Lambda:      gp.Lambda,
			GainScale:   gp.GainScale,
			Tau:         gate.DefaultTau,
			Concurrency: frontier.DefaultConfig().Concurrency,
		},
		LLM: LLMSection{
			Model:       lc.Model,
			BaseURL:     lc.BaseURL,
			TimeoutSec:  30,
			MaxRetries:  2,
			Concurrency: 4,
		},
		Store: StoreSection{Path: "pragact.db"},
	}
}

// #endregion defaults

// #region load
// Load reads a YAML file over the defaults and then applies the environment.
// An empty path yields defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PRAGACT_* variables. Malformed values are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PRAGACT_FAST_CUES"); v != "" {
		c.Probe.FastCues = v == "1" || v == "true"
	}
	envFloat("PRAGACT_FAST_TAU", &c.Probe.FastTau)
	envFloat("PRAGACT_THRESHOLD", &c.Probe.Threshold)
	envFloat("PRAGACT_LAMBDA", &c.Gate.Lambda)
	envFloat("PRAGACT_GAIN_SCALE", &c.Gate.GainScale)
	envFloat("PRAGACT_TAU", &c.Gate.Tau)
	if v := os.Getenv("PRAGACT_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("PRAGACT_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.LLM.APIKey = v
	} else if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("PRAGACT_CODEC_ADDR"); v != "" {
		c.LLM.CodecAddr = v
	}
	if v := os.Getenv("PRAGACT_DB"); v != "" {
		c.Store.Path = v
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	switch {
	case c.Lang != act.LangEN && c.Lang != act.LangZH:
		return fmt.Errorf("config: lang %q must be en or zh", string(c.Lang))
	case c.Probe.FastConfidence < 0 || c.Probe.FastConfidence > 1:
		return fmt.Errorf("config: probe.fast_confidence %g outside [0,1]", c.Probe.FastConfidence)
	case c.Gate.Lambda < 0:
		return fmt.Errorf("config: gate.lambda %g is negative", c.Gate.Lambda)
	case c.Gate.GainScale < 0:
		return fmt.Errorf("config: gate.gain_scale %g is negative", c.Gate.GainScale)
	case c.LLM.TimeoutSec <= 0:
		return fmt.Errorf("config: llm.timeout_seconds %d must be positive", c.LLM.TimeoutSec)
	}
	return nil
}

// Redacted returns a copy with credentials removed, safe to persist.
func (c Config) Redacted() Config {
	c.LLM.APIKey = ""
	return c
}

// #endregion load

// #region converters
// ProbeConfig returns the probe constructor config.
func (c Config) ProbeConfig() probe.Config {
	return probe.Config{FastCues: c.Probe.FastCues, FastConfidence: c.Probe.FastConfidence, Timeout: c.Timeout()}
}

// RouterConfig returns the router constructor config.
func (c Config) RouterConfig() router.Config {
	return router.Config{Threshold: c.Probe.Threshold, FastTau: c.Probe.FastTau}
}

// ScorerConfig returns the act scorer config.
func (c Config) ScorerConfig() scorer.Config {
	return scorer.Config{UseLogprobs: c.UseLogprobs, Calibrate: c.Calibrate, Backend: c.Backend()}
}

// Backend identifies the scoring model so calibration priors are not shared
// across models.
func (c Config) Backend() string {
	if c.LLM.CodecAddr != "" {
		return "codec:" + c.LLM.CodecAddr + "/" + c.LLM.Model
	}
	lc := c.LLMConfig()
	return "openai:" + lc.BaseURL + "/" + lc.Model
}

// GateParams returns the value-of-compute parameters.
func (c Config) GateParams() gate.Params {
	return gate.Params{Lambda: c.Gate.Lambda, GainScale: c.Gate.GainScale}
}

// FrontierConfig returns the sweep config.
func (c Config) FrontierConfig() frontier.Config {
	return frontier.Config{Concurrency: c.Gate.Concurrency}
}

// LLMConfig returns the OpenAI-compatible client config.
func (c Config) LLMConfig() llm.Config {
	lc := llm.DefaultConfig()
	lc.APIKey = c.LLM.APIKey
	if c.LLM.BaseURL != "" {
		lc.BaseURL = c.LLM.BaseURL
	}
	if c.LLM.Model != "" {
		lc.Model = c.LLM.Model
	}
	return lc
}

// Timeout returns the per-request LLM timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSec) * time.Second
}

// Templates loads the prompt set from TemplatesFile, or the built-in set for Lang.
func (c Config) Templates() (scorer.Templates, error) {
	if c.TemplatesFile != "" {
		return scorer.LoadTemplates(c.TemplatesFile)
	}
	return scorer.DefaultTemplates(c.Lang), nil
}

// #endregion converters
