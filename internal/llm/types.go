package llm

import (
	"context"
	"errors"
)

// #region client
// Client is the scoring interface the act scorer consumes.
type Client interface {
	// ScoreOptions returns one log-score per option, aligned to options.
	ScoreOptions(ctx context.Context, prompt string, options []string) ([]float64, error)
	// ChooseOption returns the option text the model picks.
	ChooseOption(ctx context.Context, prompt string, options []string) (string, error)
}

// #endregion client

// #region errors
var (
	// ErrNoOptions is returned when a call carries an empty option list.
	ErrNoOptions = errors.New("llm: no options")
	// ErrTooManyOptions is returned when options exceed the letter alphabet.
	ErrTooManyOptions = errors.New("llm: too many options")
	// ErrUnparseable is returned when a model reply names no option.
	ErrUnparseable = errors.New("llm: reply names no option")
	// ErrEmptyResponse is returned when the API answers with no choices.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// #endregion errors

// #region config
// Config holds connection parameters for an OpenAI-compatible endpoint.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	TopLogprobs  int
	FloorLogprob float64
}

// DefaultConfig returns defaults for an OpenRouter-style endpoint.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://openrouter.ai/api/v1",
		Model:        "openai/gpt-4o-mini",
		TopLogprobs:  20,
		FloorLogprob: -20,
	}
}

// #endregion config
