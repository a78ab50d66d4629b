package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// #region client-struct
// OpenAIClient scores options against any OpenAI-compatible chat endpoint.
type OpenAIClient struct {
	client openai.Client
	config Config
}

// NewOpenAIClient builds a client. An empty BaseURL targets api.openai.com.
func NewOpenAIClient(config Config) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.TopLogprobs <= 0 {
		config.TopLogprobs = 20
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: config,
	}
}

// #endregion client-struct

// #region score-options
// ScoreOptions asks for a single letter and reads the top log-probabilities of
// the first generated token.
func (c *OpenAIClient) ScoreOptions(ctx context.Context, prompt string, options []string) ([]float64, error) {
	full, err := FormatMCQ(prompt, options)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.config.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(full)},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(1),
		Logprobs:    openai.Bool(true),
		TopLogprobs: openai.Int(int64(c.config.TopLogprobs)),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	tokens := make(map[string]float64)
	content := resp.Choices[0].Logprobs.Content
	if len(content) > 0 {
		first := content[0]
		tokens[first.Token] = first.Logprob
		for _, top := range first.TopLogprobs {
			if prev, ok := tokens[top.Token]; !ok || top.Logprob > prev {
				tokens[top.Token] = top.Logprob
			}
		}
	}
	return LetterScores(tokens, len(options), c.config.FloorLogprob), nil
}

// #endregion score-options

// #region choose-option
// ChooseOption asks for a letter at temperature 0 and maps the reply back to an option.
func (c *OpenAIClient) ChooseOption(ctx context.Context, prompt string, options []string) (string, error) {
	full, err := FormatMCQ(prompt, options)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.config.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(full)},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(4),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return ParseChoice(resp.Choices[0].Message.Content, options)
}

// #endregion choose-option
