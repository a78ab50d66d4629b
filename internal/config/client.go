package config

import (
	"log"
	"time"

	"github.com/Jingtingtina/pragact-router/internal/codec"
	"github.com/Jingtingtina/pragact-router/internal/llm"
)

const retryBackoff = 500 * time.Millisecond

// NewClient builds the scoring backend: the gRPC codec client when
// llm.codec_addr is set, otherwise the OpenAI-compatible client. The result
// is wrapped with bounded retries. The returned close func is never nil.
func (c Config) NewClient() (llm.Client, func() error, error) {
	if c.LLM.CodecAddr != "" {
		cc, err := codec.NewCodecClient(c.LLM.CodecAddr)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		log.Printf("[LLM] using codec backend at %s", c.LLM.CodecAddr)
		return llm.NewRetrying(cc, c.LLM.MaxRetries, retryBackoff), cc.Close, nil
	}
	lc := c.LLMConfig()
	if lc.APIKey == "" {
		log.Printf("[LLM] no API key set; requests to %s will likely fail", lc.BaseURL)
	}
	log.Printf("[LLM] using model %s", lc.Model)
	return llm.NewRetrying(llm.NewOpenAIClient(lc), c.LLM.MaxRetries, retryBackoff), func() error { return nil }, nil
}
