package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"video-rag/internal/config"
)

// Client wraps a langchaingo chat-completion LLM behind a single
// Complete call so callers do not deal with message plumbing.
type Client struct {
	cfg *config.LLMConfig
}

func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{cfg: cfg}
}

// Complete sends one prompt to the configured chat model and returns the
// raw text of the first choice. Errors propagate untouched; there is no
// retry here.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	log.Debug().Str("model", c.cfg.Model).Float64("temperature", temperature).Msg("Generating content")

	llm, err := openai.New(
		openai.WithBaseURL(c.cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(c.cfg.Key, "Bearer ")),
		openai.WithModel(c.cfg.Model),
	)
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := llm.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return res.Choices[0].Content, nil
}
