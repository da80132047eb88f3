package embedding

import (
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"video-rag/internal/config"
)

// NewFromConfig selects the embedder implementation by the configured
// provider: "openai" for any OpenAI-compatible endpoint, anything else
// (default) for a local Ollama server.
func NewFromConfig(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	if llmConfig.Provider == "openai" {
		return NewEmbedder(llmConfig)
	}
	return NewOllamaEmbedder(llmConfig)
}

// NewEmbedder creates an embedder backed by any OpenAI-compatible
// embeddings endpoint.
func NewEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm) // Handle both return values
	if err != nil {
		return nil, err
	}
	return embedder, nil
}

// new ollama embedder
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return embedder, nil
}
