package mindmap

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"video-rag/internal/config"
	"video-rag/internal/models"
	"video-rag/internal/rag"
)

// Long transcripts are truncated before prompting; the hierarchy of a
// mind map does not need the tail of a multi-hour video.
const maxTranscriptChars = 15000

// Generator turns a transcript into Mermaid.js mindmap source using
// Gemini.
type Generator struct {
	cfg *config.MindmapConfig
}

func NewGenerator(cfg *config.MindmapConfig) *Generator {
	return &Generator{cfg: cfg}
}

func (g *Generator) Generate(ctx context.Context, transcript string) (string, error) {
	if g.cfg.GeminiKey == "" {
		return "", fmt.Errorf("gemini key not configured")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(g.cfg.GeminiKey),
		googleai.WithDefaultModel(g.cfg.Model),
	)
	if err != nil {
		return "", fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	runes := []rune(transcript)
	if len(runes) > maxTranscriptChars {
		transcript = string(runes[:maxTranscriptChars])
	}

	prompt := fmt.Sprintf(models.MindmapPromptTemplate, transcript)
	raw, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt)
	if err != nil {
		return "", fmt.Errorf("mindmap generation failed: %w", err)
	}

	code := rag.StripCodeFence(raw)
	if !strings.HasPrefix(code, "mindmap") {
		code = "mindmap\n" + code
	}
	return code, nil
}
