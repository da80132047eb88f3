package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"video-rag/internal/config"
	"video-rag/internal/models"
)

// Completer is the chat-completion surface the engine depends on,
// satisfied by llmservice.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Retriever is the similarity-search surface, satisfied by
// chromemdb.Store.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]string, error)
}

// Low temperature favors determinism over creativity for grounded
// answering.
const answerTemperature = 0.2

type Engine struct {
	llm         Completer
	answerTopK  int
	detailsTopK int
}

func NewEngine(llm Completer, cfg *config.RAGConfig) *Engine {
	return &Engine{
		llm:         llm,
		answerTopK:  cfg.AnswerTopK,
		detailsTopK: cfg.DetailsTopK,
	}
}

// Answer retrieves the nearest chunks for the question, assembles them
// into a context block and asks the model to answer only from that
// block. Transport and API errors propagate to the caller.
func (e *Engine) Answer(ctx context.Context, store Retriever, question string) (string, error) {
	chunks, err := store.Query(ctx, question, e.answerTopK)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}

	contextBlock := strings.Join(chunks, "\n\n")
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, contextBlock, question)

	answer, err := e.llm.Complete(ctx, prompt, answerTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Summary produces the short summary the infographic orchestrator feeds
// into its prompts.
func (e *Engine) Summary(ctx context.Context, store Retriever) (string, error) {
	return e.Answer(ctx, store, models.SummaryQuestion)
}

// ExtractInfographicDetails asks the model for a strict JSON descriptor
// of the video. On any API or parse failure it returns the hardcoded
// fallback descriptor; structured extraction is best-effort and never
// blocks the answer path.
func (e *Engine) ExtractInfographicDetails(ctx context.Context, store Retriever) models.InfographicDetails {
	fallback := models.DefaultInfographicDetails()

	chunks, err := store.Query(ctx, models.DetailsAnchorQuery, e.detailsTopK)
	if err != nil {
		log.Warn().Err(err).Msg("Details retrieval failed, using fallback descriptor")
		return fallback
	}

	prompt := fmt.Sprintf(models.DetailsPromptTemplate, strings.Join(chunks, "\n\n"))
	raw, err := e.llm.Complete(ctx, prompt, answerTemperature)
	if err != nil {
		log.Warn().Err(err).Msg("Details extraction failed, using fallback descriptor")
		return fallback
	}

	var details models.InfographicDetails
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &details); err != nil {
		log.Warn().Err(err).Str("response", raw).Msg("Details response was not valid JSON, using fallback descriptor")
		return fallback
	}
	if details.Title == "" {
		details.Title = fallback.Title
	}
	if details.Interface == "" {
		details.Interface = fallback.Interface
	}
	if details.Themes == "" {
		details.Themes = fallback.Themes
	}
	return details
}

// StripCodeFence removes markdown code-fence wrappers that models emit
// despite instructions.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
