package infographic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"video-rag/internal/config"
	"video-rag/internal/helper"
)

// Orchestrator runs an ordered provider chain, short-circuiting on the
// first success. If every provider fails the caller gets one aggregate
// error; no partial or placeholder image is ever returned.
type Orchestrator struct {
	providers []Provider
	outDir    string
}

func NewOrchestrator(outDir string, providers ...Provider) *Orchestrator {
	return &Orchestrator{providers: providers, outDir: outDir}
}

// ProviderChain builds the fallback order for one request: the primary
// provider first, then the fallback selected by useFallback
// ("pollinations" routes there, anything else routes to Hugging Face).
func ProviderChain(cfg *config.InfographicConfig, useFallback string) []Provider {
	chain := []Provider{NewBria(cfg.BriaKey)}
	if useFallback == "pollinations" {
		chain = append(chain, NewPollinations())
	} else {
		chain = append(chain, NewHuggingFace(cfg.HuggingFaceKey))
	}
	return chain
}

func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, string, error) {
	if req.Style == "" {
		req.Style = defaultStyle
	}

	var failures []error
	for _, p := range o.providers {
		img, err := p.Generate(ctx, req)
		if err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("Infographic provider failed, trying next")
			failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		log.Info().Str("provider", p.Name()).Str("video_id", req.VideoID).Msg("Infographic generated")
		return img, p.Name(), nil
	}
	return nil, "", fmt.Errorf("all infographic providers failed: %w", errors.Join(failures...))
}

// GenerateAndSave persists the winning image under the video id. A later
// regeneration silently overwrites; artifacts are keyed by video id so
// sessions processing the same video share the cached image.
func (o *Orchestrator) GenerateAndSave(ctx context.Context, req Request) (string, string, error) {
	img, generator, err := o.Generate(ctx, req)
	if err != nil {
		return "", "", err
	}

	if err := helper.CreateFolder(o.outDir); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(o.outDir, req.VideoID+"_infographic.png")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to persist infographic: %w", err)
	}
	return path, generator, nil
}
