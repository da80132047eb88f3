package infographic

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"video-rag/internal/models"
)

// Request carries everything a provider needs to render one image.
type Request struct {
	VideoID string
	Summary string
	Details models.InfographicDetails
	Style   string
}

// Provider renders a single infographic image or fails. Providers are
// tried in order by the orchestrator; a provider must never persist
// anything itself.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// One negative-prompt convention shared by every provider keeps the
// style consistent regardless of which one serves the request.
const negativePrompt = "text, words, letters, paragraphs, watermark, messy, cluttered, photograph, realistic, low quality, blurry"

const defaultStyle = "notebooklm"

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
