package infographic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Bria is the primary provider. Its v2 API is asynchronous: a submit
// call returns a status URL which is polled with exponential backoff
// until the job completes, fails, or the attempt ceiling is hit.
type Bria struct {
	apiKey       string
	endpoint     string
	client       *http.Client
	pollInterval time.Duration
	maxPolls     int
}

func NewBria(apiKey string) *Bria {
	return &Bria{
		apiKey:       apiKey,
		endpoint:     "https://engine.prod.bria-api.com/v2/text-to-image/base",
		client:       &http.Client{Timeout: 30 * time.Second},
		pollInterval: 2 * time.Second,
		maxPolls:     10,
	}
}

func (b *Bria) Name() string { return "bria" }

func (b *Bria) Generate(ctx context.Context, req Request) ([]byte, error) {
	if b.apiKey == "" {
		return nil, fmt.Errorf("bria api token missing")
	}

	payload, _ := json.Marshal(map[string]any{
		"prompt":          briaStylePrompt(req),
		"negative_prompt": negativePrompt,
		"aspect_ratio":    "16:9",
		"model":           "bria-2.3",
		"sync_mode":       false,
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("api_token", b.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("bria submit failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bria api error %d: %s", resp.StatusCode, string(body))
	}

	data := gjson.ParseBytes(body)
	statusURL := data.Get("status_url").String()
	if statusURL == "" {
		// Some deployments answer synchronously despite sync_mode=false.
		if u := data.Get("result.url").String(); u != "" {
			return download(ctx, b.client, u)
		}
		return nil, fmt.Errorf("bria response missing status_url")
	}
	return b.poll(ctx, statusURL)
}

func (b *Bria) poll(ctx context.Context, statusURL string) ([]byte, error) {
	delay := b.pollInterval
	for attempt := 0; attempt < b.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("api_token", b.apiKey)
		resp, err := b.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("bria status poll failed: %w", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("Bria status endpoint returned non-200, retrying")
			continue
		}

		data := gjson.ParseBytes(body)
		switch data.Get("status").String() {
		case "completed":
			imageURL := data.Get("result.urls.0").String()
			if imageURL == "" {
				imageURL = data.Get("result.url").String()
			}
			if imageURL == "" {
				return nil, fmt.Errorf("bria completed without an image url")
			}
			return download(ctx, b.client, imageURL)
		case "failed":
			return nil, fmt.Errorf("bria generation failed: %s", data.Get("error").String())
		}
	}
	return nil, fmt.Errorf("bria generation did not complete after %d polls", b.maxPolls)
}

func briaStylePrompt(req Request) string {
	details := req.Details
	switch req.Style {
	case "modern":
		return "modern flat design infographic, vibrant gradients, clean geometric cards"
	case "minimalist":
		return "minimalist professional infographic, white space, simple line icons"
	default: // notebooklm
		return fmt.Sprintf("A professional, clean, modern business infographic layout titled '%s'. "+
			"The design uses a flat vector illustration style with a soft pastel mint-green background. "+
			"The layout is organized into a two-column grid. On the left side, a large data visualization "+
			"section featuring a colorful donut chart and a flowing, multi-layered wavy area graph. "+
			"In the center, a high-quality smartphone mockup displaying a %s. "+
			"On the right side, multiple small panels featuring minimalist icons for %s. "+
			"Use a vibrant color palette of coral red, lime green, and electric blue. "+
			"Bold, sans-serif, highly legible typography. 2D digital art, high resolution, minimalist and scannable.",
			details.Title, details.Interface, details.Themes)
	}
}
