package infographic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HuggingFace renders via the hosted SDXL inference endpoint, which
// returns image bytes synchronously.
type HuggingFace struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewHuggingFace(apiKey string) *HuggingFace {
	return &HuggingFace{
		apiKey:   apiKey,
		endpoint: "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-xl-base-1.0",
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

var huggingFaceStyles = map[string]string{
	"modern":       "modern flat design, vibrant colors",
	"minimalist":   "minimalist design, clean typography",
	"colorful":     "colorful infographic, gradient backgrounds",
	"professional": "professional business infographic, corporate style",
	"notebooklm":   "NotebookLM style, soft pastels, rounded design",
}

func (h *HuggingFace) Generate(ctx context.Context, req Request) ([]byte, error) {
	if h.apiKey == "" {
		return nil, fmt.Errorf("huggingface api key missing")
	}

	styleMod, ok := huggingFaceStyles[req.Style]
	if !ok {
		styleMod = huggingFaceStyles["modern"]
	}
	prompt := fmt.Sprintf("%s, infographic about: %s, visual data presentation, clean design",
		styleMod, truncate(req.Summary, 200))

	payload, _ := json.Marshal(map[string]any{
		"inputs": prompt,
		"parameters": map[string]any{
			"negative_prompt":     negativePrompt,
			"num_inference_steps": 30,
			"guidance_scale":      7.5,
		},
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("huggingface request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
