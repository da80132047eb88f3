package infographic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Pollinations is a no-auth synchronous image API: the prompt is encoded
// straight into the URL and the response body is the image.
type Pollinations struct {
	baseURL string
	client  *http.Client
	seed    int
}

func NewPollinations() *Pollinations {
	return &Pollinations{
		baseURL: "https://image.pollinations.ai",
		client:  &http.Client{Timeout: 60 * time.Second},
		seed:    42,
	}
}

func (p *Pollinations) Name() string { return "pollinations" }

var pollinationsStyles = map[string]string{
	"modern":       "modern flat design infographic, vibrant colors, clean layout",
	"minimalist":   "minimalist infographic, white background, simple icons",
	"colorful":     "colorful vibrant infographic, gradient backgrounds",
	"professional": "professional business infographic, corporate style",
	"notebooklm":   "NotebookLM style infographic, soft pastels, rounded cards, modern UI",
}

func (p *Pollinations) Generate(ctx context.Context, req Request) ([]byte, error) {
	styleMod, ok := pollinationsStyles[req.Style]
	if !ok {
		styleMod = pollinationsStyles["modern"]
	}
	prompt := fmt.Sprintf("%s, infographic about: %s, data visualization, clean design, high quality, avoid: %s",
		styleMod, truncate(req.Summary, 150), negativePrompt)

	imageURL := fmt.Sprintf("%s/prompt/%s?width=1024&height=1024&seed=%d&nologo=true&model=flux",
		p.baseURL, url.PathEscape(prompt), p.seed)

	img, err := download(ctx, p.client, imageURL)
	if err != nil {
		return nil, fmt.Errorf("pollinations request failed: %w", err)
	}
	return img, nil
}
