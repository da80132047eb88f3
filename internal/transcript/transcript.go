package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"video-rag/internal/models"
)

// ErrTranscriptsDisabled means the video exposes no caption tracks at
// all. Callers surface this as a user-actionable message instead of a
// generic server error.
var ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`embed/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
}

var bareVideoID = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ExtractVideoID pulls the canonical 11-character video id out of the
// known YouTube URL shapes, first matching pattern wins. A bare id is
// accepted as-is. The second return is false when nothing matches; treat
// that as a client input error, not an internal failure.
func ExtractVideoID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}
	}
	if bareVideoID.MatchString(raw) {
		return raw, true
	}
	return "", false
}

// Client fetches transcripts from the watch page caption tracks and
// metadata from the public oEmbed endpoint.
type Client struct {
	http       *http.Client
	watchBase  string
	oembedBase string
}

func NewClient() *Client {
	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		watchBase:  "https://www.youtube.com",
		oembedBase: "https://www.youtube.com/oembed",
	}
}

// Transcript fetches the caption track list for a video, prefers an
// English track and falls back to the first available language.
// Snippet texts are joined with single spaces, timing data is dropped.
func (c *Client) Transcript(ctx context.Context, videoID string) (string, error) {
	page, err := c.fetch(ctx, c.watchBase+"/watch?v="+videoID)
	if err != nil {
		return "", fmt.Errorf("error fetching transcript: %w", err)
	}

	tracks, ok := captionTracks(string(page))
	if !ok || len(tracks.Array()) == 0 {
		return "", ErrTranscriptsDisabled
	}

	track := pickTrack(tracks)
	baseURL := track.Get("baseUrl").String()
	if baseURL == "" {
		return "", ErrTranscriptsDisabled
	}

	captions, err := c.fetch(ctx, baseURL+"&fmt=json3")
	if err != nil {
		return "", fmt.Errorf("error fetching transcript: %w", err)
	}

	text := joinSnippets(captions)
	if text == "" {
		return "", fmt.Errorf("error fetching transcript: empty caption payload")
	}
	return text, nil
}

// Metadata queries the oEmbed endpoint. On any non-200 response or
// transport error it degrades to a synthesized record; metadata is
// cosmetic and never fails the request.
func (c *Client) Metadata(ctx context.Context, videoID string) models.VideoMetadata {
	fallback := models.VideoMetadata{
		Title:     "Video " + videoID,
		Thumbnail: fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", videoID),
		Author:    "Unknown",
	}

	u := c.oembedBase + "?url=https://www.youtube.com/watch?v=" + videoID + "&format=json"
	body, err := c.fetch(ctx, u)
	if err != nil {
		log.Warn().Err(err).Str("video_id", videoID).Msg("oEmbed lookup failed, using fallback metadata")
		return fallback
	}

	data := gjson.ParseBytes(body)
	meta := models.VideoMetadata{
		Title:     data.Get("title").String(),
		Thumbnail: data.Get("thumbnail_url").String(),
		Author:    data.Get("author_name").String(),
	}
	if meta.Title == "" {
		return fallback
	}
	if meta.Thumbnail == "" {
		meta.Thumbnail = fallback.Thumbnail
	}
	if meta.Author == "" {
		meta.Author = fallback.Author
	}
	return meta
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// YouTube serves a reduced page to clients without a browser UA.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// captionTracks locates the embedded "captionTracks" JSON array inside
// the watch page player response.
func captionTracks(page string) (gjson.Result, bool) {
	const marker = `"captionTracks":`
	i := strings.Index(page, marker)
	if i < 0 {
		return gjson.Result{}, false
	}
	rest := page[i+len(marker):]
	end := balancedArrayEnd(rest)
	if end < 0 {
		return gjson.Result{}, false
	}
	arr := gjson.Parse(rest[:end])
	if !arr.IsArray() {
		return gjson.Result{}, false
	}
	return arr, true
}

// balancedArrayEnd returns the index just past the closing bracket of a
// JSON array starting at s[0], skipping brackets inside string literals.
func balancedArrayEnd(s string) int {
	if len(s) == 0 || s[0] != '[' {
		return -1
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// pickTrack prefers an English track (manual or auto-generated), falling
// back to the first track in any language.
func pickTrack(tracks gjson.Result) gjson.Result {
	all := tracks.Array()
	for _, t := range all {
		lang := t.Get("languageCode").String()
		if lang == "en" || strings.HasPrefix(lang, "en-") {
			return t
		}
	}
	return all[0]
}

// joinSnippets flattens a json3 caption payload into plain text with
// single-space separators.
func joinSnippets(payload []byte) string {
	var parts []string
	gjson.GetBytes(payload, "events").ForEach(func(_, ev gjson.Result) bool {
		ev.Get("segs").ForEach(func(_, seg gjson.Result) bool {
			txt := strings.TrimSpace(seg.Get("utf8").String())
			if txt != "" {
				parts = append(parts, txt)
			}
			return true
		})
		return true
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
