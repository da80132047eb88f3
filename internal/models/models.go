package models

// VideoMetadata is the lightweight oEmbed record shown alongside a
// processed video. Cosmetic only, never worth failing a request over.
type VideoMetadata struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Author    string `json:"author"`
}

// InfographicDetails is the structured descriptor the answer engine
// extracts for infographic prompting. Transient, never persisted.
type InfographicDetails struct {
	Title     string `json:"title"`
	Interface string `json:"interface"`
	Themes    string `json:"themes"`
}

// DefaultInfographicDetails is returned whenever structured extraction
// fails. Extraction is a best-effort enhancement, not a hard dependency.
func DefaultInfographicDetails() InfographicDetails {
	return InfographicDetails{
		Title:     "Video Insights",
		Interface: "Modern Application",
		Themes:    "Education, Technology, Innovation",
	}
}
