package services

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"fitzty/internal/models"
)

// DefaultStyleSignature is returned whenever a signature cannot be generated.
const DefaultStyleSignature = "Fashion ✦ Style ✦ Trend"

const styleSeparator = "✦"

const (
	recommendSystemPrompt = "You are a fashion expert AI that provides personalized style recommendations. Always respond with valid JSON."
	signatureSystemPrompt = "You are a fashion expert. Respond with only the style DNA tag, no additional text."
)

// BehaviorItem is one post, like, save or closet item reduced to its style facets.
type BehaviorItem struct {
	Tags     []string `json:"tags"`
	Style    string   `json:"style,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	Color    string   `json:"color,omitempty"`
	Price    string   `json:"price,omitempty"`
	Category string   `json:"category,omitempty"`
}

// BehaviorSummary is what the generator knows about a user.
type BehaviorSummary struct {
	Posts  []BehaviorItem `json:"posts"`
	Likes  []BehaviorItem `json:"likes"`
	Saves  []BehaviorItem `json:"saves"`
	Closet []BehaviorItem `json:"closet"`
}

// Empty reports whether there is no behavior at all.
func (b BehaviorSummary) Empty() bool {
	return len(b.Posts) == 0 && len(b.Likes) == 0 && len(b.Saves) == 0 && len(b.Closet) == 0
}

func behaviorFromPosts(posts []models.Post) []BehaviorItem {
	out := make([]BehaviorItem, 0, len(posts))
	for _, p := range posts {
		out = append(out, BehaviorItem{
			Tags:  nonNilStrings(p.Tags),
			Style: p.Style,
			Brand: p.Brand,
			Color: p.Color,
			Price: p.Price,
		})
	}
	return out
}

func behaviorFromCloset(items []models.ClosetItem) []BehaviorItem {
	out := make([]BehaviorItem, 0, len(items))
	for _, it := range items {
		b := BehaviorItem{
			Tags:     nonNilStrings(it.Tags),
			Brand:    it.Brand,
			Color:    it.Color,
			Category: it.Category,
		}
		if it.Price != nil {
			b.Price = fmt.Sprintf("%.2f", *it.Price)
		}
		out = append(out, b)
	}
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func recommendPrompt(summary BehaviorSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`You are a fashion stylist AI. Analyze this user's fashion behavior and generate 5 personalized fashion recommendations.

User Data:
%s

Generate recommendations in this JSON format:
[
  {
    "type": "style|item|outfit|challenge",
    "title": "Short title",
    "description": "Detailed description",
    "confidence": 0.85,
    "tags": ["y2k", "streetwear", "nike"],
    "reasoning": "Why this recommendation fits the user"
  }
]

Focus on:
- Current trends that match their style
- Items they might like based on their behavior
- Outfit combinations from their closet
- Style challenges they'd enjoy

Be specific and actionable.`, data), nil
}

func signaturePrompt(summary BehaviorSummary) (string, error) {
	tags := func(items []BehaviorItem) string {
		all := []string{}
		for _, it := range items {
			all = append(all, it.Tags...)
		}
		data, _ := json.Marshal(all)
		return string(data)
	}
	return fmt.Sprintf(`You are a fashion stylist AI. Analyze this user's outfits and produce a short style DNA tag like:
"Y2K ✦ Monochrome ✦ Urban Street ✦ Nike ✦ Oversized"

User Data:
- Posts: %s
- Likes: %s
- Saves: %s

Create a concise style DNA with 3-5 key elements separated by ✦ symbols.`,
		tags(summary.Posts), tags(summary.Likes), tags(summary.Saves)), nil
}

// RecommendationDraft is one generated recommendation before persistence.
type RecommendationDraft struct {
	Type        models.RecommendationType `json:"type"`
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Confidence  float64                   `json:"confidence"`
	Tags        []string                  `json:"tags"`
	Reasoning   string                    `json:"reasoning"`
}

// ParseRecommendations decodes a generated JSON array. Anything that is not a JSON
// array yields nil. Entries of unknown type or without a title are dropped, and
// confidence is clamped into [0, 1].
func ParseRecommendations(raw string) []RecommendationDraft {
	body := stripCodeFence(raw)
	if !strings.HasPrefix(body, "[") {
		return nil
	}
	var drafts []RecommendationDraft
	if err := json.Unmarshal([]byte(body), &drafts); err != nil {
		return nil
	}
	out := make([]RecommendationDraft, 0, len(drafts))
	for _, d := range drafts {
		d.Type = models.RecommendationType(strings.ToLower(strings.TrimSpace(string(d.Type))))
		if !d.Type.Valid() || strings.TrimSpace(d.Title) == "" {
			continue
		}
		d.Confidence = clampUnit(d.Confidence)
		if d.Tags == nil {
			d.Tags = []string{}
		}
		out = append(out, d)
	}
	return out
}

// ParseStyleSignature normalizes a generated signature to "A ✦ B ✦ C". It reports
// false unless there are 3 to 5 non-empty elements.
func ParseStyleSignature(raw string) (string, bool) {
	s := strings.TrimSpace(stripCodeFence(raw))
	s = strings.Trim(s, "\"'`")
	if s == "" || strings.Contains(s, "\n") {
		return "", false
	}
	parts := strings.Split(s, styleSeparator)
	if len(parts) < 3 || len(parts) > 5 {
		return "", false
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return "", false
		}
		parts[i] = p
	}
	return strings.Join(parts, " "+styleSeparator+" "), true
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func clampUnit(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
