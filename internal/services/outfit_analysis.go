package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	"fitzty/internal/metrics"
	"fitzty/pkg/apperr"
	"fitzty/pkg/llm"
)

const outfitSystemPrompt = "You are a fashion analysis AI. Always respond with valid JSON."

const outfitPrompt = `Analyze this fashion outfit image and identify:
1. Each clothing item (type, color, potential brand)
2. Overall style category
3. Fashion tags

Respond in JSON format:
{
  "items": [
    {
      "type": "t-shirt|jeans|dress|shoes|etc",
      "color": "color name",
      "brand": "brand name if visible",
      "confidence": 0.85
    }
  ],
  "style": "casual|streetwear|formal|vintage|etc",
  "tags": ["y2k", "streetwear", "oversized", "etc"]
}`

// OutfitItem is one garment recognized in an outfit photo.
type OutfitItem struct {
	Type       string  `json:"type"`
	Color      string  `json:"color"`
	Brand      string  `json:"brand,omitempty"`
	Confidence float64 `json:"confidence"`
}

// OutfitAnalysis describes an outfit photo.
type OutfitAnalysis struct {
	Items []OutfitItem `json:"items"`
	Style string       `json:"style"`
	Tags  []string     `json:"tags"`
}

// FallbackOutfitAnalysis is returned whenever an image cannot be analyzed.
func FallbackOutfitAnalysis() *OutfitAnalysis {
	return &OutfitAnalysis{Items: []OutfitItem{}, Style: "casual", Tags: []string{"fashion"}}
}

// ParseOutfitAnalysis decodes a generated JSON object. It reports false when the
// body is not an object. Items without a type are dropped.
func ParseOutfitAnalysis(raw string) (*OutfitAnalysis, bool) {
	body := stripCodeFence(raw)
	if !strings.HasPrefix(body, "{") {
		return nil, false
	}
	var parsed OutfitAnalysis
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, false
	}
	out := &OutfitAnalysis{
		Items: make([]OutfitItem, 0, len(parsed.Items)),
		Style: strings.TrimSpace(parsed.Style),
		Tags:  parsed.Tags,
	}
	for _, item := range parsed.Items {
		item.Type = strings.TrimSpace(item.Type)
		if item.Type == "" {
			continue
		}
		item.Confidence = clampUnit(item.Confidence)
		out.Items = append(out.Items, item)
	}
	if out.Style == "" {
		out.Style = "casual"
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out, true
}

// AnalyzeOutfit asks the language model to describe the outfit at imageURL. Only
// an invalid URL is an error; model failures yield FallbackOutfitAnalysis.
func (s *RecommendationService) AnalyzeOutfit(ctx context.Context, imageURL string) (*OutfitAnalysis, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, apperr.Validation("imageUrl is required")
	}
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.Validation("imageUrl must be an http or https URL")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	raw, err := s.llm.Complete(ctx, llm.CompletionRequest{
		System:      outfitSystemPrompt,
		User:        outfitPrompt,
		ImageURLs:   []string{imageURL},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return s.fallbackOutfit(failureReason(err), err), nil
	}
	analysis, ok := ParseOutfitAnalysis(raw)
	if !ok {
		return s.fallbackOutfit("malformed", errors.New("response is not a JSON object")), nil
	}
	return analysis, nil
}

func (s *RecommendationService) fallbackOutfit(reason string, err error) *OutfitAnalysis {
	metrics.RecommendationFallbacksTotal.WithLabelValues("outfit", reason).Inc()
	s.log.Warn("outfit analysis failed, using fallback", "reason", reason, "error", err)
	return FallbackOutfitAnalysis()
}
