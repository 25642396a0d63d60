package normalize

import (
	"strings"

	"github.com/storyboarder/ai-service/internal/apperr"
	"github.com/storyboarder/ai-service/internal/confidence"
	"github.com/storyboarder/ai-service/internal/model"
)

// Suggestions runs both stages over raw model output and builds the result.
// fallback is the heuristic score used when the model reports no overall
// confidence; it also seeds shots that carry no score of their own.
func Suggestions(raw string, fallback float64) (*model.ShotSuggestionsResult, error) {
	payload, err := DecodeSuggestions([]byte(SliceJSONObject(raw)))
	if err != nil {
		return nil, err
	}

	overall := confidence.OrDefault(payload.OverallConfidence, fallback)
	result := &model.ShotSuggestionsResult{
		Suggestions: make([]model.ShotSuggestion, 0, len(payload.Suggestions)),
		Confidence:  overall,
		Reasoning:   payload.Reasoning,
	}
	for i, s := range payload.Suggestions {
		number := i + 1
		if s.ShotNumber != nil && *s.ShotNumber > 0 {
			number = *s.ShotNumber
		}
		result.Suggestions = append(result.Suggestions, model.ShotSuggestion{
			ShotNumber:     number,
			ShotType:       s.ShotType,
			CameraAngle:    s.CameraAngle,
			CameraMovement: s.CameraMovement,
			Description:    s.Description,
			Duration:       s.Duration,
			Confidence:     confidence.OrDefault(s.Confidence, overall),
		})
	}
	return result, nil
}

// Image validates an image-provider answer. An empty URL is a hard failure
// rather than a result with nothing to show.
func Image(url, promptUsed string, score float64) (*model.PanelResult, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.ErrNoImageGenerated
	}
	return &model.PanelResult{
		ImageURL:   url,
		Confidence: confidence.Clamp(score),
		PromptUsed: promptUsed,
	}, nil
}
