package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/confidence"
	"github.com/storyboarder/ai-service/internal/model"
	"github.com/storyboarder/ai-service/internal/normalize"
	"github.com/storyboarder/ai-service/internal/prompt"
	"github.com/storyboarder/ai-service/internal/router"
)

// ShotSuggestionService breaks a scene down into a shot list.
type ShotSuggestionService struct {
	router *router.Router
	logger *zap.Logger
}

func NewShotSuggestionService(r *router.Router, logger *zap.Logger) *ShotSuggestionService {
	return &ShotSuggestionService{router: r, logger: logger.Named("suggestions")}
}

// Suggest asks the selected text backend for 3-6 shots and normalizes the answer.
func (s *ShotSuggestionService) Suggest(ctx context.Context, req *model.SuggestShotsRequest) (*model.ShotSuggestionsResult, error) {
	sel := router.ParseSelector(req.ModelID)

	raw, route, err := s.router.Text(ctx, sel, prompt.ShotSuggestionSystemPrompt, prompt.BuildShotSuggestionPrompt(*req))
	if err != nil {
		return nil, upstreamError(err, "Failed to generate shot suggestions")
	}

	fallback := confidence.Estimate(route.BaseConfidence, confidence.Signals{Description: req.SceneText})
	result, err := normalize.Suggestions(raw, fallback)
	if err != nil {
		s.logger.Warn("unparseable suggestion payload",
			zap.String("model", route.Model),
			zap.Int("rawChars", len(raw)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("shot suggestions generated",
		zap.String("sceneId", req.SceneID),
		zap.String("model", route.Model),
		zap.Int("count", len(result.Suggestions)),
		zap.Float64("confidence", result.Confidence),
	)
	return result, nil
}
