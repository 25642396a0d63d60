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

// Archiver copies a generated image somewhere durable and returns its new URL.
type Archiver interface {
	Archive(ctx context.Context, sourceURL string) (string, error)
}

// PanelService generates and refines storyboard panel images.
type PanelService struct {
	router   *router.Router
	archiver Archiver
	logger   *zap.Logger
}

// NewPanelService creates the service. archiver may be nil, in which case the
// provider URL is returned as is.
func NewPanelService(r *router.Router, archiver Archiver, logger *zap.Logger) *PanelService {
	return &PanelService{router: r, archiver: archiver, logger: logger.Named("panels")}
}

// Generate renders one frame from a shot description.
func (s *PanelService) Generate(ctx context.Context, req *model.GeneratePanelRequest) (*model.PanelResult, error) {
	text := prompt.BuildPanelPrompt(*req)
	route := router.ResolveImage(router.ParseSelector(req.ModelID))

	res, err := s.router.Image(ctx, route, text)
	if err != nil {
		return nil, upstreamError(err, "Failed to generate panel image")
	}

	score := confidence.Estimate(confidence.BaseImage, confidence.Signals{
		Description: req.ShotDescription,
		ShotType:    req.ShotType,
		CameraAngle: req.CameraAngle,
	})
	result, err := normalize.Image(res.URL, text, score)
	if err != nil {
		return nil, err
	}

	result.ImageURL = s.archive(ctx, result.ImageURL)
	return result, nil
}

// Refine renders a new frame from refinement guidance. The previous panel is
// only referenced by the caller; it is not sent to the backend.
func (s *PanelService) Refine(ctx context.Context, req *model.RefinePanelRequest) (*model.PanelResult, error) {
	text := prompt.BuildRefinementPrompt(*req)

	res, err := s.router.Image(ctx, router.RefinementRoute(), text)
	if err != nil {
		return nil, upstreamError(err, "Failed to refine panel")
	}

	result, err := normalize.Image(res.URL, text, confidence.Refinement)
	if err != nil {
		return nil, err
	}

	result.ImageURL = s.archive(ctx, result.ImageURL)
	return result, nil
}

func (s *PanelService) archive(ctx context.Context, url string) string {
	if s.archiver == nil {
		return url
	}
	archived, err := s.archiver.Archive(ctx, url)
	if err != nil {
		s.logger.Warn("panel archive failed, keeping provider URL", zap.Error(err))
		return url
	}
	return archived
}
