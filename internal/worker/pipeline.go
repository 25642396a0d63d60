package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/storyboarder/ai-service/internal/apperr"
	"github.com/storyboarder/ai-service/internal/metrics"
	"github.com/storyboarder/ai-service/internal/model"
	"github.com/storyboarder/ai-service/internal/prompt"
)

// PlaceholderImageURL stands in for a panel whose generation failed.
const PlaceholderImageURL = "https://placehold.co/1280x720/18181b/3f3f46?text=RETRY"

// ShotSuggester breaks a scene into shots.
type ShotSuggester interface {
	Suggest(ctx context.Context, req *model.SuggestShotsRequest) (*model.ShotSuggestionsResult, error)
}

// PanelGenerator renders one panel.
type PanelGenerator interface {
	Generate(ctx context.Context, req *model.GeneratePanelRequest) (*model.PanelResult, error)
}

// ProgressFunc records job progress. A non-nil error stops the pipeline.
type ProgressFunc func(progress int, step string) error

// FrameFunc receives each frame as soon as it is ready.
type FrameFunc func(index int, frame model.StoryboardFrame)

// Pipeline turns a scene into a storyboard: one shot list, then one panel per
// shot. Panels run with bounded parallelism behind a shared rate limiter and
// are returned in shot order.
type Pipeline struct {
	suggester   ShotSuggester
	panels      PanelGenerator
	parallelism int
	interval    time.Duration
	logger      *zap.Logger
}

func NewPipeline(suggester ShotSuggester, panels PanelGenerator, parallelism int, interval time.Duration, logger *zap.Logger) *Pipeline {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Pipeline{
		suggester:   suggester,
		panels:      panels,
		parallelism: parallelism,
		interval:    interval,
		logger:      logger.Named("pipeline"),
	}
}

// Run executes the pipeline for one job. Shot-list failures are fatal; panel
// failures become placeholder frames.
func (p *Pipeline) Run(ctx context.Context, jobID string, req model.StoryboardRequest, progress ProgressFunc, onFrame FrameFunc) (*model.StoryboardResult, error) {
	if err := progress(5, "Breaking scene into shots..."); err != nil {
		return nil, err
	}

	shots, err := p.suggester.Suggest(ctx, &model.SuggestShotsRequest{
		SceneID:   req.SceneID,
		SceneText: req.SceneText,
		Style:     req.Style,
		ModelID:   req.TextModelID,
	})
	if err != nil {
		return nil, err
	}

	total := len(shots.Suggestions)
	if err := progress(15, fmt.Sprintf("Generating %d panels...", total)); err != nil {
		return nil, err
	}

	limit := rate.Inf
	if p.interval > 0 {
		limit = rate.Every(p.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	frames := make([]model.StoryboardFrame, total)
	var (
		mu     sync.Mutex
		done   int
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)

	for i, shot := range shots.Suggestions {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			panelReq := prompt.PanelRequestForShot(req, shot)
			frame := model.StoryboardFrame{Shot: shot}

			panel, err := p.panels.Generate(gctx, &panelReq)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("panel failed, using placeholder",
					zap.String("jobId", jobID),
					zap.Int("shot", shot.ShotNumber),
					zap.Error(err),
				)
				metrics.StoryboardPanelsTotal.WithLabelValues("placeholder").Inc()
				frame.ImageURL = PlaceholderImageURL
				frame.Error = apperr.Message(err, "Panel generation failed")
			} else {
				metrics.StoryboardPanelsTotal.WithLabelValues("generated").Inc()
				frame.ImageURL = panel.ImageURL
				frame.Confidence = panel.Confidence
				frame.PromptUsed = panel.PromptUsed
			}

			frames[i] = frame
			onFrame(i, frame)

			mu.Lock()
			defer mu.Unlock()
			done++
			if frame.Error != "" {
				failed++
			}
			return progress(15+done*80/total, fmt.Sprintf("Generated panel %d of %d", done, total))
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.StoryboardResult{
		JobID:       jobID,
		SceneID:     req.SceneID,
		Frames:      frames,
		Confidence:  shots.Confidence,
		Reasoning:   shots.Reasoning,
		FailedCount: failed,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
