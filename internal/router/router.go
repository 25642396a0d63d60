package router

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/client"
	"github.com/storyboarder/ai-service/internal/metrics"
)

const textTemperature = 0.7

// Router dispatches resolved routes to the provider clients it was built
// with. It holds no other state and is safe for concurrent use.
type Router struct {
	gemini client.TextCompleter
	openai client.TextCompleter
	images client.ImageGenerator
	logger *zap.Logger
}

// New creates a Router over explicitly constructed clients.
func New(gemini, openaiText client.TextCompleter, images client.ImageGenerator, logger *zap.Logger) *Router {
	return &Router{
		gemini: gemini,
		openai: openaiText,
		images: images,
		logger: logger.Named("router"),
	}
}

// Text resolves sel and runs one completion. Unsupported selectors fail
// before any client is called.
func (r *Router) Text(ctx context.Context, sel Selector, system, user string) (string, TextRoute, error) {
	route, err := ResolveText(sel)
	if err != nil {
		metrics.UnsupportedProviderTotal.WithLabelValues(sel.Family.String()).Inc()
		r.logger.Warn("unsupported text provider", zap.String("modelId", sel.Raw))
		return "", route, err
	}

	completer, err := r.textClient(route.Provider)
	if err != nil {
		return "", route, err
	}

	started := time.Now()
	out, err := completer.Complete(ctx, client.TextRequest{
		Model:       route.Model,
		System:      system,
		User:        user,
		Temperature: textTemperature,
		JSONOutput:  route.Provider == ProviderOpenAI,
	})
	metrics.ObserveProvider(string(route.Provider), route.Model, "text", started, err)
	if err != nil {
		r.logger.Warn("text generation failed",
			zap.String("provider", string(route.Provider)),
			zap.String("model", route.Model),
			zap.Error(err),
		)
		return "", route, err
	}
	return out, route, nil
}

// Image runs one image generation on route.
func (r *Router) Image(ctx context.Context, route ImageRoute, prompt string) (*client.ImageResult, error) {
	if r.images == nil {
		return nil, fmt.Errorf("no image client for provider %q", route.Provider)
	}

	started := time.Now()
	res, err := r.images.GenerateImage(ctx, client.ImageRequest{
		Model:   route.Model,
		Prompt:  prompt,
		Size:    route.Size,
		Quality: route.Quality,
		Style:   route.Style,
	})
	metrics.ObserveProvider(string(route.Provider), route.Model, "image", started, err)
	if err != nil {
		r.logger.Warn("image generation failed",
			zap.String("model", route.Model),
			zap.String("quality", route.Quality),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

func (r *Router) textClient(p Provider) (client.TextCompleter, error) {
	switch p {
	case ProviderGemini:
		if r.gemini != nil {
			return r.gemini, nil
		}
	case ProviderOpenAI:
		if r.openai != nil {
			return r.openai, nil
		}
	}
	return nil, fmt.Errorf("no text client for provider %q", p)
}
