package client

import (
	"context"
	"time"
)

// TextRequest is a single chat-style completion.
type TextRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
	// JSONOutput asks the backend to answer with a JSON object when it
	// supports a structured response format.
	JSONOutput bool
}

// TextCompleter returns the raw text a model produced for a prompt.
type TextCompleter interface {
	Complete(ctx context.Context, req TextRequest) (string, error)
	IsConfigured() bool
}

// ImageRequest is a single text-to-image generation.
type ImageRequest struct {
	Model   string
	Prompt  string
	Size    string
	Quality string
	Style   string
}

// ImageResult is what the image backend returned. URL may be empty; callers
// decide whether that is an error.
type ImageResult struct {
	URL           string
	RevisedPrompt string
}

// ImageGenerator creates one image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
	IsConfigured() bool
}

// withTimeout bounds a provider call when d is positive. Zero leaves the
// caller's context and the HTTP client defaults in charge.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
