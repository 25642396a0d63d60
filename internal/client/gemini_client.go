package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/storyboarder/ai-service/internal/config"
)

// ErrGeminiNotConfigured is returned by calls on a client built without a key.
var ErrGeminiNotConfigured = errors.New("Gemini API key is not configured")

// GeminiClient generates text with the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiClient creates a client. Without an API key no SDK client is built
// and every call returns ErrGeminiNotConfigured.
func NewGeminiClient(ctx context.Context, cfg *config.GeminiConfig, timeout time.Duration, logger *zap.Logger) (*GeminiClient, error) {
	c := &GeminiClient{timeout: timeout, logger: logger.Named("gemini")}
	if cfg.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Complete runs a single GenerateContent call with the system prompt as
// system instruction.
func (c *GeminiClient) Complete(ctx context.Context, req TextRequest) (string, error) {
	if c.client == nil {
		return "", ErrGeminiNotConfigured
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	c.logger.Debug("generate content →", zap.String("model", req.Model), zap.Int("promptChars", len(req.User)))

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.User), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// IsConfigured returns true if an SDK client was built
func (c *GeminiClient) IsConfigured() bool {
	return c.client != nil
}

func geminiMessage(err error) (string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && apiErrPtr.Message != "" {
		return apiErrPtr.Message, true
	}
	if errors.Is(err, ErrGeminiNotConfigured) {
		return ErrGeminiNotConfigured.Error(), true
	}
	return "", false
}
