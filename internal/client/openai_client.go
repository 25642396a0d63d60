package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/config"
)

// ErrEmptyCompletion is returned when the backend answered without content.
var ErrEmptyCompletion = errors.New("No response from AI service")

// OpenAIClient talks to the OpenAI chat and image endpoints.
type OpenAIClient struct {
	client       *openai.Client
	apiKey       string
	textTimeout  time.Duration
	imageTimeout time.Duration
	logger       *zap.Logger
}

// NewOpenAIClient creates a client. A missing API key is allowed so the
// service can start; calls then fail with the provider's authentication error.
func NewOpenAIClient(cfg *config.OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	oaCfg.HTTPClient = &http.Client{}

	return &OpenAIClient{
		client:       openai.NewClientWithConfig(oaCfg),
		apiKey:       cfg.APIKey,
		textTimeout:  cfg.TextTimeout,
		imageTimeout: cfg.ImageTimeout,
		logger:       logger.Named("openai"),
	}
}

// Complete sends a system + user chat completion and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req TextRequest) (string, error) {
	ctx, cancel := withTimeout(ctx, c.textTimeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
	}
	if req.JSONOutput {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	c.logger.Debug("chat completion →", zap.String("model", req.Model), zap.Int("promptChars", len(req.User)))

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("chat completion ←",
		zap.String("model", resp.Model),
		zap.Int("totalTokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage requests a single image and returns its URL.
func (c *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	ctx, cancel := withTimeout(ctx, c.imageTimeout)
	defer cancel()

	imgReq := openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          req.Model,
		N:              1,
		Size:           req.Size,
		Quality:        req.Quality,
		Style:          req.Style,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	}

	c.logger.Debug("image generation →",
		zap.String("model", req.Model),
		zap.String("quality", req.Quality),
		zap.String("size", req.Size),
	)

	resp, err := c.client.CreateImage(ctx, imgReq)
	if err != nil {
		return nil, fmt.Errorf("openai image generation: %w", err)
	}

	result := &ImageResult{}
	if len(resp.Data) > 0 {
		result.URL = resp.Data[0].URL
		result.RevisedPrompt = resp.Data[0].RevisedPrompt
	}
	return result, nil
}

// IsConfigured returns true if the client has an API key
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// ProviderMessage extracts the message a provider attached to err, if any.
func ProviderMessage(err error) (string, bool) {
	var oaErr *openai.APIError
	if errors.As(err, &oaErr) && oaErr.Message != "" {
		return oaErr.Message, true
	}
	if msg, ok := geminiMessage(err); ok {
		return msg, true
	}
	if errors.Is(err, ErrEmptyCompletion) {
		return ErrEmptyCompletion.Error(), true
	}
	return "", false
}
