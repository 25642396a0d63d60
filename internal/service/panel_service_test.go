package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storyboarder/ai-service/internal/apperr"
	"github.com/storyboarder/ai-service/internal/confidence"
	"github.com/storyboarder/ai-service/internal/model"
	"github.com/storyboarder/ai-service/internal/router"
)

func newPanelService(images *fakeImages, archiver Archiver) *PanelService {
	r := router.New(&fakeText{}, &fakeText{}, images, zap.NewNop())
	return NewPanelService(r, archiver, zap.NewNop())
}

func TestGeneratePanel(t *testing.T) {
	images := &fakeImages{url: "https://images.example.com/a.png"}
	svc := newPanelService(images, nil)

	result, err := svc.Generate(context.Background(), &model.GeneratePanelRequest{
		ShotDescription: "Detective crouches by the body under a flickering sign",
		ShotType:        "Close-up",
		CameraAngle:     "Low Angle",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://images.example.com/a.png", result.ImageURL)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Contains(t, result.PromptUsed, "ACTION: Detective crouches")

	require.Len(t, images.calls, 1)
	assert.Equal(t, "dall-e-3", images.calls[0].Model)
	assert.Equal(t, "standard", images.calls[0].Quality)
	assert.Equal(t, result.PromptUsed, images.calls[0].Prompt)
}

func TestGeneratePanel_GoogleSelectorUsesHD(t *testing.T) {
	images := &fakeImages{url: "https://images.example.com/a.png"}
	svc := newPanelService(images, nil)

	result, err := svc.Generate(context.Background(), &model.GeneratePanelRequest{
		ShotDescription: "Rain",
		ModelID:         "gemini-2.0",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.85, result.Confidence)
	require.Len(t, images.calls, 1)
	assert.Equal(t, "hd", images.calls[0].Quality)
	assert.Equal(t, "natural", images.calls[0].Style)
}

func TestGeneratePanel_NoImage(t *testing.T) {
	svc := newPanelService(&fakeImages{url: "  "}, nil)

	_, err := svc.Generate(context.Background(), &model.GeneratePanelRequest{ShotDescription: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNoImageGenerated)
	assert.Equal(t, "No image generated", err.Error())
}

func TestGeneratePanel_ProviderFailure(t *testing.T) {
	svc := newPanelService(&fakeImages{err: errors.New("connection reset")}, nil)

	_, err := svc.Generate(context.Background(), &model.GeneratePanelRequest{ShotDescription: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUpstreamProvider)
	assert.Equal(t, "Failed to generate panel image", err.Error())
}

func TestGeneratePanel_Archived(t *testing.T) {
	svc := newPanelService(&fakeImages{url: "https://images.example.com/a.png"},
		&fakeArchiver{url: "https://cdn.example.com/panels/a.png"})

	result, err := svc.Generate(context.Background(), &model.GeneratePanelRequest{ShotDescription: "x"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/panels/a.png", result.ImageURL)
}

func TestGeneratePanel_ArchiveFailureKeepsProviderURL(t *testing.T) {
	svc := newPanelService(&fakeImages{url: "https://images.example.com/a.png"},
		&fakeArchiver{err: errors.New("bucket unavailable")})

	result, err := svc.Generate(context.Background(), &model.GeneratePanelRequest{ShotDescription: "x"})
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/a.png", result.ImageURL)
}

func TestRefinePanel(t *testing.T) {
	images := &fakeImages{url: "https://images.example.com/b.png"}
	svc := newPanelService(images, nil)

	result, err := svc.Refine(context.Background(), &model.RefinePanelRequest{
		RefinementPrompt: "make it darker",
		PreviousPanelURL: "https://images.example.com/a.png",
	})
	require.NoError(t, err)

	assert.Equal(t, confidence.Refinement, result.Confidence)
	assert.Contains(t, result.PromptUsed, "make it darker")
	assert.NotContains(t, images.calls[0].Prompt, "https://images.example.com/a.png")
}

func TestRefinePanel_ProviderFailure(t *testing.T) {
	svc := newPanelService(&fakeImages{err: errors.New("boom")}, nil)

	_, err := svc.Refine(context.Background(), &model.RefinePanelRequest{
		RefinementPrompt: "brighter",
		PreviousPanelURL: "https://images.example.com/a.png",
	})
	require.Error(t, err)
	assert.Equal(t, "Failed to refine panel", err.Error())
}
