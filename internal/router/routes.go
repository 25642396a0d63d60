package router

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/storyboarder/ai-service/internal/apperr"
	"github.com/storyboarder/ai-service/internal/confidence"
)

// Provider names a backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

const (
	GeminiTextModel = "gemini-1.5-flash"

	imageSize = openai.CreateImageSize1792x1024
)

// ErrAnthropicNotImplemented is returned for claude/anthropic selectors.
var ErrAnthropicNotImplemented = apperr.Unsupported("Anthropic Claude integration not yet implemented")

// TextRoute is the backend chosen for a shot breakdown.
type TextRoute struct {
	Provider Provider
	Model    string
	// BaseConfidence seeds the heuristic when the model reports no score.
	BaseConfidence float64
}

// ImageRoute is the backend and quality tier chosen for a panel.
type ImageRoute struct {
	Provider Provider
	Model    string
	Size     string
	Quality  string
	Style    string
}

// ResolveText maps a selector to a text backend.
func ResolveText(sel Selector) (TextRoute, error) {
	switch sel.Family {
	case FamilyDefault, FamilyGoogle:
		return TextRoute{Provider: ProviderGemini, Model: GeminiTextModel, BaseConfidence: confidence.BaseGemini}, nil
	case FamilyAnthropic:
		return TextRoute{}, ErrAnthropicNotImplemented
	case FamilyGPT4:
		return TextRoute{Provider: ProviderOpenAI, Model: openai.GPT4Turbo, BaseConfidence: confidence.BaseOpenAIText}, nil
	case FamilyImagen, FamilyUnknown:
		return TextRoute{Provider: ProviderOpenAI, Model: openai.GPT3Dot5Turbo, BaseConfidence: confidence.BaseOpenAIText}, nil
	}
	return TextRoute{Provider: ProviderOpenAI, Model: openai.GPT3Dot5Turbo, BaseConfidence: confidence.BaseOpenAIText}, nil
}

// ResolveImage maps a selector to an image backend. Google-family selectors
// have no dedicated backend yet and get the high-fidelity tier instead.
func ResolveImage(sel Selector) ImageRoute {
	switch sel.ImageFamily {
	case FamilyGoogle, FamilyImagen:
		return ImageRoute{
			Provider: ProviderOpenAI,
			Model:    openai.CreateImageModelDallE3,
			Size:     imageSize,
			Quality:  openai.CreateImageQualityHD,
			Style:    openai.CreateImageStyleNatural,
		}
	default:
		return standardImageRoute()
	}
}

// RefinementRoute is the fixed backend of refinement passes.
func RefinementRoute() ImageRoute {
	return standardImageRoute()
}

func standardImageRoute() ImageRoute {
	return ImageRoute{
		Provider: ProviderOpenAI,
		Model:    openai.CreateImageModelDallE3,
		Size:     imageSize,
		Quality:  openai.CreateImageQualityStandard,
	}
}
