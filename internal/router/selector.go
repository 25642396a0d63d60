// Package router maps a caller's model selector onto a concrete backend and
// model, and dispatches calls to the provider clients it was built with.
package router

import "strings"

// Family is the closed set of model families a selector can name.
type Family int

const (
	// FamilyDefault is an empty selector.
	FamilyDefault Family = iota
	// FamilyGoogle covers selectors naming gemini or google.
	FamilyGoogle
	// FamilyAnthropic covers selectors naming claude or anthropic.
	FamilyAnthropic
	// FamilyImagen covers selectors naming imagen.
	FamilyImagen
	// FamilyGPT4 covers selectors naming gpt-4 and its variants.
	FamilyGPT4
	// FamilyUnknown is any other non-empty selector.
	FamilyUnknown
)

func (f Family) String() string {
	switch f {
	case FamilyDefault:
		return "default"
	case FamilyGoogle:
		return "google"
	case FamilyAnthropic:
		return "anthropic"
	case FamilyImagen:
		return "imagen"
	case FamilyGPT4:
		return "gpt-4"
	default:
		return "unknown"
	}
}

// Selector is a parsed modelId. Family drives text routing; ImageFamily
// drives image routing, where anthropic names carry no meaning.
type Selector struct {
	Raw         string
	Family      Family
	ImageFamily Family
}

// ParseSelector classifies a raw modelId once. Matching is by case-insensitive
// substring; when a selector names more than one family the first match in
// the order google, anthropic, imagen, gpt-4 wins for text routing.
func ParseSelector(modelID string) Selector {
	raw := strings.TrimSpace(modelID)
	id := strings.ToLower(raw)

	family := FamilyUnknown
	switch {
	case id == "":
		family = FamilyDefault
	case strings.Contains(id, "gemini") || strings.Contains(id, "google"):
		family = FamilyGoogle
	case strings.Contains(id, "claude") || strings.Contains(id, "anthropic"):
		family = FamilyAnthropic
	case strings.Contains(id, "imagen"):
		family = FamilyImagen
	case strings.Contains(id, "gpt-4"):
		family = FamilyGPT4
	}
	return Selector{Raw: raw, Family: family, ImageFamily: imageFamily(id)}
}

func imageFamily(id string) Family {
	switch {
	case id == "":
		return FamilyDefault
	case strings.Contains(id, "gemini") || strings.Contains(id, "google"):
		return FamilyGoogle
	case strings.Contains(id, "imagen"):
		return FamilyImagen
	case strings.Contains(id, "gpt-4"):
		return FamilyGPT4
	}
	return FamilyUnknown
}
