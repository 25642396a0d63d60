// Package confidence derives a heuristic score for generation results when the
// provider does not report one. The score is an additive proxy over how much
// direction the caller gave, not a calibrated probability.
package confidence

import (
	"math"
	"unicode/utf8"
)

const (
	// BaseImage applies to every panel generated from a shot description.
	BaseImage = 0.85
	// BaseGemini applies to the Gemini text path.
	BaseGemini = 0.85
	// BaseOpenAIText applies to the OpenAI text path.
	BaseOpenAIText = 0.7
	// Refinement is the fixed score of a refinement pass.
	Refinement = 0.82

	Ceiling = 0.98

	detailBonus    = 0.05
	framingBonus   = 0.05
	detailMinRunes = 20
)

// Signals are the request properties the heuristic looks at.
type Signals struct {
	Description string
	ShotType    string
	CameraAngle string
}

// Estimate starts at base, adds a bonus for a description longer than twenty
// characters and another when both shot type and camera angle are given, then
// caps the result at Ceiling. The result is rounded to two decimals.
func Estimate(base float64, s Signals) float64 {
	score := base
	if utf8.RuneCountInString(s.Description) > detailMinRunes {
		score += detailBonus
	}
	if s.ShotType != "" && s.CameraAngle != "" {
		score += framingBonus
	}
	return round2(math.Min(score, Ceiling))
}

// Clamp forces a provider-reported score into [0,1].
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// OrDefault returns the clamped reported score, or fallback when the provider
// reported nothing usable.
func OrDefault(reported *float64, fallback float64) float64 {
	if reported == nil || *reported <= 0 || math.IsNaN(*reported) {
		return fallback
	}
	return Clamp(*reported)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
