// Package prompt assembles the natural-language instructions sent to the
// generation backends. Every builder is pure and deterministic: the same
// request always yields the same string, and absent optional fields add
// nothing to it.
package prompt

import (
	"strings"

	"github.com/storyboarder/ai-service/internal/model"
)

const (
	panelPreamble = "Production-Grade Storyboard Frame. Professional film pre-visualization quality. Black & white ink style. "

	panelRequirements = "REQUIREMENTS: No text overlays, no speech bubbles. No color (grayscale only). No detailed UI. Capture specific movement if described."

	DefaultVisualStyle = "Noir / High Contrast"
	DefaultMood        = "Neutral"
)

// BuildPanelPrompt builds the image prompt for a single storyboard frame.
//
// Sections are emitted in a fixed order: preamble, style DNA, characters,
// location, shot type, camera angle, action, visual style, mood, aspect ratio,
// director override, requirements. The director override is the last
// directive so that it wins over everything before it.
func BuildPanelPrompt(req model.GeneratePanelRequest) string {
	var b strings.Builder
	b.WriteString(panelPreamble)

	section(&b, "PRODUCTION STYLE DNA", req.VisualDNA)
	section(&b, "CHARACTERS", strings.Join(nonEmpty(req.CharacterReferences), ", "))
	section(&b, "LOCATION", strings.Join(nonEmpty(req.EnvironmentReferences), ", "))
	section(&b, "SHOT TYPE", req.ShotType)
	section(&b, "CAMERA ANGLE", req.CameraAngle)

	// The action is mandatory and always copied verbatim.
	b.WriteString("ACTION: ")
	b.WriteString(req.ShotDescription)
	b.WriteString(". ")

	section(&b, "VISUAL STYLE", firstNonEmpty(req.VisualStyle, req.Style, DefaultVisualStyle))
	section(&b, "MOOD", firstNonEmpty(req.Mood, DefaultMood))
	section(&b, "ASPECT RATIO", req.AspectRatio)

	if req.DirectorNotes != "" {
		b.WriteString("DIRECTOR OVERRIDE: ")
		b.WriteString(req.DirectorNotes)
		b.WriteString(". THIS RULE TAKES PRECEDENCE OVER ALL OTHERS. ")
	}

	b.WriteString(panelRequirements)
	return b.String()
}

func section(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString(". ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
