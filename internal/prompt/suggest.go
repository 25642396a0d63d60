package prompt

import (
	"fmt"
	"strings"

	"github.com/storyboarder/ai-service/internal/model"
)

// DefaultShotStyle is used when a suggestion request carries no style.
const DefaultShotStyle = "Cinematic"

// ShotSuggestionSystemPrompt is the fixed system instruction for shot breakdowns.
const ShotSuggestionSystemPrompt = `You are an expert Script Supervisor and Director of Photography.
Your job is to break down a screenplay scene into a precise, sequential shot list for storyboarding.
Focus on:
- Visual storytelling and pacing
- Cinematic camera angles (Low, High, Dutch, O.T.S.)
- Clear subject blocking
- NO text overlays or dialogue bubbles in descriptions

Output strictly valid JSON.`

// shotSchema is the literal template the model is asked to fill. The
// normalizer reads these keys.
const shotSchema = `OUTPUT JSON FORMAT:
{
  "suggestions": [
    {
      "shot_number": 1,
      "shot_type": "WS",
      "camera_angle": "High Angle",
      "camera_movement": "Slow Pan Right",
      "description": "Wide establishing shot of the rainy city street. Neon lights reflect on wet pavement.",
      "duration": "4s",
      "confidence": 0.9
    }
  ],
  "overall_confidence": 0.9,
  "reasoning": "Reasoning for the coverage choice..."
}
`

// BuildShotSuggestionPrompt builds the user prompt for a shot breakdown of
// one scene, including a continuity block for shots already on the board.
func BuildShotSuggestionPrompt(req model.SuggestShotsRequest) string {
	var b strings.Builder
	b.WriteString("Analyze this screenplay scene and generate a shot list.\n\n")
	b.WriteString("SCENE CONTEXT:\n")
	b.WriteString(req.SceneText)
	b.WriteString("\n\n")

	if len(req.PreviousShots) > 0 {
		b.WriteString("PRECEDING SHOTS (Maintain Continuity):\n")
		for _, shot := range req.PreviousShots {
			fmt.Fprintf(&b, "- Shot %d: %s | %s\n", shot.ShotNumber, shot.ShotType, shot.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("DIRECTIVE:\n")
	fmt.Fprintf(&b, "Generate 3-6 key shots that visually tell this beat. Use %s style.\n", firstNonEmpty(req.Style, DefaultShotStyle))
	b.WriteString("For each shot, specify:\n")
	b.WriteString("1. Shot Type (WS, MCU, CU, OTS, etc)\n")
	b.WriteString("2. Camera Angle (Eye Level, Low Angle, High Angle)\n")
	b.WriteString("3. Movement (Static, Pan, Tilt, Dolly In/Out, Tracking)\n")
	b.WriteString("4. Visual Description (Concise, focus on action/lighting. NO dialogue.)\n")
	b.WriteString("5. Estimated Duration (e.g. \"2s\", \"5s\")\n\n")
	b.WriteString(shotSchema)
	return b.String()
}
