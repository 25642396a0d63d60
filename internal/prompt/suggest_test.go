package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storyboarder/ai-service/internal/model"
)

func TestBuildShotSuggestionPrompt_NoPreviousShots(t *testing.T) {
	got := BuildShotSuggestionPrompt(model.SuggestShotsRequest{SceneText: "EXT. DOCKS - NIGHT\nFog rolls in."})

	assert.True(t, strings.HasPrefix(got, "Analyze this screenplay scene and generate a shot list.\n\nSCENE CONTEXT:\nEXT. DOCKS - NIGHT\nFog rolls in.\n\nDIRECTIVE:\n"))
	assert.NotContains(t, got, "PRECEDING SHOTS")
	assert.Contains(t, got, "Use Cinematic style.")
	assert.Contains(t, got, `"overall_confidence": 0.9`)
	assert.True(t, strings.HasSuffix(got, "}\n"))
}

func TestBuildShotSuggestionPrompt_ContinuityBlock(t *testing.T) {
	got := BuildShotSuggestionPrompt(model.SuggestShotsRequest{
		SceneText: "The heist begins.",
		Style:     "Anime",
		PreviousShots: []model.ShotSuggestion{
			{ShotNumber: 1, ShotType: "WS", Description: "Vault exterior"},
			{ShotNumber: 2, ShotType: "CU", Description: "Gloved hand on dial"},
		},
	})

	assert.Contains(t, got, "PRECEDING SHOTS (Maintain Continuity):\n- Shot 1: WS | Vault exterior\n- Shot 2: CU | Gloved hand on dial\n\nDIRECTIVE:")
	assert.Contains(t, got, "Use Anime style.")
	assert.Less(t, strings.Index(got, "SCENE CONTEXT:"), strings.Index(got, "PRECEDING SHOTS"))
}

func TestBuildShotSuggestionPrompt_RequestsFiveAttributes(t *testing.T) {
	got := BuildShotSuggestionPrompt(model.SuggestShotsRequest{SceneText: "x"})
	for _, line := range []string{"1. Shot Type", "2. Camera Angle", "3. Movement", "4. Visual Description", "5. Estimated Duration"} {
		assert.Contains(t, got, line)
	}
	assert.Contains(t, got, "Generate 3-6 key shots")
}

func TestBuildRefinementPrompt(t *testing.T) {
	got := BuildRefinementPrompt(model.RefinePanelRequest{
		RefinementPrompt: "make the sky stormier",
		PreviousPanelURL: "https://img.example.com/panel.png",
	})

	assert.Equal(t, "Refine this storyboard panel: make the sky stormier. "+
		"Maintain the same style, composition, and visual consistency as the original panel. "+
		"Only change what is specified in the refinement request. "+
		"Keep it as a professional storyboard sketch, draft quality.", got)
	assert.NotContains(t, got, "https://img.example.com/panel.png")
}

func TestPanelRequestForShot(t *testing.T) {
	job := model.StoryboardRequest{
		SceneText:           "ignored",
		Style:               "Noir",
		VisualDNA:           "ink wash",
		DirectorNotes:       "no faces",
		CharacterReferences: []string{"JOE"},
		ImageModelID:        "imagen-3",
	}
	shot := model.ShotSuggestion{ShotNumber: 2, ShotType: "MCU", CameraAngle: "Eye Level", CameraMovement: "Dolly In", Description: "Joe lights a match."}

	req := PanelRequestForShot(job, shot)

	assert.Equal(t, "Joe lights a match. Camera movement: Dolly In", req.ShotDescription)
	assert.Equal(t, "MCU", req.ShotType)
	assert.Equal(t, "imagen-3", req.ModelID)
	assert.Equal(t, "ink wash", req.VisualDNA)

	got := BuildPanelPrompt(req)
	assert.Contains(t, got, "PRODUCTION STYLE DNA: ink wash. ")
	assert.True(t, strings.Index(got, "DIRECTOR OVERRIDE: no faces.") > strings.Index(got, "ACTION:"))
}
