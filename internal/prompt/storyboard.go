package prompt

import (
	"strings"

	"github.com/storyboarder/ai-service/internal/model"
)

// PanelRequestForShot turns one suggested shot of a storyboard job into a
// panel request that carries the job-wide style, cast and director notes.
func PanelRequestForShot(job model.StoryboardRequest, shot model.ShotSuggestion) model.GeneratePanelRequest {
	description := shot.Description
	if shot.CameraMovement != "" {
		description = strings.TrimRight(description, ". ") + ". Camera movement: " + shot.CameraMovement
	}
	return model.GeneratePanelRequest{
		ShotDescription:       description,
		ShotType:              shot.ShotType,
		CameraAngle:           shot.CameraAngle,
		DirectorNotes:         job.DirectorNotes,
		Style:                 job.Style,
		VisualDNA:             job.VisualDNA,
		Mood:                  job.Mood,
		AspectRatio:           job.AspectRatio,
		CharacterReferences:   job.CharacterReferences,
		EnvironmentReferences: job.EnvironmentReferences,
		ModelID:               job.ImageModelID,
	}
}
