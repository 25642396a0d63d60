package model

// GeneratePanelRequest is the input of POST /generate-panel.
type GeneratePanelRequest struct {
	ShotID                string   `json:"shotId,omitempty"`
	ShotDescription       string   `json:"shotDescription" validate:"required"`
	ShotType              string   `json:"shotType,omitempty"`
	CameraAngle           string   `json:"cameraAngle,omitempty"`
	DirectorNotes         string   `json:"directorNotes,omitempty"`
	Style                 string   `json:"style,omitempty"`
	VisualStyle           string   `json:"visualStyle,omitempty"`
	VisualDNA             string   `json:"visualDna,omitempty"`
	Mood                  string   `json:"mood,omitempty"`
	AspectRatio           string   `json:"aspectRatio,omitempty"`
	CharacterReferences   []string `json:"characterReferences,omitempty"`
	EnvironmentReferences []string `json:"environmentReferences,omitempty"`
	ModelID               string   `json:"modelId,omitempty"`
}

// RefinePanelRequest is the input of POST /refine-panel.
type RefinePanelRequest struct {
	PanelID          string `json:"panelId,omitempty"`
	RefinementPrompt string `json:"refinementPrompt" validate:"required"`
	PreviousPanelURL string `json:"previousPanelUrl" validate:"required"`
	StyleReferenceID string `json:"styleReferenceId,omitempty"`
}

// SuggestShotsRequest is the input of POST /suggest-shots.
type SuggestShotsRequest struct {
	SceneID       string           `json:"sceneId,omitempty"`
	SceneText     string           `json:"sceneText" validate:"required"`
	PreviousShots []ShotSuggestion `json:"previousShots,omitempty"`
	Style         string           `json:"style,omitempty"`
	ModelID       string           `json:"modelId,omitempty"`
}

// ShotSuggestion is one proposed shot, in narrative order.
type ShotSuggestion struct {
	ShotNumber     int     `json:"shotNumber"`
	ShotType       string  `json:"shotType"`
	CameraAngle    string  `json:"cameraAngle"`
	CameraMovement string  `json:"cameraMovement,omitempty"`
	Description    string  `json:"description"`
	Duration       string  `json:"duration,omitempty"`
	Confidence     float64 `json:"confidence"`
}

// ShotSuggestionsResult is returned by POST /suggest-shots.
type ShotSuggestionsResult struct {
	Suggestions []ShotSuggestion `json:"suggestions"`
	Confidence  float64          `json:"confidence"`
	Reasoning   string           `json:"reasoning,omitempty"`
}

// PanelResult is returned by POST /generate-panel and POST /refine-panel.
type PanelResult struct {
	ImageURL   string  `json:"imageUrl"`
	Confidence float64 `json:"confidence"`
	PromptUsed string  `json:"promptUsed"`
	Seed       *int64  `json:"seed,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string          `json:"status"`
	Service  string          `json:"service"`
	Services map[string]bool `json:"services,omitempty"`
}
