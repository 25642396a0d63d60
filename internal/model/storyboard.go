package model

import "time"

// StoryboardRequest starts a scene-to-storyboard job.
type StoryboardRequest struct {
	SceneID               string   `json:"sceneId,omitempty"`
	SceneText             string   `json:"sceneText" validate:"required"`
	Style                 string   `json:"style,omitempty"`
	Mood                  string   `json:"mood,omitempty"`
	AspectRatio           string   `json:"aspectRatio,omitempty"`
	VisualDNA             string   `json:"visualDna,omitempty"`
	DirectorNotes         string   `json:"directorNotes,omitempty"`
	CharacterReferences   []string `json:"characterReferences,omitempty"`
	EnvironmentReferences []string `json:"environmentReferences,omitempty"`
	TextModelID           string   `json:"textModelId,omitempty"`
	ImageModelID          string   `json:"imageModelId,omitempty"`
}

type StoryboardStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type StoryboardStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

type StoryboardCancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}

// StoryboardFrame is one panel of a generated storyboard. A frame whose panel
// failed keeps its shot and carries a placeholder image plus the error.
type StoryboardFrame struct {
	Shot       ShotSuggestion `json:"shot"`
	ImageURL   string         `json:"imageUrl"`
	Confidence float64        `json:"confidence"`
	PromptUsed string         `json:"promptUsed,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// StoryboardResult is the stored outcome of a succeeded job.
type StoryboardResult struct {
	JobID       string            `json:"jobId"`
	SceneID     string            `json:"sceneId,omitempty"`
	Frames      []StoryboardFrame `json:"frames"`
	Confidence  float64           `json:"confidence"`
	Reasoning   string            `json:"reasoning,omitempty"`
	FailedCount int               `json:"failedCount"`
	CreatedAt   time.Time         `json:"createdAt"`
}
