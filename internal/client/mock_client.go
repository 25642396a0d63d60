package client

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
)

// MockTextCompleter answers every shot-breakdown request with a fixed
// three-shot list wrapped in chatter, the way real models sometimes answer.
type MockTextCompleter struct{}

func (MockTextCompleter) Complete(ctx context.Context, req TextRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return `Here is the shot list you asked for:
{
  "suggestions": [
    {"shot_number": 1, "shot_type": "WS", "camera_angle": "Eye Level", "camera_movement": "Static",
     "description": "Wide establishing shot of the location, subject small in frame.", "duration": "4s", "confidence": 0.9},
    {"shot_number": 2, "shot_type": "MCU", "camera_angle": "Low Angle", "camera_movement": "Dolly In",
     "description": "Subject reacts, light falling across the face.", "duration": "3s", "confidence": 0.85},
    {"shot_number": 3, "shot_type": "CU", "camera_angle": "High Angle", "camera_movement": "Tilt Down",
     "description": "Detail insert on the object driving the beat.", "duration": "2s", "confidence": 0.8}
  ],
  "overall_confidence": 0.86,
  "reasoning": "Establish geography, push into the reaction, land on the detail."
}
Let me know if you want alternates.`, nil
}

func (MockTextCompleter) IsConfigured() bool { return true }

// MockImageGenerator returns a deterministic placeholder image per prompt.
type MockImageGenerator struct{}

func (MockImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.Prompt))

	size := req.Size
	if size == "" {
		size = "1792x1024"
	}
	label := url.QueryEscape(fmt.Sprintf("%s %s %08x", req.Model, req.Quality, h.Sum32()))
	return &ImageResult{
		URL: fmt.Sprintf("https://placehold.co/%s/18181b/e4e4e7?text=%s", size, label),
	}, nil
}

func (MockImageGenerator) IsConfigured() bool { return true }
