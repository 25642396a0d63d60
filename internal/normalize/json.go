// Package normalize turns raw provider output into the service's result types.
//
// Text output goes through two explicit stages: SliceJSONObject recovers the
// outermost JSON object from free-form text, then DecodeSuggestions parses it
// strictly. Either stage can be exercised on its own.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/storyboarder/ai-service/internal/apperr"
)

// SliceJSONObject returns the text between the first '{' and the last '}'
// inclusive. Input without such a pair is returned unchanged and left for the
// strict parser to reject.
func SliceJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

// SuggestionPayload is the decoded shape of a shot-suggestion response.
// Pointer fields distinguish "absent" from zero.
type SuggestionPayload struct {
	Suggestions       []RawShot
	OverallConfidence *float64
	Reasoning         string
}

// RawShot is one suggestion as the model wrote it.
type RawShot struct {
	ShotNumber     *int
	ShotType       string
	CameraAngle    string
	CameraMovement string
	Description    string
	Duration       string
	Confidence     *float64
}

// wirePayload accepts both the snake_case keys the prompt asks for and the
// camelCase keys some models answer with.
type wirePayload struct {
	Suggestions            []wireShot  `json:"suggestions"`
	OverallConfidence      *flexNumber `json:"overall_confidence"`
	OverallConfidenceCamel *flexNumber `json:"overallConfidence"`
	Confidence             *flexNumber `json:"confidence"`
	Reasoning              flexString  `json:"reasoning"`
}

type wireShot struct {
	ShotNumber          *flexNumber `json:"shot_number"`
	ShotNumberCamel     *flexNumber `json:"shotNumber"`
	ShotType            flexString  `json:"shot_type"`
	ShotTypeCamel       flexString  `json:"shotType"`
	CameraAngle         flexString  `json:"camera_angle"`
	CameraAngleCamel    flexString  `json:"cameraAngle"`
	CameraMovement      flexString  `json:"camera_movement"`
	CameraMovementCamel flexString  `json:"cameraMovement"`
	Description         flexString  `json:"description"`
	Duration            flexString  `json:"duration"`
	Confidence          *flexNumber `json:"confidence"`
}

// DecodeSuggestions strictly parses a JSON object. Anything that is not a
// JSON object fails with ErrMalformedSuggestionPayload. A missing or null
// suggestions array decodes to an empty list.
func DecodeSuggestions(data []byte) (*SuggestionPayload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, apperr.ErrMalformedSuggestionPayload.Wrap(errNotObject)
	}

	var wire wirePayload
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, apperr.ErrMalformedSuggestionPayload.Wrap(err)
	}

	out := &SuggestionPayload{
		Suggestions: make([]RawShot, 0, len(wire.Suggestions)),
		Reasoning:   strings.TrimSpace(string(wire.Reasoning)),
	}
	out.OverallConfidence = firstNumber(wire.OverallConfidence, wire.OverallConfidenceCamel, wire.Confidence)

	for _, s := range wire.Suggestions {
		shot := RawShot{
			ShotType:       firstString(s.ShotType, s.ShotTypeCamel),
			CameraAngle:    firstString(s.CameraAngle, s.CameraAngleCamel),
			CameraMovement: firstString(s.CameraMovement, s.CameraMovementCamel),
			Description:    strings.TrimSpace(string(s.Description)),
			Duration:       strings.TrimSpace(string(s.Duration)),
			Confidence:     firstNumber(s.Confidence),
		}
		if n := firstNumber(s.ShotNumber, s.ShotNumberCamel); n != nil {
			v := int(*n)
			shot.ShotNumber = &v
		}
		out.Suggestions = append(out.Suggestions, shot)
	}
	return out, nil
}

var errNotObject = errors.New("payload is not a JSON object")

// flexNumber decodes a JSON number or a numeric string.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		// Non-numeric values count as absent.
		return nil
	}
	*n = flexNumber(v)
	return nil
}

// flexString decodes a JSON string, or keeps the literal text of a number or bool.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if len(b) > 0 && (b[0] == '{' || b[0] == '[') {
		return nil
	}
	*s = flexString(b)
	return nil
}

func firstNumber(values ...*flexNumber) *float64 {
	for _, v := range values {
		if v != nil {
			f := float64(*v)
			return &f
		}
	}
	return nil
}

func firstString(values ...flexString) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}
