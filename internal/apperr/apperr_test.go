package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_KindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Upstream("Failed to generate panel image", cause)

	assert.Equal(t, "Failed to generate panel image", err.Error())
	assert.ErrorIs(t, err, ErrUpstreamProvider)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUpstreamFormat)
}

func TestError_NamedErrorsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("panel: %w", ErrNoImageGenerated.Wrap(errors.New("empty data")))

	assert.ErrorIs(t, err, ErrNoImageGenerated)
	assert.ErrorIs(t, err, ErrUpstreamFormat)
	assert.NotErrorIs(t, err, ErrMalformedSuggestionPayload)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Anthropic Claude integration not yet implemented",
		Message(fmt.Errorf("route: %w", Unsupported("Anthropic Claude integration not yet implemented")), "fallback"))
	assert.Equal(t, "boom", Message(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", Message(nil, "fallback"))
}
