package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyboarder/ai-service/internal/model"
)

func TestRequiredMessage_UsesJSONName(t *testing.T) {
	v := NewValidator()

	err := v.Struct(&model.GeneratePanelRequest{ShotType: "CU"})
	require.Error(t, err)
	assert.Equal(t, "shotDescription is required", requiredMessage(err))
	assert.Equal(t, map[string]string{"shotDescription": "required"}, formatValidationErrors(err))
}

func TestRequiredMessage_Storyboard(t *testing.T) {
	err := NewValidator().Struct(&model.StoryboardRequest{})
	require.Error(t, err)
	assert.Equal(t, "sceneText is required", requiredMessage(err))
}

func TestRequiredMessage_Valid(t *testing.T) {
	assert.NoError(t, NewValidator().Struct(&model.SuggestShotsRequest{SceneText: "x"}))
	assert.Nil(t, formatValidationErrors(nil))
}
