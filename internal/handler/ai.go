package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyboarder/ai-service/internal/apperr"
	"github.com/storyboarder/ai-service/internal/model"
	"github.com/storyboarder/ai-service/internal/service"
	"github.com/storyboarder/ai-service/pkg/response"
)

type AIHandler struct {
	suggestions *service.ShotSuggestionService
	panels      *service.PanelService
	validator   *validator.Validate
}

func NewAIHandler(suggestions *service.ShotSuggestionService, panels *service.PanelService, v *validator.Validate) *AIHandler {
	return &AIHandler{
		suggestions: suggestions,
		panels:      panels,
		validator:   v,
	}
}

// SuggestShots handles POST /suggest-shots
func (h *AIHandler) SuggestShots(c *fiber.Ctx) error {
	var req model.SuggestShotsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, requiredMessage(err), formatValidationErrors(err))
	}

	result, err := h.suggestions.Suggest(c.UserContext(), &req)
	if err != nil {
		return response.AIServiceError(c, apperr.Message(err, "Failed to generate shot suggestions"))
	}

	return response.OK(c, result)
}

// GeneratePanel handles POST /generate-panel
func (h *AIHandler) GeneratePanel(c *fiber.Ctx) error {
	var req model.GeneratePanelRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, requiredMessage(err), formatValidationErrors(err))
	}

	result, err := h.panels.Generate(c.UserContext(), &req)
	if err != nil {
		return response.AIServiceError(c, apperr.Message(err, "Failed to generate panel image"))
	}

	return response.OK(c, result)
}

// RefinePanel handles POST /refine-panel
func (h *AIHandler) RefinePanel(c *fiber.Ctx) error {
	var req model.RefinePanelRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "refinementPrompt and previousPanelUrl are required", formatValidationErrors(err))
	}

	result, err := h.panels.Refine(c.UserContext(), &req)
	if err != nil {
		return response.AIServiceError(c, apperr.Message(err, "Failed to refine panel"))
	}

	return response.OK(c, result)
}

// HealthHandler reports liveness and which backends are wired.
type HealthHandler struct {
	services map[string]bool
}

func NewHealthHandler(services map[string]bool) *HealthHandler {
	return &HealthHandler{services: services}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(model.HealthResponse{
		Status:   "ok",
		Service:  "ai-service",
		Services: h.services,
	})
}
