package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyboarder/ai-service/internal/model"
	"github.com/storyboarder/ai-service/internal/service"
	"github.com/storyboarder/ai-service/pkg/response"
)

type StoryboardHandler struct {
	service   *service.StoryboardService
	validator *validator.Validate
}

func NewStoryboardHandler(svc *service.StoryboardService, v *validator.Validate) *StoryboardHandler {
	return &StoryboardHandler{
		service:   svc,
		validator: v,
	}
}

// Start handles POST /storyboards
func (h *StoryboardHandler) Start(c *fiber.Ctx) error {
	var req model.StoryboardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, requiredMessage(err), formatValidationErrors(err))
	}

	result, err := h.service.Start(c.UserContext(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /storyboards/:jobId
func (h *StoryboardHandler) Status(c *fiber.Ctx) error {
	result, err := h.service.Status(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return jobError(c, err)
	}

	return response.OK(c, result)
}

// Result handles GET /storyboards/:jobId/result
func (h *StoryboardHandler) Result(c *fiber.Ctx) error {
	result, err := h.service.Result(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return jobError(c, err)
	}

	return response.OK(c, result)
}

// Cancel handles POST /storyboards/:jobId/cancel
func (h *StoryboardHandler) Cancel(c *fiber.Ctx) error {
	result, err := h.service.Cancel(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return jobError(c, err)
	}

	return response.OK(c, result)
}

func jobError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, service.ErrJobNotCompleted):
		return response.Conflict(c, "Job not completed yet")
	case errors.Is(err, service.ErrJobAlreadyFinished):
		return response.Conflict(c, "Job already finished")
	default:
		return response.ServiceError(c, err.Error())
	}
}
