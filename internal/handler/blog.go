package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/blogforge/api/internal/model"
	"github.com/blogforge/api/internal/service"
	"github.com/blogforge/api/pkg/response"
)

type BlogHandler struct {
	service   *service.BlogService
	validator *validator.Validate
}

func NewBlogHandler(svc *service.BlogService, v *validator.Validate) *BlogHandler {
	return &BlogHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/blog/generate
func (h *BlogHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.StartGeneration(&req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/blog/status/:jobId
func (h *BlogHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Result handles GET /api/blog/result/:jobId
func (h *BlogHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetResult(jobID)
	if err != nil {
		var failed *service.FailedJobError
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			return response.NotFound(c, "Job not found")
		case errors.Is(err, service.ErrJobRunning):
			return response.Accepted(c, fiber.Map{
				"jobId":  jobID,
				"status": model.JobStatusRunning,
			})
		case errors.As(err, &failed):
			return response.JobFailed(c, failed.JobError)
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	return response.OK(c, result)
}

// Cancel handles DELETE /api/blog/:jobId
func (h *BlogHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	if err := h.service.Cancel(jobID); err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, fiber.Map{
		"jobId":  jobID,
		"status": "cancelled",
	})
}

// List handles GET /api/blog/jobs
func (h *BlogHandler) List(c *fiber.Ctx) error {
	jobs := h.service.ListJobs()
	return response.OK(c, fiber.Map{
		"count": len(jobs),
		"jobs":  jobs,
	})
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errs := make(map[string]string)
		for _, e := range validationErrors {
			errs[e.Field()] = e.Tag()
		}
		return errs
	}
	return nil
}
