package conversion

import (
	"errors"

	"ogre/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for conversion jobs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the conversion routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api/v1/conversions")
	api.Get("/", h.HandleList)
	api.Post("/sweep", h.HandleSweep)
	api.Get("/:id", h.HandleGet)
}

// HandleList lists recent conversion jobs.
// @Summary List conversion jobs
// @Tags conversion
// @Produce json
// @Param state query string false "queued, running, succeeded or failed"
// @Param limit query int false "Maximum number of jobs (default 20, max 100)"
// @Success 200 {array} conversion.Job
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /api/v1/conversions [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	jobs, err := h.service.jobs.List(c.UserContext(), State(c.Query("state")), c.QueryInt("limit", 20))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list conversion jobs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(jobs)
}

// HandleGet returns one conversion job.
// @Summary Get conversion job
// @Tags conversion
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} conversion.Job
// @Failure 404 {object} map[string]string "Not found"
// @Security ApiKeyAuth
// @Router /api/v1/conversions/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	job, err := h.service.jobs.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrJobNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to load conversion job", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(job)
}

// HandleSweep runs a conversion sweep now.
// @Summary Sweep missing formats
// @Description Queues conversions for fiction ebooks whose top version lacks an uploaded target format.
// @Tags conversion
// @Produce json
// @Success 200 {object} conversion.SweepReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /api/v1/conversions/sweep [post]
func (h *Handler) HandleSweep(c *fiber.Ctx) error {
	report, err := h.service.Sweep(c.UserContext())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Conversion sweep failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}
