package search

import (
	"ogre/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves search queries.
type Handler struct {
	index  *Index
	logger *zap.Logger
}

// NewHandler creates a search handler.
func NewHandler(index *Index, logger *zap.Logger) *Handler {
	return &Handler{index: index, logger: logger}
}

// RegisterRoutes registers the search routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Group("/api/v1").Get("/search", h.HandleSearch)
}

// HandleSearch finds ebooks by author or title.
// @Summary Search ebooks
// @Description Returns ebooks whose author or title contains every term of q.
// @Tags search
// @Produce json
// @Param q query string true "Search terms"
// @Param limit query int false "Maximum results (default 25)"
// @Success 200 {array} search.Document
// @Failure 400 {object} map[string]string "Missing query"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /api/v1/search [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}

	docs, err := h.index.Search(c.UserContext(), q, c.QueryInt("limit", 25))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(docs)
}
