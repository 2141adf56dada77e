package library

import (
	"errors"
	"strconv"

	"ogre/core/logger"
	"ogre/core/middleware/auth"
	"ogre/feature/library/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the library.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the library routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	api := app.Group("/api/v1")
	api.Post("/sync", h.HandleSync)
	api.Post("/confirm", h.HandleConfirm)
	api.Get("/definitions", h.HandleDefinitions)
	api.Get("/to-upload", h.HandleToUpload)
	api.Post("/upload", h.HandleUpload)
	api.Get("/ebooks/:ebook_id", h.HandleGetEbook)
	api.Get("/sync-events", h.HandleSyncEvents)

	app.Get("/download/:ebook_id", h.HandleDownload)
}

// ConfirmRequest is the body of a confirm call.
type ConfirmRequest struct {
	FileHash string `json:"file_hash"`
	NewHash  string `json:"new_hash"`
}

func currentUser(c *fiber.Ctx) (*models.User, error) {
	if u, ok := c.Locals(auth.LocalsKey).(*models.User); ok && u != nil {
		return u, nil
	}
	return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "endpoint requires a user API key"})
}

// HandleSync reconciles a batch of scanned books.
// @Summary Sync library
// @Description Classifies each scanned book as new, new version/format or duplicate and returns what the client must tag and upload.
// @Tags library
// @Accept json
// @Produce json
// @Param batch body map[string]library.SyncRecord true "Books keyed by firstname\u0006lastname\u0007title"
// @Success 200 {object} library.SyncResponse
// @Failure 400 {object} map[string]string "Invalid body"
// @Failure 403 {object} map[string]string "Admin key used"
// @Security ApiKeyAuth
// @Router /api/v1/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}

	var batch map[string]SyncRecord
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sync body"})
	}

	resp := h.service.Sync(c.UserContext(), user, batch)
	logger.WithRayID(h.service.logger, c).Info("Sync completed",
		zap.Uint("user", user.ID),
		zap.Int("synced", len(batch)),
		zap.Int("to_update", len(resp.ToUpdate)),
		zap.Int("errors", len(resp.Errors)))
	return c.JSON(resp)
}

// HandleConfirm moves a format to its post-tagging hash.
// @Summary Confirm rehash
// @Description Answers "ok", "fail" or "same" as plain text.
// @Tags library
// @Accept json
// @Produce plain
// @Param request body library.ConfirmRequest true "Old and new hash"
// @Success 200 {string} string "ok | fail | same"
// @Failure 400 {object} map[string]string "Invalid body"
// @Security ApiKeyAuth
// @Router /api/v1/confirm [post]
func (h *Handler) HandleConfirm(c *fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid confirm body"})
	}

	status, err := h.service.Confirm(c.UserContext(), req.FileHash, req.NewHash)
	if err != nil {
		l := logger.WithRayID(h.service.logger, c).With(zap.String("file_hash", req.FileHash), zap.String("new_hash", req.NewHash))
		switch {
		case errors.Is(err, ErrSameHashSuppliedOnUpdate), errors.Is(err, ErrFormatNotFound), errors.Is(err, ErrBadMetaData):
			l.Info("Confirm rejected", zap.String("status", string(status)), zap.Error(err))
		default:
			l.Error("Confirm failed", zap.Error(err))
		}
	}
	return c.SendString(string(status))
}

// HandleDefinitions returns the ordered format table.
// @Summary Format definitions
// @Description Ordered list of [extension, is_valid_format, is_non_fiction].
// @Tags library
// @Produce json
// @Success 200 {array} array
// @Security ApiKeyAuth
// @Router /api/v1/definitions [get]
func (h *Handler) HandleDefinitions(c *fiber.Ctx) error {
	return c.JSON(h.service.Definitions())
}

// HandleToUpload lists formats the caller still has to upload.
// @Summary Pending uploads
// @Description Ordered list of [ebook_id, file_hash, format].
// @Tags library
// @Produce json
// @Success 200 {array} array
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /api/v1/to-upload [get]
func (h *Handler) HandleToUpload(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	pending, err := h.service.PendingUploads(c.UserContext(), user)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Pending upload listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if pending == nil {
		pending = []PendingUpload{}
	}
	return c.JSON(pending)
}

// HandleUpload stores an ebook file.
// @Summary Upload ebook
// @Tags library
// @Accept multipart/form-data
// @Produce json
// @Param ebook_id formData string true "Ebook ID"
// @Param file_hash formData string true "File hash"
// @Param format formData string true "Format"
// @Param ebook formData file true "Ebook file"
// @Success 200 {object} models.Format
// @Failure 400 {object} map[string]string "Invalid form"
// @Failure 404 {object} map[string]string "Unknown format"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /api/v1/upload [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}

	ebookID, fileHash, format := c.FormValue("ebook_id"), c.FormValue("file_hash"), c.FormValue("format")
	if ebookID == "" || fileHash == "" || format == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ebook_id, file_hash and format are required"})
	}
	header, err := c.FormFile("ebook")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing ebook file"})
	}
	file, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable ebook file"})
	}
	defer file.Close()

	l := logger.WithRayID(h.service.logger, c).With(zap.String("ebook_id", ebookID), zap.String("file_hash", fileHash))
	f, err := h.service.Upload(c.UserContext(), user, ebookID, fileHash, format, file, header.Size)
	switch {
	case errors.Is(err, ErrFormatNotFound):
		l.Info("Upload rejected", zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrBadMetaData):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Upload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(f)
}

// HandleGetEbook returns an ebook with versions and formats.
// @Summary Get ebook
// @Tags library
// @Produce json
// @Param ebook_id path string true "Ebook ID"
// @Success 200 {object} models.Ebook
// @Failure 404 {object} map[string]string "Not found"
// @Security ApiKeyAuth
// @Router /api/v1/ebooks/{ebook_id} [get]
func (h *Handler) HandleGetEbook(c *fiber.Ctx) error {
	ebook, err := h.service.GetEbook(c.UserContext(), c.Params("ebook_id"))
	if errors.Is(err, ErrEbookNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Ebook lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(ebook)
}

// HandleSyncEvents lists the caller's recent syncs.
// @Summary Sync log
// @Tags library
// @Produce json
// @Param limit query int false "Maximum events (default 20)"
// @Success 200 {array} models.SyncEvent
// @Security ApiKeyAuth
// @Router /api/v1/sync-events [get]
func (h *Handler) HandleSyncEvents(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	events, err := h.service.SyncEvents(c.UserContext(), user, c.QueryInt("limit", 20))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Sync event listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(events)
}

// HandleDownload redirects to a short-lived signed URL of the best file.
// @Summary Download ebook
// @Tags library
// @Param ebook_id path string true "Ebook ID"
// @Param version_id query int false "Version ID"
// @Param format query string false "Format"
// @Success 302 {string} string "Redirect to signed URL"
// @Failure 404 {object} map[string]string "No format available"
// @Security ApiKeyAuth
// @Router /download/{ebook_id} [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	user, _ := c.Locals(auth.LocalsKey).(*models.User)

	var versionID uint
	if raw := c.Query("version_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid version_id"})
		}
		versionID = uint(id)
	}

	url, err := h.service.DownloadURL(c.UserContext(), user, c.Params("ebook_id"), versionID, c.Query("format"))
	switch {
	case errors.Is(err, ErrEbookNotFound), errors.Is(err, ErrNoFormatAvailable):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		logger.WithRayID(h.service.logger, c).Error("Download failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Redirect(url, fiber.StatusFound)
}
