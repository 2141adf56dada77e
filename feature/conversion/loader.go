package conversion

import (
	"ogre/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the conversion feature. db may be nil, which disables it.
func NewFeature(db *gorm.DB, client storage.Client, storageCfg storage.Config, cfg Config, logger *zap.Logger) *Feature {
	if db == nil {
		return &Feature{}
	}
	svc := NewService(db, client, storageCfg, cfg, nil, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service returns the conversion service, nil when disabled.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "conversion"
}

// IsEnabled reports whether a database is available.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
