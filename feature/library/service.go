package library

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ogre/core/storage"
	"ogre/feature/library/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service exposes the library operations used by the HTTP handler and the CLI.
type Service struct {
	store   *Store
	syncer  *Syncer
	users   *CachedUserCounter
	client  storage.Client
	storage storage.Config
	config  Config
	logger  *zap.Logger
}

// NewService creates a library service. indexer may be nil.
func NewService(db *gorm.DB, client storage.Client, storageCfg storage.Config, cfg Config, indexer Indexer, logger *zap.Logger) *Service {
	store := NewStore(db)
	users := NewCachedUserCounter(store.CountUsers, cfg.UserCountTTL(), logger)
	return &Service{
		store:   store,
		syncer:  NewSyncer(store, users, indexer, logger),
		users:   users,
		client:  client,
		storage: storageCfg,
		config:  cfg,
		logger:  logger,
	}
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// Sync reconciles a client batch.
func (s *Service) Sync(ctx context.Context, user *models.User, batch map[string]SyncRecord) *SyncResponse {
	return s.syncer.Sync(ctx, user, batch)
}

// Confirm migrates a format to the hash the client computed after tagging.
func (s *Service) Confirm(ctx context.Context, oldHash, newHash string) (ConfirmStatus, error) {
	return Confirm(ctx, s.store, oldHash, newHash)
}

// Definitions returns the ordered format table.
func (s *Service) Definitions() []FormatDefinition {
	return Definitions
}

// GetEbook returns an ebook with its versions in rank order.
func (s *Service) GetEbook(ctx context.Context, ebookID string) (*models.Ebook, error) {
	return s.store.LoadEbook(ctx, ebookID)
}

// PendingUploads lists the formats the user still has to upload.
func (s *Service) PendingUploads(ctx context.Context, user *models.User) ([]PendingUpload, error) {
	return s.store.PendingUploads(ctx, user.ID)
}

// SyncEvents lists the user's latest syncs.
func (s *Service) SyncEvents(ctx context.Context, user *models.User, limit int) ([]models.SyncEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.SyncEvents(ctx, user.ID, limit)
}

// Upload streams a file to storage and marks its format uploaded. Only an
// owner of the format may upload it.
func (s *Service) Upload(ctx context.Context, user *models.User, ebookID, fileHash, format string, r io.Reader, size int64) (*models.Format, error) {
	f, err := s.store.FormatByHash(ctx, strings.ToLower(fileHash))
	if err != nil {
		return nil, fmt.Errorf("failed to look up format: %w", err)
	}
	if f == nil || f.Version == nil || f.Version.EbookID != ebookID {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotFound, fileHash)
	}
	if !strings.EqualFold(f.Format, format) {
		return nil, badMetaData("format %s does not match stored format %s", format, f.Format)
	}

	owners, err := s.store.Owners(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owners: %w", err)
	}
	if !owners.Contains(user.ID) {
		return nil, fmt.Errorf("%w: %s is not owned by user %d", ErrFormatNotFound, fileHash, user.ID)
	}

	key := storage.ObjectKey(ebookID, f.FileHash, f.Format)
	if _, err := storage.Upload(ctx, s.client, s.storage.Bucket, key, r, size); err != nil {
		return nil, err
	}
	if err := s.store.MarkUploaded(ctx, f.ID, key, user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark %s uploaded: %w", fileHash, err)
	}

	f.Uploaded = true
	f.S3Filename = key
	f.UploadedByID = &user.ID
	s.logger.Info("Ebook uploaded", zap.String("ebook_id", ebookID), zap.String("file_hash", f.FileHash), zap.String("key", key))
	return f, nil
}

// DownloadURL selects the best format for the request, bumps the version's
// popularity and returns a short-lived signed URL. user may be nil.
func (s *Service) DownloadURL(ctx context.Context, user *models.User, ebookID string, versionID uint, format string) (string, error) {
	ebook, err := s.store.LoadEbook(ctx, ebookID)
	if err != nil {
		return "", err
	}

	preferred := ""
	if user != nil {
		preferred = user.PreferredFormat
	}
	version, f, err := SelectBestFormat(ebook.Versions, versionID, format, preferred, s.config.Formats())
	if err != nil {
		return "", err
	}

	key := f.S3Filename
	if key == "" {
		key = storage.ObjectKey(ebook.EbookID, f.FileHash, f.Format)
	}
	u, err := s.client.PresignedGetObject(ctx, s.storage.Bucket, key, s.storage.DownloadExpiry(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to sign download url: %w", err)
	}

	if err := s.store.BumpPopularity(ctx, version.ID, s.users.TotalUsers(ctx)); err != nil {
		s.logger.Warn("Failed to bump popularity on download", zap.Uint("version_id", version.ID), zap.Error(err))
	}
	return u.String(), nil
}

// CreateUser registers a user with a fresh API key.
func (s *Service) CreateUser(ctx context.Context, username, preferredFormat string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, badMetaData("username is required")
	}
	user := &models.User{
		Username:        username,
		APIKey:          strings.ReplaceAll(uuid.NewString(), "-", ""),
		PreferredFormat: strings.ToLower(preferredFormat),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	s.users.Invalidate()
	return user, nil
}

// UserByAPIKey resolves an API key to a user.
func (s *Service) UserByAPIKey(ctx context.Context, key string) (*models.User, error) {
	return s.store.UserByAPIKey(ctx, key)
}
