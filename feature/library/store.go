package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ogre/feature/library/models"

	mapset "github.com/deckarep/golang-set/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// bumpPopularitySQL assigns ranking before popularity so MySQL, which evaluates
// SET left to right with updated values, computes the same result as SQLite and
// PostgreSQL.
const bumpPopularitySQL = "UPDATE versions SET ranking = quality * 0.7 + ((popularity + 1) / ? * 100) * 0.3, popularity = popularity + 1 WHERE id = ?"

// Store is the gorm-backed persistence of the library.
// Lookups return nil without error when nothing matches.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx returns a store bound to a transaction handle.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// Transaction runs fn inside a transaction with a bound store.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.WithTx(tx))
	})
}

// Migrate creates or updates the library tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate library tables: %w", err)
	}
	return nil
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	err := q.First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FormatByHash finds the format currently stored under hash, with its version.
func (s *Store) FormatByHash(ctx context.Context, hash string) (*models.Format, error) {
	return first[models.Format](s.db.WithContext(ctx).Preload("Version").Where("file_hash = ?", hash))
}

// FormatByID finds a format with its version.
func (s *Store) FormatByID(ctx context.Context, id uint) (*models.Format, error) {
	return first[models.Format](s.db.WithContext(ctx).Preload("Version").Where("id = ?", id))
}

// VersionByOriginalHash finds the version first uploaded with hash.
func (s *Store) VersionByOriginalHash(ctx context.Context, hash string) (*models.Version, error) {
	return first[models.Version](s.db.WithContext(ctx).Preload("Formats").Where("original_file_hash = ?", hash))
}

// EbookByID finds an ebook by its identity.
func (s *Store) EbookByID(ctx context.Context, id string) (*models.Ebook, error) {
	return first[models.Ebook](s.db.WithContext(ctx).Where("ebook_id = ?", id))
}

// EbookByASIN finds the oldest ebook carrying asin.
func (s *Store) EbookByASIN(ctx context.Context, asin string) (*models.Ebook, error) {
	return first[models.Ebook](s.db.WithContext(ctx).Where("asin = ?", asin).Order("created_at ASC"))
}

// EbookByISBN finds the oldest ebook carrying isbn as ISBN-10 or ISBN-13.
func (s *Store) EbookByISBN(ctx context.Context, isbn string) (*models.Ebook, error) {
	return first[models.Ebook](s.db.WithContext(ctx).Where("isbn = ? OR isbn13 = ?", isbn, isbn).Order("created_at ASC"))
}

// UserVersion finds the earliest version of an ebook that the user uploaded or
// owns a format of. The original version therefore wins when it qualifies.
func (s *Store) UserVersion(ctx context.Context, ebookID string, userID uint) (*models.Version, error) {
	return first[models.Version](s.db.WithContext(ctx).
		Preload("Formats").
		Where(`ebook_id = ? AND (uploader_id = ? OR EXISTS (
			SELECT 1 FROM formats JOIN format_owners ON format_owners.format_id = formats.id
			WHERE formats.version_id = versions.id AND format_owners.user_id = ?))`, ebookID, userID, userID).
		Order("id ASC"))
}

// TopVersion finds the highest ranked version of an ebook.
func (s *Store) TopVersion(ctx context.Context, ebookID string) (*models.Version, error) {
	return first[models.Version](s.db.WithContext(ctx).Preload("Formats").Where("ebook_id = ?", ebookID).Order("ranking DESC"))
}

// LoadEbook returns an ebook with versions in rank order and their formats.
func (s *Store) LoadEbook(ctx context.Context, id string) (*models.Ebook, error) {
	ebook, err := first[models.Ebook](s.db.WithContext(ctx).
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("ranking DESC, id ASC")
		}).
		Preload("Versions.Formats", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("ebook_id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("failed to load ebook %s: %w", id, err)
	}
	if ebook == nil {
		return nil, ErrEbookNotFound
	}
	return ebook, nil
}

// CreateEbook inserts a new ebook.
func (s *Store) CreateEbook(ctx context.Context, ebook *models.Ebook) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(ebook).Error
}

// CreateVersion inserts a version with its source format and links them.
// ownerID zero creates the format without an owner.
func (s *Store) CreateVersion(ctx context.Context, version *models.Version, format *models.Format, ownerID uint) error {
	db := s.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(version).Error; err != nil {
		return err
	}
	format.VersionID = version.ID
	if err := s.CreateFormat(ctx, format, ownerID); err != nil {
		return err
	}
	version.SourceFormatID = &format.ID
	return db.Model(&models.Version{}).Where("id = ?", version.ID).Update("source_format_id", format.ID).Error
}

// CreateFormat inserts a format on an existing version.
func (s *Store) CreateFormat(ctx context.Context, format *models.Format, ownerID uint) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(format).Error; err != nil {
		return err
	}
	if ownerID == 0 {
		return nil
	}
	return s.AddOwner(ctx, format.ID, ownerID)
}

// SetOriginalVersion points an ebook at its first version if it has none yet.
func (s *Store) SetOriginalVersion(ctx context.Context, ebookID string, versionID uint) error {
	return s.db.WithContext(ctx).Model(&models.Ebook{}).
		Where("ebook_id = ? AND original_version_id IS NULL", ebookID).
		Update("original_version_id", versionID).Error
}

// AddOwner records userID as an owner of a format. Existing rows are kept.
func (s *Store) AddOwner(ctx context.Context, formatID, userID uint) error {
	owner := models.FormatOwner{FormatID: formatID, UserID: userID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&owner).Error
}

// Owners returns the set of users owning a format.
func (s *Store) Owners(ctx context.Context, formatID uint) (mapset.Set[uint], error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.FormatOwner{}).Where("format_id = ?", formatID).Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return mapset.NewThreadUnsafeSet(ids...), nil
}

// BumpPopularity increments a version's popularity and recomputes its ranking
// in one statement.
func (s *Store) BumpPopularity(ctx context.Context, versionID uint, totalUsers int) error {
	if totalUsers < 1 {
		totalUsers = 1
	}
	return s.db.WithContext(ctx).Exec(bumpPopularitySQL, float64(totalUsers), versionID).Error
}

// Rekey moves a format from oldHash to newHash and marks it tagged. It is a
// single conditional update keyed on the old hash and returns rows affected.
func (s *Store) Rekey(ctx context.Context, oldHash, newHash string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Format{}).
		Where("file_hash = ?", oldHash).
		Updates(map[string]any{"file_hash": newHash, "ogreid_tagged": true})
	return res.RowsAffected, res.Error
}

// MarkUploaded flags a format as present in storage under key.
func (s *Store) MarkUploaded(ctx context.Context, formatID uint, key string, userID uint) error {
	updates := map[string]any{"uploaded": true, "s3_filename": key}
	if userID != 0 {
		updates["uploaded_by_id"] = userID
	}
	return s.db.WithContext(ctx).Model(&models.Format{}).Where("id = ?", formatID).Updates(updates).Error
}

// MarkNotUploaded clears the uploaded flag of the given formats.
func (s *Store) MarkNotUploaded(ctx context.Context, formatIDs []uint) (int64, error) {
	if len(formatIDs) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Format{}).
		Where("id IN ?", formatIDs).
		Updates(map[string]any{"uploaded": false, "s3_filename": ""})
	return res.RowsAffected, res.Error
}

// PendingUpload is a format the client still has to push.
// It encodes as [ebook_id, file_hash, format].
type PendingUpload struct {
	EbookID  string
	FileHash string
	Format   string
}

func (p PendingUpload) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{p.EbookID, p.FileHash, p.Format})
}

// PendingUploads lists formats owned by userID that are not uploaded yet.
func (s *Store) PendingUploads(ctx context.Context, userID uint) ([]PendingUpload, error) {
	var rows []PendingUpload
	err := s.db.WithContext(ctx).Table("formats").
		Select("versions.ebook_id AS ebook_id, formats.file_hash AS file_hash, formats.format AS format").
		Joins("JOIN versions ON versions.id = formats.version_id").
		Joins("JOIN format_owners ON format_owners.format_id = formats.id").
		Where("format_owners.user_id = ? AND formats.uploaded = ?", userID, false).
		Order("formats.id ASC").
		Scan(&rows).Error
	return rows, err
}

// CreateSyncEvent appends a sync audit row.
func (s *Store) CreateSyncEvent(ctx context.Context, userID uint, synced, created int) error {
	event := models.SyncEvent{UserID: userID, SyncedCount: synced, NewCount: created, Timestamp: time.Now().UTC()}
	return s.db.WithContext(ctx).Create(&event).Error
}

// SyncEvents returns the latest sync events of a user, newest first.
func (s *Store) SyncEvents(ctx context.Context, userID uint, limit int) ([]models.SyncEvent, error) {
	var events []models.SyncEvent
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// CountUsers returns the number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// CreateUser inserts a user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// UserByAPIKey finds the user owning key.
func (s *Store) UserByAPIKey(ctx context.Context, key string) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx).Where("api_key = ?", key))
}

// UserByName finds a user by username.
func (s *Store) UserByName(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx).Where("username = ?", username))
}
