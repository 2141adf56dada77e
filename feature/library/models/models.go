package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is a library member authenticating with an API key.
type User struct {
	ID              uint      `gorm:"column:id;primaryKey" json:"id"`
	Username        string    `gorm:"column:username;size:64;uniqueIndex;not null" json:"username"`
	APIKey          string    `gorm:"column:api_key;size:64;uniqueIndex;not null" json:"-"`
	PreferredFormat string    `gorm:"column:preferred_format;size:10" json:"preferred_format,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

// Ebook is a logical work. EbookID is derived once from author and title at
// creation and never recomputed.
type Ebook struct {
	EbookID           string         `gorm:"column:ebook_id;primaryKey;size:32" json:"ebook_id"`
	Author            string         `gorm:"column:author;size:500;not null" json:"author"`
	Title             string         `gorm:"column:title;size:500;not null" json:"title"`
	Publisher         string         `gorm:"column:publisher;size:255" json:"publisher,omitempty"`
	PublishDate       *time.Time     `gorm:"column:publish_date" json:"publish_date,omitempty"`
	ISBN              string         `gorm:"column:isbn;size:64;index" json:"isbn,omitempty"`
	ISBN13            string         `gorm:"column:isbn13;size:64;index" json:"isbn13,omitempty"`
	ASIN              string         `gorm:"column:asin;size:64;index" json:"asin,omitempty"`
	URI               string         `gorm:"column:uri;size:255" json:"uri,omitempty"`
	IsNonFiction      bool           `gorm:"column:is_non_fiction" json:"is_non_fiction"`
	IsCurated         bool           `gorm:"column:is_curated" json:"is_curated"`
	RawTags           string         `gorm:"column:raw_tags;type:text" json:"raw_tags,omitempty"`
	SourceProvider    string         `gorm:"column:source_provider;size:100" json:"source_provider,omitempty"`
	SourceTitle       string         `gorm:"column:source_title;size:500" json:"source_title,omitempty"`
	SourceAuthor      string         `gorm:"column:source_author;size:500" json:"source_author,omitempty"`
	ProviderMetadata  datatypes.JSON `gorm:"column:provider_metadata" json:"provider_metadata,omitempty"`
	OriginalVersionID *uint          `gorm:"column:original_version_id" json:"original_version_id,omitempty"`
	CreatedAt         time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at" json:"updated_at"`
	Versions          []Version      `gorm:"foreignKey:EbookID;references:EbookID" json:"versions,omitempty"`
}

func (Ebook) TableName() string { return "ebooks" }

// Version is one upload occasion of an Ebook. OriginalFileHash is the content
// hash at first upload and never changes.
type Version struct {
	ID               uint       `gorm:"column:id;primaryKey" json:"id"`
	EbookID          string     `gorm:"column:ebook_id;size:32;index;not null" json:"ebook_id"`
	UploaderID       uint       `gorm:"column:uploader_id;index" json:"uploader_id"`
	Size             int64      `gorm:"column:size" json:"size"`
	Popularity       float64    `gorm:"column:popularity;not null" json:"popularity"`
	Quality          float64    `gorm:"column:quality;not null" json:"quality"`
	Ranking          float64    `gorm:"column:ranking;index" json:"ranking"`
	OriginalFileHash string     `gorm:"column:original_file_hash;size:64;uniqueIndex;not null" json:"original_file_hash"`
	SourceFormatID   *uint      `gorm:"column:source_format_id" json:"source_format_id,omitempty"`
	PublishDate      *time.Time `gorm:"column:publish_date" json:"publish_date,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	Formats          []Format   `gorm:"foreignKey:VersionID" json:"formats,omitempty"`
}

func (Version) TableName() string { return "versions" }

// Format is one physical file of a Version. ID is immutable; FileHash is the
// current content hash and changes once when the client tags the file.
type Format struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	VersionID    uint      `gorm:"column:version_id;index;not null" json:"version_id"`
	FileHash     string    `gorm:"column:file_hash;size:64;uniqueIndex;not null" json:"file_hash"`
	Format       string    `gorm:"column:format;size:10;not null" json:"format"`
	Uploaded     bool      `gorm:"column:uploaded;not null;default:false" json:"uploaded"`
	S3Filename   string    `gorm:"column:s3_filename;size:255" json:"s3_filename,omitempty"`
	DeDRM        bool      `gorm:"column:dedrm" json:"dedrm"`
	OgreIDTagged bool      `gorm:"column:ogreid_tagged;not null;default:false" json:"ogreid_tagged"`
	UploadedByID *uint     `gorm:"column:uploaded_by_id" json:"uploaded_by_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	Version      *Version  `gorm:"foreignKey:VersionID" json:"-"`
}

func (Format) TableName() string { return "formats" }

// FormatOwner links a user to a Format they synced. Rows are only ever added.
type FormatOwner struct {
	FormatID  uint      `gorm:"column:format_id;primaryKey;autoIncrement:false"`
	UserID    uint      `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (FormatOwner) TableName() string { return "format_owners" }

// SyncEvent is the append-only audit row written once per client sync.
type SyncEvent struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID      uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	SyncedCount int       `gorm:"column:synced_count" json:"synced_count"`
	NewCount    int       `gorm:"column:new_count" json:"new_count"`
	Timestamp   time.Time `gorm:"column:timestamp;index" json:"timestamp"`
}

func (SyncEvent) TableName() string { return "sync_events" }

// All returns every library model in migration order.
func All() []any {
	return []any{&User{}, &Ebook{}, &Version{}, &Format{}, &FormatOwner{}, &SyncEvent{}}
}
