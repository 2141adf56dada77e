package library

import (
	"context"
	"fmt"
	"strings"

	"ogre/feature/library/models"

	"go.uber.org/zap"
)

// Kind is the tagged result of classifying an incoming record.
type Kind int

const (
	// KindNew creates a new ebook with its first version and format.
	KindNew Kind = iota
	// KindDuplicate matches existing content; nothing is created.
	KindDuplicate
	// KindAttachVersion adds a new version to an existing ebook.
	KindAttachVersion
	// KindAttachFormat adds a new format to a version the user already has.
	KindAttachFormat
)

func (k Kind) String() string {
	switch k {
	case KindNew:
		return "new"
	case KindDuplicate:
		return "duplicate"
	case KindAttachVersion:
		return "attach_version"
	case KindAttachFormat:
		return "attach_format"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Reason names the classifier step that produced an outcome.
type Reason string

const (
	ReasonExact        Reason = "exact"
	ReasonOriginalHash Reason = "original_hash"
	ReasonEbookID      Reason = "ebook_id"
	ReasonASIN         Reason = "asin"
	ReasonISBN         Reason = "isbn"
	ReasonAuthorTitle  Reason = "authortitle"
	ReasonNew          Reason = "new"
)

// Incoming is one sanitized record from a client sync.
type Incoming struct {
	Author   string
	Title    string
	FileHash string
	Format   string
	Size     int64
	DeDRM    bool
	EbookID  string
	Meta     Meta
}

// Outcome is the classifier's decision for one record.
// VersionID and FormatID are zero when the decision does not target one.
type Outcome struct {
	Kind            Kind
	Reason          Reason
	EbookID         string
	VersionID       uint
	FormatID        uint
	MatchedFileHash string
	// Conflict holds a second ebook matched by a weaker identifier.
	Conflict string
}

// Lookup is the read side of the store the classifier consults.
type Lookup interface {
	FormatByHash(ctx context.Context, hash string) (*models.Format, error)
	VersionByOriginalHash(ctx context.Context, hash string) (*models.Version, error)
	EbookByID(ctx context.Context, id string) (*models.Ebook, error)
	EbookByASIN(ctx context.Context, asin string) (*models.Ebook, error)
	EbookByISBN(ctx context.Context, isbn string) (*models.Ebook, error)
	UserVersion(ctx context.Context, ebookID string, userID uint) (*models.Version, error)
}

// step inspects one kind of evidence. matched=false passes to the next step.
type step struct {
	reason Reason
	run    func(ctx context.Context, userID uint, in Incoming) (Outcome, bool, error)
}

// Classifier decides what an incoming record is by running steps in order of
// trust and stopping at the first match.
type Classifier struct {
	lookup Lookup
	logger *zap.Logger
	steps  []step
}

// NewClassifier creates a classifier over lookup.
func NewClassifier(lookup Lookup, logger *zap.Logger) *Classifier {
	c := &Classifier{lookup: lookup, logger: logger}
	c.steps = []step{
		{ReasonExact, c.exact},
		{ReasonOriginalHash, c.originalHash},
		{ReasonEbookID, c.suppliedEbookID},
		{ReasonASIN, c.asin},
		{ReasonISBN, c.isbn},
		{ReasonAuthorTitle, c.authorTitle},
	}
	return c
}

// Classify runs the steps for one record on behalf of userID.
func (c *Classifier) Classify(ctx context.Context, userID uint, in Incoming) (Outcome, error) {
	for _, s := range c.steps {
		out, ok, err := s.run(ctx, userID, in)
		if err != nil {
			return Outcome{}, fmt.Errorf("%s lookup: %w", s.reason, err)
		}
		if ok {
			out.Reason = s.reason
			return out, nil
		}
	}
	return Outcome{Kind: KindNew, Reason: ReasonNew, EbookID: EbookIDFor(in.Author, in.Title)}, nil
}

func (c *Classifier) exact(ctx context.Context, _ uint, in Incoming) (Outcome, bool, error) {
	f, err := c.lookup.FormatByHash(ctx, in.FileHash)
	if err != nil || f == nil || f.Version == nil {
		return Outcome{}, false, err
	}
	return Outcome{
		Kind:            KindDuplicate,
		EbookID:         f.Version.EbookID,
		VersionID:       f.VersionID,
		FormatID:        f.ID,
		MatchedFileHash: f.FileHash,
	}, true, nil
}

func (c *Classifier) originalHash(ctx context.Context, _ uint, in Incoming) (Outcome, bool, error) {
	v, err := c.lookup.VersionByOriginalHash(ctx, in.FileHash)
	if err != nil || v == nil {
		return Outcome{}, false, err
	}
	out := Outcome{Kind: KindDuplicate, EbookID: v.EbookID, VersionID: v.ID}
	for _, f := range v.Formats {
		if v.SourceFormatID != nil && f.ID == *v.SourceFormatID {
			out.FormatID = f.ID
			out.MatchedFileHash = f.FileHash
		}
	}
	return out, true, nil
}

func (c *Classifier) suppliedEbookID(ctx context.Context, userID uint, in Incoming) (Outcome, bool, error) {
	if in.EbookID == "" {
		return Outcome{}, false, nil
	}
	ebook, err := c.lookup.EbookByID(ctx, in.EbookID)
	if err != nil || ebook == nil {
		return Outcome{}, false, err
	}
	out, err := c.placeOnEbook(ctx, userID, in, ebook.EbookID)
	return out, err == nil, err
}

func (c *Classifier) asin(ctx context.Context, _ uint, in Incoming) (Outcome, bool, error) {
	if in.Meta.ASIN == "" {
		return Outcome{}, false, nil
	}
	ebook, err := c.lookup.EbookByASIN(ctx, in.Meta.ASIN)
	if err != nil || ebook == nil {
		return Outcome{}, false, err
	}
	out := Outcome{Kind: KindDuplicate, EbookID: ebook.EbookID}

	if isbn := in.Meta.ISBN; isbn != "" {
		other, err := c.lookup.EbookByISBN(ctx, isbn)
		if err != nil {
			return Outcome{}, false, err
		}
		if other != nil && other.EbookID != ebook.EbookID {
			c.logger.Warn("ASIN and ISBN match different ebooks, ASIN wins",
				zap.String("asin", in.Meta.ASIN),
				zap.String("isbn", isbn),
				zap.String("asin_ebook_id", ebook.EbookID),
				zap.String("isbn_ebook_id", other.EbookID),
				zap.String("file_hash", in.FileHash))
			out.Conflict = other.EbookID
		}
	}
	return out, true, nil
}

func (c *Classifier) isbn(ctx context.Context, _ uint, in Incoming) (Outcome, bool, error) {
	if in.Meta.ISBN == "" {
		return Outcome{}, false, nil
	}
	ebook, err := c.lookup.EbookByISBN(ctx, in.Meta.ISBN)
	if err != nil || ebook == nil {
		return Outcome{}, false, err
	}
	return Outcome{Kind: KindDuplicate, EbookID: ebook.EbookID}, true, nil
}

func (c *Classifier) authorTitle(ctx context.Context, userID uint, in Incoming) (Outcome, bool, error) {
	ebook, err := c.lookup.EbookByID(ctx, EbookIDFor(in.Author, in.Title))
	if err != nil || ebook == nil {
		return Outcome{}, false, err
	}
	out, err := c.placeOnEbook(ctx, userID, in, ebook.EbookID)
	return out, err == nil, err
}

// placeOnEbook decides how a record joins a known ebook. A user who already
// has a version either re-synced the same format (duplicate) or brings another
// format of it; anyone else contributes a new version.
func (c *Classifier) placeOnEbook(ctx context.Context, userID uint, in Incoming, ebookID string) (Outcome, error) {
	v, err := c.lookup.UserVersion(ctx, ebookID, userID)
	if err != nil {
		return Outcome{}, err
	}
	if v == nil {
		return Outcome{Kind: KindAttachVersion, EbookID: ebookID}, nil
	}
	for _, f := range v.Formats {
		if strings.EqualFold(f.Format, in.Format) {
			return Outcome{
				Kind:            KindDuplicate,
				EbookID:         ebookID,
				VersionID:       v.ID,
				FormatID:        f.ID,
				MatchedFileHash: f.FileHash,
			}, nil
		}
	}
	return Outcome{Kind: KindAttachFormat, EbookID: ebookID, VersionID: v.ID}, nil
}
