package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ogre/core/utils"
	"ogre/feature/library/models"
	"ogre/feature/search"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SyncRecord is one scanned book as sent by the client.
type SyncRecord struct {
	FileHash string         `json:"file_hash"`
	Format   string         `json:"format"`
	Size     int64          `json:"size"`
	DeDRM    bool           `json:"dedrm"`
	EbookID  string         `json:"ebook_id,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Meta is the recognized part of a record's metadata. Extra keeps the rest as
// the provider metadata blob.
type Meta struct {
	ASIN        string
	ISBN        string
	ISBN13      string
	Tags        string
	Publisher   string
	URI         string
	Source      string
	PublishDate *time.Time
	Extra       map[string]any
}

// ParseMeta extracts known metadata keys. Text values are repaired with FixText.
// Identifiers are normalized but not length checked, so store-specific ASINs
// and malformed ISBNs still match earlier uploads carrying the same value.
func ParseMeta(raw map[string]any) Meta {
	m := Meta{Extra: map[string]any{}}
	for k, v := range raw {
		if v == nil {
			continue
		}
		s := FixText(utils.ToString(v))
		switch strings.ToLower(k) {
		case "asin":
			m.ASIN = strings.ToUpper(strings.TrimSpace(s))
		case "isbn":
			m.ISBN = normalizeISBN(s)
		case "isbn13":
			m.ISBN13 = normalizeISBN(s)
		case "tags":
			m.Tags = s
		case "publisher":
			m.Publisher = s
		case "uri":
			m.URI = s
		case "source", "source_provider":
			m.Source = s
		case "publish_date", "pubdate":
			if t, ok := parseDate(s); ok {
				m.PublishDate = &t
			}
		default:
			m.Extra[k] = v
		}
	}
	if m.ISBN13 == "" && len(m.ISBN) == 13 {
		m.ISBN13 = m.ISBN
	}
	return m
}

func normalizeISBN(s string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(s))
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ItemResult is the per-book answer the client acts on.
type ItemResult struct {
	New     bool   `json:"new"`
	Update  bool   `json:"update"`
	Dupe    bool   `json:"dupe"`
	EbookID string `json:"ebook_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UpdateHint tells the client which ebook_id to write into a file.
type UpdateHint struct {
	EbookID string `json:"ebook_id"`
}

// SyncResponse is returned for a whole batch. Results and ToUpdate are keyed
// by the incoming file hash; entries sharing a hash are merged.
type SyncResponse struct {
	Results  map[string]ItemResult `json:"results"`
	ToUpdate map[string]UpdateHint `json:"to_update"`
	Messages []string              `json:"messages"`
	Errors   []string              `json:"errors"`
}

// Indexer receives search documents for newly created ebooks.
type Indexer interface {
	Index(ctx context.Context, docs ...search.Document) error
}

// Syncer reconciles client batches against the store.
type Syncer struct {
	store   *Store
	users   UserCounter
	indexer Indexer
	logger  *zap.Logger
}

// NewSyncer creates a syncer. indexer may be nil.
func NewSyncer(store *Store, users UserCounter, indexer Indexer, logger *zap.Logger) *Syncer {
	return &Syncer{store: store, users: users, indexer: indexer, logger: logger}
}

// Sync processes a batch for user. Items are classified one at a time in key
// order, each in its own transaction, so later items see earlier creations and
// one failing item never aborts the rest.
func (s *Syncer) Sync(ctx context.Context, user *models.User, batch map[string]SyncRecord) *SyncResponse {
	resp := &SyncResponse{
		Results:  make(map[string]ItemResult, len(batch)),
		ToUpdate: map[string]UpdateHint{},
		Messages: []string{},
		Errors:   []string{},
	}

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totalUsers := s.users.TotalUsers(ctx)
	created := 0

	for _, key := range keys {
		rec := batch[key]
		resultKey := rec.FileHash
		if resultKey == "" {
			resultKey = key
		}
		l := s.logger.With(zap.String("file_hash", rec.FileHash), zap.String("authortitle", key), zap.Uint("user", user.ID))

		res, conflict, err := s.syncOne(ctx, user, key, rec, totalUsers)
		if err != nil {
			var bad *BadMetaDataError
			if errors.As(err, &bad) {
				l.Info("Rejected record with bad metadata", zap.String("reason", bad.Reason))
			} else {
				l.Error("Failed to sync record", zap.Error(err))
			}
			resp.Results[resultKey] = mergeResult(resp.Results[resultKey], ItemResult{Error: err.Error()})
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s", resultKey, err.Error()))
			continue
		}

		resp.Results[resultKey] = mergeResult(resp.Results[resultKey], res)
		if res.New {
			created++
		}
		if res.Update {
			resp.ToUpdate[rec.FileHash] = UpdateHint{EbookID: res.EbookID}
		}
		if conflict != "" {
			resp.Messages = append(resp.Messages, fmt.Sprintf("%s: ASIN and ISBN match different ebooks (%s, %s)", rec.FileHash, res.EbookID, conflict))
		}
	}

	if err := s.store.CreateSyncEvent(ctx, user.ID, len(batch), created); err != nil {
		s.logger.Error("Failed to record sync event", zap.Uint("user", user.ID), zap.Error(err))
	}

	return resp
}

// mergeResult combines results reported under one file hash, as happens when a
// batch lists the same file under two authortitle keys. A success beats an
// error and a creation beats a duplicate.
func mergeResult(prev, next ItemResult) ItemResult {
	switch {
	case prev == (ItemResult{}):
		return next
	case next.Error != "":
		if prev.Error == "" {
			return prev
		}
		return next
	case prev.Error != "":
		return next
	case prev.New:
		return prev
	}
	return next
}

func (s *Syncer) syncOne(ctx context.Context, user *models.User, key string, rec SyncRecord, totalUsers int) (ItemResult, string, error) {
	in, err := s.prepare(key, rec)
	if err != nil {
		return ItemResult{}, "", err
	}

	var (
		outcome Outcome
		doc     *search.Document
	)
	// A uniqueness violation means a concurrent sync created the same row;
	// classifying again lands on the duplicate path.
	for attempt := 0; attempt < 2; attempt++ {
		doc = nil
		err = s.store.Transaction(ctx, func(tx *Store) error {
			var txErr error
			if outcome, txErr = NewClassifier(tx, s.logger).Classify(ctx, user.ID, in); txErr != nil {
				return txErr
			}
			doc, txErr = s.apply(ctx, tx, user, in, outcome, totalUsers)
			return txErr
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt == 0 {
			s.logger.Info("Lost creation race, reclassifying", zap.String("file_hash", in.FileHash))
			continue
		}
		break
	}
	if err != nil {
		return ItemResult{}, "", err
	}

	if doc != nil && s.indexer != nil {
		if err := s.indexer.Index(ctx, *doc); err != nil {
			s.logger.Warn("Failed to index ebook", zap.String("ebook_id", doc.EbookID), zap.Error(err))
		}
	}

	res := ItemResult{
		New:     outcome.Kind != KindDuplicate,
		Dupe:    outcome.Kind == KindDuplicate,
		Update:  outcome.EbookID != in.EbookID,
		EbookID: outcome.EbookID,
		Reason:  string(outcome.Reason),
	}
	return res, outcome.Conflict, nil
}

func (s *Syncer) prepare(key string, rec SyncRecord) (Incoming, error) {
	author, title, err := ParseAuthorTitle(key)
	if err != nil {
		return Incoming{}, err
	}
	if rec.FileHash == "" {
		return Incoming{}, badMetaData("missing file_hash")
	}
	format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(rec.Format), "."))
	if format == "" {
		return Incoming{}, badMetaData("missing format")
	}
	return Incoming{
		Author:   author,
		Title:    title,
		FileHash: strings.ToLower(rec.FileHash),
		Format:   format,
		Size:     rec.Size,
		DeDRM:    rec.DeDRM,
		EbookID:  rec.EbookID,
		Meta:     ParseMeta(rec.Meta),
	}, nil
}

// apply performs the side effects of an outcome inside tx. It returns a search
// document when a new ebook was created.
func (s *Syncer) apply(ctx context.Context, tx *Store, user *models.User, in Incoming, out Outcome, totalUsers int) (*search.Document, error) {
	switch out.Kind {
	case KindNew:
		ebook, err := s.createEbook(ctx, tx, in, out.EbookID)
		if err != nil {
			return nil, err
		}
		if _, err := s.createVersion(ctx, tx, user, in, ebook.EbookID, totalUsers); err != nil {
			return nil, err
		}
		doc := search.NewDocument(ebook.EbookID, ebook.Author, ebook.Title, ebook.IsNonFiction, ebook.IsCurated, in.DeDRM)
		return &doc, nil

	case KindAttachVersion:
		_, err := s.createVersion(ctx, tx, user, in, out.EbookID, totalUsers)
		return nil, err

	case KindAttachFormat:
		format := newFormat(in)
		format.VersionID = out.VersionID
		return nil, tx.CreateFormat(ctx, format, user.ID)

	case KindDuplicate:
		return nil, s.applyDuplicate(ctx, tx, user, in, out, totalUsers)
	}
	return nil, fmt.Errorf("unknown outcome %s", out.Kind)
}

// applyDuplicate bumps popularity of the matched version and adds the user as
// owner of the matched format. Identifier matches carry no version; they use
// the user's own version or the top ranked one, and only gain an owner when
// that version holds the same format.
func (s *Syncer) applyDuplicate(ctx context.Context, tx *Store, user *models.User, in Incoming, out Outcome, totalUsers int) error {
	versionID, formatID := out.VersionID, out.FormatID
	if versionID == 0 {
		v, err := tx.UserVersion(ctx, out.EbookID, user.ID)
		if err != nil {
			return err
		}
		if v == nil {
			if v, err = tx.TopVersion(ctx, out.EbookID); err != nil {
				return err
			}
		}
		if v == nil {
			return nil
		}
		versionID = v.ID
		for _, f := range v.Formats {
			if strings.EqualFold(f.Format, in.Format) {
				formatID = f.ID
				break
			}
		}
	}

	if err := tx.BumpPopularity(ctx, versionID, totalUsers); err != nil {
		return fmt.Errorf("failed to bump popularity: %w", err)
	}
	if formatID != 0 {
		if err := tx.AddOwner(ctx, formatID, user.ID); err != nil {
			return fmt.Errorf("failed to add owner: %w", err)
		}
	}
	return nil
}

func (s *Syncer) createEbook(ctx context.Context, tx *Store, in Incoming, ebookID string) (*models.Ebook, error) {
	ebook := &models.Ebook{
		EbookID:        ebookID,
		Author:         in.Author,
		Title:          in.Title,
		Publisher:      in.Meta.Publisher,
		PublishDate:    in.Meta.PublishDate,
		ISBN:           in.Meta.ISBN,
		ISBN13:         in.Meta.ISBN13,
		ASIN:           in.Meta.ASIN,
		URI:            in.Meta.URI,
		IsNonFiction:   IsNonFiction(in.Format, Definitions),
		RawTags:        in.Meta.Tags,
		SourceProvider: in.Meta.Source,
		SourceTitle:    in.Title,
		SourceAuthor:   in.Author,
	}
	if len(in.Meta.Extra) > 0 {
		raw, err := json.Marshal(in.Meta.Extra)
		if err != nil {
			return nil, fmt.Errorf("failed to encode provider metadata: %w", err)
		}
		ebook.ProviderMetadata = datatypes.JSON(raw)
	}
	if err := tx.CreateEbook(ctx, ebook); err != nil {
		return nil, err
	}
	return ebook, nil
}

func (s *Syncer) createVersion(ctx context.Context, tx *Store, user *models.User, in Incoming, ebookID string, totalUsers int) (*models.Version, error) {
	popularity := InitialPopularity(in.DeDRM)
	version := &models.Version{
		EbookID:          ebookID,
		UploaderID:       user.ID,
		Size:             in.Size,
		Popularity:       popularity,
		Quality:          InitialQuality,
		Ranking:          Rank(InitialQuality, popularity, totalUsers),
		OriginalFileHash: in.FileHash,
		PublishDate:      in.Meta.PublishDate,
	}
	if err := tx.CreateVersion(ctx, version, newFormat(in), user.ID); err != nil {
		return nil, err
	}
	if err := tx.SetOriginalVersion(ctx, ebookID, version.ID); err != nil {
		return nil, err
	}
	return version, nil
}

func newFormat(in Incoming) *models.Format {
	return &models.Format{
		FileHash: in.FileHash,
		Format:   in.Format,
		DeDRM:    in.DeDRM,
	}
}
