package conversion

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"ogre/core/storage"
	"ogre/core/storage/mocks"
	"ogre/feature/library"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConverter writes a fixed payload to dst after checking the source.
type fakeConverter struct {
	payload string
	err     error
	source  string
}

func (f *fakeConverter) Convert(_ context.Context, src, dst string) error {
	if f.err != nil {
		return f.err
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	f.source = string(b)
	return os.WriteFile(dst, []byte(f.payload), 0o600)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestRunner_ConvertsAndAttachesFormat(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	store := library.NewStore(db)
	ebook, version, epub := seedVersion(t, store, "Fiction", "h1", "epub", true, false)

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "ebooks", epub.S3Filename, mock.Anything).
		Return(io.NopCloser(strings.NewReader("epub bytes")), nil)
	wantHash := md5Hex("mobi bytes")
	wantKey := storage.ObjectKey(ebook.EbookID, wantHash, "mobi")
	client.On("PutObject", mock.Anything, "ebooks", wantKey, mock.Anything, int64(len("mobi bytes")), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	conv := &fakeConverter{payload: "mobi bytes"}
	runner := NewRunner(store, client, "ebooks", conv, zap.NewNop())
	formatID, err := runner.Run(ctx, &Job{EbookID: ebook.EbookID, VersionID: version.ID, SourceFormatID: epub.ID, Target: "mobi"})
	require.NoError(t, err)
	assert.Equal(t, "epub bytes", conv.source)

	f, err := store.FormatByID(ctx, formatID)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, wantHash, f.FileHash)
	assert.Equal(t, "mobi", f.Format)
	assert.True(t, f.Uploaded)
	assert.Equal(t, wantKey, f.S3Filename)
	assert.Equal(t, version.ID, f.VersionID)

	owners, err := store.Owners(ctx, formatID)
	require.NoError(t, err)
	assert.Equal(t, 0, owners.Cardinality())
	client.AssertExpectations(t)

	again, err := runner.Run(ctx, &Job{EbookID: ebook.EbookID, VersionID: version.ID, SourceFormatID: epub.ID, Target: "mobi"})
	require.NoError(t, err)
	assert.Equal(t, formatID, again)
	client.AssertNumberOfCalls(t, "GetObject", 1)
}

func TestRunner_SourceNotUploaded(t *testing.T) {
	db := setupDB(t)
	store := library.NewStore(db)
	ebook, version, epub := seedVersion(t, store, "Fiction", "h1", "epub", false, false)

	runner := NewRunner(store, new(mocks.Client), "ebooks", &fakeConverter{}, zap.NewNop())
	_, err := runner.Run(context.Background(), &Job{EbookID: ebook.EbookID, VersionID: version.ID, SourceFormatID: epub.ID, Target: "mobi"})
	assert.ErrorIs(t, err, library.ErrNoFormatAvailable)
}

func TestRunner_ConverterFailure(t *testing.T) {
	db := setupDB(t)
	store := library.NewStore(db)
	ebook, version, epub := seedVersion(t, store, "Fiction", "h1", "epub", true, false)

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "ebooks", epub.S3Filename, mock.Anything).
		Return(io.NopCloser(strings.NewReader("epub bytes")), nil)

	runner := NewRunner(store, client, "ebooks", &fakeConverter{err: errors.New("calibre crashed")}, zap.NewNop())
	_, err := runner.Run(context.Background(), &Job{EbookID: ebook.EbookID, VersionID: version.ID, SourceFormatID: epub.ID, Target: "mobi"})
	assert.EqualError(t, err, "calibre crashed")
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCalibreConverter_MissingBinary(t *testing.T) {
	conv := NewCalibreConverter("ogre-no-such-ebook-convert")
	err := conv.Convert(context.Background(), "in.epub", "out.mobi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ogre-no-such-ebook-convert failed")
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "c\nd", lastLines("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a", lastLines("a", 5))
}
