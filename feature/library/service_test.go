package library

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"ogre/core/storage"
	"ogre/core/storage/mocks"
	"ogre/feature/library/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *mocks.Client) {
	t.Helper()
	client := new(mocks.Client)
	svc := NewService(setupDB(t), client, storage.Config{Bucket: "ebooks", DownloadExpirySeconds: 10}, Config{}, nil, zap.NewNop())
	return svc, client
}

func TestService_CreateUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	assert.Equal(t, 1, svc.users.TotalUsers(ctx))
	u, err := svc.CreateUser(ctx, " alice ", "EPUB")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "epub", u.PreferredFormat)
	assert.Len(t, u.APIKey, 32)

	_, err = svc.CreateUser(ctx, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, 2, svc.users.TotalUsers(ctx))

	found, err := svc.UserByAPIKey(ctx, u.APIKey)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = svc.CreateUser(ctx, "  ", "")
	assert.True(t, errors.Is(err, ErrBadMetaData))
}

func TestService_UploadAndDownload(t *testing.T) {
	ctx := context.Background()
	svc, client := newTestService(t)
	alice, err := svc.CreateUser(ctx, "alice", "")
	require.NoError(t, err)

	resp := svc.Sync(ctx, alice, map[string]SyncRecord{aliceKey: record("aaa", "epub")})
	ebookID := resp.Results["aaa"].EbookID

	pending, err := svc.PendingUploads(ctx, alice)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// nothing uploaded yet
	_, err = svc.DownloadURL(ctx, alice, ebookID, 0, "")
	assert.True(t, errors.Is(err, ErrNoFormatAvailable))

	key := "ebooks/" + ebookID + "/aaa.epub"
	body := strings.NewReader("epub bytes")
	client.On("PutObject", mock.Anything, "ebooks", key, body, int64(10), mock.Anything).Return(minio.UploadInfo{}, nil)

	f, err := svc.Upload(ctx, alice, ebookID, "aaa", "epub", body, 10)
	require.NoError(t, err)
	assert.True(t, f.Uploaded)
	assert.Equal(t, key, f.S3Filename)

	pending, err = svc.PendingUploads(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, pending)

	signed, _ := url.Parse("https://s3.example/ebooks/" + ebookID + "/aaa.epub?X-Amz-Signature=x")
	client.On("PresignedGetObject", mock.Anything, "ebooks", key, 10*time.Second, url.Values(nil)).Return(signed, nil)

	before, err := svc.store.VersionByOriginalHash(ctx, "aaa")
	require.NoError(t, err)

	link, err := svc.DownloadURL(ctx, alice, ebookID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, signed.String(), link)

	after, err := svc.store.VersionByOriginalHash(ctx, "aaa")
	require.NoError(t, err)
	assert.InDelta(t, before.Popularity+1, after.Popularity, 1e-9)
	client.AssertExpectations(t)
}

func TestService_UploadRejections(t *testing.T) {
	ctx := context.Background()
	svc, client := newTestService(t)
	alice, err := svc.CreateUser(ctx, "alice", "")
	require.NoError(t, err)
	bob, err := svc.CreateUser(ctx, "bob", "")
	require.NoError(t, err)

	resp := svc.Sync(ctx, alice, map[string]SyncRecord{aliceKey: record("aaa", "epub")})
	ebookID := resp.Results["aaa"].EbookID

	tests := []struct {
		name    string
		user    *models.User
		ebookID string
		hash    string
		format  string
		want    error
	}{
		{"Unknown hash", alice, ebookID, "zzz", "epub", ErrFormatNotFound},
		{"Wrong ebook", alice, "other", "aaa", "epub", ErrFormatNotFound},
		{"Wrong format", alice, ebookID, "aaa", "mobi", ErrBadMetaData},
		{"Not an owner", bob, ebookID, "aaa", "epub", ErrFormatNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.user, tt.ebookID, tt.hash, tt.format, strings.NewReader("x"), 1)
			assert.True(t, errors.Is(err, tt.want), err)
		})
	}
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_DownloadUnknownEbook(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.DownloadURL(context.Background(), nil, "missing", 0, "")
	assert.True(t, errors.Is(err, ErrEbookNotFound))
}

func TestService_SyncEvents(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	alice, err := svc.CreateUser(ctx, "alice", "")
	require.NoError(t, err)

	svc.Sync(ctx, alice, map[string]SyncRecord{aliceKey: record("aaa", "epub")})
	svc.Sync(ctx, alice, map[string]SyncRecord{})

	events, err := svc.SyncEvents(ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, alice.ID, events[0].UserID)
}
