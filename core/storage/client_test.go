package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ogre/core/storage"
	"ogre/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	for _, endpoint := range []string{"localhost:9000", "http://localhost:9000", "https://s3.amazonaws.com"} {
		client, err := storage.NewClient(storage.Config{
			Endpoint:  endpoint,
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "ebooks",
			Region:    "us-east-1",
		})
		require.NoError(t, err, endpoint)
		assert.NotNil(t, client)
	}
}

func TestConfig_HostAndTimeout(t *testing.T) {
	assert.Equal(t, "s3.example:443", storage.Config{Endpoint: "https://s3.example:443"}.Host())
	assert.Equal(t, "minio:9000", storage.Config{Endpoint: "minio:9000"}.Host())

	assert.Equal(t, 30*time.Second, storage.Config{}.Timeout())
	assert.Equal(t, 5*time.Second, storage.Config{TimeoutSeconds: 5}.Timeout())
	assert.Equal(t, 10*time.Second, storage.Config{}.DownloadExpiry())
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "ebooks").Return(true, nil)

		created, err := storage.EnsureBucket(ctx, client, "ebooks", "")
		require.NoError(t, err)
		assert.False(t, created)
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "ebooks").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "ebooks", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		created, err := storage.EnsureBucket(ctx, client, "ebooks", "eu-west-1")
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("Race", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "ebooks").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "ebooks", mock.Anything).Return(minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou"})

		created, err := storage.EnsureBucket(ctx, client, "ebooks", "")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "ebooks").Return(false, errors.New("dial tcp: refused"))

		_, err := storage.EnsureBucket(ctx, client, "ebooks", "")
		assert.ErrorContains(t, err, "failed to check bucket ebooks")
	})
}
