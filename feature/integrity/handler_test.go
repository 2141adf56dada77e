package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"ogre/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, db *gorm.DB) (*fiber.App, *mocks.Client) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	logger := zap.NewNop()
	svc := NewService(mockClient, testStorage, logger, db)
	handler := NewHandler(svc)
	handler.RegisterRoutes(app)
	return app, mockClient
}

func decode(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleStructureCheck(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(objects())

	status, body := decode(t, app, "/integrity/structure")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.NotEmpty(t, body["missing"])
}

func TestHandleStructureCheck_Fix(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(objects())
	mockClient.On("PutObject", mock.Anything, "test-bucket", "ebooks/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	status, body := decode(t, app, "/integrity/structure?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	assert.Equal(t, []any{"ebooks"}, body["fixed"])
}

func TestHandleStructureCheck_BucketMissing(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)

	status, body := decode(t, app, "/integrity/structure")
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"], "does not exist")
}

func TestHandleStructureCheck_FixCreatesBucket(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
	mockClient.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)
	mockClient.On("PutObject", mock.Anything, "test-bucket", "ebooks/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	status, body := decode(t, app, "/integrity/structure?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	mockClient.AssertCalled(t, "MakeBucket", mock.Anything, "test-bucket", mock.Anything)
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _ := setupTestApp(t, setupDB(t))

	status, body := decode(t, app, "/integrity/schema")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["matched"])
	assert.Equal(t, "sqlite", body["dialect"])
}

func TestHandleSchemaCheck_NoDatabase(t *testing.T) {
	app, _ := setupTestApp(t, nil)

	status, body := decode(t, app, "/integrity/schema")
	assert.Equal(t, 500, status)
	assert.Equal(t, "database is not configured", body["error"])
}

func TestHandleFormatsCheck(t *testing.T) {
	db := setupDB(t)
	key := seedFormat(t, db, "ebook1", "aaa", true)
	app, mockClient := setupTestApp(t, db)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(objects(key))

	status, body := decode(t, app, "/integrity/formats")
	assert.Equal(t, 200, status)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["total_items"])
	assert.Equal(t, float64(0), summary["missing_storage"])
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, mockClient := setupTestApp(t, nil)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(objects("ebooks/"))

	status, body := decode(t, app, "/integrity")
	assert.Equal(t, 200, status)
	assert.Equal(t, "ok", body["structure"].(map[string]any)["status"])
	assert.Equal(t, "error", body["schema"].(map[string]any)["status"])
	assert.Equal(t, "error", body["formats"].(map[string]any)["status"])
}
