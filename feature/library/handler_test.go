package library

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"ogre/core/middleware/auth"
	"ogre/core/storage"
	"ogre/core/storage/mocks"
	"ogre/feature/library/models"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*fiber.App, *Service, *mocks.Client, *models.User) {
	t.Helper()
	client := new(mocks.Client)
	feature := NewFeature(setupDB(t), client, storage.Config{Bucket: "ebooks"}, Config{}, nil, zap.NewNop())
	require.True(t, feature.IsEnabled())
	svc := feature.Service()

	user, err := svc.CreateUser(t.Context(), "alice", "")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(auth.New(auth.Config{
		ApiKey: "admin",
		Resolve: func(c *fiber.Ctx, key string) (any, bool, error) {
			u, err := svc.UserByAPIKey(c.UserContext(), key)
			return u, u != nil, err
		},
	}))
	require.NoError(t, feature.Load(app))
	return app, svc, client, user
}

func request(method, target, key string, body io.Reader, contentType string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(auth.DefaultHeader, key)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func syncBody(t *testing.T, batch map[string]SyncRecord) io.Reader {
	raw, err := json.Marshal(batch)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestHandler_SyncAndConfirm(t *testing.T) {
	app, _, _, user := newTestApp(t)

	resp, err := app.Test(request("POST", "/api/v1/sync", user.APIKey, syncBody(t, map[string]SyncRecord{aliceKey: record("aaa", "epub")}), "application/json"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out SyncResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Results["aaa"].New)
	assert.Contains(t, out.ToUpdate, "aaa")

	confirm := func(old, new string) string {
		body, _ := json.Marshal(ConfirmRequest{FileHash: old, NewHash: new})
		resp, err := app.Test(request("POST", "/api/v1/confirm", user.APIKey, bytes.NewReader(body), "application/json"))
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		return string(raw)
	}
	assert.Equal(t, "same", confirm("aaa", "aaa"))
	assert.Equal(t, "ok", confirm("aaa", "bbb"))
	assert.Equal(t, "ok", confirm("aaa", "bbb"))
	assert.Equal(t, "fail", confirm("xxx", "yyy"))
}

func TestHandler_SyncRequiresUser(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, err := app.Test(request("POST", "/api/v1/sync", "admin", syncBody(t, nil), "application/json"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(request("POST", "/api/v1/sync", "wrong", syncBody(t, nil), "application/json"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_Definitions(t *testing.T) {
	app, _, _, user := newTestApp(t)

	resp, err := app.Test(request("GET", "/api/v1/definitions", user.APIKey, nil, ""))
	require.NoError(t, err)

	var defs [][]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&defs))
	require.Len(t, defs, len(Definitions))
	assert.Equal(t, []any{"mobi", true, false}, defs[0])
}

func TestHandler_UploadToUploadAndDownload(t *testing.T) {
	app, svc, client, user := newTestApp(t)
	res := svc.Sync(t.Context(), user, map[string]SyncRecord{aliceKey: record("aaa", "epub")})
	ebookID := res.Results["aaa"].EbookID

	resp, err := app.Test(request("GET", "/api/v1/to-upload", user.APIKey, nil, ""))
	require.NoError(t, err)
	var pending [][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pending))
	assert.Equal(t, [][]string{{ebookID, "aaa", "epub"}}, pending)

	key := storage.ObjectKey(ebookID, "aaa", "epub")
	client.On("PutObject", mock.Anything, "ebooks", key, mock.Anything, int64(4), mock.Anything).Return(minio.UploadInfo{}, nil)

	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	require.NoError(t, w.WriteField("ebook_id", ebookID))
	require.NoError(t, w.WriteField("file_hash", "aaa"))
	require.NoError(t, w.WriteField("format", "epub"))
	part, err := w.CreateFormFile("ebook", "alice.epub")
	require.NoError(t, err)
	_, _ = part.Write([]byte("EPUB"))
	require.NoError(t, w.Close())

	resp, err = app.Test(request("POST", "/api/v1/upload", user.APIKey, &form, w.FormDataContentType()))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	signed, _ := url.Parse("https://s3.example/signed")
	client.On("PresignedGetObject", mock.Anything, "ebooks", key, mock.Anything, mock.Anything).Return(signed, nil)

	resp, err = app.Test(request("GET", "/download/"+ebookID+"?format=epub", user.APIKey, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://s3.example/signed", resp.Header.Get("Location"))

	resp, err = app.Test(request("GET", "/download/"+ebookID+"?format=pdf", user.APIKey, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(request("GET", "/download/"+ebookID+"?version_id=abc", user.APIKey, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandler_GetEbookAndSyncEvents(t *testing.T) {
	app, svc, _, user := newTestApp(t)
	res := svc.Sync(t.Context(), user, map[string]SyncRecord{aliceKey: record("aaa", "epub")})

	resp, err := app.Test(request("GET", "/api/v1/ebooks/"+res.Results["aaa"].EbookID, user.APIKey, nil, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ebook models.Ebook
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ebook))
	assert.Equal(t, "Alice", ebook.Title)
	require.Len(t, ebook.Versions, 1)
	assert.Len(t, ebook.Versions[0].Formats, 1)

	resp, err = app.Test(request("GET", "/api/v1/ebooks/missing", user.APIKey, nil, ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(request("GET", "/api/v1/sync-events", user.APIKey, nil, ""))
	require.NoError(t, err)
	var events []models.SyncEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	assert.Len(t, events, 1)
}
