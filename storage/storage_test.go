package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"EstateHub/config"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	uploads   []uploader.UploadParams
	destroyed []uploader.DestroyParams
	result    *uploader.UploadResult
	err       error
}

func (f *fakeAPI) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploads = append(f.uploads, params)
	return f.result, f.err
}

func (f *fakeAPI) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = append(f.destroyed, params)
	return &uploader.DestroyResult{Result: "ok"}, f.err
}

func testConfig() config.CloudinaryConfig {
	return config.CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "shh", Folder: "estatehub"}
}

func TestNewCloudinaryRequiresCredentials(t *testing.T) {
	_, err := NewCloudinary(config.CloudinaryConfig{CloudName: "demo"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCloudinaryUpload(t *testing.T) {
	api := &fakeAPI{result: &uploader.UploadResult{SecureURL: "https://cdn.test/a.jpg", PublicID: "estatehub/a"}}
	c := &Cloudinary{api: api, cfg: testConfig()}

	asset, err := c.Upload(context.Background(), "a", strings.NewReader("img"), ResourceImage)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/a.jpg", asset.URL)
	assert.Equal(t, "estatehub/a", asset.PublicID)
	require.Len(t, api.uploads, 1)
	assert.Equal(t, "estatehub", api.uploads[0].Folder)
	assert.Equal(t, ResourceImage, api.uploads[0].ResourceType)

	api.result = &uploader.UploadResult{}
	_, err = c.Upload(context.Background(), "b", strings.NewReader("img"), ResourceImage)
	assert.Error(t, err)

	api.err = errors.New("boom")
	_, err = c.Upload(context.Background(), "c", strings.NewReader("img"), ResourceImage)
	assert.Error(t, err)
}

func TestCloudinaryDestroy(t *testing.T) {
	api := &fakeAPI{}
	c := &Cloudinary{api: api, cfg: testConfig()}
	require.NoError(t, c.Destroy(context.Background(), "estatehub/a", ResourceRaw))
	require.Len(t, api.destroyed, 1)
	assert.Equal(t, "estatehub/a", api.destroyed[0].PublicID)
}

func TestSignUploadCoversFolderAndTimestamp(t *testing.T) {
	c := &Cloudinary{api: &fakeAPI{}, cfg: testConfig()}
	sig, err := c.SignUpload(time.Unix(1700000000, 0))
	require.NoError(t, err)

	sum := sha1.Sum([]byte("folder=estatehub&timestamp=1700000000" + "shh"))
	assert.Equal(t, hex.EncodeToString(sum[:]), sig.Signature)
	assert.Equal(t, int64(1700000000), sig.Timestamp)
	assert.Equal(t, "key", sig.APIKey)
	assert.Equal(t, "demo", sig.CloudName)
	assert.Equal(t, "estatehub", sig.Folder)
}

type recordingStore struct {
	mu        sync.Mutex
	calls     []string
	destroyed []string
	failOn    string
}

func (s *recordingStore) Upload(_ context.Context, name string, r io.Reader, resourceType string) (*Asset, error) {
	body, _ := io.ReadAll(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if resourceType == s.failOn {
		return nil, errors.New("cdn unavailable")
	}
	s.calls = append(s.calls, resourceType+":"+string(body))
	return &Asset{URL: "https://cdn.test/" + resourceType + "/" + name, PublicID: name, ResourceType: resourceType}, nil
}

func (s *recordingStore) Destroy(_ context.Context, publicID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

func (s *recordingStore) SignUpload(time.Time) (*Signature, error) { return &Signature{}, nil }

func multipartRequest(t *testing.T, files map[string][]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("data", `{"title":"Plot"}`))
	for field, contents := range files {
		for i, content := range contents {
			part, err := w.CreateFormFile(field, field+string(rune('a'+i))+".bin")
			require.NoError(t, err)
			_, err = part.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadMiddlewareStoresURLs(t *testing.T) {
	store := &recordingStore{}
	e := echo.New()
	req := multipartRequest(t, map[string][]string{
		"images[]":  {"one", "two"},
		"brochure":  {"pdf"},
		"documents": {"deed"},
	})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var media *UploadedMedia
	err := UploadMiddleware(store)(func(c echo.Context) error {
		media = MediaFromContext(c)
		return nil
	})(c)
	require.NoError(t, err)

	require.NotNil(t, media)
	assert.Len(t, media.Images, 2)
	assert.Contains(t, media.Brochure, "/raw/")
	assert.Len(t, media.Documents, 1)
	assert.Empty(t, media.Video)
	assert.Len(t, store.calls, 4)
}

func TestUploadMiddlewarePassesJSONThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := UploadMiddleware(nil)(func(c echo.Context) error {
		called = true
		assert.Nil(t, MediaFromContext(c))
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestUploadMiddlewareWithoutStore(t *testing.T) {
	e := echo.New()
	c := e.NewContext(multipartRequest(t, map[string][]string{"video": {"mp4"}}), httptest.NewRecorder())

	err := UploadMiddleware(nil)(func(echo.Context) error { return nil })(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUploadMiddlewareDiscardsOnHandlerError(t *testing.T) {
	store := &recordingStore{}
	e := echo.New()
	c := e.NewContext(multipartRequest(t, map[string][]string{"images": {"one", "two"}}), httptest.NewRecorder())

	err := UploadMiddleware(store)(func(c echo.Context) error {
		require.NotNil(t, MediaFromContext(c))
		assert.Len(t, MediaFromContext(c).Assets, 2)
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	})(c)
	require.Error(t, err)
	assert.Len(t, store.destroyed, 2)
}

func TestUploadMiddlewareDiscardsPartialUpload(t *testing.T) {
	store := &recordingStore{failOn: ResourceVideo}
	e := echo.New()
	c := e.NewContext(multipartRequest(t, map[string][]string{"images": {"one"}, "video": {"mp4"}}), httptest.NewRecorder())

	called := false
	err := UploadMiddleware(store)(func(echo.Context) error {
		called = true
		return nil
	})(c)
	require.Error(t, err)
	assert.False(t, called)
	require.Len(t, store.calls, 1)
	assert.Len(t, store.destroyed, 1)
}

func TestUploadMiddlewareKeepsAssetsOnSuccess(t *testing.T) {
	store := &recordingStore{}
	e := echo.New()
	c := e.NewContext(multipartRequest(t, map[string][]string{"images": {"one"}}), httptest.NewRecorder())

	require.NoError(t, UploadMiddleware(store)(func(echo.Context) error { return nil })(c))
	assert.Empty(t, store.destroyed)
}
