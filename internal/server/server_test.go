package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/filedepot/internal/filestore"
	"github.com/filedepot/filedepot/internal/filestore/disk"
	"github.com/filedepot/filedepot/internal/logger"
)

func quiet() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	cfg := filestore.DefaultConfig(t.TempDir())
	cfg.BaseURL = "https://cdn.example.com"

	store, err := disk.New(cfg, quiet())
	require.NoError(t, err)

	return New(store, Options{Provider: "disk", AllowedOrigins: []string{"*"}}, quiet()).Handler()
}

func do(h http.Handler, method, target string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// multipartUpload builds a multipart body whose file part deliberately
// carries no Content-Type, so type inference on the server is exercised.
func multipartUpload(t *testing.T, filename, content string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

type uploadData struct {
	Key       string                  `json:"key"`
	SourceURL string                  `json:"sourceUrl"`
	Metadata  *filestore.FileMetadata `json:"metadata"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil && env.Data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func uploadFile(t *testing.T, h http.Handler, filename, content string) uploadData {
	t.Helper()

	body, contentType := multipartUpload(t, filename, content)
	rec := do(h, http.MethodPost, "/v1/files", body, map[string]string{"Content-Type": contentType})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data uploadData
	env := decodeEnvelope(t, rec, &data)
	require.True(t, env.Success)
	require.NotNil(t, data.Metadata)
	return data
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disk", body["provider"])
}

func TestUploadAndDownload(t *testing.T) {
	h := newTestHandler(t)

	up := uploadFile(t, h, "a.txt", "hello")
	assert.Regexp(t, `^uploads/[0-9a-f-]{36}-a\.txt$`, up.Key)
	assert.Equal(t, "https://cdn.example.com/"+up.Key, up.SourceURL)
	assert.Equal(t, int64(5), up.Metadata.Size)
	assert.Equal(t, "text/plain", up.Metadata.ContentType)

	rec := do(h, http.MethodGet, "/v1/files/"+up.Key, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
}

func TestUploadRawBody(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, http.MethodPost, "/v1/files?filename=notes.md", strings.NewReader("# hi"),
		map[string]string{"Content-Type": "text/markdown"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data uploadData
	decodeEnvelope(t, rec, &data)
	assert.Regexp(t, `-notes\.md$`, data.Key)
	assert.Equal(t, "text/markdown", data.Metadata.ContentType, "explicit header type is stored verbatim")
	assert.Equal(t, int64(4), data.Metadata.Size)
}

func TestUploadMultipartExplicitType(t *testing.T) {
	h := newTestHandler(t)

	// CreateFormFile stamps the part with application/octet-stream,
	// which counts as an explicit caller-supplied type.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "a.txt")
	require.NoError(t, err)
	_, err = io.WriteString(part, "hello")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := do(h, http.MethodPost, "/v1/files", &buf, map[string]string{"Content-Type": mw.FormDataContentType()})
	require.Equal(t, http.StatusCreated, rec.Code)

	var data uploadData
	decodeEnvelope(t, rec, &data)
	assert.Equal(t, "application/octet-stream", data.Metadata.ContentType)
}

func TestUploadMissingFileField(t *testing.T) {
	h := newTestHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	rec := do(h, http.MethodPost, "/v1/files", &buf, map[string]string{"Content-Type": mw.FormDataContentType()})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env := decodeEnvelope(t, rec, nil)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestDownloadMissing(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, http.MethodGet, "/v1/files/uploads/nope.txt", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeEnvelope(t, rec, nil)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "uploads/nope.txt")
}

func TestDownloadNormalizesTraversal(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, http.MethodGet, "/v1/files/a/../../b", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeEnvelope(t, rec, nil)
	assert.Contains(t, env.Error, `"a/b"`, "the traversal key collapses before lookup")
}

func TestExists(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, http.MethodHead, "/v1/files/uploads/ghost.bin", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	up := uploadFile(t, h, "ghost.bin", "boo")

	rec = do(h, http.MethodHead, "/v1/files/"+up.Key, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteIsIdempotent(t *testing.T) {
	h := newTestHandler(t)

	up := uploadFile(t, h, "a.txt", "hello")

	rec := do(h, http.MethodDelete, "/v1/files/"+up.Key, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Second delete succeeds identically.
	rec = do(h, http.MethodDelete, "/v1/files/"+up.Key, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodHead, "/v1/files/"+up.Key, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutesRejectEmptyKeys(t *testing.T) {
	h := newTestHandler(t)

	up := uploadFile(t, h, "a.txt", "hello")

	// Keys made entirely of separators and traversal segments normalize
	// to nothing; no route may treat them as addressing the store root.
	rec := do(h, http.MethodDelete, "/v1/files/", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/v1/files/../..", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodHead, "/v1/files/", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The store survived: the object uploaded first is still served.
	rec = do(h, http.MethodGet, "/v1/files/"+up.Key, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestMetadataEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, http.MethodGet, "/v1/metadata/uploads/nothing.txt", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	up := uploadFile(t, h, "a.txt", "hello")

	rec = do(h, http.MethodGet, "/v1/metadata/"+up.Key, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var meta filestore.FileMetadata
	decodeEnvelope(t, rec, &meta)
	assert.Equal(t, up.Key, meta.Key)
	assert.Equal(t, int64(5), meta.Size)
	assert.Equal(t, "text/plain", meta.ContentType)
}

func TestURLsEndpoint(t *testing.T) {
	h := newTestHandler(t)

	t.Run("absent key resolves to nulls", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/v1/urls/uploads/nothing.txt", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var urls urlsPayload
		decodeEnvelope(t, rec, &urls)
		assert.Nil(t, urls.SourceURL)
		assert.Nil(t, urls.DownloadURL)
	})

	t.Run("stored key resolves both URLs", func(t *testing.T) {
		up := uploadFile(t, h, "a.txt", "hello")

		rec := do(h, http.MethodGet, "/v1/urls/"+up.Key, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var urls urlsPayload
		decodeEnvelope(t, rec, &urls)
		require.NotNil(t, urls.SourceURL)
		require.NotNil(t, urls.DownloadURL)
		assert.Equal(t, up.SourceURL, *urls.SourceURL)
		assert.Equal(t, *urls.SourceURL, *urls.DownloadURL)
	})
}

func TestCreateUploadURLNotSupported(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, http.MethodPost, "/v1/uploads", strings.NewReader(`{"filename":"a.txt"}`),
		map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusNotImplemented, rec.Code)

	env := decodeEnvelope(t, rec, nil)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "not supported")
}
