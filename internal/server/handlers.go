package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/filedepot/filedepot/internal/errs"
	"github.com/filedepot/filedepot/internal/filestore"
	"github.com/filedepot/filedepot/internal/response"
)

// maxUploadBytes bounds a single upload request body.
const maxUploadBytes = 100 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": s.opts.Provider,
	})
}

// handleUpload accepts either a multipart form with a "file" field or a
// raw request body. For raw bodies the filename comes from the
// "filename" query parameter and the type from the Content-Type header.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	content, opts, err := extractUpload(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
			return
		}
		response.BadRequest(w, "missing or invalid file")
		return
	}
	defer content.Close()

	res, err := s.store.Upload(r.Context(), content, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	response.Created(w, res)
}

func extractUpload(r *http.Request) (io.ReadCloser, *filestore.UploadOptions, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, nil, err
		}
		return file, &filestore.UploadOptions{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}, nil
	}

	return r.Body, &filestore.UploadOptions{
		Filename:    r.URL.Query().Get("filename"),
		ContentType: r.Header.Get("Content-Type"),
	}, nil
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	data, err := s.store.Download(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}

	contentType := filestore.DefaultContentType
	filename := path.Base(filestore.NormalizeKey(key))
	if meta, err := s.store.GetMetadata(r.Context(), key); err == nil && meta != nil {
		if meta.ContentType != "" {
			contentType = meta.ContentType
		}
		if meta.Filename != "" {
			filename = meta.Filename
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	ok, err := s.store.Exists(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		w.WriteHeader(statusFor(err))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := filestore.NormalizeKey(chi.URLParam(r, "*"))

	if err := s.store.Delete(r.Context(), key); err != nil {
		s.writeError(w, err)
		return
	}

	// Deletion is idempotent, so this succeeds whether or not the key held anything.
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	key := filestore.NormalizeKey(chi.URLParam(r, "*"))

	meta, err := s.store.GetMetadata(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if meta == nil {
		response.NotFound(w, fmt.Sprintf("no metadata stored under %q", key))
		return
	}

	response.OK(w, meta)
}

// urlsPayload renders absent URLs as JSON null rather than omitting them.
type urlsPayload struct {
	SourceURL   *string `json:"sourceUrl"`
	DownloadURL *string `json:"downloadUrl"`
}

func (s *Server) handleURLs(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	src, err := s.store.GetSourceURL(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	dl, err := s.store.GetDownloadURL(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}

	response.OK(w, urlsPayload{
		SourceURL:   nullable(src),
		DownloadURL: nullable(dl),
	})
}

func (s *Server) handleCreateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "invalid request body")
		return
	}

	u, err := s.store.CreateUploadURL(r.Context(), &filestore.UploadOptions{
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if u == "" {
		response.Error(w, http.StatusNotImplemented, "direct uploads are not supported by this storage provider")
		return
	}

	response.OK(w, map[string]string{"url": u})
}

// --- error mapping ---

// writeError renders err with the HTTP status its kind maps to. Server
// faults are logged and reduced to a generic message; client faults
// carry the error's own message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
		return
	}

	status := statusFor(err)
	msg := clientMessage(err)
	if status >= http.StatusInternalServerError {
		// Server faults keep their cause out of the response body.
		s.log.With().Err(err).Logger().Error("request failed")
		msg = http.StatusText(status)
	}

	response.Error(w, status, msg)
}

func statusFor(err error) int {
	switch {
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.IsInvalidInput(err):
		return http.StatusBadRequest
	case errs.IsPermissionDenied(err):
		return http.StatusForbidden
	case errs.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errs.IsConnectionFailed(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage extracts the message half of a *errs.Error, leaving the
// wrapped cause chain out of client responses.
func clientMessage(err error) string {
	var e *errs.Error
	if errors.As(err, &e) {
		if e.Key != "" {
			return fmt.Sprintf("%s: %q", e.Message, e.Key)
		}
		return e.Message
	}
	return http.StatusText(statusFor(err))
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
