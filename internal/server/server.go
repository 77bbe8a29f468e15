// Package server exposes the storage contract over HTTP.
//
// Routes:
//
//	POST   /v1/files        upload (multipart "file" field, or a raw body)
//	GET    /v1/files/*      download content
//	HEAD   /v1/files/*      existence check
//	DELETE /v1/files/*      delete content and metadata
//	GET    /v1/metadata/*   metadata record
//	GET    /v1/urls/*       source and download URLs
//	POST   /v1/uploads      presigned direct-upload URL
//	GET    /health          liveness and provider info
//
// JSON endpoints under /v1 use the response.Envelope shape, except
// DELETE, which answers 204 with no body. /health writes a bare JSON
// object so probes stay independent of the envelope.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/filedepot/filedepot/internal/filestore"
	"github.com/filedepot/filedepot/internal/logger"
)

// Options carries the server settings that are not the store itself.
type Options struct {
	// Provider names the active storage backend, reported by /health.
	Provider string

	// AllowedOrigins is handed to the CORS middleware.
	// Empty and "*" both allow any origin.
	AllowedOrigins []string
}

// Server routes HTTP requests to a filestore.Store.
type Server struct {
	store filestore.Store
	opts  Options
	log   *logger.Logger
}

// New returns a Server for store. A nil log falls back to the default
// logger configuration.
func New(store filestore.Store, opts Options, log *logger.Logger) *Server {
	if log == nil {
		log = logger.New(logger.DefaultConfig())
	}
	return &Server{
		store: store,
		opts:  opts,
		log:   log.Component("http"),
	}
}

// Handler builds the chi router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/files", s.handleUpload)
		r.Get("/files/*", s.handleDownload)
		r.Head("/files/*", s.handleExists)
		r.Delete("/files/*", s.handleDelete)
		r.Get("/metadata/*", s.handleMetadata)
		r.Get("/urls/*", s.handleURLs)
		r.Post("/uploads", s.handleCreateUploadURL)
	})

	return r
}
