// Package api exposes the catalog over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const (
	serviceName = "catalog-service"

	defaultInfoTimeout   = 30 * time.Second
	defaultSearchTimeout = 60 * time.Second
	maxBodyBytes         = 10 << 20
)

type Server struct {
	svc       *catalog.Service
	extractor catalog.Extractor
	playlists catalog.PlaylistExpander
	ws        http.HandlerFunc
	log       logrus.FieldLogger

	infoTimeout   time.Duration
	searchTimeout time.Duration
}

type Option func(*Server)

// WithExtractor enables the video info, stream and youtube search routes.
func WithExtractor(e catalog.Extractor) Option {
	return func(s *Server) { s.extractor = e }
}

// WithPlaylists enables the playlist info route.
func WithPlaylists(p catalog.PlaylistExpander) Option {
	return func(s *Server) { s.playlists = p }
}

// WithWebsocket mounts h at /api/ws.
func WithWebsocket(h http.HandlerFunc) Option {
	return func(s *Server) { s.ws = h }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeouts bounds extractor calls. Zero keeps the default.
func WithTimeouts(info, search time.Duration) Option {
	return func(s *Server) {
		if info > 0 {
			s.infoTimeout = info
		}
		if search > 0 {
			s.searchTimeout = search
		}
	}
}

func NewServer(svc *catalog.Service, opts ...Option) *Server {
	s := &Server{
		svc:           svc,
		log:           logrus.StandardLogger(),
		infoTimeout:   defaultInfoTimeout,
		searchTimeout: defaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/media", s.handleCreateItem)
		r.Get("/media", s.handleListItems)
		r.Get("/media/{id}", s.handleGetItem)
		r.Delete("/media/{id}", s.handleDeleteItem)

		r.Post("/lists", s.handleCreateList)
		r.Get("/lists", s.handleListLists)
		r.Get("/lists/{id}", s.handleGetList)
		r.Patch("/lists/{id}", s.handlePatchList)
		r.Delete("/lists/{id}", s.handleDeleteList)
		r.Get("/lists/{id}/items", s.handleGetListItems)
		r.Post("/lists/{id}/items/{mediaId}", s.handleAddListItem)
		r.Delete("/lists/{id}/items/{mediaId}", s.handleRemoveListItem)

		r.Get("/categories", s.handleCategories)
		r.Delete("/categories/{category}/items", s.handleRemoveFromCategory)
		r.Get("/stats", s.handleStats)
		r.Get("/search", s.handleSearch)

		r.Get("/video/info", s.handleVideoInfo)
		r.Get("/video/stream", s.handleVideoStream)
		r.Get("/playlist/info", s.handlePlaylistInfo)
		r.Get("/youtube/search", s.handleYouTubeSearch)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		if s.ws != nil {
			r.Get("/ws", s.ws)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
	})
}
