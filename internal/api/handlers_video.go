package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

const (
	defaultQuality     = "720"
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	playlistEntries    = 20
	maxFormats         = 5
	maxQueryLen        = 200
)

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "extractor not configured")
		return
	}
	url := r.URL.Query().Get("url")
	if !catalog.ValidURL(url) {
		writeError(w, http.StatusBadRequest, "invalid url")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.infoTimeout)
	defer cancel()

	meta, err := s.extractor.FetchMetadata(ctx, url)
	if err != nil {
		s.log.WithFields(logrus.Fields{"url": url, "error": err}).Warn("video info")
		writeError(w, http.StatusBadRequest, "could not extract video info: "+err.Error())
		return
	}
	if meta == nil {
		writeError(w, http.StatusBadRequest, "could not extract video info: no metadata")
		return
	}
	if len(meta.Formats) > maxFormats {
		meta.Formats = meta.Formats[:maxFormats]
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleVideoStream(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "extractor not configured")
		return
	}
	q := r.URL.Query()
	url := q.Get("url")
	if !catalog.ValidURL(url) {
		writeError(w, http.StatusBadRequest, "invalid url")
		return
	}
	quality := q.Get("quality")
	if quality == "" {
		quality = defaultQuality
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.infoTimeout)
	defer cancel()

	writeJSON(w, http.StatusOK, map[string]string{
		"url":        url,
		"stream_url": s.extractor.ResolvePlayableURL(ctx, url, quality),
	})
}

func (s *Server) handlePlaylistInfo(w http.ResponseWriter, r *http.Request) {
	if s.playlists == nil {
		writeError(w, http.StatusServiceUnavailable, "playlist expansion not configured")
		return
	}
	url := r.URL.Query().Get("url")
	if !catalog.ValidURL(url) || !catalog.IsPlaylistURL(url) {
		writeError(w, http.StatusBadRequest, "not a playlist url")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.searchTimeout)
	defer cancel()

	info, err := s.playlists.ExpandPlaylist(ctx, url, playlistEntries)
	if err != nil {
		s.log.WithFields(logrus.Fields{"url": url, "error": err}).Warn("playlist info")
		writeError(w, http.StatusBadRequest, "could not expand playlist: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleYouTubeSearch accepts limit in 1..50; values outside the range are
// clamped and a missing limit means 20.
func (s *Server) handleYouTubeSearch(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "extractor not configured")
		return
	}
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	if len(query) > maxQueryLen {
		writeError(w, http.StatusBadRequest, "q is too long")
		return
	}

	limit := defaultSearchLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = min(max(n, 1), maxSearchLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.searchTimeout)
	defer cancel()

	results, err := s.extractor.Search(ctx, query, limit)
	if err != nil {
		s.log.WithFields(logrus.Fields{"query": query, "error": err}).Warn("youtube search")
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}
	if results == nil {
		results = []catalog.Metadata{}
	}
	writeJSON(w, http.StatusOK, results)
}
