package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, created, err := s.svc.CreateItem(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, item)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.svc.ListItems(r.Context(), catalog.ItemFilter{
		Category:  q.Get("category"),
		MediaType: q.Get("media_type"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.CategoryStats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleRemoveFromCategory(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if err := s.svc.RemoveFromCategory(r.Context(), chi.URLParam(r, "category"), url); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleSearch matches stored items. Repeat ?category= to restrict the
// search to specific categories.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("q") == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	items, err := s.svc.SearchItems(r.Context(), q.Get("q"), q["category"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
