package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

type createListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var body createListRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	list, err := s.svc.CreateList(r.Context(), body.Name, body.Description)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.svc.ListLists(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.GetList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePatchList(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ListPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	list, err := s.svc.UpdateList(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteList(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack())
}

func (s *Server) handleGetListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.GetListItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	err := s.svc.AddItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mediaId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack())
}

func (s *Server) handleRemoveListItem(w http.ResponseWriter, r *http.Request) {
	err := s.svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "mediaId"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack())
}
