package api

import (
	"net/http"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Export(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="fafov2_export.json"`)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap catalog.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	n, err := s.svc.Import(r.Context(), &snap)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
