package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cemsreg/registry"
)

// handleAdminListIndustries returns all registered industries, optionally
// filtered by a case-insensitive name substring via ?q=.
func (s *Server) handleAdminListIndustries(w http.ResponseWriter, r *http.Request) {
	industries, err := s.store.AdminListIndustries(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"industries": industries})
}

func (s *Server) handleAdminIndustryDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "industryID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid industry id"})
		return
	}
	detail, err := s.store.IndustryDetail(r.Context(), registry.IndustryID(id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
