package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleRank serves GET /rank/{player}?region=.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	entry, err := s.deps.Rank(r.Context(), r.URL.Query().Get("region"), chi.URLParam(r, "player"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
