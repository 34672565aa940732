package api

import (
	"net/http"
	"strconv"
)

// handleLeaderboard serves GET /leaderboard?region=&limit=.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.fail(w, r, BadRequest(op, "limit must be a positive integer"))
			return
		}
		if v > s.maxLimit {
			s.fail(w, r, BadRequest(op, "limit must not exceed %d", s.maxLimit))
			return
		}
		n = v
	}
	entries, err := s.deps.Leaderboard(r.Context(), r.URL.Query().Get("region"), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
