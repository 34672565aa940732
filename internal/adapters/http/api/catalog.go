package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/internal/domain/rating"
)

// handleCatalogSync serves POST /catalog/sync?region=. It refreshes the
// region's catalog and recomputes every rating before responding.
func (s *Server) handleCatalogSync(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.SyncCatalog(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type versionDTO struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// handleVersions serves GET /catalog/versions?region=, oldest first.
func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.deps.Versions(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]versionDTO, 0, len(versions))
	for _, v := range versions {
		d := versionDTO{Name: v.Name}
		if !v.ReleaseDate.IsZero() {
			d.ReleaseDate = v.ReleaseDate.Format(time.DateOnly)
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}

type chartDTO struct {
	ID         int64       `json:"id"`
	SongID     int         `json:"song_id"`
	Title      string      `json:"title"`
	Type       string      `json:"type"`
	Difficulty string      `json:"difficulty"`
	Level      string      `json:"level"`
	DS         json.Number `json:"ds"`
	MaxRating  int         `json:"max_rating"`
}

func newChartDTO(c model.CatalogChart) chartDTO {
	return chartDTO{
		ID:         c.ID,
		SongID:     c.Chart.SongID,
		Title:      c.Chart.Title,
		Type:       string(c.Chart.Type),
		Difficulty: string(c.Chart.Difficulty),
		Level:      c.Level,
		DS:         dsNumber(c.DS),
		MaxRating:  rating.MaxRating(c.DS),
	}
}

// handleChart serves GET /catalog/charts/{id}.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		s.fail(w, r, BadRequest(op, "chart id must be a positive integer"))
		return
	}
	c, err := s.deps.Chart(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newChartDTO(c))
}
