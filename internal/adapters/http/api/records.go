package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/maidx/internal/adapters/scoresource"
	service "github.com/okian/maidx/internal/app"
)

const idempotencyHeader = "Idempotency-Key"

// handleUpload serves POST /players/{player}/records. Without a format the
// body is a JSON array of upload scores; otherwise it is an export in the
// named format.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.records_upload"
	player := chi.URLParam(r, "player")
	region := r.URL.Query().Get("region")
	format := r.URL.Query().Get("format")
	uploadID := r.Header.Get(idempotencyHeader)

	var (
		rep service.UploadReport
		err error
	)
	if format == "" || format == scoresource.FormatUpload {
		var scores []scoresource.UploadScore
		if err := decodeBody(w, r, op, &scores); err != nil {
			s.fail(w, r, err)
			return
		}
		rep, err = s.deps.UploadRecords(r.Context(), player, region, uploadID, scores)
	} else {
		rep, err = s.deps.ImportRecords(r.Context(), player, region, uploadID, format,
			http.MaxBytesReader(w, r.Body, maxBodyBytes))
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusAccepted
	if !rep.Queued {
		status = http.StatusOK
	}
	writeJSON(w, status, rep)
}

// handleRecords serves GET /players/{player}/records?region=.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	results, err := s.deps.Records(r.Context(), chi.URLParam(r, "player"), r.URL.Query().Get("region"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]recordDTO, 0, len(results))
	for _, res := range results {
		out = append(out, newClassifiedDTO(res))
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePlayerB50 serves GET /players/{player}/b50?region=.
func (s *Server) handlePlayerB50(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.B50(r.Context(), chi.URLParam(r, "player"), r.URL.Query().Get("region"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newB50Response(sum))
}
