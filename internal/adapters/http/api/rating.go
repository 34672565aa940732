package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/internal/domain/rating"
	"github.com/shopspring/decimal"
)

type ratingResponse struct {
	Rating      int         `json:"rating"`
	Rank        rating.Rank `json:"rank"`
	RankDisplay string      `json:"rank_display"`
	MaxRating   int         `json:"max_rating"`
}

type breakpointDTO struct {
	Achievements json.Number `json:"achievements"`
	Rating       int         `json:"rating"`
	Rank         rating.Rank `json:"rank"`
}

func queryDecimal(r *http.Request, op, key string, required bool) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		if required {
			return nil, BadRequest(op, "missing %s", key)
		}
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, BadRequest(op, "invalid %s %q", key, raw)
	}
	return &d, nil
}

// handleRating serves GET /rating?achievement=&ds=.
func (s *Server) handleRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.rating"
	ach, err := queryDecimal(r, op, "achievement", true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ds, err := queryDecimal(r, op, "ds", true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	value, rank, err := s.deps.Rate(*ach, *ds)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ratingResponse{
		Rating:      value,
		Rank:        rank,
		RankDisplay: rank.Display(),
		MaxRating:   rating.MaxRating(*ds),
	})
}

// handleCurve serves GET /rating/curve?ds=&achievement=.
func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	const op = "api.rating_curve"
	ds, err := queryDecimal(r, op, "ds", true)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	current, err := queryDecimal(r, op, "achievement", false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	points, err := s.deps.Curve(*ds, current)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]breakpointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, breakpointDTO{Achievements: achievementNumber(p.Achievement), Rating: p.Rating, Rank: p.Rank})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAggregate serves POST /b50, a B50 over the records in the body.
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	const op = "api.b50"
	var req aggregateRequest
	if err := decodeBody(w, r, op, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	results := make([]model.ClassifiedResult, 0, len(req.Records))
	for i, in := range req.Records {
		c, err := in.classified()
		if err != nil {
			s.fail(w, r, BadRequest(op, "record %d: %v", i, err))
			return
		}
		results = append(results, c)
	}
	sum, err := s.deps.AggregateStateless(results)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newB50Response(sum))
}
