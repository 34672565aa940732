// Package api serves the rating service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/maidx/internal/adapters/http/swagger"
	"github.com/okian/maidx/internal/adapters/scoresource"
	service "github.com/okian/maidx/internal/app"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/internal/domain/rating"
	"github.com/okian/maidx/internal/domain/types"
	"github.com/okian/maidx/pkg/logger"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
)

const (
	defaultLeaderboardLimit = 10
	defaultMaxLimit         = 100
	maxBodyBytes            = 8 << 20
)

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	UploadRecords(ctx context.Context, player, region, uploadID string, scores []scoresource.UploadScore) (service.UploadReport, error)
	ImportRecords(ctx context.Context, player, region, uploadID, format string, r io.Reader) (service.UploadReport, error)
	Records(ctx context.Context, player, region string) ([]model.ClassifiedResult, error)
	B50(ctx context.Context, player, region string) (model.B50Summary, error)
	Leaderboard(ctx context.Context, region string, n int) ([]types.Entry, error)
	Rank(ctx context.Context, region, player string) (types.Entry, error)
	Rate(achievement, ds decimal.Decimal) (int, rating.Rank, error)
	Curve(ds decimal.Decimal, current *decimal.Decimal) ([]rating.Breakpoint, error)
	AggregateStateless(results []model.ClassifiedResult) (model.B50Summary, error)
	SyncCatalog(ctx context.Context, region string) (service.SyncResult, error)
	Versions(ctx context.Context, region string) ([]model.Version, error)
	Chart(ctx context.Context, id int64) (model.CatalogChart, error)
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps     Dependencies
	maxLimit int
	origins  []string
	log      logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLimit caps GET /leaderboard?limit.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithCORSOrigins restricts cross-origin callers. No origins allows all.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, maxLimit: defaultMaxLimit, log: logger.Get().Named("api")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestID)

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler)

	r.Get("/healthz", MetricsMiddleware(HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(NewStatsHandler(s.deps).HandleStats, "stats"))

	r.Get("/rating", MetricsMiddleware(s.handleRating, "rating"))
	r.Get("/rating/curve", MetricsMiddleware(s.handleCurve, "rating_curve"))
	r.Post("/b50", MetricsMiddleware(s.handleAggregate, "b50"))

	r.Route("/players/{player}", func(r chi.Router) {
		r.Post("/records", MetricsMiddleware(s.handleUpload, "records_upload"))
		r.Get("/records", MetricsMiddleware(s.handleRecords, "records"))
		r.Get("/b50", MetricsMiddleware(s.handlePlayerB50, "player_b50"))
	})

	r.Get("/leaderboard", MetricsMiddleware(s.handleLeaderboard, "leaderboard"))
	r.Get("/rank/{player}", MetricsMiddleware(s.handleRank, "rank"))
	r.Route("/catalog", func(r chi.Router) {
		r.Post("/sync", MetricsMiddleware(s.handleCatalogSync, "catalog_sync"))
		r.Get("/versions", MetricsMiddleware(s.handleVersions, "catalog_versions"))
		r.Get("/charts/{id}", MetricsMiddleware(s.handleChart, "catalog_chart"))
	})

	swagger.Register(ctx, r)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: "no such route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "method_not_allowed", Message: "method not allowed"})
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes err with the status statusFor picks. Server errors are
// logged and their details withheld.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", GetRequestID(r.Context())),
			logger.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeBody decodes a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return BadRequest(op, "invalid JSON body: %v", err)
	}
	return nil
}
