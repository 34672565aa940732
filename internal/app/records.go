package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/maidx/internal/adapters/repository/sqlite"
	"github.com/okian/maidx/internal/adapters/scoresource"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/pkg/logger"
	"github.com/okian/maidx/pkg/metrics"
)

const maxPlayerNameLen = 64

// UploadReport summarises a batch of uploaded scores.
type UploadReport struct {
	UploadID string   `json:"upload_id"`
	Message  string   `json:"message"`
	Success  int      `json:"success"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
	Queued   bool     `json:"queued"`
}

func (r *UploadReport) fail(msg string) {
	r.Failed++
	r.Errors = append(r.Errors, msg)
}

func checkPlayer(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxPlayerNameLen {
		return fmt.Errorf("%w: player name must be 1-%d bytes", ErrInvalidInput, maxPlayerNameLen)
	}
	return nil
}

// claim records uploadID, generating one when empty. Returns ErrDuplicate
// when the id was already seen.
func (s *Service) claim(ctx context.Context, uploadID string) (string, error) {
	if uploadID == "" {
		return uuid.NewString(), nil
	}
	if s.deduper.SeenAndRecord(ctx, uploadID) {
		metrics.RecordUploadDuplicate()
		return "", fmt.Errorf("%w: %s", ErrDuplicate, uploadID)
	}
	return uploadID, nil
}

// UploadRecords stores a batch of uploaded scores for player and schedules
// a rating recompute for region. Each score is handled on its own: scores
// that are malformed or name an unknown chart are counted as failed and the
// rest are still stored.
func (s *Service) UploadRecords(ctx context.Context, player, region, uploadID string, scores []scoresource.UploadScore) (UploadReport, error) {
	if err := s.ready(); err != nil {
		return UploadReport{}, err
	}
	return s.ingest(ctx, player, region, uploadID, func(rep *UploadReport) []model.ChartResult {
		results := make([]model.ChartResult, 0, len(scores))
		for _, sc := range scores {
			rs, err := scoresource.FromUpload([]scoresource.UploadScore{sc})
			if err != nil {
				rep.fail(fmt.Sprintf("Error processing %s: %v", sc.Title, err))
				continue
			}
			results = append(results, rs[0])
		}
		rep.Message = fmt.Sprintf("Processed %d scores", len(scores))
		return results
	})
}

// ImportRecords stores a player's scores exported from another service, in
// one of scoresource.Formats. The export is rejected as a whole when it
// cannot be decoded.
func (s *Service) ImportRecords(ctx context.Context, player, region, uploadID, format string, r io.Reader) (UploadReport, error) {
	if err := s.ready(); err != nil {
		return UploadReport{}, err
	}
	results, err := scoresource.Decode(format, r)
	if err != nil {
		return UploadReport{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.ingest(ctx, player, region, uploadID, func(rep *UploadReport) []model.ChartResult {
		rep.Message = fmt.Sprintf("Processed %d scores", len(results))
		return results
	})
}

func (s *Service) ingest(ctx context.Context, player, region, uploadID string, collect func(*UploadReport) []model.ChartResult) (UploadReport, error) {
	if err := checkPlayer(player); err != nil {
		return UploadReport{}, err
	}
	region, err := s.region(region)
	if err != nil {
		return UploadReport{}, err
	}
	uploadID, err = s.claim(ctx, uploadID)
	if err != nil {
		return UploadReport{}, err
	}
	p, err := s.players.Ensure(ctx, player)
	if err != nil {
		s.deduper.Unrecord(ctx, uploadID)
		return UploadReport{}, err
	}

	rep := UploadReport{UploadID: uploadID}
	for _, res := range collect(&rep) {
		if err := s.storeResult(ctx, p.ID, res); err != nil {
			rep.fail(err.Error())
			continue
		}
		rep.Success++
	}
	metrics.RecordUploadScores(rep.Success, rep.Failed)

	log := s.logger.With(logger.String("upload_id", uploadID), logger.String("player", p.Name))
	fields := []logger.Field{logger.Int("success", rep.Success), logger.Int("failed", rep.Failed)}
	if n, err := s.scores.CountByPlayer(ctx, p.ID); err == nil {
		fields = append(fields, logger.Int("charts", n))
	}
	log.Info(ctx, "scores stored", fields...)

	if rep.Success == 0 {
		return rep, nil
	}
	err = s.jobs.Enqueue(ctx, model.RecomputeJob{
		JobID:    uploadID,
		PlayerID: p.ID,
		Region:   region,
		Reason:   "upload",
		TS:       time.Now(),
	})
	if err != nil {
		// The stored scores stay; a retry with the same id re-stores them and
		// queues the recompute again.
		s.deduper.Unrecord(ctx, uploadID)
		log.Warn(ctx, "recompute not queued", logger.Error(err))
		return rep, fmt.Errorf("%w: %v", ErrBackpressure, err)
	}
	rep.Queued = true
	return rep, nil
}

func chartLabel(c model.ChartIdentity) string {
	if c.Title == "" {
		return fmt.Sprintf("#%d [%s] %s", c.SongID, c.Type, c.Difficulty)
	}
	return c.String()
}

// storeResult resolves res against the catalog and upserts it. Returned
// errors are already phrased for the upload report.
func (s *Service) storeResult(ctx context.Context, playerID int64, res model.ChartResult) error {
	c, err := s.charts.FindChart(ctx, res.Chart)
	if errors.Is(err, sqlite.ErrNotFound) {
		return fmt.Errorf("Chart not found: %s", chartLabel(res.Chart)) //nolint:staticcheck // report text
	}
	if err == nil {
		err = s.scores.Upsert(ctx, playerID, c.ID, res)
	}
	if err != nil {
		return fmt.Errorf("Error processing %s: %v", chartLabel(res.Chart), err) //nolint:staticcheck // report text
	}
	return nil
}

// Records returns a player's stored results, classified for region.
func (s *Service) Records(ctx context.Context, player, region string) ([]model.ClassifiedResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	region, err := s.region(region)
	if err != nil {
		return nil, err
	}
	p, err := s.players.Get(ctx, player)
	if err != nil {
		return nil, notFound(err)
	}
	return s.scores.ListByPlayer(ctx, p.ID, region)
}
