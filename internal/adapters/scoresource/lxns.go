package scoresource

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
)

// LXNSScore is one entry of the LXNS player scores list. LXNS does not
// report difficulty constants.
type LXNSScore struct {
	ID           int             `json:"id"`
	SongName     string          `json:"song_name"`
	Level        string          `json:"level"`
	LevelIndex   int             `json:"level_index"`
	Achievements decimal.Decimal `json:"achievements"`
	FC           *string         `json:"fc"`
	FS           *string         `json:"fs"`
	DXScore      int             `json:"dx_score"`
	DXRating     decimal.Decimal `json:"dx_rating"`
	Rate         string          `json:"rate"`
	Type         string          `json:"type"`
	UploadTime   string          `json:"upload_time"`
}

// LXNSResponse is the LXNS API envelope.
type LXNSResponse struct {
	Code    int         `json:"code"`
	Success bool        `json:"success"`
	Data    []LXNSScore `json:"data"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FromLXNS maps LXNS scores. LXNS may list a chart more than once; only the
// score with the latest upload_time is kept, and ties keep the later entry.
func FromLXNS(scores []LXNSScore) ([]model.ChartResult, error) {
	type kept struct {
		at  time.Time
		pos int
	}
	out := make([]model.ChartResult, 0, len(scores))
	seen := make(map[string]kept, len(scores))

	for i, s := range scores {
		ct, err := model.ParseChartType(s.Type)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		diff, err := model.DifficultyFromIndex(s.LevelIndex)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		combo, err := model.ParseComboStatus(deref(s.FC))
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		sync, err := model.ParseSyncStatus(deref(s.FS))
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		ach, _, err := checkNumbers(i, s.Achievements, decimal.Zero)
		if err != nil {
			return nil, err
		}
		var at time.Time
		if s.UploadTime != "" {
			if at, err = dateparse.ParseAny(s.UploadTime); err != nil {
				return nil, invalid(i, "upload_time %q: %v", s.UploadTime, err)
			}
		}

		songID := s.ID
		if ct == model.ChartDeluxe && songID < 10000 {
			songID += 10000
		}
		res := model.ChartResult{
			Chart:       model.ChartIdentity{SongID: songID, Title: s.SongName, Type: ct, Difficulty: diff},
			Achievement: ach,
			DXScore:     s.DXScore,
			Combo:       combo,
			Sync:        sync,
		}

		key := res.Chart.Key()
		if prev, ok := seen[key]; ok {
			if at.Before(prev.at) {
				continue
			}
			out[prev.pos] = res
			seen[key] = kept{at: at, pos: prev.pos}
			continue
		}
		seen[key] = kept{at: at, pos: len(out)}
		out = append(out, res)
	}
	return out, nil
}
