package scoresource

import (
	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
)

// DivingFishRecord is one entry of the prober's /dev/player/records list.
type DivingFishRecord struct {
	Achievements decimal.Decimal `json:"achievements"`
	DS           decimal.Decimal `json:"ds"`
	DXScore      int             `json:"dxScore"`
	FC           string          `json:"fc"`
	FS           string          `json:"fs"`
	Level        string          `json:"level"`
	LevelIndex   int             `json:"level_index"`
	LevelLabel   string          `json:"level_label"`
	RA           int             `json:"ra"`
	Rate         string          `json:"rate"`
	SongID       int             `json:"song_id"`
	Title        string          `json:"title"`
	Type         string          `json:"type"`
}

// DivingFishResponse is the /dev/player/records body.
type DivingFishResponse struct {
	Username string             `json:"username"`
	Nickname string             `json:"nickname"`
	Rating   int                `json:"rating"`
	Records  []DivingFishRecord `json:"records"`
}

// FromDivingFish maps prober records. The prober's own ra and rate fields
// are ignored; ratings are always recomputed.
func FromDivingFish(records []DivingFishRecord) ([]model.ChartResult, error) {
	out := make([]model.ChartResult, 0, len(records))
	for i, r := range records {
		ct, err := model.ParseChartType(r.Type)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		diff, err := model.DifficultyFromIndex(r.LevelIndex)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		if chartTypeForSongID(r.SongID) == model.ChartUtage {
			ct, diff = model.ChartUtage, model.Utage
		}
		combo, err := model.ParseComboStatus(r.FC)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		sync, err := model.ParseSyncStatus(r.FS)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		ach, ds, err := checkNumbers(i, r.Achievements, r.DS)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ChartResult{
			Chart:       model.ChartIdentity{SongID: r.SongID, Title: r.Title, Type: ct, Difficulty: diff},
			Achievement: ach,
			DS:          ds,
			DXScore:     r.DXScore,
			Combo:       combo,
			Sync:        sync,
		})
	}
	return out, nil
}
