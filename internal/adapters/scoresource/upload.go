package scoresource

import (
	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
)

// UploadScore is the body element of POST /players/{player}/records.
type UploadScore struct {
	Title        string          `json:"title"`
	Type         string          `json:"type"`
	Difficulty   string          `json:"difficulty"`
	Achievements decimal.Decimal `json:"achievements"`
	DXScore      int             `json:"dxScore"`
	ComboStat    string          `json:"comboStat"`
	SyncStat     string          `json:"syncStat"`
	PlayCount    *int            `json:"playCount,omitempty"`
}

// FromUpload maps upload rows.
func FromUpload(scores []UploadScore) ([]model.ChartResult, error) {
	out := make([]model.ChartResult, 0, len(scores))
	for i, s := range scores {
		if s.Title == "" {
			return nil, invalid(i, "missing title")
		}
		ct, err := model.ParseChartType(s.Type)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		diff, err := model.ParseDifficulty(s.Difficulty)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		combo, err := model.ParseComboStatus(s.ComboStat)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		sync, err := model.ParseSyncStatus(s.SyncStat)
		if err != nil {
			return nil, invalid(i, "%v", err)
		}
		ach, _, err := checkNumbers(i, s.Achievements, decimal.Zero)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ChartResult{
			Chart:       model.ChartIdentity{Title: s.Title, Type: ct, Difficulty: diff},
			Achievement: ach,
			DXScore:     s.DXScore,
			Combo:       combo,
			Sync:        sync,
			PlayCount:   s.PlayCount,
		})
	}
	return out, nil
}
