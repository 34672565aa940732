package api

import (
	"encoding/json"
	"fmt"

	"github.com/okian/maidx/internal/domain/model"
	"github.com/okian/maidx/internal/domain/rating"
	"github.com/shopspring/decimal"
)

// Decimals go out as JSON numbers at their stored precision.
func achievementNumber(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(4)) }
func dsNumber(d decimal.Decimal) json.Number          { return json.Number(d.StringFixed(1)) }

type recordDTO struct {
	SongID       int         `json:"song_id,omitempty"`
	Title        string      `json:"title"`
	Type         string      `json:"type"`
	Difficulty   string      `json:"difficulty"`
	Achievements json.Number `json:"achievements"`
	DS           json.Number `json:"ds"`
	DXScore      int         `json:"dx_score"`
	Combo        string      `json:"combo"`
	Sync         string      `json:"sync"`
	PlayCount    *int        `json:"play_count,omitempty"`
	Era          string      `json:"era,omitempty"`
	Rating       *int        `json:"rating,omitempty"`
	Rank         string      `json:"rank,omitempty"`
}

func newRecordDTO(r model.ChartResult) recordDTO {
	return recordDTO{
		SongID:       r.Chart.SongID,
		Title:        r.Chart.Title,
		Type:         string(r.Chart.Type),
		Difficulty:   string(r.Chart.Difficulty),
		Achievements: achievementNumber(r.Achievement),
		DS:           dsNumber(r.DS),
		DXScore:      r.DXScore,
		Combo:        string(r.Combo),
		Sync:         string(r.Sync),
		PlayCount:    r.PlayCount,
	}
}

func newRatedDTO(r model.RatedResult) recordDTO {
	d := newRecordDTO(r.ChartResult)
	rating := r.Rating
	d.Rating = &rating
	d.Rank = r.Rank
	return d
}

func newClassifiedDTO(r model.ClassifiedResult) recordDTO {
	d := newRecordDTO(r.Result)
	d.Era = r.Era.String()
	return d
}

type b50Response struct {
	Past      []recordDTO `json:"past"`
	New       []recordDTO `json:"new"`
	PastTotal int         `json:"past_total"`
	NewTotal  int         `json:"new_total"`
	Total     int         `json:"total"`
}

func newB50Response(s model.B50Summary) b50Response {
	out := b50Response{
		Past:      make([]recordDTO, 0, len(s.Past)),
		New:       make([]recordDTO, 0, len(s.New)),
		PastTotal: s.PastTotal(),
		NewTotal:  s.NewTotal(),
		Total:     s.Total,
	}
	for _, r := range s.Past {
		out.Past = append(out.Past, newRatedDTO(r))
	}
	for _, r := range s.New {
		out.New = append(out.New, newRatedDTO(r))
	}
	return out
}

// recordInput is one record of a stateless POST /b50 body. Decimals are
// accepted as numbers or strings.
type recordInput struct {
	SongID       int             `json:"song_id"`
	Title        string          `json:"title"`
	Type         string          `json:"type"`
	Difficulty   string          `json:"difficulty"`
	Achievements decimal.Decimal `json:"achievements"`
	DS           decimal.Decimal `json:"ds"`
	Era          string          `json:"era"`
	DXScore      int             `json:"dx_score"`
	Combo        string          `json:"combo"`
	Sync         string          `json:"sync"`
}

type aggregateRequest struct {
	Records []recordInput `json:"records"`
}

func (in recordInput) classified() (model.ClassifiedResult, error) {
	if in.Title == "" {
		return model.ClassifiedResult{}, fmt.Errorf("missing title")
	}
	ct, err := model.ParseChartType(in.Type)
	if err != nil {
		return model.ClassifiedResult{}, err
	}
	df, err := model.ParseDifficulty(in.Difficulty)
	if err != nil {
		return model.ClassifiedResult{}, err
	}
	combo, err := model.ParseComboStatus(in.Combo)
	if err != nil {
		return model.ClassifiedResult{}, err
	}
	sync, err := model.ParseSyncStatus(in.Sync)
	if err != nil {
		return model.ClassifiedResult{}, err
	}
	if err := rating.Validate(in.Achievements, in.DS); err != nil {
		return model.ClassifiedResult{}, err
	}
	return model.ClassifiedResult{
		Result: model.ChartResult{
			Chart:       model.ChartIdentity{SongID: in.SongID, Title: in.Title, Type: ct, Difficulty: df},
			Achievement: model.NormalizeAchievement(in.Achievements),
			DS:          model.NormalizeDS(in.DS),
			DXScore:     in.DXScore,
			Combo:       combo,
			Sync:        sync,
		},
		Era: model.ParseEra(in.Era),
	}, nil
}
