package loadtest

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/maidx/internal/adapters/catalog"
	"github.com/okian/maidx/internal/adapters/scoresource"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/shopspring/decimal"
)

// band is an achievement range a generated play falls into.
type band struct {
	min, max float64
}

// Achievement bands, weighted toward the ranks players actually chase.
var bands = []band{
	{97.0, 99.0},   // S..SS
	{99.0, 100.0},  // SS..SS+
	{99.5, 100.5},  // SS+..SSS
	{100.0, 100.5}, // SSS
	{100.5, 101.0}, // SSS+
	{90.0, 97.0},   // AA..AAA
	{80.0, 94.0},   // A..AA
	{10.0, 101.0},  // anything
}

// playable returns the rated charts of songs.
func playable(songs []catalog.Song) []model.CatalogChart {
	var out []model.CatalogChart
	for _, s := range songs {
		for _, c := range s.Charts {
			if c.Chart.Type == model.ChartUtage {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// generateUploads creates n players, each uploading up to per distinct
// charts with a random achievement.
func generateUploads(rng *rand.Rand, charts []model.CatalogChart, n, per int) []Upload {
	if per > len(charts) {
		per = len(charts)
	}
	out := make([]Upload, n)
	for i := range out {
		picks := rng.Perm(len(charts))[:per]
		scores := make([]scoresource.UploadScore, 0, per)
		for _, p := range picks {
			scores = append(scores, generateScore(rng, charts[p].Chart))
		}
		out[i] = Upload{
			Player:   fmt.Sprintf("load-%s", uuid.NewString()[:8]),
			UploadID: uuid.NewString(),
			Scores:   scores,
		}
	}
	return out
}

func generateScore(rng *rand.Rand, c model.ChartIdentity) scoresource.UploadScore {
	b := bands[rng.IntN(len(bands))]
	ach := decimal.NewFromFloat(b.min + rng.Float64()*(b.max-b.min)).Round(4)
	return scoresource.UploadScore{
		Title:        c.Title,
		Type:         string(c.Type),
		Difficulty:   string(c.Difficulty),
		Achievements: ach,
		DXScore:      rng.IntN(3000),
	}
}
