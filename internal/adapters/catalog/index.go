package catalog

import (
	"fmt"

	"github.com/okian/maidx/internal/domain/model"
)

// Index resolves chart identities against a snapshot held in memory. It is
// what the offline tools use in place of the database.
type Index struct {
	byKey  map[string]model.CatalogChart
	bySong map[string]model.CatalogChart
	latest string
}

// NewIndex builds an Index over snap.
func NewIndex(snap model.CatalogSnapshot) *Index {
	idx := &Index{
		byKey:  make(map[string]model.CatalogChart, len(snap.Charts)),
		bySong: make(map[string]model.CatalogChart, len(snap.Charts)),
	}
	if v, ok := snap.LatestVersion(); ok {
		idx.latest = v.Name
	}
	for _, c := range snap.Charts {
		idx.byKey[c.Chart.Key()] = c
		idx.bySong[songKey(c.Chart.SongID, c.Chart.Difficulty)] = c
	}
	return idx
}

func songKey(id int, d model.Difficulty) string {
	return fmt.Sprintf("%d/%s", id, d)
}

// Lookup finds the chart for id by title, type and difficulty, or by song
// id and difficulty when id has no title.
func (x *Index) Lookup(id model.ChartIdentity) (model.CatalogChart, bool) {
	if id.Title != "" {
		c, ok := x.byKey[id.Key()]
		return c, ok
	}
	c, ok := x.bySong[songKey(id.SongID, id.Difficulty)]
	return c, ok
}

// Era classifies c against the snapshot's latest version.
func (x *Index) Era(c model.CatalogChart) model.Era {
	if len(c.Versions) == 0 {
		return model.EraUnknown
	}
	for _, v := range c.Versions {
		if v == x.latest {
			return model.EraCurrent
		}
	}
	return model.EraPrior
}

// Classify fills in DS and era for each result from the index. Results for
// charts the index does not know keep their own DS and are EraUnknown.
func (x *Index) Classify(results []model.ChartResult) []model.ClassifiedResult {
	out := make([]model.ClassifiedResult, 0, len(results))
	for _, r := range results {
		c, ok := x.Lookup(r.Chart)
		if !ok {
			out = append(out, model.ClassifiedResult{Result: r, Era: model.EraUnknown})
			continue
		}
		r.Chart = c.Chart
		if r.DS.IsZero() {
			r.DS = c.DS
		}
		out = append(out, model.ClassifiedResult{Result: r, Era: x.Era(c)})
	}
	return out
}
