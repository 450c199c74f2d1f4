package hexbin

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SampleSizeProperty holds the number of points aggregated into a bin.
const SampleSizeProperty = "sample_size"

type bin struct {
	sum float64
	n   int
}

// Accumulator sums values per cell.
type Accumulator struct {
	binner Binner
	bins   map[string]*bin
}

// NewAccumulator returns an empty accumulator over binner's cells.
func NewAccumulator(binner Binner) *Accumulator {
	return &Accumulator{binner: binner, bins: make(map[string]*bin)}
}

// Add records value at (lon, lat).
func (a *Accumulator) Add(lon, lat, value float64) {
	id := a.binner.Cell(lon, lat)
	b, ok := a.bins[id]
	if !ok {
		b = &bin{}
		a.bins[id] = b
	}
	b.sum += value
	b.n++
}

// Len returns the number of non-empty bins.
func (a *Accumulator) Len() int { return len(a.bins) }

// Mean returns the mean value and sample count of a cell.
func (a *Accumulator) Mean(cell string) (float64, int) {
	b, ok := a.bins[cell]
	if !ok {
		return 0, 0
	}
	return b.sum / float64(b.n), b.n
}

// Features emits one polygon per bin, sorted by cell id, with the mean
// value as "avg_<property>" and the count as "sample_size".
func (a *Accumulator) Features(property string) *geojson.FeatureCollection {
	ids := make([]string, 0, len(a.bins))
	for id := range a.bins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fc := geojson.NewFeatureCollection()
	for _, id := range ids {
		mean, n := a.Mean(id)
		f := geojson.NewFeature(orb.Polygon{a.binner.Boundary(id)})
		f.ID = id
		f.Properties["cell"] = id
		f.Properties["avg_"+property] = mean
		f.Properties[SampleSizeProperty] = n
		fc.Append(f)
	}
	return fc
}
