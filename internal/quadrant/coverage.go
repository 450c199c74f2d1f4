package quadrant

// halfPlane tests a point against one earlier quadrant's extent.
type halfPlane func(e Extent, lon, lat float64) bool

// westOfMaxLon holds for points left of the extent's east edge.
func westOfMaxLon(e Extent, lon, _ float64) bool { return lon < e.LonMax }

// northOfMinLat holds for points above the extent's south edge.
func northOfMinLat(e Extent, _, lat float64) bool { return lat > e.LatMin }

// northWestOfCorner holds for points west of the east edge and north of
// the south edge at the same time.
func northWestOfCorner(e Extent, lon, lat float64) bool {
	return lon < e.LonMax && lat > e.LatMin
}

type priorCheck struct {
	prior Quadrant
	test  halfPlane
}

// priorChecks lists, per quadrant, which earlier quadrants can already
// cover a point and how. The tests are half-planes rather than boxes: they
// only hold for four tiles arranged 2x2, axis-aligned, processed in Order.
var priorChecks = map[Quadrant][]priorCheck{
	UpperLeft:  nil,
	UpperRight: {{UpperLeft, westOfMaxLon}},
	LowerLeft:  {{UpperLeft, northOfMinLat}},
	LowerRight: {
		{UpperLeft, northWestOfCorner},
		{UpperRight, northWestOfCorner},
		{LowerLeft, northWestOfCorner},
	},
}

// Coverage records the extent emitted for each quadrant during one run.
// It is not safe for concurrent use; runs are sequential.
type Coverage struct {
	extents [len(Order)]Extent
	set     [len(Order)]bool
}

// NewCoverage returns a tracker with no registered extents.
func NewCoverage() *Coverage {
	return &Coverage{}
}

// Register stores the extent emitted for q, replacing any earlier one.
func (c *Coverage) Register(q Quadrant, lonMin, lonMax, latMin, latMax float64) {
	c.extents[q] = Extent{LonMin: lonMin, LonMax: lonMax, LatMin: latMin, LatMax: latMax}
	c.set[q] = true
}

// Extent returns the extent registered for q.
func (c *Coverage) Extent(q Quadrant) (Extent, bool) {
	return c.extents[q], c.set[q]
}

// IsCovered reports whether (lon, lat) falls in an area an earlier quadrant
// already emitted. Unregistered quadrants never cover anything.
func (c *Coverage) IsCovered(q Quadrant, lon, lat float64) bool {
	for _, pc := range priorChecks[q] {
		if !c.set[pc.prior] {
			continue
		}
		if pc.test(c.extents[pc.prior], lon, lat) {
			return true
		}
	}
	return false
}
