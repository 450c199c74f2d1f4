package coord

import "math"

// lv95Term is one monomial c·u^i·v^j of swisstopo's approximate
// LV95/WGS84 conversion polynomials.
type lv95Term struct {
	c    float64
	i, j int
}

func evalPoly(terms []lv95Term, u, v float64) float64 {
	var sum float64
	for _, t := range terms {
		sum += t.c * math.Pow(u, float64(t.i)) * math.Pow(v, float64(t.j))
	}
	return sum
}

// Coefficients in 10000" units (to WGS84) and metres (from WGS84). u is the
// east-west auxiliary value, v the north-south one.
var (
	lv95Lon = []lv95Term{{2.6779094, 0, 0}, {4.728982, 1, 0}, {0.791484, 1, 1}, {0.1306, 1, 2}, {-0.0436, 3, 0}}
	lv95Lat = []lv95Term{
		{16.9023892, 0, 0}, {3.238272, 0, 1}, {-0.270978, 2, 0},
		{-0.002528, 0, 2}, {-0.0447, 2, 1}, {-0.0140, 0, 3},
	}
	lv95East  = []lv95Term{{2_600_072.37, 0, 0}, {211_455.93, 1, 0}, {-10_938.51, 1, 1}, {-0.36, 1, 2}, {-44.54, 3, 0}}
	lv95North = []lv95Term{
		{1_200_147.07, 0, 0}, {308_807.95, 0, 1}, {3_745.25, 2, 0},
		{76.63, 0, 2}, {-194.56, 2, 1}, {119.79, 0, 3},
	}
)

// LV95 extent with a margin; the polynomials degrade quickly outside it.
const (
	lv95MinEast, lv95MaxEast   = 2_400_000, 2_900_000
	lv95MinNorth, lv95MaxNorth = 1_000_000, 1_350_000
)

// SwissLV95 converts EPSG:2056 (CH1903+ / LV95) with swisstopo's polynomial
// approximation, accurate to about 1 m. Coordinates outside the Swiss
// extent map to NaN so that Reproject rejects them.
type SwissLV95 struct{}

func (s *SwissLV95) EPSG() int { return 2056 }

// ToWGS84 converts easting/northing to longitude/latitude in degrees.
func (s *SwissLV95) ToWGS84(easting, northing float64) (lon, lat float64) {
	if easting < lv95MinEast || easting > lv95MaxEast || northing < lv95MinNorth || northing > lv95MaxNorth {
		return math.NaN(), math.NaN()
	}
	u := (easting - 2_600_000) / 1_000_000
	v := (northing - 1_200_000) / 1_000_000
	return evalPoly(lv95Lon, u, v) * 100 / 36, evalPoly(lv95Lat, u, v) * 100 / 36
}

// FromWGS84 converts longitude/latitude in degrees to easting/northing.
func (s *SwissLV95) FromWGS84(lon, lat float64) (easting, northing float64) {
	u := (lon*3600 - 26_782.5) / 10_000
	v := (lat*3600 - 169_028.66) / 10_000
	return evalPoly(lv95East, u, v), evalPoly(lv95North, u, v)
}
