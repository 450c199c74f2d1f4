// Package vector turns aggregate grids into polygon features and reads and
// writes them as GeoJSON feature collections.
package vector

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	// ErrMissingProperty is returned when a loaded feature lacks the value property.
	ErrMissingProperty = errors.New("feature has no numeric value property")
	// ErrGeometry is returned for features that are not polygons.
	ErrGeometry = errors.New("feature geometry is not a polygon")
)

// Feature is one grid cell: a rectangle and its scalar value.
type Feature struct {
	Geometry orb.Polygon
	Value    float64
}

// Collection is a set of features sharing one property name and CRS.
type Collection struct {
	Property string
	EPSG     int // 0 if unknown; 4326 after reprojection
	Features []Feature

	// Skipped counts cells that produced no feature because they were
	// already covered or held no data.
	Skipped int
}

// Len returns the number of features.
func (c *Collection) Len() int { return len(c.Features) }

// Values returns the feature values in emission order.
func (c *Collection) Values() []float64 {
	out := make([]float64, len(c.Features))
	for i, f := range c.Features {
		out[i] = f.Value
	}
	return out
}

// Bound returns the bounding box of all features.
func (c *Collection) Bound() orb.Bound {
	if len(c.Features) == 0 {
		return orb.Bound{}
	}
	b := c.Features[0].Geometry.Bound()
	for _, f := range c.Features[1:] {
		b = b.Union(f.Geometry.Bound())
	}
	return b
}

// GeoJSON converts the collection to an orb feature collection. A known
// CRS other than WGS84 is recorded in a top-level "crs" member.
func (c *Collection) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range c.Features {
		gf := geojson.NewFeature(f.Geometry)
		gf.Properties[c.Property] = f.Value
		fc.Append(gf)
	}
	if c.EPSG != 0 && c.EPSG != 4326 {
		fc.ExtraMembers = geojson.Properties{
			"crs": map[string]interface{}{
				"type": "name",
				"properties": map[string]interface{}{
					"name": crsURN(c.EPSG),
				},
			},
		}
	}
	return fc
}

func crsURN(epsg int) string {
	return fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", epsg)
}

// FromGeoJSON reads features carrying the named numeric property.
func FromGeoJSON(fc *geojson.FeatureCollection, property string) (*Collection, error) {
	c := &Collection{Property: property, EPSG: 4326, Features: make([]Feature, 0, len(fc.Features))}
	if epsg, ok := crsFromMembers(fc.ExtraMembers); ok {
		c.EPSG = epsg
	}
	for i, gf := range fc.Features {
		poly, ok := gf.Geometry.(orb.Polygon)
		if !ok {
			return nil, fmt.Errorf("feature %d is %T: %w", i, gf.Geometry, ErrGeometry)
		}
		v, ok := numeric(gf.Properties[property])
		if !ok {
			return nil, fmt.Errorf("feature %d property %q: %w", i, property, ErrMissingProperty)
		}
		c.Features = append(c.Features, Feature{Geometry: poly, Value: v})
	}
	return c, nil
}

func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		// Non-finite values are written as strings by some tools.
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case nil:
		return math.NaN(), false
	}
	return math.NaN(), false
}

func crsFromMembers(m geojson.Properties) (int, bool) {
	crs, ok := m["crs"].(map[string]interface{})
	if !ok {
		return 0, false
	}
	props, ok := crs["properties"].(map[string]interface{})
	if !ok {
		return 0, false
	}
	name, ok := props["name"].(string)
	if !ok {
		return 0, false
	}
	i := strings.LastIndex(name, ":")
	epsg, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, false
	}
	return epsg, true
}
