package heatmap

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/paulmach/orb/geojson"

	"github.com/pspoerri/geotiff2geojson/internal/coord"
	"github.com/pspoerri/geotiff2geojson/internal/vector"
)

// FillOpacity of rendered cells.
const FillOpacity = 0.7

// Options configure both renderers.
type Options struct {
	Title    string
	Property string
	Scale    Scale
	// Zoom is the initial web map zoom; 0 estimates it from the data bounds.
	Zoom int
	// Width and Height of the preview image and of the viewport assumed by
	// the zoom estimate.
	Width, Height int
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Shade heatmap"
	}
	if len(o.Scale.Stops) == 0 {
		o.Scale = ShadeScale
	}
	if o.Width <= 0 {
		o.Width = 1024
	}
	if o.Height <= 0 {
		o.Height = 768
	}
	return o
}

type page struct {
	Title       string
	Property    string
	Lat, Lon    float64
	Zoom        int
	Min, Max    float64
	Stops       []string
	FillOpacity float64
	Data        template.JS
}

var pageTemplate = template.Must(template.New("heatmap").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%; margin: 0; }
.legend { background: white; padding: 6px 8px; font: 12px sans-serif; }
.legend .bar { width: 200px; height: 12px; }
.legend .ticks { display: flex; justify-content: space-between; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var property = {{.Property}};
var stops = {{.Stops}};
var vmin = {{.Min}}, vmax = {{.Max}};

function hexToRGB(h) {
  return [parseInt(h.substr(1, 2), 16), parseInt(h.substr(3, 2), 16), parseInt(h.substr(5, 2), 16)];
}

function colorFor(v) {
  var t = (v - vmin) / (vmax - vmin);
  if (!(t > 0)) t = 0;
  if (t > 1) t = 1;
  var pos = t * (stops.length - 1);
  var i = Math.floor(pos);
  if (i >= stops.length - 1) return stops[stops.length - 1];
  var f = pos - i, a = hexToRGB(stops[i]), b = hexToRGB(stops[i + 1]);
  var c = a.map(function (x, k) { return Math.round(x + (b[k] - x) * f); });
  return "rgb(" + c.join(",") + ")";
}

var map = L.map("map").setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
  maxZoom: 19,
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);

L.geoJSON({{.Data}}, {
  style: function (feature) {
    return {
      fillColor: colorFor(feature.properties[property]),
      color: "black",
      weight: 1,
      fillOpacity: {{.FillOpacity}}
    };
  },
  onEachFeature: function (feature, layer) {
    layer.bindTooltip(property + ": " + Number(feature.properties[property]).toFixed(3));
  }
}).addTo(map);

var legend = L.control({position: "topright"});
legend.onAdd = function () {
  var div = L.DomUtil.create("div", "legend");
  div.innerHTML = "<div>" + property + "</div>" +
    "<div class=\"bar\" style=\"background: linear-gradient(to right, " + stops.join(", ") + ")\"></div>" +
    "<div class=\"ticks\"><span>" + vmin + "</span><span>" + vmax + "</span></div>";
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`))

// WriteHTML writes a Leaflet page showing every feature of collections,
// which must be in WGS84, colored by opts.Property.
func WriteHTML(w io.Writer, collections []*vector.Collection, opts Options) error {
	opts = opts.withDefaults()
	center, err := Center(collections)
	if err != nil {
		return err
	}

	zoom := opts.Zoom
	if zoom <= 0 {
		zoom = coord.DefaultZoom
		if b, ok := Bound(collections); ok {
			zoom = coord.ZoomForBounds(b.Min[0], b.Min[1], b.Max[0], b.Max[1], opts.Width)
		}
	}

	merged := geojson.NewFeatureCollection()
	for _, c := range collections {
		prop := c.Property
		if opts.Property != "" {
			prop = opts.Property
		}
		for _, f := range c.Features {
			gf := geojson.NewFeature(f.Geometry)
			gf.Properties[prop] = f.Value
			merged.Append(gf)
		}
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding features: %w", err)
	}

	property := opts.Property
	if property == "" && len(collections) > 0 {
		property = collections[0].Property
	}
	return pageTemplate.Execute(w, page{
		Title:       opts.Title,
		Property:    property,
		Lat:         center[1],
		Lon:         center[0],
		Zoom:        zoom,
		Min:         opts.Scale.Min,
		Max:         opts.Scale.Max,
		Stops:       opts.Scale.hexStops(),
		FillOpacity: FillOpacity,
		Data:        template.JS(data),
	})
}
