package service

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// overlayRing is the static region of interest, closed, in [lng, lat] order.
var overlayRing = orb.Ring{
	{-0.1, 51.505},
	{-0.1, 51.51},
	{-0.06, 51.51},
	{-0.06, 51.505},
	{-0.1, 51.505},
}

// OverlayStyle is the path style applied to the overlay.
type OverlayStyle struct {
	Color   string  `json:"color" yaml:"color" doc:"Stroke color (CSS)" example:"red"`
	Opacity float64 `json:"opacity" yaml:"opacity" minimum:"0" maximum:"1" doc:"Stroke opacity (0-1)" example:"0.5"`
}

// DefaultOverlayStyle matches the widget's red, half-opaque outline.
var DefaultOverlayStyle = OverlayStyle{Color: "red", Opacity: 0.5}

// OverlayPolygon returns a copy of the static overlay polygon.
func OverlayPolygon() orb.Polygon {
	return orb.Polygon{overlayRing.Clone()}
}

// OverlayFeatureCollection returns the overlay as a GeoJSON FeatureCollection
// holding one Feature with empty properties.
func OverlayFeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(OverlayPolygon())
	f.Properties = geojson.Properties{}
	fc.Append(f)
	return fc
}

// InOverlay reports whether p lies inside the static overlay.
func InOverlay(p LatLng) bool {
	return planar.PolygonContains(OverlayPolygon(), orb.Point{p.Lng, p.Lat})
}

// MarkersFeatureCollection exports markers as GeoJSON points, each tagged with
// its list index and whether it falls inside the overlay.
func MarkersFeatureCollection(markers []MarkerPosition) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Lng, m.Lat})
		f.Properties = geojson.Properties{
			"index":     i,
			"inOverlay": InOverlay(m),
		}
		fc.Append(f)
	}
	return fc
}
