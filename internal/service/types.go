// Package service contains the view-state store and marker-lifecycle logic for drawmap.
package service

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// LatLng is a geographic position as reported by the draw control's getLatLng().
type LatLng struct {
	Lat float64 `json:"lat" doc:"Latitude" example:"51.505"`
	Lng float64 `json:"lng" doc:"Longitude" example:"-0.09"`
}

// String formats the position the way Leaflet's LatLng.toString does:
// each coordinate rounded to 6 decimals, no exponent.
func (p LatLng) String() string {
	return "LatLng(" + formatNum(p.Lat) + ", " + formatNum(p.Lng) + ")"
}

// formatNum rounds half up like JavaScript's Math.round.
func formatNum(v float64) string {
	r := math.Floor(v*1e6+0.5) / 1e6
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// MarkerPosition is a user-created marker. Equality is coordinate equality.
type MarkerPosition = LatLng

// Layer kinds emitted by the draw control.
const (
	KindMarker       = "marker"
	KindRectangle    = "rectangle"
	KindCircle       = "circle"
	KindCircleMarker = "circlemarker"
	KindPolyline     = "polyline"
	KindPolygon      = "polygon"
)

// CreatedEvent mirrors the draw control's created event: {layerType, layer}.
type CreatedEvent struct {
	LayerType string  `json:"layerType" required:"true" enum:"marker,rectangle,circle,circlemarker,polyline,polygon" doc:"Kind of drawn layer" example:"marker"`
	Layer     *LatLng `json:"layer,omitempty" required:"false" doc:"Position of the drawn layer; required for markers"`
}

// DeletedEvent mirrors the draw control's deleted event: {layers}.
type DeletedEvent struct {
	Layers []LatLng `json:"layers" required:"true" doc:"Positions of the removed layers"`
}

// MapState is a read-only snapshot of one map session.
type MapState struct {
	ID             string           `json:"id" doc:"Session identifier" example:"3f1c2a9e-8d0b-4f6e-9a41-0c2d5e7b8a11"`
	Markers        []MarkerPosition `json:"markers" doc:"User-created markers in insertion order"`
	OverlayVisible bool             `json:"overlayVisible" doc:"Whether the static overlay is shown"`
	MountedAt      time.Time        `json:"mountedAt" doc:"When the session was mounted"`
}

// DeleteMatch selects the predicate used when removing markers.
type DeleteMatch string

const (
	// MatchLegacy keeps a marker only when both coordinates differ from the
	// deleted geometry, so any marker sharing a latitude or a longitude goes too.
	MatchLegacy DeleteMatch = "legacy"
	// MatchExact removes only markers whose coordinates equal the deleted geometry.
	MatchExact DeleteMatch = "exact"
)

// ParseDeleteMatch validates a configured predicate name. Empty means legacy.
func ParseDeleteMatch(s string) (DeleteMatch, error) {
	switch DeleteMatch(s) {
	case "", MatchLegacy:
		return MatchLegacy, nil
	case MatchExact:
		return MatchExact, nil
	}
	return "", fmt.Errorf("unknown delete match %q (want legacy or exact)", s)
}
