// Package view builds the declarative element tree for a map session.
//
// The tree names the Leaflet primitives the page composes (map, tile layer,
// markers, GeoJSON overlay, feature group, draw control) and is derived from
// the map config and a session snapshot only. The page script and the JSON
// API both consume it; neither holds state of its own.
package view

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/drawmap/internal/config"
	"github.com/joeblew999/drawmap/internal/service"
)

// Element kinds.
const (
	KindMap          = "map"
	KindTileLayer    = "tile-layer"
	KindMarker       = "marker"
	KindGeoJSON      = "geojson"
	KindFeatureGroup = "feature-group"
	KindDrawControl  = "draw-control"
	KindButton       = "button"
)

// Stable keys for the fixed elements.
const (
	KeyMap          = "map"
	KeyTiles        = "tiles"
	KeyStaticMarker = "static-marker"
	KeyOverlay      = "overlay"
	KeyFeatureGroup = "drawn"
	KeyDrawControl  = "draw"
	KeyToggle       = "toggle-overlay"
)

// ToggleLabel is the overlay button text.
const ToggleLabel = "Toggle GeoJSON Layer"

// Element is one node of the render tree.
type Element struct {
	Kind     string                     `json:"kind" doc:"Primitive kind"`
	Key      string                     `json:"key" doc:"Stable key within the parent"`
	Position *service.LatLng            `json:"position,omitempty" doc:"Marker position"`
	Popup    string                     `json:"popup,omitempty" doc:"Marker popup text"`
	Center   *service.LatLng            `json:"center,omitempty" doc:"Map center"`
	Zoom     int                        `json:"zoom,omitempty" doc:"Map zoom"`
	URL      string                     `json:"url,omitempty" doc:"Tile URL template"`
	Text     string                     `json:"text,omitempty" doc:"Tile attribution or button label"`
	Data     *geojson.FeatureCollection `json:"data,omitempty" doc:"GeoJSON overlay data"`
	Style    *service.OverlayStyle      `json:"style,omitempty" doc:"Overlay style"`
	Draw     *config.DrawControl        `json:"draw,omitempty" doc:"Draw control options"`
	Children []Element                  `json:"children,omitempty" doc:"Nested elements"`
}

// Tree is the full render output: the map surface followed by the toggle button.
type Tree struct {
	Session string    `json:"session" doc:"Session the tree was rendered for"`
	Root    []Element `json:"root" doc:"Top-level elements"`
}

// Render composes the element tree for a session snapshot.
func Render(cfg config.MapConfig, state service.MapState) Tree {
	center := latLng(cfg.Center)
	staticPos := latLng(cfg.StaticMarker.Position)

	children := []Element{
		{Kind: KindTileLayer, Key: KeyTiles, URL: cfg.Tiles.URL, Text: cfg.Tiles.Attribution},
		{Kind: KindMarker, Key: KeyStaticMarker, Position: &staticPos, Popup: cfg.StaticMarker.Popup},
	}
	if state.OverlayVisible {
		style := cfg.Overlay
		children = append(children, Element{
			Kind:  KindGeoJSON,
			Key:   KeyOverlay,
			Data:  service.OverlayFeatureCollection(),
			Style: &style,
		})
	}

	draw := cfg.Draw
	group := Element{
		Kind:     KindFeatureGroup,
		Key:      KeyFeatureGroup,
		Children: []Element{{Kind: KindDrawControl, Key: KeyDrawControl, Draw: &draw}},
	}
	group.Children = append(group.Children, MarkerElements(state.Markers)...)
	children = append(children, group)

	return Tree{
		Session: state.ID,
		Root: []Element{
			{Kind: KindMap, Key: KeyMap, Center: &center, Zoom: cfg.Zoom, Children: children},
			{Kind: KindButton, Key: KeyToggle, Text: ToggleLabel},
		},
	}
}

// MarkerElements renders user markers keyed by list index.
func MarkerElements(markers []service.MarkerPosition) []Element {
	out := make([]Element, len(markers))
	for i, m := range markers {
		pos := m
		out[i] = Element{
			Kind:     KindMarker,
			Key:      MarkerKey(i),
			Position: &pos,
			Popup:    MarkerPopup(m),
		}
	}
	return out
}

// MarkerKey is the render key of the i-th user marker.
func MarkerKey(i int) string {
	return fmt.Sprintf("marker-%d", i)
}

// MarkerPopup is the popup text of a user marker.
func MarkerPopup(m service.MarkerPosition) string {
	return "Marker at " + m.String()
}

// Find returns the first element with the given key, searching depth first.
func (t Tree) Find(key string) (Element, bool) {
	return find(t.Root, key)
}

func find(elems []Element, key string) (Element, bool) {
	for _, e := range elems {
		if e.Key == key {
			return e, true
		}
		if found, ok := find(e.Children, key); ok {
			return found, true
		}
	}
	return Element{}, false
}

func latLng(p [2]float64) service.LatLng {
	return service.LatLng{Lat: p[0], Lng: p[1]}
}
