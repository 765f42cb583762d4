package view

import (
	"reflect"
	"testing"

	"github.com/joeblew999/drawmap/internal/config"
	"github.com/joeblew999/drawmap/internal/service"
)

func state(visible bool, markers ...service.MarkerPosition) service.MapState {
	if markers == nil {
		markers = []service.MarkerPosition{}
	}
	return service.MapState{ID: "s1", Markers: markers, OverlayVisible: visible}
}

func TestRenderInitialState(t *testing.T) {
	tree := Render(config.Default(), state(true))

	if len(tree.Root) != 2 || tree.Root[0].Kind != KindMap || tree.Root[1].Kind != KindButton {
		t.Fatalf("root=%+v", tree.Root)
	}
	if tree.Root[1].Text != ToggleLabel {
		t.Fatalf("button label=%q", tree.Root[1].Text)
	}

	m := tree.Root[0]
	if m.Center == nil || *m.Center != (service.LatLng{Lat: 51.505, Lng: -0.09}) || m.Zoom != 13 {
		t.Fatalf("map center=%v zoom=%d", m.Center, m.Zoom)
	}

	static, ok := tree.Find(KeyStaticMarker)
	if !ok || static.Popup != "You clicked the marker!" {
		t.Fatalf("static marker=%+v found=%v", static, ok)
	}

	overlay, ok := tree.Find(KeyOverlay)
	if !ok {
		t.Fatal("overlay missing while visible")
	}
	if overlay.Style == nil || overlay.Style.Color != "red" || overlay.Style.Opacity != 0.5 {
		t.Fatalf("overlay style=%+v", overlay.Style)
	}
	if overlay.Data == nil || len(overlay.Data.Features) != 1 {
		t.Fatal("overlay data missing")
	}

	group, ok := tree.Find(KeyFeatureGroup)
	if !ok || len(group.Children) != 1 || group.Children[0].Kind != KindDrawControl {
		t.Fatalf("feature group=%+v", group)
	}
	draw := group.Children[0].Draw
	if draw.Position != "topright" || !draw.Rectangle || !draw.Circle || !draw.CircleMarker || !draw.Polyline || !draw.Polygon {
		t.Fatalf("draw=%+v", draw)
	}
}

func TestRenderHiddenOverlay(t *testing.T) {
	tree := Render(config.Default(), state(false))
	if _, ok := tree.Find(KeyOverlay); ok {
		t.Fatal("overlay rendered while hidden")
	}
}

func TestRenderToggleTwiceRestoresTree(t *testing.T) {
	cfg := config.Default()
	markers := []service.MarkerPosition{{Lat: 1, Lng: 2}}
	before := Render(cfg, state(true, markers...))
	hidden := Render(cfg, state(false, markers...))
	after := Render(cfg, state(true, markers...))

	if reflect.DeepEqual(before, hidden) {
		t.Fatal("hiding the overlay did not change the tree")
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatal("tree differs after toggling twice")
	}
}

func TestRenderUserMarkers(t *testing.T) {
	tree := Render(config.Default(), state(true,
		service.MarkerPosition{Lat: 51.5, Lng: -0.09},
		service.MarkerPosition{Lat: 51.5, Lng: -0.09},
	))

	group, _ := tree.Find(KeyFeatureGroup)
	if len(group.Children) != 3 {
		t.Fatalf("children=%d, want draw control + 2 markers", len(group.Children))
	}
	second := group.Children[2]
	if second.Key != "marker-1" {
		t.Fatalf("key=%q, want marker-1", second.Key)
	}
	if second.Popup != "Marker at LatLng(51.5, -0.09)" {
		t.Fatalf("popup=%q", second.Popup)
	}
}
