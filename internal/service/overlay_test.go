package service

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
)

func TestOverlayFeatureCollection(t *testing.T) {
	fc := OverlayFeatureCollection()
	if len(fc.Features) != 1 {
		t.Fatalf("features=%d, want 1", len(fc.Features))
	}

	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("geometry=%T, want orb.Polygon", fc.Features[0].Geometry)
	}
	ring := poly[0]
	if len(ring) != 5 || !ring.Closed() {
		t.Fatalf("ring=%v, want closed five-point ring", ring)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string         `json:"type"`
			Props    map[string]any `json:"properties"`
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Type != "FeatureCollection" || doc.Features[0].Geometry.Type != "Polygon" {
		t.Fatalf("unexpected GeoJSON: %s", data)
	}
}

func TestOverlayPolygonIsACopy(t *testing.T) {
	p := OverlayPolygon()
	p[0][0] = orb.Point{0, 0}
	if OverlayPolygon()[0][0] == (orb.Point{0, 0}) {
		t.Fatal("overlay geometry was mutated through a returned copy")
	}
}

func TestInOverlay(t *testing.T) {
	if !InOverlay(LatLng{Lat: 51.507, Lng: -0.08}) {
		t.Fatal("point inside region reported outside")
	}
	if InOverlay(LatLng{Lat: 51.5, Lng: -0.09}) {
		t.Fatal("point south of region reported inside")
	}
}

func TestMarkersFeatureCollection(t *testing.T) {
	fc := MarkersFeatureCollection([]MarkerPosition{{Lat: 51.507, Lng: -0.08}, {Lat: 1, Lng: 2}})
	if len(fc.Features) != 2 {
		t.Fatalf("features=%d, want 2", len(fc.Features))
	}
	pt := fc.Features[1].Geometry.(orb.Point)
	if pt.Lon() != 2 || pt.Lat() != 1 {
		t.Fatalf("point=%v, want [2 1]", pt)
	}
	if fc.Features[0].Properties["inOverlay"] != true || fc.Features[1].Properties["inOverlay"] != false {
		t.Fatalf("inOverlay props wrong: %v / %v", fc.Features[0].Properties, fc.Features[1].Properties)
	}
}
