package service

import (
	"reflect"
	"testing"
)

func TestAppendMarkerCopiesList(t *testing.T) {
	orig := []MarkerPosition{{Lat: 1, Lng: 1}}
	got := AppendMarker(orig, MarkerPosition{Lat: 2, Lng: 2})

	if len(orig) != 1 {
		t.Fatalf("original len=%d, want 1", len(orig))
	}
	want := []MarkerPosition{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got[0] = MarkerPosition{Lat: 9, Lng: 9}
	if orig[0].Lat != 1 {
		t.Fatal("AppendMarker shares backing array with its input")
	}
}

func TestAppendMarkerKeepsDuplicates(t *testing.T) {
	var list []MarkerPosition
	p := MarkerPosition{Lat: 51.5, Lng: -0.09}
	for i := 0; i < 3; i++ {
		list = AppendMarker(list, p)
	}
	if len(list) != 3 {
		t.Fatalf("len=%d, want 3", len(list))
	}
}

func TestRemoveMarkers(t *testing.T) {
	tests := []struct {
		name    string
		list    []MarkerPosition
		removed []LatLng
		match   DeleteMatch
		want    []MarkerPosition
	}{
		{
			name:    "legacy distinct coordinates",
			list:    []MarkerPosition{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}},
			removed: []LatLng{{Lat: 1, Lng: 1}},
			match:   MatchLegacy,
			want:    []MarkerPosition{{Lat: 2, Lng: 2}},
		},
		{
			name:    "legacy drops shared latitude",
			list:    []MarkerPosition{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 2}, {Lat: 3, Lng: 3}},
			removed: []LatLng{{Lat: 1, Lng: 1}},
			match:   MatchLegacy,
			want:    []MarkerPosition{{Lat: 3, Lng: 3}},
		},
		{
			name:    "legacy drops shared longitude",
			list:    []MarkerPosition{{Lat: 5, Lng: 1}, {Lat: 3, Lng: 3}},
			removed: []LatLng{{Lat: 1, Lng: 1}},
			match:   MatchLegacy,
			want:    []MarkerPosition{{Lat: 3, Lng: 3}},
		},
		{
			name:    "exact keeps shared latitude",
			list:    []MarkerPosition{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 2}, {Lat: 3, Lng: 3}},
			removed: []LatLng{{Lat: 1, Lng: 1}},
			match:   MatchExact,
			want:    []MarkerPosition{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 3}},
		},
		{
			name:    "exact removes all duplicates",
			list:    []MarkerPosition{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}},
			removed: []LatLng{{Lat: 1, Lng: 1}},
			match:   MatchExact,
			want:    []MarkerPosition{{Lat: 2, Lng: 2}},
		},
		{
			name:    "sequential removals",
			list:    []MarkerPosition{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}},
			removed: []LatLng{{Lat: 1, Lng: 1}, {Lat: 3, Lng: 3}},
			match:   MatchExact,
			want:    []MarkerPosition{{Lat: 2, Lng: 2}},
		},
		{
			name:    "no match leaves list",
			list:    []MarkerPosition{{Lat: 2, Lng: 2}},
			removed: []LatLng{{Lat: 7, Lng: 8}},
			match:   MatchLegacy,
			want:    []MarkerPosition{{Lat: 2, Lng: 2}},
		},
		{
			name:    "empty list",
			list:    nil,
			removed: []LatLng{{Lat: 1, Lng: 1}},
			match:   MatchLegacy,
			want:    []MarkerPosition{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append([]MarkerPosition(nil), tt.list...)
			got := RemoveMarkers(tt.list, tt.removed, tt.match)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(append([]MarkerPosition(nil), tt.list...), before) {
				t.Fatalf("input list modified: %v", tt.list)
			}
		})
	}
}

func TestParseDeleteMatch(t *testing.T) {
	for in, want := range map[string]DeleteMatch{"": MatchLegacy, "legacy": MatchLegacy, "exact": MatchExact} {
		got, err := ParseDeleteMatch(in)
		if err != nil {
			t.Fatalf("ParseDeleteMatch(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDeleteMatch(%q)=%q, want %q", in, got, want)
		}
	}
	if _, err := ParseDeleteMatch("fuzzy"); err == nil {
		t.Fatal("expected error for unknown predicate")
	}
}

func TestLatLngString(t *testing.T) {
	tests := []struct {
		p    LatLng
		want string
	}{
		{LatLng{Lat: 51.5, Lng: -0.09}, "LatLng(51.5, -0.09)"},
		{LatLng{Lat: 51.50812345678, Lng: -0.0912345678}, "LatLng(51.508123, -0.091235)"},
		{LatLng{Lat: 1e-7, Lng: -1e-7}, "LatLng(0, 0)"},
		{LatLng{Lat: 0.0000025, Lng: 180}, "LatLng(0.000003, 180)"},
		{LatLng{Lat: -33.8688197, Lng: 151.2092955}, "LatLng(-33.86882, 151.209296)"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String(%v, %v)=%q, want %q", tt.p.Lat, tt.p.Lng, got, tt.want)
		}
	}
}
