package service

// AppendMarker returns a new list with p added at the end. list is not modified.
func AppendMarker(list []MarkerPosition, p MarkerPosition) []MarkerPosition {
	out := make([]MarkerPosition, len(list), len(list)+1)
	copy(out, list)
	return append(out, p)
}

// RemoveMarkers returns a new list without the entries matched by removed,
// applying one removal per deleted geometry in order. list is not modified.
func RemoveMarkers(list []MarkerPosition, removed []LatLng, match DeleteMatch) []MarkerPosition {
	keep := keepLegacy
	if match == MatchExact {
		keep = keepExact
	}

	out := list
	for _, d := range removed {
		next := make([]MarkerPosition, 0, len(out))
		for _, m := range out {
			if keep(m, d) {
				next = append(next, m)
			}
		}
		out = next
	}
	if out == nil {
		out = []MarkerPosition{}
	}
	return out
}

// keepLegacy is the draw widget's historical filter. It retains m only when
// neither coordinate equals the deleted one.
func keepLegacy(m, d LatLng) bool {
	return m.Lat != d.Lat && m.Lng != d.Lng
}

func keepExact(m, d LatLng) bool {
	return !(m.Lat == d.Lat && m.Lng == d.Lng)
}
