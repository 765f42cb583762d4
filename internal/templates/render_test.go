package templates

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestRenderJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"t/page.html": {Data: []byte(`{{define "page"}}<script>const tree = {{json .}};</script>{{end}}`)},
	}
	r, err := New(fsys, "t/*.html")
	if err != nil {
		t.Fatal(err)
	}

	out, err := r.Render("page", map[string]any{"key": "marker-0", "lat": 51.5})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `const tree = {"key":"marker-0","lat":51.5};`) {
		t.Fatalf("out=%s", out)
	}
}
