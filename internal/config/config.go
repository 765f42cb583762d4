// Package config handles loading the map view configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/drawmap/internal/service"
)

// MapConfig describes everything the map page renders besides session state.
type MapConfig struct {
	Center       [2]float64           `yaml:"center" json:"center" doc:"Initial map center [lat, lng]"`
	Zoom         int                  `yaml:"zoom" json:"zoom" minimum:"0" maximum:"22" doc:"Initial zoom level"`
	Height       string               `yaml:"height" json:"height" doc:"CSS height of the map surface"`
	Tiles        TileSource           `yaml:"tiles" json:"tiles" doc:"Base tile layer"`
	StaticMarker StaticMarker         `yaml:"static_marker" json:"staticMarker" doc:"Fixed marker shown on every map"`
	Overlay      service.OverlayStyle `yaml:"overlay" json:"overlay" doc:"Overlay style"`
	Draw         DrawControl          `yaml:"draw" json:"draw" doc:"Draw toolbar configuration"`
	Icons        MarkerIcons          `yaml:"icons" json:"icons" doc:"Default marker icon URLs"`
}

// TileSource is a raster tile URL template and its attribution.
type TileSource struct {
	URL         string `yaml:"url" json:"url" doc:"Tile URL template" example:"https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"`
	Attribution string `yaml:"attribution" json:"attribution" doc:"Attribution HTML"`
}

// StaticMarker is the fixed marker with a popup.
type StaticMarker struct {
	Position [2]float64 `yaml:"position" json:"position" doc:"Marker position [lat, lng]"`
	Popup    string     `yaml:"popup" json:"popup" doc:"Popup text"`
}

// DrawControl configures the draw toolbar: its corner and enabled shape kinds.
type DrawControl struct {
	Position     string `yaml:"position" json:"position" enum:"topleft,topright,bottomleft,bottomright" doc:"Toolbar corner"`
	Rectangle    bool   `yaml:"rectangle" json:"rectangle"`
	Circle       bool   `yaml:"circle" json:"circle"`
	CircleMarker bool   `yaml:"circlemarker" json:"circlemarker"`
	Polyline     bool   `yaml:"polyline" json:"polyline"`
	Polygon      bool   `yaml:"polygon" json:"polygon"`
}

// MarkerIcons overrides Leaflet's default marker images.
type MarkerIcons struct {
	IconRetinaURL string `yaml:"icon_retina_url" json:"iconRetinaUrl"`
	IconURL       string `yaml:"icon_url" json:"iconUrl"`
	ShadowURL     string `yaml:"shadow_url" json:"shadowUrl"`
}

// Default returns the stock London map view.
func Default() MapConfig {
	return MapConfig{
		Center: [2]float64{51.505, -0.09},
		Zoom:   13,
		Height: "80vh",
		Tiles: TileSource{
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		},
		StaticMarker: StaticMarker{
			Position: [2]float64{51.505, -0.09},
			Popup:    "You clicked the marker!",
		},
		Overlay: service.DefaultOverlayStyle,
		Draw: DrawControl{
			Position:     "topright",
			Rectangle:    true,
			Circle:       true,
			CircleMarker: true,
			Polyline:     true,
			Polygon:      true,
		},
		Icons: MarkerIcons{
			IconRetinaURL: "https://cdnjs.cloudflare.com/ajax/libs/leaflet/1.3.1/images/marker-icon.png",
			IconURL:       "https://cdnjs.cloudflare.com/ajax/libs/leaflet/1.3.1/images/marker-icon.png",
			ShadowURL:     "https://cdnjs.cloudflare.com/ajax/libs/leaflet/1.3.1/images/marker-shadow.png",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (MapConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return MapConfig{}, fmt.Errorf("reading map config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return MapConfig{}, fmt.Errorf("parsing map config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return MapConfig{}, fmt.Errorf("map config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges the page cannot render around.
func (c MapConfig) Validate() error {
	if c.Zoom < 0 || c.Zoom > 22 {
		return fmt.Errorf("zoom %d out of range 0-22", c.Zoom)
	}
	if c.Tiles.URL == "" {
		return fmt.Errorf("tiles.url is required")
	}
	if c.Overlay.Opacity < 0 || c.Overlay.Opacity > 1 {
		return fmt.Errorf("overlay.opacity %g out of range 0-1", c.Overlay.Opacity)
	}
	switch c.Draw.Position {
	case "topleft", "topright", "bottomleft", "bottomright":
	default:
		return fmt.Errorf("draw.position %q is not a map corner", c.Draw.Position)
	}
	return nil
}
