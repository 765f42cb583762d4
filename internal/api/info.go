package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/drawmap/internal/service"
)

type InfoHandler struct {
	dataDir string
	journal bool
	match   service.DeleteMatch
}

func NewInfoHandler(dataDir string, journal bool, match service.DeleteMatch) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, journal: journal, match: match}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name        string   `json:"name" doc:"Service name"`
	Version     string   `json:"version" doc:"Service version"`
	DataDir     string   `json:"data_dir" doc:"Data directory path"`
	Journal     bool     `json:"journal" doc:"Whether the draw journal is available"`
	DeleteMatch string   `json:"delete_match" enum:"legacy,exact" doc:"Predicate used to remove deleted markers"`
	Features    []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"draw", "overlay", "geojson", "sse"}
	if h.journal {
		features = append(features, "duckdb")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:        "drawmap",
		Version:     "0.1.0",
		DataDir:     h.dataDir,
		Journal:     h.journal,
		DeleteMatch: string(h.match),
		Features:    features,
	}}, nil
}
