// Package editor contains Datastar SSE handlers for the map page.
package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/drawmap/internal/api"
	"github.com/joeblew999/drawmap/internal/config"
	"github.com/joeblew999/drawmap/internal/humastar"
	"github.com/joeblew999/drawmap/internal/service"
	"github.com/joeblew999/drawmap/internal/templates"
	"github.com/joeblew999/drawmap/internal/view"
)

// MapHandler serves the live parts of the map page.
type MapHandler struct {
	humastar.Handler
	sessions *service.SessionService
	cfg      config.MapConfig
}

// NewMapHandler creates a new map editor handler.
func NewMapHandler(sessions *service.SessionService, cfg config.MapConfig, renderer *templates.Renderer) *MapHandler {
	return &MapHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
		cfg:      cfg,
	}
}

func (h *MapHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/editor/maps/{id}/events", h.Events, huma.OperationTags("editor"))
	huma.Get(api, "/api/v1/editor/maps/{id}/markers", h.Markers, huma.OperationTags("editor"))
	huma.Post(api, "/api/v1/editor/maps/{id}/overlay/toggle", h.ToggleOverlay, huma.OperationTags("editor"))
}

// Markers patches the marker list once.
func (h *MapHandler) Markers(ctx context.Context, input *api.MapIDInput) (*huma.StreamResponse, error) {
	state, err := h.sessions.Get(input.ID)
	if err != nil {
		return nil, api.Error(err)
	}
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderMarkerList(state.Markers), "#marker-list")
	}), nil
}

// ToggleOverlay flips overlay visibility and re-syncs the page that clicked.
func (h *MapHandler) ToggleOverlay(ctx context.Context, input *api.MapIDInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		state, err := h.sessions.ToggleOverlay(ctx, input.ID)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		h.sync(sse, state)
	}), nil
}

// sync pushes a full render of state to the page: marker list and overlay
// status fragments, the overlayVisible signal, and the render tree for the
// map script.
func (h *MapHandler) sync(sse humastar.SSE, state service.MapState) {
	sse.Patch(h.renderMarkerList(state.Markers), "#marker-list")
	sse.Patch(h.renderOverlayStatus(state.OverlayVisible), "#overlay-status")
	sse.Signals(map[string]any{"overlayVisible": state.OverlayVisible, "error": ""})
	sse.DispatchCustomEvent("view-changed", view.Render(h.cfg, state))
}

// MarkerItemData holds data for rendering a marker-item template.
type MarkerItemData struct {
	Key       string
	Popup     string
	InOverlay bool
}

func (h *MapHandler) renderMarkerList(markers []service.MarkerPosition) string {
	items := make([]any, len(markers))
	for i, m := range markers {
		items[i] = MarkerItemData{
			Key:       view.MarkerKey(i),
			Popup:     view.MarkerPopup(m),
			InOverlay: service.InOverlay(m),
		}
	}
	return h.RenderList("marker-item", items, "No markers yet", "Use the marker tool to add one.")
}

func (h *MapHandler) renderOverlayStatus(visible bool) string {
	html, err := h.Renderer.Render("overlay-status", visible)
	if err != nil {
		return "<!-- template error: " + err.Error() + " -->"
	}
	return html
}
