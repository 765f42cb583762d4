// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/drawmap/internal/config"
	"github.com/joeblew999/drawmap/internal/humastar"
	"github.com/joeblew999/drawmap/internal/service"
	"github.com/joeblew999/drawmap/internal/view"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Sessions *service.SessionService
	Map      config.MapConfig
}

// Types

type MapIDInput struct {
	ID string `path:"id" doc:"Map session ID"`
}

// MapBody is a session snapshot with its state-dependent actions.
type MapBody struct {
	service.MapState
}

var mapActions = []humastar.ActionDef{
	{Rel: "created", Pattern: "/api/v1/maps/%s/created", Method: http.MethodPost, Title: "Report a drawn layer"},
	{Rel: "deleted", Pattern: "/api/v1/maps/%s/deleted", Method: http.MethodPost, Title: "Report deleted layers"},
	{Rel: "view", Pattern: "/api/v1/maps/%s/view", Method: http.MethodGet, Title: "Render tree"},
	{Rel: "unmount", Pattern: "/api/v1/maps/%s", Method: http.MethodDelete, Title: "Discard session"},
}

// Actions implements humastar.Actor.
func (b MapBody) Actions() []humastar.Action {
	actions := humastar.ActionsFor(b.ID, mapActions)
	title := "Show overlay"
	if b.OverlayVisible {
		title = "Hide overlay"
	}
	actions = append(actions, humastar.Action{
		Rel:    "toggle-overlay",
		Href:   fmt.Sprintf("/api/v1/maps/%s/overlay/toggle", b.ID),
		Method: http.MethodPost,
		Title:  title,
	})
	if len(b.Markers) > 0 {
		actions = append(actions, humastar.Action{
			Rel:    "export",
			Href:   fmt.Sprintf("/api/v1/maps/%s/markers.geojson", b.ID),
			Method: http.MethodGet,
			Title:  "Export markers as GeoJSON",
		})
	}
	return actions
}

type MapOutput struct {
	Body MapBody
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type MarkersInput struct {
	MapIDInput
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Index of the first marker"`
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Page size"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every APIHandler route group.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterMaps registers map session lifecycle and draw event routes.
func (h *APIHandler) RegisterMaps(api huma.API) {
	huma.Get(api, "/api/v1/maps", h.ListMaps, huma.OperationTags("maps"))
	huma.Post(api, "/api/v1/maps", h.MountMap, huma.OperationTags("maps"), status(http.StatusCreated))
	huma.Get(api, "/api/v1/maps/{id}", h.GetMap, huma.OperationTags("maps"))
	huma.Delete(api, "/api/v1/maps/{id}", h.UnmountMap, huma.OperationTags("maps"), status(http.StatusNoContent))
	huma.Post(api, "/api/v1/maps/{id}/unmount", h.UnmountMap, huma.OperationTags("maps"), status(http.StatusNoContent))
	huma.Post(api, "/api/v1/maps/{id}/created", h.Created, huma.OperationTags("maps"))
	huma.Post(api, "/api/v1/maps/{id}/deleted", h.Deleted, huma.OperationTags("maps"))
	huma.Post(api, "/api/v1/maps/{id}/overlay/toggle", h.ToggleOverlay, huma.OperationTags("maps"))
	huma.Get(api, "/api/v1/maps/{id}/view", h.GetView, huma.OperationTags("maps"))
	huma.Get(api, "/api/v1/maps/{id}/markers", h.ListMarkers, huma.OperationTags("maps"))
	huma.Get(api, "/api/v1/maps/{id}/markers.geojson", h.ExportMarkers, huma.OperationTags("maps"))
}

// RegisterMapConfig registers the static map configuration routes.
func (h *APIHandler) RegisterMapConfig(api huma.API) {
	huma.Get(api, "/api/v1/config", h.GetConfig, huma.OperationTags("config"))
	huma.Get(api, "/api/v1/overlay", h.GetOverlay, huma.OperationTags("config"))
}

func status(code int) func(o *huma.Operation) {
	return func(o *huma.Operation) {
		o.DefaultStatus = code
	}
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *humastar.EmptyInput) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) ListMaps(ctx context.Context, input *humastar.EmptyInput) (*struct{ Body []service.MapState }, error) {
	return &struct{ Body []service.MapState }{Body: h.svc.Sessions.List()}, nil
}

func (h *APIHandler) MountMap(ctx context.Context, input *humastar.EmptyInput) (*MapOutput, error) {
	return &MapOutput{Body: MapBody{h.svc.Sessions.Mount(ctx)}}, nil
}

func (h *APIHandler) GetMap(ctx context.Context, input *MapIDInput) (*MapOutput, error) {
	state, err := h.svc.Sessions.Get(input.ID)
	if err != nil {
		return nil, Error(err)
	}
	return &MapOutput{Body: MapBody{state}}, nil
}

func (h *APIHandler) UnmountMap(ctx context.Context, input *MapIDInput) (*struct{}, error) {
	if err := h.svc.Sessions.Unmount(ctx, input.ID); err != nil {
		return nil, Error(err)
	}
	return nil, nil
}

func (h *APIHandler) Created(ctx context.Context, input *struct {
	MapIDInput
	Body service.CreatedEvent
}) (*MapOutput, error) {
	state, err := h.svc.Sessions.OnCreated(ctx, input.ID, input.Body)
	if err != nil {
		return nil, Error(err)
	}
	return &MapOutput{Body: MapBody{state}}, nil
}

func (h *APIHandler) Deleted(ctx context.Context, input *struct {
	MapIDInput
	Body service.DeletedEvent
}) (*MapOutput, error) {
	state, err := h.svc.Sessions.OnDeleted(ctx, input.ID, input.Body)
	if err != nil {
		return nil, Error(err)
	}
	return &MapOutput{Body: MapBody{state}}, nil
}

func (h *APIHandler) ToggleOverlay(ctx context.Context, input *MapIDInput) (*MapOutput, error) {
	state, err := h.svc.Sessions.ToggleOverlay(ctx, input.ID)
	if err != nil {
		return nil, Error(err)
	}
	return &MapOutput{Body: MapBody{state}}, nil
}

func (h *APIHandler) GetView(ctx context.Context, input *MapIDInput) (*struct{ Body view.Tree }, error) {
	state, err := h.svc.Sessions.Get(input.ID)
	if err != nil {
		return nil, Error(err)
	}
	return &struct{ Body view.Tree }{Body: view.Render(h.svc.Map, state)}, nil
}

func (h *APIHandler) ListMarkers(ctx context.Context, input *MarkersInput) (*struct {
	Body humastar.PageBody[service.MarkerPosition]
}, error) {
	state, err := h.svc.Sessions.Get(input.ID)
	if err != nil {
		return nil, Error(err)
	}
	return &struct {
		Body humastar.PageBody[service.MarkerPosition]
	}{Body: humastar.Paginate(state.Markers, input.Offset, input.Limit)}, nil
}

func (h *APIHandler) ExportMarkers(ctx context.Context, input *MapIDInput) (*struct{ Body *geojson.FeatureCollection }, error) {
	state, err := h.svc.Sessions.Get(input.ID)
	if err != nil {
		return nil, Error(err)
	}
	return &struct{ Body *geojson.FeatureCollection }{Body: service.MarkersFeatureCollection(state.Markers)}, nil
}

func (h *APIHandler) GetConfig(ctx context.Context, input *humastar.EmptyInput) (*struct{ Body config.MapConfig }, error) {
	return &struct{ Body config.MapConfig }{Body: h.svc.Map}, nil
}

func (h *APIHandler) GetOverlay(ctx context.Context, input *humastar.EmptyInput) (*struct{ Body *geojson.FeatureCollection }, error) {
	return &struct{ Body *geojson.FeatureCollection }{Body: service.OverlayFeatureCollection()}, nil
}

// Error maps service errors onto Huma status errors.
func Error(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, service.ErrMalformedEvent):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError("map session error", err)
	}
}
