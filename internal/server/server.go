package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog/log"

	"github.com/joeblew999/drawmap/internal/api"
	"github.com/joeblew999/drawmap/internal/api/editor"
	"github.com/joeblew999/drawmap/internal/config"
	"github.com/joeblew999/drawmap/internal/db"
	"github.com/joeblew999/drawmap/internal/humastar"
	"github.com/joeblew999/drawmap/internal/service"
	"github.com/joeblew999/drawmap/internal/templates"
	"github.com/joeblew999/drawmap/internal/view"
	"github.com/joeblew999/drawmap/web"
)

// Config holds the server configuration.
type Config struct {
	Host        string
	Port        string
	DataDir     string
	WebDir      string // optional on-disk web/ directory overriding the embedded one
	Map         config.MapConfig
	DeleteMatch service.DeleteMatch
	Journal     bool          // record draw events in DuckDB under DataDir
	SessionIdle time.Duration // unmount sessions with no live stream after this long; 0 uses DefaultSessionIdle
}

// DefaultSessionIdle is how long a map session survives without an attached
// event stream.
const DefaultSessionIdle = 2 * time.Minute

// Server is the drawmap HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	db       *sql.DB
	sessions *service.SessionService
	renderer *templates.Renderer
	webFS    fs.FS
	stop     context.CancelFunc
}

// New creates a new drawmap server.
func New(cfg Config) (*Server, error) {
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("drawmap API", "1.0.0")
	humaConfig.Info.Description = "Interactive map with a togglable overlay and a draw toolbar for user markers."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, humastar.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	var webFS fs.FS = web.FS
	if cfg.WebDir != "" {
		webFS = os.DirFS(cfg.WebDir)
	}
	renderer, err := templates.New(webFS, web.TemplatePatterns...)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		sessions: service.NewSessionService(cfg.DeleteMatch, service.NewEventBus()),
		renderer: renderer,
		webFS:    webFS,
	}

	if cfg.Journal {
		if err := s.openJournal(); err != nil {
			log.Warn().Err(err).Msg("Draw journal disabled")
		}
	}

	s.routes()
	s.handler = RequestLogger(mux)

	idle := cfg.SessionIdle
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	ctx, stop := context.WithCancel(context.Background())
	s.stop = stop
	go s.sessions.RunReaper(ctx, max(idle/4, 10*time.Millisecond), idle)

	return s, nil
}

func (s *Server) openJournal() error {
	conn, err := db.Open(db.Config{DataDir: s.config.DataDir, DBName: "drawmap"})
	if err != nil {
		return err
	}
	journal, err := db.NewJournal(context.Background(), conn)
	if err != nil {
		conn.Close()
		return err
	}
	s.db = conn
	s.sessions.SetJournal(journal)
	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Close closes server resources.
func (s *Server) Close() error {
	s.stop()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Server) routes() {
	// Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, &api.Services{Sessions: s.sessions, Map: s.config.Map})
	api.NewInfoHandler(s.config.DataDir, s.db != nil, s.sessions.Match()).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Editor SSE routes using Huma + Datastar SDK
	editor.NewMapHandler(s.sessions, s.config.Map, s.renderer).RegisterRoutes(s.humaAPI)

	humastar.AutoLinks(s.humaAPI)

	if static, err := fs.Sub(s.webFS, "static"); err == nil {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	}

	// Page routes
	s.mux.HandleFunc("GET /map", s.handleMap)
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range humastar.RootLinks() {
		w.Header().Add("Link", link)
	}
	w.Header().Add("Link", `</map>; rel="map"`)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "drawmap",
		"status":  "running",
	})
}

type pageRoutes struct {
	Events  string `json:"events"`
	Toggle  string `json:"toggle"`
	Created string `json:"created"`
	Deleted string `json:"deleted"`
	Unmount string `json:"unmount"`
}

type pageData struct {
	State       service.MapState
	Config      config.MapConfig
	Tree        view.Tree
	Routes      pageRoutes
	ToggleLabel string
}

// handleMap mounts a fresh session and serves the map page bound to it.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	state := s.sessions.Mount(r.Context())
	data := pageData{
		State:  state,
		Config: s.config.Map,
		Tree:   view.Render(s.config.Map, state),
		Routes: pageRoutes{
			Events:  "/api/v1/editor/maps/" + state.ID + "/events",
			Toggle:  "/api/v1/editor/maps/" + state.ID + "/overlay/toggle",
			Created: "/api/v1/maps/" + state.ID + "/created",
			Deleted: "/api/v1/maps/" + state.ID + "/deleted",
			Unmount: "/api/v1/maps/" + state.ID + "/unmount",
		},
		ToggleLabel: view.ToggleLabel,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.renderer.Execute(w, "map-page", data); err != nil {
		log.Error().Err(err).Str("session", state.ID).Msg("Rendering map page failed")
	}
}
