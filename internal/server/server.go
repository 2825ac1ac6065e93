// Package server wires the geo-filter services, REST API and viewer into one
// http.Handler.
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog/log"

	"github.com/joeblew999/geo-filter/internal/api"
	"github.com/joeblew999/geo-filter/internal/api/viewer"
	"github.com/joeblew999/geo-filter/internal/config"
	"github.com/joeblew999/geo-filter/internal/db"
	"github.com/joeblew999/geo-filter/internal/humastar"
	"github.com/joeblew999/geo-filter/internal/service"
	"github.com/joeblew999/geo-filter/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host string
	Port string
	// DataDir holds the DuckDB file. Empty keeps the attribute mirror in memory.
	DataDir string
	// WebDir serves the viewer page and static assets when set.
	WebDir   string
	Settings *config.Config
}

// Server is the geo-filter HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	handler  http.Handler
	humaAPI  huma.API
	links    *humastar.LinkSet
	db       *sql.DB
	bus      *service.EventBus
	services *api.Services
	renderer *templates.Renderer
}

// New creates a new server.
func New(cfg Config) *Server {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	mux := http.NewServeMux()
	links := humastar.NewLinkSet()

	humaConfig := huma.DefaultConfig("geo-filter API", api.Version)
	humaConfig.Info.Description = "Filter GeoJSON features by attribute, frame them on a map and export the subset."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, links.Transformer())

	humaAPI := humago.New(mux, humaConfig)

	conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "geo-filter"})
	var mirror service.Mirror
	if err != nil {
		log.Warn().Err(err).Msg("DuckDB unavailable, SQL endpoints disabled")
		conn = nil
	} else {
		mirror = db.NewAttributeMirror(conn)
	}

	renderer, err := templates.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse embedded templates")
	}
	if cfg.WebDir != "" {
		dir := filepath.Join(cfg.WebDir, "templates")
		if r, err := templates.NewFromDir(dir); err == nil {
			renderer = r
			log.Info().Str("dir", dir).Msg("Loaded fragment templates")
		}
	}

	bus := service.NewEventBus()
	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humaAPI,
		links:   links,
		db:      conn,
		bus:     bus,
		services: &api.Services{
			Dataset:        service.NewDatasetService(cfg.Settings, bus, mirror),
			MaxUploadBytes: cfg.Settings.MaxUploadBytes(),
		},
		renderer: renderer,
	}

	s.routes()
	links.Build(humaAPI)
	s.handler = RequestLogger(mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Datasets returns the dataset service backing the API.
func (s *Server) Datasets() *service.DatasetService {
	return s.services.Dataset
}

// Close closes server resources.
func (s *Server) Close() error {
	return db.Close()
}

func (s *Server) routes() {
	api.RegisterRoutes(s.humaAPI, s.services)
	api.NewInfoHandler(s.db != nil).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	viewer.NewFilterHandler(s.services.Dataset, s.renderer).RegisterRoutes(s.humaAPI)
	viewer.NewEventHandler(s.services.Dataset, s.bus, s.renderer).RegisterRoutes(s.humaAPI)

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		s.mux.HandleFunc("/viewer", s.handleViewer)
	}
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range s.links.Root() {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "geo-filter",
		"status":  "running",
	})
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.config.WebDir, "templates", "viewer.html"))
}
