// Package server provides the HTTP server for swing analysis sessions.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/swingscope/internal/app"
	"github.com/ayusman/swingscope/internal/server/api"
	"github.com/ayusman/swingscope/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Runner    *app.Runner
}

// Server represents the HTTP server for the swingscope application.
type Server struct {
	config Config
	mux    *http.ServeMux
	hub    *EventHub
	start  time.Time
}

// New creates a new Server with the given configuration. When a runner is
// configured its events are relayed to /api/events.
func New(config Config) *Server {
	if config.Store == nil && config.Runner != nil {
		config.Store = config.Runner.Store()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		hub:    NewEventHub(),
		start:  time.Now(),
	}
	if config.Runner != nil {
		config.Runner.Subscribe(s.hub.Publish)
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.Handle("/api/events", s.hub)

	if s.config.Runner != nil {
		plugins := api.NewPluginHandler(s.config.Runner.PluginManager())
		s.mux.Handle("/api/plugins", plugins)
		s.mux.Handle("/api/plugins/", plugins)
	}

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store, s.config.Runner)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)

		analyses := api.NewAnalysisHandler(s.config.Store)
		s.mux.Handle("/api/analyses/", analyses)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// Hub returns the websocket event hub.
func (s *Server) Hub() *EventHub {
	return s.hub
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

type statusResponse struct {
	Analyzing      bool   `json:"analyzing"`
	LastError      string `json:"lastError,omitempty"`
	LastAnalysisID string `json:"lastAnalysisId,omitempty"`
	Clients        int    `json:"clients"`
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var resp statusResponse
	if s.config.Runner != nil {
		st := s.config.Runner.Status()
		resp.Analyzing = st.Analyzing
		resp.LastError = st.LastError
		resp.LastAnalysisID = st.LastAnalysisID
	}
	resp.Clients = s.hub.Clients()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
