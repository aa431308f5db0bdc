package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/swingscope/internal/plugin"
)

// PluginHandler lists the discovered plugins.
type PluginHandler struct {
	manager *plugin.Manager
}

// NewPluginHandler creates a PluginHandler backed by m.
func NewPluginHandler(m *plugin.Manager) *PluginHandler {
	return &PluginHandler{manager: m}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
}

func toPluginResponse(p *plugin.Plugin) pluginResponse {
	actions := p.Manifest.Actions
	if actions == nil {
		actions = []string{}
	}
	return pluginResponse{
		Name:        p.Manifest.Name,
		Version:     p.Manifest.Version,
		Description: p.Manifest.Description,
		Actions:     actions,
	}
}

// ServeHTTP routes GET /api/plugins and GET /api/plugins/{name}.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name, sub := splitPath(r.URL.Path, "/api/plugins")
	switch {
	case name == "":
		plugins := h.manager.List()
		resp := listPluginsResponse{Plugins: make([]pluginResponse, 0, len(plugins))}
		for _, p := range plugins {
			resp.Plugins = append(resp.Plugins, toPluginResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	case sub != "":
		writeError(w, http.StatusNotFound, "Not found")
	default:
		p, err := h.manager.Get(name)
		if errors.Is(err, plugin.ErrPluginNotFound) {
			writeError(w, http.StatusNotFound, "Plugin not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get plugin")
			return
		}
		writeJSON(w, http.StatusOK, toPluginResponse(p))
	}
}
