// Package plugin discovers external plugins and runs them with swing
// analysis results.
package plugin

import (
	"encoding/json"
	"slices"
)

// ActionSwingsDetected is sent after every successful analysis. Params hold
// the timeline events of the run.
const ActionSwingsDetected = "swings.detected"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action     string          `json:"action"`
	SessionID  string          `json:"sessionId,omitempty"`
	AnalysisID string          `json:"analysisId,omitempty"`
	Config     json.RawMessage `json:"config"`
	Params     json.RawMessage `json:"params"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the plugin declares action.
func (p *Plugin) Supports(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
