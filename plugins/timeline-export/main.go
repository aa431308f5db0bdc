// Package main provides a plugin that appends swing timeline events to a
// JSON lines file, one event per line.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ayusman/swingscope/internal/timeline"
)

// DefaultOutput is used when the config names no file. Relative paths are
// resolved against the plugin directory.
const DefaultOutput = "swings.jsonl"

// Request represents the input from the plugin executor.
type Request struct {
	Action     string          `json:"action"`
	SessionID  string          `json:"sessionId"`
	AnalysisID string          `json:"analysisId"`
	Config     json.RawMessage `json:"config"`
	Params     json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is the plugin configuration.
type Config struct {
	Output string `json:"output"`
}

// Record is one line of the output file.
type Record struct {
	SessionID  string         `json:"sessionId,omitempty"`
	AnalysisID string         `json:"analysisId,omitempty"`
	Event      timeline.Event `json:"event"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "swings.detected":
		n, err := handleSwings(req)
		if err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
		writeSuccessResponse(n)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}
}

// handleSwings appends the events in params and returns how many were written.
func handleSwings(req Request) (int, error) {
	cfg := Config{Output: DefaultOutput}
	if len(req.Config) > 0 && string(req.Config) != "null" {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return 0, fmt.Errorf("failed to parse config: %w", err)
		}
		if cfg.Output == "" {
			cfg.Output = DefaultOutput
		}
	}

	var events []timeline.Event
	if len(req.Params) > 0 && string(req.Params) != "null" {
		if err := json.Unmarshal(req.Params, &events); err != nil {
			return 0, fmt.Errorf("failed to parse params: %w", err)
		}
	}

	return appendEvents(cfg.Output, req.SessionID, req.AnalysisID, events)
}

func appendEvents(path, sessionID, analysisID string, events []timeline.Event) (int, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(Record{SessionID: sessionID, AnalysisID: analysisID, Event: ev}); err != nil {
			return 0, err
		}
	}
	if err := w.Flush(); err != nil {
		return 0, err
	}
	return len(events), f.Close()
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response carrying the event count.
func writeSuccessResponse(written int) {
	data, _ := json.Marshal(map[string]int{"written": written})
	resp := Response{
		Success: true,
		Data:    data,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
