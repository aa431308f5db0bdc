package api

import (
	"errors"
	"net/http"
	"strconv"

	"gonum.org/v1/plot/vg"

	"github.com/ayusman/swingscope/internal/handedness"
	"github.com/ayusman/swingscope/internal/report"
	"github.com/ayusman/swingscope/internal/store"
	"github.com/ayusman/swingscope/internal/stroke"
	"github.com/ayusman/swingscope/internal/swing"
	"github.com/ayusman/swingscope/internal/timeline"
)

// Default plot size.
const (
	DefaultPlotWidth  = 10 * vg.Inch
	DefaultPlotHeight = 4 * vg.Inch
)

// AnalysisHandler handles HTTP requests for stored analyses.
type AnalysisHandler struct {
	store *store.Store
}

// NewAnalysisHandler creates a new AnalysisHandler with the given store.
func NewAnalysisHandler(s *store.Store) *AnalysisHandler {
	return &AnalysisHandler{store: s}
}

type analysisResponse struct {
	ID         string                `json:"id"`
	SessionID  string                `json:"sessionId"`
	CreatedAt  string                `json:"createdAt"`
	Summary    swing.Summary         `json:"summary"`
	Metadata   swing.Metadata        `json:"metadata"`
	Handedness *handedness.Result    `json:"handedness,omitempty"`
	Swings     []swing.DetectedSwing `json:"swings"`
}

type framesResponse struct {
	Frames []swing.FrameData `json:"frames"`
}

type timelineResponse struct {
	Events []timeline.Event `json:"events"`
}

func toAnalysisResponse(a *store.Analysis) analysisResponse {
	swings := a.Result.Swings
	if swings == nil {
		swings = []swing.DetectedSwing{}
	}
	return analysisResponse{
		ID:         a.ID,
		SessionID:  a.SessionID,
		CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Summary:    a.Result.Summary,
		Metadata:   a.Result.Metadata,
		Handedness: a.Handedness,
		Swings:     swings,
	}
}

// ServeHTTP routes /api/analyses/{id} and its sub-resources.
func (h *AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, sub := splitPath(r.URL.Path, "/api/analyses")
	if id == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if sub == "" && r.Method == http.MethodDelete {
		h.delete(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a, err := h.store.Analyses().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get analysis")
		return
	}

	switch sub {
	case "":
		writeJSON(w, http.StatusOK, toAnalysisResponse(a))
	case "frames":
		writeJSON(w, http.StatusOK, framesResponse{Frames: a.Result.Frames})
	case "timeline":
		events := timeline.FromSwings(a.Result.Swings, a.Result.Metadata.FPS)
		if events == nil {
			events = []timeline.Event{}
		}
		writeJSON(w, http.StatusOK, timelineResponse{Events: events})
	case "chart":
		h.chart(w, a)
	case "plot.png":
		h.plot(w, r, a)
	case "consistency":
		h.consistency(w, a)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// chart handles GET /api/analyses/{id}/chart.
func (h *AnalysisHandler) chart(w http.ResponseWriter, a *store.Analysis) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.WriteChartHTML(w, a.Result, "Analysis "+a.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render chart")
	}
}

// plot handles GET /api/analyses/{id}/plot.png?w=&h= with sizes in inches.
func (h *AnalysisHandler) plot(w http.ResponseWriter, r *http.Request, a *store.Analysis) {
	width, height := DefaultPlotWidth, DefaultPlotHeight
	if v, err := strconv.ParseFloat(r.URL.Query().Get("w"), 64); err == nil && v > 0 && v <= 40 {
		width = vg.Length(v) * vg.Inch
	}
	if v, err := strconv.ParseFloat(r.URL.Query().Get("h"), 64); err == nil && v > 0 && v <= 40 {
		height = vg.Length(v) * vg.Inch
	}

	w.Header().Set("Content-Type", "image/png")
	if err := report.WritePlotPNG(w, a.Result, "Analysis "+a.ID, width, height); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render plot")
	}
}

// consistency handles GET /api/analyses/{id}/consistency. The wrist paths
// come from the session's stored poses.
func (h *AnalysisHandler) consistency(w http.ResponseWriter, a *store.Analysis) {
	seq, err := h.store.Sessions().LoadSequence(a.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	cfg := stroke.DefaultConfig()
	cfg.PoseIndex = seq.PoseIndex
	if a.Result.Metadata.DominantHand != "" {
		cfg.Hand = a.Result.Metadata.DominantHand
	}

	report, err := stroke.Analyze(seq, a.Result.Swings, cfg)
	if err != nil {
		if errors.Is(err, stroke.ErrNoSwings) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to compare strokes")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// delete handles DELETE /api/analyses/{id}.
func (h *AnalysisHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Analyses().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete analysis")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
