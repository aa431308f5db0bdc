package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ayusman/swingscope/internal/app"
	"github.com/ayusman/swingscope/internal/handedness"
	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/store"
	"github.com/ayusman/swingscope/internal/swing"
)

// SessionHandler handles HTTP requests for session resources.
type SessionHandler struct {
	store  *store.Store
	runner *app.Runner
}

// NewSessionHandler creates a new SessionHandler. runner may be nil, in
// which case analyze requests are rejected.
func NewSessionHandler(s *store.Store, runner *app.Runner) *SessionHandler {
	return &SessionHandler{store: s, runner: runner}
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and
// /api/sessions/{id}/analyze.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, sub := splitPath(r.URL.Path, "/api/sessions")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "analyze":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.analyze(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type createSessionRequest struct {
	Name      string              `json:"name"`
	FPS       float64             `json:"fps"`
	Model     string              `json:"model"`
	PoseIndex int                 `json:"poseIndex"`
	Frames    map[int][]pose.Pose `json:"frames"`
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type analysisSummary struct {
	ID           string             `json:"id"`
	CreatedAt    string             `json:"createdAt"`
	Summary      swing.Summary      `json:"summary"`
	Metadata     swing.Metadata     `json:"metadata"`
	DominantHand pose.Side          `json:"dominantHand,omitempty"`
	Handedness   *handedness.Result `json:"handedness,omitempty"`
}

type sessionResponse struct {
	*store.Session
	Analyses []analysisSummary `json:"analyses"`
}

func toAnalysisSummary(a *store.Analysis) analysisSummary {
	out := analysisSummary{
		ID:         a.ID,
		CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Summary:    a.Result.Summary,
		Metadata:   a.Result.Metadata,
		Handedness: a.Handedness,
	}
	if a.Handedness != nil {
		out.DominantHand = a.Handedness.DominantHand
	}
	return out
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

// create handles POST /api/sessions with a full pose sequence.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	model := pose.Model(req.Model)
	if model == "" {
		model = pose.ModelMoveNet
	}
	seq := pose.Sequence{Frames: req.Frames, FPS: req.FPS, Model: model, PoseIndex: req.PoseIndex}
	if err := seq.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := &store.Session{
		ID:        uuid.New().String(),
		Name:      req.Name,
		FPS:       req.FPS,
		Model:     model,
		PoseIndex: req.PoseIndex,
	}
	if err := h.store.Sessions().Create(sess, req.Frames); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

// get handles GET /api/sessions/{id} and includes the session's analyses.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	analyses, err := h.store.Analyses().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	resp := sessionResponse{Session: sess, Analyses: make([]analysisSummary, 0, len(analyses))}
	for _, a := range analyses {
		resp.Analyses = append(resp.Analyses, toAnalysisSummary(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// analyze handles POST /api/sessions/{id}/analyze.
func (h *SessionHandler) analyze(w http.ResponseWriter, r *http.Request, id string) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "Analysis is not available")
		return
	}

	a, err := h.runner.RunSession(id)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
		return
	case errors.Is(err, app.ErrAnalysisInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, swing.ErrNoKeypoints):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toAnalysisResponse(a))
}
