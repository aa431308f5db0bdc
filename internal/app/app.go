// Package app runs swing analyses: it owns the in-flight guard, the last
// known good result and the orientation tracker, persists results and
// notifies listeners and plugins.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/swingscope/internal/capture"
	"github.com/ayusman/swingscope/internal/detector"
	"github.com/ayusman/swingscope/internal/handedness"
	"github.com/ayusman/swingscope/internal/plugin"
	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/store"
	"github.com/ayusman/swingscope/internal/swing"
	"github.com/ayusman/swingscope/internal/timeline"
)

// ErrAnalysisInProgress is returned when a run is requested while another is
// in flight.
var ErrAnalysisInProgress = errors.New("analysis already in progress")

// DefaultPluginTimeoutMs bounds each plugin invocation.
const DefaultPluginTimeoutMs = 5000

// Event types sent to listeners.
const (
	EventStarted   = "analysis.started"
	EventCompleted = "analysis.completed"
	EventFailed    = "analysis.failed"
)

// Config holds configuration options for the runner. Swing.PoseIndex is
// recorded on imported sessions; a run always follows the pose index of its
// input sequence.
type Config struct {
	Store           *store.Store
	PluginDir       string
	PluginTimeoutMs int
	Swing           swing.Config
	Handedness      handedness.Config
}

// DefaultConfig returns a Config with default analysis settings and no
// store or plugins.
func DefaultConfig() Config {
	return Config{
		PluginTimeoutMs: DefaultPluginTimeoutMs,
		Swing:           swing.DefaultConfig(),
		Handedness:      handedness.DefaultConfig(),
	}
}

// Input is one analysis request.
type Input struct {
	SessionID string
	Sequence  *pose.Sequence
}

// Event is sent to listeners when a run starts, completes or fails.
type Event struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Analysis  *store.Analysis `json:"analysis,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Listener receives runner events. Listeners are called synchronously and
// must not call Run.
type Listener func(Event)

// Status is a snapshot of the runner state.
type Status struct {
	Analyzing      bool   `json:"analyzing"`
	LastError      string `json:"lastError"`
	LastAnalysisID string `json:"lastAnalysisId"`
}

// Runner is the orchestration layer around the analysis pipeline.
type Runner struct {
	config     Config
	tracker    *pose.OrientationTracker
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	mu        sync.RWMutex
	analyzing bool
	lastError string
	last      *store.Analysis
	listeners []Listener

	plugins sync.WaitGroup
}

// New creates a new Runner with the given configuration.
func New(config Config) *Runner {
	timeout := config.PluginTimeoutMs
	if timeout <= 0 {
		timeout = DefaultPluginTimeoutMs
	}
	return &Runner{
		config:     config,
		tracker:    pose.NewOrientationTracker(config.Swing.OrientationSmoothing),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(timeout),
	}
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (r *Runner) DiscoverPlugins() error {
	return r.pluginMgr.Discover()
}

// PluginManager returns the plugin manager.
func (r *Runner) PluginManager() *plugin.Manager {
	return r.pluginMgr
}

// Store returns the configured store, which may be nil.
func (r *Runner) Store() *store.Store {
	return r.config.Store
}

// Subscribe registers a listener for runner events.
func (r *Runner) Subscribe(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Status returns the current runner state.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := Status{Analyzing: r.analyzing, LastError: r.lastError}
	if r.last != nil {
		st.LastAnalysisID = r.last.ID
	}
	return st
}

// Last returns the last known good analysis, or nil.
func (r *Runner) Last() *store.Analysis {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Wait blocks until dispatched plugin calls have finished.
func (r *Runner) Wait() {
	r.plugins.Wait()
}

// Run analyses one pose sequence. Handedness runs first; with DominantHand
// set to auto the swing analysis uses its verdict. The result replaces the
// last known good analysis only on success.
func (r *Runner) Run(in Input) (*store.Analysis, error) {
	r.mu.Lock()
	if r.analyzing {
		r.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	r.analyzing = true
	r.mu.Unlock()

	r.notify(Event{Type: EventStarted, SessionID: in.SessionID})

	a, err := r.analyze(in)
	if err == nil && r.config.Store != nil && in.SessionID != "" {
		if serr := r.config.Store.Analyses().Save(a); serr != nil {
			err = fmt.Errorf("save analysis: %w", serr)
		}
	}

	r.mu.Lock()
	r.analyzing = false
	if err != nil {
		r.lastError = err.Error()
	} else {
		r.lastError = ""
		r.last = a
	}
	r.mu.Unlock()

	if err != nil {
		log.Printf("Analysis failed: %v", err)
		r.notify(Event{Type: EventFailed, SessionID: in.SessionID, Error: err.Error()})
		return nil, err
	}

	log.Printf("Analysis %s: %d swings (%d forehand, %d backhand, %d serve)",
		a.ID, a.Result.Summary.Total, a.Result.Summary.Forehand, a.Result.Summary.Backhand, a.Result.Summary.Serve)
	r.notify(Event{Type: EventCompleted, SessionID: in.SessionID, Analysis: a})
	r.dispatchPlugins(a)
	return a, nil
}

// analyze runs both analyses, turning a pipeline panic into an error.
func (r *Runner) analyze(in Input) (a *store.Analysis, err error) {
	defer func() {
		if p := recover(); p != nil {
			a = nil
			err = fmt.Errorf("analysis panicked: %v", p)
		}
	}()

	if in.Sequence.Empty() {
		return nil, swing.ErrNoKeypoints
	}

	// The sequence records which detected person it tracks.
	poseIndex := in.Sequence.PoseIndex
	hcfg := r.config.Handedness
	hcfg.PoseIndex = poseIndex
	hand, err := handedness.Analyze(in.Sequence, hcfg)
	if err != nil {
		if errors.Is(err, handedness.ErrNoKeypoints) {
			return nil, swing.ErrNoKeypoints
		}
		return nil, fmt.Errorf("handedness: %w", err)
	}

	scfg := r.config.Swing
	scfg.PoseIndex = poseIndex
	if scfg.DominantHand == swing.HandAuto {
		scfg.DominantHand = swing.Hand(hand.DominantHand)
	}
	res, err := swing.AnalyzeWithTracker(in.Sequence, scfg, r.tracker)
	if err != nil {
		return nil, err
	}

	return &store.Analysis{
		ID:         uuid.New().String(),
		SessionID:  in.SessionID,
		CreatedAt:  time.Now().UTC(),
		Result:     res,
		Handedness: hand,
	}, nil
}

func (r *Runner) notify(ev Event) {
	r.mu.RLock()
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

// dispatchPlugins sends the timeline of a to every plugin declaring
// swings.detected. Calls run in the background.
func (r *Runner) dispatchPlugins(a *store.Analysis) {
	plugins := r.pluginMgr.WithAction(plugin.ActionSwingsDetected)
	if len(plugins) == 0 {
		return
	}

	params, err := json.Marshal(timeline.FromSwings(a.Result.Swings, a.Result.Metadata.FPS))
	if err != nil {
		log.Printf("Failed to encode timeline for plugins: %v", err)
		return
	}
	req := &plugin.Request{
		Action:     plugin.ActionSwingsDetected,
		SessionID:  a.SessionID,
		AnalysisID: a.ID,
		Params:     params,
	}

	for _, p := range plugins {
		r.plugins.Add(1)
		go func(p *plugin.Plugin) {
			defer r.plugins.Done()
			resp, err := r.pluginExec.Execute(p, req)
			switch {
			case err != nil:
				log.Printf("Plugin %s failed: %v", p.Manifest.Name, err)
			case !resp.Success:
				log.Printf("Plugin %s returned error: %s", p.Manifest.Name, resp.Error)
			}
		}(p)
	}
}

// ImportVideo extracts poses from src with det and stores them as a new
// session. A store is required.
func (r *Runner) ImportVideo(ctx context.Context, name string, src capture.Source, det detector.Detector, model pose.Model) (*store.Session, error) {
	if r.config.Store == nil {
		return nil, errors.New("no store configured")
	}
	seq, err := capture.Extract(ctx, src, det, model)
	if err != nil {
		return nil, fmt.Errorf("extract poses: %w", err)
	}
	sess := &store.Session{
		ID:        uuid.New().String(),
		Name:      name,
		FPS:       seq.FPS,
		Model:     seq.Model,
		PoseIndex: r.config.Swing.PoseIndex,
	}
	if err := r.config.Store.Sessions().Create(sess, seq.Frames); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	log.Printf("Imported session %s (%q): %d frames with poses", sess.ID, name, sess.FrameCount)
	return sess, nil
}

// RunSession loads a stored session and analyses it.
func (r *Runner) RunSession(sessionID string) (*store.Analysis, error) {
	if r.config.Store == nil {
		return nil, errors.New("no store configured")
	}
	seq, err := r.config.Store.Sessions().LoadSequence(sessionID)
	if err != nil {
		return nil, err
	}
	return r.Run(Input{SessionID: sessionID, Sequence: seq})
}
