package swing

import (
	"errors"
	"time"

	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/signal"
)

// ErrNoKeypoints is returned when there is nothing to analyse.
var ErrNoKeypoints = errors.New("no pose keypoints available for analysis")

// Phase labels a frame relative to the swing it belongs to.
type Phase string

const (
	PhaseNeutral Phase = "neutral"
	PhaseLoading Phase = "loading"
	PhaseSwing   Phase = "swing"
	PhaseContact Phase = "contact"
	PhaseFollow  Phase = "follow"
	// PhaseRecovery is reserved; the detector does not emit it.
	PhaseRecovery Phase = "recovery"
)

// Type is the stroke classification.
type Type string

const (
	TypeForehand        Type = "forehand"
	TypeBackhand        Type = "backhand"
	TypeBackhandTwoHand Type = "backhand_two_hand"
	TypeServe           Type = "serve"
	TypeUnknown         Type = "unknown"
)

// Dominance is the side carrying the swing.
type Dominance string

const (
	DominanceLeft  Dominance = "left"
	DominanceRight Dominance = "right"
	DominanceBoth  Dominance = "both"
)

// Position marks a single frame inside a swing.
type Position struct {
	Frame     int     `json:"frame"`
	Timestamp float64 `json:"timestamp"`
}

// ServeEvents are the sub-positions of a serve.
type ServeEvents struct {
	Trophy       *Position `json:"trophy,omitempty"`
	ContactPoint *Position `json:"contactPoint,omitempty"`
	Landing      *Position `json:"landing,omitempty"`
}

// DetectedSwing is one swing event. Frame numbers are absolute video frames.
type DetectedSwing struct {
	ID        string  `json:"id"`
	Frame     int     `json:"frame"`
	Timestamp float64 `json:"timestamp"`

	PeakVelocity         float64      `json:"peakVelocity"`
	VelocityKmh          float64      `json:"velocityKmh"`
	SwingScore           float64      `json:"swingScore"`
	OrientationAtContact signal.Value `json:"orientationAtContact"`
	RotationRange        float64      `json:"rotationRange"`
	PeakRotationVelocity float64      `json:"peakRotationVelocity"`

	SwingType    Type      `json:"swingType"`
	DominantSide Dominance `json:"dominantSide"`
	Confidence   float64   `json:"confidence"`

	LoadingStart int `json:"loadingStart"`
	SwingStart   int `json:"swingStart"`
	ContactFrame int `json:"contactFrame"`
	FollowEnd    int `json:"followEnd"`

	LoadingPeak *Position    `json:"loadingPeak,omitempty"`
	Serve       *ServeEvents `json:"serve,omitempty"`

	ClipStartFrame int     `json:"clipStartFrame"`
	ClipStartTime  float64 `json:"clipStartTime"`
	ClipEndFrame   int     `json:"clipEndFrame"`
	ClipEndTime    float64 `json:"clipEndTime"`
	ClipDuration   float64 `json:"clipDuration"`
}

// Sample holds one channel's values on one frame. Kilometre-per-hour fields
// are only determined for velocity channels.
type Sample struct {
	Raw          signal.Value `json:"raw"`
	Processed    signal.Value `json:"processed"`
	RawKmh       signal.Value `json:"rawKmh"`
	ProcessedKmh signal.Value `json:"processedKmh"`
	Acceleration signal.Value `json:"acceleration"`
}

// FrameData is the per-frame view of an analysis.
type FrameData struct {
	Frame      int               `json:"frame"`
	Timestamp  float64           `json:"timestamp"`
	Detected   bool              `json:"detected"`
	Phase      Phase             `json:"phase"`
	SwingScore signal.Value      `json:"swingScore"`
	Channels   map[string]Sample `json:"channels"`
}

// Summary aggregates the swings of a run.
type Summary struct {
	Total              int     `json:"total"`
	Forehand           int     `json:"forehand"`
	Backhand           int     `json:"backhand"`
	Serve              int     `json:"serve"`
	Unknown            int     `json:"unknown"`
	AverageVelocityKmh float64 `json:"averageVelocityKmh"`
	MaxVelocityKmh     float64 `json:"maxVelocityKmh"`
	AverageRotation    float64 `json:"averageRotation"`
}

// Metadata describes the run.
type Metadata struct {
	FramesAnalyzed int        `json:"framesAnalyzed"`
	FirstFrame     int        `json:"firstFrame"`
	LastFrame      int        `json:"lastFrame"`
	FPS            float64    `json:"fps"`
	VideoDuration  float64    `json:"videoDuration"`
	AnalyzedAt     time.Time  `json:"analyzedAt"`
	Model          pose.Model `json:"model"`
	DominantHand   pose.Side  `json:"dominantHand"`
	Threshold      float64    `json:"threshold"`
	MetersPerPixel float64    `json:"metersPerPixel"`
}

// Result is the outcome of one swing analysis.
type Result struct {
	Swings   []DetectedSwing `json:"swings"`
	Frames   []FrameData     `json:"frames"`
	Summary  Summary         `json:"summary"`
	Metadata Metadata        `json:"metadata"`
}
