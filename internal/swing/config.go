package swing

import (
	"fmt"

	"github.com/ayusman/swingscope/internal/kinematics"
	"github.com/ayusman/swingscope/internal/pose"
)

// Hand is the configured dominant hand. HandAuto asks the handedness
// classifier.
type Hand string

const (
	HandRight Hand = "right"
	HandLeft  Hand = "left"
	HandAuto  Hand = "auto"
)

// Config holds swing detection options.
type Config struct {
	// Keypoint gate and pose selection
	MinConfidence float64
	PoseIndex     int

	// Swing score
	WristMode      kinematics.WristMode
	DominantHand   Hand
	RotationWeight float64

	// Peak finding
	ThresholdPercentile  float64
	MinVelocityThreshold float64
	MinTimeBetweenSwings float64 // seconds
	RequireRotation      bool
	MinRotationVelocity  float64 // deg/frame
	MinVelocityKmh       float64 // 0 disables the gate

	// Phase boundaries
	LoadingRotationThreshold float64 // deg/frame
	ContactVelocityRatio     float64

	// Classification
	ClassificationWindow  int // frames
	ServeHeightRatio      float64
	TwoHandedRatio        float64
	RotationVoteThreshold float64 // deg/frame
	OrientationDeadZone   float64 // degrees

	// Events
	MergeOverlapRatio float64
	ClipPreRoll       float64 // seconds
	ClipPostRoll      float64 // seconds
	TrophyLead        float64 // seconds

	OrientationSmoothing float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:            0.3,
		PoseIndex:                0,
		WristMode:                kinematics.WristMax,
		DominantHand:             HandRight,
		RotationWeight:           0.3,
		ThresholdPercentile:      75,
		MinVelocityThreshold:     3,
		MinTimeBetweenSwings:     1.0,
		RequireRotation:          false,
		MinRotationVelocity:      1.0,
		MinVelocityKmh:           0,
		LoadingRotationThreshold: 0.5,
		ContactVelocityRatio:     1.0,
		ClassificationWindow:     5,
		ServeHeightRatio:         0.4,
		TwoHandedRatio:           0.6,
		RotationVoteThreshold:    0.5,
		OrientationDeadZone:      15,
		MergeOverlapRatio:        0.7,
		ClipPreRoll:              0.5,
		ClipPostRoll:             0.5,
		TrophyLead:               0.4,
		OrientationSmoothing:     pose.DefaultOrientationSmoothing,
	}
}

// Validate checks that the options are usable.
func (c Config) Validate() error {
	switch {
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return fmt.Errorf("minConfidence %v out of [0,1]", c.MinConfidence)
	case c.PoseIndex < 0:
		return fmt.Errorf("invalid pose index %d", c.PoseIndex)
	case !c.WristMode.Valid():
		return fmt.Errorf("invalid wrist mode %q", c.WristMode)
	case c.DominantHand != HandRight && c.DominantHand != HandLeft && c.DominantHand != HandAuto:
		return fmt.Errorf("invalid dominant hand %q", c.DominantHand)
	case c.RotationWeight < 0 || c.RotationWeight > 1:
		return fmt.Errorf("rotationWeight %v out of [0,1]", c.RotationWeight)
	case c.ThresholdPercentile < 0 || c.ThresholdPercentile > 100:
		return fmt.Errorf("thresholdPercentile %v out of [0,100]", c.ThresholdPercentile)
	case c.MinTimeBetweenSwings < 0:
		return fmt.Errorf("negative minTimeBetweenSwings %v", c.MinTimeBetweenSwings)
	case c.ClassificationWindow < 1:
		return fmt.Errorf("classificationWindow must be at least 1, got %d", c.ClassificationWindow)
	case c.MergeOverlapRatio <= 0 || c.MergeOverlapRatio > 1:
		return fmt.Errorf("mergeOverlapRatio %v out of (0,1]", c.MergeOverlapRatio)
	case c.ClipPreRoll < 0 || c.ClipPostRoll < 0:
		return fmt.Errorf("negative clip padding")
	case c.OrientationSmoothing < 0 || c.OrientationSmoothing >= 1:
		return fmt.Errorf("orientationSmoothing %v out of [0,1)", c.OrientationSmoothing)
	}
	return nil
}

// Side maps the configured hand to a body side. HandAuto maps to right until
// resolved.
func (h Hand) Side() pose.Side {
	if h == HandLeft {
		return pose.Left
	}
	return pose.Right
}

func (c Config) extraction(side pose.Side) kinematics.Config {
	return kinematics.Config{
		MinConfidence:  c.MinConfidence,
		WristMode:      c.WristMode,
		DominantHand:   side,
		RotationWeight: c.RotationWeight,
	}
}
