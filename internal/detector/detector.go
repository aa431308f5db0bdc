// Package detector provides the pose detector interface and its
// implementations. A detector turns one video frame into the body poses
// found on it.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/swingscope/internal/pose"
)

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected poses, with
	// keypoints ordered by the configured model's numbering.
	// Returns an empty slice if nobody is detected.
	Detect(frame *gocv.Mat) ([]pose.Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MaxPoses is the maximum number of people to report per frame (default: 2).
	MaxPoses int

	// MinConfidence drops whole poses scoring below it (0.0-1.0). Keypoint
	// gating happens later, in the analysis.
	MinConfidence float64

	// Model is the keypoint topology the detector emits.
	Model pose.Model
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxPoses:      2,
		MinConfidence: 0.2,
		Model:         pose.ModelMoveNet,
	}
}
