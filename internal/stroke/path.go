// Package stroke compares the shape of detected swings. Each swing's wrist
// path is traced relative to the body, averaged into one template per swing
// type and scored against it with dynamic time warping.
package stroke

import (
	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/swing"
)

// PathPoint is one wrist position relative to the body centre, in torso
// heights.
type PathPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Frame int     `json:"frame"`
}

// Config holds configuration options for stroke comparison.
type Config struct {
	// MinConfidence gates the keypoints used for the path.
	MinConfidence float64

	// PoseIndex selects the player.
	PoseIndex int

	// Hand is the wrist traced for two-handed swings.
	Hand pose.Side

	// ResampleLength is the template length in points.
	ResampleLength int

	// Tolerance is the largest DTW distance that still counts as a match.
	Tolerance float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:  0.3,
		Hand:           pose.Right,
		ResampleLength: 32,
		Tolerance:      0.35,
	}
}

// wristFor returns the wrist traced for sw.
func (c Config) wristFor(sw *swing.DetectedSwing) pose.Joint {
	switch sw.DominantSide {
	case swing.DominanceLeft:
		return pose.LeftWrist
	case swing.DominanceRight:
		return pose.RightWrist
	}
	if c.Hand == pose.Left {
		return pose.LeftWrist
	}
	return pose.RightWrist
}

// WristPath traces the swing's wrist from the start of the forward swing to
// the end of the follow-through. Frames where the wrist, the body centre or
// the torso height is undetermined are skipped.
func WristPath(seq *pose.Sequence, sw *swing.DetectedSwing, cfg Config) []PathPoint {
	first, last := sw.SwingStart, sw.FollowEnd
	if last <= first {
		first, last = sw.ClipStartFrame, sw.ClipEndFrame
	}
	selected := *seq
	selected.PoseIndex = cfg.PoseIndex
	wrist := cfg.wristFor(sw)

	var path []PathPoint
	for f := first; f <= last; f++ {
		p, ok := selected.Selected(f)
		if !ok {
			continue
		}
		sk := pose.Resolve(selected.Model, p, cfg.MinConfidence)
		rel, ok := sk.Relative(wrist)
		if !ok {
			continue
		}
		torso, ok := sk.TorsoHeight()
		if !ok || torso < pose.MinRayLength {
			continue
		}
		path = append(path, PathPoint{X: rel.X / torso, Y: rel.Y / torso, Frame: f})
	}
	return path
}
