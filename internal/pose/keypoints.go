// Package pose provides body keypoint types and single-frame geometry for
// swing analysis: joint angles, body centre, shoulder centreline and body
// orientation.
package pose

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Point is a position in image pixels. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return a.Sub(b).Norm()
}

// Keypoint is one detected joint. A nil Score means the detector gave no
// confidence for it and the keypoint is treated as undetected.
type Keypoint struct {
	Name  string   `json:"name,omitempty"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Score *float64 `json:"score"`
}

// Confident reports whether the keypoint has a score of at least minConfidence.
func (k Keypoint) Confident(minConfidence float64) bool {
	return k.Score != nil && *k.Score >= minConfidence
}

// Point returns the keypoint position.
func (k Keypoint) Point() Point {
	return Point{X: k.X, Y: k.Y}
}

// Pose is one detected person on one frame. Keypoints are ordered by the
// model's joint numbering.
type Pose struct {
	Keypoints []Keypoint `json:"keypoints"`
	Score     float64    `json:"score,omitempty"`
}

// MaxFrameSpan bounds last-first+1 of a sequence, about nine hours at 30 fps.
const MaxFrameSpan = 1 << 20

// ErrFrameSpan is returned for a sequence whose frame range is too wide to
// analyze.
var ErrFrameSpan = errors.New("frame range too wide")

// Sequence is the immutable input of one analysis run: detected poses keyed
// by frame index, at a fixed frame rate.
type Sequence struct {
	Frames    map[int][]Pose
	FPS       float64
	Model     Model
	PoseIndex int
}

// Validate checks the run parameters of the sequence.
func (s *Sequence) Validate() error {
	if s.FPS <= 0 {
		return fmt.Errorf("invalid fps %v", s.FPS)
	}
	if !s.Model.Valid() {
		return fmt.Errorf("unknown pose model %q", s.Model)
	}
	if s.PoseIndex < 0 {
		return fmt.Errorf("invalid pose index %d", s.PoseIndex)
	}
	if first, last, ok := s.Range(); ok {
		// A negative difference means the subtraction overflowed.
		if span := last - first; span < 0 || span >= MaxFrameSpan {
			return fmt.Errorf("%w: frames %d..%d exceed %d", ErrFrameSpan, first, last, MaxFrameSpan)
		}
	}
	return nil
}

// Empty reports whether the sequence carries no frames.
func (s *Sequence) Empty() bool {
	return s == nil || len(s.Frames) == 0
}

// Range returns the first and last frame index present. ok is false for an
// empty sequence.
func (s *Sequence) Range() (first, last int, ok bool) {
	if s.Empty() {
		return 0, 0, false
	}
	first, last = math.MaxInt, math.MinInt
	for f := range s.Frames {
		if f < first {
			first = f
		}
		if f > last {
			last = f
		}
	}
	return first, last, true
}

// FrameIndices returns the frame indices in ascending order.
func (s *Sequence) FrameIndices() []int {
	out := make([]int, 0, len(s.Frames))
	for f := range s.Frames {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}

// Selected returns the selected pose on frame f.
func (s *Sequence) Selected(f int) (*Pose, bool) {
	poses, ok := s.Frames[f]
	if !ok || s.PoseIndex >= len(poses) {
		return nil, false
	}
	return &poses[s.PoseIndex], true
}

// Timestamp converts a frame index to seconds.
func (s *Sequence) Timestamp(frame int) float64 {
	return float64(frame) / s.FPS
}
