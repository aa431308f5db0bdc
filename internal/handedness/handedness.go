// Package handedness decides which hand a player swings with by comparing the
// motion of the two wrists over a whole pose sequence.
package handedness

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/swingscope/internal/kinematics"
	"github.com/ayusman/swingscope/internal/monitoring"
	"github.com/ayusman/swingscope/internal/pose"
)

// ErrNoKeypoints is returned when the sequence carries no poses.
var ErrNoKeypoints = errors.New("no pose keypoints available for analysis")

// Weights balance the five normalized signals.
type Weights struct {
	AvgVelocity    float64 `json:"avgVelocity"`
	PeakVelocity   float64 `json:"peakVelocity"`
	Variance       float64 `json:"variance"`
	PeakExtension  float64 `json:"peakExtension"`
	CrossBodyCount float64 `json:"crossBodyCount"`
}

// Config holds classifier options.
type Config struct {
	MinConfidence float64
	PoseIndex     int
	// HighVelocityThreshold counts frames above this wrist speed (px/frame).
	HighVelocityThreshold float64
	Weights               Weights
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:         0.3,
		PoseIndex:             0,
		HighVelocityThreshold: 15,
		Weights: Weights{
			AvgVelocity:    0.2,
			PeakVelocity:   0.35,
			Variance:       0.15,
			PeakExtension:  0.15,
			CrossBodyCount: 0.15,
		},
	}
}

// SideStats are the per-wrist aggregates.
type SideStats struct {
	AvgVelocity  float64 `json:"avgVelocity"`
	PeakVelocity float64 `json:"peakVelocity"`
	// Variance is the population standard deviation of the wrist velocity.
	Variance           float64 `json:"variance"`
	HighVelocityFrames int     `json:"highVelocityFrames"`
	AvgExtension       float64 `json:"avgExtension"`
	PeakExtension      float64 `json:"peakExtension"`
	CrossBodyCount     int     `json:"crossBodyCount"`
}

// Pair is a left/right split summing to 1.
type Pair struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Normalized holds the per-signal splits.
type Normalized struct {
	AvgVelocity    Pair `json:"avgVelocity"`
	PeakVelocity   Pair `json:"peakVelocity"`
	Variance       Pair `json:"variance"`
	PeakExtension  Pair `json:"peakExtension"`
	CrossBodyCount Pair `json:"crossBodyCount"`
}

// Result is the outcome of one handedness analysis.
type Result struct {
	DominantHand   pose.Side  `json:"dominantHand"`
	Confidence     float64    `json:"confidence"`
	Left           SideStats  `json:"left"`
	Right          SideStats  `json:"right"`
	Normalized     Normalized `json:"normalized"`
	LeftScore      float64    `json:"leftScore"`
	RightScore     float64    `json:"rightScore"`
	FramesAnalyzed int        `json:"framesAnalyzed"`
}

// Normalize splits l and r into fractions of their sum. Two zeros split evenly.
func Normalize(l, r float64) Pair {
	sum := l + r
	if sum <= 0 {
		return Pair{Left: 0.5, Right: 0.5}
	}
	return Pair{Left: l / sum, Right: r / sum}
}

type accumulator struct {
	velocities []float64
	extensions []float64
	crossings  int
	lastSide   float64 // -1 or +1 relative to the centreline, 0 when unknown
}

func (a *accumulator) observeSide(dx float64) {
	var s float64
	switch {
	case dx > 0:
		s = 1
	case dx < 0:
		s = -1
	default:
		return
	}
	if a.lastSide != 0 && s != a.lastSide {
		a.crossings++
	}
	a.lastSide = s
}

func (a *accumulator) stats(highThreshold float64) SideStats {
	var st SideStats
	if len(a.velocities) > 0 {
		mean, variance := stat.PopMeanVariance(a.velocities, nil)
		st.AvgVelocity = mean
		st.Variance = math.Sqrt(variance)
		st.PeakVelocity = floats.Max(a.velocities)
		for _, v := range a.velocities {
			if v > highThreshold {
				st.HighVelocityFrames++
			}
		}
	}
	if len(a.extensions) > 0 {
		st.AvgExtension = stat.Mean(a.extensions, nil)
		st.PeakExtension = floats.Max(a.extensions)
	}
	st.CrossBodyCount = a.crossings
	return st
}

// Analyze scores both wrists over seq and calls the dominant hand.
func Analyze(seq *pose.Sequence, cfg Config) (*Result, error) {
	if seq.Empty() {
		return nil, ErrNoKeypoints
	}
	selected := *seq
	selected.PoseIndex = cfg.PoseIndex
	if err := selected.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sequence: %w", err)
	}

	first, last, _ := selected.Range()
	var left, right accumulator
	var prev pose.Skeleton
	detected := 0

	for f := first; f <= last; f++ {
		p, ok := selected.Selected(f)
		if ok {
			detected++
		}
		curr := pose.Resolve(selected.Model, p, cfg.MinConfidence)
		if f > first {
			observe(&left, &prev, &curr, pose.LeftWrist)
			observe(&right, &prev, &curr, pose.RightWrist)
		}
		prev = curr
	}
	if detected == 0 {
		return nil, ErrNoKeypoints
	}

	res := &Result{
		Left:           left.stats(cfg.HighVelocityThreshold),
		Right:          right.stats(cfg.HighVelocityThreshold),
		FramesAnalyzed: detected,
	}
	res.Normalized = Normalized{
		AvgVelocity:    Normalize(res.Left.AvgVelocity, res.Right.AvgVelocity),
		PeakVelocity:   Normalize(res.Left.PeakVelocity, res.Right.PeakVelocity),
		Variance:       Normalize(res.Left.Variance, res.Right.Variance),
		PeakExtension:  Normalize(res.Left.PeakExtension, res.Right.PeakExtension),
		CrossBodyCount: Normalize(float64(res.Left.CrossBodyCount), float64(res.Right.CrossBodyCount)),
	}

	w := cfg.Weights
	n := res.Normalized
	res.LeftScore = w.AvgVelocity*n.AvgVelocity.Left +
		w.PeakVelocity*n.PeakVelocity.Left +
		w.Variance*n.Variance.Left +
		w.PeakExtension*n.PeakExtension.Left +
		w.CrossBodyCount*n.CrossBodyCount.Left
	res.RightScore = w.AvgVelocity*n.AvgVelocity.Right +
		w.PeakVelocity*n.PeakVelocity.Right +
		w.Variance*n.Variance.Right +
		w.PeakExtension*n.PeakExtension.Right +
		w.CrossBodyCount*n.CrossBodyCount.Right

	res.DominantHand = pose.Right
	if res.LeftScore > res.RightScore {
		res.DominantHand = pose.Left
	}
	res.Confidence = math.Min(1, 2*math.Abs(res.RightScore-res.LeftScore)+0.5)

	monitoring.Logf("handedness: %s (confidence %.2f, left %.3f, right %.3f, %d frames)",
		res.DominantHand, res.Confidence, res.LeftScore, res.RightScore, detected)
	return res, nil
}

func observe(acc *accumulator, prev, curr *pose.Skeleton, wrist pose.Joint) {
	if v, ok := kinematics.RelativeVelocity(prev, curr, wrist); ok {
		acc.velocities = append(acc.velocities, v)
	}
	if rel, ok := curr.Relative(wrist); ok {
		acc.extensions = append(acc.extensions, rel.Norm())
	}
	w, okW := curr.Joint(wrist)
	cx, okC := curr.CenterlineX()
	if okW && okC {
		acc.observeSide(w.X - cx)
	}
}
