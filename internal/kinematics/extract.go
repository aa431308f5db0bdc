package kinematics

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/signal"
)

// ErrEmptySequence is returned when the sequence has no frames.
var ErrEmptySequence = errors.New("empty pose sequence")

// WristMode selects how left and right wrist velocities are combined.
type WristMode string

const (
	// WristBoth sums both wrists.
	WristBoth WristMode = "both"
	// WristMax takes the faster wrist.
	WristMax WristMode = "max"
	// WristDominant uses only the dominant-hand wrist.
	WristDominant WristMode = "dominant"
)

// Valid reports whether m is a known mode.
func (m WristMode) Valid() bool {
	return m == WristBoth || m == WristMax || m == WristDominant
}

// Config holds extraction options.
type Config struct {
	// MinConfidence is the keypoint score gate (0.0-1.0).
	MinConfidence float64
	// WristMode selects the combined wrist velocity.
	WristMode WristMode
	// DominantHand is used by WristDominant and for radial velocity.
	DominantHand pose.Side
	// RotationWeight balances plain velocity against rotation in the swing score.
	RotationWeight float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:  0.3,
		WristMode:      WristMax,
		DominantHand:   pose.Right,
		RotationWeight: 0.3,
	}
}

// Frames holds the raw channels of one sequence. Index i corresponds to frame
// First+i; frames absent from the sequence are present here with undetected
// skeletons.
type Frames struct {
	First     int
	FPS       float64
	Skeletons []pose.Skeleton
	Detected  []bool
	Channels  *signal.Set
	// TorsoHeights holds the per-frame torso height in pixels for scaling.
	TorsoHeights []signal.Value
}

// Len returns the number of frames in the range.
func (f *Frames) Len() int {
	return len(f.Skeletons)
}

// FrameNumber converts an index to a frame number.
func (f *Frames) FrameNumber(i int) int {
	return f.First + i
}

// Timestamp returns the time of index i in seconds.
func (f *Frames) Timestamp(i int) float64 {
	return float64(f.First+i) / f.FPS
}

// Extract computes raw channels for every frame of seq. The tracker is reset
// first, since one run is one video. A nil tracker gets a default one.
func Extract(seq *pose.Sequence, cfg Config, tracker *pose.OrientationTracker) (*Frames, error) {
	if seq.Empty() {
		return nil, ErrEmptySequence
	}
	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sequence: %w", err)
	}
	if !cfg.WristMode.Valid() {
		return nil, fmt.Errorf("invalid wrist mode %q", cfg.WristMode)
	}
	if tracker == nil {
		tracker = pose.NewOrientationTracker(pose.DefaultOrientationSmoothing)
	}
	tracker.Reset()

	first, last, _ := seq.Range()
	n := last - first + 1

	out := &Frames{
		First:        first,
		FPS:          seq.FPS,
		Skeletons:    make([]pose.Skeleton, n),
		Detected:     make([]bool, n),
		Channels:     newChannelSet(n),
		TorsoHeights: make([]signal.Value, n),
	}

	for i := 0; i < n; i++ {
		p, ok := seq.Selected(first + i)
		out.Detected[i] = ok
		out.Skeletons[i] = pose.Resolve(seq.Model, p, cfg.MinConfidence)
	}

	ch := out.Channels
	orientation := ch.MustGet(BodyOrientation).Raw
	orientationVel := ch.MustGet(OrientationVelocity).Raw

	for i := 0; i < n; i++ {
		curr := &out.Skeletons[i]

		out.TorsoHeights[i] = signal.FromOK(curr.TorsoHeight())
		orientation[i] = signal.FromOK(tracker.Update(curr))

		for _, a := range angleChannels {
			ch.MustGet(a.name).Raw[i] = signal.FromOK(curr.Angle(a.a, a.vertex, a.c))
		}

		if i == 0 {
			continue
		}
		prev := &out.Skeletons[i-1]

		for _, v := range velocityChannels {
			ch.MustGet(v.name).Raw[i] = signal.FromOK(RelativeVelocity(prev, curr, v.joint))
		}

		left := ch.MustGet(LeftWristVelocity).Raw[i]
		right := ch.MustGet(RightWristVelocity).Raw[i]
		combined := CombineWrists(left, right, cfg.WristMode, cfg.DominantHand)
		ch.MustGet(WristVelocity).Raw[i] = combined

		radialSide := cfg.DominantHand
		if cfg.WristMode != WristDominant {
			radialSide = fasterSide(left, right)
		}
		ch.MustGet(RadialVelocity).Raw[i] = signal.FromOK(RadialVelocityOf(prev, curr, radialSide.Wrist()))

		orientationVel[i] = OrientationDelta(orientation[i-1], orientation[i])
		ch.MustGet(SwingScore).Raw[i] = RawSwingScore(combined, orientationVel[i], cfg.RotationWeight)
	}

	return out, nil
}

// fasterSide picks the wrist with the larger velocity, right on ties.
func fasterSide(left, right signal.Value) pose.Side {
	l, okL := left.Get()
	r, okR := right.Get()
	if okL && (!okR || l > r) {
		return pose.Left
	}
	return pose.Right
}

// RelativeVelocity is the distance moved by joint j relative to the body
// centre between two frames. It cancels camera and torso translation.
func RelativeVelocity(prev, curr *pose.Skeleton, j pose.Joint) (float64, bool) {
	a, okA := prev.Relative(j)
	b, okB := curr.Relative(j)
	if !okA || !okB {
		return 0, false
	}
	return pose.Distance(a, b), true
}

// RadialVelocityOf projects the relative velocity of j onto the direction
// from the body centre to j on the current frame. Positive means the joint is
// moving outward. It is zero when the joint sits within a pixel of the centre.
func RadialVelocityOf(prev, curr *pose.Skeleton, j pose.Joint) (float64, bool) {
	a, okA := prev.Relative(j)
	b, okB := curr.Relative(j)
	if !okA || !okB {
		return 0, false
	}
	r := b.Norm()
	if r < pose.MinRayLength {
		return 0, true
	}
	v := b.Sub(a)
	return (v.X*b.X + v.Y*b.Y) / r, true
}

// OrientationDelta returns curr-prev wrapped into (-180, 180].
func OrientationDelta(prev, curr signal.Value) signal.Value {
	p, okP := prev.Get()
	c, okC := curr.Get()
	if !okP || !okC {
		return signal.None
	}
	return signal.Some(pose.WrapDegrees(c - p))
}

// CombineWrists merges the two wrist velocities. A missing side counts as
// zero here only; the result is None when neither side is known, or when the
// dominant side is missing in WristDominant mode.
func CombineWrists(left, right signal.Value, mode WristMode, dominant pose.Side) signal.Value {
	if mode == WristDominant {
		if dominant == pose.Left {
			return left
		}
		return right
	}
	if !left.Valid() && !right.Valid() {
		return signal.None
	}
	l, r := left.Or(0), right.Or(0)
	if mode == WristBoth {
		return signal.Some(l + r)
	}
	return signal.Some(math.Max(l, r))
}

// RawSwingScore blends wrist velocity with rotation:
// v*(1-w) + v*|orientationVelocity|*w. It is None when either input is.
func RawSwingScore(velocity, orientationVelocity signal.Value, weight float64) signal.Value {
	v, okV := velocity.Get()
	ov, okO := orientationVelocity.Get()
	if !okV || !okO {
		return signal.None
	}
	return signal.Some(v*(1-weight) + v*math.Abs(ov)*weight)
}
