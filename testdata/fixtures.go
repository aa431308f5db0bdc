// Package testdata builds synthetic pose sequences for tests.
package testdata

import (
	"math"

	"github.com/ayusman/swingscope/internal/pose"
)

// Body proportions of the synthetic figure, in pixels.
const (
	TorsoHeight       = 120.0
	ShoulderHalfWidth = 30.0
	HipHalfWidth      = 20.0
	ThighLength       = 80.0
	ShinLength        = 80.0
	FPS               = 30.0
)

// Figure is one synthetic body on one frame. Wrists are relative to Center,
// which is the centroid of the shoulders and hips.
type Figure struct {
	Center     pose.Point
	Rotation   float64 // in-plane rotation of the shoulder and hip lines, degrees
	LeftWrist  pose.Point
	RightWrist pose.Point
	// LeftAnkleDrop and RightAnkleDrop move an ankle down in pixels.
	LeftAnkleDrop  float64
	RightAnkleDrop float64
	// Missing joints are emitted with a zero score.
	Missing []pose.Joint
}

// Standing returns a neutral figure with both wrists hanging at the hips.
func Standing() Figure {
	return Figure{
		Center:     pose.Point{X: 320, Y: 260},
		LeftWrist:  pose.Point{X: -45, Y: 50},
		RightWrist: pose.Point{X: 45, Y: 50},
	}
}

// Joints lays out every tracked joint of f in image coordinates.
func (f Figure) Joints() map[pose.Joint]pose.Point {
	rad := f.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	shoulderMid := pose.Point{X: f.Center.X, Y: f.Center.Y - TorsoHeight/2}
	hipMid := pose.Point{X: f.Center.X, Y: f.Center.Y + TorsoHeight/2}

	off := func(mid pose.Point, half, sign float64) pose.Point {
		return pose.Point{X: mid.X + sign*half*cos, Y: mid.Y + sign*half*sin}
	}
	abs := func(rel pose.Point) pose.Point {
		return pose.Point{X: f.Center.X + rel.X, Y: f.Center.Y + rel.Y}
	}
	mid := func(a, b pose.Point) pose.Point {
		return pose.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	}

	ls := off(shoulderMid, ShoulderHalfWidth, -1)
	rs := off(shoulderMid, ShoulderHalfWidth, 1)
	lh := off(hipMid, HipHalfWidth, -1)
	rh := off(hipMid, HipHalfWidth, 1)
	lw := abs(f.LeftWrist)
	rw := abs(f.RightWrist)

	return map[pose.Joint]pose.Point{
		pose.Nose:          {X: shoulderMid.X, Y: shoulderMid.Y - 50},
		pose.LeftShoulder:  ls,
		pose.RightShoulder: rs,
		pose.LeftElbow:     mid(ls, lw),
		pose.RightElbow:    mid(rs, rw),
		pose.LeftWrist:     lw,
		pose.RightWrist:    rw,
		pose.LeftHip:       lh,
		pose.RightHip:      rh,
		pose.LeftKnee:      {X: lh.X, Y: lh.Y + ThighLength},
		pose.RightKnee:     {X: rh.X, Y: rh.Y + ThighLength},
		pose.LeftAnkle:     {X: lh.X, Y: lh.Y + ThighLength + ShinLength + f.LeftAnkleDrop},
		pose.RightAnkle:    {X: rh.X, Y: rh.Y + ThighLength + ShinLength + f.RightAnkleDrop},
	}
}

// Pose renders f as a detector output for model m.
func (f Figure) Pose(m pose.Model) pose.Pose {
	p := pose.Pose{Keypoints: make([]pose.Keypoint, m.NumKeypoints()), Score: 0.9}
	missing := make(map[pose.Joint]bool, len(f.Missing))
	for _, j := range f.Missing {
		missing[j] = true
	}
	for j, pt := range f.Joints() {
		idx, ok := m.Index(j)
		if !ok {
			continue
		}
		score := 0.9
		if missing[j] {
			score = 0
		}
		p.Keypoints[idx] = pose.Keypoint{Name: j.String(), X: pt.X, Y: pt.Y, Score: &score}
	}
	return p
}

// Sequence renders figures as frames 0..len-1.
func Sequence(m pose.Model, fps float64, figures []Figure) *pose.Sequence {
	seq := &pose.Sequence{
		Frames: make(map[int][]pose.Pose, len(figures)),
		FPS:    fps,
		Model:  m,
	}
	for i, f := range figures {
		seq.Frames[i] = []pose.Pose{f.Pose(m)}
	}
	return seq
}

// ArcPath returns wrist positions on a circle of the given radius around the
// body centre such that the distance between consecutive positions equals
// speeds[i] (speeds[0] is ignored). start is the angle of the first position
// in radians, measured from straight down towards the figure's right.
func ArcPath(speeds []float64, radius, start float64) []pose.Point {
	out := make([]pose.Point, len(speeds))
	theta := start
	for i := range speeds {
		if i > 0 {
			chord := math.Min(speeds[i], 2*radius)
			theta += 2 * math.Asin(chord/(2*radius))
		}
		out[i] = pose.Point{X: radius * math.Sin(theta), Y: radius * math.Cos(theta)}
	}
	return out
}

// SwingSpeeds is the wrist speed profile of a single stroke over n frames:
// zero until 30, a linear ramp to 20px/frame at 45, easing to 18 by 48 and
// a linear decay to zero at 60.
func SwingSpeeds(n int) []float64 {
	out := make([]float64, n)
	for f := range out {
		switch {
		case f <= 30:
			out[f] = 0
		case f <= 45:
			out[f] = 20 * float64(f-30) / 15
		case f <= 48:
			out[f] = 20 - float64(f-45)*2/3
		case f < 60:
			out[f] = 18 - 1.5*float64(f-48)
		default:
			out[f] = 0
		}
	}
	return out
}

// RotationAngles returns the shoulder rotation per frame: still until 25,
// turning by degPerFrame through frame 45, then held.
func RotationAngles(n int, degPerFrame float64) []float64 {
	out := make([]float64, n)
	for f := range out {
		switch {
		case f <= 25:
			out[f] = 0
		case f <= 45:
			out[f] = degPerFrame * float64(f-25)
		default:
			out[f] = degPerFrame * 20
		}
	}
	return out
}

// Forehand returns a 90 frame, 30 fps MoveNet sequence of one right-handed
// stroke with contact at frame 45. degPerFrame sets the body rotation during
// frames 25-45; zero gives a pure arm swing.
func Forehand(degPerFrame float64) *pose.Sequence {
	const n = 90
	path := ArcPath(SwingSpeeds(n), 90, 0)
	rot := RotationAngles(n, degPerFrame)
	figs := make([]Figure, n)
	for f := range figs {
		fig := Standing()
		fig.Rotation = rot[f]
		fig.RightWrist = path[f]
		figs[f] = fig
	}
	return Sequence(pose.ModelMoveNet, FPS, figs)
}

// Serve returns a 90 frame sequence where the right wrist arcs over the head
// and reaches the top at frame 45, with the left ankle landing at frame 55.
func Serve() *pose.Sequence {
	const (
		n      = 90
		radius = 160.0
	)
	speeds := SwingSpeeds(n)
	var before float64
	for f := 0; f <= 45; f++ {
		before += speeds[f]
	}
	path := ArcPath(speeds, radius, math.Pi-before/radius)
	figs := make([]Figure, n)
	for f := range figs {
		fig := Standing()
		fig.RightWrist = path[f]
		if f >= 50 && f <= 55 {
			fig.LeftAnkleDrop = float64(f-49) * 2
		} else if f > 55 {
			fig.LeftAnkleDrop = 12 - float64(f-55)*0.5
			if fig.LeftAnkleDrop < 0 {
				fig.LeftAnkleDrop = 0
			}
		}
		figs[f] = fig
	}
	return Sequence(pose.ModelMoveNet, FPS, figs)
}

// Handed returns an n frame sequence where the dominant wrist moves ratio
// times faster than the other wrist on every frame. Both wrists circle the
// body centre at the same distance.
func Handed(dominant pose.Side, ratio float64, n int) *pose.Sequence {
	slow := make([]float64, n)
	fast := make([]float64, n)
	for f := range slow {
		slow[f] = 2 + math.Sin(float64(f)/5)
		fast[f] = ratio * slow[f]
	}
	const radius = 70.0
	fastPath := ArcPath(fast, radius, math.Pi/4)
	slowPath := ArcPath(slow, radius, -math.Pi/4)
	figs := make([]Figure, n)
	for f := range figs {
		fig := Standing()
		if dominant == pose.Right {
			fig.RightWrist, fig.LeftWrist = fastPath[f], slowPath[f]
		} else {
			fig.LeftWrist = pose.Point{X: -fastPath[f].X, Y: fastPath[f].Y}
			fig.RightWrist = pose.Point{X: -slowPath[f].X, Y: slowPath[f].Y}
		}
		figs[f] = fig
	}
	return Sequence(pose.ModelMoveNet, FPS, figs)
}
