package pose

import "math"

// Orientation tracker defaults.
const (
	DefaultOrientationSmoothing = 0.35
	DefaultOrientationCoast     = 3
	// hipOrientationWeight is the share of the hip line in the torso line.
	hipOrientationWeight = 0.3
)

// WrapDegrees maps an angle into (-180, 180].
func WrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// SquareOffset is the signed turn away from the nearest square stance, in
// (-90, 90]. Front and back views of the same stance give the same offset.
func SquareOffset(deg float64) float64 {
	deg = WrapDegrees(deg)
	switch {
	case deg > 90:
		deg -= 180
	case deg <= -90:
		deg += 180
	}
	return deg
}

// AngularDistance is the absolute wrap-aware difference between two angles.
func AngularDistance(a, b float64) float64 {
	return math.Abs(WrapDegrees(a - b))
}

// facing estimates the facing direction from the torso line. The torso line
// runs from the left to the right shoulder, blended with the hip line when
// both hips are detected. Zero is a square stance with the left shoulder on
// the image left, as filmed from behind the player; the same stance seen from
// the front reads 180.
func facing(s *Skeleton) (float64, bool) {
	ls, okL := s.Joint(LeftShoulder)
	rs, okR := s.Joint(RightShoulder)
	if !okL || !okR {
		return 0, false
	}
	line := rs.Sub(ls)

	lh, okLH := s.Joint(LeftHip)
	rh, okRH := s.Joint(RightHip)
	if okLH && okRH {
		hips := rh.Sub(lh)
		line = Point{
			X: (1-hipOrientationWeight)*line.X + hipOrientationWeight*hips.X,
			Y: (1-hipOrientationWeight)*line.Y + hipOrientationWeight*hips.Y,
		}
	}
	if line.Norm() < MinRayLength {
		return 0, false
	}

	return WrapDegrees(math.Atan2(line.Y, line.X) * 180 / math.Pi), true
}

// OrientationTracker turns per-frame torso geometry into a stable body
// orientation. It keeps smoothing and momentum state between frames, so a
// tracker belongs to one video and must be Reset before reuse on another.
type OrientationTracker struct {
	// Smoothing is the weight given to the momentum prediction (0 disables).
	Smoothing float64
	// MaxCoast is how many undetected frames are bridged by momentum.
	MaxCoast int

	angle    float64 // unwrapped
	velocity float64
	has      bool
	coast    int
}

// NewOrientationTracker creates a tracker with the given smoothing weight.
func NewOrientationTracker(smoothing float64) *OrientationTracker {
	if smoothing < 0 || smoothing >= 1 {
		smoothing = DefaultOrientationSmoothing
	}
	return &OrientationTracker{
		Smoothing: smoothing,
		MaxCoast:  DefaultOrientationCoast,
	}
}

// Reset drops all temporal state.
func (t *OrientationTracker) Reset() {
	t.angle = 0
	t.velocity = 0
	t.has = false
	t.coast = 0
}

// Update feeds the next frame and returns the orientation in degrees within
// (-180, 180]. ok is false when the torso is undetected and momentum has run
// out.
func (t *OrientationTracker) Update(s *Skeleton) (float64, bool) {
	raw, ok := facing(s)
	if !ok {
		if !t.has || t.coast >= t.MaxCoast {
			return 0, false
		}
		t.coast++
		t.velocity *= 0.5
		t.angle += t.velocity
		return WrapDegrees(t.angle), true
	}

	if !t.has {
		t.angle = raw
		t.velocity = 0
		t.has = true
		t.coast = 0
		return WrapDegrees(raw), true
	}

	target := t.angle + WrapDegrees(raw-t.angle)
	predicted := t.angle + t.velocity
	next := t.Smoothing*predicted + (1-t.Smoothing)*target

	t.velocity = next - t.angle
	t.angle = next
	t.coast = 0
	return WrapDegrees(next), true
}
