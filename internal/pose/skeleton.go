package pose

import "math"

// MinRayLength is the shortest ray, in pixels, accepted by AngleAt.
const MinRayLength = 1.0

type joint struct {
	p  Point
	ok bool
}

// Skeleton is a pose resolved against a model and a confidence gate. Joints
// below the gate, or missing from the pose, are undetected.
type Skeleton struct {
	joints [NumJoints]joint
}

// Resolve maps the keypoints of p to joints using the model's numbering and
// keeps only those scoring at least minConfidence. A nil pose yields a
// skeleton with no detected joints.
func Resolve(m Model, p *Pose, minConfidence float64) Skeleton {
	var s Skeleton
	if p == nil {
		return s
	}
	for j := Joint(0); j < NumJoints; j++ {
		idx, ok := m.Index(j)
		if !ok || idx >= len(p.Keypoints) {
			continue
		}
		kp := p.Keypoints[idx]
		if !kp.Confident(minConfidence) {
			continue
		}
		s.joints[j] = joint{p: kp.Point(), ok: true}
	}
	return s
}

// Joint returns the position of j, if detected.
func (s *Skeleton) Joint(j Joint) (Point, bool) {
	if j < 0 || j >= NumJoints {
		return Point{}, false
	}
	return s.joints[j].p, s.joints[j].ok
}

// AngleAt returns the angle in degrees at vertex between the rays to a and c.
// The result is in [0, 180]; 180 means a straight line. ok is false when either
// ray is shorter than MinRayLength.
func AngleAt(a, vertex, c Point) (float64, bool) {
	v1 := a.Sub(vertex)
	v2 := c.Sub(vertex)
	n1, n2 := v1.Norm(), v2.Norm()
	if n1 < MinRayLength || n2 < MinRayLength {
		return 0, false
	}
	cos := (v1.X*v2.X + v1.Y*v2.Y) / (n1 * n2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi, true
}

// Angle returns the angle at vertex between a and c when all three joints are
// detected and the geometry is not degenerate.
func (s *Skeleton) Angle(a, vertex, c Joint) (float64, bool) {
	pa, okA := s.Joint(a)
	pv, okV := s.Joint(vertex)
	pc, okC := s.Joint(c)
	if !okA || !okV || !okC {
		return 0, false
	}
	return AngleAt(pa, pv, pc)
}

// BodyCenter is the mean of the detected shoulders and hips. At least two of
// the four must be detected.
func (s *Skeleton) BodyCenter() (Point, bool) {
	var sum Point
	n := 0
	for _, j := range []Joint{LeftShoulder, RightShoulder, LeftHip, RightHip} {
		if p, ok := s.Joint(j); ok {
			sum.X += p.X
			sum.Y += p.Y
			n++
		}
	}
	if n < 2 {
		return Point{}, false
	}
	return Point{X: sum.X / float64(n), Y: sum.Y / float64(n)}, true
}

// CenterlineX is the x midpoint of the two shoulders.
func (s *Skeleton) CenterlineX() (float64, bool) {
	l, okL := s.Joint(LeftShoulder)
	r, okR := s.Joint(RightShoulder)
	if !okL || !okR {
		return 0, false
	}
	return (l.X + r.X) / 2, true
}

// midY averages the y of two joints, both of which must be detected.
func (s *Skeleton) midY(a, b Joint) (float64, bool) {
	pa, okA := s.Joint(a)
	pb, okB := s.Joint(b)
	if !okA || !okB {
		return 0, false
	}
	return (pa.Y + pb.Y) / 2, true
}

// TorsoHeight is the vertical distance between the shoulder line and the hip
// line. Both shoulders and both hips must be detected.
func (s *Skeleton) TorsoHeight() (float64, bool) {
	sy, okS := s.midY(LeftShoulder, RightShoulder)
	hy, okH := s.midY(LeftHip, RightHip)
	if !okS || !okH {
		return 0, false
	}
	return math.Abs(hy - sy), true
}

// ShoulderWidth is the distance between the two shoulders.
func (s *Skeleton) ShoulderWidth() (float64, bool) {
	l, okL := s.Joint(LeftShoulder)
	r, okR := s.Joint(RightShoulder)
	if !okL || !okR {
		return 0, false
	}
	return Distance(l, r), true
}

// Relative returns the position of j relative to the body centre.
func (s *Skeleton) Relative(j Joint) (Point, bool) {
	p, ok := s.Joint(j)
	if !ok {
		return Point{}, false
	}
	c, ok := s.BodyCenter()
	if !ok {
		return Point{}, false
	}
	return p.Sub(c), true
}

// WristHeightRatio is how far the wrist on side is above its shoulder,
// normalised by torso height. Positive means above the shoulder.
func (s *Skeleton) WristHeightRatio(side Side) (float64, bool) {
	w, okW := s.Joint(side.Wrist())
	sh, okS := s.Joint(side.Shoulder())
	torso, okT := s.TorsoHeight()
	if !okW || !okS || !okT || torso < MinRayLength {
		return 0, false
	}
	return (sh.Y - w.Y) / torso, true
}

// WristSeparation is the wrist to wrist distance normalised by shoulder width.
func (s *Skeleton) WristSeparation() (float64, bool) {
	l, okL := s.Joint(LeftWrist)
	r, okR := s.Joint(RightWrist)
	width, okW := s.ShoulderWidth()
	if !okL || !okR || !okW || width < MinRayLength {
		return 0, false
	}
	return Distance(l, r) / width, true
}
