package pose

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func score(v float64) *float64 { return &v }

// moveNetPose builds a 17-keypoint pose with the given joints set at score 0.9.
func moveNetPose(points map[Joint]Point) *Pose {
	p := &Pose{Keypoints: make([]Keypoint, ModelMoveNet.NumKeypoints())}
	for j, pt := range points {
		idx, _ := ModelMoveNet.Index(j)
		p.Keypoints[idx] = Keypoint{Name: j.String(), X: pt.X, Y: pt.Y, Score: score(0.9)}
	}
	return p
}

func standingPose() *Pose {
	return moveNetPose(map[Joint]Point{
		LeftShoulder:  {X: 350, Y: 200},
		RightShoulder: {X: 290, Y: 200},
		LeftHip:       {X: 340, Y: 320},
		RightHip:      {X: 300, Y: 320},
		LeftElbow:     {X: 360, Y: 260},
		RightElbow:    {X: 280, Y: 260},
		LeftWrist:     {X: 365, Y: 310},
		RightWrist:    {X: 275, Y: 310},
		LeftKnee:      {X: 340, Y: 400},
		RightKnee:     {X: 300, Y: 400},
		LeftAnkle:     {X: 340, Y: 480},
		RightAnkle:    {X: 300, Y: 480},
	})
}

func TestAngleAt(t *testing.T) {
	tests := []struct {
		name    string
		a, v, c Point
		want    float64
		ok      bool
	}{
		{"right angle", Point{10, 0}, Point{0, 0}, Point{0, 10}, 90, true},
		{"straight", Point{-10, 0}, Point{0, 0}, Point{10, 0}, 180, true},
		{"folded", Point{10, 0}, Point{0, 0}, Point{20, 0}, 0, true},
		{"degenerate ray", Point{0.5, 0}, Point{0, 0}, Point{0, 10}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AngleAt(tt.a, tt.v, tt.c)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestSkeleton_ConfidenceGate(t *testing.T) {
	p := standingPose()
	idx, _ := ModelMoveNet.Index(LeftElbow)
	p.Keypoints[idx].Score = score(0.1)
	wristIdx, _ := ModelMoveNet.Index(RightWrist)
	p.Keypoints[wristIdx].Score = nil

	s := Resolve(ModelMoveNet, p, 0.3)

	if _, ok := s.Joint(LeftElbow); ok {
		t.Error("low-confidence elbow should be undetected")
	}
	if _, ok := s.Joint(RightWrist); ok {
		t.Error("keypoint without score should be undetected")
	}
	if _, ok := s.Angle(LeftShoulder, LeftElbow, LeftWrist); ok {
		t.Error("angle through an undetected joint should be undetermined")
	}
	if _, ok := s.Angle(RightShoulder, RightElbow, RightHip); !ok {
		t.Error("angle through detected joints should be determined")
	}
}

func TestSkeleton_BodyCenter(t *testing.T) {
	t.Run("mean of four points", func(t *testing.T) {
		s := Resolve(ModelMoveNet, standingPose(), 0.3)
		c, ok := s.BodyCenter()
		if !ok {
			t.Fatal("expected body centre")
		}
		if math.Abs(c.X-320) > epsilon || math.Abs(c.Y-260) > epsilon {
			t.Errorf("expected (320, 260), got (%f, %f)", c.X, c.Y)
		}
	})

	t.Run("two points suffice", func(t *testing.T) {
		s := Resolve(ModelMoveNet, moveNetPose(map[Joint]Point{
			LeftShoulder: {X: 100, Y: 100},
			RightHip:     {X: 200, Y: 300},
		}), 0.3)
		c, ok := s.BodyCenter()
		if !ok || c.X != 150 || c.Y != 200 {
			t.Errorf("expected (150, 200), got (%v, %v) ok=%v", c.X, c.Y, ok)
		}
	})

	t.Run("one point is not enough", func(t *testing.T) {
		s := Resolve(ModelMoveNet, moveNetPose(map[Joint]Point{LeftHip: {X: 1, Y: 1}}), 0.3)
		if _, ok := s.BodyCenter(); ok {
			t.Error("expected no body centre from a single point")
		}
	})
}

func TestSkeleton_Measures(t *testing.T) {
	s := Resolve(ModelMoveNet, standingPose(), 0.3)

	if x, ok := s.CenterlineX(); !ok || x != 320 {
		t.Errorf("expected centreline 320, got %v ok=%v", x, ok)
	}
	if h, ok := s.TorsoHeight(); !ok || h != 120 {
		t.Errorf("expected torso 120, got %v ok=%v", h, ok)
	}
	if w, ok := s.ShoulderWidth(); !ok || w != 60 {
		t.Errorf("expected shoulder width 60, got %v ok=%v", w, ok)
	}
	if r, ok := s.WristHeightRatio(Right); !ok || math.Abs(r-(-110.0/120)) > epsilon {
		t.Errorf("expected wrist below shoulder, got %v ok=%v", r, ok)
	}
	if r, ok := s.WristSeparation(); !ok || math.Abs(r-1.5) > epsilon {
		t.Errorf("expected separation 1.5, got %v ok=%v", r, ok)
	}
}

func TestSkeleton_TorsoHeightNeedsBothSides(t *testing.T) {
	p := standingPose()
	for _, j := range []Joint{LeftShoulder, RightHip} {
		idx, _ := ModelMoveNet.Index(j)
		p.Keypoints[idx].Score = score(0.1)
		s := Resolve(ModelMoveNet, p, 0.3)
		if h, ok := s.TorsoHeight(); ok {
			t.Errorf("expected no torso height without %v, got %v", j, h)
		}
		p.Keypoints[idx].Score = score(0.9)
	}
	s := Resolve(ModelMoveNet, p, 0.3)
	if _, ok := s.TorsoHeight(); !ok {
		t.Error("expected torso height with all four joints restored")
	}
}

func TestModelIndex(t *testing.T) {
	if idx, _ := ModelMoveNet.Index(LeftWrist); idx != 9 {
		t.Errorf("movenet left wrist expected 9, got %d", idx)
	}
	if idx, _ := ModelBlazePose.Index(LeftWrist); idx != 15 {
		t.Errorf("blazepose left wrist expected 15, got %d", idx)
	}
	if _, ok := Model("openpose").Index(LeftWrist); ok {
		t.Error("unknown model should not resolve joints")
	}
}

func TestWrapDegrees(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0}, {180, 180}, {-180, 180}, {190, -170}, {-190, 170}, {720, 0}, {358, -2},
	}
	for _, tt := range tests {
		if got := WrapDegrees(tt.in); math.Abs(got-tt.want) > epsilon {
			t.Errorf("WrapDegrees(%v) = %v, expected %v", tt.in, got, tt.want)
		}
	}

	if d := AngularDistance(179, -179); math.Abs(d-2) > epsilon {
		t.Errorf("expected distance 2 across the branch cut, got %v", d)
	}
}

func rotatedPose(deg float64) *Pose {
	rad := deg * math.Pi / 180
	half := 30.0
	dx, dy := half*math.Cos(rad), half*math.Sin(rad)
	return moveNetPose(map[Joint]Point{
		LeftShoulder:  {X: 320 - dx, Y: 200 - dy},
		RightShoulder: {X: 320 + dx, Y: 200 + dy},
		LeftHip:       {X: 320 - dx, Y: 320 - dy},
		RightHip:      {X: 320 + dx, Y: 320 + dy},
	})
}

func TestOrientationTracker(t *testing.T) {
	t.Run("unsmoothed follows the torso line", func(t *testing.T) {
		tr := NewOrientationTracker(0)
		s := Resolve(ModelMoveNet, rotatedPose(0), 0.3)
		got, ok := tr.Update(&s)
		if !ok || math.Abs(got) > epsilon {
			t.Errorf("expected 0 for a square stance, got %v ok=%v", got, ok)
		}
	})

	t.Run("converges on a steady rotation", func(t *testing.T) {
		tr := NewOrientationTracker(0.35)
		var prev, got float64
		for i := 0; i < 40; i++ {
			s := Resolve(ModelMoveNet, rotatedPose(float64(i)*2), 0.3)
			prev = got
			got, _ = tr.Update(&s)
		}
		if d := WrapDegrees(got - prev); math.Abs(d-2) > 0.05 {
			t.Errorf("expected ~2 deg/frame, got %v", d)
		}
	})

	t.Run("coasts then gives up", func(t *testing.T) {
		tr := NewOrientationTracker(0.35)
		s := Resolve(ModelMoveNet, rotatedPose(0), 0.3)
		tr.Update(&s)
		empty := Resolve(ModelMoveNet, nil, 0.3)
		for i := 0; i < tr.MaxCoast; i++ {
			if _, ok := tr.Update(&empty); !ok {
				t.Fatalf("expected momentum on coast frame %d", i)
			}
		}
		if _, ok := tr.Update(&empty); ok {
			t.Error("expected undetermined orientation after coasting")
		}
	})

	t.Run("reset forgets history", func(t *testing.T) {
		tr := NewOrientationTracker(0.35)
		for i := 0; i < 10; i++ {
			s := Resolve(ModelMoveNet, rotatedPose(float64(i)*10), 0.3)
			tr.Update(&s)
		}
		tr.Reset()
		s := Resolve(ModelMoveNet, rotatedPose(0), 0.3)
		got, _ := tr.Update(&s)
		if math.Abs(got) > epsilon {
			t.Errorf("expected first frame after reset to be raw 0, got %v", got)
		}
	})
}

func TestSequence(t *testing.T) {
	seq := &Sequence{
		Frames: map[int][]Pose{3: {*standingPose()}, 1: {*standingPose()}, 7: {}},
		FPS:    30,
		Model:  ModelMoveNet,
	}

	if err := seq.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, last, ok := seq.Range()
	if !ok || first != 1 || last != 7 {
		t.Errorf("expected range 1..7, got %d..%d", first, last)
	}
	if _, ok := seq.Selected(7); ok {
		t.Error("frame without poses has no selected pose")
	}
	if _, ok := seq.Selected(2); ok {
		t.Error("missing frame has no selected pose")
	}
	if ts := seq.Timestamp(15); ts != 0.5 {
		t.Errorf("expected 0.5s, got %v", ts)
	}

	bad := &Sequence{Frames: seq.Frames, FPS: 0, Model: ModelMoveNet}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero fps")
	}
}

func TestSequence_FrameSpan(t *testing.T) {
	p := *standingPose()
	tests := []struct {
		name    string
		frames  map[int][]Pose
		wantErr bool
	}{
		{"single frame", map[int][]Pose{5: {p}}, false},
		{"widest allowed", map[int][]Pose{0: {p}, MaxFrameSpan - 1: {p}}, false},
		{"one past the cap", map[int][]Pose{0: {p}, MaxFrameSpan: {p}}, true},
		{"sparse far frame", map[int][]Pose{0: {p}, 1 << 33: {p}}, true},
		{"overflowing range", map[int][]Pose{-(1 << 62): {p}, 1 << 62: {p}}, true},
		{"extreme ends", map[int][]Pose{math.MinInt: {p}, math.MaxInt: {p}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := &Sequence{Frames: tt.frames, FPS: 30, Model: ModelMoveNet}
			err := seq.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrFrameSpan) {
					t.Errorf("expected ErrFrameSpan, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSquareOffset(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0}, {60, 60}, {-60, -60}, {180, 0}, {-120, 60}, {120, -60}, {90, 90}, {-90, 90},
	}
	for _, tt := range tests {
		if got := SquareOffset(tt.in); math.Abs(got-tt.want) > epsilon {
			t.Errorf("SquareOffset(%v) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}
