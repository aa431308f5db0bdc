package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/swingscope/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	poses  []pose.Pose
	script [][]pose.Pose
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPoses sets the poses that will be returned by every Detect call once
// the script, if any, is used up.
func (m *MockDetector) SetPoses(poses []pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poses = poses
}

// SetScript queues per-call results: the n-th Detect call returns frames[n].
func (m *MockDetector) SetScript(frames [][]pose.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = frames
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured poses or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]pose.Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.calls
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if n < len(m.script) {
		return m.script[n], nil
	}
	return m.poses, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// ReadyPosePoses returns one MoveNet pose of a player in the ready position
// facing the camera: feet apart, knees slightly bent, hands together in
// front of the waist.
func ReadyPosePoses() []pose.Pose {
	points := map[pose.Joint]pose.Point{
		pose.Nose:          {X: 320, Y: 100},
		pose.LeftShoulder:  {X: 290, Y: 150},
		pose.RightShoulder: {X: 350, Y: 150},
		pose.LeftElbow:     {X: 280, Y: 210},
		pose.RightElbow:    {X: 360, Y: 210},
		pose.LeftWrist:     {X: 310, Y: 255},
		pose.RightWrist:    {X: 330, Y: 255},
		pose.LeftHip:       {X: 300, Y: 270},
		pose.RightHip:      {X: 340, Y: 270},
		pose.LeftKnee:      {X: 285, Y: 345},
		pose.RightKnee:     {X: 355, Y: 345},
		pose.LeftAnkle:     {X: 280, Y: 425},
		pose.RightAnkle:    {X: 360, Y: 425},
	}

	p := pose.Pose{
		Score:     0.9,
		Keypoints: make([]pose.Keypoint, pose.ModelMoveNet.NumKeypoints()),
	}
	for j, pt := range points {
		idx, _ := pose.ModelMoveNet.Index(j)
		score := 0.9
		p.Keypoints[idx] = pose.Keypoint{Name: j.String(), X: pt.X, Y: pt.Y, Score: &score}
	}
	return []pose.Pose{p}
}
