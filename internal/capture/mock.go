package capture

import (
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// MockSource plays back in-memory frames for testing.
type MockSource struct {
	frames  []*gocv.Mat
	fps     float64
	index   int
	mu      sync.Mutex
	running bool
}

// NewMockSource creates a source over frames at the given frame rate.
func NewMockSource(frames []*gocv.Mat, fps float64) *MockSource {
	return &MockSource{
		frames: frames,
		fps:    fps,
	}
}

// NewBlankSource creates a source of n empty-looking 640x480 frames.
// Close releases them.
func NewBlankSource(n int, fps float64) *MockSource {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return NewMockSource(frames, fps)
}

func (s *MockSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.index = 0
	return nil
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// Release closes the frames held by the source.
func (s *MockSource) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.frames {
		f.Close()
	}
	s.frames = nil
}

func (s *MockSource) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, ErrSourceNotOpen
	}
	if s.index >= len(s.frames) {
		return nil, io.EOF
	}

	// Clone the frame so the original isn't modified
	frame := s.frames[s.index].Clone()
	s.index++

	return &frame, nil
}

func (s *MockSource) FPS() float64 { return s.fps }

func (s *MockSource) FrameIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *MockSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
