// Package capture reads video frames with GoCV (OpenCV) and runs them through
// a pose detector to build pose sequences.
package capture

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultFPS is used when the container does not report a frame rate.
const DefaultFPS = 30.0

// ErrSourceNotOpen is returned when trying to read from a source that is not open.
var ErrSourceNotOpen = errors.New("frame source is not open")

// Source defines the interface for frame sources. ReadFrame returns io.EOF
// after the last frame.
type Source interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	FPS() float64
	// FrameIndex is the index of the next frame ReadFrame returns.
	FrameIndex() int
	IsOpen() bool
}

// videoFile reads frames from a video file using GoCV.
type videoFile struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     float64
	index   int
}

// NewVideoFile creates a Source that decodes the video at path.
func NewVideoFile(path string) Source {
	return &videoFile{
		path: path,
		fps:  DefaultFPS,
	}
}

// Open opens the video file and reads its frame rate.
func (v *videoFile) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(v.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", v.path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video %s: not a readable video", v.path)
	}

	v.fps = containerFPS(capture.Get(gocv.VideoCaptureFPS))
	v.capture = capture
	v.running = true
	v.index = 0

	return nil
}

// containerFPS falls back to DefaultFPS for missing or nonsense rates.
func containerFPS(fps float64) float64 {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return DefaultFPS
	}
	return fps
}

// Close closes the video and releases resources.
func (v *videoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		v.running = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.running = false

	return err
}

// ReadFrame reads the next frame.
// The caller is responsible for closing the returned Mat.
func (v *videoFile) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return nil, ErrSourceNotOpen
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, io.EOF
	}
	v.index++

	return &mat, nil
}

// FPS returns the frame rate of the video.
func (v *videoFile) FPS() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.fps
}

// FrameIndex returns the index of the next frame.
func (v *videoFile) FrameIndex() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.index
}

// IsOpen returns true if the video is currently open.
func (v *videoFile) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.running
}
