package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ayusman/swingscope/internal/pose"
)

// sequenceFile is the on-disk JSON form of a pose sequence.
type sequenceFile struct {
	FPS       float64             `json:"fps"`
	Model     pose.Model          `json:"model"`
	PoseIndex int                 `json:"poseIndex"`
	Frames    map[int][]pose.Pose `json:"frames"`
}

func writeSequence(w io.Writer, seq *pose.Sequence) error {
	enc := json.NewEncoder(w)
	return enc.Encode(sequenceFile{
		FPS:       seq.FPS,
		Model:     seq.Model,
		PoseIndex: seq.PoseIndex,
		Frames:    seq.Frames,
	})
}

func readSequence(r io.Reader) (*pose.Sequence, error) {
	var f sequenceFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse sequence: %w", err)
	}
	if f.Model == "" {
		f.Model = pose.ModelMoveNet
	}
	seq := &pose.Sequence{
		Frames:    f.Frames,
		FPS:       f.FPS,
		Model:     f.Model,
		PoseIndex: f.PoseIndex,
	}
	if seq.Frames == nil {
		seq.Frames = map[int][]pose.Pose{}
	}
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

func readSequenceFile(path string) (*pose.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readSequence(f)
}
