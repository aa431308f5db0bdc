package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/swing"
	"github.com/ayusman/swingscope/testdata"
)

func TestSequenceFile(t *testing.T) {
	seq := testdata.Forehand(2)

	var buf bytes.Buffer
	if err := writeSequence(&buf, seq); err != nil {
		t.Fatalf("writeSequence() error = %v", err)
	}

	got, err := readSequence(&buf)
	if err != nil {
		t.Fatalf("readSequence() error = %v", err)
	}
	if got.FPS != seq.FPS || got.Model != seq.Model || len(got.Frames) != len(seq.Frames) {
		t.Errorf("sequence mismatch: fps=%v model=%s frames=%d", got.FPS, got.Model, len(got.Frames))
	}
}

func TestReadSequence_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", "{"},
		{"zero fps", `{"fps":0}`},
		{"unknown model", `{"fps":30,"model":"openpose"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readSequence(strings.NewReader(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadSequence_Defaults(t *testing.T) {
	seq, err := readSequence(strings.NewReader(`{"fps":25}`))
	if err != nil {
		t.Fatalf("readSequence() error = %v", err)
	}
	if seq.Model != pose.ModelMoveNet {
		t.Errorf("model = %s, want movenet", seq.Model)
	}
	if seq.Frames == nil {
		t.Error("frames should be non-nil")
	}
}

func TestRunnerConfig(t *testing.T) {
	cfg, err := runnerConfig("")
	if err != nil {
		t.Fatalf("runnerConfig() error = %v", err)
	}
	if cfg.Swing.DominantHand != swing.HandRight {
		t.Errorf("default hand = %s", cfg.Swing.DominantHand)
	}

	if _, err := runnerConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing tuning file")
	}

	path := filepath.Join("..", "..", "config", "tuning.defaults.json")
	if _, err := os.Stat(path); err != nil {
		t.Skip("defaults file not available")
	}
	if _, err := runnerConfig(path); err != nil {
		t.Errorf("runnerConfig(defaults) error = %v", err)
	}
}

func TestDashboardURL(t *testing.T) {
	if got := dashboardURL(":8080"); got != "http://localhost:8080/" {
		t.Errorf("dashboardURL(:8080) = %q", got)
	}
	if got := dashboardURL("127.0.0.1:9000"); got != "http://127.0.0.1:9000/" {
		t.Errorf("dashboardURL() = %q", got)
	}
}
