package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/swingscope/internal/handedness"
	"github.com/ayusman/swingscope/internal/kinematics"
	"github.com/ayusman/swingscope/internal/swing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadTuningConfig(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
  "wrist_mode": "dominant",
  "dominant_hand": "left",
  "threshold_percentile": 80,
  "min_time_between_swings": "1500ms",
  "require_rotation": true,
  "clip_pre_roll": "250ms"
}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.WristMode == nil || *cfg.WristMode != "dominant" {
		t.Errorf("Expected WristMode dominant, got %v", cfg.WristMode)
	}
	if cfg.RotationWeight != nil {
		t.Errorf("Expected RotationWeight unset, got %v", *cfg.RotationWeight)
	}

	got := cfg.ApplySwing(swing.DefaultConfig())
	want := swing.DefaultConfig()
	want.WristMode = kinematics.WristDominant
	want.DominantHand = swing.HandLeft
	want.ThresholdPercentile = 80
	want.MinTimeBetweenSwings = 1.5
	want.RequireRotation = true
	want.ClipPreRoll = 0.25
	if got != want {
		t.Errorf("ApplySwing() = %+v, want %+v", got, want)
	}
}

func TestApplyHandedness(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
  "min_confidence": 0.5,
  "high_velocity_threshold": 20,
  "handedness_weights": {"avgVelocity": 1, "peakVelocity": 0, "variance": 0, "peakExtension": 0, "crossBodyCount": 0}
}`)
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	got := cfg.ApplyHandedness(handedness.DefaultConfig())
	if got.MinConfidence != 0.5 || got.HighVelocityThreshold != 20 {
		t.Errorf("unexpected handedness config %+v", got)
	}
	if got.Weights != (handedness.Weights{AvgVelocity: 1}) {
		t.Errorf("unexpected weights %+v", got.Weights)
	}
}

func TestDefaultsFileMatchesCode(t *testing.T) {
	cfg, err := LoadTuningConfig(filepath.Join("..", "..", DefaultConfigPath))
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	if got := cfg.ApplySwing(swing.DefaultConfig()); got != swing.DefaultConfig() {
		t.Errorf("defaults file drifted from swing.DefaultConfig:\n got %+v\nwant %+v", got, swing.DefaultConfig())
	}
	if got := cfg.ApplyHandedness(handedness.DefaultConfig()); got != handedness.DefaultConfig() {
		t.Errorf("defaults file drifted from handedness.DefaultConfig:\n got %+v\nwant %+v", got, handedness.DefaultConfig())
	}
}

func TestLoadTuningConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "tuning.yaml", `{}`, ".json extension"},
		{"bad json", "tuning.json", `{`, "parse config"},
		{"confidence range", "tuning.json", `{"min_confidence": 2}`, "min_confidence"},
		{"wrist mode", "tuning.json", `{"wrist_mode": "fastest"}`, "wrist_mode"},
		{"dominant hand", "tuning.json", `{"dominant_hand": "both"}`, "dominant_hand"},
		{"duration", "tuning.json", `{"clip_pre_roll": "soon"}`, "clip_pre_roll"},
		{"negative duration", "tuning.json", `{"trophy_lead": "-1s"}`, "trophy_lead"},
		{"window", "tuning.json", `{"classification_window": 0}`, "classification_window"},
		{"orientation smoothing", "tuning.json", `{"orientation_smoothing": 1}`, "orientation_smoothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTuningConfig(writeConfig(t, tt.file, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("too large", func(t *testing.T) {
		big := `{"pose_index": 0` + strings.Repeat(" ", maxFileSize) + `}`
		_, err := LoadTuningConfig(writeConfig(t, "big.json", big))
		if err == nil || !strings.Contains(err.Error(), "too large") {
			t.Errorf("expected size error, got %v", err)
		}
	})
}
