// Package config loads tuning overrides for the analysis pipeline from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/swingscope/internal/handedness"
	"github.com/ayusman/swingscope/internal/kinematics"
	"github.com/ayusman/swingscope/internal/swing"
)

// DefaultConfigPath is the path to the shipped tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// TuningConfig holds optional overrides. Fields left out of the JSON keep the
// package defaults, so partial files are safe.
type TuningConfig struct {
	// Keypoint gate and pose selection
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	PoseIndex     *int     `json:"pose_index,omitempty"`

	// Swing score
	WristMode      *string  `json:"wrist_mode,omitempty"`
	DominantHand   *string  `json:"dominant_hand,omitempty"`
	RotationWeight *float64 `json:"rotation_weight,omitempty"`

	// Peak finding
	ThresholdPercentile  *float64 `json:"threshold_percentile,omitempty"`
	MinVelocityThreshold *float64 `json:"min_velocity_threshold,omitempty"`
	MinTimeBetweenSwings *string  `json:"min_time_between_swings,omitempty"` // duration string like "1s"
	RequireRotation      *bool    `json:"require_rotation,omitempty"`
	MinRotationVelocity  *float64 `json:"min_rotation_velocity,omitempty"`
	MinVelocityKmh       *float64 `json:"min_velocity_kmh,omitempty"`

	// Phases and classification
	LoadingRotationThreshold *float64 `json:"loading_rotation_threshold,omitempty"`
	ContactVelocityRatio     *float64 `json:"contact_velocity_ratio,omitempty"`
	ClassificationWindow     *int     `json:"classification_window,omitempty"`
	ServeHeightRatio         *float64 `json:"serve_height_ratio,omitempty"`
	TwoHandedRatio           *float64 `json:"two_handed_ratio,omitempty"`
	RotationVoteThreshold    *float64 `json:"rotation_vote_threshold,omitempty"`
	OrientationDeadZone      *float64 `json:"orientation_dead_zone,omitempty"`

	// Events
	MergeOverlapRatio *float64 `json:"merge_overlap_ratio,omitempty"`
	ClipPreRoll       *string  `json:"clip_pre_roll,omitempty"`  // duration string like "500ms"
	ClipPostRoll      *string  `json:"clip_post_roll,omitempty"` // duration string like "500ms"
	TrophyLead        *string  `json:"trophy_lead,omitempty"`    // duration string like "400ms"

	OrientationSmoothing *float64 `json:"orientation_smoothing,omitempty"`

	// Handedness
	HighVelocityThreshold *float64            `json:"high_velocity_threshold,omitempty"`
	HandednessWeights     *handedness.Weights `json:"handedness_weights,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and be under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func parseSeconds(name string, s *string) (float64, error) {
	d, err := time.ParseDuration(*s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, *s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be non-negative, got %s", name, *s)
	}
	return d.Seconds(), nil
}

// Validate checks the values that are set. The full option set is checked
// again by swing.Config.Validate once applied.
func (c *TuningConfig) Validate() error {
	if c.MinConfidence != nil && (*c.MinConfidence < 0 || *c.MinConfidence > 1) {
		return fmt.Errorf("min_confidence must be between 0 and 1, got %f", *c.MinConfidence)
	}
	if c.WristMode != nil && !kinematics.WristMode(*c.WristMode).Valid() {
		return fmt.Errorf("wrist_mode must be both, max or dominant, got %q", *c.WristMode)
	}
	if c.DominantHand != nil {
		switch swing.Hand(*c.DominantHand) {
		case swing.HandRight, swing.HandLeft, swing.HandAuto:
		default:
			return fmt.Errorf("dominant_hand must be right, left or auto, got %q", *c.DominantHand)
		}
	}
	if c.OrientationSmoothing != nil && (*c.OrientationSmoothing < 0 || *c.OrientationSmoothing >= 1) {
		return fmt.Errorf("orientation_smoothing must be in [0, 1), got %f", *c.OrientationSmoothing)
	}
	if c.ClassificationWindow != nil && *c.ClassificationWindow < 1 {
		return fmt.Errorf("classification_window must be positive, got %d", *c.ClassificationWindow)
	}
	for name, s := range map[string]*string{
		"min_time_between_swings": c.MinTimeBetweenSwings,
		"clip_pre_roll":           c.ClipPreRoll,
		"clip_post_roll":          c.ClipPostRoll,
		"trophy_lead":             c.TrophyLead,
	} {
		if s == nil || *s == "" {
			continue
		}
		if _, err := parseSeconds(name, s); err != nil {
			return err
		}
	}
	return nil
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setSeconds(dst *float64, src *string) {
	if src == nil || *src == "" {
		return
	}
	if s, err := time.ParseDuration(*src); err == nil {
		*dst = s.Seconds()
	}
}

// ApplySwing overlays the fields that are set onto cfg.
func (c *TuningConfig) ApplySwing(cfg swing.Config) swing.Config {
	setFloat(&cfg.MinConfidence, c.MinConfidence)
	if c.PoseIndex != nil {
		cfg.PoseIndex = *c.PoseIndex
	}
	if c.WristMode != nil {
		cfg.WristMode = kinematics.WristMode(*c.WristMode)
	}
	if c.DominantHand != nil {
		cfg.DominantHand = swing.Hand(*c.DominantHand)
	}
	setFloat(&cfg.RotationWeight, c.RotationWeight)
	setFloat(&cfg.ThresholdPercentile, c.ThresholdPercentile)
	setFloat(&cfg.MinVelocityThreshold, c.MinVelocityThreshold)
	setSeconds(&cfg.MinTimeBetweenSwings, c.MinTimeBetweenSwings)
	if c.RequireRotation != nil {
		cfg.RequireRotation = *c.RequireRotation
	}
	setFloat(&cfg.MinRotationVelocity, c.MinRotationVelocity)
	setFloat(&cfg.MinVelocityKmh, c.MinVelocityKmh)
	setFloat(&cfg.LoadingRotationThreshold, c.LoadingRotationThreshold)
	setFloat(&cfg.ContactVelocityRatio, c.ContactVelocityRatio)
	if c.ClassificationWindow != nil {
		cfg.ClassificationWindow = *c.ClassificationWindow
	}
	setFloat(&cfg.ServeHeightRatio, c.ServeHeightRatio)
	setFloat(&cfg.TwoHandedRatio, c.TwoHandedRatio)
	setFloat(&cfg.RotationVoteThreshold, c.RotationVoteThreshold)
	setFloat(&cfg.OrientationDeadZone, c.OrientationDeadZone)
	setFloat(&cfg.MergeOverlapRatio, c.MergeOverlapRatio)
	setSeconds(&cfg.ClipPreRoll, c.ClipPreRoll)
	setSeconds(&cfg.ClipPostRoll, c.ClipPostRoll)
	setSeconds(&cfg.TrophyLead, c.TrophyLead)
	setFloat(&cfg.OrientationSmoothing, c.OrientationSmoothing)
	return cfg
}

// ApplyHandedness overlays the fields that are set onto cfg.
func (c *TuningConfig) ApplyHandedness(cfg handedness.Config) handedness.Config {
	setFloat(&cfg.MinConfidence, c.MinConfidence)
	if c.PoseIndex != nil {
		cfg.PoseIndex = *c.PoseIndex
	}
	setFloat(&cfg.HighVelocityThreshold, c.HighVelocityThreshold)
	if c.HandednessWeights != nil {
		cfg.Weights = *c.HandednessWeights
	}
	return cfg
}
