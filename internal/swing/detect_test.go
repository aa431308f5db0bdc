package swing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/swingscope/internal/kinematics"
	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/testdata"
)

func TestAnalyzeForehand(t *testing.T) {
	res, err := Analyze(testdata.Forehand(2), DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Swings, 1)

	s := res.Swings[0]
	assert.InDelta(t, 45, s.ContactFrame, 2)
	assert.Equal(t, s.ContactFrame, s.Frame)
	assert.Equal(t, TypeForehand, s.SwingType)
	assert.Equal(t, DominanceRight, s.DominantSide)
	assert.LessOrEqual(t, s.LoadingStart, 25)
	assert.GreaterOrEqual(t, s.FollowEnd, 48)
	assert.LessOrEqual(t, s.FollowEnd, 60)
	assert.Less(t, s.LoadingStart, s.SwingStart)
	assert.Less(t, s.SwingStart, s.ContactFrame)

	assert.Equal(t, 1.0, s.Confidence)
	assert.Greater(t, s.VelocityKmh, 7.0)
	assert.Less(t, s.VelocityKmh, 11.0)
	assert.Greater(t, s.RotationRange, 30.0)
	assert.InDelta(t, 2, s.PeakRotationVelocity, 0.5)
	assert.True(t, s.OrientationAtContact.Valid())
	assert.NotEmpty(t, s.ID)

	require.NotNil(t, s.LoadingPeak)
	assert.LessOrEqual(t, s.LoadingPeak.Frame, 27)
	assert.Nil(t, s.Serve)

	assert.Equal(t, s.LoadingStart-15, s.ClipStartFrame)
	assert.Equal(t, s.FollowEnd+15, s.ClipEndFrame)
	assert.InDelta(t, s.ClipEndTime-s.ClipStartTime, s.ClipDuration, 1e-9)

	assert.Equal(t, Summary{
		Total:              1,
		Forehand:           1,
		AverageVelocityKmh: s.VelocityKmh,
		MaxVelocityKmh:     s.VelocityKmh,
		AverageRotation:    s.RotationRange,
	}, res.Summary)

	assert.Equal(t, 90, res.Metadata.FramesAnalyzed)
	assert.InDelta(t, 3.0, res.Metadata.VideoDuration, 1e-9)
	assert.Equal(t, pose.Right, res.Metadata.DominantHand)
	assert.GreaterOrEqual(t, res.Metadata.Threshold, 3.0)
}

func TestAnalyzeFramePhases(t *testing.T) {
	res, err := Analyze(testdata.Forehand(2), DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Frames, 90)
	require.Len(t, res.Swings, 1)
	s := res.Swings[0]

	assert.Equal(t, PhaseNeutral, res.Frames[s.LoadingStart-1].Phase)
	assert.Equal(t, PhaseLoading, res.Frames[s.LoadingStart].Phase)
	assert.Equal(t, PhaseSwing, res.Frames[s.SwingStart].Phase)
	assert.Equal(t, PhaseContact, res.Frames[s.ContactFrame].Phase)
	assert.Equal(t, PhaseFollow, res.Frames[s.FollowEnd].Phase)
	assert.Equal(t, PhaseNeutral, res.Frames[s.FollowEnd+1].Phase)

	wrist := res.Frames[s.ContactFrame].Channels[kinematics.WristVelocity]
	assert.True(t, wrist.Processed.Valid())
	assert.True(t, wrist.ProcessedKmh.Valid())
	knee := res.Frames[s.ContactFrame].Channels[kinematics.LeftKneeBend]
	assert.False(t, knee.ProcessedKmh.Valid(), "angles carry no km/h series")
	assert.False(t, res.Frames[0].SwingScore.Valid())
}

func TestAnalyzeNoRotationRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireRotation = true

	res, err := Analyze(testdata.Forehand(0), cfg)
	require.NoError(t, err)
	assert.Empty(t, res.Swings)
	assert.Equal(t, 0, res.Summary.Total)
}

func TestAnalyzeArmSwingWithoutRotation(t *testing.T) {
	res, err := Analyze(testdata.Forehand(0), DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Swings, 1)

	s := res.Swings[0]
	assert.Equal(t, 45, s.ContactFrame)
	assert.Equal(t, TypeUnknown, s.SwingType)
	assert.Equal(t, s.SwingStart, s.LoadingStart)
	assert.Equal(t, 1, res.Summary.Unknown)
}

func TestAnalyzeMinVelocityKmh(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinVelocityKmh = 50

	res, err := Analyze(testdata.Forehand(2), cfg)
	require.NoError(t, err)
	assert.Empty(t, res.Swings)
}

func TestAnalyzeServe(t *testing.T) {
	res, err := Analyze(testdata.Serve(), DefaultConfig())
	require.NoError(t, err)
	require.Len(t, res.Swings, 1)

	s := res.Swings[0]
	assert.Equal(t, TypeServe, s.SwingType)
	assert.Nil(t, s.LoadingPeak)
	require.NotNil(t, s.Serve)
	require.NotNil(t, s.Serve.ContactPoint)
	require.NotNil(t, s.Serve.Trophy)
	require.NotNil(t, s.Serve.Landing)

	assert.InDelta(t, 45, s.Serve.ContactPoint.Frame, 5)
	assert.Less(t, s.Serve.Trophy.Frame, s.Serve.ContactPoint.Frame)
	assert.InDelta(t, s.Serve.ContactPoint.Frame-12, s.Serve.Trophy.Frame, 1)
	assert.Equal(t, 55, s.Serve.Landing.Frame)
	assert.Equal(t, 1, res.Summary.Serve)
}

func TestAnalyzeAutoHand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DominantHand = HandAuto

	res, err := Analyze(testdata.Forehand(2), cfg)
	require.NoError(t, err)
	assert.Equal(t, pose.Right, res.Metadata.DominantHand)
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := Analyze(&pose.Sequence{}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoKeypoints)

	_, err = Analyze(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoKeypoints)

	cfg := DefaultConfig()
	cfg.PoseIndex = 3
	_, err = Analyze(testdata.Forehand(2), cfg)
	assert.ErrorIs(t, err, ErrNoKeypoints)

	cfg = DefaultConfig()
	cfg.ThresholdPercentile = 120
	_, err = Analyze(testdata.Forehand(2), cfg)
	assert.Error(t, err)

	wide := &pose.Sequence{
		Frames: map[int][]pose.Pose{-(1 << 62): {testdata.Standing().Pose(pose.ModelMoveNet)}, 1 << 62: {testdata.Standing().Pose(pose.ModelMoveNet)}},
		FPS:    30,
		Model:  pose.ModelMoveNet,
	}
	_, err = Analyze(wide, DefaultConfig())
	assert.ErrorIs(t, err, pose.ErrFrameSpan)
}

func TestAnalyzeOrientationSmoothingRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrientationSmoothing = 1

	_, err := Analyze(testdata.Forehand(2), cfg)
	assert.Error(t, err)
	_, err = AnalyzeWithTracker(testdata.Forehand(2), cfg, pose.NewOrientationTracker(0.35))
	assert.Error(t, err)

	// The persistent tracker takes the configured weight.
	cfg.OrientationSmoothing = 0
	tracker := pose.NewOrientationTracker(0.35)
	withTracker, err := AnalyzeWithTracker(testdata.Forehand(2), cfg, tracker)
	require.NoError(t, err)
	assert.Zero(t, tracker.Smoothing)
	fresh, err := Analyze(testdata.Forehand(2), cfg)
	require.NoError(t, err)
	require.Len(t, withTracker.Swings, len(fresh.Swings))
	for i := range fresh.Swings {
		assert.Equal(t, fresh.Swings[i].SwingType, withTracker.Swings[i].SwingType)
		assert.Equal(t, fresh.Swings[i].ContactFrame, withTracker.Swings[i].ContactFrame)
	}
}

func TestAnalyzeLeavesInputAlone(t *testing.T) {
	seq := testdata.Forehand(2)
	before, err := json.Marshal(seq)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.PoseIndex = 0
	_, err = Analyze(seq, cfg)
	require.NoError(t, err)

	after, err := json.Marshal(seq)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestAnalyzeRepeatable(t *testing.T) {
	tracker := pose.NewOrientationTracker(0.35)
	first, err := AnalyzeWithTracker(testdata.Forehand(2), DefaultConfig(), tracker)
	require.NoError(t, err)
	second, err := AnalyzeWithTracker(testdata.Forehand(2), DefaultConfig(), tracker)
	require.NoError(t, err)

	require.Len(t, second.Swings, len(first.Swings))
	for i := range first.Swings {
		a, b := first.Swings[i], second.Swings[i]
		a.ID, b.ID = "", ""
		assert.Equal(t, a, b)
	}
}
