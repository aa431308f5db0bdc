package handedness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/swingscope/internal/monitoring"
	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/testdata"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Pair{Left: 0.5, Right: 0.5}, Normalize(0, 0))
	assert.Equal(t, Pair{Left: 0.25, Right: 0.75}, Normalize(1, 3))
	assert.Equal(t, Pair{Left: 1, Right: 0}, Normalize(2, 0))
}

func TestAnalyzeRightHanded(t *testing.T) {
	res, err := Analyze(testdata.Handed(pose.Right, 3, 90), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, pose.Right, res.DominantHand)
	assert.Greater(t, res.Confidence, 0.7)
	assert.Greater(t, res.RightScore, res.LeftScore)
	assert.InDelta(t, 1.0, res.LeftScore+res.RightScore, 1e-9)

	assert.InDelta(t, 0.75, res.Normalized.AvgVelocity.Right, 1e-3)
	assert.InDelta(t, 0.75, res.Normalized.PeakVelocity.Right, 1e-3)
	assert.InDelta(t, 0.75, res.Normalized.Variance.Right, 1e-3)
	assert.InDelta(t, 0.5, res.Normalized.PeakExtension.Right, 1e-3)
	assert.Equal(t, 90, res.FramesAnalyzed)
}

func TestAnalyzeLeftHanded(t *testing.T) {
	res, err := Analyze(testdata.Handed(pose.Left, 3, 90), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, pose.Left, res.DominantHand)
	assert.Greater(t, res.Confidence, 0.7)
}

func TestAnalyzeStillTieGoesRight(t *testing.T) {
	figs := make([]testdata.Figure, 30)
	for i := range figs {
		figs[i] = testdata.Standing()
	}
	res, err := Analyze(testdata.Sequence(pose.ModelMoveNet, 30, figs), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, pose.Right, res.DominantHand)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
	assert.Zero(t, res.Left.PeakVelocity)
	assert.Zero(t, res.Right.CrossBodyCount)
}

func TestVarianceIsPopulationStdDev(t *testing.T) {
	acc := accumulator{velocities: []float64{2, 4, 4, 4, 5, 5, 7, 9}}
	st := acc.stats(4.5)

	assert.InDelta(t, 5, st.AvgVelocity, 1e-9)
	assert.InDelta(t, 2, st.Variance, 1e-9)
	assert.Equal(t, 9.0, st.PeakVelocity)
	assert.Equal(t, 4, st.HighVelocityFrames)
}

func TestCrossBodyCountsTransitions(t *testing.T) {
	var acc accumulator
	for _, dx := range []float64{5, 6, 0, -3, -4, -2, 7, 8, -1} {
		acc.observeSide(dx)
	}
	assert.Equal(t, 3, acc.crossings)
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := Analyze(&pose.Sequence{}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoKeypoints)

	seq := testdata.Handed(pose.Right, 3, 10)
	cfg := DefaultConfig()
	cfg.PoseIndex = 2
	_, err = Analyze(seq, cfg)
	assert.ErrorIs(t, err, ErrNoKeypoints)

	seq.FPS = 0
	_, err = Analyze(seq, DefaultConfig())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoKeypoints)
}
