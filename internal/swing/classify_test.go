package swing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/signal"
	"github.com/ayusman/swingscope/testdata"
)

func skeletons(n int, edit func(i int, f *testdata.Figure)) []pose.Skeleton {
	out := make([]pose.Skeleton, n)
	for i := range out {
		fig := testdata.Standing()
		if edit != nil {
			edit(i, &fig)
		}
		p := fig.Pose(pose.ModelMoveNet)
		out[i] = pose.Resolve(pose.ModelMoveNet, &p, 0.3)
	}
	return out
}

func constant(n int, v float64) []signal.Value {
	out := make([]signal.Value, n)
	for i := range out {
		out[i] = signal.Some(v)
	}
	return out
}

func TestServeCheck(t *testing.T) {
	raised := skeletons(60, func(i int, f *testdata.Figure) {
		if i == 10 {
			// 90px above the shoulder line on a 120px torso.
			f.RightWrist = pose.Point{X: 20, Y: -150}
		}
	})

	ratio, serve := ServeCheck(raised, 50, 5, 0.4)
	assert.True(t, serve, "a raised wrist 40 frames back is inside the lookback")
	assert.InDelta(t, 0.75, ratio, 1e-9)

	_, serve = ServeCheck(raised, 59, 5, 0.4)
	assert.False(t, serve, "49 frames back is outside the lookback")

	_, serve = ServeCheck(skeletons(60, nil), 30, 5, 0.4)
	assert.False(t, serve)
}

func TestTwoHandedCheck(t *testing.T) {
	together := skeletons(20, func(i int, f *testdata.Figure) {
		if i == 12 {
			f.LeftWrist = pose.Point{X: -10, Y: 0}
			f.RightWrist = pose.Point{X: 10, Y: 0}
		}
	})
	sep, two, ok := TwoHandedCheck(together, 10, 5, 0.6)
	assert.True(t, ok)
	assert.True(t, two)
	assert.InDelta(t, 20.0/60.0, sep, 1e-9)

	_, two, ok = TwoHandedCheck(skeletons(20, nil), 10, 5, 0.6)
	assert.True(t, ok)
	assert.False(t, two)

	hidden := skeletons(20, func(_ int, f *testdata.Figure) {
		f.Missing = []pose.Joint{pose.LeftWrist}
	})
	_, _, ok = TwoHandedCheck(hidden, 10, 5, 0.6)
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	const n = 40
	cfg := DefaultConfig()
	apart := skeletons(n, nil)
	together := skeletons(n, func(_ int, f *testdata.Figure) {
		f.LeftWrist = pose.Point{X: -10, Y: 0}
		f.RightWrist = pose.Point{X: 10, Y: 0}
	})

	tests := []struct {
		name string
		ev   Evidence
		side pose.Side
		want Type
	}{
		{
			name: "positive rotation right-handed",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, 0), OrientationVelocity: constant(n, 2)},
			side: pose.Right,
			want: TypeForehand,
		},
		{
			name: "negative rotation right-handed",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, 0), OrientationVelocity: constant(n, -2)},
			side: pose.Right,
			want: TypeBackhand,
		},
		{
			name: "negative rotation with wrists together",
			ev:   Evidence{Skeletons: together, Orientation: constant(n, 0), OrientationVelocity: constant(n, -2)},
			side: pose.Right,
			want: TypeBackhandTwoHand,
		},
		{
			name: "negative rotation left-handed",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, 0), OrientationVelocity: constant(n, -2)},
			side: pose.Left,
			want: TypeForehand,
		},
		{
			name: "orientation fallback open",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, 30), OrientationVelocity: constant(n, 0)},
			side: pose.Right,
			want: TypeForehand,
		},
		{
			name: "orientation fallback closed",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, -30), OrientationVelocity: constant(n, 0)},
			side: pose.Right,
			want: TypeBackhand,
		},
		{
			name: "inside dead zone",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, 10), OrientationVelocity: constant(n, 0.2)},
			side: pose.Right,
			want: TypeUnknown,
		},
		{
			name: "held open stance without rotation",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, 60), OrientationVelocity: constant(n, 0)},
			side: pose.Right,
			want: TypeForehand,
		},
		{
			name: "held open stance left-handed",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, 60), OrientationVelocity: constant(n, 0)},
			side: pose.Left,
			want: TypeBackhand,
		},
		{
			name: "open stance filmed from the front",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, -120), OrientationVelocity: constant(n, 0)},
			side: pose.Right,
			want: TypeForehand,
		},
		{
			name: "square stance",
			ev:   Evidence{Skeletons: apart, Orientation: constant(n, 0), OrientationVelocity: constant(n, 0)},
			side: pose.Right,
			want: TypeUnknown,
		},
		{
			name: "no orientation at all",
			ev:   Evidence{Skeletons: apart, Orientation: make([]signal.Value, n), OrientationVelocity: make([]signal.Value, n)},
			side: pose.Right,
			want: TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ev, 20, tt.side, cfg))
		})
	}
}

func TestFindServeEvents(t *testing.T) {
	skels := skeletons(40, func(i int, f *testdata.Figure) {
		if i == 25 {
			f.RightWrist = pose.Point{X: 20, Y: -150}
		}
		if i == 33 {
			f.LeftAnkleDrop = 10
		}
		if i == 36 {
			f.RightAnkleDrop = 30
		}
	})

	marks := FindServeEvents(skels, 5, 39, pose.Right, 30, 0.4)
	assert.Equal(t, ServeMarks{ContactPoint: 25, Trophy: 13, Landing: 33}, marks)

	marks = FindServeEvents(skels, 20, 39, pose.Right, 30, 0.4)
	assert.Equal(t, 20, marks.Trophy, "trophy clamps to the clip start")

	marks = FindServeEvents(skels, 5, 39, pose.Left, 30, 0.4)
	assert.Equal(t, 36, marks.Landing, "left-handers land on the right foot")
}
