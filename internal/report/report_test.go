package report

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/swingscope/internal/monitoring"
	"github.com/ayusman/swingscope/internal/signal"
	"github.com/ayusman/swingscope/internal/swing"
	"github.com/ayusman/swingscope/testdata"
)

func analysed(t *testing.T) *swing.Result {
	t.Helper()
	monitoring.SetLogger(nil)
	res, err := swing.Analyze(testdata.Forehand(2), swing.DefaultConfig())
	require.NoError(t, err)
	return res
}

func TestChartSeries(t *testing.T) {
	res := analysed(t)
	series := ChartSeries(res)
	require.Len(t, series, 3)
	for _, s := range series {
		assert.Len(t, s.Values, len(res.Frames), s.Name)
	}
	assert.False(t, series[0].Values[0].Valid(), "first frame has no velocity")
	assert.True(t, series[0].Values[45].Valid())
}

func TestSegmentsSplitOnGaps(t *testing.T) {
	frames := []int{0, 1, 2, 3, 4, 5}
	values := []signal.Value{signal.Some(1), signal.Some(2), signal.None, signal.Some(3), signal.None, signal.None}
	segs := segments(frames, values)
	require.Len(t, segs, 2)
	assert.Len(t, segs[0], 2)
	assert.Len(t, segs[1], 1)
	assert.Equal(t, 3.0, segs[1][0].X)
}

func TestWriteChartHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChartHTML(&buf, analysed(t), "Session 1"))

	html := buf.String()
	assert.True(t, strings.Contains(html, "<html"), "expected an html page")
	assert.Contains(t, html, "Session 1")
	assert.Contains(t, html, "wrist km/h")
	assert.Contains(t, html, "forehand")
}

func TestWritePlotPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlotPNG(&buf, analysed(t), "Session 1", 6*vg.Inch, 3*vg.Inch))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestWritePlotPNGNoSwings(t *testing.T) {
	res := analysed(t)
	res.Swings = nil
	var buf bytes.Buffer
	assert.NoError(t, WritePlotPNG(&buf, res, "empty", 4*vg.Inch, 2*vg.Inch))
}
