// Package report renders an analysis as an interactive chart or a static plot.
package report

import (
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/swingscope/internal/kinematics"
	"github.com/ayusman/swingscope/internal/signal"
	"github.com/ayusman/swingscope/internal/swing"
)

// Series is one plotted line.
type Series struct {
	Name   string
	Values []signal.Value
}

// ChartSeries extracts the lines shown in reports: wrist speed in km/h, the
// swing score and the orientation velocity.
func ChartSeries(res *swing.Result) []Series {
	wrist := make([]signal.Value, len(res.Frames))
	score := make([]signal.Value, len(res.Frames))
	rotation := make([]signal.Value, len(res.Frames))
	for i, f := range res.Frames {
		wrist[i] = f.Channels[kinematics.WristVelocity].ProcessedKmh
		score[i] = f.SwingScore
		rotation[i] = f.Channels[kinematics.OrientationVelocity].Processed
	}
	return []Series{
		{Name: "wrist km/h", Values: wrist},
		{Name: "swing score", Values: score},
		{Name: "rotation deg/frame", Values: rotation},
	}
}

func frameLabels(res *swing.Result) []int {
	out := make([]int, len(res.Frames))
	for i, f := range res.Frames {
		out[i] = f.Frame
	}
	return out
}

// WriteChartHTML renders an echarts line chart with a mark line at every
// contact frame.
func WriteChartHTML(w io.Writer, res *swing.Result, title string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("swings=%d frames=%d fps=%.0f", res.Summary.Total, len(res.Frames), res.Metadata.FPS),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame", NameLocation: "middle", NameGap: 25}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(frameLabels(res))

	for i, s := range ChartSeries(res) {
		data := make([]opts.LineData, len(s.Values))
		for j, v := range s.Values {
			if x, ok := v.Get(); ok {
				data[j] = opts.LineData{Value: x}
			} else {
				// echarts draws a gap for "-"
				data[j] = opts.LineData{Value: "-"}
			}
		}
		var seriesOpts []charts.SeriesOpts
		if i == 0 {
			for _, sw := range res.Swings {
				seriesOpts = append(seriesOpts, charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
					Name:  string(sw.SwingType),
					XAxis: sw.ContactFrame - res.Metadata.FirstFrame,
				}))
			}
		}
		line.AddSeries(s.Name, data, seriesOpts...)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

var plotColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
}

// segments splits a series at undetermined samples so gaps stay visible.
func segments(frames []int, values []signal.Value) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		x, ok := v.Get()
		if !ok {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(frames[i]), Y: x})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// BuildPlot assembles a gonum plot of the report series with a dashed
// vertical line at every contact frame.
func BuildPlot(res *swing.Result, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Value"

	frames := frameLabels(res)
	for i, s := range ChartSeries(res) {
		for k, seg := range segments(frames, s.Values) {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return nil, err
			}
			l.Color = plotColors[i%len(plotColors)]
			l.Width = vg.Points(1)
			p.Add(l)
			if k == 0 {
				p.Legend.Add(s.Name, l)
			}
		}
	}

	if len(res.Swings) > 0 {
		ymax := 1.0
		for _, s := range ChartSeries(res) {
			if sum := signal.Summarize(s.Values); sum.Count > 0 && sum.Max > ymax {
				ymax = sum.Max
			}
		}
		for _, sw := range res.Swings {
			x := float64(sw.ContactFrame)
			l, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: ymax}})
			if err != nil {
				return nil, err
			}
			l.Color = color.Gray{Y: 0x80}
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(l)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePlotPNG renders the plot as PNG.
func WritePlotPNG(w io.Writer, res *swing.Result, title string, width, height vg.Length) error {
	p, err := BuildPlot(res, title)
	if err != nil {
		return fmt.Errorf("build plot: %w", err)
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
