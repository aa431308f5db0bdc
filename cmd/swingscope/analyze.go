package main

import (
	"encoding/json"
	"errors"
	"flag"
	"os"

	"gonum.org/v1/plot/vg"

	"github.com/ayusman/swingscope/internal/app"
	"github.com/ayusman/swingscope/internal/report"
	"github.com/ayusman/swingscope/internal/stroke"
	"github.com/ayusman/swingscope/internal/swing"
	"github.com/ayusman/swingscope/internal/timeline"
)

type analyzeOutput struct {
	Summary    swing.Summary         `json:"summary"`
	Metadata   swing.Metadata        `json:"metadata"`
	Handedness any                   `json:"handedness,omitempty"`
	Swings     []swing.DetectedSwing `json:"swings"`
	Timeline   []timeline.Event      `json:"timeline,omitempty"`
	Strokes    *stroke.Report        `json:"strokes,omitempty"`
}

// runAnalyze analyses a sequence file and prints the result as JSON.
func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	tuning := fs.String("tuning", "", "JSON tuning file overlaying the analysis defaults")
	hand := fs.String("hand", "", "dominant hand: right, left or auto (overrides tuning)")
	withTimeline := fs.Bool("timeline", false, "include timeline events")
	withStrokes := fs.Bool("consistency", false, "include stroke consistency")
	chart := fs.String("chart", "", "write an HTML chart to this file")
	plotFile := fs.String("plot", "", "write a PNG plot to this file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("expected exactly one sequence file")
	}

	cfg, err := runnerConfig(*tuning)
	if err != nil {
		return err
	}
	if *hand != "" {
		cfg.Swing.DominantHand = swing.Hand(*hand)
		if err := cfg.Swing.Validate(); err != nil {
			return err
		}
	}

	seq, err := readSequenceFile(fs.Arg(0))
	if err != nil {
		return err
	}

	a, err := app.New(cfg).Run(app.Input{Sequence: seq})
	if err != nil {
		return err
	}

	if *chart != "" {
		if err := writeFile(*chart, func(f *os.File) error {
			return report.WriteChartHTML(f, a.Result, fs.Arg(0))
		}); err != nil {
			return err
		}
	}
	if *plotFile != "" {
		if err := writeFile(*plotFile, func(f *os.File) error {
			return report.WritePlotPNG(f, a.Result, fs.Arg(0), 10*vg.Inch, 4*vg.Inch)
		}); err != nil {
			return err
		}
	}

	out := analyzeOutput{
		Summary:  a.Result.Summary,
		Metadata: a.Result.Metadata,
		Swings:   a.Result.Swings,
	}
	if a.Handedness != nil {
		out.Handedness = a.Handedness
	}
	if *withTimeline {
		out.Timeline = timeline.FromSwings(a.Result.Swings, a.Result.Metadata.FPS)
	}
	if *withStrokes && len(a.Result.Swings) > 0 {
		scfg := stroke.DefaultConfig()
		scfg.PoseIndex = seq.PoseIndex
		scfg.Hand = a.Result.Metadata.DominantHand
		out.Strokes, err = stroke.Analyze(seq, a.Result.Swings, scfg)
		if err != nil && !errors.Is(err, stroke.ErrNoSwings) {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
