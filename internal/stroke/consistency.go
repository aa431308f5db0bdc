package stroke

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/swing"
)

// ErrNoSwings is returned when there is nothing to compare.
var ErrNoSwings = errors.New("no swings to compare")

// SwingConsistency scores one swing against the template of its type.
type SwingConsistency struct {
	SwingID  string     `json:"swingId"`
	Type     swing.Type `json:"type"`
	Points   int        `json:"points"`
	Distance float64    `json:"distance"`
	Score    float64    `json:"score"`

	// Closest is the best matching template type, empty when no template is
	// within tolerance.
	Closest swing.Type `json:"closest,omitempty"`
}

// TypeConsistency aggregates the swings of one type.
type TypeConsistency struct {
	Type         swing.Type `json:"type"`
	Count        int        `json:"count"`
	MeanScore    float64    `json:"meanScore"`
	MeanDistance float64    `json:"meanDistance"`
	StdDistance  float64    `json:"stdDistance"`
}

// Report is the stroke consistency of one analysis.
type Report struct {
	Swings    []SwingConsistency `json:"swings"`
	Types     []TypeConsistency  `json:"types"`
	Templates []*Template        `json:"templates"`
}

// Analyze traces every swing in seq, builds one template per swing type and
// scores each swing against its own type. Swings whose path has fewer than
// two points are left out. A type with a single swing scores perfectly
// against itself.
func Analyze(seq *pose.Sequence, swings []swing.DetectedSwing, cfg Config) (*Report, error) {
	if len(swings) == 0 {
		return nil, ErrNoSwings
	}

	paths := make(map[string][]PathPoint, len(swings))
	byType := make(map[swing.Type][][]PathPoint)
	var order []swing.Type
	for i := range swings {
		sw := &swings[i]
		p := WristPath(seq, sw, cfg)
		if len(p) < 2 {
			continue
		}
		paths[sw.ID] = p
		if _, ok := byType[sw.SwingType]; !ok {
			order = append(order, sw.SwingType)
		}
		byType[sw.SwingType] = append(byType[sw.SwingType], p)
	}
	if len(paths) == 0 {
		return nil, ErrNoSwings
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	matcher := NewMatcher(cfg.Tolerance)
	templates := make(map[swing.Type]*Template, len(order))
	for _, t := range order {
		avg, err := Train(byType[t], cfg.ResampleLength)
		if err != nil {
			return nil, err
		}
		tmpl := &Template{ID: string(t), Type: t, Path: avg, Samples: len(byType[t])}
		templates[t] = tmpl
		matcher.AddTemplate(tmpl)
	}

	report := &Report{Templates: matcher.Templates()}
	distances := make(map[swing.Type][]float64, len(order))
	for i := range swings {
		sw := &swings[i]
		p, ok := paths[sw.ID]
		if !ok {
			continue
		}
		// Compared at template length so identical strokes score exactly 1.
		rp := resample(p, cfg.ResampleLength)
		d := DTWDistance(normalizePath(rp), normalizePath(templates[sw.SwingType].Path))
		sc := SwingConsistency{
			SwingID:  sw.ID,
			Type:     sw.SwingType,
			Points:   len(p),
			Distance: d,
			Score:    1 / (1 + d),
		}
		if m := matcher.Match(rp); len(m) > 0 {
			sc.Closest = m[0].Template.Type
		}
		report.Swings = append(report.Swings, sc)
		distances[sw.SwingType] = append(distances[sw.SwingType], d)
	}

	for _, t := range order {
		ds := distances[t]
		scores := make([]float64, len(ds))
		for i, d := range ds {
			scores[i] = 1 / (1 + d)
		}
		tc := TypeConsistency{
			Type:         t,
			Count:        len(ds),
			MeanScore:    stat.Mean(scores, nil),
			MeanDistance: stat.Mean(ds, nil),
		}
		if len(ds) > 1 {
			_, variance := stat.PopMeanVariance(ds, nil)
			tc.StdDistance = math.Sqrt(variance)
		}
		report.Types = append(report.Types, tc)
	}

	return report, nil
}
