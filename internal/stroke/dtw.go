package stroke

import (
	"math"
	"sort"
)

// DTWDistance is the dynamic time warping distance between two paths,
// divided by the longer length. Empty paths are infinitely far apart.
func DTWDistance(a, b []PathPoint) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	// Two rolling rows of the (n+1) x (m+1) cost matrix.
	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = math.Inf(1)
	}

	for i := 1; i <= n; i++ {
		curr[0] = math.Inf(1)
		for j := 1; j <= m; j++ {
			curr[j] = pointDistance(a[i-1], b[j-1]) + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}

	return prev[m] / float64(max(n, m))
}

func pointDistance(a, b PathPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// normalizePath scales both axes of a path into [0, 1]. A flat axis maps to 0.
func normalizePath(path []PathPoint) []PathPoint {
	if len(path) == 0 {
		return nil
	}

	minX, maxX := path[0].X, path[0].X
	minY, maxY := path[0].Y, path[0].Y
	for _, p := range path[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	rangeX, rangeY := maxX-minX, maxY-minY

	out := make([]PathPoint, len(path))
	for i, p := range path {
		out[i].Frame = p.Frame
		if rangeX > 0 {
			out[i].X = (p.X - minX) / rangeX
		}
		if rangeY > 0 {
			out[i].Y = (p.Y - minY) / rangeY
		}
	}
	return out
}

// Match is a template scored against one path.
type Match struct {
	Template *Template `json:"-"`
	Type     string    `json:"type"`
	Score    float64   `json:"score"`
	Distance float64   `json:"distance"`
}

// Matcher scores paths against registered templates.
type Matcher struct {
	templates []*Template
	tolerance float64
}

// NewMatcher creates a Matcher accepting distances up to tolerance.
func NewMatcher(tolerance float64) *Matcher {
	return &Matcher{tolerance: tolerance}
}

// AddTemplate registers a template. Nil and empty templates are ignored.
func (m *Matcher) AddTemplate(t *Template) {
	if t == nil || len(t.Path) == 0 {
		return
	}
	m.templates = append(m.templates, t)
}

// RemoveTemplate removes the template with the given ID.
func (m *Matcher) RemoveTemplate(id string) {
	for i, t := range m.templates {
		if t.ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return
		}
	}
}

// Templates returns the registered templates.
func (m *Matcher) Templates() []*Template {
	return m.templates
}

// Match scores path against every template and returns those within
// tolerance, best first. Paths and templates are compared after
// normalizePath, so only the shape counts.
func (m *Matcher) Match(path []PathPoint) []Match {
	input := normalizePath(path)
	if len(input) == 0 {
		return nil
	}

	var matches []Match
	for _, t := range m.templates {
		d := DTWDistance(input, normalizePath(t.Path))
		if math.IsInf(d, 1) || d > m.tolerance {
			continue
		}
		matches = append(matches, Match{
			Template: t,
			Type:     string(t.Type),
			Score:    1 / (1 + d),
			Distance: d,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
