package stroke

import (
	"errors"
	"fmt"

	"github.com/ayusman/swingscope/internal/swing"
)

// Template is the mean wrist path of one swing type.
type Template struct {
	ID      string      `json:"id"`
	Type    swing.Type  `json:"type"`
	Path    []PathPoint `json:"path"`
	Samples int         `json:"samples"`
}

// Train averages paths into one path of length n. Every path needs at least
// two points. Frames are renumbered 0..n-1.
func Train(paths [][]PathPoint, n int) ([]PathPoint, error) {
	if len(paths) == 0 {
		return nil, errors.New("no paths provided")
	}
	if n < 2 {
		return nil, fmt.Errorf("invalid template length %d", n)
	}
	for i, p := range paths {
		if len(p) < 2 {
			return nil, fmt.Errorf("path %d has insufficient points", i)
		}
	}

	avg := make([]PathPoint, n)
	for _, p := range paths {
		for i, q := range resample(p, n) {
			avg[i].X += q.X
			avg[i].Y += q.Y
		}
	}
	k := float64(len(paths))
	for i := range avg {
		avg[i].X /= k
		avg[i].Y /= k
		avg[i].Frame = i
	}
	return avg, nil
}

// resample linearly interpolates path to exactly n points. Frames are
// interpolated and rounded.
func resample(path []PathPoint, n int) []PathPoint {
	if len(path) == 0 {
		return nil
	}
	if len(path) == 1 || n <= 1 {
		return []PathPoint{path[0]}
	}

	out := make([]PathPoint, n)
	last := len(path) - 1
	for i := range out {
		pos := float64(i) * float64(last) / float64(n-1)
		idx := min(int(pos), last-1)
		frac := pos - float64(idx)

		a, b := path[idx], path[idx+1]
		out[i] = PathPoint{
			X:     a.X + frac*(b.X-a.X),
			Y:     a.Y + frac*(b.Y-a.Y),
			Frame: a.Frame + int(frac*float64(b.Frame-a.Frame)+0.5),
		}
	}
	return out
}
