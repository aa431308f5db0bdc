package swing

import (
	"math"
	"sort"

	"github.com/ayusman/swingscope/internal/signal"
)

// AdaptiveThreshold returns the percentile of the determined scores, raised
// to at least floor. An empty series yields floor.
func AdaptiveThreshold(scores []signal.Value, percentile, floor float64) float64 {
	vals := signal.Floats(scores)
	if len(vals) == 0 {
		return floor
	}
	sort.Float64s(vals)
	idx := int(math.Floor(float64(len(vals)) * percentile / 100))
	if idx >= len(vals) {
		idx = len(vals) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return math.Max(vals[idx], floor)
}

// FindPeaks returns the indices of strict local maxima at or above threshold,
// at least minSeparation samples apart. Candidates are taken left to right;
// a candidate too close to the last accepted peak replaces it only when it
// scores higher. accept, when non-nil, rejects candidates before separation
// is applied.
func FindPeaks(scores []signal.Value, threshold float64, minSeparation int, accept func(i int) bool) []int {
	var peaks []int
	for i := 1; i < len(scores)-1; i++ {
		curr, ok := scores[i].Get()
		if !ok || curr < threshold {
			continue
		}
		prev, okP := scores[i-1].Get()
		next, okN := scores[i+1].Get()
		if !okP || !okN || curr <= prev || curr <= next {
			continue
		}
		if accept != nil && !accept(i) {
			continue
		}

		if n := len(peaks); n > 0 && i-peaks[n-1] < minSeparation {
			last, _ := scores[peaks[n-1]].Get()
			if curr > last {
				peaks[n-1] = i
			}
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}
