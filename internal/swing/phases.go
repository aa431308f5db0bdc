package swing

import (
	"math"

	"github.com/ayusman/swingscope/internal/signal"
)

// Fractions of the contact velocity that bound the active swing.
const (
	SwingStartRatio = 0.3
	FollowEndRatio  = 0.2
)

// Phases are the boundary indices of one swing, in series index space.
type Phases struct {
	LoadingStart int
	SwingStart   int
	Contact      int
	FollowEnd    int
}

// DetectPhases walks out from the peak p to find the swing boundaries. The
// backward searches never go below minIndex. Every search stops on the first
// sample that falls below its limit, which becomes the boundary, or just
// before an undetermined sample.
func DetectPhases(p, minIndex int, wrist, orientationVelocity []signal.Value, cfg Config) Phases {
	ph := Phases{LoadingStart: p, SwingStart: p, Contact: p, FollowEnd: p}
	if minIndex < 0 {
		minIndex = 0
	}

	for i := p; i >= minIndex; i-- {
		v, ok := orientationVelocity[i].Get()
		if !ok {
			break
		}
		ph.LoadingStart = i
		if math.Abs(v) < cfg.LoadingRotationThreshold {
			break
		}
	}

	peak := signal.At(wrist, p).Or(0) * cfg.ContactVelocityRatio

	startLimit := SwingStartRatio * peak
	for i := p; i >= minIndex; i-- {
		v, ok := wrist[i].Get()
		if !ok {
			break
		}
		ph.SwingStart = i
		if v < startLimit {
			break
		}
	}

	endLimit := FollowEndRatio * peak
	for i := p; i < len(wrist); i++ {
		v, ok := wrist[i].Get()
		if !ok {
			break
		}
		ph.FollowEnd = i
		if v < endLimit {
			break
		}
	}

	if ph.SwingStart < ph.LoadingStart {
		ph.LoadingStart = ph.SwingStart
	}
	return ph
}
