// Package timeline turns detected swings into generic timeline events for
// consumers that do not know about swing internals.
package timeline

import (
	"sort"

	"github.com/ayusman/swingscope/internal/swing"
)

// Kind is the event type.
type Kind string

const (
	KindSwing       Kind = "swing"
	KindPhase       Kind = "phase"
	KindLoadingPeak Kind = "loading_peak"
	KindTrophy      Kind = "trophy"
	KindContact     Kind = "contact"
	KindLanding     Kind = "landing"
)

var kindOrder = map[Kind]int{
	KindSwing:       0,
	KindPhase:       1,
	KindLoadingPeak: 2,
	KindTrophy:      3,
	KindContact:     4,
	KindLanding:     5,
}

// Event is one interval or point on the timeline. Point events have equal
// start and end.
type Event struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Label      string         `json:"label"`
	SwingID    string         `json:"swingId"`
	StartFrame int            `json:"startFrame"`
	EndFrame   int            `json:"endFrame"`
	Start      float64        `json:"start"`
	End        float64        `json:"end"`
	Data       map[string]any `json:"data,omitempty"`
}

type builder struct {
	fps    float64
	events []Event
}

func (b *builder) seconds(frame int) float64 {
	if b.fps <= 0 {
		return 0
	}
	return float64(frame) / b.fps
}

func (b *builder) add(s *swing.DetectedSwing, kind Kind, label string, start, end int, data map[string]any) {
	b.events = append(b.events, Event{
		ID:         s.ID + ":" + label,
		Kind:       kind,
		Label:      label,
		SwingID:    s.ID,
		StartFrame: start,
		EndFrame:   end,
		Start:      b.seconds(start),
		End:        b.seconds(end),
		Data:       data,
	})
}

func (b *builder) point(s *swing.DetectedSwing, kind Kind, p *swing.Position) {
	if p == nil {
		return
	}
	b.add(s, kind, string(kind), p.Frame, p.Frame, nil)
}

// FromSwings converts swings into events: one swing event spanning the clip,
// one phase event per non-empty phase and point events for the sub-positions.
// Events are ordered by start time, then kind.
func FromSwings(swings []swing.DetectedSwing, fps float64) []Event {
	b := &builder{fps: fps}
	for i := range swings {
		s := &swings[i]

		b.add(s, KindSwing, string(s.SwingType), s.ClipStartFrame, s.ClipEndFrame, map[string]any{
			"swingType":    s.SwingType,
			"dominantSide": s.DominantSide,
			"velocityKmh":  s.VelocityKmh,
			"confidence":   s.Confidence,
		})

		if s.SwingStart > s.LoadingStart {
			b.add(s, KindPhase, string(swing.PhaseLoading), s.LoadingStart, s.SwingStart-1, nil)
		}
		if s.ContactFrame > s.SwingStart {
			b.add(s, KindPhase, string(swing.PhaseSwing), s.SwingStart, s.ContactFrame-1, nil)
		}
		b.add(s, KindPhase, string(swing.PhaseContact), s.ContactFrame, s.ContactFrame, nil)
		if s.FollowEnd > s.ContactFrame {
			b.add(s, KindPhase, string(swing.PhaseFollow), s.ContactFrame+1, s.FollowEnd, nil)
		}

		if s.Serve != nil {
			b.point(s, KindTrophy, s.Serve.Trophy)
			if s.Serve.ContactPoint != nil {
				b.point(s, KindContact, s.Serve.ContactPoint)
			} else {
				b.point(s, KindContact, &swing.Position{Frame: s.ContactFrame})
			}
			b.point(s, KindLanding, s.Serve.Landing)
		} else {
			b.point(s, KindLoadingPeak, s.LoadingPeak)
			b.point(s, KindContact, &swing.Position{Frame: s.ContactFrame})
		}
	}

	sort.SliceStable(b.events, func(i, j int) bool {
		a, c := b.events[i], b.events[j]
		if a.StartFrame != c.StartFrame {
			return a.StartFrame < c.StartFrame
		}
		return kindOrder[a.Kind] < kindOrder[c.Kind]
	})
	return b.events
}
