package signal

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Unit names the physical unit of a channel's raw samples.
type Unit string

const (
	UnitPxPerFrame  Unit = "px/frame"
	UnitDegrees     Unit = "deg"
	UnitDegPerFrame Unit = "deg/frame"
	UnitScore       Unit = "score"
)

// Channel is one named, frame-aligned series together with its conditioned
// forms. All slices have the same length as the analysed frame range.
type Channel struct {
	Name    string
	Unit    Unit
	Angular bool

	Raw       []Value
	Processed []Value

	// Only set for px/frame channels.
	RawKmh       []Value
	ProcessedKmh []Value
	Acceleration []Value // km/h per second
}

// IsVelocity reports whether the channel holds pixel velocities.
func (c *Channel) IsVelocity() bool {
	return c.Unit == UnitPxPerFrame
}

// Len returns the number of frames in the channel.
func (c *Channel) Len() int {
	return len(c.Raw)
}

// Set is an ordered registry of channels sharing one frame range.
type Set struct {
	length int
	order  []string
	byName map[string]*Channel
}

// NewSet creates an empty registry for series of the given length.
func NewSet(length int) *Set {
	return &Set{
		length: length,
		byName: make(map[string]*Channel),
	}
}

// Add registers a channel with a fresh raw series of None samples and returns it.
// Adding an existing name returns the existing channel.
func (s *Set) Add(name string, unit Unit, angular bool) *Channel {
	if ch, ok := s.byName[name]; ok {
		return ch
	}
	ch := &Channel{
		Name:    name,
		Unit:    unit,
		Angular: angular,
		Raw:     make([]Value, s.length),
	}
	s.byName[name] = ch
	s.order = append(s.order, name)
	return ch
}

// Get returns the channel with the given name.
func (s *Set) Get(name string) (*Channel, bool) {
	ch, ok := s.byName[name]
	return ch, ok
}

// MustGet returns the channel with the given name and panics if it is missing.
func (s *Set) MustGet(name string) *Channel {
	ch, ok := s.byName[name]
	if !ok {
		panic("signal: unknown channel " + name)
	}
	return ch
}

// Names returns channel names in registration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the shared series length.
func (s *Set) Len() int {
	return s.length
}

// Conditioned returns a new Set with every channel passed through Condition.
// Channels are conditioned independently and the receiver is not modified.
func (s *Set) Conditioned(conv *Conversion) *Set {
	out := NewSet(s.length)
	for _, name := range s.order {
		ch := Condition(*s.byName[name], conv)
		out.byName[name] = &ch
		out.order = append(out.order, name)
	}
	return out
}

// Summary holds statistics over the determined samples of a series.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// Summarize computes statistics over the determined samples only. A series
// with no determined samples yields a zero Summary.
func Summarize(series []Value) Summary {
	xs := Floats(series)
	if len(xs) == 0 {
		return Summary{}
	}
	return Summary{
		Count: len(xs),
		Min:   floats.Min(xs),
		Max:   floats.Max(xs),
		Mean:  stat.Mean(xs, nil),
	}
}
