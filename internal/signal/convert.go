package signal

// Scale estimation constants.
const (
	// AssumedPersonHeightM is the height of the player assumed for scaling.
	AssumedPersonHeightM = 1.7
	// TorsoFraction is the torso share of total body height.
	TorsoFraction = 0.30
	// MinTorsoHeightPx discards torso samples shorter than this.
	MinTorsoHeightPx = 20.0
	// DefaultTorsoHeightPx is used when no frame yields a valid torso.
	DefaultTorsoHeightPx = 100.0
)

// EstimateTorsoHeight averages per-frame torso heights in pixels, ignoring
// undetermined frames and heights of MinTorsoHeightPx or less.
func EstimateTorsoHeight(heights []Value) float64 {
	var sum float64
	var n int
	for _, h := range heights {
		v, ok := h.Get()
		if !ok || v <= MinTorsoHeightPx {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return DefaultTorsoHeightPx
	}
	return sum / float64(n)
}

// MetersPerPixel derives the image scale from the average torso height.
func MetersPerPixel(torsoHeightPx float64) float64 {
	if torsoHeightPx <= 0 {
		torsoHeightPx = DefaultTorsoHeightPx
	}
	return (AssumedPersonHeightM * TorsoFraction) / torsoHeightPx
}

// ConvertVelocityToKmh converts a velocity in pixels per frame to km/h.
func ConvertVelocityToKmh(pxPerFrame, metersPerPixel, fps float64) float64 {
	return pxPerFrame * metersPerPixel * fps * 3.6
}

// Conversion carries the scale used to turn pixel velocities into km/h.
type Conversion struct {
	MetersPerPixel float64
	FPS            float64
}

// NewConversion builds a Conversion from per-frame torso heights.
func NewConversion(torsoHeights []Value, fps float64) *Conversion {
	return &Conversion{
		MetersPerPixel: MetersPerPixel(EstimateTorsoHeight(torsoHeights)),
		FPS:            fps,
	}
}

// Kmh converts one pixel velocity.
func (c *Conversion) Kmh(pxPerFrame float64) float64 {
	return ConvertVelocityToKmh(pxPerFrame, c.MetersPerPixel, c.FPS)
}

// Series converts a whole series, keeping None samples.
func (c *Conversion) Series(in []Value) []Value {
	out := make([]Value, len(in))
	for i, x := range in {
		if v, ok := x.Get(); ok {
			out[i] = Some(c.Kmh(v))
		}
	}
	return out
}

// Acceleration is the central difference of a km/h series in km/h per second.
// The first and last samples, and samples next to a gap, are None.
func Acceleration(kmh []Value, fps float64) []Value {
	out := make([]Value, len(kmh))
	if fps <= 0 {
		return out
	}
	dt := 2 / fps
	for i := 1; i < len(kmh)-1; i++ {
		prev, okP := kmh[i-1].Get()
		next, okN := kmh[i+1].Get()
		if okP && okN {
			out[i] = Some((next - prev) / dt)
		}
	}
	return out
}
