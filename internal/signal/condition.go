package signal

import "math"

// Drop repair constants.
const (
	// DropRatio is how far below the neighbour average a sample must fall to be
	// considered a dropout.
	DropRatio = 0.3
	// NeighborAgreement bounds the neighbour difference relative to their average.
	NeighborAgreement = 0.5
	// DropFloor is the minimum neighbour average for repair to apply.
	DropFloor = 5.0
)

// SmoothingKernel is the centred 5-tap weighting used by Smooth.
var SmoothingKernel = [5]float64{0.1, 0.2, 0.4, 0.2, 0.1}

// RepairDrops replaces isolated single-frame dropouts with the average of their
// neighbours. A sample is repaired only when it is far below both neighbours,
// the neighbours agree with each other, and their average is above DropFloor.
// The pass runs once, left to right, over a copy of the input.
func RepairDrops(in []Value) []Value {
	out := make([]Value, len(in))
	copy(out, in)

	for i := 1; i < len(out)-1; i++ {
		prev, okP := out[i-1].Get()
		curr, okC := out[i].Get()
		next, okN := out[i+1].Get()
		if !okP || !okC || !okN {
			continue
		}

		avg := (prev + next) / 2
		if curr < DropRatio*avg && math.Abs(prev-next) < NeighborAgreement*avg && avg > DropFloor {
			out[i] = Some(avg)
		}
	}

	return out
}

// Smooth applies SmoothingKernel centred on each sample. Taps that fall outside
// the series or on None samples are left out and the remaining weights are
// renormalised. None samples stay None.
func Smooth(in []Value) []Value {
	out := make([]Value, len(in))
	half := len(SmoothingKernel) / 2

	for i := range in {
		if !in[i].ok {
			out[i] = None
			continue
		}

		var sum, weight float64
		for k, w := range SmoothingKernel {
			j := i + k - half
			if j < 0 || j >= len(in) || !in[j].ok {
				continue
			}
			sum += w * in[j].v
			weight += w
		}
		out[i] = Some(sum / weight)
	}

	return out
}

// Unwrap removes ±360° jumps between consecutive determined angles so that the
// series is continuous. None samples are skipped over.
func Unwrap(in []Value) []Value {
	out := make([]Value, len(in))
	var last float64
	var offset float64
	seen := false

	for i, x := range in {
		if !x.ok {
			out[i] = None
			continue
		}
		if seen {
			d := x.v + offset - last
			for d > 180 {
				offset -= 360
				d -= 360
			}
			for d <= -180 {
				offset += 360
				d += 360
			}
		}
		last = x.v + offset
		out[i] = Some(last)
		seen = true
	}

	return out
}

// Wrap maps every determined angle into (-180, 180].
func Wrap(in []Value) []Value {
	out := make([]Value, len(in))
	for i, x := range in {
		if !x.ok {
			continue
		}
		out[i] = Some(wrap180(x.v))
	}
	return out
}

func wrap180(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Condition returns a copy of ch with Processed filled in by drop repair then
// smoothing. Angular channels are unwrapped first and wrapped back afterwards.
// Velocity channels also get km/h series and acceleration when conv is non-nil.
func Condition(ch Channel, conv *Conversion) Channel {
	out := ch
	out.Raw = append([]Value(nil), ch.Raw...)

	series := out.Raw
	if ch.Angular {
		series = Unwrap(series)
	}

	processed := Smooth(RepairDrops(series))
	if ch.Angular {
		processed = Wrap(processed)
	}
	out.Processed = processed

	if conv != nil && ch.IsVelocity() {
		out.RawKmh = conv.Series(out.Raw)
		out.ProcessedKmh = conv.Series(out.Processed)
		out.Acceleration = Acceleration(out.ProcessedKmh, conv.FPS)
	}

	return out
}
