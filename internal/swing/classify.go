package swing

import (
	"math"

	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/signal"
)

// MinServeLookback is the shortest backward window of the serve check.
const MinServeLookback = 45

// Evidence is what the classifier looks at, indexed like the channels.
type Evidence struct {
	Skeletons           []pose.Skeleton
	Orientation         []signal.Value // processed, wrapped
	OrientationVelocity []signal.Value // processed
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// ServeCheck returns the highest wrist-above-shoulder ratio of either wrist in
// a wide window before p and a short one after it, and whether it reaches
// ratio.
func ServeCheck(skels []pose.Skeleton, p, window int, ratio float64) (float64, bool) {
	back := 4 * window
	if back < MinServeLookback {
		back = MinServeLookback
	}
	lo, hi := clampIndex(p-back, len(skels)), clampIndex(p+window, len(skels))

	best, found := math.Inf(-1), false
	for i := lo; i <= hi; i++ {
		for _, side := range []pose.Side{pose.Left, pose.Right} {
			if r, ok := skels[i].WristHeightRatio(side); ok && r > best {
				best, found = r, true
			}
		}
	}
	if !found {
		return 0, false
	}
	return best, best >= ratio
}

// TwoHandedCheck returns the smallest wrist separation within window frames
// of p and whether it is at most ratio. ok is false when the separation is
// never determinable.
func TwoHandedCheck(skels []pose.Skeleton, p, window int, ratio float64) (minSep float64, twoHanded, ok bool) {
	lo, hi := clampIndex(p-window, len(skels)), clampIndex(p+window, len(skels))
	minSep = math.Inf(1)
	for i := lo; i <= hi; i++ {
		if s, found := skels[i].WristSeparation(); found && s < minSep {
			minSep, ok = s, true
		}
	}
	if !ok {
		return 0, false, false
	}
	return minSep, minSep <= ratio, true
}

// meanOver averages the determined samples in [lo, hi].
func meanOver(series []signal.Value, lo, hi int) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	lo, hi = clampIndex(lo, len(series)), clampIndex(hi, len(series))
	var sum float64
	var n int
	for i := lo; i <= hi; i++ {
		if v, ok := series[i].Get(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Classify decides the stroke type of the swing peaking at p. Rotation and
// orientation are read from the player's point of view: side Left mirrors
// them.
func Classify(ev Evidence, p int, side pose.Side, cfg Config) Type {
	w := cfg.ClassificationWindow

	if _, serve := ServeCheck(ev.Skeletons, p, w, cfg.ServeHeightRatio); serve {
		return TypeServe
	}

	mirror := 1.0
	if side == pose.Left {
		mirror = -1
	}

	backhand := func() Type {
		if _, two, _ := TwoHandedCheck(ev.Skeletons, p, w, cfg.TwoHandedRatio); two {
			return TypeBackhandTwoHand
		}
		return TypeBackhand
	}

	if avg, ok := meanOver(ev.OrientationVelocity, p-w, p+w); ok {
		avg *= mirror
		switch {
		case avg > cfg.RotationVoteThreshold:
			return TypeForehand
		case avg < -cfg.RotationVoteThreshold:
			return backhand()
		}
	}

	if len(ev.Orientation) == 0 {
		return TypeUnknown
	}
	// Absolute turn away from a square stance, weighted towards the backswing.
	lo, hi := clampIndex(p-2*w, len(ev.Orientation)), clampIndex(p+w, len(ev.Orientation))
	offsets := make([]signal.Value, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if o, ok := ev.Orientation[i].Get(); ok {
			offsets = append(offsets, signal.Some(pose.SquareOffset(o)))
		}
	}
	avg, ok := meanOver(offsets, 0, len(offsets)-1)
	if !ok {
		return TypeUnknown
	}
	avg *= mirror
	switch {
	case avg > cfg.OrientationDeadZone:
		return TypeForehand
	case avg < -cfg.OrientationDeadZone:
		return backhand()
	}
	return TypeUnknown
}

// DominantSide compares the two wrist velocities at contact. Similar speeds
// mean both hands carried the swing; a tie of two zeros goes to fallback.
func DominantSide(left, right signal.Value, fallback pose.Side) Dominance {
	l, r := math.Max(left.Or(0), 0), math.Max(right.Or(0), 0)
	symmetry := math.Min(l, r) / math.Max(math.Max(l, r), 0.001)
	if symmetry >= 0.5 {
		return DominanceBoth
	}
	switch {
	case l > r:
		return DominanceLeft
	case r > l:
		return DominanceRight
	}
	return Dominance(fallback)
}

// ServeMarks are serve sub-event indices; -1 means not found.
type ServeMarks struct {
	ContactPoint int
	Trophy       int
	Landing      int
}

// FindServeEvents locates the serve sub-events inside [clipStart, clipEnd].
// The contact point is the highest wrist over the whole clip. The trophy
// position is the frame before contact closest to lead seconds earlier. The
// landing is the lowest front ankle from contact on.
func FindServeEvents(skels []pose.Skeleton, clipStart, clipEnd int, side pose.Side, fps, lead float64) ServeMarks {
	marks := ServeMarks{ContactPoint: -1, Trophy: -1, Landing: -1}
	clipStart, clipEnd = clampIndex(clipStart, len(skels)), clampIndex(clipEnd, len(skels))

	best := math.Inf(-1)
	for i := clipStart; i <= clipEnd; i++ {
		for _, s := range []pose.Side{pose.Left, pose.Right} {
			if r, ok := skels[i].WristHeightRatio(s); ok && r > best {
				best, marks.ContactPoint = r, i
			}
		}
	}

	if c := marks.ContactPoint; c > clipStart {
		target := float64(c) - lead*fps
		t := int(math.Round(target))
		if t < clipStart {
			t = clipStart
		}
		if t > c-1 {
			t = c - 1
		}
		marks.Trophy = t
	}

	from := (clipStart + clipEnd) / 2
	if marks.ContactPoint >= 0 {
		from = marks.ContactPoint
	}
	front := side.Opposite().Ankle()
	lowest := math.Inf(-1)
	for i := from; i <= clipEnd; i++ {
		if a, ok := skels[i].Joint(front); ok && a.Y > lowest {
			lowest, marks.Landing = a.Y, i
		}
	}
	return marks
}

// FindLoadingPeak returns the index in [loadingStart, contact) whose
// orientation is furthest from the orientation at contact.
func FindLoadingPeak(orientation []signal.Value, loadingStart, contact int) (int, bool) {
	ref, ok := signal.At(orientation, contact).Get()
	if !ok {
		return 0, false
	}
	best, idx := -1.0, -1
	for i := clampIndex(loadingStart, len(orientation)); i < contact; i++ {
		if o, ok := orientation[i].Get(); ok {
			if d := pose.AngularDistance(o, ref); d > best {
				best, idx = d, i
			}
		}
	}
	return idx, idx >= 0
}
