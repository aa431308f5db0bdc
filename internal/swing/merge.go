package swing

import "sort"

// clipOverlap returns the number of frames shared by the clip windows of a
// and b.
func clipOverlap(a, b *DetectedSwing) int {
	start := max(a.ClipStartFrame, b.ClipStartFrame)
	end := min(a.ClipEndFrame, b.ClipEndFrame)
	if end <= start {
		return 0
	}
	return end - start
}

func clipLength(s *DetectedSwing) int {
	return max(1, s.ClipEndFrame-s.ClipStartFrame)
}

// Overlaps reports whether the shared part of the two clips covers at least
// ratio of either clip.
func Overlaps(a, b *DetectedSwing, ratio float64) bool {
	o := float64(clipOverlap(a, b))
	return o/float64(clipLength(a)) >= ratio || o/float64(clipLength(b)) >= ratio
}

// Merge combines two overlapping swings. The higher scoring swing keeps its
// classification and measurements; loading start, follow end and the clip
// window widen to cover both.
func Merge(a, b DetectedSwing) DetectedSwing {
	winner, other := a, b
	if b.SwingScore > a.SwingScore {
		winner, other = b, a
	}
	out := winner
	out.LoadingStart = min(a.LoadingStart, b.LoadingStart)
	out.FollowEnd = max(a.FollowEnd, b.FollowEnd)

	if other.ClipStartFrame < out.ClipStartFrame {
		out.ClipStartFrame, out.ClipStartTime = other.ClipStartFrame, other.ClipStartTime
	}
	if other.ClipEndFrame > out.ClipEndFrame {
		out.ClipEndFrame, out.ClipEndTime = other.ClipEndFrame, other.ClipEndTime
	}
	out.ClipDuration = out.ClipEndTime - out.ClipStartTime
	return out
}

// MergeOverlapping folds each swing into the first already accepted swing it
// overlaps, in input order. The result is ordered by contact frame.
func MergeOverlapping(swings []DetectedSwing, ratio float64) []DetectedSwing {
	accepted := make([]DetectedSwing, 0, len(swings))
	for _, s := range swings {
		merged := false
		for j := range accepted {
			if Overlaps(&s, &accepted[j], ratio) {
				accepted[j] = Merge(accepted[j], s)
				merged = true
				break
			}
		}
		if !merged {
			accepted = append(accepted, s)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Frame < accepted[j].Frame
	})
	return accepted
}

// StampPhases labels every frame inside each swing's loading start to follow
// end range. Frames outside any swing are neutral.
func StampPhases(frames []FrameData, swings []DetectedSwing) {
	for i := range frames {
		frames[i].Phase = PhaseNeutral
	}
	if len(frames) == 0 {
		return
	}
	first := frames[0].Frame
	for _, s := range swings {
		for f := s.LoadingStart; f <= s.FollowEnd; f++ {
			i := f - first
			if i < 0 || i >= len(frames) {
				continue
			}
			frames[i].Phase = phaseAt(&s, f)
		}
	}
}

func phaseAt(s *DetectedSwing, f int) Phase {
	switch {
	case f < s.SwingStart:
		return PhaseLoading
	case f < s.ContactFrame:
		return PhaseSwing
	case f == s.ContactFrame:
		return PhaseContact
	default:
		return PhaseFollow
	}
}
