// Package swing finds sport swings in a pose sequence. It conditions the
// kinematic channels, picks swing score peaks, walks out the phase
// boundaries, classifies each stroke and merges overlapping detections.
package swing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/swingscope/internal/handedness"
	"github.com/ayusman/swingscope/internal/kinematics"
	"github.com/ayusman/swingscope/internal/monitoring"
	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/signal"
)

// Analyze runs swing detection over seq with a fresh orientation tracker.
func Analyze(seq *pose.Sequence, cfg Config) (*Result, error) {
	return AnalyzeWithTracker(seq, cfg, nil)
}

// AnalyzeWithTracker runs swing detection using tracker for body
// orientation. The tracker is reset before use and its smoothing set from
// cfg. The input sequence is not modified.
func AnalyzeWithTracker(seq *pose.Sequence, cfg Config, tracker *pose.OrientationTracker) (*Result, error) {
	if seq.Empty() {
		return nil, ErrNoKeypoints
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	selected := *seq
	selected.PoseIndex = cfg.PoseIndex

	side, err := resolveSide(&selected, cfg)
	if err != nil {
		return nil, err
	}

	if tracker == nil {
		tracker = pose.NewOrientationTracker(cfg.OrientationSmoothing)
	} else {
		tracker.Smoothing = cfg.OrientationSmoothing
	}

	frames, err := kinematics.Extract(&selected, cfg.extraction(side), tracker)
	if err != nil {
		if errors.Is(err, kinematics.ErrEmptySequence) {
			return nil, ErrNoKeypoints
		}
		return nil, err
	}

	detected := 0
	for _, ok := range frames.Detected {
		if ok {
			detected++
		}
	}
	if detected == 0 {
		return nil, ErrNoKeypoints
	}

	d := newDetector(frames, cfg, side)
	swings := d.detect()

	res := &Result{
		Swings:  swings,
		Frames:  d.frameData(),
		Summary: summarize(swings),
		Metadata: Metadata{
			FramesAnalyzed: detected,
			FirstFrame:     frames.First,
			LastFrame:      frames.First + frames.Len() - 1,
			FPS:            frames.FPS,
			VideoDuration:  float64(frames.Len()) / frames.FPS,
			AnalyzedAt:     time.Now().UTC(),
			Model:          selected.Model,
			DominantHand:   side,
			Threshold:      d.threshold,
			MetersPerPixel: d.conv.MetersPerPixel,
		},
	}
	StampPhases(res.Frames, res.Swings)

	monitoring.Logf("swing: %d swings in %d frames (threshold %.2f, %s-handed)",
		len(swings), frames.Len(), d.threshold, side)
	return res, nil
}

func resolveSide(seq *pose.Sequence, cfg Config) (pose.Side, error) {
	if cfg.DominantHand != HandAuto {
		return cfg.DominantHand.Side(), nil
	}
	hcfg := handedness.DefaultConfig()
	hcfg.MinConfidence = cfg.MinConfidence
	hcfg.PoseIndex = cfg.PoseIndex
	hr, err := handedness.Analyze(seq, hcfg)
	if err != nil {
		if errors.Is(err, handedness.ErrNoKeypoints) {
			return "", ErrNoKeypoints
		}
		return "", fmt.Errorf("resolve dominant hand: %w", err)
	}
	return hr.DominantHand, nil
}

// detector holds the conditioned channels of one run.
type detector struct {
	cfg    Config
	side   pose.Side
	frames *kinematics.Frames
	ch     *signal.Set
	conv   *signal.Conversion
	ev     Evidence

	score     []signal.Value
	wrist     []signal.Value
	ov        []signal.Value
	threshold float64
}

func newDetector(frames *kinematics.Frames, cfg Config, side pose.Side) *detector {
	conv := signal.NewConversion(frames.TorsoHeights, frames.FPS)
	ch := frames.Channels.Conditioned(conv)
	orientation := ch.MustGet(kinematics.BodyOrientation).Processed
	ov := ch.MustGet(kinematics.OrientationVelocity).Processed

	return &detector{
		cfg:    cfg,
		side:   side,
		frames: frames,
		ch:     ch,
		conv:   conv,
		ev: Evidence{
			Skeletons:           frames.Skeletons,
			Orientation:         orientation,
			OrientationVelocity: ov,
		},
		score: ch.MustGet(kinematics.SwingScore).Processed,
		wrist: ch.MustGet(kinematics.WristVelocity).Processed,
		ov:    ov,
	}
}

func (d *detector) seconds(s float64) int {
	return int(math.Round(s * d.frames.FPS))
}

func (d *detector) position(i int) *Position {
	return &Position{Frame: d.frames.FrameNumber(i), Timestamp: d.frames.Timestamp(i)}
}

func (d *detector) detect() []DetectedSwing {
	d.threshold = AdaptiveThreshold(d.score, d.cfg.ThresholdPercentile, d.cfg.MinVelocityThreshold)

	var accept func(int) bool
	if d.cfg.RequireRotation {
		accept = func(i int) bool {
			v, ok := d.ov[i].Get()
			return ok && math.Abs(v) >= d.cfg.MinRotationVelocity
		}
	}
	peaks := FindPeaks(d.score, d.threshold, d.seconds(d.cfg.MinTimeBetweenSwings), accept)

	swings := make([]DetectedSwing, 0, len(peaks))
	minIndex := 0
	for _, p := range peaks {
		s, followEnd := d.build(p, minIndex)
		if d.cfg.MinVelocityKmh > 0 && s.VelocityKmh < d.cfg.MinVelocityKmh {
			monitoring.Logf("swing: dropping peak at frame %d (%.1f km/h below %.1f)",
				s.Frame, s.VelocityKmh, d.cfg.MinVelocityKmh)
			continue
		}
		swings = append(swings, s)
		minIndex = followEnd
	}

	merged := MergeOverlapping(swings, d.cfg.MergeOverlapRatio)
	if len(merged) != len(swings) {
		monitoring.Logf("swing: merged %d overlapping detections into %d", len(swings), len(merged))
	}

	var top float64
	for _, s := range merged {
		top = math.Max(top, s.SwingScore)
	}
	for i := range merged {
		if top > 0 {
			merged[i].Confidence = merged[i].SwingScore / top
		}
	}
	return merged
}

// build assembles the swing peaking at p and returns it with its follow end
// index.
func (d *detector) build(p, minIndex int) (DetectedSwing, int) {
	n := d.frames.Len()
	ph := DetectPhases(p, minIndex, d.wrist, d.ov, d.cfg)

	clipStart := clampIndex(ph.LoadingStart-d.seconds(d.cfg.ClipPreRoll), n)
	clipEnd := clampIndex(ph.FollowEnd+d.seconds(d.cfg.ClipPostRoll), n)

	peakVelocity := d.wrist[p].Or(0)
	s := DetectedSwing{
		ID:                   uuid.New().String(),
		Frame:                d.frames.FrameNumber(p),
		Timestamp:            d.frames.Timestamp(p),
		PeakVelocity:         peakVelocity,
		VelocityKmh:          d.conv.Kmh(peakVelocity),
		SwingScore:           d.score[p].Or(0),
		OrientationAtContact: d.ev.Orientation[p],
		SwingType:            Classify(d.ev, p, d.side, d.cfg),
		DominantSide: DominantSide(
			d.ch.MustGet(kinematics.LeftWristVelocity).Processed[p],
			d.ch.MustGet(kinematics.RightWristVelocity).Processed[p],
			d.side,
		),
		LoadingStart:   d.frames.FrameNumber(ph.LoadingStart),
		SwingStart:     d.frames.FrameNumber(ph.SwingStart),
		ContactFrame:   d.frames.FrameNumber(ph.Contact),
		FollowEnd:      d.frames.FrameNumber(ph.FollowEnd),
		ClipStartFrame: d.frames.FrameNumber(clipStart),
		ClipStartTime:  d.frames.Timestamp(clipStart),
		ClipEndFrame:   d.frames.FrameNumber(clipEnd),
		ClipEndTime:    d.frames.Timestamp(clipEnd),
	}
	s.ClipDuration = s.ClipEndTime - s.ClipStartTime

	span := d.ev.Orientation[ph.LoadingStart : ph.FollowEnd+1]
	if sum := signal.Summarize(signal.Unwrap(span)); sum.Count > 0 {
		s.RotationRange = sum.Max - sum.Min
	}
	for _, v := range d.ov[ph.LoadingStart : ph.FollowEnd+1] {
		if x, ok := v.Get(); ok {
			s.PeakRotationVelocity = math.Max(s.PeakRotationVelocity, math.Abs(x))
		}
	}

	if s.SwingType == TypeServe {
		marks := FindServeEvents(d.frames.Skeletons, clipStart, clipEnd, d.side, d.frames.FPS, d.cfg.TrophyLead)
		s.Serve = &ServeEvents{}
		if marks.ContactPoint >= 0 {
			s.Serve.ContactPoint = d.position(marks.ContactPoint)
		}
		if marks.Trophy >= 0 {
			s.Serve.Trophy = d.position(marks.Trophy)
		}
		if marks.Landing >= 0 {
			s.Serve.Landing = d.position(marks.Landing)
		}
	} else if lp, ok := FindLoadingPeak(d.ev.Orientation, ph.LoadingStart, p); ok {
		s.LoadingPeak = d.position(lp)
	}

	return s, ph.FollowEnd
}

func (d *detector) frameData() []FrameData {
	names := d.ch.Names()
	out := make([]FrameData, d.frames.Len())
	for i := range out {
		fd := FrameData{
			Frame:      d.frames.FrameNumber(i),
			Timestamp:  d.frames.Timestamp(i),
			Detected:   d.frames.Detected[i],
			Phase:      PhaseNeutral,
			SwingScore: d.score[i],
			Channels:   make(map[string]Sample, len(names)),
		}
		for _, name := range names {
			c := d.ch.MustGet(name)
			fd.Channels[name] = Sample{
				Raw:          c.Raw[i],
				Processed:    c.Processed[i],
				RawKmh:       signal.At(c.RawKmh, i),
				ProcessedKmh: signal.At(c.ProcessedKmh, i),
				Acceleration: signal.At(c.Acceleration, i),
			}
		}
		out[i] = fd
	}
	return out
}

func summarize(swings []DetectedSwing) Summary {
	sum := Summary{Total: len(swings)}
	if len(swings) == 0 {
		return sum
	}
	kmh := make([]float64, len(swings))
	rotation := make([]float64, len(swings))
	for i, s := range swings {
		kmh[i] = s.VelocityKmh
		rotation[i] = s.RotationRange
		switch s.SwingType {
		case TypeForehand:
			sum.Forehand++
		case TypeBackhand, TypeBackhandTwoHand:
			sum.Backhand++
		case TypeServe:
			sum.Serve++
		default:
			sum.Unknown++
		}
	}
	sum.AverageVelocityKmh = stat.Mean(kmh, nil)
	sum.MaxVelocityKmh = floats.Max(kmh)
	sum.AverageRotation = stat.Mean(rotation, nil)
	return sum
}
