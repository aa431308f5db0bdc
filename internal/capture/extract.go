package capture

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ayusman/swingscope/internal/detector"
	"github.com/ayusman/swingscope/internal/monitoring"
	"github.com/ayusman/swingscope/internal/pose"
)

// progressEvery is how often, in frames, Extract logs progress.
const progressEvery = 300

// Extract reads every frame of src, runs det on it and collects the poses
// into a sequence. Frames where nobody is detected are absent from the
// result. The source is opened if needed and closed on return.
func Extract(ctx context.Context, src Source, det detector.Detector, model pose.Model) (*pose.Sequence, error) {
	if !model.Valid() {
		return nil, fmt.Errorf("unknown pose model %q", model)
	}
	if !src.IsOpen() {
		if err := src.Open(); err != nil {
			return nil, err
		}
	}
	defer src.Close()

	seq := &pose.Sequence{
		Frames: make(map[int][]pose.Pose),
		FPS:    src.FPS(),
		Model:  model,
	}

	read := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		idx := src.FrameIndex()
		frame, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", idx, err)
		}

		poses, err := det.Detect(frame)
		frame.Close()
		if err != nil {
			return nil, fmt.Errorf("detect frame %d: %w", idx, err)
		}
		if len(poses) > 0 {
			seq.Frames[idx] = poses
		}

		read++
		if read%progressEvery == 0 {
			monitoring.Logf("capture: %d frames read, %d with poses", read, len(seq.Frames))
		}
	}

	monitoring.Logf("capture: done, %d frames read, %d with poses at %.2f fps", read, len(seq.Frames), seq.FPS)
	return seq, nil
}
