package detector

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ayusman/swingscope/internal/pose"
)

// jsonPose is one person as reported by the pose service.
type jsonPose struct {
	Score     float64        `json:"score"`
	Keypoints []jsonKeypoint `json:"keypoints"`
}

type jsonKeypoint struct {
	Name  string   `json:"name"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Score *float64 `json:"score"`
}

// decodeResponse parses one response line of the pose service. Poses below
// the confidence floor are dropped and the rest ordered by score, keeping at
// most MaxPoses.
func decodeResponse(line []byte, cfg Config) ([]pose.Pose, error) {
	var response struct {
		Poses []jsonPose `json:"poses"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("pose service: %s", response.Error)
	}

	want := cfg.Model.NumKeypoints()
	result := make([]pose.Pose, 0, len(response.Poses))
	for i, p := range response.Poses {
		if p.Score < cfg.MinConfidence {
			continue
		}
		if len(p.Keypoints) != want {
			return nil, fmt.Errorf("pose %d: %d keypoints, %s emits %d", i, len(p.Keypoints), cfg.Model, want)
		}
		result = append(result, p.toPose())
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	if cfg.MaxPoses > 0 && len(result) > cfg.MaxPoses {
		result = result[:cfg.MaxPoses]
	}
	return result, nil
}

func (p jsonPose) toPose() pose.Pose {
	out := pose.Pose{
		Score:     p.Score,
		Keypoints: make([]pose.Keypoint, len(p.Keypoints)),
	}
	for i, kp := range p.Keypoints {
		out.Keypoints[i] = pose.Keypoint{
			Name:  kp.Name,
			X:     kp.X,
			Y:     kp.Y,
			Score: kp.Score,
		}
	}
	return out
}
