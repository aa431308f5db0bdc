package pose

// Model identifies the keypoint topology produced by the pose estimator.
type Model string

const (
	// ModelMoveNet is the 17-keypoint COCO layout (MoveNet, YOLOv8-pose).
	ModelMoveNet Model = "movenet"
	// ModelBlazePose is the 33-keypoint BlazePose layout.
	ModelBlazePose Model = "blazepose"
)

// Joint is a body joint used by the analysis, independent of the model.
type Joint int

const (
	Nose Joint = iota
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	NumJoints
)

var jointNames = [NumJoints]string{
	"nose",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
}

func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return "unknown"
	}
	return jointNames[j]
}

// COCO keypoint order: nose, eyes, ears, shoulders, elbows, wrists, hips,
// knees, ankles.
var moveNetIndex = [NumJoints]int{0, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
var blazePoseIndex = [NumJoints]int{0, 11, 12, 13, 14, 15, 16, 23, 24, 25, 26, 27, 28}

// Valid reports whether m is a supported model.
func (m Model) Valid() bool {
	return m == ModelMoveNet || m == ModelBlazePose
}

// NumKeypoints returns the number of keypoints the model emits.
func (m Model) NumKeypoints() int {
	switch m {
	case ModelMoveNet:
		return 17
	case ModelBlazePose:
		return 33
	}
	return 0
}

// Index returns the keypoint index of j in the model's numbering.
func (m Model) Index(j Joint) (int, bool) {
	if j < 0 || j >= NumJoints {
		return 0, false
	}
	switch m {
	case ModelMoveNet:
		return moveNetIndex[j], true
	case ModelBlazePose:
		return blazePoseIndex[j], true
	}
	return 0, false
}

// Side selects the left or right half of the body.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Wrist returns the wrist joint on side s.
func (s Side) Wrist() Joint {
	if s == Left {
		return LeftWrist
	}
	return RightWrist
}

// Shoulder returns the shoulder joint on side s.
func (s Side) Shoulder() Joint {
	if s == Left {
		return LeftShoulder
	}
	return RightShoulder
}

// Ankle returns the ankle joint on side s.
func (s Side) Ankle() Joint {
	if s == Left {
		return LeftAnkle
	}
	return RightAnkle
}
