package pose

import "image"

// Landmark is one normalized (0..1) body or hand keypoint.
type Landmark struct {
	X float32 `msgpack:"x"`
	Y float32 `msgpack:"y"`
}

// Anatomical indices into a 33-point body landmark set.
const (
	LeftShoulder  = 11
	RightShoulder = 12
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
	LeftKnee      = 25
	RightKnee     = 26

	// BodyLandmarkCount is the size of one body landmark set.
	BodyLandmarkCount = 33
)

// Activity labels drawn from the fixed vocabulary.
const (
	LabelStanding    = "standing"
	LabelSitting     = "sitting"
	LabelUnknown     = "unknown"
	LabelHandsRaised = "hands_raised"
	LabelHandsDown   = "hands_down"
	LabelMoving      = "moving"
)

// Observation is the activity classification for one sampled frame.
// Activities is empty only when pose detection itself failed, which is
// recorded as an anomaly rather than treated as an empty activity set.
type Observation struct {
	FrameIndex int      `json:"frame" msgpack:"frame"`
	Timestamp  float64  `json:"timestamp" msgpack:"timestamp"`
	Activities []string `json:"activities" msgpack:"activities"`
	// Hands is the number of hand landmark sets detected in the frame.
	Hands int `json:"hands" msgpack:"hands"`
}

// Landmarker is the pose/hand-landmark capability. The timestamp in
// milliseconds is required for video-mode operation of the backing model.
// Both methods return zero or more landmark sets; zero sets is a valid
// result, not an error.
type Landmarker interface {
	DetectPose(img image.Image, timestampMillis int64) ([][]Landmark, error)
	DetectHands(img image.Image, timestampMillis int64) ([][]Landmark, error)
}
