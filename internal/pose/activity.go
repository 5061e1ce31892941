package pose

import (
	"fmt"
	"log"

	"vidscope/internal/anomaly"
	"vidscope/internal/video"
)

// Posture thresholds on normalized torso length. The band between them
// classifies as unknown.
const (
	DefaultStandingTorso = 0.30
	DefaultSittingTorso  = 0.15
)

// Config holds the geometric rule thresholds.
type Config struct {
	StandingTorso float32
	SittingTorso  float32
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		StandingTorso: DefaultStandingTorso,
		SittingTorso:  DefaultSittingTorso,
	}
}

// Classifier derives activity labels from body landmarks, one frame at a
// time. Frames are classified independently; nothing is smoothed across
// frames.
type Classifier struct {
	landmarker Landmarker
	tracker    *anomaly.Tracker
	config     Config
}

// NewClassifier creates a classifier writing failures to tracker.
func NewClassifier(landmarker Landmarker, tracker *anomaly.Tracker, config Config) *Classifier {
	return &Classifier{
		landmarker: landmarker,
		tracker:    tracker,
		config:     config,
	}
}

// Classify runs pose and hand detection on one frame and applies the
// geometric rules. Capability failures and missing poses are recorded as
// anomalies; the returned observation then carries an empty activity set.
func (c *Classifier) Classify(frame video.Frame) Observation {
	obs := Observation{
		FrameIndex: frame.Index,
		Timestamp:  frame.Timestamp,
	}
	millis := int64(frame.Timestamp * 1000)

	poses, err := c.landmarker.DetectPose(frame.Image, millis)
	if err != nil {
		c.tracker.Record(anomaly.Anomaly{
			FrameIndex: frame.Index,
			Timestamp:  frame.Timestamp,
			SubjectID:  anomaly.NoSubject,
			Kind:       anomaly.ClassificationError,
			Detail:     fmt.Sprintf("pose detection: %v", err),
		})
		return obs
	}

	if len(poses) == 0 || len(poses[0]) < BodyLandmarkCount {
		c.tracker.Record(anomaly.Anomaly{
			FrameIndex: frame.Index,
			Timestamp:  frame.Timestamp,
			SubjectID:  anomaly.NoSubject,
			Kind:       anomaly.NoDetection,
			Detail:     "no pose landmarks",
		})
		return obs
	}

	body := poses[0]
	obs.Activities = c.classifyBody(body)

	// Hands are detected independently of the body pose; failures here do
	// not invalidate the pose-derived labels.
	hands, err := c.landmarker.DetectHands(frame.Image, millis)
	if err != nil {
		log.Printf("[POSE] frame %d: hand detection failed: %v", frame.Index, err)
	} else {
		obs.Hands = len(hands)
	}

	return obs
}

// classifyBody evaluates the three independent geometric rules. Each rule
// yields at most one label; a frame can carry labels from all three.
func (c *Classifier) classifyBody(body []Landmark) []string {
	shoulderY := avg(body[LeftShoulder].Y, body[RightShoulder].Y)
	hipY := avg(body[LeftHip].Y, body[RightHip].Y)

	labels := make([]string, 0, 3)
	labels = append(labels, c.PostureLabel(shoulderY, hipY))
	labels = append(labels, HandsLabel(body[LeftWrist].Y, body[RightWrist].Y, shoulderY))

	if movement, ok := MovementLabel(body[LeftKnee].Y, body[RightKnee].Y, hipY); ok {
		labels = append(labels, movement)
	}
	return labels
}

// PostureLabel classifies posture from average shoulder and hip heights.
// Torso length between the sitting and standing thresholds is reported as
// unknown.
func (c *Classifier) PostureLabel(shoulderY, hipY float32) string {
	torso := hipY - shoulderY
	if torso < 0 {
		torso = -torso
	}

	switch {
	case torso >= c.config.StandingTorso:
		return LabelStanding
	case torso < c.config.SittingTorso:
		return LabelSitting
	default:
		return LabelUnknown
	}
}

// HandsLabel reports hands_raised when either wrist is above the average
// shoulder height, hands_down otherwise. Normalized y grows downward.
func HandsLabel(leftWristY, rightWristY, shoulderY float32) string {
	if leftWristY < shoulderY || rightWristY < shoulderY {
		return LabelHandsRaised
	}
	return LabelHandsDown
}

// MovementLabel reports moving when either knee is above the average hip
// height, a proxy for a raised or bent leg. No label otherwise.
func MovementLabel(leftKneeY, rightKneeY, hipY float32) (string, bool) {
	if leftKneeY < hipY || rightKneeY < hipY {
		return LabelMoving, true
	}
	return "", false
}

func avg(a, b float32) float32 {
	return (a + b) / 2
}
