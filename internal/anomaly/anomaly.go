package anomaly

// Kind categorizes a recorded per-item failure.
type Kind string

const (
	// NoDetection means a capability returned nothing for a frame.
	NoDetection Kind = "no_detection"
	// LowConfidence means a classification succeeded but scored below threshold.
	LowConfidence Kind = "low_confidence"
	// InvalidRegion means a face bounding box was degenerate after clamping.
	InvalidRegion Kind = "invalid_region"
	// ClassificationError means a capability returned an error for one item.
	ClassificationError Kind = "classification_error"
	// FrameReadFailure means a single frame could not be read mid-run.
	FrameReadFailure Kind = "frame_read_failure"
)

// Anomaly is one per-item failure or low-confidence event. Anomalies never
// abort a run; they are recorded and the affected item is skipped.
type Anomaly struct {
	FrameIndex int     `json:"frame" msgpack:"frame"`
	Timestamp  float64 `json:"timestamp" msgpack:"timestamp"`
	// SubjectID is the face id when the anomaly concerns one face, -1 otherwise.
	SubjectID int    `json:"subject_id" msgpack:"subject_id"`
	Kind      Kind   `json:"kind" msgpack:"kind"`
	Detail    string `json:"detail,omitempty" msgpack:"detail"`
}

// NoSubject is the SubjectID for anomalies not tied to a specific face.
const NoSubject = -1
