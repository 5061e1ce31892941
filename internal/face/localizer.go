package face

import (
	"fmt"
	"log"
	"sync/atomic"

	"vidscope/internal/anomaly"
	"vidscope/internal/video"
)

// Config holds localizer policy. Zero value is the default policy.
type Config struct {
	// RequireFace anomalizes frames with zero detections. Off by default:
	// an empty frame is normally not an error.
	RequireFace bool
}

// Localizer turns sampled frames into face regions with run-wide unique ids.
type Localizer struct {
	detector Detector
	tracker  *anomaly.Tracker
	config   Config

	// Monotonic run-wide id allocator.
	nextID atomic.Int64
}

// NewLocalizer creates a localizer writing failures to tracker.
func NewLocalizer(detector Detector, tracker *anomaly.Tracker, config Config) *Localizer {
	return &Localizer{
		detector: detector,
		tracker:  tracker,
		config:   config,
	}
}

// Localize detects faces in one frame and returns their regions in
// source-resolution coordinates. Capability failures are recorded as
// anomalies, never returned: one bad frame must not abort the run.
func (l *Localizer) Localize(frame video.Frame) []Region {
	detections, err := l.detector.Detect(frame.Image)
	if err != nil {
		l.tracker.Record(anomaly.Anomaly{
			FrameIndex: frame.Index,
			Timestamp:  frame.Timestamp,
			SubjectID:  anomaly.NoSubject,
			Kind:       anomaly.ClassificationError,
			Detail:     fmt.Sprintf("face detection: %v", err),
		})
		return nil
	}

	if len(detections) == 0 {
		if l.config.RequireFace {
			l.tracker.Record(anomaly.Anomaly{
				FrameIndex: frame.Index,
				Timestamp:  frame.Timestamp,
				SubjectID:  anomaly.NoSubject,
				Kind:       anomaly.NoDetection,
				Detail:     "no face in frame",
			})
		}
		return nil
	}

	// Detections are in the reduced working resolution; rescale by the
	// inverse factor so every downstream consumer sees source pixels.
	factor := 1.0 / l.detector.Scale()

	regions := make([]Region, 0, len(detections))
	for _, det := range detections {
		id := int(l.nextID.Add(1) - 1)
		regions = append(regions, Region{
			FrameIndex: frame.Index,
			Timestamp:  frame.Timestamp,
			FaceID:     id,
			Box: Box{
				Top:    int(float64(det.Y) * factor),
				Left:   int(float64(det.X) * factor),
				Right:  int(float64(det.X+det.Width) * factor),
				Bottom: int(float64(det.Y+det.Height) * factor),
			},
		})
	}

	log.Printf("[LOCALIZER] frame %d: %d face(s)", frame.Index, len(regions))
	return regions
}
