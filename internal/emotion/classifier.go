package emotion

import (
	"image"
	"image/draw"
	"log"

	"vidscope/internal/anomaly"
	"vidscope/internal/face"
)

// DefaultLowConfidence is the score below which an observation is flagged
// as low confidence. Flagged observations are still kept.
const DefaultLowConfidence = 50.0

// Config holds classifier policy.
type Config struct {
	// LowConfidence is the flagging threshold on the dominant score.
	LowConfidence float64
}

// DefaultConfig returns the standard classifier policy.
func DefaultConfig() Config {
	return Config{LowConfidence: DefaultLowConfidence}
}

// Classifier scores one emotion distribution per face region.
type Classifier struct {
	model   Model
	tracker *anomaly.Tracker
	config  Config
}

// NewClassifier creates a classifier writing failures to tracker.
func NewClassifier(model Model, tracker *anomaly.Tracker, config Config) *Classifier {
	return &Classifier{
		model:   model,
		tracker: tracker,
		config:  config,
	}
}

// Classify crops the region from frameImage and scores it. Exactly one of
// {returned observation, recorded anomaly} happens per region: a degenerate
// crop or a capability error records an anomaly and returns ok=false, and
// processing of the remaining regions in the frame continues.
func (c *Classifier) Classify(region face.Region, frameImage image.Image) (Observation, bool) {
	crop, ok := cropRegion(frameImage, region.Box.Rect())
	if !ok {
		c.tracker.Record(anomaly.Anomaly{
			FrameIndex: region.FrameIndex,
			Timestamp:  region.Timestamp,
			SubjectID:  region.FaceID,
			Kind:       anomaly.InvalidRegion,
			Detail:     "degenerate face crop",
		})
		return Observation{}, false
	}

	scores, err := c.model.Classify(crop)
	if err != nil {
		c.tracker.Record(anomaly.Anomaly{
			FrameIndex: region.FrameIndex,
			Timestamp:  region.Timestamp,
			SubjectID:  region.FaceID,
			Kind:       anomaly.ClassificationError,
			Detail:     err.Error(),
		})
		return Observation{}, false
	}

	dominant, confidence := scores.Dominant()
	obs := Observation{
		FrameIndex: region.FrameIndex,
		Timestamp:  region.Timestamp,
		FaceID:     region.FaceID,
		Dominant:   dominant,
		Confidence: confidence,
		Scores:     scores,
	}

	if confidence < c.config.LowConfidence {
		// Flag only; the observation is still recorded.
		c.tracker.Record(anomaly.Anomaly{
			FrameIndex: region.FrameIndex,
			Timestamp:  region.Timestamp,
			SubjectID:  region.FaceID,
			Kind:       anomaly.LowConfidence,
		})
		log.Printf("[EMOTION] face %d: %s at %.1f (low confidence)", region.FaceID, dominant, confidence)
	}

	return obs, true
}

// cropRegion clamps rect to the frame bounds and copies the pixels out.
// Returns ok=false when the clamped rect has no area.
func cropRegion(img image.Image, rect image.Rectangle) (image.Image, bool) {
	clamped := rect.Intersect(img.Bounds())
	if clamped.Dx() <= 0 || clamped.Dy() <= 0 {
		return nil, false
	}

	crop := image.NewRGBA(image.Rect(0, 0, clamped.Dx(), clamped.Dy()))
	draw.Draw(crop, crop.Bounds(), img, clamped.Min, draw.Src)
	return crop, true
}
