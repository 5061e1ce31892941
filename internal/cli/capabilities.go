package cli

import (
	"fmt"

	"vidscope/internal/config"
	"vidscope/internal/emotion"
	"vidscope/internal/face"
	"vidscope/internal/pose"
)

// capabilities bundles the three perception backends.
type capabilities struct {
	detector *face.PigoDetector
	emotion  *emotion.ONNXClassifier
	pose     *pose.SidecarLandmarker
}

// loadCapabilities initializes the real perception backends from config.
func loadCapabilities(cfg *config.Config) (*capabilities, error) {
	detector, err := face.NewPigoDetector(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("face detector: %w", err)
	}

	classifier, err := emotion.NewONNXClassifier(cfg.EmotionModelPath)
	if err != nil {
		return nil, fmt.Errorf("emotion classifier: %w", err)
	}

	return &capabilities{
		detector: detector,
		emotion:  classifier,
		pose:     pose.NewSidecarLandmarker(cfg.LandmarkSocket),
	}, nil
}

func (c *capabilities) close() {
	if c.emotion != nil {
		c.emotion.Close()
	}
}
