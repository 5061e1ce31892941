package pipeline

import (
	"image"

	"vidscope/internal/aggregate"
	"vidscope/internal/emotion"
	"vidscope/internal/face"
	"vidscope/internal/pose"
	"vidscope/internal/video"
)

// Context is the shared state threaded through the graph. Each stage
// appends its outputs; downstream stages read them as additional input.
// Nothing mutates an upstream stage's outputs.
type Context struct {
	// Frames are the sampled, decoded frames, in strictly increasing
	// index order. Written by the sample stage.
	Frames []video.Frame

	// Regions are the localized faces. Written by the localize stage.
	Regions []face.Region

	// Emotions are the per-face classifications. Written by the emotion
	// stage.
	Emotions []emotion.Observation

	// Activities are the per-frame activity classifications. Written by
	// the activity stage.
	Activities []pose.Observation

	// Summary is the final aggregated view. Written by the aggregate
	// stage.
	Summary aggregate.RunSummary
}

// FrameImage looks up the decoded image of a sampled frame by index.
func (c *Context) FrameImage(frameIndex int) (image.Image, bool) {
	for _, frame := range c.Frames {
		if frame.Index == frameIndex {
			return frame.Image, true
		}
	}
	return nil, false
}
