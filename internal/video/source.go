package video

import (
	"errors"
	"image"
)

// ErrSourceUnavailable is returned when the video source cannot be opened.
// It is the only fatal error in the pipeline: no stage can run without frames.
var ErrSourceUnavailable = errors.New("video source unavailable")

// Frame is one decoded, timestamped frame selected by the sampler.
type Frame struct {
	// Index is the 0-based position of the frame in the source.
	Index int
	// Timestamp is seconds from the start of the video. When the source
	// cannot report a frame rate this degrades to the raw frame index.
	Timestamp float64
	// Image is the decoded frame at source resolution.
	Image image.Image
}

// Source is a finite, forward-only sequence of video frames.
//
// Read decodes and returns the next frame, io.EOF once the sequence is
// exhausted, or another error when a single frame fails to decode (the
// sequence may still continue past it). Skip advances past one frame
// without the decode cost where the backend allows it; it returns false
// at end of stream only if the backend can tell.
type Source interface {
	Read() (image.Image, error)
	Skip() bool
	// FPS reports the source frame rate, or a value <= 0 when unknown.
	FPS() float64
	Close() error
}
