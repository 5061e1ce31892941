package video

import (
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"
)

// FileSource reads frames from a video file through OpenCV.
// It is the only part of the pipeline that touches gocv; every consumer
// downstream works on plain image.Image values.
type FileSource struct {
	path    string
	capture *gocv.VideoCapture
	mat     gocv.Mat
	closed  bool
}

// OpenFile opens a video file. Returns ErrSourceUnavailable when the file
// cannot be opened; this is fatal for the whole run.
func OpenFile(path string) (*FileSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, path)
	}

	return &FileSource{
		path:    path,
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

// Read decodes the next frame. Returns io.EOF at end of stream and a
// frame-level error when a decoded frame cannot be converted.
func (f *FileSource) Read() (image.Image, error) {
	if f.closed {
		return nil, io.EOF
	}
	if ok := f.capture.Read(&f.mat); !ok {
		return nil, io.EOF
	}
	if f.mat.Empty() {
		return nil, io.EOF
	}

	img, err := f.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("converting frame from %s: %w", f.path, err)
	}
	return img, nil
}

// Skip advances past one frame without decoding it. OpenCV's grab does not
// report end of stream, so exhaustion is detected by the next Read instead;
// at most sampleRate-1 skips ever happen between reads.
func (f *FileSource) Skip() bool {
	if f.closed {
		return false
	}
	f.capture.Grab(1)
	return true
}

// FPS reports the container frame rate, <= 0 when the container omits it.
func (f *FileSource) FPS() float64 {
	return f.capture.Get(gocv.VideoCaptureFPS)
}

// FrameCount reports the total number of frames, or 0 when unknown.
func (f *FileSource) FrameCount() int {
	return int(f.capture.Get(gocv.VideoCaptureFrameCount))
}

// Close releases the capture handle. Idempotent.
func (f *FileSource) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.mat.Close()
	return f.capture.Close()
}
