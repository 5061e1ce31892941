package video

import (
	"errors"
	"fmt"
	"io"
	"log"

	"vidscope/internal/anomaly"
)

// Sampler walks a Source and keeps every sampleRate-th frame (0-based
// index modulo check). The produced sequence is lazy, finite and cannot
// be restarted.
type Sampler struct {
	source     Source
	sampleRate int
	tracker    *anomaly.Tracker
	fps        float64

	index    int
	consumed bool
}

// NewSampler wraps an already-open source. sampleRate must be >= 1.
// Single-frame read failures are recorded to tracker and skipped.
func NewSampler(source Source, sampleRate int, tracker *anomaly.Tracker) (*Sampler, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("sample rate must be >= 1, got %d", sampleRate)
	}

	fps := source.FPS()
	if fps <= 0 {
		// Known approximation: timestamps degrade to raw frame indices.
		log.Printf("[SAMPLER] source reports no frame rate, using frame index as timestamp")
	}

	return &Sampler{
		source:     source,
		sampleRate: sampleRate,
		tracker:    tracker,
		fps:        fps,
	}, nil
}

// Next returns the next sampled frame. The second return is false once the
// source is exhausted, after which the source has been closed.
func (s *Sampler) Next() (Frame, bool) {
	if s.consumed {
		return Frame{}, false
	}

	for {
		if s.index%s.sampleRate != 0 {
			if !s.source.Skip() {
				s.finish()
				return Frame{}, false
			}
			s.index++
			continue
		}

		img, err := s.source.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.finish()
				return Frame{}, false
			}
			// One unreadable frame does not end the run.
			s.tracker.Record(anomaly.Anomaly{
				FrameIndex: s.index,
				Timestamp:  s.timestamp(s.index),
				SubjectID:  anomaly.NoSubject,
				Kind:       anomaly.FrameReadFailure,
				Detail:     err.Error(),
			})
			s.index++
			continue
		}

		frame := Frame{
			Index:     s.index,
			Timestamp: s.timestamp(s.index),
			Image:     img,
		}
		s.index++
		return frame, true
	}
}

// Drain consumes the remaining frames into a slice.
func (s *Sampler) Drain() []Frame {
	var frames []Frame
	for {
		frame, ok := s.Next()
		if !ok {
			return frames
		}
		frames = append(frames, frame)
	}
}

// Close releases the underlying source. Safe to call after exhaustion.
func (s *Sampler) Close() error {
	if s.consumed {
		return nil
	}
	s.consumed = true
	return s.source.Close()
}

func (s *Sampler) finish() {
	s.consumed = true
	if err := s.source.Close(); err != nil {
		log.Printf("[SAMPLER] closing source: %v", err)
	}
}

func (s *Sampler) timestamp(index int) float64 {
	if s.fps > 0 {
		return float64(index) / s.fps
	}
	return float64(index)
}
