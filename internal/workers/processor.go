package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"

	"vidscope/internal/emotion"
	"vidscope/internal/face"
	"vidscope/internal/pipeline"
	"vidscope/internal/pose"
	"vidscope/internal/store"
	"vidscope/internal/video"
)

// Job is one queued analysis request.
type Job struct {
	RunID      string
	VideoPath  string
	SampleRate int
}

// JobQueue feeds the background worker. The API handler enqueues, the
// worker drains.
var JobQueue = make(chan Job, 16)

// Processor runs queued analysis jobs with a fixed set of capabilities.
type Processor struct {
	Detector   face.Detector
	Emotion    emotion.Model
	Landmarker pose.Landmarker
	// Store persists finished runs; nil disables persistence.
	Store *store.Store
}

// Start launches the worker goroutine draining JobQueue.
func (p *Processor) Start() {
	go func() {
		for job := range JobQueue {
			log.Printf("[WORKER] processing run %s (%s)", job.RunID, job.VideoPath)
			if err := p.process(job); err != nil {
				log.Printf("[WORKER] run %s failed: %v", job.RunID, err)
				continue
			}
			log.Printf("[WORKER] run %s done", job.RunID)
		}
	}()
}

func (p *Processor) process(job Job) error {
	analysis, err := pipeline.NewAnalysis(pipeline.Options{
		Open: func() (video.Source, error) {
			return video.OpenFile(job.VideoPath)
		},
		SampleRate:    job.SampleRate,
		Detector:      p.Detector,
		Emotion:       p.Emotion,
		Landmarker:    p.Landmarker,
		EmotionConfig: emotion.DefaultConfig(),
		PoseConfig:    pose.DefaultConfig(),
	})
	if err != nil {
		return err
	}

	result, err := analysis.Run()
	if err != nil {
		return err
	}

	if p.Store == nil {
		return nil
	}

	hash, err := hashFile(job.VideoPath)
	if err != nil {
		// The run itself succeeded; persist with an empty hash.
		log.Printf("[WORKER] hashing %s: %v", job.VideoPath, err)
	}

	return p.Store.SaveRun(context.Background(), store.Run{
		ID:        job.RunID,
		VideoPath: job.VideoPath,
		VideoHash: hash,
		Summary:   result.Summary,
		Anomalies: result.Anomalies,
	})
}

// hashFile computes the sha256 of the source video for run keying.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open video for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash video: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
