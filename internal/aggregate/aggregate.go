// Package aggregate folds the per-frame outputs of a complete run into one
// read-only summary.
package aggregate

import (
	"vidscope/internal/anomaly"
	"vidscope/internal/emotion"
	"vidscope/internal/face"
	"vidscope/internal/pose"
)

// RunSummary is the final aggregated view of one pipeline execution.
// It is computed once after all stages finish and never mutated.
type RunSummary struct {
	FramesAnalyzed int `json:"frames_analyzed" msgpack:"frames_analyzed"`
	TotalFaces     int `json:"total_faces" msgpack:"total_faces"`

	EmotionDistribution  map[string]int       `json:"emotion_distribution" msgpack:"emotion_distribution"`
	ActivityDistribution map[string]int       `json:"activity_distribution" msgpack:"activity_distribution"`
	AnomalyCounts        map[anomaly.Kind]int `json:"anomaly_counts" msgpack:"anomaly_counts"`

	// DetectionRate is frames with at least one detected face over frames
	// analyzed.
	DetectionRate float64 `json:"detection_rate" msgpack:"detection_rate"`

	// PoseDetections counts frames where body landmarks were found;
	// HandDetections counts individual hand landmark sets across the run.
	PoseDetections int `json:"pose_detections" msgpack:"pose_detections"`
	HandDetections int `json:"hand_detections" msgpack:"hand_detections"`

	// Timelines lists the timestamps (seconds) at which each emotion or
	// activity label was observed, in frame order.
	Timelines map[string][]float64 `json:"timelines" msgpack:"timelines"`
}

// Aggregate computes the summary from the complete per-frame outputs.
// It is a pure function and tolerates fully empty inputs: a run where
// nothing was detected still produces zero-valued distributions.
func Aggregate(
	framesAnalyzed int,
	regions []face.Region,
	emotions []emotion.Observation,
	activities []pose.Observation,
	anomalies []anomaly.Anomaly,
) RunSummary {
	summary := RunSummary{
		FramesAnalyzed:       framesAnalyzed,
		TotalFaces:           len(regions),
		EmotionDistribution:  make(map[string]int),
		ActivityDistribution: make(map[string]int),
		AnomalyCounts:        make(map[anomaly.Kind]int),
		Timelines:            make(map[string][]float64),
	}

	framesWithFaces := make(map[int]struct{})
	for _, region := range regions {
		framesWithFaces[region.FrameIndex] = struct{}{}
	}
	if framesAnalyzed > 0 {
		summary.DetectionRate = float64(len(framesWithFaces)) / float64(framesAnalyzed)
	}

	for _, obs := range emotions {
		summary.EmotionDistribution[obs.Dominant]++
		summary.Timelines[obs.Dominant] = append(summary.Timelines[obs.Dominant], obs.Timestamp)
	}

	for _, obs := range activities {
		if len(obs.Activities) > 0 {
			summary.PoseDetections++
		}
		summary.HandDetections += obs.Hands
		for _, label := range obs.Activities {
			summary.ActivityDistribution[label]++
			summary.Timelines[label] = append(summary.Timelines[label], obs.Timestamp)
		}
	}

	for _, a := range anomalies {
		summary.AnomalyCounts[a.Kind]++
	}

	return summary
}
