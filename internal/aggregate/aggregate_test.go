package aggregate

import (
	"testing"

	"vidscope/internal/anomaly"
	"vidscope/internal/emotion"
	"vidscope/internal/face"
	"vidscope/internal/pose"
)

func TestAggregateEmptyRun(t *testing.T) {
	summary := Aggregate(0, nil, nil, nil, nil)

	if summary.FramesAnalyzed != 0 || summary.TotalFaces != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.DetectionRate != 0 {
		t.Errorf("expected zero detection rate, got %f", summary.DetectionRate)
	}
	if len(summary.EmotionDistribution) != 0 || len(summary.ActivityDistribution) != 0 {
		t.Error("expected empty distributions")
	}
	if len(summary.AnomalyCounts) != 0 {
		t.Error("expected empty anomaly counts")
	}
}

func TestAggregateZeroDetectionsAcrossRun(t *testing.T) {
	// Frames were analyzed but nothing was ever detected.
	summary := Aggregate(12, nil, nil, nil, []anomaly.Anomaly{
		{FrameIndex: 0, Kind: anomaly.NoDetection},
		{FrameIndex: 4, Kind: anomaly.NoDetection},
	})

	if summary.FramesAnalyzed != 12 {
		t.Errorf("expected 12 frames analyzed, got %d", summary.FramesAnalyzed)
	}
	if summary.DetectionRate != 0 {
		t.Errorf("expected detection rate 0, got %f", summary.DetectionRate)
	}
	if summary.AnomalyCounts[anomaly.NoDetection] != 2 {
		t.Errorf("expected 2 no_detection, got %d", summary.AnomalyCounts[anomaly.NoDetection])
	}
}

func TestAggregateDistributionsAndRate(t *testing.T) {
	regions := []face.Region{
		{FrameIndex: 0, FaceID: 0},
		{FrameIndex: 0, FaceID: 1}, // two faces in one frame count that frame once
		{FrameIndex: 2, FaceID: 2},
		{FrameIndex: 4, FaceID: 3},
	}
	emotions := []emotion.Observation{
		{FrameIndex: 0, FaceID: 0, Dominant: "happy", Timestamp: 0.0},
		{FrameIndex: 0, FaceID: 1, Dominant: "neutral", Timestamp: 0.0},
		{FrameIndex: 2, FaceID: 2, Dominant: "happy", Timestamp: 0.5},
	}
	activities := []pose.Observation{
		{FrameIndex: 0, Activities: []string{"standing", "hands_down"}, Hands: 2},
		{FrameIndex: 2, Activities: []string{"standing", "hands_raised"}, Hands: 1},
		{FrameIndex: 4, Activities: nil}, // pose failed here
	}
	anomalies := []anomaly.Anomaly{
		{FrameIndex: 4, Kind: anomaly.NoDetection},
		{FrameIndex: 4, SubjectID: 3, Kind: anomaly.ClassificationError},
	}

	summary := Aggregate(8, regions, emotions, activities, anomalies)

	if summary.TotalFaces != 4 {
		t.Errorf("expected 4 faces, got %d", summary.TotalFaces)
	}
	if summary.EmotionDistribution["happy"] != 2 || summary.EmotionDistribution["neutral"] != 1 {
		t.Errorf("unexpected emotion distribution: %v", summary.EmotionDistribution)
	}
	if summary.ActivityDistribution["standing"] != 2 || summary.ActivityDistribution["hands_raised"] != 1 {
		t.Errorf("unexpected activity distribution: %v", summary.ActivityDistribution)
	}

	// 3 distinct frames with faces out of 8 analyzed
	if summary.DetectionRate != 3.0/8.0 {
		t.Errorf("expected detection rate 0.375, got %f", summary.DetectionRate)
	}

	if summary.PoseDetections != 2 {
		t.Errorf("expected 2 pose detections, got %d", summary.PoseDetections)
	}
	if summary.HandDetections != 3 {
		t.Errorf("expected 3 hand detections, got %d", summary.HandDetections)
	}

	// Classified emotions never exceed detected faces.
	classified := 0
	for _, n := range summary.EmotionDistribution {
		classified += n
	}
	if classified > summary.TotalFaces {
		t.Errorf("emotion counts (%d) exceed total faces (%d)", classified, summary.TotalFaces)
	}
}

func TestAggregateTimelines(t *testing.T) {
	emotions := []emotion.Observation{
		{FrameIndex: 0, Dominant: "sad", Timestamp: 0.0},
		{FrameIndex: 6, Dominant: "sad", Timestamp: 1.2},
	}
	activities := []pose.Observation{
		{FrameIndex: 3, Activities: []string{"sitting"}, Timestamp: 0.6},
	}

	summary := Aggregate(4, nil, emotions, activities, nil)

	sad := summary.Timelines["sad"]
	if len(sad) != 2 || sad[0] != 0.0 || sad[1] != 1.2 {
		t.Errorf("unexpected sad timeline: %v", sad)
	}
	sitting := summary.Timelines["sitting"]
	if len(sitting) != 1 || sitting[0] != 0.6 {
		t.Errorf("unexpected sitting timeline: %v", sitting)
	}
}
