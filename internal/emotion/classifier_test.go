package emotion

import (
	"fmt"
	"image"
	"testing"

	"vidscope/internal/anomaly"
	"vidscope/internal/face"
)

// fakeModel returns fixed scores, or an error when told to fail.
type fakeModel struct {
	scores   Scores
	fail     bool
	failOnce bool
	calls    int
}

func (m *fakeModel) Classify(crop image.Image) (Scores, error) {
	m.calls++
	if m.fail || (m.failOnce && m.calls == 1) {
		return nil, fmt.Errorf("model rejected input")
	}
	return m.scores, nil
}

func happyScores(confidence float64) Scores {
	scores := Scores{}
	rest := (100 - confidence) / 6
	for _, label := range Labels {
		scores[label] = rest
	}
	scores["happy"] = confidence
	return scores
}

func region(faceID int, box face.Box) face.Region {
	return face.Region{FrameIndex: 4, Timestamp: 0.8, FaceID: faceID, Box: box}
}

func frameImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 100, 100))
}

func TestClassifySuccess(t *testing.T) {
	model := &fakeModel{scores: happyScores(90)}
	tracker := anomaly.NewTracker()
	classifier := NewClassifier(model, tracker, DefaultConfig())

	obs, ok := classifier.Classify(region(1, face.Box{Top: 10, Left: 10, Right: 50, Bottom: 50}), frameImage())
	if !ok {
		t.Fatal("expected an observation")
	}
	if obs.Dominant != "happy" {
		t.Errorf("expected happy, got %s", obs.Dominant)
	}
	if obs.Confidence != 90 {
		t.Errorf("expected confidence 90 (max of scores), got %f", obs.Confidence)
	}
	if obs.FaceID != 1 || obs.FrameIndex != 4 {
		t.Errorf("observation lost its region identity: %+v", obs)
	}
	if tracker.Len() != 0 {
		t.Errorf("expected no anomalies, got %d", tracker.Len())
	}
}

func TestClassifyDegenerateCrop(t *testing.T) {
	cases := []struct {
		name string
		box  face.Box
	}{
		{"zero area", face.Box{Top: 10, Left: 10, Right: 10, Bottom: 40}},
		{"fully out of bounds", face.Box{Top: 500, Left: 500, Right: 600, Bottom: 600}},
		{"inverted", face.Box{Top: 50, Left: 50, Right: 10, Bottom: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := &fakeModel{scores: happyScores(90)}
			tracker := anomaly.NewTracker()
			classifier := NewClassifier(model, tracker, DefaultConfig())

			_, ok := classifier.Classify(region(2, tc.box), frameImage())
			if ok {
				t.Fatal("expected no observation for degenerate crop")
			}
			if model.calls != 0 {
				t.Error("model must not be invoked for a degenerate crop")
			}
			counts := tracker.CountsByKind()
			if counts[anomaly.InvalidRegion] != 1 {
				t.Errorf("expected 1 invalid_region, got %d", counts[anomaly.InvalidRegion])
			}
			if tracker.All()[0].SubjectID != 2 {
				t.Errorf("anomaly should carry the face id: %+v", tracker.All()[0])
			}
		})
	}
}

func TestClassifyPartiallyOutOfBoundsIsClamped(t *testing.T) {
	model := &fakeModel{scores: happyScores(80)}
	classifier := NewClassifier(model, anomaly.NewTracker(), DefaultConfig())

	// Overlaps the frame partially: clamping leaves a usable crop.
	_, ok := classifier.Classify(region(3, face.Box{Top: -20, Left: -20, Right: 30, Bottom: 30}), frameImage())
	if !ok {
		t.Fatal("expected an observation for a clampable region")
	}
	if model.calls != 1 {
		t.Error("expected model invocation after clamping")
	}
}

func TestClassifyModelErrorDoesNotAbortBatch(t *testing.T) {
	model := &fakeModel{scores: happyScores(90), failOnce: true}
	tracker := anomaly.NewTracker()
	classifier := NewClassifier(model, tracker, DefaultConfig())

	box := face.Box{Top: 10, Left: 10, Right: 50, Bottom: 50}

	// First face fails, second succeeds.
	if _, ok := classifier.Classify(region(1, box), frameImage()); ok {
		t.Fatal("expected first classification to fail")
	}
	obs, ok := classifier.Classify(region(2, box), frameImage())
	if !ok {
		t.Fatal("failure of one face must not drop the next")
	}
	if obs.FaceID != 2 {
		t.Errorf("expected observation for face 2, got %d", obs.FaceID)
	}

	counts := tracker.CountsByKind()
	if counts[anomaly.ClassificationError] != 1 {
		t.Errorf("expected 1 classification_error, got %d", counts[anomaly.ClassificationError])
	}
	if tracker.All()[0].Detail == "" {
		t.Error("classification_error should carry the capability message")
	}
}

func TestClassifyLowConfidenceKeepsObservation(t *testing.T) {
	model := &fakeModel{scores: happyScores(30)}
	tracker := anomaly.NewTracker()
	classifier := NewClassifier(model, tracker, DefaultConfig())

	obs, ok := classifier.Classify(region(5, face.Box{Top: 0, Left: 0, Right: 40, Bottom: 40}), frameImage())
	if !ok {
		t.Fatal("low confidence must still record the observation")
	}
	if obs.Confidence != 30 {
		t.Errorf("expected confidence 30, got %f", obs.Confidence)
	}

	counts := tracker.CountsByKind()
	if counts[anomaly.LowConfidence] != 1 {
		t.Errorf("expected 1 low_confidence, got %d", counts[anomaly.LowConfidence])
	}
}

func TestClassifyConfidenceAtThresholdIsNotFlagged(t *testing.T) {
	model := &fakeModel{scores: happyScores(DefaultLowConfidence)}
	tracker := anomaly.NewTracker()
	classifier := NewClassifier(model, tracker, DefaultConfig())

	if _, ok := classifier.Classify(region(6, face.Box{Top: 0, Left: 0, Right: 40, Bottom: 40}), frameImage()); !ok {
		t.Fatal("expected an observation")
	}
	if tracker.Len() != 0 {
		t.Errorf("confidence exactly at threshold must not be flagged, got %d anomalies", tracker.Len())
	}
}

func TestScoresDominantIsDeterministic(t *testing.T) {
	scores := Scores{}
	for _, label := range Labels {
		scores[label] = 50
	}

	first, _ := scores.Dominant()
	for i := 0; i < 10; i++ {
		label, _ := scores.Dominant()
		if label != first {
			t.Fatal("tie-breaking must be deterministic")
		}
	}
}
