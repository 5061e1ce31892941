package emotion

import "image"

// Labels is the fixed 7-way emotion vocabulary, in model output order.
var Labels = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

// Scores maps every emotion label to a confidence in [0, 100].
type Scores map[string]float64

// Dominant returns the highest-scoring label and its score.
func (s Scores) Dominant() (string, float64) {
	best := ""
	bestScore := -1.0
	// Iterate the fixed label order so ties resolve deterministically.
	for _, label := range Labels {
		if score, ok := s[label]; ok && score > bestScore {
			best = label
			bestScore = score
		}
	}
	return best, bestScore
}

// Observation is one successful emotion classification for one face region.
type Observation struct {
	FrameIndex int     `json:"frame" msgpack:"frame"`
	Timestamp  float64 `json:"timestamp" msgpack:"timestamp"`
	FaceID     int     `json:"face_id" msgpack:"face_id"`
	Dominant   string  `json:"dominant_emotion" msgpack:"dominant_emotion"`
	Confidence float64 `json:"confidence" msgpack:"confidence"`
	Scores     Scores  `json:"scores" msgpack:"scores"`
}

// Model is the emotion-classification capability: cropped face image in,
// full 7-way score distribution out. May fail on malformed input.
type Model interface {
	Classify(faceCrop image.Image) (Scores, error)
}
