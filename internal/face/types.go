package face

import "image"

// Box is a face bounding box in source-resolution pixel coordinates.
type Box struct {
	Top    int `json:"top" msgpack:"top"`
	Left   int `json:"left" msgpack:"left"`
	Right  int `json:"right" msgpack:"right"`
	Bottom int `json:"bottom" msgpack:"bottom"`
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Region is one detected face within one sampled frame.
//
// FaceID is unique across the whole run and strictly increasing in
// assignment order, but carries no identity across frames: the same person
// detected in two frames receives two different ids.
type Region struct {
	FrameIndex int     `json:"frame" msgpack:"frame"`
	Timestamp  float64 `json:"timestamp" msgpack:"timestamp"`
	FaceID     int     `json:"face_id" msgpack:"face_id"`
	Box        Box     `json:"bounding_box" msgpack:"bounding_box"`
}

// Detection is a raw capability result: a bounding box in the reduced
// working resolution plus a detection confidence.
type Detection struct {
	X          float32
	Y          float32
	Width      float32
	Height     float32
	Confidence float32
}

// Detector is the face-detection capability. Input is a full frame image;
// output boxes are in the detector's working resolution and must be
// rescaled by the caller using Scale before storage.
type Detector interface {
	Detect(img image.Image) ([]Detection, error)
	// Scale is the factor the working image was reduced by (e.g. 0.5);
	// detections are rescaled by its inverse. 1.0 means no reduction.
	Scale() float64
}
