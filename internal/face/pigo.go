package face

import (
	"fmt"
	"image"
	"log"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const (
	// Pigo detection parameters
	minFaceSize      = 20   // Minimum face size (pixels, working resolution)
	maxFaceSize      = 1000 // Maximum face size (pixels, working resolution)
	shiftFactor      = 0.1  // Shift factor for detection window
	scaleFactor      = 1.1  // Scale factor for image pyramid
	iouThreshold     = 0.2  // IoU threshold for clustering
	qualityThreshold = 5.0  // Minimum cascade quality score

	// Frames are downscaled by this factor before detection; detections are
	// rescaled by its inverse before leaving the localizer.
	workingScale = 0.5
)

// PigoDetector runs the pigo cascade classifier on a reduced-resolution
// grayscale copy of each frame.
type PigoDetector struct {
	classifier *pigo.Pigo
}

// NewPigoDetector loads and unpacks a pigo cascade file.
func NewPigoDetector(cascadePath string) (*PigoDetector, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	log.Printf("[DETECTOR] pigo cascade loaded (minSize: %d, qualityThreshold: %.1f)",
		minFaceSize, qualityThreshold)
	return &PigoDetector{classifier: classifier}, nil
}

// Scale reports the working-image reduction factor.
func (d *PigoDetector) Scale() float64 {
	return workingScale
}

// Detect runs the cascade over a downscaled grayscale copy of img.
// Returned boxes are in working-image coordinates.
func (d *PigoDetector) Detect(img image.Image) ([]Detection, error) {
	bounds := img.Bounds()
	cols := int(float64(bounds.Dx()) * workingScale)
	rows := int(float64(bounds.Dy()) * workingScale)
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("frame too small for detection: %dx%d", bounds.Dx(), bounds.Dy())
	}

	gray := reduceToGrayscale(img, cols, rows)

	params := pigo.CascadeParams{
		MinSize:     minFaceSize,
		MaxSize:     maxFaceSize,
		ShiftFactor: shiftFactor,
		ScaleFactor: scaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	// 0.0 = detect all, filter by quality below
	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, iouThreshold)

	var detections []Detection
	for _, det := range dets {
		if det.Q < qualityThreshold {
			continue
		}

		// Pigo returns center (Row, Col) and Scale (radius); convert to a box.
		size := float32(det.Scale * 2)
		detections = append(detections, Detection{
			X:          float32(det.Col) - float32(det.Scale),
			Y:          float32(det.Row) - float32(det.Scale),
			Width:      size,
			Height:     size,
			Confidence: float32(det.Q) / 100.0,
		})
	}

	return detections, nil
}

// reduceToGrayscale downscales img to cols x rows and converts it to the
// flat grayscale pixel array pigo expects.
func reduceToGrayscale(img image.Image, cols, rows int) []uint8 {
	bounds := img.Bounds()
	gray := make([]uint8, cols*rows)

	for y := 0; y < rows; y++ {
		srcY := bounds.Min.Y + y*bounds.Dy()/rows
		for x := 0; x < cols; x++ {
			srcX := bounds.Min.X + x*bounds.Dx()/cols
			r, g, b, _ := img.At(srcX, srcY).RGBA()
			// Standard grayscale conversion formula
			gray[y*cols+x] = uint8((r*299 + g*587 + b*114) / 1000 >> 8)
		}
	}

	return gray
}
