package emotion

import (
	"fmt"
	"image"
	"math"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	modelInputSize = 64 // model expects 64x64 grayscale crops
	numEmotions    = 7
)

// ONNXClassifier scores face crops with a 7-class emotion model through
// ONNX Runtime. Sessions are not safe for concurrent use; the pipeline
// calls Classify from a single stage at a time.
type ONNXClassifier struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewONNXClassifier initializes the ONNX Runtime environment and creates a
// session for the model at modelPath.
func NewONNXClassifier(modelPath string) (*ONNXClassifier, error) {
	libraryPath := "libonnxruntime.so"
	if os.PathSeparator == '\\' {
		libraryPath = "onnxruntime.dll"
	}
	ort.SetSharedLibraryPath(libraryPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	// Input: 1x1x64x64 grayscale, NCHW
	inputShape := ort.NewShape(1, 1, modelInputSize, modelInputSize)
	inputTensor, err := ort.NewTensor(inputShape, make([]float32, modelInputSize*modelInputSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	// Output: 1x7 raw logits
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, numEmotions))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"output"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Classify preprocesses the crop, runs inference and returns scores scaled
// to the 0..100 range the rest of the pipeline expects.
func (c *ONNXClassifier) Classify(faceCrop image.Image) (Scores, error) {
	if faceCrop == nil {
		return nil, fmt.Errorf("nil face crop")
	}

	c.preprocess(faceCrop)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("emotion inference failed: %w", err)
	}

	return softmaxScores(c.outputTensor.GetData()), nil
}

// Close releases the session and tensors.
func (c *ONNXClassifier) Close() {
	if c.session != nil {
		c.session.Destroy()
	}
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	ort.DestroyEnvironment()
}

// preprocess resizes the crop to 64x64 grayscale and fills the input tensor.
func (c *ONNXClassifier) preprocess(img image.Image) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	data := c.inputTensor.GetData()
	for y := 0; y < modelInputSize; y++ {
		srcY := bounds.Min.Y + y*height/modelInputSize
		for x := 0; x < modelInputSize; x++ {
			srcX := bounds.Min.X + x*width/modelInputSize
			r, g, b, _ := img.At(srcX, srcY).RGBA()
			gray := float32((r*299+g*587+b*114)/1000) / 257.0
			data[y*modelInputSize+x] = gray
		}
	}
}

// softmaxScores turns raw logits into a 0..100 score per label.
func softmaxScores(logits []float32) Scores {
	maxLogit := logits[0]
	for _, v := range logits[1:numEmotions] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	exps := make([]float64, numEmotions)
	var sum float64
	for i := 0; i < numEmotions; i++ {
		exps[i] = math.Exp(float64(logits[i] - maxLogit))
		sum += exps[i]
	}

	scores := make(Scores, numEmotions)
	for i, label := range Labels {
		scores[label] = exps[i] / sum * 100.0
	}
	return scores
}
