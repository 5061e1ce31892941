package pose

import (
	"fmt"
	"image"
	"io"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// SidecarLandmarker talks to the landmark sidecar service over a unix
// socket. The sidecar owns the actual pose/hand models; this client only
// ships frames and decodes landmark sets.
type SidecarLandmarker struct {
	socketPath string
	timeout    time.Duration
}

// landmarkRequest is sent to the sidecar.
type landmarkRequest struct {
	Kind            string `msgpack:"kind"` // "pose" or "hands"
	TimestampMillis int64  `msgpack:"ts"`
	Height          int    `msgpack:"h"`
	Width           int    `msgpack:"w"`
	Data            []byte `msgpack:"d"` // RGB uint8, row-major, shape (H, W, 3)
}

// landmarkResponse is received from the sidecar.
type landmarkResponse struct {
	Sets        [][]Landmark `msgpack:"sets"`
	InferenceMs float32      `msgpack:"inference_ms"`
	Error       string       `msgpack:"error"`
}

// NewSidecarLandmarker creates a client for the sidecar at socketPath.
func NewSidecarLandmarker(socketPath string) *SidecarLandmarker {
	return &SidecarLandmarker{
		socketPath: socketPath,
		timeout:    2 * time.Second,
	}
}

// DetectPose returns zero or more 33-point body landmark sets.
func (c *SidecarLandmarker) DetectPose(img image.Image, timestampMillis int64) ([][]Landmark, error) {
	return c.detect("pose", img, timestampMillis)
}

// DetectHands returns zero or more 21-point hand landmark sets.
func (c *SidecarLandmarker) DetectHands(img image.Image, timestampMillis int64) ([][]Landmark, error) {
	return c.detect("hands", img, timestampMillis)
}

func (c *SidecarLandmarker) detect(kind string, img image.Image, timestampMillis int64) ([][]Landmark, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to landmark sidecar: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	bounds := img.Bounds()
	req := landmarkRequest{
		Kind:            kind,
		TimestampMillis: timestampMillis,
		Height:          bounds.Dy(),
		Width:           bounds.Dx(),
		Data:            toRGBBytes(img),
	}

	reqData, err := msgpack.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		// Half-close so the sidecar sees EOF and replies.
		uc.CloseWrite()
	}

	respData, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp landmarkResponse
	if err := msgpack.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("landmark sidecar: %s", resp.Error)
	}

	return resp.Sets, nil
}

// toRGBBytes flattens an image into the row-major RGB buffer the sidecar
// expects.
func toRGBBytes(img image.Image) []byte {
	bounds := img.Bounds()
	data := make([]byte, 0, bounds.Dx()*bounds.Dy()*3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			data = append(data, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return data
}
