package facetrack

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/poselab/go-posehud/internal/log"
	"github.com/poselab/go-posehud/pkg/pose"
)

// YuNetConfig holds detector configuration.
type YuNetConfig struct {
	ModelPath        string        // Path to the YuNet ONNX model
	ConfidenceThresh float64       // Minimum confidence (default 0.5)
	InputWidth       int           // Model input width
	InputHeight      int           // Model input height
	Interval         time.Duration // Detection cadence
}

// DefaultYuNetConfig returns production defaults.
func DefaultYuNetConfig(modelPath string) YuNetConfig {
	return YuNetConfig{
		ModelPath:        modelPath,
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
		Interval:         100 * time.Millisecond,
	}
}

// YuNet tracks faces with OpenCV's FaceDetectorYN and adapts detections
// into tracking matrices.
//
// Detection runs on its own cadence in a background loop; Poll only reads
// the latest result, so the sampler tick never waits on inference. Each
// detection is handed out once: after a Poll consumes it, subsequent Polls
// report no result until the next detection lands.
type YuNet struct {
	video FrameSource
	cfg   YuNetConfig

	// detMu serializes every use of the native detector, including Close;
	// releasing it mid-inference would let Close free the detector under a
	// running Detect.
	detMu    sync.Mutex
	detector gocv.FaceDetectorYN
	closed   bool

	// mu guards only the published result so Poll never waits on inference.
	mu     sync.Mutex
	latest pose.Matrix
	fresh  bool
}

// NewYuNet creates a YuNet-backed tracker reading frames from video.
func NewYuNet(cfg YuNetConfig, video FrameSource) (*YuNet, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("facetrack: model file not found: %s", cfg.ModelPath)
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNet{
		detector: detector,
		video:    video,
		cfg:      cfg,
	}, nil
}

// Run detects faces at the configured cadence until ctx is cancelled.
func (y *YuNet) Run(ctx context.Context) {
	ticker := time.NewTicker(y.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			y.detectOnce()
		}
	}
}

func (y *YuNet) detectOnce() {
	frame, err := y.video.CaptureJPEG()
	if err != nil {
		return
	}

	dets, err := y.detect(frame)
	if err != nil {
		log.Debug("face detection failed", "error", err)
		return
	}

	best := SelectBest(dets)
	if best == nil {
		return
	}

	m := matrixFromDetection(*best)
	y.mu.Lock()
	y.latest = m
	y.fresh = true
	y.mu.Unlock()
}

// detect runs the YuNet model over one JPEG frame. The detector lock is
// held for the whole call so a concurrent Close cannot free the native
// detector mid-inference.
func (y *YuNet) detect(jpeg []byte) ([]Detection, error) {
	y.detMu.Lock()
	defer y.detMu.Unlock()
	if y.closed {
		return nil, fmt.Errorf("facetrack: tracker closed")
	}

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	y.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	y.detector.Detect(img, &faces)

	// YuNet output format (15 columns):
	// 0-3: x, y, w, h (bounding box in pixels)
	// 4-13: 5 facial landmarks (x,y pairs)
	// 14: face score
	var detections []Detection
	for r := 0; r < faces.Rows(); r++ {
		detections = append(detections, Detection{
			X:          float64(faces.GetFloatAt(r, 0)) / imgW,
			Y:          float64(faces.GetFloatAt(r, 1)) / imgH,
			W:          float64(faces.GetFloatAt(r, 2)) / imgW,
			H:          float64(faces.GetFloatAt(r, 3)) / imgH,
			Confidence: float64(faces.GetFloatAt(r, 14)),
		})
	}

	return detections, nil
}

// Poll hands out the latest detection, once.
func (y *YuNet) Poll(_ time.Time) (pose.Matrix, bool) {
	y.mu.Lock()
	defer y.mu.Unlock()
	if !y.fresh {
		return pose.Matrix{}, false
	}
	y.fresh = false
	return y.latest, true
}

// Close releases the detector resources. Blocks until any in-flight
// detection finishes.
func (y *YuNet) Close() error {
	y.detMu.Lock()
	defer y.detMu.Unlock()
	if y.closed {
		return nil
	}
	y.closed = true
	y.detector.Close()
	return nil
}
