package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/poselab/go-posehud/internal/log"
)

// Source provides camera frames as encoded JPEG.
type Source interface {
	// CaptureJPEG grabs the most recent frame. It may be called from
	// multiple goroutines (preview, tracker, capture).
	CaptureJPEG() ([]byte, error)

	// Dimensions returns the native frame width and height.
	Dimensions() (int, int)

	// Close releases the device.
	Close() error
}

// Webcam captures frames from a local camera via OpenCV.
type Webcam struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	frame  gocv.Mat
	cfg    Config
	closed bool
}

// OpenWebcam opens the camera device and applies the configuration.
func OpenWebcam(deviceID int, cfg Config) (*Webcam, error) {
	cap, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", deviceID, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	log.Info("webcam opened",
		"device", deviceID,
		"width", cfg.Width,
		"height", cfg.Height,
		"fps", cfg.Framerate,
	)

	return &Webcam{
		cap:   cap,
		frame: gocv.NewMat(),
		cfg:   cfg,
	}, nil
}

// Apply updates device settings from a new configuration.
func (w *Webcam) Apply(cfg Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("camera: closed")
	}

	w.cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	w.cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	w.cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	w.cfg = cfg
	return nil
}

// CaptureJPEG grabs one frame and encodes it.
func (w *Webcam) CaptureJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, fmt.Errorf("camera: closed")
	}

	if ok := w.cap.Read(&w.frame); !ok || w.frame.Empty() {
		return nil, fmt.Errorf("camera: no frame from device")
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, w.frame, []int{gocv.IMWriteJpegQuality, w.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("camera: encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Dimensions returns the configured capture resolution.
func (w *Webcam) Dimensions() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg.Width, w.cfg.Height
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.frame.Close()
	return w.cap.Close()
}
