package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

// MockSource serves a fixed synthetic frame, for tests and camera-free runs.
type MockSource struct {
	mu     sync.Mutex
	frame  []byte
	width  int
	height int
	closed bool
}

// NewMockSource renders a gradient test card at the given resolution.
func NewMockSource(width, height int) (*MockSource, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: 80,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("camera: encode mock frame: %w", err)
	}

	return &MockSource{
		frame:  buf.Bytes(),
		width:  width,
		height: height,
	}, nil
}

// CaptureJPEG returns the synthetic frame.
func (m *MockSource) CaptureJPEG() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("camera: closed")
	}
	return m.frame, nil
}

// Dimensions returns the test card resolution.
func (m *MockSource) Dimensions() (int, int) {
	return m.width, m.height
}

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
