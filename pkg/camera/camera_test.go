package camera

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"tiny width rejected", func(c *Config) { c.Width = 10 }, true},
		{"huge height rejected", func(c *Config) { c.Height = 9000 }, true},
		{"zero framerate rejected", func(c *Config) { c.Framerate = 0 }, true},
		{"quality over 100 rejected", func(c *Config) { c.Quality = 150 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			errs := cfg.Validate()
			if tt.wantErr && len(errs) == 0 {
				t.Error("expected validation errors")
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("unexpected validation errors: %v", errs)
			}
		})
	}
}

func TestManagerUpdateConfig(t *testing.T) {
	m := NewManager()

	var applied *Config
	m.OnConfigChange = func(cfg Config) error {
		applied = &cfg
		return nil
	}

	// JSON numbers decode as float64.
	err := m.UpdateConfig(map[string]interface{}{
		"width":   float64(640),
		"height":  float64(480),
		"quality": 70,
		"mirror":  false,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	cfg := m.GetConfig()
	if cfg.Width != 640 || cfg.Height != 480 || cfg.Quality != 70 || cfg.Mirror {
		t.Errorf("config after update = %+v", cfg)
	}
	if applied == nil || applied.Width != 640 {
		t.Error("OnConfigChange not invoked with new config")
	}
}

func TestManagerRejectsUnknownParameter(t *testing.T) {
	m := NewManager()
	if err := m.UpdateConfig(map[string]interface{}{"zoom": 2.0}); err == nil {
		t.Error("unknown parameter accepted")
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	m := NewManager()
	before := m.GetConfig()

	if err := m.UpdateConfig(map[string]interface{}{"width": float64(1)}); err == nil {
		t.Error("invalid width accepted")
	}
	if m.GetConfig() != before {
		t.Error("invalid update mutated config")
	}
}

func TestMirrorJPEG(t *testing.T) {
	// Left half black, right half white; the mirror must swap them.
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 32; x < 64; x++ {
			src.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	out, err := MirrorJPEG(buf.Bytes(), 90)
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("mirrored frame is not JPEG: %v", err)
	}
	if sz := img.Bounds().Size(); sz.X != 64 || sz.Y != 32 {
		t.Fatalf("mirrored size = %v, want 64x32", sz)
	}

	left, _, _, _ := img.At(8, 16).RGBA()
	right, _, _, _ := img.At(56, 16).RGBA()
	if left < 0x8000 {
		t.Errorf("left side stayed dark after mirror: %#x", left)
	}
	if right > 0x7fff {
		t.Errorf("right side stayed bright after mirror: %#x", right)
	}

	if _, err := MirrorJPEG([]byte("not a jpeg"), 90); err == nil {
		t.Error("garbage input accepted")
	}
}

func TestMockSource(t *testing.T) {
	src, err := NewMockSource(320, 240)
	if err != nil {
		t.Fatalf("mock source: %v", err)
	}
	defer src.Close()

	frame, err := src.CaptureJPEG()
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("mock frame is not JPEG: %v", err)
	}
	if sz := img.Bounds().Size(); sz.X != 320 || sz.Y != 240 {
		t.Errorf("frame size = %v, want 320x240", sz)
	}

	if w, h := src.Dimensions(); w != 320 || h != 240 {
		t.Errorf("dimensions = %dx%d", w, h)
	}

	src.Close()
	if _, err := src.CaptureJPEG(); err == nil {
		t.Error("capture after close succeeded")
	}
}
