package compose

import (
	"math"
	"testing"
)

func rectsClose(a, b Rect) bool {
	const eps = 1e-9
	return math.Abs(a.SX-b.SX) < eps && math.Abs(a.SY-b.SY) < eps &&
		math.Abs(a.SW-b.SW) < eps && math.Abs(a.SH-b.SH) < eps
}

func TestCoverCrop(t *testing.T) {
	tests := []struct {
		name                   string
		srcW, srcH, dstW, dstH float64
		want                   Rect
	}{
		{
			name: "wide source into portrait target crops width",
			srcW: 1920, srcH: 1080, dstW: 9, dstH: 16,
			want: Rect{SX: (1920 - 1080*9.0/16.0) / 2, SY: 0, SW: 1080 * 9.0 / 16.0, SH: 1080},
		},
		{
			name: "tall source into landscape target crops height",
			srcW: 1080, srcH: 1920, dstW: 16, dstH: 9,
			want: Rect{SX: 0, SY: (1920 - 1080*9.0/16.0) / 2, SW: 1080, SH: 1080 * 9.0 / 16.0},
		},
		{
			name: "matching aspect is the full source",
			srcW: 1280, srcH: 720, dstW: 1920, dstH: 1080,
			want: Rect{SX: 0, SY: 0, SW: 1280, SH: 720},
		},
		{
			name: "square source into wide target",
			srcW: 1000, srcH: 1000, dstW: 2, dstH: 1,
			want: Rect{SX: 0, SY: 250, SW: 1000, SH: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverCrop(tt.srcW, tt.srcH, tt.dstW, tt.dstH)
			if !rectsClose(got, tt.want) {
				t.Errorf("CoverCrop() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCoverCropContainedAndCentered(t *testing.T) {
	sizes := []struct{ sw, sh, tw, th float64 }{
		{1920, 1080, 9, 16},
		{640, 480, 1080, 1920},
		{3840, 2160, 1, 1},
		{720, 1280, 21, 9},
	}

	for _, s := range sizes {
		r := CoverCrop(s.sw, s.sh, s.tw, s.th)
		if r.SX < 0 || r.SY < 0 || r.SX+r.SW > s.sw+1e-9 || r.SY+r.SH > s.sh+1e-9 {
			t.Errorf("crop %+v escapes %vx%v source", r, s.sw, s.sh)
		}
		if math.Abs((s.sw-r.SW)/2-r.SX) > 1e-9 || math.Abs((s.sh-r.SH)/2-r.SY) > 1e-9 {
			t.Errorf("crop %+v not centered in %vx%v", r, s.sw, s.sh)
		}
	}
}

func TestCoverCropScaleInvariant(t *testing.T) {
	a := CoverCrop(1920, 1080, 9, 16)
	b := CoverCrop(3840, 2160, 9, 16)

	if !rectsClose(Rect{a.SX * 2, a.SY * 2, a.SW * 2, a.SH * 2}, b) {
		t.Errorf("doubling source did not double crop: %+v vs %+v", a, b)
	}
}
