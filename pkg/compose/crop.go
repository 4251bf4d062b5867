package compose

// Rect is a source-space crop rectangle in source pixel coordinates.
type Rect struct {
	SX, SY float64
	SW, SH float64
}

// CoverCrop returns the maximal centered rectangle of a srcW x srcH source
// that fills a dstW x dstH target with no letterboxing when scaled, the
// "object-fit: cover" rule. The result is always fully contained in the
// source bounds and centered on both axes.
func CoverCrop(srcW, srcH, dstW, dstH float64) Rect {
	srcRatio := srcW / srcH
	dstRatio := dstW / dstH

	if srcRatio > dstRatio {
		// Source relatively wider: crop width, keep full height.
		w := srcH * dstRatio
		return Rect{
			SX: (srcW - w) / 2,
			SY: 0,
			SW: w,
			SH: srcH,
		}
	}

	// Source relatively taller (or equal): crop height, keep full width.
	h := srcW / dstRatio
	return Rect{
		SX: 0,
		SY: (srcH - h) / 2,
		SW: srcW,
		SH: h,
	}
}
