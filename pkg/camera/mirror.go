package camera

import (
	"fmt"

	"gocv.io/x/gocv"
)

// MirrorJPEG flips an encoded frame horizontally, re-encoding at the given
// quality. Used on the preview path so the dashboard shows a selfie view;
// the tracker keeps consuming unflipped frames.
func MirrorJPEG(frame []byte, quality int) ([]byte, error) {
	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("camera: decode frame: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("camera: empty frame")
	}

	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Flip(img, &flipped, 1)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, flipped, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("camera: encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
