// Package compose renders pose-state composites: the mirrored, cover-cropped
// camera frame with the HUD readout flattened on top, at any output
// resolution independent of the live preview.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/poselab/go-posehud/pkg/pose"
)

// Sentinel errors for capture failures.
var (
	// ErrNoFrame is returned when the source frame is missing or undecodable.
	ErrNoFrame = errors.New("compose: no source frame")

	// ErrBadSize is returned for a non-positive output resolution.
	ErrBadSize = errors.New("compose: invalid output size")
)

// ReferenceWidth is the design width the HUD layout is authored against.
// Every HUD dimension is multiplied by outputWidth/ReferenceWidth so the
// panel occupies the same proportion of the frame at any resolution.
const ReferenceWidth = 400.0

// HUD palette.
var (
	panelColor   = color.RGBA{R: 16, G: 18, B: 24, A: 255}
	yawColor     = color.RGBA{R: 102, G: 217, B: 255, A: 255}
	pitchColor   = color.RGBA{R: 255, G: 176, B: 102, A: 255}
	rollColor    = color.RGBA{R: 199, G: 146, B: 255, A: 255}
	distColor    = color.RGBA{R: 140, G: 255, B: 170, A: 255}
	volColor     = color.RGBA{R: 255, G: 230, B: 109, A: 255}
	valueColor   = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	dividerColor = color.RGBA{R: 90, G: 95, B: 105, A: 255}
	statusColor  = color.RGBA{R: 80, G: 220, B: 100, A: 255}
)

// Renderer flattens a frame + pose state into a JPEG composite.
// Rendering is deterministic: identical inputs produce identical bytes.
type Renderer struct {
	// Quality is the output JPEG quality (1-100).
	Quality int

	// StatusLabel is drawn next to the indicator dot below the panel.
	StatusLabel string
}

// NewRenderer returns a renderer with production defaults.
func NewRenderer() *Renderer {
	return &Renderer{
		Quality:     92,
		StatusLabel: "LIVE",
	}
}

// Render draws the mirrored, cover-cropped source frame and the HUD overlay
// onto an outW x outH canvas and returns it encoded as JPEG.
//
// The crop is computed against the OUTPUT aspect ratio, not the preview's,
// so composites stay self-consistent when captured at a resolution that
// differs from what is on screen. If the frame cannot be decoded the call
// fails without producing a partial image.
func (r *Renderer) Render(frameJPEG []byte, st pose.State, outW, outH int) ([]byte, error) {
	if outW <= 0 || outH <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, outW, outH)
	}

	src, err := gocv.IMDecode(frameJPEG, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, ErrNoFrame
	}

	crop := CoverCrop(float64(src.Cols()), float64(src.Rows()), float64(outW), float64(outH))
	rect := cropToPixels(crop, src.Cols(), src.Rows())

	region := src.Region(rect)
	defer region.Close()

	canvas := gocv.NewMat()
	defer canvas.Close()
	gocv.Resize(region, &canvas, image.Pt(outW, outH), 0, 0, gocv.InterpolationLinear)

	// Horizontal mirror so the still matches the selfie preview.
	gocv.Flip(canvas, &canvas, 1)

	scale := float64(outW) / ReferenceWidth
	r.drawHUD(&canvas, st, scale)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, canvas, []int{gocv.IMWriteJpegQuality, r.Quality})
	if err != nil {
		return nil, fmt.Errorf("compose: encode: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	if len(out) == 0 {
		return nil, ErrNoFrame
	}
	return out, nil
}

// cropToPixels snaps a float crop rectangle to integer pixel bounds,
// clamped inside the source.
func cropToPixels(c Rect, srcW, srcH int) image.Rectangle {
	x0 := int(math.Round(c.SX))
	y0 := int(math.Round(c.SY))
	x1 := int(math.Round(c.SX + c.SW))
	y1 := int(math.Round(c.SY + c.SH))

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > srcW {
		x1 = srcW
	}
	if y1 > srcH {
		y1 = srcH
	}
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return image.Rect(x0, y0, x1, y1)
}

// drawHUD paints the readout panel and status indicator. All dimensions
// are multiples of scale so layout is resolution-proportional.
func (r *Renderer) drawHUD(canvas *gocv.Mat, st pose.State, scale float64) {
	px := func(v float64) int { return int(math.Round(v * scale)) }

	margin := px(14)
	panelW := px(168)
	panelH := px(118)
	radius := px(10)
	padX := px(12)
	lineH := px(18)

	panel := image.Rect(margin, margin, margin+panelW, margin+panelH)

	// Semi-transparent rounded panel: flatten a solid overlay into the
	// canvas with AddWeighted. Corner circles + two rectangles make the
	// rounded shape.
	overlay := canvas.Clone()
	defer overlay.Close()
	gocv.Rectangle(&overlay, image.Rect(panel.Min.X+radius, panel.Min.Y, panel.Max.X-radius, panel.Max.Y), panelColor, -1)
	gocv.Rectangle(&overlay, image.Rect(panel.Min.X, panel.Min.Y+radius, panel.Max.X, panel.Max.Y-radius), panelColor, -1)
	for _, pt := range []image.Point{
		{panel.Min.X + radius, panel.Min.Y + radius},
		{panel.Max.X - radius, panel.Min.Y + radius},
		{panel.Min.X + radius, panel.Max.Y - radius},
		{panel.Max.X - radius, panel.Max.Y - radius},
	} {
		gocv.Circle(&overlay, pt, radius, panelColor, -1)
	}
	gocv.AddWeighted(overlay, 0.72, *canvas, 0.28, 0, canvas)

	labelScale := 0.42 * scale
	valueScale := 0.5 * scale
	thickness := int(math.Max(1, math.Round(scale)))

	row := panel.Min.Y + lineH
	writeRow := func(label string, labelColor color.RGBA, value string) {
		gocv.PutText(canvas, label, image.Pt(panel.Min.X+padX, row), gocv.FontHersheySimplex, labelScale, labelColor, thickness)
		gocv.PutText(canvas, value, image.Pt(panel.Min.X+padX+px(70), row), gocv.FontHersheyPlain, valueScale*1.6, valueColor, thickness)
		row += lineH
	}

	writeRow("YAW", yawColor, fmt.Sprintf("%d deg", abs(st.Yaw)))
	writeRow("PITCH", pitchColor, fmt.Sprintf("%d deg", abs(st.Pitch)))
	writeRow("ROLL", rollColor, fmt.Sprintf("%d deg", abs(st.Roll)))

	gocv.Line(canvas,
		image.Pt(panel.Min.X+padX, row-lineH/2),
		image.Pt(panel.Max.X-padX, row-lineH/2),
		dividerColor, thickness)
	row += px(4)

	writeRow("DIST", distColor, fmt.Sprintf("%d", st.Distance))
	writeRow("VOL", volColor, fmt.Sprintf("%d", st.Volume))

	// Status indicator below the panel.
	dotY := panel.Max.Y + px(14)
	gocv.Circle(canvas, image.Pt(panel.Min.X+px(6), dotY), px(4), statusColor, -1)
	gocv.PutText(canvas, r.StatusLabel, image.Pt(panel.Min.X+px(16), dotY+px(4)), gocv.FontHersheySimplex, labelScale, valueColor, thickness)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
