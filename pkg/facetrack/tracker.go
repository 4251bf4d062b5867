package facetrack

import (
	"math"
	"time"

	"github.com/poselab/go-posehud/pkg/pose"
)

// Tracker is the face-tracking capability the sampler polls each tick.
// Poll must never block; ok=false means no tracking result this tick.
type Tracker interface {
	Poll(ts time.Time) (pose.Matrix, bool)
	Close() error
}

// FrameSource provides camera frames for detector-backed trackers.
type FrameSource interface {
	CaptureJPEG() ([]byte, error)
}

// Depth calibration, shared by detector-backed trackers.
// A face filling ~20% of the frame width is roughly 1m from the camera,
// giving distance ≈ k / faceWidth. Distances are reported in centimeters.
const (
	depthCalibration = 0.2 // meters at faceWidth = 0.2
	minDepthMeters   = 0.3
	maxDepthMeters   = 5.0
)

// depthFromFaceWidth estimates camera distance in centimeters from a
// normalized face bounding-box width. Returns 0 for an invalid width.
func depthFromFaceWidth(faceWidth float64) float64 {
	if faceWidth <= 0 || faceWidth > 1 {
		return 0
	}
	m := depthCalibration / faceWidth
	if m < minDepthMeters {
		m = minDepthMeters
	}
	if m > maxDepthMeters {
		m = maxDepthMeters
	}
	return math.Round(m * 100)
}

// matrixFromDetection synthesizes a tracking transform from a bounding-box
// detection. Bounding boxes carry no orientation, so the rotation part is
// identity and only the Z translation (depth) is populated. Trackers that
// see real landmarks supply full rotation matrices instead.
func matrixFromDetection(d Detection) pose.Matrix {
	m := pose.Identity()
	m[14] = -depthFromFaceWidth(d.W)
	return m
}
