package facetrack

import (
	"math"
	"sync"
	"time"

	"github.com/poselab/go-posehud/pkg/pose"
)

// Mock is a scripted tracker for tests and hardware-free demos.
// It sweeps yaw and pitch sinusoidally and keeps a fixed distance,
// so the dashboard animates without a camera attached.
type Mock struct {
	mu      sync.Mutex
	start   time.Time
	started bool

	// Present, when false, simulates a tick with no tracked face.
	Present bool

	// DistanceCM is the reported Z translation magnitude.
	DistanceCM float64
}

// NewMock creates a mock tracker that always reports a face at 80cm.
func NewMock() *Mock {
	return &Mock{Present: true, DistanceCM: 80}
}

// Poll synthesizes a transform for the given timestamp.
func (m *Mock) Poll(ts time.Time) (pose.Matrix, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Present {
		return pose.Matrix{}, false
	}
	if !m.started {
		m.start = ts
		m.started = true
	}

	t := ts.Sub(m.start).Seconds()
	yaw := 0.6 * math.Sin(t*0.9)   // ±34°
	pitch := 0.25 * math.Sin(t*1.7) // ±14°

	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)

	// Row-major R = Ry * Rx, plus Z translation.
	mat := pose.Identity()
	mat[0], mat[1], mat[2] = cy, sy*sp, sy*cp
	mat[4], mat[5], mat[6] = 0, cp, -sp
	mat[8], mat[9], mat[10] = -sy, cy*sp, cy*cp
	mat[14] = -m.DistanceCM
	return mat, true
}

// Close implements Tracker.
func (m *Mock) Close() error {
	return nil
}
