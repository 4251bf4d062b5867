// Package pose derives head pose readings from face-tracking transforms.
//
// A face tracker reports a rigid transform from face space to camera space
// as a row-major 4x4 matrix. Decode extracts pitch, yaw and roll in integer
// degrees plus a camera-relative distance from the Z translation.
package pose

import (
	"math"
	"time"
)

// Matrix is a row-major 4x4 transformation matrix as reported by a face tracker.
type Matrix [16]float64

// Identity returns the identity transform.
func Identity() Matrix {
	var m Matrix
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Sample is one instantaneous pose reading derived from a single matrix.
// All four fields come from the same matrix; there are no partial updates.
type Sample struct {
	Pitch    int
	Yaw      int
	Roll     int
	Distance int
}

// State is the published pose snapshot: the latest sample merged with the
// latest metered volume. A State is immutable; the sampler replaces the
// current one atomically each tick.
type State struct {
	Pitch    int `json:"pitch"`
	Yaw      int `json:"yaw"`
	Roll     int `json:"roll"`
	Distance int `json:"distance"`
	Volume   int `json:"volume"`
}

// WithSample returns a copy of s with the angle group replaced.
// The angle fields always move together (last-value-wins per field group).
func (s State) WithSample(smp Sample) State {
	s.Pitch = smp.Pitch
	s.Yaw = smp.Yaw
	s.Roll = smp.Roll
	s.Distance = smp.Distance
	return s
}

// WithVolume returns a copy of s with the volume replaced.
func (s State) WithVolume(v int) State {
	s.Volume = v
	return s
}

// Decode converts a tracking matrix into a pose sample.
//
// The decomposition reads the rotation part directly:
//
//	pitch = asin(-m[6])
//	yaw   = atan2(m[2], m[10])
//	roll  = atan2(m[4], m[5])
//
// and distance = |m[14]|, the Z translation magnitude. Angles are reported
// in degrees, all values rounded to the nearest integer.
//
// The asin argument is clamped to [-1, 1]: numerical drift in the tracker
// can push m[6] just outside the domain near gimbal lock, and NaN must never
// reach a published State. A matrix carrying NaN or Inf in any entry the
// decomposition reads is rejected as a whole (ok=false) and the caller keeps
// its last known angles. The inputs are checked, not the outputs: atan2 maps
// an infinite argument to a finite angle, which would otherwise let a broken
// matrix through.
//
// The timestamp orders tracker requests; it does not enter the math.
func Decode(m Matrix, _ time.Time) (Sample, bool) {
	for _, v := range [...]float64{m[2], m[4], m[5], m[6], m[10], m[14]} {
		if !finite(v) {
			return Sample{}, false
		}
	}

	pitch := math.Asin(clamp(-m[6], -1, 1)) * (180 / math.Pi)
	yaw := math.Atan2(m[2], m[10]) * (180 / math.Pi)
	roll := math.Atan2(m[4], m[5]) * (180 / math.Pi)
	dist := math.Abs(m[14])

	return Sample{
		Pitch:    int(math.Round(pitch)),
		Yaw:      int(math.Round(yaw)),
		Roll:     int(math.Round(roll)),
		Distance: int(math.Round(dist)),
	}, true
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
