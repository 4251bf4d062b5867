// Package facetrack supplies face-tracking transforms to the sampler.
//
// The primary contract is the Tracker interface: once per tick the sampler
// polls for zero-or-one row-major 4x4 matrices. Any upstream landmark model
// can sit behind it; this package ships a YuNet-backed adapter for plain
// webcams and a scripted mock for tests and demos.
package facetrack

// Detection is a detected face in normalized frame coordinates.
type Detection struct {
	X, Y       float64 // Top-left corner (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)
}

// Center returns the center point of the detection.
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box.
func (d Detection) Area() float64 {
	return d.W * d.H
}

// SelectBest picks the face to track from multiple detections.
// Confidence weighs 70% and size 30%, so a confident large face wins
// over a marginal one closer to the camera.
func SelectBest(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}
	if len(dets) == 1 {
		return &dets[0]
	}

	maxArea := 0.0
	for _, d := range dets {
		if d.Area() > maxArea {
			maxArea = d.Area()
		}
	}

	bestScore := -1.0
	var best *Detection
	for i := range dets {
		score := dets[i].Confidence*0.7 + (dets[i].Area()/maxArea)*0.3
		if score > bestScore {
			bestScore = score
			best = &dets[i]
		}
	}
	return best
}
