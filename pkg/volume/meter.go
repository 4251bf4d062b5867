// Package volume meters microphone level as a smoothed pseudo-dB value.
package volume

import (
	"math"
)

// Tunable parameters. The offset and smoothing factor are calibration
// values that map typical speech and silence into a 0-100 display range;
// keep them in sync with the dashboard gauge.
const (
	// DBOffset shifts the RMS decibel value into a positive range.
	DBOffset = 95.0

	// Smoothing is the EMA mixing coefficient: weight of the new reading.
	// Settles within roughly 10-15 ticks of a step change.
	Smoothing = 0.15

	// SilenceDB is reported for an all-zero window instead of -Inf.
	SilenceDB = -100.0

	// center is the zero-amplitude value of an unsigned 8-bit sample.
	center = 128.0
)

// Meter converts time-domain audio windows into a damped volume level.
// It owns the smoothed state; feed it one analysis window per tick.
// The zero value is ready to use.
type Meter struct {
	smoothed float64
}

// Process meters one window of unsigned 8-bit time-domain samples
// (centered at 128) and returns the updated display volume.
//
// The window is normalized to [-1, 1], reduced to RMS, converted to
// decibels, offset into a positive range, then blended into the running
// exponential moving average.
func (m *Meter) Process(buf []byte) int {
	var sum float64
	for _, s := range buf {
		amp := (float64(s) - center) / center
		sum += amp * amp
	}

	rms := 0.0
	if len(buf) > 0 {
		rms = math.Sqrt(sum / float64(len(buf)))
	}

	db := SilenceDB
	if rms > 0 {
		db = 20 * math.Log10(rms)
	}

	raw := math.Max(0, db+DBOffset)
	m.smoothed = Smoothing*raw + (1-Smoothing)*m.smoothed

	return m.Level()
}

// Level returns the current display volume without consuming a window.
// When no audio window is available for a tick, the level simply holds.
func (m *Meter) Level() int {
	return int(math.Round(m.smoothed))
}
