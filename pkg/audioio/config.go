// Package audioio provides audio capture for the volume meter.
//
// A Source produces PCM16 chunks; the Analyser adapts the newest chunk
// into the fixed-size unsigned 8-bit time-domain window the sampler polls
// each tick. The mock backend keeps CI and hardware-free demos working.
package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendMock uses a synthetic source for testing and demos.
	BackendMock Backend = "mock"
)

// Config holds audio capture configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	Backend Backend `json:"backend"`

	// SampleRate is the capture sample rate in Hz.
	SampleRate int `json:"sample_rate"`

	// Channels is the number of audio channels.
	Channels int `json:"channels"`

	// BufferDuration is the size of each captured chunk.
	BufferDuration time.Duration `json:"buffer_duration"`

	// WindowSize is the number of samples in an analysis window.
	WindowSize int `json:"window_size"`
}

// DefaultConfig returns metering defaults: 16kHz mono, 32ms chunks,
// 1024-sample analysis windows.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     16000,
		Channels:       1,
		BufferDuration: 32 * time.Millisecond,
		WindowSize:     1024,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("audioio: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("audioio: channels must be positive, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("audioio: buffer duration must be positive, got %v", c.BufferDuration)
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("audioio: window size must be positive, got %d", c.WindowSize)
	}
	return nil
}

// BufferSize returns the number of samples per channel in one chunk.
func (c Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}
