package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// AudioChunk is one captured buffer of PCM16 audio.
type AudioChunk struct {
	// Samples contains PCM16 audio samples (little-endian order on the wire).
	Samples []int16

	// SampleRate is the sample rate of this chunk.
	SampleRate int

	// Channels is the number of channels in this chunk.
	Channels int
}

// Duration returns the duration of this audio chunk.
func (c *AudioChunk) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}

// Source captures audio from a microphone or other input device.
type Source interface {
	// Start begins audio capture.
	Start(ctx context.Context) error

	// Stop halts audio capture. Safe to call multiple times.
	Stop() error

	// Stream returns a channel that receives audio chunks.
	// The channel is closed when the source is stopped.
	Stream() <-chan AudioChunk

	// Config returns the current audio configuration.
	Config() Config

	// Name returns the backend name (e.g., "mock").
	Name() string

	// Close releases all resources. After Close, the source cannot restart.
	io.Closer
}

// NewSource creates a new audio source for the configured backend.
// BackendAuto currently resolves to the mock source; hardware backends
// register here as they land.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = BackendMock
	}

	logger.Info("creating audio source",
		"backend", backend,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
		"buffer_ms", cfg.BufferDuration.Milliseconds(),
	)

	switch backend {
	case BackendMock:
		return NewMockSource(cfg, logger), nil
	default:
		return nil, fmt.Errorf("audioio: unknown backend %q", backend)
	}
}
