package audioio

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"
)

// MockSource is a synthetic audio source for testing and demos.
// It generates silence by default, or a sine wave when configured.
type MockSource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	streamCh chan AudioChunk
	stopCh   chan struct{}

	// Synthetic audio generation
	phase     float64
	frequency float64 // Hz, 0 = silence
	amplitude float64 // 0.0 to 1.0
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithSineWave configures the mock to generate a sine wave.
func WithSineWave(frequency, amplitude float64) MockSourceOption {
	return func(m *MockSource) {
		m.frequency = frequency
		m.amplitude = amplitude
	}
}

// NewMockSource creates a new mock audio source.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MockSource{
		cfg:       cfg,
		logger:    logger,
		streamCh:  make(chan AudioChunk, 10),
		stopCh:    make(chan struct{}),
		frequency: 0, // Silence by default
		amplitude: 0.5,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start begins generating audio.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	if m.running {
		return nil
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.streamCh = make(chan AudioChunk, 10)

	go m.generateLoop(ctx, m.stopCh, m.streamCh)
	return nil
}

// generateLoop is the only sender on streamCh and the only goroutine that
// closes it. Stop signals via stopCh; closing streamCh from outside the
// loop would race the send.
func (m *MockSource) generateLoop(ctx context.Context, stopCh chan struct{}, streamCh chan AudioChunk) {
	defer close(streamCh)

	// Generate at the pace a real device would deliver chunks.
	ticker := time.NewTicker(m.cfg.BufferDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-stopCh:
			return
		case <-ticker.C:
			chunk := m.nextChunk()
			select {
			case streamCh <- chunk:
			default:
				// Consumer is behind; drop rather than queue.
			}
		}
	}
}

// nextChunk synthesizes one buffer of samples.
func (m *MockSource) nextChunk() AudioChunk {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.cfg.BufferSize() * m.cfg.Channels
	samples := make([]int16, n)

	if m.frequency > 0 {
		step := 2 * math.Pi * m.frequency / float64(m.cfg.SampleRate)
		for i := 0; i < m.cfg.BufferSize(); i++ {
			v := int16(m.amplitude * 32767 * math.Sin(m.phase))
			for ch := 0; ch < m.cfg.Channels; ch++ {
				samples[i*m.cfg.Channels+ch] = v
			}
			m.phase += step
			if m.phase > 2*math.Pi {
				m.phase -= 2 * math.Pi
			}
		}
	}

	return AudioChunk{
		Samples:    samples,
		SampleRate: m.cfg.SampleRate,
		Channels:   m.cfg.Channels,
	}
}

// Stop halts generation. The generate loop drains out and closes the
// stream channel itself.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	m.running = false
	close(m.stopCh)
	return nil
}

// Stream returns the chunk channel.
func (m *MockSource) Stream() <-chan AudioChunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamCh
}

// Config returns the audio configuration.
func (m *MockSource) Config() Config {
	return m.cfg
}

// Name returns the backend name.
func (m *MockSource) Name() string {
	return string(BackendMock)
}

// Close releases the source.
func (m *MockSource) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	return m.Stop()
}
