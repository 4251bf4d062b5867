package audioio

import (
	"context"
	"sync"
)

// Analyser adapts a Source into the time-domain window the sampler polls.
//
// A background goroutine drains the source's stream and keeps only the
// newest chunk; TimeDomain never blocks and hands each window out once.
// Windows are unsigned 8-bit samples centered at 128, fixed at the
// configured WindowSize regardless of the source's chunk size or rate.
type Analyser struct {
	source Source

	mu     sync.Mutex
	window []byte
	fresh  bool
}

// NewAnalyser wraps a source. Call Run to start draining it.
func NewAnalyser(source Source) *Analyser {
	return &Analyser{source: source}
}

// Run consumes chunks until ctx is cancelled or the stream closes.
func (a *Analyser) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-a.source.Stream():
			if !ok {
				return
			}
			a.ingest(chunk)
		}
	}
}

// ingest converts one chunk into the current analysis window.
func (a *Analyser) ingest(chunk AudioChunk) {
	cfg := a.source.Config()

	samples := chunk.Samples
	if chunk.Channels > 1 {
		samples = downmix(samples, chunk.Channels)
	}
	if chunk.SampleRate != cfg.SampleRate {
		samples = Resample(samples, chunk.SampleRate, cfg.SampleRate)
	}

	// Fixed-size window: newest samples win, short chunks pad with silence.
	window := make([]byte, cfg.WindowSize)
	for i := range window {
		window[i] = 128
	}
	if len(samples) > cfg.WindowSize {
		samples = samples[len(samples)-cfg.WindowSize:]
	}
	for i, s := range samples {
		window[i] = byte(int(s>>8) + 128)
	}

	a.mu.Lock()
	a.window = window
	a.fresh = true
	a.mu.Unlock()
}

// TimeDomain returns the newest window, once. ok=false means no new audio
// since the last poll; the caller holds its previous level.
func (a *Analyser) TimeDomain() ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.fresh {
		return nil, false
	}
	a.fresh = false
	return a.window, true
}

// downmix averages interleaved channels into mono.
func downmix(samples []int16, channels int) []int16 {
	frames := len(samples) / channels
	mono := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int
		for ch := 0; ch < channels; ch++ {
			sum += int(samples[i*channels+ch])
		}
		mono[i] = int16(sum / channels)
	}
	return mono
}
