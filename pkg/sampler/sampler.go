// Package sampler drives the per-tick pose-state pipeline.
//
// Once per display refresh it polls whatever capabilities are available,
// merges their readings into a fresh immutable pose.State, and publishes
// it. Nothing in the tick path blocks: a capability that has nothing new
// this tick simply leaves its field group carried over from the previous
// snapshot.
package sampler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/poselab/go-posehud/internal/log"
	"github.com/poselab/go-posehud/pkg/pose"
	"github.com/poselab/go-posehud/pkg/volume"
)

// FaceTracker supplies zero-or-one tracking matrices per tick.
// Poll must not block; ok=false means no face this tick.
type FaceTracker interface {
	Poll(ts time.Time) (pose.Matrix, bool)
}

// AudioAnalyser exposes a fixed-size time-domain window, refreshed on demand.
// TimeDomain must not block; ok=false means no audio this tick.
type AudioAnalyser interface {
	TimeDomain() ([]byte, bool)
}

// Sampler merges tracker and analyser readings into pose.State snapshots.
// Exactly one Run loop writes the current state; any number of goroutines
// may read it via State().
type Sampler struct {
	tracker  FaceTracker
	analyser AudioAnalyser
	interval time.Duration
	meter    volume.Meter

	current atomic.Pointer[pose.State]

	// OnState, if set, is called with each published snapshot from the
	// tick goroutine. Keep it fast; it runs inside the tick.
	OnState func(pose.State)
}

// New creates a sampler. Either capability may be nil: a nil tracker holds
// the angle group at its last value, a nil analyser holds the volume.
func New(tracker FaceTracker, analyser AudioAnalyser, interval time.Duration) *Sampler {
	s := &Sampler{
		tracker:  tracker,
		analyser: analyser,
		interval: interval,
	}
	initial := pose.State{}
	s.current.Store(&initial)
	return s
}

// State returns the current snapshot. Never nil.
func (s *Sampler) State() pose.State {
	return *s.current.Load()
}

// Tick computes and publishes one snapshot. Exposed for the Run loop and
// for tests; production code normally calls Run.
func (s *Sampler) Tick(ts time.Time) pose.State {
	st := *s.current.Load()

	if s.tracker != nil {
		if m, ok := s.tracker.Poll(ts); ok {
			if smp, ok := pose.Decode(m, ts); ok {
				st = st.WithSample(smp)
			}
			// A rejected (non-finite) sample carries the previous
			// angles forward, same as a tick with no face.
		}
	}

	if s.analyser != nil {
		if buf, ok := s.analyser.TimeDomain(); ok {
			st = st.WithVolume(s.meter.Process(buf))
		}
	}

	s.current.Store(&st)
	if s.OnState != nil {
		s.OnState(st)
	}
	return st
}

// Run drives ticks at the configured interval until ctx is cancelled.
// time.Ticker drops missed ticks, so a slow consumer never builds a backlog;
// each tick starts from the live inputs, not a queue.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info("sampler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("sampler stopped")
			return
		case ts := <-ticker.C:
			s.Tick(ts)
		}
	}
}
