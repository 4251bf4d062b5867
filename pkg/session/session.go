// Package session wires the capture pipeline together: camera, face
// tracker, audio analyser, tick sampler, preview broadcast, and one-shot
// composite capture.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/poselab/go-posehud/internal/log"
	"github.com/poselab/go-posehud/pkg/camera"
	"github.com/poselab/go-posehud/pkg/hub"
	"github.com/poselab/go-posehud/pkg/pose"
	"github.com/poselab/go-posehud/pkg/sampler"
)

// Sentinel errors reported to capture callers.
var (
	// ErrCaptureBusy is returned when a capture is already in flight.
	// The second request is rejected, not queued; retry after the first completes.
	ErrCaptureBusy = errors.New("session: capture in progress")

	// ErrNotRunning is returned for operations on a stopped session.
	ErrNotRunning = errors.New("session: not running")
)

// Renderer flattens a frame + pose state into an encoded image.
type Renderer interface {
	Render(frameJPEG []byte, st pose.State, outW, outH int) ([]byte, error)
}

// Tracker is the face-tracking capability plus its lifecycle.
type Tracker interface {
	sampler.FaceTracker
	Close() error
}

// CaptureRequest freezes the parameters of one still: target resolution
// scaled by the requesting display's pixel ratio. Consumed once.
type CaptureRequest struct {
	ID         uuid.UUID
	Width      int
	Height     int
	PixelRatio float64
}

// NewCaptureRequest builds a request with a fresh ID. A zero or negative
// pixel ratio is treated as 1.
func NewCaptureRequest(width, height int, pixelRatio float64) CaptureRequest {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return CaptureRequest{
		ID:         uuid.New(),
		Width:      width,
		Height:     height,
		PixelRatio: pixelRatio,
	}
}

// OutputSize returns the pixel-ratio-scaled target resolution.
func (r CaptureRequest) OutputSize() (int, int) {
	return int(math.Round(float64(r.Width) * r.PixelRatio)),
		int(math.Round(float64(r.Height) * r.PixelRatio))
}

// Options configures a Session.
type Options struct {
	Video           camera.Source
	Tracker         Tracker         // optional
	Analyser        sampler.AudioAnalyser
	Renderer        Renderer
	Cameras         *camera.Manager // optional; drives the preview mirror
	TickInterval    time.Duration
	PreviewInterval time.Duration // 0 disables the preview feed
}

// Session owns the live pipeline for one capture run.
type Session struct {
	video    camera.Source
	tracker  Tracker
	renderer Renderer
	cameras  *camera.Manager
	smp      *sampler.Sampler

	// StateHub receives a JSON pose-state snapshot per tick.
	StateHub *hub.Hub
	// PreviewHub receives binary JPEG preview frames.
	PreviewHub *hub.Hub

	previewInterval time.Duration

	capturing atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New assembles a session from its parts.
func New(opts Options) *Session {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 16 * time.Millisecond
	}
	s := &Session{
		video:           opts.Video,
		tracker:         opts.Tracker,
		renderer:        opts.Renderer,
		cameras:         opts.Cameras,
		StateHub:        hub.New("state"),
		PreviewHub:      hub.New("preview"),
		previewInterval: opts.PreviewInterval,
	}

	var ft sampler.FaceTracker
	if opts.Tracker != nil {
		ft = opts.Tracker
	}
	s.smp = sampler.New(ft, opts.Analyser, opts.TickInterval)
	s.smp.OnState = func(st pose.State) {
		s.StateHub.BroadcastJSON(st)
	}
	return s
}

// State returns the current pose snapshot.
func (s *Session) State() pose.State {
	return s.smp.State()
}

// Start launches the hubs, the sampler ticks and the preview feed.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.StateHub.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.PreviewHub.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.smp.Run(ctx)
	}()

	if s.previewInterval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.previewLoop(ctx)
		}()
	}

	log.Info("session started", "preview_interval", s.previewInterval)
	return nil
}

// previewLoop republishes camera frames for dashboard preview.
func (s *Session) previewLoop(ctx context.Context) {
	ticker := time.NewTicker(s.previewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.PreviewHub.ClientCount() == 0 {
				continue
			}
			frame, err := s.video.CaptureJPEG()
			if err != nil {
				log.Debug("preview frame unavailable", "error", err)
				continue
			}
			if cfg := s.previewConfig(); cfg.Mirror {
				mirrored, err := camera.MirrorJPEG(frame, cfg.Quality)
				if err != nil {
					log.Debug("preview mirror failed", "error", err)
					continue
				}
				frame = mirrored
			}
			s.PreviewHub.BroadcastBinary(frame)
		}
	}
}

// previewConfig reads the live camera settings. Without a manager the
// preview passes frames through untouched.
func (s *Session) previewConfig() camera.Config {
	if s.cameras == nil {
		return camera.Config{}
	}
	return s.cameras.GetConfig()
}

// Capture renders one composite still for the request.
//
// One at a time: if a capture is already in flight the request is rejected
// with ErrCaptureBusy. A started capture runs to completion or failure; it
// is never cancelled mid-flight, and a failure never destabilizes the tick
// loop.
func (s *Session) Capture(req CaptureRequest) ([]byte, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return nil, ErrNotRunning
	}

	if !s.capturing.CompareAndSwap(false, true) {
		return nil, ErrCaptureBusy
	}
	defer s.capturing.Store(false)

	// Freeze inputs at request time: later state changes must not leak
	// into the composite.
	st := s.smp.State()
	outW, outH := req.OutputSize()

	frame, err := s.video.CaptureJPEG()
	if err != nil {
		return nil, fmt.Errorf("session: capture %s: %w", req.ID, err)
	}

	start := time.Now()
	img, err := s.renderer.Render(frame, st, outW, outH)
	if err != nil {
		return nil, fmt.Errorf("session: capture %s: %w", req.ID, err)
	}

	log.Info("capture complete",
		"id", req.ID,
		"size", fmt.Sprintf("%dx%d", outW, outH),
		"bytes", len(img),
		"took", time.Since(start),
	)
	return img, nil
}

// Stop tears down the tick loop and releases the capabilities.
// An in-flight capture finishes on its own; new ones are refused.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	if s.tracker != nil {
		s.tracker.Close()
	}
	s.video.Close()
	log.Info("session stopped")
}
