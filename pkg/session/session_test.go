package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poselab/go-posehud/pkg/camera"
	"github.com/poselab/go-posehud/pkg/facetrack"
	"github.com/poselab/go-posehud/pkg/pose"
)

// stubRenderer records calls and can be made to block.
type stubRenderer struct {
	mu      sync.Mutex
	calls   int
	release chan struct{} // if set, Render blocks until closed
	fail    bool
}

func (r *stubRenderer) Render(frame []byte, st pose.State, outW, outH int) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	release := r.release
	fail := r.fail
	r.mu.Unlock()

	if release != nil {
		<-release
	}
	if fail {
		return nil, errors.New("boom")
	}
	return []byte{0xff, 0xd8, 0xff}, nil
}

func (r *stubRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newTestSession(t *testing.T, r Renderer) *Session {
	t.Helper()
	video, err := camera.NewMockSource(320, 240)
	if err != nil {
		t.Fatalf("mock camera: %v", err)
	}
	return New(Options{
		Video:        video,
		Tracker:      facetrack.NewMock(),
		Renderer:     r,
		TickInterval: time.Millisecond,
	})
}

func TestCaptureRequestOutputSize(t *testing.T) {
	req := NewCaptureRequest(360, 640, 2)
	w, h := req.OutputSize()
	if w != 720 || h != 1280 {
		t.Errorf("output size = %dx%d, want 720x1280", w, h)
	}

	// Invalid pixel ratio falls back to 1.
	req = NewCaptureRequest(360, 640, 0)
	if w, h := req.OutputSize(); w != 360 || h != 640 {
		t.Errorf("output size = %dx%d, want 360x640", w, h)
	}

	if req.ID == (NewCaptureRequest(1, 1, 1).ID) {
		t.Error("request IDs are not unique")
	}
}

func TestCaptureBeforeStart(t *testing.T) {
	s := newTestSession(t, &stubRenderer{})
	if _, err := s.Capture(NewCaptureRequest(100, 100, 1)); !errors.Is(err, ErrNotRunning) {
		t.Errorf("capture before start = %v, want ErrNotRunning", err)
	}
}

func TestCaptureProducesImage(t *testing.T) {
	r := &stubRenderer{}
	s := newTestSession(t, r)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	img, err := s.Capture(NewCaptureRequest(360, 640, 2))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if len(img) == 0 {
		t.Error("capture produced empty image")
	}
	if r.callCount() != 1 {
		t.Errorf("renderer called %d times, want 1", r.callCount())
	}
}

func TestConcurrentCaptureRejected(t *testing.T) {
	release := make(chan struct{})
	r := &stubRenderer{release: release}
	s := newTestSession(t, r)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.Capture(NewCaptureRequest(100, 100, 1))
		firstDone <- err
	}()

	// Wait for the first capture to be inside Render.
	deadline := time.After(time.Second)
	for r.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("first capture never reached the renderer")
		case <-time.After(time.Millisecond):
		}
	}

	// Second request while the first is outstanding: rejected, not queued.
	if _, err := s.Capture(NewCaptureRequest(100, 100, 1)); !errors.Is(err, ErrCaptureBusy) {
		t.Errorf("overlapping capture = %v, want ErrCaptureBusy", err)
	}
	if r.callCount() != 1 {
		t.Errorf("renderer called %d times during overlap, want 1", r.callCount())
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Errorf("first capture failed: %v", err)
	}

	// Guard released: capture works again.
	if _, err := s.Capture(NewCaptureRequest(100, 100, 1)); err != nil {
		t.Errorf("capture after release: %v", err)
	}
}

func TestCaptureFailureIsSafeToRetry(t *testing.T) {
	r := &stubRenderer{fail: true}
	s := newTestSession(t, r)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if _, err := s.Capture(NewCaptureRequest(100, 100, 1)); err == nil {
		t.Fatal("expected capture failure")
	}

	// Failure released the guard and the session still ticks.
	r.mu.Lock()
	r.fail = false
	r.mu.Unlock()
	if _, err := s.Capture(NewCaptureRequest(100, 100, 1)); err != nil {
		t.Errorf("retry after failure: %v", err)
	}
}

func TestSessionStateTicks(t *testing.T) {
	s := newTestSession(t, &stubRenderer{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	// The mock tracker reports an 80cm face; the sampler should pick it up.
	deadline := time.After(time.Second)
	for {
		if s.State().Distance == 80 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("state never tracked mock face: %+v", s.State())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := newTestSession(t, &stubRenderer{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
	s.Stop() // second stop is a no-op

	if _, err := s.Capture(NewCaptureRequest(10, 10, 1)); !errors.Is(err, ErrNotRunning) {
		t.Errorf("capture after stop = %v, want ErrNotRunning", err)
	}
}

func TestStopShutsDownHubs(t *testing.T) {
	// Stop waits on the whole pipeline, hub loops included; nothing keeps
	// running behind a stopped session.
	s := newTestSession(t, &stubRenderer{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()

	if s.StateHub.IsRunning() {
		t.Error("state hub still running after stop")
	}
	if s.PreviewHub.IsRunning() {
		t.Error("preview hub still running after stop")
	}
}
