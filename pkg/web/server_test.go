package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poselab/go-posehud/pkg/camera"
	"github.com/poselab/go-posehud/pkg/facetrack"
	"github.com/poselab/go-posehud/pkg/pose"
	"github.com/poselab/go-posehud/pkg/session"
)

type stubRenderer struct{}

func (stubRenderer) Render(frame []byte, st pose.State, outW, outH int) ([]byte, error) {
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

func newTestServer(t *testing.T, start bool) (*Server, *session.Session) {
	t.Helper()
	video, err := camera.NewMockSource(320, 240)
	if err != nil {
		t.Fatalf("mock camera: %v", err)
	}
	sess := session.New(session.Options{
		Video:        video,
		Tracker:      facetrack.NewMock(),
		Renderer:     stubRenderer{},
		TickInterval: time.Millisecond,
	})
	if start {
		if err := sess.Start(context.Background()); err != nil {
			t.Fatalf("start session: %v", err)
		}
		t.Cleanup(sess.Stop)
	}
	return NewServer("0", sess, camera.NewManager(), ""), sess
}

func TestStateEndpoint(t *testing.T) {
	s, _ := newTestServer(t, true)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var st pose.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
}

func TestCaptureEndpoint(t *testing.T) {
	s, _ := newTestServer(t, true)

	body, _ := json.Marshal(CaptureBody{Width: 360, Height: 640, PixelRatio: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/capture", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", ct)
	}
	if id := resp.Header.Get("X-Capture-ID"); id == "" {
		t.Error("missing X-Capture-ID header")
	}
	img, _ := io.ReadAll(resp.Body)
	if len(img) == 0 {
		t.Error("empty capture body")
	}
}

func TestCaptureEndpointValidation(t *testing.T) {
	s, _ := newTestServer(t, true)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"garbage body", "not json", http.StatusBadRequest},
		{"zero width", `{"width":0,"height":100}`, http.StatusBadRequest},
		{"negative height", `{"width":100,"height":-1}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/capture", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := s.app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestCaptureEndpointSessionStopped(t *testing.T) {
	s, _ := newTestServer(t, false)

	body, _ := json.Marshal(CaptureBody{Width: 100, Height: 100, PixelRatio: 1})
	req := httptest.NewRequest(http.MethodPost, "/api/capture", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestCameraEndpoints(t *testing.T) {
	s, _ := newTestServer(t, true)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/camera", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var cfg camera.Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width == 0 {
		t.Error("camera config missing width")
	}

	// Partial update.
	req := httptest.NewRequest(http.MethodPost, "/api/camera", bytes.NewReader([]byte(`{"quality":60}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	var updated camera.Config
	json.NewDecoder(resp.Body).Decode(&updated)
	if updated.Quality != 60 {
		t.Errorf("quality = %d, want 60", updated.Quality)
	}

	// Invalid update is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/camera", bytes.NewReader([]byte(`{"quality":500}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid update status = %d, want 400", resp.StatusCode)
	}
}
