// posehud - live head-pose and mic-level HUD with composite capture
//
// Tracks a face on the local webcam, meters the microphone, publishes a
// merged pose-state snapshot over websocket, and freezes stills through
// the capture API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poselab/go-posehud/internal/config"
	"github.com/poselab/go-posehud/internal/log"
	"github.com/poselab/go-posehud/pkg/audioio"
	"github.com/poselab/go-posehud/pkg/camera"
	"github.com/poselab/go-posehud/pkg/compose"
	"github.com/poselab/go-posehud/pkg/facetrack"
	"github.com/poselab/go-posehud/pkg/sampler"
	"github.com/poselab/go-posehud/pkg/session"
	"github.com/poselab/go-posehud/pkg/web"
)

func main() {
	cfg := config.FromEnv()

	mockVideo := flag.Bool("mock-video", false, "Use a synthetic test card instead of the webcam")
	mockFace := flag.Bool("mock-face", false, "Use a scripted face sweep instead of the detector")
	audioTone := flag.Bool("audio-tone", false, "Feed a test tone into the volume meter")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cameras := camera.NewManager()

	video, err := openVideo(cameras.GetConfig(), cfg.CameraID, *mockVideo)
	if err != nil {
		log.Error("camera unavailable", "error", err)
		os.Exit(1)
	}

	tracker := openTracker(ctx, cfg, video, *mockFace)
	analyser := openAnalyser(ctx, *audioTone)

	sess := session.New(session.Options{
		Video:           video,
		Tracker:         tracker,
		Analyser:        analyser,
		Renderer:        compose.NewRenderer(),
		Cameras:         cameras,
		TickInterval:    cfg.TickInterval,
		PreviewInterval: 100 * time.Millisecond,
	})
	if err := sess.Start(ctx); err != nil {
		log.Error("session start failed", "error", err)
		os.Exit(1)
	}
	defer sess.Stop()

	// Apply runtime camera config changes to the device.
	if cam, ok := video.(*camera.Webcam); ok {
		cameras.OnConfigChange = cam.Apply
	}

	server := web.NewServer(cfg.Port, sess, cameras, cfg.StaticDir)
	server.StartAsync()

	<-ctx.Done()
	log.Info("shutting down")
	server.Shutdown()
}

// openVideo picks the webcam or the synthetic test card.
func openVideo(cfg camera.Config, deviceID int, mock bool) (camera.Source, error) {
	if mock {
		return camera.NewMockSource(cfg.Width, cfg.Height)
	}
	return camera.OpenWebcam(deviceID, cfg)
}

// openTracker starts the YuNet detector when a model is available,
// falling back to the scripted mock.
func openTracker(ctx context.Context, cfg config.Server, video camera.Source, mock bool) session.Tracker {
	if !mock {
		yn, err := facetrack.NewYuNet(facetrack.DefaultYuNetConfig(cfg.ModelPath), video)
		if err == nil {
			go yn.Run(ctx)
			return yn
		}
		log.Warn("face detector unavailable, using scripted tracker", "error", err)
	}
	return facetrack.NewMock()
}

// openAnalyser starts the audio pipeline. The mock backend is the only
// source wired so far; a tone makes the meter move in demos.
func openAnalyser(ctx context.Context, tone bool) sampler.AudioAnalyser {
	acfg := audioio.DefaultConfig()

	var opts []audioio.MockSourceOption
	if tone {
		opts = append(opts, audioio.WithSineWave(440, 0.6))
	}
	src := audioio.NewMockSource(acfg, log.L(), opts...)

	if err := src.Start(ctx); err != nil {
		log.Warn("audio source unavailable, volume will hold at zero", "error", err)
		return nil
	}

	analyser := audioio.NewAnalyser(src)
	go analyser.Run(ctx)
	return analyser
}
