// Package config provides environment-driven configuration for posehud commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the posehud server.
const (
	DefaultPort         = "8090"
	DefaultTickInterval = 16 * time.Millisecond // ~60Hz display refresh
	DefaultCameraID     = 0
)

// Server holds the posehud server configuration.
type Server struct {
	Port         string
	LogLevel     string
	CameraID     int
	TickInterval time.Duration
	ModelPath    string // YuNet ONNX model; empty disables local face tracking
	StaticDir    string // dashboard assets
}

// FromEnv builds a Server config from environment variables,
// falling back to defaults for anything unset.
func FromEnv() Server {
	return Server{
		Port:         envString("POSEHUD_PORT", DefaultPort),
		LogLevel:     envString("POSEHUD_LOG_LEVEL", "info"),
		CameraID:     envInt("POSEHUD_CAMERA_ID", DefaultCameraID),
		TickInterval: envDuration("POSEHUD_TICK_INTERVAL", DefaultTickInterval),
		ModelPath:    envString("POSEHUD_MODEL_PATH", "models/face_detection_yunet.onnx"),
		StaticDir:    envString("POSEHUD_STATIC_DIR", "./web"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
