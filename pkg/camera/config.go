// Package camera provides the video source feeding the preview, the face
// tracker, and capture. Settings are runtime-tunable through the camera API.
package camera

// Config holds camera configuration parameters.
type Config struct {
	// Width and Height are the capture resolution in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Framerate is the target FPS.
	Framerate int `json:"framerate"`

	// Quality is the JPEG quality (1-100) for captured frames.
	Quality int `json:"quality"`

	// Mirror controls whether the live preview feed is flipped horizontally
	// before broadcast. Captured composites always mirror, matching the
	// selfie presentation.
	Mirror bool `json:"mirror"`
}

// Reasonable webcam limits.
const (
	MinWidth  = 160
	MaxWidth  = 4096
	MinHeight = 120
	MaxHeight = 2160
)

// DefaultConfig returns the recommended configuration: 720p is plenty for
// pose tracking and keeps preview encoding cheap.
func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Framerate: 30,
		Quality:   85,
		Mirror:    true,
	}
}

// Validate checks config values against usable ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.Width < MinWidth || c.Width > MaxWidth {
		errs = append(errs, "width must be between 160 and 4096")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errs = append(errs, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > 120 {
		errs = append(errs, "framerate must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, "quality must be between 1 and 100")
	}

	return errs
}
