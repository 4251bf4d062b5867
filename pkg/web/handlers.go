package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/poselab/go-posehud/pkg/session"
)

// CaptureBody is the request body for triggering a capture.
// Width and height are CSS pixels; pixel_ratio scales them to device pixels.
type CaptureBody struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	PixelRatio float64 `json:"pixel_ratio"`
}

// handleState returns the current pose snapshot.
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.session.State())
}

// handleGetCamera returns the current camera configuration.
func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	return c.JSON(s.cameras.GetConfig())
}

// handleUpdateCamera applies a partial camera config update.
func (s *Server) handleUpdateCamera(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	if err := s.cameras.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(s.cameras.GetConfig())
}

// handleCapture renders a composite still and returns it as JPEG.
func (s *Server) handleCapture(c *fiber.Ctx) error {
	var body CaptureBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}
	if body.Width <= 0 || body.Height <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "width and height must be positive",
		})
	}

	req := session.NewCaptureRequest(body.Width, body.Height, body.PixelRatio)
	img, err := s.session.Capture(req)
	switch {
	case errors.Is(err, session.ErrCaptureBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "capture already in progress",
		})
	case errors.Is(err, session.ErrNotRunning):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "session not running",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "image/jpeg")
	c.Set("X-Capture-ID", req.ID.String())
	return c.Send(img)
}
