// posehud-snap triggers a one-shot composite capture on a running
// posehud server and writes the returned JPEG to disk.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/poselab/go-posehud/internal/httpc"
)

func main() {
	host := flag.String("host", "localhost:8090", "posehud server host:port")
	width := flag.Int("width", 1080, "Capture width in CSS pixels")
	height := flag.Int("height", 1920, "Capture height in CSS pixels")
	pixelRatio := flag.Float64("pixel-ratio", 1.0, "Display pixel ratio applied to the output size")
	out := flag.String("out", "", "Output file (default posehud-<timestamp>.jpg)")
	flag.Parse()

	body, err := json.Marshal(map[string]interface{}{
		"width":       *width,
		"height":      *height,
		"pixel_ratio": *pixelRatio,
	})
	if err != nil {
		fatal("encode request: %v", err)
	}

	url := fmt.Sprintf("http://%s/api/capture", *host)
	resp, err := httpc.Post(url, "application/json", body)
	if err != nil {
		fatal("capture request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusConflict:
		fatal("server is busy with another capture, try again")
	case http.StatusServiceUnavailable:
		fatal("server has no active session")
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		fatal("capture failed: %s: %s", resp.Status, msg)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fatal("read image: %v", err)
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("posehud-%s.jpg", time.Now().Format("20060102-150405"))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fatal("write %s: %v", path, err)
	}

	fmt.Printf("saved %s (%d bytes, capture %s)\n", path, len(data), resp.Header.Get("X-Capture-ID"))
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
