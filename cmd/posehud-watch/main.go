// posehud-watch tails the live pose-state feed of a running posehud
// server and prints one line per update.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/poselab/go-posehud/internal/log"
	"github.com/poselab/go-posehud/pkg/pose"
)

func main() {
	host := flag.String("host", "localhost:8090", "posehud server host:port")
	interval := flag.Duration("interval", 250*time.Millisecond, "Minimum time between printed lines (0 prints every update)")
	jsonOut := flag.Bool("json", false, "Print raw JSON state lines instead of the formatted view")
	flag.Parse()

	log.Init("warn")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	url := fmt.Sprintf("ws://%s/ws/state", *host)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to %s failed: %v\n", url, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("watching %s\n", url)

	// Reads unblock when the connection is torn down on signal.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var lastPrint time.Time
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
			os.Exit(1)
		}

		if *interval > 0 && time.Since(lastPrint) < *interval {
			continue
		}
		lastPrint = time.Now()

		if *jsonOut {
			fmt.Printf("%s\n", data)
			continue
		}

		var st pose.State
		if err := json.Unmarshal(data, &st); err != nil {
			fmt.Fprintf(os.Stderr, "bad state message: %v\n", err)
			continue
		}
		fmt.Printf("yaw %4d  pitch %4d  roll %4d  dist %4dcm  vol %3d\n",
			st.Yaw, st.Pitch, st.Roll, st.Distance, st.Volume)
	}
}
