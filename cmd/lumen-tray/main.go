// oreon/lumen · watchthelight <wtl>

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oreonproject/lumen/internal/config"
	"github.com/oreonproject/lumen/internal/tray"
	"github.com/oreonproject/lumen/pkg/ipc"
)

var version = "0.1.0-dev"

func main() {
	fmt.Printf("Lumen tray v%s\n", version)

	// Create a channel to listen for interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// IPC clients connect lazily on first call; one for requests, one for
	// the push subscription
	socket := config.SocketPath()
	client := ipc.NewClient(socket)
	events := ipc.NewClient(socket)

	trayApp := tray.New(client, events)

	// Run the tray in a goroutine so we can handle shutdown gracefully
	errCh := make(chan error, 1)
	go func() {
		errCh <- trayApp.Run()
	}()

	// Wait for either interrupt signal or tray exit
	select {
	case <-sigCh:
		slog.Info("received interrupt, shutting down")
	case err := <-errCh:
		if err != nil {
			slog.Error("tray application error", "error", err)
		}
	}

	// Cleanup
	client.Close()
	events.Close()
}
