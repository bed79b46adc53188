// Command tail connects to a realtime endpoint and prints everything it
// receives: notifications, generation updates, and deployment updates.
//
//	go run ./cmd/tail -url ws://localhost:8000/ws -generation <id>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lightforgemedia/go-realtime/pkg/client"
	"github.com/lightforgemedia/go-realtime/pkg/notify"
	"github.com/lightforgemedia/go-realtime/pkg/subscription"
	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

func main() {
	url := flag.String("url", "ws://localhost:8000/ws", "realtime endpoint")
	user := flag.String("user", "", "userId to connect as")
	generationID := flag.String("generation", "", "generation id to follow")
	deploymentID := flag.String("deployment", "", "deployment id to follow")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c := client.New(*url,
		client.WithLogger(logger),
		client.WithUserID(*user),
	)

	bridge := notify.NewBridge(c, notify.SinkFunc(func(n wire.Notification) {
		fmt.Printf("%s  [%s] %s: %s\n",
			time.Now().Format(time.TimeOnly), n.Type, n.Title, n.Message)
	}), logger)
	defer bridge.Close()

	gen := subscription.NewGeneration(c)
	defer gen.Close()
	if *generationID != "" {
		gen.SetID(*generationID)
	}

	dep := subscription.NewDeployment(c)
	defer dep.Close()
	if *deploymentID != "" {
		dep.SetID(*deploymentID)
	}

	removePrinter := c.OnMessage(func(env *wire.Envelope, payload wire.Payload) {
		switch p := payload.(type) {
		case *wire.GenerationUpdate:
			fmt.Printf("%s  generation %s  %s  %.0f%%  %s\n",
				time.Now().Format(time.TimeOnly),
				p.GenerationID, p.Status, p.Progress.Percentage, p.Progress.Message)
		case *wire.DeploymentUpdate:
			fmt.Printf("%s  deployment %s  %s  %.0f%%  %s\n",
				time.Now().Format(time.TimeOnly),
				p.DeploymentID, p.Status, p.Progress.Percentage, p.URL)
		case *wire.Unknown:
			logger.Debug("unknown envelope", "type", env.Type)
		}
	})
	defer removePrinter()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Connect(ctx); err != nil {
		// Auto-reconnect keeps retrying in the background.
		logger.Warn("initial connect failed", "error", err)
	}

	<-ctx.Done()
	logger.Info("closing")
	if err := c.Close(); err != nil {
		logger.Warn("close failed", "error", err)
	}
}
