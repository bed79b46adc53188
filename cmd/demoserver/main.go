// Command demoserver runs a realtime hub with a synthetic update feed and
// the embedded browser demo page. Useful for exercising clients by hand:
//
//	go run ./cmd/demoserver -addr :8000 -dev
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/lightforgemedia/go-realtime/assets"
	"github.com/lightforgemedia/go-realtime/internal/config"
	"github.com/lightforgemedia/go-realtime/internal/devwatch"
	"github.com/lightforgemedia/go-realtime/pkg/server"
	"github.com/lightforgemedia/go-realtime/pkg/wire"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dev := flag.Bool("dev", false, "enable the file watcher (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("Config load failed", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dev {
		cfg.Watch.Enabled = true
		if len(cfg.Watch.Paths) == 0 {
			cfg.Watch.Paths = []string{"./assets/dist"}
		}
	}

	hub := server.NewHub(logger)
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/assets/", http.StripPrefix("/assets", assets.ScriptHandler()))
	mux.Handle("/", assets.ScriptHandler())

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.Enabled {
		watcher, err := devwatch.New(hub, logger, devwatch.Options{
			Paths:       cfg.Watch.Paths,
			Extensions:  cfg.Watch.Extensions,
			IgnorePaths: cfg.Watch.IgnorePaths,
		})
		if err != nil {
			logger.Error("File watcher setup failed", "error", err)
			os.Exit(1)
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Error("File watcher start failed", "error", err)
			os.Exit(1)
		}
		logger.Info("File watcher enabled", "paths", cfg.Watch.Paths)
	}

	if cfg.Demo.Enabled {
		go demoFeed(ctx, hub, cfg.Demo, logger)
	}

	go func() {
		logger.Info("Demo server listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
}

func loadConfig(path string) (*config.ServerConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

// demoFeed publishes a looping generation lifecycle followed by a deployment
// lifecycle so connected clients always have traffic to observe.
func demoFeed(ctx context.Context, hub *server.Hub, cfg config.DemoConfig, logger *slog.Logger) {
	step := cfg.StepInterval.Std()
	logger.Info("Demo feed started", "step_interval", step)

	for {
		if !runGenerationCycle(ctx, hub, cfg, step, logger) {
			return
		}
		if !runDeploymentCycle(ctx, hub, cfg, step, logger) {
			return
		}

		broadcast(hub, cfg, wire.TypeNotification, wire.Notification{
			ID:      uuid.NewString(),
			Type:    "info",
			Title:   "Demo cycle complete",
			Message: "Restarting the synthetic feed",
		}, logger)

		if !sleep(ctx, step) {
			return
		}
	}
}

func runGenerationCycle(ctx context.Context, hub *server.Hub, cfg config.DemoConfig, step time.Duration, logger *slog.Logger) bool {
	generationID := uuid.NewString()
	stages := []struct {
		status  wire.GenerationStatus
		stage   string
		percent float64
		message string
	}{
		{wire.GenerationInitializing, "init", 0, "Preparing workspace"},
		{wire.GenerationBlueprint, "blueprint", 20, "Designing blueprint"},
		{wire.GenerationGenerating, "generate", 55, "Writing files"},
		{wire.GenerationReviewing, "review", 85, "Reviewing output"},
		{wire.GenerationCompleted, "done", 100, "Generation complete"},
	}

	for _, s := range stages {
		update := wire.GenerationUpdate{
			GenerationID: generationID,
			Status:       s.status,
			Progress: wire.Progress{
				Stage:      s.stage,
				Percentage: s.percent,
				Message:    s.message,
			},
		}
		if s.status == wire.GenerationCompleted {
			update.Files = []wire.GeneratedFile{
				{Path: "main.go", Content: "package main\n"},
				{Path: "go.mod", Content: "module demo\n"},
			}
		}
		broadcast(hub, cfg, wire.TypeGenerationUpdate, update, logger)

		if !sleep(ctx, step) {
			return false
		}
	}
	return true
}

func runDeploymentCycle(ctx context.Context, hub *server.Hub, cfg config.DemoConfig, step time.Duration, logger *slog.Logger) bool {
	deploymentID := uuid.NewString()
	appID := uuid.NewString()
	stages := []struct {
		status  wire.DeploymentStatus
		stage   string
		percent float64
		message string
	}{
		{wire.DeploymentPreparing, "prepare", 0, "Preparing deployment"},
		{wire.DeploymentBuilding, "build", 40, "Building image"},
		{wire.DeploymentDeploying, "deploy", 80, "Rolling out"},
		{wire.DeploymentCompleted, "done", 100, "Deployment live"},
	}

	for _, s := range stages {
		update := wire.DeploymentUpdate{
			DeploymentID: deploymentID,
			AppID:        appID,
			Status:       s.status,
			Progress: wire.Progress{
				Stage:      s.stage,
				Percentage: s.percent,
				Message:    s.message,
			},
		}
		if s.status == wire.DeploymentCompleted {
			update.URL = "https://" + appID[:8] + ".demo.example.com"
		}
		broadcast(hub, cfg, wire.TypeDeploymentUpdate, update, logger)

		if !sleep(ctx, step) {
			return false
		}
	}
	return true
}

func broadcast(hub *server.Hub, cfg config.DemoConfig, typ wire.MessageType, payload any, logger *slog.Logger) {
	env, err := wire.NewEnvelope(typ, payload)
	if err != nil {
		logger.Error("Demo envelope not built", "type", typ, "error", err)
		return
	}
	env.UserID = cfg.UserID
	if err := hub.Broadcast(env); err != nil {
		logger.Error("Demo broadcast failed", "type", typ, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
