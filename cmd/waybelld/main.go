// Package main is the entry point for the waybelld notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/waybell/waybell/internal/audio"
	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/daemon"
	"github.com/waybell/waybell/internal/display"
	"github.com/waybell/waybell/internal/eventloop"
)

const (
	appID   = "org.waybell.waybelld"
	appName = "waybelld"
)

// Build-time variables (set via ldflags)
var version = "dev"

func main() {
	monitorMode := flag.Bool("monitor", false,
		"Run in monitor mode (passive, no popups/sounds, works alongside another notification daemon)")
	configPath := flag.String("config", "",
		"Path to config file (default: ~/.config/waybell/waybelld.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadDaemonConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *monitorMode {
		runMonitorMode(cfg, *configPath, logger)
		return
	}

	runDaemonMode(cfg, *configPath, logger)
}

// runMonitorMode runs waybelld passively: it records bus traffic into
// the registry and serves history clients, but claims no bus name and
// shows no popups. No GTK main loop is needed.
func runMonitorMode(cfg *config.DaemonConfig, configPath string, logger *slog.Logger) {
	logger.Info("starting waybelld in monitor mode", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := daemon.New(daemon.Options{
		Config:      cfg,
		Logger:      logger,
		MonitorMode: true,
		ConfigPath:  configPath,
	})

	if err := d.Start(ctx); err != nil {
		logger.Error("failed to start daemon", "error", err)
		os.Exit(1)
	}

	logger.Info("waybelld monitor ready, passively capturing notifications")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	d.Stop()
	logger.Info("waybelld monitor stopped")
}

// runDaemonMode runs waybelld as the primary notification daemon with
// popups, sound, and the D-Bus service.
func runDaemonMode(cfg *config.DaemonConfig, configPath string, logger *slog.Logger) {
	logger.Info("starting waybelld", "version", version)

	app := adw.NewApplication(appID, 0)

	// Shared between the GTK main loop and the signal handler.
	var (
		d              *daemon.Daemon
		displayManager *display.Manager
		audioManager   *audio.Manager
		running        atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		glib.IdleAdd(func() {
			if running.Load() {
				if d != nil {
					d.Stop()
				}
				if displayManager != nil {
					displayManager.Stop()
				}
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		// The bridge carries work from socket and D-Bus goroutines onto
		// the GTK main loop. A periodic tick drains it, and the wake hook
		// shortcuts the tick latency when work arrives on an empty queue.
		bridge := eventloop.New(logger)
		bridge.SetWake(func() {
			glib.IdleAdd(func() {
				bridge.Drain()
			})
		})
		glib.TimeoutAdd(uint(eventloop.DefaultTickInterval/time.Millisecond), func() bool {
			bridge.Drain()
			return true
		})

		if cfg.Audio.Enabled {
			audioManager = audio.NewManager(cfg, logger)
		}

		d = daemon.New(daemon.Options{
			Config:     cfg,
			Bridge:     bridge,
			Audio:      audioManager,
			Logger:     logger,
			ConfigPath: configPath,
		})

		displayManager = display.NewManager(&app.Application, cfg, d.DisplayCallbacks(), logger)
		if err := displayManager.Start(); err != nil {
			logger.Error("failed to start display manager", "error", err)
			app.Quit()
			return
		}
		d.SetRenderer(displayManager)

		if err := d.Start(ctx); err != nil {
			logger.Error("failed to start daemon", "error", err)
			displayManager.Stop()
			app.Quit()
			return
		}

		logger.Info("waybelld ready")

		// GTK apps quit when all windows are closed; keep a hidden one.
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if running.Load() {
			if d != nil {
				d.Stop()
			}
			if displayManager != nil {
				displayManager.Stop()
			}
		}
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}

	logger.Info("waybelld stopped")
}
