// Package daemon wires the notification registry to its surfaces: the
// D-Bus service, the control socket, popup display, sound, and Do Not
// Disturb. It is the single place where lifecycle signals fan out.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/waybell/waybell/internal/audio"
	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/dbus"
	"github.com/waybell/waybell/internal/display"
	"github.com/waybell/waybell/internal/dnd"
	"github.com/waybell/waybell/internal/eventloop"
	"github.com/waybell/waybell/internal/model"
	"github.com/waybell/waybell/internal/registry"
	"github.com/waybell/waybell/internal/socket"
)

// Announcer is told about freshly created notifications that were not
// suppressed. Implementations must not block.
type Announcer interface {
	Announce(n *model.Notification)
}

// logAnnouncer is the default Announcer; it writes one structured log
// line per announced notification.
type logAnnouncer struct {
	logger *slog.Logger
}

func (a *logAnnouncer) Announce(n *model.Notification) {
	a.logger.Info("notification",
		"id", n.ID,
		"app", n.AppName,
		"summary", n.Summary,
		"urgency", n.Urgency.String(),
	)
}

// Options configures a Daemon.
type Options struct {
	Config    *config.DaemonConfig
	Renderer  display.Renderer
	Bridge    *eventloop.Bridge
	Audio     *audio.Manager
	Announcer Announcer // nil = log announcer
	Logger    *slog.Logger

	// MonitorMode records notifications observed on the bus instead of
	// claiming org.freedesktop.Notifications. No popups, no signals.
	MonitorMode bool

	// ConfigPath is the file watched for hot reload. Empty = default.
	ConfigPath string
}

// Daemon owns the daemon-side object graph. It is both the registry's
// signal sink and the socket server's backend.
type Daemon struct {
	logger *slog.Logger

	mu  sync.RWMutex
	cfg *config.DaemonConfig

	registry  *registry.Registry
	dnd       *dnd.Controller
	bridge    *eventloop.Bridge
	renderer  display.Renderer
	sockets   *socket.Server
	service   *dbus.Service
	monitor   *dbus.Monitor
	audio     *audio.Manager
	announcer Announcer
	watcher   *ConfigWatcher

	monitorMode bool
}

// New creates a Daemon from options. Start must be called before it
// serves anything.
func New(opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	announcer := opts.Announcer
	if announcer == nil {
		announcer = &logAnnouncer{logger: logger}
	}

	d := &Daemon{
		logger:      logger,
		cfg:         cfg,
		registry:    registry.New(logger),
		dnd:         dnd.New(cfg.Dnd.Enabled, logger),
		bridge:      opts.Bridge,
		renderer:    opts.Renderer,
		audio:       opts.Audio,
		announcer:   announcer,
		monitorMode: opts.MonitorMode,
	}

	socketPath := cfg.Socket.Path
	if socketPath == "" {
		socketPath = socket.DefaultSocketPath()
	}
	d.sockets = socket.NewServer(socketPath, d, logger)

	if opts.MonitorMode {
		d.monitor = dbus.NewMonitor(logger)
		d.monitor.SetNotifyHandler(d.HandleNotify)
	} else {
		d.service = dbus.NewService(logger)
		d.service.SetNotifyHandler(d.HandleNotify)
		d.service.SetCloseHandler(d.handleBusClose)
	}

	d.registry.AddSink(d)
	d.dnd.OnChange(func(enabled bool) {
		// Runs under the controller lock; the broadcast only queues.
		d.sockets.BroadcastDndChanged(enabled)
	})

	d.watcher = NewConfigWatcher(opts.ConfigPath, d.applyConfig, logger)

	return d
}

// SetRenderer installs the popup renderer. Renderer wiring is two-phase
// because the display manager is constructed with the daemon's callbacks;
// call this before Start.
func (d *Daemon) SetRenderer(r display.Renderer) {
	d.renderer = r
}

// Registry exposes the notification registry.
func (d *Daemon) Registry() *registry.Registry {
	return d.registry
}

// Start brings up the socket server, the bus surface, sound, and the
// config watcher.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.sockets.Start(); err != nil {
		return fmt.Errorf("socket server: %w", err)
	}

	if d.monitorMode {
		if err := d.monitor.Start(); err != nil {
			return fmt.Errorf("dbus monitor: %w", err)
		}
	} else {
		if err := d.service.Start(); err != nil {
			return fmt.Errorf("dbus service: %w", err)
		}
	}

	if d.audio != nil {
		if err := d.audio.Start(ctx); err != nil {
			d.logger.Warn("audio unavailable", "error", err)
		}
	}

	if err := d.watcher.Start(ctx); err != nil {
		d.logger.Warn("config watcher unavailable", "error", err)
	}

	d.logger.Info("daemon started", "monitor_mode", d.monitorMode)
	return nil
}

// Stop tears everything down.
func (d *Daemon) Stop() {
	d.watcher.Stop()
	if d.audio != nil {
		d.audio.Stop()
	}
	if d.monitorMode {
		_ = d.monitor.Stop()
	} else {
		_ = d.service.Stop()
	}
	d.sockets.Stop()
	d.logger.Info("daemon stopped")
}

// HandleNotify processes one Notify call. The registry assigns the id;
// everything else happens in the sink fan-out.
func (d *Daemon) HandleNotify(req *dbus.NotifyRequest) uint32 {
	hints := req.DecodeHints()

	return d.registry.Create(registry.CreateParams{
		AppName:    req.AppName,
		Summary:    req.Summary,
		Body:       req.Body,
		Actions:    req.ParsedActions(),
		Hints:      hints,
		Icon:       req.ResolveIcon(hints),
		Urgency:    model.UrgencyFromHints(hints),
		Expire:     model.ExpirePolicyFromTimeout(req.ExpireTimeout),
		ReplacesID: req.ReplacesID,
	})
}

// handleBusClose serves CloseNotification from the bus.
func (d *Daemon) handleBusClose(id uint32) {
	d.registry.Close(id, model.CloseReasonClosed)
}

// NotificationCreated fans a new or replacing notification out to every
// surface. Runs under the registry lock: everything here only queues.
func (d *Daemon) NotificationCreated(n *model.Notification, replaced bool) {
	d.sockets.BroadcastNewNotification(n)

	suppressed := d.dnd.Get()
	if suppressed {
		d.logger.Debug("dnd active, popup suppressed", "id", n.ID)
		return
	}

	if d.renderer != nil && d.bridge != nil {
		d.bridge.Dispatch(func() {
			d.renderer.Show(n)
		})
	}
	if d.audio != nil {
		go func() {
			if err := d.audio.PlayFor(n); err != nil {
				d.logger.Debug("sound playback failed", "id", n.ID, "error", err)
			}
		}()
	}
	go d.announcer.Announce(n)
}

// NotificationClosed fans a close out to every surface. The bridge
// queue keeps signal order: a preceding ActionInvoked dispatch is
// already ahead of this one.
func (d *Daemon) NotificationClosed(id uint32, reason model.CloseReason) {
	d.sockets.BroadcastNotificationClosed(id)

	if !d.monitorMode {
		d.dispatch(func() {
			if err := d.service.EmitNotificationClosed(id, reason); err != nil {
				d.logger.Warn("failed to emit NotificationClosed", "id", id, "error", err)
			}
		})
	}
	if d.renderer != nil && d.bridge != nil {
		d.bridge.Dispatch(func() {
			d.renderer.Hide(id)
		})
	}
}

// ActionInvoked emits the ActionInvoked signal.
func (d *Daemon) ActionInvoked(id uint32, actionKey string) {
	if d.monitorMode {
		return
	}
	d.dispatch(func() {
		if err := d.service.EmitActionInvoked(id, actionKey); err != nil {
			d.logger.Warn("failed to emit ActionInvoked", "id", id, "error", err)
		}
	})
}

// dispatch queues work on the bridge, or runs it on a fresh goroutine
// when no GUI loop exists (monitor-less tests).
func (d *Daemon) dispatch(fn func()) {
	if d.bridge != nil {
		d.bridge.Dispatch(fn)
		return
	}
	go fn()
}

// DisplayCallbacks returns the popup event handlers for the renderer.
// They run on the GUI thread.
func (d *Daemon) DisplayCallbacks() display.Callbacks {
	return display.Callbacks{
		OnTimeout: func(id uint32) {
			// The popup is gone but the record stays, unread, silent.
			d.registry.Expire(id)
		},
		OnAction: func(id uint32, actionKey string) {
			if err := d.registry.InvokeAction(id, actionKey); err != nil {
				d.logger.Debug("action on missing notification", "id", id, "error", err)
			}
		},
		OnDismiss: func(id uint32) {
			d.registry.Close(id, model.CloseReasonDismissed)
		},
	}
}

// Snapshot implements socket.Backend.
func (d *Daemon) Snapshot() []*model.Notification {
	return d.registry.Snapshot()
}

// InvokeAction implements socket.Backend.
func (d *Daemon) InvokeAction(id uint32, actionKey string) error {
	return d.registry.InvokeAction(id, actionKey)
}

// Close implements socket.Backend.
func (d *Daemon) Close(id uint32, reason model.CloseReason) {
	d.registry.Close(id, reason)
}

// MarkRead implements socket.Backend.
func (d *Daemon) MarkRead(id uint32) {
	d.registry.MarkRead(id)
}

// DndState implements socket.Backend.
func (d *Daemon) DndState() bool {
	return d.dnd.Get()
}

// SetDndState implements socket.Backend.
func (d *Daemon) SetDndState(enabled bool) {
	d.dnd.Set(enabled)
}

// applyConfig swaps in a freshly loaded configuration.
func (d *Daemon) applyConfig(cfg *config.DaemonConfig) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	if d.audio != nil {
		d.audio.UpdateConfig(cfg)
	}
	if d.renderer != nil && d.bridge != nil {
		d.bridge.Dispatch(func() {
			d.renderer.UpdateConfig(cfg)
		})
	}
	d.logger.Info("configuration reloaded")
}

// Config returns the current configuration.
func (d *Daemon) Config() *config.DaemonConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

var (
	_ registry.Sink  = (*Daemon)(nil)
	_ socket.Backend = (*Daemon)(nil)
)
