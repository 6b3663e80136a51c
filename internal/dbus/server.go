package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/waybell/waybell/internal/model"
)

const (
	// DBusInterface is the notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the well-known bus name to claim.
	DBusBusName = "org.freedesktop.Notifications"
)

// NotifyHandler processes one Notify call and returns the assigned
// notification id. Id allocation happens behind the handler; the D-Bus
// layer never invents ids of its own.
type NotifyHandler func(req *NotifyRequest) uint32

// CloseHandler processes one CloseNotification call.
type CloseHandler func(id uint32)

// Service exports the org.freedesktop.Notifications interface on the
// session bus. It is a thin protocol shim: method calls are decoded and
// passed to the handlers, signal emission is driven from outside via
// the Emit methods.
type Service struct {
	logger *slog.Logger

	notifyHandler NotifyHandler
	closeHandler  CloseHandler
	serverInfo    ServerInfo

	mu      sync.Mutex
	conn    *dbus.Conn
	running bool
}

// NewService creates a Service. Handlers must be set before Start.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:     logger,
		serverInfo: DefaultServerInfo(),
	}
}

// SetNotifyHandler sets the handler for incoming Notify calls.
func (s *Service) SetNotifyHandler(handler NotifyHandler) {
	s.notifyHandler = handler
}

// SetCloseHandler sets the handler for CloseNotification calls.
func (s *Service) SetCloseHandler(handler CloseHandler) {
	s.closeHandler = handler
}

// SetServerInfo overrides the identity returned by GetServerInformation.
func (s *Service) SetServerInfo(info ServerInfo) {
	s.serverInfo = info
}

// Start connects to the session bus, exports the service and claims the
// well-known name. Failing to become primary owner is an error; running
// without the name would leave applications talking to someone else.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("service already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken, is another notification daemon running?", DBusBusName)
	}

	s.conn = conn
	s.running = true

	s.logger.Info("dbus service started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name. The session bus connection itself is
// shared and stays open.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
	}

	s.logger.Info("dbus service stopped")
	return nil
}

// GetCapabilities returns the capability set.
// D-Bus method: GetCapabilities() -> as
func (s *Service) GetCapabilities() ([]string, *dbus.Error) {
	s.logger.Debug("GetCapabilities called")
	return ServerCapabilities, nil
}

// GetServerInformation returns the server identity.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *Service) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.logger.Debug("GetServerInformation called")
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, s.serverInfo.SpecVersion, nil
}

// Notify handles an incoming notification request.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *Service) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	req := &NotifyRequest{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}

	if s.notifyHandler == nil {
		return 0, dbus.MakeFailedError(fmt.Errorf("no notification handler configured"))
	}
	id := s.notifyHandler(req)

	s.logger.Debug("Notify handled",
		"app_name", appName,
		"replaces_id", replacesID,
		"summary", summary,
		"id", id,
	)
	return id, nil
}

// CloseNotification closes a notification by id. The protocol makes
// this infallible: closing an id that is unknown or already gone is a
// silent no-op.
// D-Bus method: CloseNotification(u) -> nothing
func (s *Service) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("CloseNotification called", "id", id)
	if s.closeHandler != nil {
		s.closeHandler(id)
	}
	return nil
}

// EmitNotificationClosed emits the NotificationClosed signal.
func (s *Service) EmitNotificationClosed(id uint32, reason model.CloseReason) error {
	conn := s.connection()
	if conn == nil {
		return fmt.Errorf("not connected to session bus")
	}

	if err := conn.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason)); err != nil {
		return fmt.Errorf("failed to emit NotificationClosed: %w", err)
	}
	s.logger.Debug("emitted NotificationClosed", "id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *Service) EmitActionInvoked(id uint32, actionKey string) error {
	conn := s.connection()
	if conn == nil {
		return fmt.Errorf("not connected to session bus")
	}

	if err := conn.Emit(DBusPath, DBusInterface+".ActionInvoked", id, actionKey); err != nil {
		return fmt.Errorf("failed to emit ActionInvoked: %w", err)
	}
	s.logger.Debug("emitted ActionInvoked", "id", id, "action_key", actionKey)
	return nil
}

func (s *Service) connection() *dbus.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
