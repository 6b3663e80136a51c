// Package dbus implements the org.freedesktop.Notifications D-Bus
// interface. It exports GetCapabilities, GetServerInformation, Notify
// and CloseNotification per the freedesktop.org notification
// specification and emits the NotificationClosed and ActionInvoked
// signals. Notification state itself lives elsewhere; the service
// delegates every call to handlers supplied by the daemon.
package dbus
