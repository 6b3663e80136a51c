// Package display manages GTK4/libadwaita popup windows for
// notifications. It handles popup creation, positioning via Wayland
// layer-shell, widget construction, stacking, timeouts, and user
// interactions. Popups are presentation only: lifecycle decisions are
// reported through callbacks and made elsewhere.
package display
