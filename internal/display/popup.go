package display

import (
	"log/slog"
	"strings"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/model"
)

// estimatedPopupHeight feeds the stacking offset; actual window height
// varies with content.
const estimatedPopupHeight = 100

// Popup is one notification popup window.
type Popup struct {
	window       *gtk.Window
	notification *model.Notification
	config       *config.DaemonConfig
	logger       *slog.Logger

	box        *gtk.Box
	summaryLbl *gtk.Label
	bodyLbl    *gtk.Label
	appNameLbl *gtk.Label
	iconImage  *gtk.Image
	actionBox  *gtk.Box
	closeBtn   *gtk.Button

	onDismiss func()
	onAction  func(actionKey string)
	onHover   func(hovering bool)

	position int
	closed   bool
}

// NewPopup creates a popup window for the notification. The window is
// not presented until Show is called.
func NewPopup(app *gtk.Application, n *model.Notification, cfg *config.DaemonConfig, logger *slog.Logger) *Popup {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Popup{
		notification: n,
		config:       cfg,
		logger:       logger,
	}

	p.window = gtk.NewWindow()
	p.window.SetApplication(app)
	p.window.SetDecorated(false)
	p.window.SetResizable(false)
	p.window.SetDefaultSize(cfg.Display.Width, -1)

	layershell.InitForWindow(p.window)
	layershell.SetLayer(p.window, layershell.LayerShellLayerTop)
	layershell.SetExclusiveZone(p.window, 0)
	layershell.SetKeyboardMode(p.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(p.window, "waybell-notification")

	p.buildUI()
	p.applyStyleClasses()
	p.connectSignals()

	return p
}

// Notification returns the record this popup displays.
func (p *Popup) Notification() *model.Notification {
	return p.notification
}

func (p *Popup) buildUI() {
	p.box = gtk.NewBox(gtk.OrientationVertical, 6)
	p.box.AddCSSClass("notification-popup")
	p.box.SetMarginTop(8)
	p.box.SetMarginBottom(8)
	p.box.SetMarginStart(12)
	p.box.SetMarginEnd(12)

	p.box.Append(p.buildHeader())

	if body := p.buildBody(); body != nil {
		p.box.Append(body)
	}
	if actions := p.buildActions(); actions != nil {
		p.box.Append(actions)
	}

	p.window.SetChild(p.box)
}

func (p *Popup) buildHeader() gtk.Widgetter {
	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)
	headerBox.AddCSSClass("notification-header")

	headerBox.Append(p.buildIcon())

	titleBox := gtk.NewBox(gtk.OrientationVertical, 2)
	titleBox.SetHExpand(true)

	p.summaryLbl = gtk.NewLabel(p.notification.Summary)
	p.summaryLbl.AddCSSClass("notification-summary")
	p.summaryLbl.SetXAlign(0)
	p.summaryLbl.SetEllipsize(3) // PANGO_ELLIPSIZE_END
	p.summaryLbl.SetMaxWidthChars(40)
	titleBox.Append(p.summaryLbl)

	if p.notification.AppName != "" {
		p.appNameLbl = gtk.NewLabel(p.notification.AppName)
		p.appNameLbl.AddCSSClass("notification-appname")
		p.appNameLbl.SetXAlign(0)
		titleBox.Append(p.appNameLbl)
	}
	headerBox.Append(titleBox)

	p.closeBtn = gtk.NewButtonFromIconName("window-close-symbolic")
	p.closeBtn.AddCSSClass("notification-close")
	p.closeBtn.SetVisible(false) // shown on hover
	headerBox.Append(p.closeBtn)

	return headerBox
}

func (p *Popup) buildIcon() gtk.Widgetter {
	p.iconImage = gtk.NewImage()
	p.iconImage.AddCSSClass("notification-icon")
	p.iconImage.SetPixelSize(48)

	icon := p.notification.Icon
	switch icon.Kind {
	case model.IconThemeName:
		p.iconImage.SetFromIconName(icon.Value)
	case model.IconPath:
		p.iconImage.SetFromFile(icon.Value)
	case model.IconFileURI:
		p.iconImage.SetFromFile(strings.TrimPrefix(icon.Value, "file://"))
	default:
		p.iconImage.SetFromIconName("dialog-information")
	}
	return p.iconImage
}

func (p *Popup) buildBody() gtk.Widgetter {
	if p.notification.BodySanitized == "" {
		return nil
	}

	p.bodyLbl = gtk.NewLabel(p.notification.BodySanitized)
	p.bodyLbl.AddCSSClass("notification-body")
	p.bodyLbl.SetXAlign(0)
	p.bodyLbl.SetWrap(true)
	p.bodyLbl.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	p.bodyLbl.SetMaxWidthChars(50)
	return p.bodyLbl
}

func (p *Popup) buildActions() gtk.Widgetter {
	if len(p.notification.Actions) == 0 {
		return nil
	}

	p.actionBox = gtk.NewBox(gtk.OrientationHorizontal, 6)
	p.actionBox.AddCSSClass("notification-actions")
	p.actionBox.SetVisible(false) // shown on hover

	for _, action := range p.notification.Actions {
		actionKey := action.Key
		btn := gtk.NewButtonWithLabel(action.Label)
		btn.AddCSSClass("notification-action")
		btn.ConnectClicked(func() {
			if p.onAction != nil {
				p.onAction(actionKey)
			}
		})
		p.actionBox.Append(btn)
	}
	return p.actionBox
}

func (p *Popup) applyStyleClasses() {
	p.box.AddCSSClass(urgencyClass(p.notification.Urgency))
	p.box.AddCSSClass(colorSchemeClass())

	if p.notification.AppName != "" {
		p.box.AddCSSClass("app-" + cssClassName(p.notification.AppName))
	}
	if p.notification.BodySanitized != "" {
		p.box.AddCSSClass("has-body")
	}
	if len(p.notification.Actions) > 0 {
		p.box.AddCSSClass("has-actions")
	}
}

func (p *Popup) connectSignals() {
	p.closeBtn.ConnectClicked(func() {
		if p.onDismiss != nil {
			p.onDismiss()
		}
	})

	motionCtrl := gtk.NewEventControllerMotion()
	motionCtrl.ConnectEnter(func(x, y float64) {
		p.closeBtn.SetVisible(true)
		if p.actionBox != nil {
			p.actionBox.SetVisible(true)
		}
		if p.onHover != nil {
			p.onHover(true)
		}
	})
	motionCtrl.ConnectLeave(func() {
		p.closeBtn.SetVisible(false)
		if p.actionBox != nil {
			p.actionBox.SetVisible(false)
		}
		if p.onHover != nil {
			p.onHover(false)
		}
	})
	p.window.AddController(motionCtrl)

	// Clicking anywhere else on the popup dismisses it.
	clickCtrl := gtk.NewGestureClick()
	clickCtrl.SetButton(1)
	clickCtrl.ConnectReleased(func(nPress int, x, y float64) {
		if p.onDismiss != nil {
			p.onDismiss()
		}
	})
	p.window.AddController(clickCtrl)
}

// Show presents the popup at the given stack position.
func (p *Popup) Show(position int) {
	p.position = position
	p.updateAnchorPosition()
	p.window.Present()
}

// Close destroys the popup window. Safe to call more than once.
func (p *Popup) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.window.Close()
}

// UpdatePosition moves the popup to a new stack position.
func (p *Popup) UpdatePosition(position int) {
	if p.position == position {
		return
	}
	p.position = position
	p.updateAnchorPosition()
}

func (p *Popup) updateAnchorPosition() {
	pos := config.Position(p.config.Display.Position)
	offsetX := p.config.Display.OffsetX
	offsetY := p.config.Display.OffsetY + p.position*(estimatedPopupHeight+p.config.Display.Gap)

	layershell.SetAnchor(p.window, layershell.LayerShellEdgeTop, false)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeBottom, false)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeLeft, false)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeRight, false)

	switch pos {
	case config.PositionTopLeft:
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeTop, true)
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeLeft, true)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeTop, offsetY)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeLeft, offsetX)

	case config.PositionTopCenter:
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeTop, true)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeTop, offsetY)

	case config.PositionBottomRight:
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeBottom, true)
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeRight, true)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeBottom, offsetY)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeRight, offsetX)

	case config.PositionBottomLeft:
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeBottom, true)
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeLeft, true)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeBottom, offsetY)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeLeft, offsetX)

	case config.PositionBottomCenter:
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeBottom, true)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeBottom, offsetY)

	default: // top-right
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeTop, true)
		layershell.SetAnchor(p.window, layershell.LayerShellEdgeRight, true)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeTop, offsetY)
		layershell.SetMargin(p.window, layershell.LayerShellEdgeRight, offsetX)
	}
}

// OnDismiss sets the callback for user dismissal.
func (p *Popup) OnDismiss(cb func()) {
	p.onDismiss = cb
}

// OnAction sets the callback for action button clicks.
func (p *Popup) OnAction(cb func(actionKey string)) {
	p.onAction = cb
}

// OnHover sets the callback for hover state changes.
func (p *Popup) OnHover(cb func(hovering bool)) {
	p.onHover = cb
}

// urgencyClass converts an urgency level to a CSS class name.
func urgencyClass(urgency model.Urgency) string {
	switch urgency {
	case model.UrgencyLow:
		return "urgency-low"
	case model.UrgencyCritical:
		return "urgency-critical"
	default:
		return "urgency-normal"
	}
}

// colorSchemeClass follows the libadwaita system preference.
func colorSchemeClass() string {
	if adw.StyleManagerGetDefault().Dark() {
		return "dark"
	}
	return "light"
}

// cssClassName converts a string to a valid CSS class name fragment.
func cssClassName(name string) string {
	var result strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/':
			if !prevHyphen && result.Len() > 0 {
				result.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}
