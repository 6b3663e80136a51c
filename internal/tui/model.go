// Package tui provides the BubbleTea-based terminal user interface. It
// talks to the daemon over the control socket and refreshes live from
// push messages.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/waybell/waybell/internal/config"
	"github.com/waybell/waybell/internal/model"
	"github.com/waybell/waybell/internal/socket"
)

// requestTimeout bounds every socket round trip issued by the TUI.
const requestTimeout = 5 * time.Second

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeHelp
)

// Model is the main TUI model.
type Model struct {
	cfg    *config.Config
	client *socket.Client
	pushes <-chan *socket.Message

	mode Mode

	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model

	notifications []*model.Notification
	selected      *model.Notification
	searchQuery   string
	dndEnabled    bool
	width         int
	height        int
	ready         bool

	keys KeyMap

	statusMsg string
	statusErr bool
}

// notificationItem wraps a notification for the list component.
type notificationItem struct {
	notification *model.Notification
	relative     bool
}

func (i notificationItem) Title() string {
	title := i.notification.Summary
	if !i.notification.Read {
		title = "● " + title
	}
	return title
}

func (i notificationItem) Description() string {
	return fmt.Sprintf("[%s] %s - %s",
		i.notification.AppName,
		formatTimestamp(i.notification.CreatedAt, i.relative),
		truncate(i.notification.BodySanitized, 50))
}

func (i notificationItem) FilterValue() string {
	n := i.notification
	return n.Summary + " " + n.BodySanitized + " " + n.AppName
}

func formatTimestamp(t time.Time, relative bool) string {
	if relative {
		return humanize.Time(t)
	}
	return t.Format("15:04:05")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// notificationDelegate styles list items by lifecycle state.
type notificationDelegate struct {
	list.DefaultDelegate
}

func newNotificationDelegate() notificationDelegate {
	return notificationDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render dims expired notifications and highlights critical ones.
func (d notificationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(notificationItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	n := ni.notification

	var titleStyle, descStyle lipgloss.Style
	if isSelected {
		titleStyle = d.DefaultDelegate.Styles.SelectedTitle
		descStyle = d.DefaultDelegate.Styles.SelectedDesc
	} else {
		titleStyle = d.DefaultDelegate.Styles.NormalTitle
		descStyle = d.DefaultDelegate.Styles.NormalDesc
	}

	switch {
	case n.State == model.StateExpired && n.Read:
		titleStyle = titleStyle.Foreground(lipgloss.Color("8"))
		descStyle = descStyle.Foreground(lipgloss.Color("8"))
	case n.Urgency == model.UrgencyCritical:
		titleStyle = titleStyle.Foreground(lipgloss.Color("9"))
	}

	itemWidth := m.Width() - d.DefaultDelegate.Styles.NormalTitle.GetHorizontalPadding()

	title := ni.Title()
	if itemWidth > 0 {
		title = truncate(title, itemWidth)
	}
	desc := ni.Description()
	if itemWidth > 0 {
		desc = truncate(desc, itemWidth)
	}

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

// New creates a new TUI model wired to an open socket client. pushes
// carries the daemon's unsolicited messages.
func New(cfg *config.Config, client *socket.Client, pushes <-chan *socket.Message) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	delegate := newNotificationDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 100

	return Model{
		cfg:         cfg,
		client:      client,
		pushes:      pushes,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		keys:        DefaultKeyMap(),
	}
}

// Init kicks off the initial load and the push pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadNotifications, m.loadDndState, m.waitForPush)
}

type notificationsMsg struct {
	notifications []*model.Notification
}

type dndMsg struct {
	enabled bool
}

type pushMsg struct {
	msg *socket.Message
}

type connLostMsg struct{}

type statusUpdateMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// loadNotifications fetches the full history from the daemon.
func (m Model) loadNotifications() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	notifications, err := m.client.GetAll(ctx)
	if err != nil {
		return statusUpdateMsg{text: "Failed to load notifications: " + err.Error(), isErr: true}
	}
	return notificationsMsg{notifications: notifications}
}

// loadDndState fetches the current Do Not Disturb state.
func (m Model) loadDndState() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	enabled, err := m.client.DndState(ctx)
	if err != nil {
		return nil
	}
	return dndMsg{enabled: enabled}
}

// waitForPush blocks on the next push from the daemon. It re-arms
// itself from Update after every delivery.
func (m Model) waitForPush() tea.Msg {
	select {
	case msg, ok := <-m.pushes:
		if !ok {
			return connLostMsg{}
		}
		return pushMsg{msg: msg}
	case <-m.client.Done():
		return connLostMsg{}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		return m, nil

	case notificationsMsg:
		m.notifications = msg.notifications
		m.list.SetItems(m.buildListItems())
		return m, nil

	case dndMsg:
		m.dndEnabled = msg.enabled
		m.list.Title = m.listTitle()
		return m, nil

	case pushMsg:
		m.applyPush(msg.msg)
		return m, m.waitForPush

	case connLostMsg:
		return m, tea.Sequence(
			tea.Printf("connection to daemon lost"),
			tea.Quit,
		)

	case statusUpdateMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	switch m.mode {
	case ModeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeDetail:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applyPush folds one daemon push into local state.
func (m *Model) applyPush(msg *socket.Message) {
	switch msg.Type {
	case socket.TypeNewNotification:
		if msg.Notification == nil {
			return
		}
		m.upsert(msg.Notification)

	case socket.TypeNotificationClosed:
		m.remove(msg.ID)
		if m.selected != nil && m.selected.ID == msg.ID {
			m.selected = nil
			if m.mode == ModeDetail {
				m.mode = ModeList
			}
		}

	case socket.TypeDndStateChanged:
		m.dndEnabled = msg.Enabled != nil && *msg.Enabled
		m.list.Title = m.listTitle()
	}

	m.list.SetItems(m.buildListItems())
}

func (m *Model) upsert(n *model.Notification) {
	for i, existing := range m.notifications {
		if existing.ID == n.ID {
			m.notifications[i] = n
			return
		}
	}
	m.notifications = append(m.notifications, n)
}

func (m *Model) remove(id uint32) {
	for i, n := range m.notifications {
		if n.ID == id {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return
		}
	}
}

func (m Model) listTitle() string {
	if m.dndEnabled {
		return "Notifications [DND]"
	}
	return "Notifications"
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search mode owns the keyboard except esc/enter.
	if m.mode == ModeSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.list.SelectedItem().(notificationItem); ok {
			m.selected = item.notification
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(item.notification))
			m.viewport.GotoTop()
			return m, m.markRead(item.notification.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Invoke):
		if item, ok := m.list.SelectedItem().(notificationItem); ok {
			return m, m.invokeDefaultAction(item.notification)
		}
		return m, nil

	case key.Matches(msg, m.keys.Close):
		if item, ok := m.list.SelectedItem().(notificationItem); ok {
			return m, m.closeNotification(item.notification.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if item, ok := m.list.SelectedItem().(notificationItem); ok {
			return m, m.markRead(item.notification.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleDnd):
		return m, m.toggleDnd()

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadNotifications
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleDetailKey handles keys in detail mode. Digits invoke the
// notification's actions by position.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil

	case key.Matches(msg, m.keys.Invoke):
		if m.selected != nil {
			return m, m.invokeDefaultAction(m.selected)
		}
		return m, nil

	case key.Matches(msg, m.keys.Close):
		if m.selected != nil {
			id := m.selected.ID
			m.mode = ModeList
			m.selected = nil
			return m, m.closeNotification(id)
		}
		return m, nil
	}

	if m.selected != nil && len(msg.String()) == 1 {
		c := msg.String()[0]
		if c >= '1' && c <= '9' {
			idx := int(c - '1')
			if idx < len(m.selected.Actions) {
				return m, m.invokeAction(m.selected.ID, m.selected.Actions[idx].Key)
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		if item, ok := m.list.SelectedItem().(notificationItem); ok {
			m.selected = item.notification
			m.mode = ModeDetail
			m.searchInput.Blur()
			m.viewport.SetContent(m.renderDetail(item.notification))
			m.viewport.GotoTop()
			return m, m.markRead(item.notification.ID)
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering on every keystroke.
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())

	return m, cmd
}

// invokeDefaultAction invokes the "default" action if present, else the
// notification's first action.
func (m Model) invokeDefaultAction(n *model.Notification) tea.Cmd {
	if len(n.Actions) == 0 {
		return func() tea.Msg {
			return statusUpdateMsg{text: "Notification has no actions", isErr: true}
		}
	}
	actionKey := n.Actions[0].Key
	for _, a := range n.Actions {
		if a.Key == "default" {
			actionKey = a.Key
			break
		}
	}
	return m.invokeAction(n.ID, actionKey)
}

func (m Model) invokeAction(id uint32, actionKey string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.InvokeAction(ctx, id, actionKey); err != nil {
			return statusUpdateMsg{text: "Action failed: " + err.Error(), isErr: true}
		}
		return statusUpdateMsg{text: "Action invoked: " + actionKey}
	}
}

func (m Model) closeNotification(id uint32) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.CloseNotification(ctx, id); err != nil {
			return statusUpdateMsg{text: "Close failed: " + err.Error(), isErr: true}
		}
		return statusUpdateMsg{text: "Notification closed"}
	}
}

func (m Model) markRead(id uint32) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.MarkRead(ctx, id); err != nil {
			return statusUpdateMsg{text: "Mark read failed: " + err.Error(), isErr: true}
		}
		// Read state has no push; refresh to pick it up.
		return notificationsMsg{notifications: mustGetAll(client)}
	}
}

// mustGetAll refetches history after a mutation, falling back to nil on
// error (the next push or manual refresh recovers).
func mustGetAll(client *socket.Client) []*model.Notification {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	notifications, err := client.GetAll(ctx)
	if err != nil {
		return nil
	}
	return notifications
}

func (m Model) toggleDnd() tea.Cmd {
	client := m.client
	target := !m.dndEnabled
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		enabled, err := client.SetDndState(ctx, target)
		if err != nil {
			return statusUpdateMsg{text: "DND toggle failed: " + err.Error(), isErr: true}
		}
		return dndMsg{enabled: enabled}
	}
}

// buildListItems creates list items from current notifications, newest
// first, honoring the active search query.
func (m Model) buildListItems() []list.Item {
	notifications := m.notifications

	if m.searchQuery != "" {
		var filtered []*model.Notification
		for _, n := range notifications {
			if containsIgnoreCase(n.Summary, m.searchQuery) ||
				containsIgnoreCase(n.BodySanitized, m.searchQuery) ||
				containsIgnoreCase(n.AppName, m.searchQuery) {
				filtered = append(filtered, n)
			}
		}
		notifications = filtered
	}

	items := make([]list.Item, len(notifications))
	for i, n := range notifications {
		// Newest first: the daemon hands them out in insertion order.
		items[len(notifications)-1-i] = notificationItem{
			notification: n,
			relative:     m.cfg.TUI.RelativeTimes,
		}
	}
	return items
}

// renderDetail renders the detail view for a notification.
func (m Model) renderDetail(n *model.Notification) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var s string
	s += headerStyle.Render(n.Summary) + "\n\n"

	s += labelStyle.Render("App: ") + n.AppName + "\n"
	s += labelStyle.Render("Time: ") + formatTimestamp(n.CreatedAt, m.cfg.TUI.RelativeTimes) + "\n"
	s += labelStyle.Render("Urgency: ") + n.Urgency.String() + "\n"
	s += labelStyle.Render("State: ") + n.State.String() + "\n"

	s += "\n" + labelStyle.Render("Body:") + "\n"
	s += n.BodySanitized + "\n"

	if len(n.Actions) > 0 {
		s += "\n" + labelStyle.Render("Actions:") + "\n"
		for i, a := range n.Actions {
			s += fmt.Sprintf("  %d. %s (%s)\n", i+1, a.Label, a.Key)
		}
		s += labelStyle.Render("Press a digit to invoke an action") + "\n"
	}

	return s
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else if m.cfg.TUI.ShowHelp {
		s += "\n" + m.buildKeybindBar(m.width, "list")
	}

	return s
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render("Notification Detail")

	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, "detail")
}

func (m Model) viewSearch() string {
	matchCount := len(m.list.Items())
	countStr := fmt.Sprintf("(%d matches)", matchCount)

	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, "search")
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"

	s += sectionStyle.Render("Navigation") + "\n"
	s += keyStyle.Render("  j/k, ↑/↓") + "     Move up/down\n"
	s += keyStyle.Render("  g/G") + "          Go to top/bottom\n"
	s += keyStyle.Render("  pgup/pgdn") + "    Page up/down\n"
	s += "\n"

	s += sectionStyle.Render("Actions") + "\n"
	s += keyStyle.Render("  enter") + "        View notification details\n"
	s += keyStyle.Render("  a") + "            Invoke default action\n"
	s += keyStyle.Render("  1-9") + "          Invoke action by number (detail view)\n"
	s += keyStyle.Render("  d") + "            Close notification\n"
	s += keyStyle.Render("  m") + "            Mark as read\n"
	s += keyStyle.Render("  z") + "            Toggle Do Not Disturb\n"
	s += keyStyle.Render("  /") + "            Search\n"
	s += keyStyle.Render("  r") + "            Refresh\n"
	s += "\n"

	s += sectionStyle.Render("General") + "\n"
	s += keyStyle.Render("  ?") + "            Toggle this help\n"
	s += keyStyle.Render("  esc") + "          Back / Cancel\n"
	s += keyStyle.Render("  q") + "            Quit\n"

	s += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Press ? or esc to return")

	return s
}

// containsIgnoreCase checks if s contains substr (case-insensitive).
func containsIgnoreCase(s, substr string) bool {
	return len(s) >= len(substr) &&
		(s == substr ||
			len(substr) == 0 ||
			findIgnoreCase(s, substr))
}

func findIgnoreCase(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if equalFoldAt(s, i, substr) {
			return true
		}
	}
	return false
}

func equalFoldAt(s string, start int, substr string) bool {
	for j := 0; j < len(substr); j++ {
		c1 := s[start+j]
		c2 := substr[j]
		if c1 == c2 {
			continue
		}
		// Simple ASCII case folding
		if c1 >= 'A' && c1 <= 'Z' {
			c1 += 32
		}
		if c2 >= 'A' && c2 <= 'Z' {
			c2 += 32
		}
		if c1 != c2 {
			return false
		}
	}
	return true
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar builds a keybind bar that fits within the given width.
// mode determines which keybinds are shown: "list", "detail", "search"
func (m Model) buildKeybindBar(width int, mode string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind

	switch mode {
	case "list":
		binds = []keybind{
			{"q", "quit"},
			{"enter", "view"},
			{"?", "help"},
			{"/", "search"},
			{"a", "action"},
			{"d", "close"},
			{"m", "read"},
			{"z", "dnd"},
			{"r", "refresh"},
		}
	case "detail":
		binds = []keybind{
			{"q", "quit"},
			{"esc", "back"},
			{"a", "action"},
			{"1-9", "action #"},
			{"d", "close"},
			{"j/k", "scroll"},
		}
	case "search":
		binds = []keybind{
			{"enter", "view"},
			{"esc", "close"},
			{"↑/↓", "navigate"},
		}
	}

	const separator = "  "
	result := ""
	plainLen := 0
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		plainItem := b.key + " " + b.desc

		testLen := plainLen + len(plainItem)
		if result != "" {
			testLen += len(separator)
		}
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
			plainLen += len(separator)
		}
		result += item
		plainLen += len(plainItem)
	}

	return style.Render(result)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config     *config.Config
	SocketPath string
}

// Run connects to the daemon and starts the TUI. It blocks until the
// user quits or the connection drops.
func Run(opts RunOptions) error {
	socketPath := opts.SocketPath
	if socketPath == "" {
		if opts.Config != nil && opts.Config.Socket.Path != "" {
			socketPath = opts.Config.Socket.Path
		} else {
			socketPath = socket.DefaultSocketPath()
		}
	}

	pushes := make(chan *socket.Message, 256)
	onPush := func(msg *socket.Message) {
		// Called from the read loop; drop rather than block it. A manual
		// refresh recovers from a dropped push.
		select {
		case pushes <- msg:
		default:
		}
	}

	client, err := socket.Dial(socketPath, onPush, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer func() { _ = client.Close() }()

	m := New(opts.Config, client, pushes)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, err = p.Run()
	return err
}
