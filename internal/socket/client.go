package socket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/waybell/waybell/internal/model"
)

// ErrConnClosed is returned for requests that were pending when the
// connection's read loop terminated.
var ErrConnClosed = errors.New("connection closed")

// ErrActionFailed is returned when the daemon reports an action
// invocation failure.
var ErrActionFailed = errors.New("action invocation failed")

// Client is the history-client side of the correlation protocol. It owns
// the connection's single read loop; no raw read primitive is exposed,
// so concurrent reads cannot occur by construction. Responses are
// matched to pending request slots by correlation id; stale or duplicate
// responses are discarded silently; everything without a correlation id
// goes to the push handler.
type Client struct {
	logger *slog.Logger
	conn   net.Conn
	onPush func(*Message)

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[string]chan *Message
	closed  bool

	done chan struct{}
}

// Dial connects to the daemon socket. onPush receives unsolicited
// messages and may be nil; it is called from the read loop, so it must
// not block.
func Dial(path string, onPush func(*Message), logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket %s: %w", path, err)
	}

	c := &Client{
		logger:  logger,
		conn:    conn,
		onPush:  onPush,
		pending: make(map[string]chan *Message),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close terminates the connection. Pending requests fail with
// ErrConnClosed.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Done is closed when the read loop has terminated.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// readLoop is the sole reader of the connection.
func (c *Client) readLoop() {
	defer c.failPending()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			c.logger.Warn("malformed frame from daemon, closing", "error", err)
			_ = c.conn.Close()
			return
		}

		if msg.IsPush() {
			if c.onPush != nil {
				c.onPush(&msg)
			}
			continue
		}

		c.mu.Lock()
		slot, ok := c.pending[string(msg.RequestID)]
		if ok {
			delete(c.pending, string(msg.RequestID))
		}
		c.mu.Unlock()

		if !ok {
			// Stale or duplicate correlation id: discard silently.
			continue
		}
		slot <- &msg
	}
}

// failPending resolves every outstanding slot with a connection-closed
// failure exactly once.
func (c *Client) failPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]chan *Message)
	c.closed = true
	c.mu.Unlock()

	for _, slot := range pending {
		close(slot)
	}
	close(c.done)
}

// Request sends one request and waits for its correlated response.
func (c *Client) Request(ctx context.Context, req *Message) (*Message, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnClosed
	}
	c.nextID++
	key := strconv.FormatUint(c.nextID, 10)
	slot := make(chan *Message, 1)
	c.pending[key] = slot
	c.mu.Unlock()

	req.RequestID = json.RawMessage(key)
	data, err := json.Marshal(req)
	if err != nil {
		c.abandon(key)
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	c.writeMu.Lock()
	_, err = c.conn.Write(append(data, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		c.abandon(key)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	select {
	case <-ctx.Done():
		c.abandon(key)
		return nil, ctx.Err()
	case resp, ok := <-slot:
		if !ok {
			return nil, ErrConnClosed
		}
		if resp.Type == TypeError {
			return nil, fmt.Errorf("daemon error: %s", resp.Error)
		}
		return resp, nil
	}
}

// abandon forgets a pending slot; a late response for it will be
// discarded by the read loop as stale.
func (c *Client) abandon(key string) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}

// GetAll fetches the full notification history.
func (c *Client) GetAll(ctx context.Context) ([]*model.Notification, error) {
	resp, err := c.Request(ctx, &Message{Type: TypeGetAll})
	if err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// InvokeAction invokes an action on a notification.
func (c *Client) InvokeAction(ctx context.Context, id uint32, actionKey string) error {
	resp, err := c.Request(ctx, &Message{Type: TypeInvokeAction, ID: id, Action: actionKey})
	if err != nil {
		return err
	}
	if resp.Success == nil || !*resp.Success {
		if resp.Error != "" {
			return fmt.Errorf("%w: %s", ErrActionFailed, resp.Error)
		}
		return ErrActionFailed
	}
	return nil
}

// CloseNotification asks the daemon to close a notification.
func (c *Client) CloseNotification(ctx context.Context, id uint32) error {
	_, err := c.Request(ctx, &Message{Type: TypeClose, ID: id})
	return err
}

// MarkRead sets a notification's read flag.
func (c *Client) MarkRead(ctx context.Context, id uint32) error {
	_, err := c.Request(ctx, &Message{Type: TypeMarkRead, ID: id})
	return err
}

// DndState fetches the current Do Not Disturb state.
func (c *Client) DndState(ctx context.Context) (bool, error) {
	resp, err := c.Request(ctx, &Message{Type: TypeGetDndState})
	if err != nil {
		return false, err
	}
	return resp.Enabled != nil && *resp.Enabled, nil
}

// SetDndState sets the Do Not Disturb state and returns the resulting
// value.
func (c *Client) SetDndState(ctx context.Context, enabled bool) (bool, error) {
	resp, err := c.Request(ctx, &Message{Type: TypeSetDndState, Enabled: boolPtr(enabled)})
	if err != nil {
		return false, err
	}
	return resp.Enabled != nil && *resp.Enabled, nil
}
