package socket

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/waybell/waybell/internal/model"
)

// maxFrameBytes bounds a single protocol line. Notification bodies are
// small; anything beyond this is a broken or hostile peer.
const maxFrameBytes = 1 << 20

// outboundQueueSize is the per-connection write queue depth. A client
// that falls this far behind is dropped rather than allowed to stall
// broadcasts to its peers.
const outboundQueueSize = 64

// Backend is the set of daemon operations the socket protocol maps onto.
type Backend interface {
	Snapshot() []*model.Notification
	InvokeAction(id uint32, actionKey string) error
	Close(id uint32, reason model.CloseReason)
	MarkRead(id uint32)
	DndState() bool
	SetDndState(enabled bool)
}

// Server accepts history-client connections and fans registry events out
// to them. Each connection owns exactly one read loop and one write
// loop; writes are serialized per connection but fully independent
// across connections.
type Server struct {
	logger  *slog.Logger
	backend Backend
	path    string

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]*conn
	closed   bool

	wg sync.WaitGroup
}

// conn is one accepted client link. The raw socket is never exposed:
// only the connection's own read loop drains it, which enforces the
// at-most-one-reader discipline by construction.
type conn struct {
	id   string
	raw  net.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

// NewServer creates a Server listening at path once started.
func NewServer(path string, backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:  logger,
		backend: backend,
		path:    path,
		conns:   make(map[string]*conn),
	}
}

// Start creates the socket and begins accepting connections.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	// A stale socket from a dead daemon would block the listen.
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(ln)

	s.logger.Info("socket server started", "path", s.path)
	return nil
}

// Stop closes the listener and all connections.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ln := s.listener
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for _, c := range conns {
		s.dropConn(c, "server stopping")
	}
	s.wg.Wait()
	_ = os.Remove(s.path)

	s.logger.Info("socket server stopped")
}

// ConnCount returns the number of live connections.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	for {
		raw, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		c := &conn{
			id:   ulid.Make().String(),
			raw:  raw,
			out:  make(chan []byte, outboundQueueSize),
			done: make(chan struct{}),
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = raw.Close()
			return
		}
		s.conns[c.id] = c
		s.mu.Unlock()

		s.logger.Debug("client connected", "conn", c.id)

		s.wg.Add(2)
		go s.writeLoop(c)
		go s.readLoop(c)
	}
}

// readLoop is the sole reader of a connection. Each decoded request is
// dispatched synchronously and its response queued back on the same
// connection. A frame that fails to parse terminates the connection.
func (s *Server) readLoop(c *conn) {
	defer s.wg.Done()
	defer s.dropConn(c, "read loop finished")

	scanner := bufio.NewScanner(c.raw)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Message
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("malformed frame, dropping connection", "conn", c.id, "error", err)
			return
		}

		resp := s.handle(&req)
		resp.RequestID = req.RequestID
		if !s.send(c, resp) {
			return
		}
	}
}

// handle maps one request onto the backend operations.
func (s *Server) handle(req *Message) *Message {
	switch req.Type {
	case TypeGetAll:
		return &Message{
			Type:          TypeNotificationList,
			Notifications: s.backend.Snapshot(),
		}

	case TypeInvokeAction:
		if err := s.backend.InvokeAction(req.ID, req.Action); err != nil {
			return &Message{Type: TypeActionResult, Success: boolPtr(false), Error: err.Error()}
		}
		return &Message{Type: TypeActionResult, Success: boolPtr(true)}

	case TypeClose:
		// Absent ids silently succeed; duplicate closes are expected.
		s.backend.Close(req.ID, model.CloseReasonClosed)
		return &Message{Type: TypeCloseResult, Success: boolPtr(true)}

	case TypeMarkRead:
		s.backend.MarkRead(req.ID)
		return &Message{Type: TypeMarkReadResult, Success: boolPtr(true)}

	case TypeGetDndState:
		return &Message{Type: TypeDndState, Enabled: boolPtr(s.backend.DndState())}

	case TypeSetDndState:
		if req.Enabled == nil {
			return &Message{Type: TypeError, Error: "set_dnd_state requires 'enabled'"}
		}
		s.backend.SetDndState(*req.Enabled)
		return &Message{Type: TypeDndState, Enabled: boolPtr(s.backend.DndState())}

	default:
		return &Message{Type: TypeError, Error: fmt.Sprintf("unknown request type %q", req.Type)}
	}
}

func (s *Server) writeLoop(c *conn) {
	defer s.wg.Done()

	for {
		select {
		case data := <-c.out:
			if _, err := c.raw.Write(data); err != nil {
				s.dropConn(c, "write failed")
				return
			}
		case <-c.done:
			return
		}
	}
}

// encodeFrame marshals a message with its newline terminator included.
// A frame is complete at encode time; write loops must never grow the
// slice they are handed, since one frame may be queued on many
// connections at once.
func encodeFrame(msg *Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// send queues an encoded message on a connection. If the outbound queue
// is saturated the connection is dropped; a slow client must never stall
// anyone else.
func (s *Server) send(c *conn, msg *Message) bool {
	data, err := encodeFrame(msg)
	if err != nil {
		s.logger.Error("failed to encode message", "error", err)
		return false
	}
	return s.sendRaw(c, data)
}

func (s *Server) sendRaw(c *conn, data []byte) bool {
	select {
	case <-c.done:
		return false
	case c.out <- data:
		return true
	default:
		s.dropConn(c, "outbound queue saturated")
		return false
	}
}

// Broadcast queues a push message to every connection independently.
func (s *Server) Broadcast(msg *Message) {
	data, err := encodeFrame(msg)
	if err != nil {
		s.logger.Error("failed to encode broadcast", "error", err)
		return
	}

	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		s.sendRaw(c, data)
	}
}

// BroadcastNewNotification pushes a new_notification event.
func (s *Server) BroadcastNewNotification(n *model.Notification) {
	s.Broadcast(&Message{Type: TypeNewNotification, Notification: n})
}

// BroadcastNotificationClosed pushes a notification_closed event.
func (s *Server) BroadcastNotificationClosed(id uint32) {
	s.Broadcast(&Message{Type: TypeNotificationClosed, ID: id})
}

// BroadcastDndChanged pushes a dnd_state_changed event.
func (s *Server) BroadcastDndChanged(enabled bool) {
	s.Broadcast(&Message{Type: TypeDndStateChanged, Enabled: boolPtr(enabled)})
}

func (s *Server) dropConn(c *conn, reason string) {
	c.once.Do(func() {
		close(c.done)
		_ = c.raw.Close()

		s.mu.Lock()
		delete(s.conns, c.id)
		s.mu.Unlock()

		s.logger.Debug("client disconnected", "conn", c.id, "reason", reason)
	})
}
