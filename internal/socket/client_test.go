package socket

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineServer is a minimal scripted peer for exercising the client side
// of the correlation protocol without a real daemon.
type lineServer struct {
	t        *testing.T
	path     string
	listener net.Listener
	accepted chan net.Conn
}

func newLineServer(t *testing.T) *lineServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "socket")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)

	s := &lineServer{t: t, path: path, listener: ln, accepted: make(chan net.Conn, 1)}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		s.accepted <- conn
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *lineServer) conn() net.Conn {
	s.t.Helper()
	select {
	case c := <-s.accepted:
		s.t.Cleanup(func() { _ = c.Close() })
		return c
	case <-time.After(5 * time.Second):
		s.t.Fatal("no connection accepted")
		return nil
	}
}

func (s *lineServer) readLine(conn net.Conn) *Message {
	s.t.Helper()
	require.NoError(s.t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(s.t, err)
	var msg Message
	require.NoError(s.t, json.Unmarshal([]byte(line), &msg))
	return &msg
}

func (s *lineServer) writeLine(conn net.Conn, msg *Message) {
	s.t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(s.t, err)
	_, err = conn.Write(append(data, '\n'))
	require.NoError(s.t, err)
}

func TestClient_CorrelatesResponseToRequest(t *testing.T) {
	srv := newLineServer(t)

	c, err := Dial(srv.path, nil, nil)
	require.NoError(t, err)
	defer c.Close()
	peer := srv.conn()

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := c.GetAll(ctx)
		done <- err
	}()

	req := srv.readLine(peer)
	assert.Equal(t, TypeGetAll, req.Type)
	require.NotEmpty(t, req.RequestID)

	srv.writeLine(peer, &Message{Type: TypeNotificationList, RequestID: req.RequestID})
	require.NoError(t, <-done)
}

func TestClient_StaleResponseDiscarded(t *testing.T) {
	srv := newLineServer(t)

	c, err := Dial(srv.path, nil, nil)
	require.NoError(t, err)
	defer c.Close()
	peer := srv.conn()

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := c.GetAll(ctx)
		done <- err
	}()

	req := srv.readLine(peer)

	// A response for a correlation id nobody is waiting on must be
	// dropped without disturbing the real request.
	srv.writeLine(peer, &Message{Type: TypeNotificationList, RequestID: json.RawMessage("9999")})
	srv.writeLine(peer, &Message{Type: TypeNotificationList, RequestID: req.RequestID})
	require.NoError(t, <-done)
}

func TestClient_PushesRoutedToHandler(t *testing.T) {
	srv := newLineServer(t)

	pushes := make(chan *Message, 1)
	c, err := Dial(srv.path, func(m *Message) { pushes <- m }, nil)
	require.NoError(t, err)
	defer c.Close()
	peer := srv.conn()

	srv.writeLine(peer, &Message{Type: TypeNotificationClosed, ID: 42})

	select {
	case m := <-pushes:
		assert.Equal(t, TypeNotificationClosed, m.Type)
		assert.Equal(t, uint32(42), m.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("push not delivered")
	}
}

func TestClient_PendingFailsWhenConnectionCloses(t *testing.T) {
	srv := newLineServer(t)

	c, err := Dial(srv.path, nil, nil)
	require.NoError(t, err)
	defer c.Close()
	peer := srv.conn()

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := c.GetAll(ctx)
		done <- err
	}()

	srv.readLine(peer)
	require.NoError(t, peer.Close())

	assert.ErrorIs(t, <-done, ErrConnClosed)

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client read loop did not terminate")
	}

	// Requests after the loop has terminated fail immediately.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = c.GetAll(ctx)
	assert.ErrorIs(t, err, ErrConnClosed)
}

func TestClient_DaemonErrorSurfaced(t *testing.T) {
	srv := newLineServer(t)

	c, err := Dial(srv.path, nil, nil)
	require.NoError(t, err)
	defer c.Close()
	peer := srv.conn()

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := c.GetAll(ctx)
		done <- err
	}()

	req := srv.readLine(peer)
	srv.writeLine(peer, &Message{Type: TypeError, RequestID: req.RequestID, Error: "boom"})

	err = <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
