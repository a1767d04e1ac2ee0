// Package remote mirrors a memdom document to websocket clients.
//
// A Hub sends each new connection a snapshot of the document, then streams
// the mutations applied by every engine pass. Clients fire events back as
// event frames; the hub runs the matching listeners through a Dispatcher,
// normally a loop.Loop, so handlers never race with render passes.
package remote

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/reconcile/pkg/memdom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Dispatcher runs fn on the goroutine that owns the engine.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// Config configures a Hub.
type Config struct {
	// Dispatcher runs client events. When nil, listeners run on the
	// connection's read goroutine.
	Dispatcher Dispatcher

	// Logger receives connection and frame errors.
	Logger *slog.Logger

	// WriteTimeout bounds each frame write. Default: 10s.
	WriteTimeout time.Duration

	// CheckOrigin validates the websocket handshake origin. When nil, all
	// origins are accepted.
	CheckOrigin func(r *http.Request) bool
}

type client struct {
	conn  *websocket.Conn
	since uint64 // Seq of the last mutation the client has seen
}

// Hub manages websocket clients of one document.
type Hub struct {
	doc      *memdom.Document
	config   Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]*client

	pendingMu sync.Mutex
	pending   []memdom.Mutation
}

// NewHub creates a hub for doc and starts recording its mutations.
func NewHub(doc *memdom.Document, config Config) *Hub {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	h := &Hub{
		doc:     doc,
		config:  config,
		logger:  config.Logger.With("component", "remote"),
		clients: make(map[*websocket.Conn]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
	doc.Watch(h.record)
	return h
}

// record is the document watcher. It runs under the document lock.
func (h *Hub) record(m memdom.Mutation) {
	h.pendingMu.Lock()
	h.pending = append(h.pending, m)
	h.pendingMu.Unlock()
}

// ServeHTTP upgrades the request and serves the connection until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	if err := h.attach(conn); err != nil {
		h.logger.Warn("snapshot send failed", "error", err)
		conn.Close()
		return
	}
	h.logger.Info("client connected", "remote", req.RemoteAddr, "clients", h.ClientCount())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.handleFrame(conn, data)
	}

	h.detach(conn)
	h.logger.Info("client disconnected", "remote", req.RemoteAddr)
}

// attach sends the snapshot and registers the client. The snapshot and its
// sequence number are read atomically, so later flushes skip mutations the
// snapshot already reflects.
func (h *Hub) attach(conn *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	html, seq := h.doc.Snapshot()
	if err := h.write(conn, &Frame{Type: FrameSnapshot, Seq: seq, HTML: html}); err != nil {
		return err
	}
	h.clients[conn] = &client{conn: conn, since: seq}
	return nil
}

func (h *Hub) detach(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) handleFrame(conn *websocket.Conn, data []byte) {
	f, err := DecodeFrame(data)
	if err == nil && f.Type != FrameEvent {
		err = errUnexpectedFrame(f.Type)
	}
	if err != nil {
		h.logger.Warn("rejected client frame", "error", err)
		h.mu.Lock()
		_ = h.write(conn, &Frame{Type: FrameError, Error: err.Error()})
		h.mu.Unlock()
		return
	}

	fire := func() {
		ev := vdom.Event{Type: f.Event, Value: f.Value}
		if _, err := h.doc.DispatchID(f.Node, ev); err != nil {
			h.logger.Warn("event for unknown node", "node", f.Node, "event", f.Event)
		}
	}
	if h.config.Dispatcher == nil {
		fire()
		return
	}
	if err := h.config.Dispatcher.Dispatch(fire); err != nil {
		h.logger.Warn("event dropped", "error", err)
	}
}

// Flush sends pending mutations to every client.
func (h *Hub) Flush() {
	h.pendingMu.Lock()
	batch := h.pending
	h.pending = nil
	h.pendingMu.Unlock()
	if len(batch) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, c := range h.clients {
		muts := batch
		for len(muts) > 0 && muts[0].Seq <= c.since {
			muts = muts[1:]
		}
		if len(muts) == 0 {
			continue
		}
		last := muts[len(muts)-1].Seq
		if err := h.write(conn, &Frame{Type: FrameMutations, Seq: last, Mutations: muts}); err != nil {
			h.logger.Warn("dropping client", "error", err)
			delete(h.clients, conn)
			conn.Close()
			continue
		}
		c.since = last
	}
}

// PassCompleted implements vdom.Observer by flushing after every pass.
func (h *Hub) PassCompleted(string, time.Duration, vdom.PassStats, error) {
	h.Flush()
}

// write sends one frame. Callers hold h.mu, which serializes writes.
func (h *Hub) write(conn *websocket.Conn, f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
		delete(h.clients, conn)
	}
}

type errUnexpectedFrame FrameType

func (e errUnexpectedFrame) Error() string {
	return "remote: unexpected frame type " + string(e)
}

var _ vdom.Observer = (*Hub)(nil)
