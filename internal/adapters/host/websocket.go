package host

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/profilebridge/pkg/logger"
	"github.com/okian/profilebridge/pkg/metrics"
)

// CallHandler runs a named host entry point with JSON object arguments.
type CallHandler interface {
	Call(ctx context.Context, name string, args []byte) error
}

// Hub is a websocket transport. Every connected host receives each envelope;
// hosts may also send CallFrames, which are passed to the CallHandler and
// acknowledged with a Reply.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	closed  bool

	handler  atomic.Value // handlerBox
	upgrader websocket.Upgrader
	opts     options
	logger   logger.Logger
}

type handlerBox struct{ h CallHandler }

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// NewHub creates a hub with no connected hosts.
func NewHub(opts ...Option) *Hub {
	o := buildOptions("host.websocket", opts)
	check := o.checkOrigin
	if check == nil {
		check = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     check,
		},
		opts:   o,
		logger: o.logger,
	}
}

// SetCallHandler attaches the handler for inbound call frames. Frames
// received before a handler is set are rejected.
func (h *Hub) SetCallHandler(handler CallHandler) {
	h.handler.Store(handlerBox{handler})
}

// Clients returns the number of connected hosts.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send queues the envelope for every connected host. A host whose buffer is
// full misses the frame.
func (h *Hub) Send(ctx context.Context, channel, name, payload string) error {
	data, err := Envelope{Channel: channel, Name: name, Payload: payload}.marshal()
	if err != nil {
		metrics.RecordTransportSend("websocket", "error")
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrTransportClosed
	}
	if len(h.clients) == 0 {
		metrics.RecordTransportSend("websocket", "no_clients")
		h.logger.Debug(ctx, "no host connected", logger.String("name", name))
		return nil
	}
	for _, c := range h.clients {
		if !h.offer(c, data) {
			metrics.RecordTransportDropped("websocket")
			h.logger.Warn(ctx, "host send buffer full, dropping frame",
				logger.String("client", c.id),
				logger.String("name", name),
			)
		}
	}
	metrics.RecordTransportSend("websocket", "ok")
	return nil
}

func (h *Hub) offer(c *client, data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ServeHTTP upgrades the request and serves one host until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, h.opts.sendBuffer),
		done: make(chan struct{}),
	}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	defer h.unregister(c)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	metrics.UpdateWebsocketClients(len(h.clients))
	h.logger.Info(context.Background(), "host connected", logger.String("client", c.id))
	return true
}

func (h *Hub) unregister(c *client) {
	c.stop()
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	metrics.UpdateWebsocketClients(len(h.clients))
	h.logger.Info(context.Background(), "host disconnected", logger.String("client", c.id))
}

func (h *Hub) writeLoop(c *client) {
	defer c.stop()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug(context.Background(), "host write failed",
					logger.String("client", c.id),
					logger.Error(err),
				)
				return
			}
		}
	}
}

func (h *Hub) readLoop(c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn(context.Background(), "host connection lost",
					logger.String("client", c.id),
					logger.Error(err),
				)
			}
			return
		}
		h.reply(c, h.handle(c, data))
	}
}

func (h *Hub) handle(c *client, data []byte) Reply {
	var frame CallFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Call == "" {
		return Reply{Error: "frame must be a json object with a call name"}
	}
	box, _ := h.handler.Load().(handlerBox)
	if box.h == nil {
		return Reply{Call: frame.Call, Error: "no call handler attached"}
	}
	ctx := context.Background()
	if err := box.h.Call(ctx, frame.Call, frame.Args); err != nil {
		h.logger.Warn(ctx, "host call failed",
			logger.String("client", c.id),
			logger.String("call", frame.Call),
			logger.Error(err),
		)
		return Reply{Call: frame.Call, Error: err.Error()}
	}
	return Reply{Call: frame.Call, OK: true}
}

func (h *Hub) reply(c *client, r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if !h.offer(c, data) {
		metrics.RecordTransportDropped("websocket")
	}
}

// Close disconnects every host. Later sends fail with ErrTransportClosed.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), deadline)
		c.stop()
	}
	return nil
}
