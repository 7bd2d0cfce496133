package hostsim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/okian/profilebridge/pkg/logger"
)

// Received is one outbound event observed on the host socket.
type Received struct {
	Channel string
	Name    string
	Payload string
}

// Listener plays the host side of the websocket transport and records every
// envelope the bridge sends.
type Listener struct {
	conn *websocket.Conn
	log  logger.Logger

	mu        sync.Mutex
	byPayload map[string][]Received
	other     []Received
	replies   int

	done chan struct{}
}

func hostURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/host"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/host"
	default:
		return baseURL + "/host"
	}
}

// Listen dials the host endpoint and waits until the service reports the
// connection.
func Listen(ctx context.Context, cfg *Config) (*Listener, error) {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.Timeout}
	conn, _, err := dialer.DialContext(ctx, hostURL(cfg.BaseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect host socket: %w", err)
	}
	l := &Listener{
		conn:      conn,
		log:       logger.Get().Named("listener"),
		byPayload: make(map[string][]Received),
		done:      make(chan struct{}),
	}
	go l.readLoop()

	if err := waitForHost(ctx, cfg); err != nil {
		_ = l.Close()
		return nil, err
	}
	return l, nil
}

// waitForHost polls /stats until at least one host is registered.
func waitForHost(ctx context.Context, cfg *Config) error {
	client := newHTTPClient(cfg.Timeout)
	deadline := time.Now().Add(cfg.Timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(ctx, cfg.BaseURL+"/stats")
		if err == nil {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr == nil && resp.StatusCode == http.StatusOK && gjson.GetBytes(body, "hosts").Int() > 0 {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(HostPollInterval):
		}
	}
	return fmt.Errorf("host socket not registered within %s", cfg.Timeout)
}

func (l *Listener) readLoop() {
	defer close(l.done)
	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.log.Warn(context.Background(), "host socket closed", logger.Error(err))
			}
			return
		}
		l.record(data)
	}
}

func (l *Listener) record(data []byte) {
	frame := gjson.ParseBytes(data)
	l.mu.Lock()
	defer l.mu.Unlock()

	// Call acknowledgements carry "call" and "ok" instead of an envelope.
	if frame.Get("call").Exists() {
		l.replies++
		return
	}
	r := Received{
		Channel: frame.Get("channel").String(),
		Name:    frame.Get("name").String(),
		Payload: frame.Get("payload").String(),
	}
	key := gjson.Get(r.Payload, "payload").String()
	if key == "" {
		l.other = append(l.other, r)
		return
	}
	l.byPayload[key] = append(l.byPayload[key], r)
}

// EventsFor returns the events recorded for a correlation payload.
func (l *Listener) EventsFor(payload string) []Received {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Received(nil), l.byPayload[payload]...)
}

// Snapshot returns the events keyed by correlation payload and the events
// that carried none.
func (l *Listener) Snapshot() (map[string][]Received, []Received) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string][]Received, len(l.byPayload))
	for k, v := range l.byPayload {
		out[k] = append([]Received(nil), v...)
	}
	return out, append([]Received(nil), l.other...)
}

// Close sends a close frame and waits for the read loop to exit.
func (l *Listener) Close() error {
	_ = l.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := l.conn.Close()
	<-l.done
	return err
}
