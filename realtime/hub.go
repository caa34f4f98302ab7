// Package realtime maintains the single multiplexed realtime connection to
// the ShipMate gateway. Logical topic subscriptions live in a registry that
// is independent of the connection lifecycle: subscriptions made while
// disconnected are attached on the next connect, and the registry is
// replayed exactly once per connection epoch after a reconnect.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/shipmate-app/shipmate-go/session"
)

// State is the connection state of the hub.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

const writeTimeout = 5 * time.Second

// subscription is one logical registry entry. attachedEpoch is non-zero only
// while a wire-level subscription exists for the current connection epoch.
type subscription struct {
	attachedEpoch uint64
	consumers     []chan Message
}

// Config holds hub configuration.
type Config struct {
	// URL is the websocket endpoint, e.g. wss://api.shipmate.app/ws.
	URL string
	// Session supplies the credential at connect time.
	Session *session.Store
	// ReconnectDelay is the fixed delay between reconnect attempts.
	// Defaults to 5s.
	ReconnectDelay time.Duration
	// HeartbeatInterval paces outbound heartbeats; a connection silent for
	// more than twice this interval is considered dead. Defaults to 10s.
	HeartbeatInterval time.Duration
	// HandshakeTimeout bounds the websocket dial. Defaults to 10s.
	HandshakeTimeout time.Duration
	// ConsumerBuffer is the per-consumer channel depth. Defaults to 16.
	ConsumerBuffer int

	Logger zerolog.Logger
}

// Hub owns the physical connection and the subscription registry.
type Hub struct {
	url               string
	session           *session.Store
	reconnectDelay    time.Duration
	heartbeatInterval time.Duration
	handshakeTimeout  time.Duration
	buffer            int
	log               zerolog.Logger

	state atomic.Int32

	mu     sync.Mutex
	active bool
	done   chan struct{}
	conn   *websocket.Conn
	epoch  uint64
	subs   map[string]*subscription

	writeMu sync.Mutex
}

// New creates a hub. It does not connect.
func New(cfg Config) (*Hub, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if cfg.Session == nil {
		return nil, fmt.Errorf("Session is required")
	}

	h := &Hub{
		url:               cfg.URL,
		session:           cfg.Session,
		reconnectDelay:    cfg.ReconnectDelay,
		heartbeatInterval: cfg.HeartbeatInterval,
		handshakeTimeout:  cfg.HandshakeTimeout,
		buffer:            cfg.ConsumerBuffer,
		log:               cfg.Logger,
		subs:              make(map[string]*subscription),
	}
	if h.reconnectDelay <= 0 {
		h.reconnectDelay = 5 * time.Second
	}
	if h.heartbeatInterval <= 0 {
		h.heartbeatInterval = 10 * time.Second
	}
	if h.handshakeTimeout <= 0 {
		h.handshakeTimeout = 10 * time.Second
	}
	if h.buffer <= 0 {
		h.buffer = 16
	}
	return h, nil
}

// State returns the current connection state.
func (h *Hub) State() State {
	return State(h.state.Load())
}

// Connect opens the realtime connection. Idempotent: a hub that is already
// running is left alone. Without a credential it silently returns; the caller
// is expected to connect again once authenticated.
func (h *Hub) Connect() {
	h.mu.Lock()
	if h.active {
		h.mu.Unlock()
		return
	}
	token, ok := h.session.Token()
	if !ok {
		h.mu.Unlock()
		h.log.Debug().Msg("realtime: connect skipped, no credential")
		return
	}
	h.active = true
	h.done = make(chan struct{})
	h.setState(Connecting)
	h.mu.Unlock()

	go h.run(token)
}

// Disconnect detaches every wire-level subscription and closes the physical
// connection. The logical registry and its consumer channels stay intact for
// a later Connect; on logout consumers are expected to drop their entries.
func (h *Hub) Disconnect() {
	h.mu.Lock()
	if !h.active {
		h.mu.Unlock()
		return
	}
	h.active = false
	close(h.done)
	conn := h.conn
	h.conn = nil
	for _, sub := range h.subs {
		sub.attachedEpoch = 0
	}
	h.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout),
		)
		conn.Close()
	}
	h.setState(Disconnected)
}

// Subscribe registers interest in a destination and returns a consumer
// channel. Callers subscribing to the same destination share one wire-level
// subscription; every consumer receives every frame. When disconnected, the
// wire attachment is deferred to the next connect.
func (h *Hub) Subscribe(destination string) <-chan Message {
	ch := make(chan Message, h.buffer)

	h.mu.Lock()
	sub := h.subs[destination]
	if sub == nil {
		sub = &subscription{}
		h.subs[destination] = sub
	}
	sub.consumers = append(sub.consumers, ch)

	conn := h.conn
	attach := conn != nil && sub.attachedEpoch != h.epoch
	if attach {
		sub.attachedEpoch = h.epoch
	}
	h.mu.Unlock()

	if attach {
		if err := h.writeFrame(conn, frame{Type: frameSubscribe, Destination: destination}); err != nil {
			h.log.Warn().Err(err).Str("destination", destination).Msg("realtime: subscribe write failed")
		}
	}
	return ch
}

// Unsubscribe detaches one consumer from a destination and closes its
// channel. When the last consumer leaves, the wire-level subscription is
// detached and the registry entry removed.
func (h *Hub) Unsubscribe(destination string, ch <-chan Message) {
	h.mu.Lock()
	sub := h.subs[destination]
	if sub == nil {
		h.mu.Unlock()
		return
	}
	for i, c := range sub.consumers {
		if c == ch {
			sub.consumers = append(sub.consumers[:i], sub.consumers[i+1:]...)
			close(c)
			break
		}
	}
	var conn *websocket.Conn
	if len(sub.consumers) == 0 {
		delete(h.subs, destination)
		if sub.attachedEpoch != 0 {
			conn = h.conn
		}
	}
	h.mu.Unlock()

	if conn != nil {
		if err := h.writeFrame(conn, frame{Type: frameUnsubscribe, Destination: destination}); err != nil {
			h.log.Warn().Err(err).Str("destination", destination).Msg("realtime: unsubscribe write failed")
		}
	}
}

// Publish sends a payload to a destination, best effort. When not connected
// the message is dropped; there is no outbound buffer or replay.
func (h *Hub) Publish(destination string, payload any) {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()

	if conn == nil {
		h.log.Debug().Str("destination", destination).Msg("realtime: publish dropped, not connected")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn().Err(err).Str("destination", destination).Msg("realtime: publish payload not serializable")
		return
	}
	if err := h.writeFrame(conn, frame{Type: framePublish, Destination: destination, Body: body}); err != nil {
		h.log.Debug().Err(err).Str("destination", destination).Msg("realtime: publish write failed")
	}
}

// run owns the dial/reconnect loop for one Connect..Disconnect span.
func (h *Hub) run(token string) {
	for {
		conn, err := h.dial(token)
		if err != nil {
			h.log.Warn().Err(err).Msg("realtime: dial failed")
			h.setState(Reconnecting)
			if !h.waitReconnect() {
				h.setState(Disconnected)
				return
			}
			token = h.currentToken(token)
			continue
		}

		h.mu.Lock()
		select {
		case <-h.done:
			h.mu.Unlock()
			conn.Close()
			return
		default:
		}
		h.conn = conn
		h.epoch++
		epoch := h.epoch
		h.mu.Unlock()

		h.setState(Connected)
		h.log.Info().Uint64("epoch", epoch).Msg("realtime: connected")
		h.attachAll(conn, epoch)

		stop := make(chan struct{})
		go h.heartbeatLoop(conn, stop)
		h.readLoop(conn)
		close(stop)

		h.mu.Lock()
		if h.conn == conn {
			h.conn = nil
		}
		for _, sub := range h.subs {
			sub.attachedEpoch = 0
		}
		h.mu.Unlock()
		conn.Close()

		select {
		case <-h.done:
			return
		default:
		}
		h.setState(Reconnecting)
		h.log.Info().Msg("realtime: connection lost, reconnecting")
		if !h.waitReconnect() {
			h.setState(Disconnected)
			return
		}
		token = h.currentToken(token)
	}
}

func (h *Hub) dial(token string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: h.handshakeTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := dialer.Dial(h.url, header)
	return conn, err
}

// waitReconnect sleeps for the fixed reconnect delay; false means the hub
// was disconnected while waiting.
func (h *Hub) waitReconnect() bool {
	select {
	case <-h.done:
		return false
	case <-time.After(h.reconnectDelay):
		return true
	}
}

// currentToken re-reads the credential before a reconnect attempt so a
// rotated token is picked up.
func (h *Hub) currentToken(fallback string) string {
	if t, ok := h.session.Token(); ok {
		return t
	}
	return fallback
}

// attachAll replays the registry on a transition into Connected, attaching
// only entries without a wire subscription for this epoch.
func (h *Hub) attachAll(conn *websocket.Conn, epoch uint64) {
	h.mu.Lock()
	var pending []string
	for dest, sub := range h.subs {
		if sub.attachedEpoch != epoch {
			sub.attachedEpoch = epoch
			pending = append(pending, dest)
		}
	}
	h.mu.Unlock()

	for _, dest := range pending {
		if err := h.writeFrame(conn, frame{Type: frameSubscribe, Destination: dest}); err != nil {
			// The connection is dying; teardown resets attachment state.
			h.log.Warn().Err(err).Msg("realtime: subscription replay interrupted")
			return
		}
	}
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	deadline := 2 * h.heartbeatInterval
	for {
		_ = conn.SetReadDeadline(time.Now().Add(deadline))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			// No envelope means nothing to route it by.
			h.log.Debug().Msg("realtime: unparseable frame skipped")
			continue
		}
		switch f.Type {
		case frameMessage:
			h.dispatch(f)
		case frameHeartbeat:
			// Read deadline already advanced.
		default:
			// Server acks and unknown frame types are ignored.
		}
	}
}

// dispatch fans one inbound frame out to every consumer of its destination.
// Sends are non-blocking: a consumer that stopped draining loses frames
// instead of stalling the read loop.
func (h *Hub) dispatch(f frame) {
	msg := Message{Destination: f.Destination, Body: []byte(f.Body)}

	h.mu.Lock()
	defer h.mu.Unlock()

	sub := h.subs[f.Destination]
	if sub == nil {
		return
	}
	for _, ch := range sub.consumers {
		select {
		case ch <- msg:
		default:
			h.log.Warn().Str("destination", f.Destination).Msg("realtime: slow consumer, frame dropped")
		}
	}
}

func (h *Hub) heartbeatLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := h.writeFrame(conn, frame{Type: frameHeartbeat}); err != nil {
				return
			}
		}
	}
}

func (h *Hub) writeFrame(conn *websocket.Conn, f frame) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(f)
}

func (h *Hub) setState(s State) {
	old := State(h.state.Swap(int32(s)))
	if old != s {
		h.log.Debug().Str("from", old.String()).Str("to", s.String()).Msg("realtime: state change")
	}
}
