package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/emsguide/internal/guide"
	"github.com/ziadkadry99/emsguide/internal/viewer"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the incoming WebSocket message format.
type clientMessage struct {
	Type  string `json:"type"`  // "query", "toggle", "next" or "prev"
	Query string `json:"query"` // query
	Path  string `json:"path"`  // toggle: "5", "5/52" or "5/51/511"
}

// serverMessage is the outgoing WebSocket message format.
type serverMessage struct {
	Type  string           `json:"type"` // "state" or "error"
	State *viewer.Snapshot `json:"state,omitempty"`
	Error string           `json:"error,omitempty"`
}

// wsClient delivers snapshots to one connection. Snapshots that arrive
// faster than they can be written are coalesced to the newest.
type wsClient struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	latest *viewer.Snapshot
	notify chan struct{}
	errs   chan string
	done   chan struct{}
}

func (c *wsClient) push(snap viewer.Snapshot) {
	c.mu.Lock()
	if c.latest != nil && snap.Version <= c.latest.Version {
		c.mu.Unlock()
		return
	}
	c.latest = &snap
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *wsClient) pushError(msg string) {
	select {
	case c.errs <- msg:
	default:
	}
}

func (c *wsClient) take() *viewer.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

func (c *wsClient) write(msg serverMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (s *Server) writeLoop(c *wsClient) {
	var sent uint64
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.errs:
			if err := c.write(serverMessage{Type: "error", Error: msg}); err != nil {
				s.log.Debug("websocket write", "error", err)
				return
			}
		case <-c.notify:
			snap := c.take()
			if snap == nil || snap.Version <= sent {
				continue
			}
			if err := c.write(serverMessage{Type: "state", State: snap}); err != nil {
				s.log.Debug("websocket write", "error", err)
				return
			}
			sent = snap.Version
		}
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	c := &wsClient{
		conn:   conn,
		notify: make(chan struct{}, 1),
		errs:   make(chan string, 8),
		done:   make(chan struct{}),
	}
	sess := viewer.New(s.doc, viewer.Options{
		SettleDelay: s.cfg.SettleDelay,
		Expansion:   s.cfg.Expansion,
		OnUpdate:    c.push,
		Logger:      s.log,
	})
	log := s.log.With("session", sess.ID())
	log.Info("session opened")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(c)
	}()
	defer func() {
		sess.Close()
		close(c.done)
		wg.Wait()
		log.Info("session closed")
	}()

	c.push(sess.Snapshot())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.pushError("invalid message format")
			continue
		}

		switch msg.Type {
		case "query":
			sess.SetQuery(msg.Query)
		case "toggle":
			if !toggle(sess, msg.Path) {
				c.pushError("invalid toggle path: " + msg.Path)
			}
		case "next":
			sess.Next()
		case "prev":
			sess.Previous()
		default:
			c.pushError("unknown message type: " + msg.Type)
		}
	}
}

// toggle maps a containment path onto the matching accordion level.
func toggle(sess *viewer.Session, path string) bool {
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	switch len(parts) {
	case 1:
		sess.ToggleEntry(guide.ID(parts[0]))
	case 2:
		sess.ToggleSub(guide.ID(parts[0]), guide.ID(parts[1]))
	case 3:
		sess.ToggleGrand(guide.ID(parts[0]), guide.ID(parts[1]), guide.ID(parts[2]))
	default:
		return false
	}
	return true
}
