package echoapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/planner"
	"github.com/campusmove/movplan/core/state"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// eventHub pushes every collection change to the connected websocket clients.
type eventHub struct {
	logger core.Logger

	mu      sync.Mutex
	clients map[*eventClient]struct{}
	closed  bool
	unsub   func()
}

type eventClient struct {
	hub  *eventHub
	conn *websocket.Conn
	send chan []byte
}

func newEventHub(logger core.Logger) *eventHub {
	return &eventHub{
		logger:  logger,
		clients: make(map[*eventClient]struct{}),
	}
}

func (h *eventHub) subscribe(p *planner.Planner) {
	h.unsub = p.Subscribe(h.broadcast)
}

func (h *eventHub) register(c *eventClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *eventHub) unregister(c *eventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast drops clients that are too slow to keep up.
func (h *eventHub) broadcast(e state.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("marshalling event", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *eventHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	if h.unsub != nil {
		h.unsub()
	}
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump only watches for the connection to close; clients never send anything meaningful.
func (c *eventClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("unexpected websocket close", err)
			}
			return
		}
	}
}

func (c *eventClient) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.Warn("writing to websocket", err)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func registerEventsAPI(g *echo.Group, hub *eventHub) {
	g.GET("/events", func(ctx echo.Context) error {
		conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
		if err != nil {
			// the upgrader already replied
			hub.logger.Warn("upgrading to websocket", err)
			return nil
		}

		client := &eventClient{hub: hub, conn: conn, send: make(chan []byte, sendBuffer)}
		if !hub.register(client) {
			conn.Close()
			return nil
		}

		go client.writePump()
		go client.readPump()
		return nil
	})
}
