package v1

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	standID uint
	userID  uint
}

// Hub fans stand discussion messages out to the websocket clients watching
// that stand. Clients only receive; messages are sent over HTTP.
type Hub struct {
	upgrader websocket.Upgrader

	roomsMutex sync.RWMutex
	rooms      map[uint]map[*client]struct{}
}

func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		rooms: make(map[uint]map[*client]struct{}),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Broadcast delivers msg to every client of the stand. Clients whose buffer
// is full are dropped.
func (h *Hub) Broadcast(standID uint, msg domain.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		zap.L().Warn("failed to encode discussion message", zap.Error(err))
		return
	}

	h.roomsMutex.Lock()
	defer h.roomsMutex.Unlock()

	for c := range h.rooms[standID] {
		select {
		case c.send <- payload:
		default:
			h.removeLocked(c)
		}
	}
}

// Clients returns how many sockets are watching the stand.
func (h *Hub) Clients(standID uint) int {
	h.roomsMutex.RLock()
	defer h.roomsMutex.RUnlock()

	return len(h.rooms[standID])
}

func (h *Hub) register(c *client) {
	h.roomsMutex.Lock()
	defer h.roomsMutex.Unlock()

	room, ok := h.rooms[c.standID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.standID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.roomsMutex.Lock()
	defer h.roomsMutex.Unlock()

	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	room, ok := h.rooms[c.standID]
	if !ok {
		return
	}
	if _, ok = room[c]; !ok {
		return
	}

	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.standID)
	}
}

// serve upgrades the request and pumps messages until the socket closes.
func (h *Hub) serve(ctx *gin.Context, standID, userID uint) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		standID: standID,
		userID:  userID,
	}
	h.register(c)

	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("websocket closed", zap.Uint("stand_id", c.standID), zap.Uint("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}
