package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"tetris-duel/internal/game"
	"tetris-duel/internal/shared"
)

const writeWait = 5 * time.Second

// client serializes writes; gorilla connections allow one writer at a time.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(action string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(map[string]interface{}{
		"action": action,
		"data":   data,
	})
}

type Hub struct {
	mu      sync.RWMutex
	matches map[string]map[*client]struct{}
	svc     MatchService
}

func NewHub(svc MatchService) *Hub {
	return &Hub{
		matches: make(map[string]map[*client]struct{}),
		svc:     svc,
	}
}

func (h *Hub) SetMatches(svc MatchService) {
	h.svc = svc
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Hub) HandleWS(c *gin.Context) {
	code := c.Query("match")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing match"})
		return
	}
	summary, err := h.svc.Summary(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("match", code).Msg("ws-upgrade-failed")
		return
	}
	cl := &client{conn: conn}
	log.Debug().Str("match", code).Str("remote", c.Request.RemoteAddr).Msg("ws-connected")

	h.mu.Lock()
	if _, ok := h.matches[code]; !ok {
		h.matches[code] = make(map[*client]struct{})
	}
	h.matches[code][cl] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.remove(code, cl)
		_ = conn.Close()
	}()

	if err := cl.send("state", summary); err != nil {
		return
	}

	for {
		var msg shared.Frame
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("match", code).Msg("ws-read-failed")
			}
			return
		}
		if err := h.dispatch(code, msg); err != nil {
			_ = cl.send("error", gin.H{"error": err.Error()})
		}
	}
}

func (h *Hub) dispatch(code string, msg shared.Frame) error {
	switch msg.Action {
	case "input":
		var in shared.InputData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &in); err != nil {
				return err
			}
		}
		r := game.Human
		if in.Player != "" {
			var ok bool
			if r, ok = game.ParseRole(in.Player); !ok {
				return errUnknown("player", in.Player)
			}
		}
		cmd, ok := game.ParseCommand(in.Command)
		if !ok {
			return errUnknown("command", in.Command)
		}
		_, err := h.svc.Input(code, r, cmd)
		return err
	case "reset":
		_, err := h.svc.Reset(code)
		return err
	default:
		return errUnknown("action", msg.Action)
	}
}

// Broadcast writes {action, data} to every connection watching the match.
func (h *Hub) Broadcast(code string, action string, data interface{}) {
	if h == nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.matches[code]))
	for cl := range h.matches[code] {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		if err := cl.send(action, data); err != nil {
			log.Warn().Err(err).Str("match", code).Str("action", action).Msg("ws-send-failed")
			h.remove(code, cl)
			_ = cl.conn.Close()
		}
	}
}

// Watchers reports how many connections follow the match.
func (h *Hub) Watchers(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.matches[code])
}

func (h *Hub) remove(code string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.matches[code], cl)
	if len(h.matches[code]) == 0 {
		delete(h.matches, code)
	}
}

func errUnknown(what, value string) error {
	return fmt.Errorf("unknown %s: %q", what, value)
}
