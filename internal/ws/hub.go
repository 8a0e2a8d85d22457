package ws

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-marquee/internal/config"
	diag "github.com/coreman2200/funtimes-marquee/internal/diagnostics"
	"github.com/coreman2200/funtimes-marquee/internal/driver"
)

// Status is the playback state reported to control clients.
type Status struct {
	Cursor      int  `json:"cursor"`
	Frames      int  `json:"frames"`
	FastForward bool `json:"fastForward"`
	Done        bool `json:"done"`
}

// Control is the playback surface the hub drives.
type Control interface {
	SetFastForward(on bool)
	Restart()
	Status() Status
}

// Hub fans rendered frames and diagnostics out to websocket clients and
// accepts playback control messages. It is also a throttled driver.Driver.
type Hub struct {
	mu       sync.RWMutex
	ctrl     Control
	throttle time.Duration
	lastEmit time.Time

	// cfgMu serializes Config updates and their saves.
	cfgMu      sync.Mutex
	ConfigPath string
	Config     *config.Config

	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	enc         png.Encoder
}

func NewHub(ctrl Control, throttle time.Duration) *Hub {
	return &Hub{
		ctrl:        ctrl,
		throttle:    throttle,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		enc:         png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// SetControl attaches the playback control after construction.
func (h *Hub) SetControl(ctrl Control) {
	h.mu.Lock()
	h.ctrl = ctrl
	h.mu.Unlock()
}

func (h *Hub) control() Control {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ctrl
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.sendStatus(conn)
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go h.drain(conn, h.clients)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.diagClients[conn] = true
	h.mu.Unlock()

	go h.drain(conn, h.diagClients)
}

// drain reads until the peer goes away, then forgets it.
func (h *Hub) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		h.mu.Lock()
		delete(set, conn)
		h.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.applyControl(msg)
		h.sendStatus(conn)
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"clients":  len(h.clients),
	}
	ctrl := h.ctrl
	h.mu.RUnlock()
	if ctrl != nil {
		resp["playback"] = ctrl.Status()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) applyControl(msg map[string]any) {
	ctrl := h.control()
	if ctrl == nil {
		return
	}
	if v, ok := msg["fastForward"].(bool); ok {
		ctrl.SetFastForward(v)
		h.saveFastForward(v)
	}
	if v, ok := msg["restart"].(bool); ok && v {
		ctrl.Restart()
		h.PushDiag(diag.Diagnostic{Severity: diag.Info, Code: "PLAYBACK.RESTART", Summary: "Playback restarted"})
	}
}

func (h *Hub) saveFastForward(on bool) {
	h.cfgMu.Lock()
	defer h.cfgMu.Unlock()
	if h.Config == nil {
		return
	}
	h.Config.FastForward = on
	if h.ConfigPath == "" {
		return
	}
	if err := config.Save(h.ConfigPath, h.Config); err != nil {
		log.Warn().Err(err).Str("path", h.ConfigPath).Msg("save config")
	}
}

func (h *Hub) sendStatus(conn *websocket.Conn) {
	ctrl := h.control()
	if ctrl == nil {
		return
	}
	b, _ := json.Marshal(ctrl.Status())
	conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

// Write broadcasts f as a PNG to frame clients, at most once per throttle.
func (h *Hub) Write(f driver.Frame) error {
	h.mu.Lock()
	now := time.Now()
	if len(h.clients) == 0 || f.Image == nil || h.lastEmit.Add(h.throttle).After(now) {
		h.mu.Unlock()
		return nil
	}
	h.lastEmit = now
	h.frameID = f.ID
	h.mu.Unlock()

	var buf bytes.Buffer
	if err := h.enc.Encode(&buf, f.Image); err != nil {
		return err
	}
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		Cursor  int    `json:"cursor"`
		PNG     []byte `json:"png"`
	}
	b, _ := json.Marshal(frame{T: now.UnixNano(), FrameID: f.ID, Cursor: f.Cursor, PNG: buf.Bytes()})
	h.broadcast(h.clients, b)
	return nil
}

// Close drops every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
	}
	for c := range h.diagClients {
		c.Close()
	}
	return nil
}

// PushDiag sends d to every diagnostics client.
func (h *Hub) PushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	h.broadcast(h.diagClients, b)
}

// broadcast holds the write lock so each conn has a single writer.
func (h *Hub) broadcast(set map[*websocket.Conn]bool, b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range set {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write ws")
		}
	}
}
