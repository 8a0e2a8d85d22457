package ws

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-marquee/internal/config"
	"github.com/coreman2200/funtimes-marquee/internal/driver"
)

type fakeControl struct {
	mu       sync.Mutex
	ff       bool
	restarts int
}

func (c *fakeControl) SetFastForward(on bool) { c.mu.Lock(); c.ff = on; c.mu.Unlock() }
func (c *fakeControl) Restart()               { c.mu.Lock(); c.restarts++; c.mu.Unlock() }
func (c *fakeControl) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{Cursor: 3, Frames: 10, FastForward: c.ff}
}

func serve(t *testing.T, h *Hub) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/control", h.HandleControlWS)
	mux.HandleFunc("/health", h.HandleHealth)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestFrameBroadcast(t *testing.T) {
	h := NewHub(&fakeControl{}, 0)
	srv := serve(t, h)
	conn := dial(t, srv, "/ws")

	var st Status
	require.NoError(t, conn.ReadJSON(&st))
	assert.Equal(t, 10, st.Frames)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.clients) == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, h.Write(driver.Frame{ID: 42, Cursor: 5, Image: img}))

	var msg struct {
		FrameID uint64 `json:"frame_id"`
		Cursor  int    `json:"cursor"`
		PNG     []byte `json:"png"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, uint64(42), msg.FrameID)
	assert.Equal(t, 5, msg.Cursor)
	decoded, err := png.Decode(bytes.NewReader(msg.PNG))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestControlTogglesAndPersists(t *testing.T) {
	ctrl := &fakeControl{}
	h := NewHub(ctrl, 0)
	h.Config = config.Default()
	h.ConfigPath = filepath.Join(t.TempDir(), "marquee.yaml")
	srv := serve(t, h)
	conn := dial(t, srv, "/control")

	require.NoError(t, conn.WriteJSON(map[string]any{"fastForward": true}))
	var st Status
	require.NoError(t, conn.ReadJSON(&st))
	assert.True(t, st.FastForward)

	require.NoError(t, conn.WriteJSON(map[string]any{"restart": true}))
	require.NoError(t, conn.ReadJSON(&st))
	ctrl.mu.Lock()
	assert.Equal(t, 1, ctrl.restarts)
	ctrl.mu.Unlock()

	saved, err := config.Load(h.ConfigPath)
	require.NoError(t, err)
	assert.True(t, saved.FastForward)
}

func TestHealth(t *testing.T) {
	h := NewHub(&fakeControl{}, time.Second)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "uptime_s")
	assert.Equal(t, float64(10), body["playback"].(map[string]any)["frames"])
}

func TestWriteWithoutClientsIsNoop(t *testing.T) {
	h := NewHub(nil, 0)
	assert.NoError(t, h.Write(driver.Frame{ID: 1, Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}))
	assert.NoError(t, h.Close())
}

func TestConcurrentControlSerializesConfig(t *testing.T) {
	h := NewHub(nil, 0)
	h.Config = config.Default()
	h.ConfigPath = filepath.Join(t.TempDir(), "marquee.yaml")
	ctrl := &fakeControl{}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.SetControl(ctrl)
	}()
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.applyControl(map[string]any{"fastForward": true})
		}()
		go func() {
			defer wg.Done()
			h.HandleHealth(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		}()
	}
	wg.Wait()
	h.applyControl(map[string]any{"fastForward": true})

	saved, err := config.Load(h.ConfigPath)
	require.NoError(t, err)
	assert.True(t, saved.FastForward)
	assert.True(t, ctrl.Status().FastForward)
}
