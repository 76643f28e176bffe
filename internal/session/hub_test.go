package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

const devicesResult = `[{"ieee":"00:0d:6f:00:00:00:00:01","user_given_name":null,"device_type":"Coordinator","nwk":"0x0000","lqi":255,"rssi":null,"last_seen":"2024-01-01T10:00:00","available":true,"neighbors":[{"ieee":"00:0d:6f:00:00:00:00:02","device_type":"Router","lqi":"200","relationship":"Child","depth":"1","nwk":"0x1234"}]}]`

// fakeHub speaks enough of the Home Assistant websocket API for the client
type fakeHub struct {
	t        *testing.T
	token    string
	server   *httptest.Server
	upgrader websocket.Upgrader

	// noise is sent before every reply to exercise frame skipping
	noise bool
	// dropAfter closes each connection after this many replies; 0 never
	dropAfter int
	// fail makes replies report success=false
	fail bool

	mu    sync.Mutex
	ids   []int
	conns int
}

func newFakeHub(t *testing.T, token string) *fakeHub {
	h := &fakeHub{t: t, token: token}
	h.server = httptest.NewServer(http.HandlerFunc(h.serve))
	t.Cleanup(h.server.Close)
	return h
}

func (h *fakeHub) URL() string {
	return "ws" + strings.TrimPrefix(h.server.URL, "http") + "/api/websocket"
}

func (h *fakeHub) IDs() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.ids...)
}

func (h *fakeHub) Conns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns
}

func (h *fakeHub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.t.Logf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.conns++
	h.mu.Unlock()

	if err := conn.WriteJSON(map[string]string{"type": TypeAuthRequired, "ha_version": "2024.1.0"}); err != nil {
		return
	}

	var auth authMessage
	if err := conn.ReadJSON(&auth); err != nil {
		return
	}
	if auth.AccessToken != h.token {
		conn.WriteJSON(map[string]string{"type": TypeAuthInvalid, "message": "Invalid access token or password"})
		return
	}
	if err := conn.WriteJSON(map[string]string{"type": TypeAuthOK}); err != nil {
		return
	}

	replies := 0
	for {
		var q queryMessage
		if err := conn.ReadJSON(&q); err != nil {
			return
		}

		h.mu.Lock()
		h.ids = append(h.ids, q.ID)
		h.mu.Unlock()

		if h.noise {
			conn.WriteJSON(map[string]any{"id": q.ID + 100, "type": "event", "event": map[string]any{}})
			conn.WriteJSON(map[string]any{"id": q.ID - 1, "type": "result", "success": true, "result": nil})
		}

		reply := map[string]any{"id": q.ID, "type": "result", "success": !h.fail}
		if h.fail {
			reply["error"] = map[string]string{"code": "unknown_error", "message": "boom"}
		} else {
			reply["result"] = json.RawMessage(devicesResult)
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}

		replies++
		if h.dropAfter > 0 && replies >= h.dropAfter {
			return
		}
	}
}
