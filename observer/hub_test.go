package observer

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testFrame struct {
	Tick   int64 `json:"tick"`
	Agents int   `json:"agents"`
}

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(h.Mux())
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", h.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f testFrame
	if err := json.Unmarshal(msg, &f); err != nil {
		t.Fatalf("decode %q: %v", msg, err)
	}
	return f
}

func TestHubBroadcast(t *testing.T) {
	h, srv := newTestHub(t)
	a := dial(t, srv)
	b := dial(t, srv)
	waitClients(t, h, 2)

	if err := h.Publish(testFrame{Tick: 3, Agents: 12}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*websocket.Conn{a, b} {
		if f := readFrame(t, c); f.Tick != 3 || f.Agents != 12 {
			t.Errorf("frame = %+v", f)
		}
	}
}

func TestHubSendsLatestOnJoin(t *testing.T) {
	h, srv := newTestHub(t)
	if err := h.Publish(testFrame{Tick: 41}); err != nil {
		t.Fatal(err)
	}
	conn := dial(t, srv)
	if f := readFrame(t, conn); f.Tick != 41 {
		t.Errorf("first frame tick = %d, want 41", f.Tick)
	}
}

func TestHubPublishDoesNotBlock(t *testing.T) {
	h, srv := newTestHub(t)
	dial(t, srv) // never reads
	waitClients(t, h, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			_ = h.Publish(testFrame{Tick: int64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked on a slow client")
	}
}

func TestHubClientLeaves(t *testing.T) {
	h, srv := newTestHub(t)
	conn := dial(t, srv)
	waitClients(t, h, 1)
	conn.Close()
	waitClients(t, h, 0)
}

// lockedBuffer collects log output from handler goroutines.
type lockedBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestHandlerReturnsWhenWriterStops(t *testing.T) {
	var logs lockedBuffer
	h := NewHub(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	srv := httptest.NewServer(h.Mux())
	defer srv.Close()

	// The client never reads, so it never answers the close frame.
	dial(t, srv)
	waitClients(t, h, 1)
	h.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(logs.String(), "observer disconnected") {
		if time.Now().After(deadline) {
			t.Fatal("handler still blocked in its read loop after the hub closed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFrameHandler(t *testing.T) {
	h, srv := newTestHub(t)

	resp, err := http.Get(srv.URL + "/frame")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status before publish = %d, want 204", resp.StatusCode)
	}

	if err := h.Publish(testFrame{Tick: 9, Agents: 2}); err != nil {
		t.Fatal(err)
	}
	resp, err = http.Get(srv.URL + "/frame")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var f testFrame
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.Tick != 9 || f.Agents != 2 {
		t.Errorf("frame = %+v", f)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestPublishRejectsUnencodable(t *testing.T) {
	h := NewHub(nil)
	if err := h.Publish(func() {}); err == nil {
		t.Error("expected an encoding error")
	}
}
