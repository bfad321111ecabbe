package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dejobratic/snackbar/internal/pos/ports"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T, opts ...HubOption) (*Hub, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	server := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		<-stopped
		server.Close()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) ports.Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var event ports.Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("message is not an event: %v", err)
	}
	return event
}

func TestHubBroadcastsToEveryClient(t *testing.T) {
	hub, url := startHub(t)

	kitchen := dial(t, url)
	defer kitchen.Close()
	counter := dial(t, url)
	defer counter.Close()
	waitForClients(t, hub, 2)

	event := ports.Event{Type: ports.EventOrderStatusChanged, EntityID: "PED0001", OccurredAt: time.Now().UTC()}
	if err := hub.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	for name, conn := range map[string]*websocket.Conn{"kitchen": kitchen, "counter": counter} {
		got := readEvent(t, conn)
		if got.Type != ports.EventOrderStatusChanged || got.EntityID != "PED0001" {
			t.Errorf("%s: unexpected event %+v", name, got)
		}
	}
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, url := startHub(t)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	if err := conn.Close(); err != nil {
		t.Fatalf("failed to close connection: %v", err)
	}
	waitForClients(t, hub, 0)
}

func TestHubPublishAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	for i := 0; i < broadcastSize+10; i++ {
		if err := hub.Publish(context.Background(), ports.Event{Type: ports.EventStockChanged, EntityID: "P1"}); err != nil {
			t.Fatalf("Publish() failed: %v", err)
		}
	}
}

func TestHubRejectsUnknownOrigins(t *testing.T) {
	hub, url := startHub(t, WithAllowedOrigins("http://counter.local"))

	header := http.Header{}
	header.Set("Origin", "http://elsewhere.example")
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 response, got %v", resp)
	}

	header.Set("Origin", "http://counter.local")
	conn, _, err = websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("expected allowed origin to connect: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)
}
