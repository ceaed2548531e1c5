package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubOrderingAndReconnect(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userID := uuid.New()
	channel := UserChannel(userID)

	clientA := hub.NewSSEClient(userID)
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventTaskToggled, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventMilestoneCompleted, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventTaskToggled {
		t.Fatalf("first event: got=%s", got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventMilestoneCompleted {
		t.Fatalf("second event: got=%s", got.Event)
	}

	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("clientA outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close = %d", n)
	}
	hub.CloseClient(clientA)

	clientB := hub.NewSSEClient(userID)
	hub.AddChannel(clientB, channel)
	if err := hub.Publish(context.Background(), SSEMessage{Channel: channel, Event: SSEEventPhaseCompleted}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventPhaseCompleted {
		t.Fatalf("reconnect event: got=%s", got.Event)
	}
}

func TestSSEHubIsolatesUsers(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	a, b := uuid.New(), uuid.New()
	clientA := hub.NewSSEClient(a)
	clientB := hub.NewSSEClient(b)
	hub.AddChannel(clientA, UserChannel(a))
	hub.AddChannel(clientB, UserChannel(b))

	hub.Broadcast(SSEMessage{Channel: UserChannel(a), Event: SSEEventReminder})

	recvMessage(t, clientA.Outbound, time.Second)
	select {
	case msg := <-clientB.Outbound:
		t.Fatalf("user B received %s", msg.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, UserChannel(userID))

	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(SSEMessage{Channel: UserChannel(userID), Event: SSEEventTaskToggled})
	}
	if got := len(client.Outbound); got != outboundBuffer {
		t.Fatalf("buffered = %d, want %d", got, outboundBuffer)
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, UserChannel(userID))
	hub.Broadcast(SSEMessage{Channel: UserChannel(userID), Event: SSEEventPlanGenerated, Data: map[string]any{"plan_id": "p1"}})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: PlanGenerated\n") || !strings.Contains(body, `"plan_id":"p1"`) {
		t.Fatalf("unexpected body: %q", body)
	}
}
