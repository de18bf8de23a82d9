package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for message")
	}
	return Message{}
}

func expectNone(t *testing.T, ch <-chan Message) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(logger.Nop(), nil)
	channel := UnitChannel(uuid.New())

	clientA := hub.NewClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventDatasetFileIngested, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Channel: channel, Event: EventDatasetStatusChanged, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != EventDatasetFileIngested {
		t.Fatalf("first event: want=%s got=%s", EventDatasetFileIngested, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != EventDatasetStatusChanged {
		t.Fatalf("second event: want=%s got=%s", EventDatasetStatusChanged, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventDatasetStatusChanged})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != EventDatasetStatusChanged {
		t.Fatalf("reconnect event: want=%s got=%s", EventDatasetStatusChanged, got.Event)
	}
}

func TestHubUnitScoping(t *testing.T) {
	hub := NewHub(logger.Nop(), nil)
	unitA, unitB := uuid.New(), uuid.New()

	operator := hub.NewClient(uuid.New())
	for _, ch := range ChannelsFor(auth.Actor{ID: operator.ActorID, Role: auth.RoleBidang, BidangID: unitA}) {
		hub.AddChannel(operator, ch)
	}
	reviewer := hub.NewClient(uuid.New())
	for _, ch := range ChannelsFor(auth.Actor{ID: reviewer.ActorID, Role: auth.RolePusdatin}) {
		hub.AddChannel(reviewer, ch)
	}
	// a client on both channels still gets one copy
	both := hub.NewClient(uuid.New())
	hub.AddChannel(both, UnitChannel(unitB))
	hub.AddChannel(both, AllUnitsChannel)

	hub.Broadcast(Message{Channel: UnitChannel(unitB), Event: EventDatasetStatusChanged})

	expectNone(t, operator.Outbound)
	if got := recvMessage(t, reviewer.Outbound, time.Second); got.Channel != UnitChannel(unitB) {
		t.Fatalf("reviewer channel: want=%s got=%s", UnitChannel(unitB), got.Channel)
	}
	recvMessage(t, both.Outbound, time.Second)
	expectNone(t, both.Outbound)
}

func TestChannelsFor(t *testing.T) {
	unit := uuid.New()
	if got := ChannelsFor(auth.Actor{Role: auth.RoleKabid, BidangID: unit}); len(got) != 1 || got[0] != UnitChannel(unit) {
		t.Fatalf("kabid: want=[%s] got=%v", UnitChannel(unit), got)
	}
	if got := ChannelsFor(auth.Actor{Role: auth.RolePusdatin, BidangID: unit}); len(got) != 1 || got[0] != AllUnitsChannel {
		t.Fatalf("pusdatin: want=[%s] got=%v", AllUnitsChannel, got)
	}
	if got := ChannelsFor(auth.Actor{Role: auth.RoleBidang}); len(got) != 0 {
		t.Fatalf("no unit: want none got=%v", got)
	}
}

func TestHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewHub(logger.Nop(), nil)
	channel := UnitChannel(uuid.New())
	client := hub.NewClient(uuid.New())
	hub.AddChannel(client, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventDatasetStatusChanged, Data: map[string]any{"status": "SUBMITTED"}})

	ctx, cancel := context.WithCancel(t.Context())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for len(client.Outbound) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: want=text/event-stream got=%s", ct)
	}
	if !strings.Contains(body, "event: DatasetStatusChanged\n") || !strings.Contains(body, `"status":"SUBMITTED"`) {
		t.Fatalf("body missing event: %q", body)
	}
}
