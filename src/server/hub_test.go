package server

import (
	"testing"
	"time"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/logger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"
)

func newTestServer() *FeedServer {
	cfg := &models.MConfig{Name: "test", Host: "127.0.0.1", Port: 4033}
	s := NewFeedServer(cfg, logger.NewLogger("test"))
	go s.run()
	return s
}

// newTestClient builds a hub-only client; no websocket connection and
// no pumps, so the send channel can be inspected directly.
func newTestClient(s *FeedServer, buffer int) *Client {
	return &Client{hub: s, send: make(chan *models.MFeedMessage, buffer)}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached")
}

func receive(t *testing.T, c *Client) *models.MFeedMessage {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("no message received")
		return nil
	}
}

func TestBroadcast_NoSubscribers(t *testing.T) {
	s := newTestServer()

	// Must not block or panic with an empty client set.
	s.Broadcast(models.PriceMessage(3200.50))

	// A client registered afterwards sees the greeting, proving the
	// hub loop survived the empty broadcast.
	c := newTestClient(s, 4)
	s.register <- c

	msg := receive(t, c)
	if msg.Message != "Connected to WebSocket Server" {
		t.Errorf("greeting = %q", msg.Message)
	}
}

func TestBroadcast_DeliversToAllSubscribers(t *testing.T) {
	s := newTestServer()

	c1 := newTestClient(s, 4)
	c2 := newTestClient(s, 4)
	s.register <- c1
	s.register <- c2
	waitFor(t, func() bool { return s.connCount.Load() == 2 })

	// Drain greetings
	receive(t, c1)
	receive(t, c2)

	s.Broadcast(models.PriceMessage(3250.75))

	for _, c := range []*Client{c1, c2} {
		msg := receive(t, c)
		if msg.Price == nil || *msg.Price != 3250.75 {
			t.Errorf("price message = %+v", msg)
		}
	}
}

func TestBroadcast_SkipsUnwritableSubscriberWithoutEviction(t *testing.T) {
	s := newTestServer()

	// stuck cannot even take the greeting; its buffer stays full.
	stuck := newTestClient(s, 0)
	healthy := newTestClient(s, 4)
	s.register <- stuck
	s.register <- healthy
	waitFor(t, func() bool { return s.connCount.Load() == 2 })
	receive(t, healthy)

	s.Broadcast(models.PriceMessage(101.5))

	msg := receive(t, healthy)
	if msg.Price == nil || *msg.Price != 101.5 {
		t.Errorf("healthy subscriber message = %+v", msg)
	}

	// The unwritable subscriber was skipped, not removed.
	if s.connCount.Load() != 2 {
		t.Errorf("connection count = %d, want 2", s.connCount.Load())
	}
	select {
	case msg := <-stuck.send:
		t.Errorf("unwritable subscriber received %+v", msg)
	default:
	}
}

func TestUnregister_RemovesSubscriberAndClosesChannel(t *testing.T) {
	s := newTestServer()

	c := newTestClient(s, 4)
	s.register <- c
	waitFor(t, func() bool { return s.connCount.Load() == 1 })

	s.unregister <- c
	waitFor(t, func() bool { return s.connCount.Load() == 0 })

	// Greeting first, then the closed channel.
	receive(t, c)
	if _, open := <-c.send; open {
		t.Errorf("send channel still open after unregister")
	}
}

func TestBroadcast_TracksLastPriceForHealth(t *testing.T) {
	s := newTestServer()

	s.Broadcast(models.StatusMessage("Updating price..."))
	s.Broadcast(models.PriceMessage(42.5))

	waitFor(t, func() bool {
		s.stateMutex.RLock()
		defer s.stateMutex.RUnlock()
		return s.lastPrice != nil && *s.lastPrice == 42.5
	})
}
