package server

import (
	"net/http"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// run is the main Hub loop. It is the sole owner of the client set, so
// every broadcast iterates a stable snapshot of the connections
// registered at that instant.
func (s *FeedServer) run() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connCount.Add(1)
			// Greet the new subscriber immediately
			client.trySend(models.StatusMessage("Connected to WebSocket Server"))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.connCount.Add(-1)
			}

		case message, ok := <-s.broadcast:
			if !ok {
				return
			}

			if message.Price != nil {
				s.stateMutex.Lock()
				s.lastPrice = message.Price
				s.stateMutex.Unlock()
			}

			for client := range s.clients {
				// A subscriber that is not writable right now is
				// skipped for this message, not evicted. Removal only
				// happens through its own close/error path.
				client.trySend(message)
			}
		}
	}
}

// -----------------------------------------------------------------------------

// Broadcast queues a message for delivery to every connected
// subscriber. Safe to call with zero subscribers.
func (s *FeedServer) Broadcast(msg *models.MFeedMessage) {
	s.broadcast <- msg
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FeedServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MFeedMessage, 64),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}
