package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/logger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// FeedServer
// -----------------------------------------------------------------------------

type FeedServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	// WebSocket clients, owned by the hub goroutine
	clients    map[*Client]struct{}
	broadcast  chan *models.MFeedMessage
	register   chan *Client
	unregister chan *Client

	connCount atomic.Int64

	// Last broadcast price, for the health endpoint
	lastPrice  *float64
	stateMutex sync.RWMutex

	// Display countdown supplier, wired in by the pipeline
	countdownFn func() int64
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFeedServer(cfg *models.MConfig, log *logger.Logger) *FeedServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FeedServer{
		Config:     cfg,
		Logger:     log,
		engine:     gin.Default(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MFeedMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	// Permissive CORS for all routes
	s.engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FeedServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// SetCountdownFunc wires in the pipeline's display countdown so the
// health endpoint can report it.
func (s *FeedServer) SetCountdownFunc(fn func() int64) {
	s.countdownFn = fn
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FeedServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Server is running on port %d", s.Config.Port)

	go s.run()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *FeedServer) Stop() error {
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *FeedServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	lastPrice := s.lastPrice
	s.stateMutex.RUnlock()

	var countdown int64
	if s.countdownFn != nil {
		countdown = s.countdownFn()
	}

	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": s.connCount.Load(),
		"last_price":  lastPrice,
		"countdown":   countdown,
	})
}
