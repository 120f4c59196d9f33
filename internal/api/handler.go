package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ai-trading-bot/internal/balance"
	"ai-trading-bot/internal/events"
	"ai-trading-bot/pkg/db"
)

// Executor is the slice of the scheduler the API drives.
type Executor interface {
	ExecuteStrategy(ctx context.Context, id string) error
	CloseTrade(ctx context.Context, id string) (*db.Trade, error)
	CancelTrade(ctx context.Context, id string) (*db.Trade, error)
}

// Server wires HTTP endpoints around the scheduler and event bus.
type Server struct {
	Router    *gin.Engine
	Bus       *events.Bus
	DB        *db.Database
	Executor  Executor
	Balance   *balance.Watcher
	JWTSecret string
	// AdminHash is the bcrypt hash the single operator logs in with.
	AdminHash string
	Meta      SystemMeta
}

// SystemMeta describes runtime status exposed to the UI.
type SystemMeta struct {
	Testnet     bool
	Execution   bool
	UseMockFeed bool
	Symbols     []string
	Version     string
}

func NewServer(bus *events.Bus, database *db.Database, executor Executor, balanceWatcher *balance.Watcher, jwtSecret, adminHash string, meta SystemMeta) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger())
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(CORSMiddleware())

	s := &Server{
		Router:    r,
		Bus:       bus,
		DB:        database,
		Executor:  executor,
		Balance:   balanceWatcher,
		JWTSecret: jwtSecret,
		AdminHash: adminHash,
		Meta:      meta,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.GET("/system/status", s.getSystemStatus)
		api.POST("/auth/login", s.login)

		protected := api.Group("")
		protected.Use(AuthMiddleware(s.JWTSecret))
		{
			protected.GET("/strategies", s.listStrategies)
			protected.POST("/strategies", s.createStrategy)
			protected.GET("/strategies/:id", s.getStrategy)
			protected.PUT("/strategies/:id", s.updateStrategy)
			protected.DELETE("/strategies/:id", s.deleteStrategy)
			protected.POST("/strategies/:id/activate", s.activateStrategy)
			protected.POST("/strategies/:id/deactivate", s.deactivateStrategy)
			protected.POST("/strategies/:id/execute", s.executeStrategy)

			protected.GET("/trades", s.listTrades)
			protected.GET("/trades/stats", s.getTradeStats)
			protected.POST("/trades/:id/close", s.closeTrade)
			protected.POST("/trades/:id/cancel", s.cancelTrade)

			protected.GET("/balance", s.getBalance)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"testnet":     s.Meta.Testnet,
		"execution":   s.Meta.Execution,
		"useMockFeed": s.Meta.UseMockFeed,
		"symbols":     s.Meta.Symbols,
		"version":     s.Meta.Version,
	})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
