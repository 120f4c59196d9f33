package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-trading-bot/internal/api"
	"ai-trading-bot/internal/balance"
	"ai-trading-bot/internal/events"
	"ai-trading-bot/internal/market"
	"ai-trading-bot/internal/oracle"
	"ai-trading-bot/internal/scheduler"
	"ai-trading-bot/pkg/config"
	"ai-trading-bot/pkg/db"
	"ai-trading-bot/pkg/exchanges/bybit"
	marketbybit "ai-trading-bot/pkg/market/bybit"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config load failed: %v", err)
	}

	buildVersion := os.Getenv("APP_VERSION")
	if buildVersion == "" {
		buildVersion = "v1.0-dev"
	}
	log.Printf("🚀 Starting ai-trading-bot %s on port %s", buildVersion, cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	bus := events.NewBus()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("❌ DB init failed: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("❌ DB migrations failed: %v", err)
	}
	log.Printf("Using database at %s", cfg.DBPath)

	// Exchange gateway
	gateway := bybit.NewClient(bybit.Config{
		APIKey:    cfg.BybitAPIKey,
		APISecret: cfg.BybitAPISecret,
		Testnet:   cfg.BybitTestnet,
	})
	if cfg.BybitTestnet {
		log.Println("Bybit gateway in testnet mode")
	}

	// Decision oracle
	var decisionOracle scheduler.Oracle = oracle.Disabled{}
	if cfg.OpenAIAPIKey != "" {
		client, err := oracle.NewClient(ctx, oracle.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			log.Printf("⚠️ Oracle init failed, AI confirmation disabled: %v", err)
		} else {
			decisionOracle = client
			log.Printf("🤖 Oracle ready: model=%s", cfg.OpenAIModel)
		}
	} else {
		log.Println("No OpenAI key configured, AI confirmation disabled")
	}

	// Scheduler
	sched := scheduler.New(scheduler.Config{
		DB:           database,
		Gateway:      gateway,
		Oracle:       decisionOracle,
		Bus:          bus,
		Interval:     cfg.TickInterval,
		CandleLimit:  cfg.CandleLimit,
		QtyPrecision: cfg.QtyPrecision,
		Execution:    cfg.ExecutionEnabled,
	})
	sched.Start(ctx)

	// Balance watcher
	watcher := balance.NewWatcher(gateway, bus, cfg.BalanceSyncInterval)
	watcher.Start(ctx)

	// Market feed (live or mock)
	if cfg.UseMockFeed {
		mock := &market.MockFeed{Bus: bus, Symbols: cfg.FeedSymbols}
		mock.Start(ctx)
	} else if len(cfg.FeedSymbols) > 0 {
		feed := &market.Feed{
			Stream:  marketbybit.NewStreamClient(cfg.BybitTestnet),
			Bus:     bus,
			Symbols: cfg.FeedSymbols,
		}
		feed.Start(ctx)
	}

	// API
	server := api.NewServer(
		bus,
		database,
		sched,
		watcher,
		cfg.JWTSecret,
		cfg.AdminPasswordHash,
		api.SystemMeta{
			Testnet:     cfg.BybitTestnet,
			Execution:   cfg.ExecutionEnabled,
			UseMockFeed: cfg.UseMockFeed,
			Symbols:     cfg.FeedSymbols,
			Version:     buildVersion,
		},
	)
	go func() {
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf("❌ API server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down")
}
