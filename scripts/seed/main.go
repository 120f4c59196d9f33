package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"ai-trading-bot/pkg/config"
	"ai-trading-bot/pkg/db"
)

// seed loads sample strategies from a YAML file into the database. Existing
// strategies with the same id are updated, not duplicated.
//
// Usage:
//   go run ./scripts/seed -file scripts/seed/strategies.yaml

type strategyConfig struct {
	ID                   string              `yaml:"id"`
	Name                 string              `yaml:"name"`
	Archetype            string              `yaml:"archetype"`
	IsActive             bool                `yaml:"is_active"`
	Symbols              []string            `yaml:"symbols"`
	Timeframe            string              `yaml:"timeframe"`
	RiskPercentage       float64             `yaml:"risk_percentage"`
	MaxPositions         int                 `yaml:"max_positions"`
	StopLossPercentage   float64             `yaml:"stop_loss_percentage"`
	TakeProfitPercentage float64             `yaml:"take_profit_percentage"`
	Indicators           *db.IndicatorParams `yaml:"indicators"`
	UseAIConfirmation    bool                `yaml:"use_ai_confirmation"`
	MinAIConfidence      float64             `yaml:"min_ai_confidence"`
}

type seedFile struct {
	Strategies []strategyConfig `yaml:"strategies"`
}

func main() {
	file := flag.String("file", "scripts/seed/strategies.yaml", "path to the seed YAML")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read seed file: %v", err)
	}
	var seeds seedFile
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		log.Fatalf("parse seed file: %v", err)
	}
	if len(seeds.Strategies) == 0 {
		log.Fatal("seed file contains no strategies")
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	ctx := context.Background()
	for _, sc := range seeds.Strategies {
		if err := upsert(ctx, database, sc); err != nil {
			log.Fatalf("seed %q: %v", sc.Name, err)
		}
		log.Printf("seeded strategy %q (%s)", sc.Name, sc.Archetype)
	}
	log.Printf("done, %d strategies", len(seeds.Strategies))
}

func upsert(ctx context.Context, database *db.Database, sc strategyConfig) error {
	if sc.Name == "" || sc.Archetype == "" || len(sc.Symbols) == 0 || sc.Timeframe == "" {
		return fmt.Errorf("name, archetype, symbols and timeframe are required")
	}

	params := db.DefaultIndicatorParams()
	if sc.Indicators != nil {
		params = *sc.Indicators
	}

	now := time.Now().UTC()
	strat := db.Strategy{
		ID:                   sc.ID,
		Name:                 sc.Name,
		Archetype:            sc.Archetype,
		IsActive:             sc.IsActive,
		Symbols:              sc.Symbols,
		Timeframe:            sc.Timeframe,
		RiskPercentage:       sc.RiskPercentage,
		MaxPositions:         sc.MaxPositions,
		StopLossPercentage:   sc.StopLossPercentage,
		TakeProfitPercentage: sc.TakeProfitPercentage,
		Indicators:           params,
		UseAIConfirmation:    sc.UseAIConfirmation,
		MinAIConfidence:      sc.MinAIConfidence,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if strat.ID == "" {
		strat.ID = uuid.NewString()
		return database.CreateStrategy(ctx, strat)
	}

	if _, err := database.GetStrategy(ctx, strat.ID); err == nil {
		return database.UpdateStrategy(ctx, strat)
	}
	return database.CreateStrategy(ctx, strat)
}
