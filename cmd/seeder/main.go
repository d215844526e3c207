package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/pokeapi"
	"github.com/whosthatpokemon/internal/pokedex"
	"github.com/whosthatpokemon/internal/postgres"
)

// Warms the catalog cache so random selection has a populated pool before
// the first players arrive.
func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	fromID := flag.Int("from", 1, "First catalog id to warm")
	toID := flag.Int("to", 151, "Last catalog id to warm")
	delay := flag.Duration("delay", 200*time.Millisecond, "Delay between upstream fetches")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	repo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	dex := pokedex.NewService(repo, pokeapi.NewClient(&cfg.PokeAPI), &cfg.Game, logger)

	logger.Info("warming pokemon cache", "from", *fromID, "to", *toID)
	start := time.Now()
	if err := dex.Warm(ctx, *fromID, *toID, *delay); err != nil {
		logger.Error("cache warm failed", "error", err)
		os.Exit(1)
	}
	logger.Info("cache warm complete", "duration", time.Since(start))
}
