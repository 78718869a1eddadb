package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tapcellar/beer-catalog/internal/bootstrap"
	"github.com/tapcellar/beer-catalog/internal/config"
	"github.com/tapcellar/beer-catalog/internal/log"
	"github.com/tapcellar/beer-catalog/internal/repository"
	"github.com/tapcellar/beer-catalog/internal/storage/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running seed application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Seed     config.Seed
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)
	beerRepository := repository.NewBeerRepository(dbClient)

	svc := bootstrap.NewService(cfg.Seed, logger, dbClient, beerRepository)
	if err := svc.Run(ctx); err != nil {
		return fmt.Errorf("error seeding beer catalog: %w", err)
	}

	return nil
}
