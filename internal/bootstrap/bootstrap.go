package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/tapcellar/beer-catalog/internal/config"
	"github.com/tapcellar/beer-catalog/internal/model"
	"github.com/tapcellar/beer-catalog/internal/repository"
	"github.com/tapcellar/beer-catalog/internal/storage/db"
)

const maxNameLength = 50

// Service loads the initial beer catalog from a CSV export. The load is
// skipped entirely when the table already has rows, so reruns are harmless.
type Service struct {
	cfg      config.Seed
	logger   *slog.Logger
	db       db.DB
	beerRepo repository.BeerRepository
}

func NewService(
	cfg config.Seed,
	logger *slog.Logger,
	db db.DB,
	beerRepo repository.BeerRepository,
) *Service {
	return &Service{
		cfg:      cfg,
		logger:   logger.With(slog.String("service", "bootstrap")),
		db:       db,
		beerRepo: beerRepo,
	}
}

func (s *Service) Run(ctx context.Context) error {
	count, err := s.beerRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count beers: %w", err)
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "beer catalog already seeded, skipping",
			slog.Int64("count", count))
		return nil
	}

	f, err := os.Open(s.cfg.CSVPath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := ConvertCSV(f)
	if err != nil {
		return fmt.Errorf("convert csv: %w", err)
	}

	s.logger.InfoContext(ctx, "seeding beer catalog",
		slog.String("path", s.cfg.CSVPath),
		slog.Int("records", len(records)))

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.beerRepo.WithDB(db)

		for _, record := range records {
			if _, err := repo.Save(ctx, beerFromCSV(record)); err != nil {
				return fmt.Errorf("save beer %q: %w", record.Beer, err)
			}
		}

		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	s.logger.InfoContext(ctx, "beer catalog seeded", slog.Int("records", len(records)))

	return nil
}

func beerFromCSV(record BeerCSVRecord) model.Beer {
	name := record.Beer
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}

	return model.Beer{
		BeerName:       name,
		BeerStyle:      styleFromCSV(record.Style),
		UPC:            strconv.Itoa(record.Row),
		QuantityOnHand: record.Count,
		Price:          decimal.NewFromInt(10),
	}
}
