package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tapcellar/beer-catalog/internal/storage/mq"
)

// Service consumes catalog events from the message queue.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger,
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(
		TopicBeerCreated,
		func(ctx context.Context, topic string, payload []byte) error {
			var ev BeerCreatedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal beer created event: %w", err)
			}

			if err := s.handleBeerCreatedEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle beer created event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register beer created event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}
