package event

import (
	"context"
	"log/slog"
)

const TopicBeerCreated = "beer.created"

// BeerCreatedEvent is published after a beer is committed to the catalog.
// CreatedBy is the acting principal of the request that created it.
type BeerCreatedEvent struct {
	BeerID    string `json:"beer_id"`
	BeerName  string `json:"beer_name"`
	CreatedBy string `json:"created_by"`
}

func (s *Service) handleBeerCreatedEvent(ctx context.Context, ev BeerCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling beer created event", slog.Any("event", ev))
	return nil
}
