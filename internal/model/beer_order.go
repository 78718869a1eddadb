package model

import (
	"time"

	"github.com/google/uuid"
)

// BeerOrder references its customer by id only. The customer-side order list
// is answered by querying beer_orders on customer_id, not by a back-pointer
// collection kept in memory.
type BeerOrder struct {
	ID          uuid.UUID
	Version     int32
	CustomerID  uuid.UUID
	CustomerRef string
	CreatedDate time.Time
	UpdateDate  time.Time

	Lines []BeerOrderLine
}

// BeerOrderLine joins an order to a beer by foreign keys.
type BeerOrderLine struct {
	ID            uuid.UUID
	BeerOrderID   uuid.UUID
	BeerID        uuid.UUID
	OrderQuantity int
}
