package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer follows the same versioning rules as Beer.
type Customer struct {
	ID          uuid.UUID
	Version     int32
	Name        string
	Email       string
	CreatedDate time.Time
	UpdateDate  time.Time
}
