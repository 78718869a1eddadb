package apperr

import "github.com/tapcellar/beer-catalog/pkg/zerror"

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	BeerNotFoundCode      = "BEER_NOT_FOUND"
	CustomerNotFoundCode  = "CUSTOMER_NOT_FOUND"
	OrderNotFoundCode     = "ORDER_NOT_FOUND"
	StaleVersionErrorCode = "STALE_VERSION"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	BeerNotFoundErr     = zerror.NewNotFound(BeerNotFoundCode, "beer not found")
	CustomerNotFoundErr = zerror.NewNotFound(CustomerNotFoundCode, "customer not found")
	OrderNotFoundErr    = zerror.NewNotFound(OrderNotFoundCode, "beer order not found")

	// StaleVersionErr signals an optimistic-lock conflict: the row changed
	// between the caller's read and this write. Never retried here.
	StaleVersionErr = zerror.NewConflict(StaleVersionErrorCode, "record was modified concurrently")
)
