package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tapcellar/beer-catalog/internal/model"
)

type BeerResponse struct {
	ID             uuid.UUID       `json:"id"`
	Version        int32           `json:"version"`
	BeerName       string          `json:"beer_name"`
	BeerStyle      model.BeerStyle `json:"beer_style"`
	UPC            string          `json:"upc"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	Price          decimal.Decimal `json:"price"`
	CreatedDate    time.Time       `json:"created_date"`
	UpdateDate     time.Time       `json:"update_date"`
}

func newBeerResponse(beer model.Beer) BeerResponse {
	return BeerResponse{
		ID:             beer.ID,
		Version:        beer.Version,
		BeerName:       beer.BeerName,
		BeerStyle:      beer.BeerStyle,
		UPC:            beer.UPC,
		QuantityOnHand: beer.QuantityOnHand,
		Price:          beer.Price,
		CreatedDate:    beer.CreatedDate,
		UpdateDate:     beer.UpdateDate,
	}
}

type BeerPageResponse struct {
	Content       []BeerResponse `json:"content"`
	PageNumber    int            `json:"page_number"`
	PageSize      int            `json:"page_size"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int            `json:"total_pages"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
}

func newBeerPageResponse(page model.Page[model.Beer]) BeerPageResponse {
	content := make([]BeerResponse, 0, len(page.Content))
	for _, beer := range page.Content {
		content = append(content, newBeerResponse(beer))
	}

	return BeerPageResponse{
		Content:       content,
		PageNumber:    page.Number,
		PageSize:      page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		First:         page.First(),
		Last:          page.Last(),
	}
}

type CreateBeerRequest struct {
	BeerName       string          `json:"beer_name"`
	BeerStyle      model.BeerStyle `json:"beer_style"`
	UPC            string          `json:"upc"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	Price          decimal.Decimal `json:"price"`
}

type UpdateBeerRequest struct {
	Version        *int32          `json:"version,omitempty"`
	BeerName       string          `json:"beer_name"`
	BeerStyle      model.BeerStyle `json:"beer_style"`
	UPC            string          `json:"upc"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	Price          decimal.Decimal `json:"price"`
}

// PatchBeerRequest distinguishes absent fields (nil) from supplied ones.
type PatchBeerRequest struct {
	Version        *int32           `json:"version,omitempty"`
	BeerName       *string          `json:"beer_name,omitempty"`
	BeerStyle      *model.BeerStyle `json:"beer_style,omitempty"`
	UPC            *string          `json:"upc,omitempty"`
	QuantityOnHand *int             `json:"quantity_on_hand,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
}

type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	Version     int32     `json:"version"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CreatedDate time.Time `json:"created_date"`
	UpdateDate  time.Time `json:"update_date"`
}

func newCustomerResponse(customer model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          customer.ID,
		Version:     customer.Version,
		Name:        customer.Name,
		Email:       customer.Email,
		CreatedDate: customer.CreatedDate,
		UpdateDate:  customer.UpdateDate,
	}
}

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UpdateCustomerRequest struct {
	Version *int32 `json:"version,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type PatchCustomerRequest struct {
	Version *int32  `json:"version,omitempty"`
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
}

type CreateBeerOrderLineRequest struct {
	BeerID        uuid.UUID `json:"beer_id"`
	OrderQuantity int       `json:"order_quantity"`
}

type CreateBeerOrderRequest struct {
	CustomerRef string                       `json:"customer_ref"`
	Lines       []CreateBeerOrderLineRequest `json:"lines"`
}

type BeerOrderLineResponse struct {
	ID            uuid.UUID `json:"id"`
	BeerID        uuid.UUID `json:"beer_id"`
	OrderQuantity int       `json:"order_quantity"`
}

type BeerOrderResponse struct {
	ID          uuid.UUID               `json:"id"`
	Version     int32                   `json:"version"`
	CustomerID  uuid.UUID               `json:"customer_id"`
	CustomerRef string                  `json:"customer_ref"`
	CreatedDate time.Time               `json:"created_date"`
	UpdateDate  time.Time               `json:"update_date"`
	Lines       []BeerOrderLineResponse `json:"lines"`
}

func newBeerOrderResponse(order model.BeerOrder) BeerOrderResponse {
	lines := make([]BeerOrderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, BeerOrderLineResponse{
			ID:            line.ID,
			BeerID:        line.BeerID,
			OrderQuantity: line.OrderQuantity,
		})
	}

	return BeerOrderResponse{
		ID:          order.ID,
		Version:     order.Version,
		CustomerID:  order.CustomerID,
		CustomerRef: order.CustomerRef,
		CreatedDate: order.CreatedDate,
		UpdateDate:  order.UpdateDate,
		Lines:       lines,
	}
}
