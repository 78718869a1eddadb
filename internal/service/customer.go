package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tapcellar/beer-catalog/internal/apperr"
	"github.com/tapcellar/beer-catalog/internal/model"
	"github.com/tapcellar/beer-catalog/internal/repository"
	"github.com/tapcellar/beer-catalog/internal/storage/db"
	"github.com/tapcellar/beer-catalog/pkg/validator"
)

type CreateCustomerParams struct {
	Name  string `validate:"required,max=255"`
	Email string `validate:"required,email"`
}

type UpdateCustomerParams struct {
	Version *int32
	Name    string `validate:"required,max=255"`
	Email   string `validate:"required,email"`
}

type PatchCustomerParams struct {
	Version *int32
	Name    *string `validate:"omitempty,max=255"`
	Email   *string `validate:"omitempty,email"`
}

type CreateBeerOrderLineParams struct {
	BeerID        uuid.UUID `validate:"required"`
	OrderQuantity int       `validate:"required,gte=1"`
}

type CreateBeerOrderParams struct {
	CustomerRef string                      `validate:"max=255"`
	Lines       []CreateBeerOrderLineParams `validate:"required,min=1,dive"`
}

type CustomerService interface {
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (model.Customer, error)
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (model.Customer, error)
	UpdateCustomerByID(ctx context.Context, id uuid.UUID, params UpdateCustomerParams) (model.Customer, error)
	DeleteCustomerByID(ctx context.Context, id uuid.UUID) (model.Customer, error)
	PatchCustomerByID(ctx context.Context, id uuid.UUID, params PatchCustomerParams) (model.Customer, error)

	// ListOrdersByCustomerID resolves the customer side of the order
	// relationship with an explicit foreign-key query.
	ListOrdersByCustomerID(ctx context.Context, customerID uuid.UUID) ([]model.BeerOrder, error)
	GetOrderForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (model.BeerOrder, error)
	CreateOrderForCustomer(ctx context.Context, customerID uuid.UUID, params CreateBeerOrderParams) (model.BeerOrder, error)
}

type customerService struct {
	db            db.DB
	customerRepo  repository.CustomerRepository
	beerOrderRepo repository.BeerOrderRepository
	validator     validator.Validator
}

func NewCustomerService(
	db db.DB,
	customerRepo repository.CustomerRepository,
	beerOrderRepo repository.BeerOrderRepository,
	validator validator.Validator,
) CustomerService {
	return &customerService{
		db:            db,
		customerRepo:  customerRepo,
		beerOrderRepo: beerOrderRepo,
		validator:     validator,
	}
}

func (s *customerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("customer repository find all: %w", err)
	}

	return customers, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return model.Customer{}, mapCustomerRepoErr(err)
	}

	return customer, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, params CreateCustomerParams) (model.Customer, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Customer{}, fmt.Errorf("validate create customer params: %w", err)
	}

	customer, err := s.customerRepo.Save(ctx, model.Customer{
		Name:  params.Name,
		Email: params.Email,
	})
	if err != nil {
		return model.Customer{}, fmt.Errorf("customer repository save: %w", err)
	}

	return customer, nil
}

func (s *customerService) UpdateCustomerByID(ctx context.Context, id uuid.UUID, params UpdateCustomerParams) (model.Customer, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Customer{}, fmt.Errorf("validate update customer params: %w", err)
	}

	var updated model.Customer
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.customerRepo.WithDB(db)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapCustomerRepoErr(err)
		}

		existing.Name = params.Name
		existing.Email = params.Email
		if params.Version != nil {
			existing.Version = *params.Version
		}

		updated, err = repo.Save(ctx, existing)
		if err != nil {
			return mapCustomerRepoErr(err)
		}

		return nil
	}); err != nil {
		return model.Customer{}, err
	}

	return updated, nil
}

func (s *customerService) DeleteCustomerByID(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	var deleted model.Customer
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.customerRepo.WithDB(db)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapCustomerRepoErr(err)
		}

		if err := repo.DeleteByID(ctx, id); err != nil {
			return mapCustomerRepoErr(err)
		}

		deleted = existing
		return nil
	}); err != nil {
		return model.Customer{}, err
	}

	return deleted, nil
}

func (s *customerService) PatchCustomerByID(ctx context.Context, id uuid.UUID, params PatchCustomerParams) (model.Customer, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Customer{}, fmt.Errorf("validate patch customer params: %w", err)
	}

	var patched model.Customer
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.customerRepo.WithDB(db)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapCustomerRepoErr(err)
		}

		merged := mergeCustomer(existing, params)
		if params.Version != nil {
			merged.Version = *params.Version
		}

		patched, err = repo.Save(ctx, merged)
		if err != nil {
			return mapCustomerRepoErr(err)
		}

		return nil
	}); err != nil {
		return model.Customer{}, err
	}

	return patched, nil
}

func (s *customerService) ListOrdersByCustomerID(ctx context.Context, customerID uuid.UUID) ([]model.BeerOrder, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, mapCustomerRepoErr(err)
	}

	orders, err := s.beerOrderRepo.FindAllByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("beer order repository find all by customer id: %w", err)
	}

	return orders, nil
}

func (s *customerService) GetOrderForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (model.BeerOrder, error) {
	order, err := s.beerOrderRepo.FindByID(ctx, orderID)
	if err != nil {
		return model.BeerOrder{}, mapBeerOrderRepoErr(err)
	}
	// An order id from another customer's scope is invisible, not forbidden.
	if order.CustomerID != customerID {
		return model.BeerOrder{}, apperr.OrderNotFoundErr
	}

	return order, nil
}

func (s *customerService) CreateOrderForCustomer(ctx context.Context, customerID uuid.UUID, params CreateBeerOrderParams) (model.BeerOrder, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.BeerOrder{}, fmt.Errorf("validate create beer order params: %w", err)
	}

	var created model.BeerOrder
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if _, err := s.customerRepo.WithDB(db).FindByID(ctx, customerID); err != nil {
			return mapCustomerRepoErr(err)
		}

		lines := make([]model.BeerOrderLine, 0, len(params.Lines))
		for _, line := range params.Lines {
			lines = append(lines, model.BeerOrderLine{
				BeerID:        line.BeerID,
				OrderQuantity: line.OrderQuantity,
			})
		}

		var err error
		created, err = s.beerOrderRepo.WithDB(db).Create(ctx, model.BeerOrder{
			CustomerID:  customerID,
			CustomerRef: params.CustomerRef,
			Lines:       lines,
		})
		if err != nil {
			return fmt.Errorf("beer order repository create: %w", err)
		}

		return nil
	}); err != nil {
		return model.BeerOrder{}, err
	}

	return created, nil
}

func mergeCustomer(existing model.Customer, patch PatchCustomerParams) model.Customer {
	merged := existing

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		merged.Name = *patch.Name
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
		merged.Email = *patch.Email
	}

	return merged
}

func mapBeerOrderRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.OrderNotFoundErr
	}
	return err
}

func mapCustomerRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.CustomerNotFoundErr
	case errors.Is(err, repository.ErrStaleVersion):
		return apperr.StaleVersionErr
	default:
		return err
	}
}
