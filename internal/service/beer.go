package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tapcellar/beer-catalog/internal/apperr"
	"github.com/tapcellar/beer-catalog/internal/event"
	"github.com/tapcellar/beer-catalog/internal/model"
	"github.com/tapcellar/beer-catalog/internal/repository"
	"github.com/tapcellar/beer-catalog/internal/storage/db"
	"github.com/tapcellar/beer-catalog/pkg/outbox"
	"github.com/tapcellar/beer-catalog/pkg/principal"
	"github.com/tapcellar/beer-catalog/pkg/ptr"
	"github.com/tapcellar/beer-catalog/pkg/validator"
)

const (
	defaultPageNumber = 0
	defaultPageSize   = 25

	// maxPageSize caps what a single request can pull. Requests above it are
	// clamped, not rejected.
	maxPageSize = 1000
)

// ListBeersParams carries the optional search filters and pagination inputs.
// PageNumber is 1-based on the wire; nil or non-positive values select the
// first page.
type ListBeersParams struct {
	BeerName   *string
	BeerStyle  *model.BeerStyle
	PageNumber *int
	PageSize   *int
}

type CreateBeerParams struct {
	BeerName       string          `validate:"required,max=50"`
	BeerStyle      model.BeerStyle `validate:"required,enum"`
	UPC            string          `validate:"required,max=255"`
	QuantityOnHand int             `validate:"gte=0"`
	Price          decimal.Decimal `validate:"-"`
}

type UpdateBeerParams struct {
	// Version, when set, is the version the caller last read; the write fails
	// with a conflict if the stored row has moved past it. When unset the
	// version read inside the update transaction is used.
	Version        *int32
	BeerName       string          `validate:"required,max=50"`
	BeerStyle      model.BeerStyle `validate:"required,enum"`
	UPC            string          `validate:"required,max=255"`
	QuantityOnHand int             `validate:"gte=0"`
	Price          decimal.Decimal `validate:"-"`
}

// PatchBeerParams carries each mutable field as present (non-nil) or absent.
// A present string that is blank after trimming counts as absent.
type PatchBeerParams struct {
	Version        *int32
	BeerName       *string          `validate:"omitempty,max=50"`
	BeerStyle      *model.BeerStyle `validate:"omitempty,enum"`
	UPC            *string          `validate:"omitempty,max=255"`
	QuantityOnHand *int             `validate:"omitempty,gte=0"`
	Price          *decimal.Decimal `validate:"-"`
}

type BeerService interface {
	ListBeers(ctx context.Context, params ListBeersParams) (model.Page[model.Beer], error)
	GetBeerByID(ctx context.Context, id uuid.UUID) (model.Beer, error)
	CreateBeer(ctx context.Context, params CreateBeerParams) (model.Beer, error)
	UpdateBeerByID(ctx context.Context, id uuid.UUID, params UpdateBeerParams) (model.Beer, error)
	DeleteBeerByID(ctx context.Context, id uuid.UUID) (model.Beer, error)
	PatchBeerByID(ctx context.Context, id uuid.UUID, params PatchBeerParams) (model.Beer, error)
}

type beerService struct {
	db            db.DB
	beerRepo      repository.BeerRepository
	outboxMsgRepo repository.OutboxMsgRepository
	validator     validator.Validator
}

func NewBeerService(
	db db.DB,
	beerRepo repository.BeerRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	validator validator.Validator,
) BeerService {
	return &beerService{
		db:            db,
		beerRepo:      beerRepo,
		outboxMsgRepo: outboxMsgRepo,
		validator:     validator,
	}
}

// ListBeers picks the query variant matching which filters are present:
// name and style, name only, style only, or none. Absent filters are no
// constraint, never an error.
func (s *beerService) ListBeers(ctx context.Context, params ListBeersParams) (model.Page[model.Beer], error) {
	page := buildPageRequest(params.PageNumber, params.PageSize)

	var name string
	if params.BeerName != nil {
		name = strings.TrimSpace(*params.BeerName)
	}
	hasName := name != ""
	hasStyle := params.BeerStyle != nil

	var (
		beers model.Page[model.Beer]
		err   error
	)
	switch {
	case hasName && hasStyle:
		beers, err = s.beerRepo.FindAllByNameContainingAndStyle(ctx, name, *params.BeerStyle, page)
	case hasName:
		beers, err = s.beerRepo.FindAllByNameContaining(ctx, name, page)
	case hasStyle:
		beers, err = s.beerRepo.FindAllByStyle(ctx, *params.BeerStyle, page)
	default:
		beers, err = s.beerRepo.FindAll(ctx, page)
	}
	if err != nil {
		return model.Page[model.Beer]{}, fmt.Errorf("beer repository list beers: %w", err)
	}

	return beers, nil
}

// buildPageRequest converts the caller's 1-based, optional pagination inputs
// into a normalized 0-based page request.
func buildPageRequest(pageNumber, pageSize *int) repository.PageRequest {
	number := defaultPageNumber
	size := defaultPageSize

	if pageNumber != nil && *pageNumber > 0 {
		number = *pageNumber - 1
	}
	if pageSize != nil && *pageSize > 0 {
		size = *pageSize
		if size > maxPageSize {
			size = maxPageSize
		}
	}

	return repository.PageRequest{Page: number, Size: size}
}

func (s *beerService) GetBeerByID(ctx context.Context, id uuid.UUID) (model.Beer, error) {
	beer, err := s.beerRepo.FindByID(ctx, id)
	if err != nil {
		return model.Beer{}, mapBeerRepoErr(err)
	}

	return beer, nil
}

func (s *beerService) CreateBeer(ctx context.Context, params CreateBeerParams) (model.Beer, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Beer{}, fmt.Errorf("validate create beer params: %w", err)
	}
	if params.Price.IsNegative() {
		return model.Beer{}, apperr.ValidationErr.WrapParent(errors.New("price must not be negative"))
	}

	var created model.Beer
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		created, err = s.beerRepo.WithDB(db).Save(ctx, model.Beer{
			BeerName:       params.BeerName,
			BeerStyle:      params.BeerStyle,
			UPC:            params.UPC,
			QuantityOnHand: params.QuantityOnHand,
			Price:          params.Price,
		})
		if err != nil {
			return fmt.Errorf("beer repository save: %w", err)
		}

		// The creation notification rides the same transaction; the relay
		// publishes it only after this commit succeeds.
		ev := event.BeerCreatedEvent{
			BeerID:    created.ID.String(),
			BeerName:  created.BeerName,
			CreatedBy: principal.FromContext(ctx),
		}
		evBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal beer created event: %w", err)
		}

		if err := s.outboxMsgRepo.WithDB(db).CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        event.TopicBeerCreated,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(created.ID.String()),
		}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Beer{}, fmt.Errorf("db with tx: %w", err)
	}

	return created, nil
}

// UpdateBeerByID replaces every mutable field from the payload. Compare
// PatchBeerByID, which applies only the fields the caller supplied.
func (s *beerService) UpdateBeerByID(ctx context.Context, id uuid.UUID, params UpdateBeerParams) (model.Beer, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Beer{}, fmt.Errorf("validate update beer params: %w", err)
	}
	if params.Price.IsNegative() {
		return model.Beer{}, apperr.ValidationErr.WrapParent(errors.New("price must not be negative"))
	}

	var updated model.Beer
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.beerRepo.WithDB(db)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapBeerRepoErr(err)
		}

		existing.BeerName = params.BeerName
		existing.BeerStyle = params.BeerStyle
		existing.UPC = params.UPC
		existing.QuantityOnHand = params.QuantityOnHand
		existing.Price = params.Price
		if params.Version != nil {
			existing.Version = *params.Version
		}

		updated, err = repo.Save(ctx, existing)
		if err != nil {
			return mapBeerRepoErr(err)
		}

		return nil
	}); err != nil {
		return model.Beer{}, err
	}

	return updated, nil
}

func (s *beerService) DeleteBeerByID(ctx context.Context, id uuid.UUID) (model.Beer, error) {
	var deleted model.Beer
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.beerRepo.WithDB(db)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapBeerRepoErr(err)
		}

		if err := repo.DeleteByID(ctx, id); err != nil {
			return mapBeerRepoErr(err)
		}

		deleted = existing
		return nil
	}); err != nil {
		return model.Beer{}, err
	}

	return deleted, nil
}

func (s *beerService) PatchBeerByID(ctx context.Context, id uuid.UUID, params PatchBeerParams) (model.Beer, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Beer{}, fmt.Errorf("validate patch beer params: %w", err)
	}
	if params.Price != nil && params.Price.IsNegative() {
		return model.Beer{}, apperr.ValidationErr.WrapParent(errors.New("price must not be negative"))
	}

	var patched model.Beer
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.beerRepo.WithDB(db)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapBeerRepoErr(err)
		}

		merged := mergeBeer(existing, params)
		if params.Version != nil {
			merged.Version = *params.Version
		}

		patched, err = repo.Save(ctx, merged)
		if err != nil {
			return mapBeerRepoErr(err)
		}

		return nil
	}); err != nil {
		return model.Beer{}, err
	}

	return patched, nil
}

// mergeBeer overlays the present patch fields onto the existing record.
// String fields that are blank after trimming count as absent. Identifier,
// version and created_date are never touched here; the version bump happens
// at the persistence step.
func mergeBeer(existing model.Beer, patch PatchBeerParams) model.Beer {
	merged := existing

	if patch.BeerName != nil && strings.TrimSpace(*patch.BeerName) != "" {
		merged.BeerName = *patch.BeerName
	}
	if patch.BeerStyle != nil {
		merged.BeerStyle = *patch.BeerStyle
	}
	if patch.UPC != nil && strings.TrimSpace(*patch.UPC) != "" {
		merged.UPC = *patch.UPC
	}
	if patch.QuantityOnHand != nil {
		merged.QuantityOnHand = *patch.QuantityOnHand
	}
	if patch.Price != nil {
		merged.Price = *patch.Price
	}

	return merged
}

func mapBeerRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.BeerNotFoundErr
	case errors.Is(err, repository.ErrStaleVersion):
		return apperr.StaleVersionErr
	default:
		return err
	}
}
