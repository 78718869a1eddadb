package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapcellar/beer-catalog/internal/apperr"
	"github.com/tapcellar/beer-catalog/internal/event"
	"github.com/tapcellar/beer-catalog/internal/model"
	"github.com/tapcellar/beer-catalog/internal/repository"
	"github.com/tapcellar/beer-catalog/internal/service"
	"github.com/tapcellar/beer-catalog/internal/storage/db"
	"github.com/tapcellar/beer-catalog/pkg/principal"
	"github.com/tapcellar/beer-catalog/pkg/ptr"
	"github.com/tapcellar/beer-catalog/pkg/validator"
	"github.com/tapcellar/beer-catalog/pkg/zerror"
)

// fakeDB satisfies db.DB for the transaction entry point only; the fakes
// below never touch the SQL surface.
type fakeDB struct {
	db.DB
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type fakeBeerRepo struct {
	beers map[uuid.UUID]model.Beer
	order []uuid.UUID

	lastFinder string
	lastName   string
	lastStyle  model.BeerStyle
	lastPage   repository.PageRequest
}

func newFakeBeerRepo() *fakeBeerRepo {
	return &fakeBeerRepo{beers: map[uuid.UUID]model.Beer{}}
}

func (r *fakeBeerRepo) WithDB(_ db.DB) repository.BeerRepository { return r }

func (r *fakeBeerRepo) FindAll(_ context.Context, page repository.PageRequest) (model.Page[model.Beer], error) {
	r.lastFinder = "FindAll"
	r.lastPage = page
	return r.page(r.all(), page), nil
}

func (r *fakeBeerRepo) FindAllByNameContaining(_ context.Context, name string, page repository.PageRequest) (model.Page[model.Beer], error) {
	r.lastFinder = "FindAllByNameContaining"
	r.lastName = name
	r.lastPage = page

	var matched []model.Beer
	for _, b := range r.all() {
		if strings.Contains(strings.ToLower(b.BeerName), strings.ToLower(name)) {
			matched = append(matched, b)
		}
	}
	return r.page(matched, page), nil
}

func (r *fakeBeerRepo) FindAllByStyle(_ context.Context, style model.BeerStyle, page repository.PageRequest) (model.Page[model.Beer], error) {
	r.lastFinder = "FindAllByStyle"
	r.lastStyle = style
	r.lastPage = page

	var matched []model.Beer
	for _, b := range r.all() {
		if b.BeerStyle == style {
			matched = append(matched, b)
		}
	}
	return r.page(matched, page), nil
}

func (r *fakeBeerRepo) FindAllByNameContainingAndStyle(_ context.Context, name string, style model.BeerStyle, page repository.PageRequest) (model.Page[model.Beer], error) {
	r.lastFinder = "FindAllByNameContainingAndStyle"
	r.lastName = name
	r.lastStyle = style
	r.lastPage = page

	var matched []model.Beer
	for _, b := range r.all() {
		if b.BeerStyle == style && strings.Contains(strings.ToLower(b.BeerName), strings.ToLower(name)) {
			matched = append(matched, b)
		}
	}
	return r.page(matched, page), nil
}

func (r *fakeBeerRepo) FindByID(_ context.Context, id uuid.UUID) (model.Beer, error) {
	beer, ok := r.beers[id]
	if !ok {
		return model.Beer{}, repository.ErrNotFound
	}
	return beer, nil
}

func (r *fakeBeerRepo) Save(_ context.Context, beer model.Beer) (model.Beer, error) {
	now := time.Now().UTC()

	if beer.ID == uuid.Nil {
		beer.ID = uuid.New()
		beer.Version = 0
		beer.CreatedDate = now
		beer.UpdateDate = now
		r.beers[beer.ID] = beer
		r.order = append(r.order, beer.ID)
		return beer, nil
	}

	existing, ok := r.beers[beer.ID]
	if !ok {
		return model.Beer{}, repository.ErrNotFound
	}
	if existing.Version != beer.Version {
		return model.Beer{}, repository.ErrStaleVersion
	}

	beer.Version++
	beer.UpdateDate = now
	r.beers[beer.ID] = beer
	return beer, nil
}

func (r *fakeBeerRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	if _, ok := r.beers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.beers, id)
	return nil
}

func (r *fakeBeerRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.beers)), nil
}

func (r *fakeBeerRepo) all() []model.Beer {
	beers := make([]model.Beer, 0, len(r.order))
	for _, id := range r.order {
		if b, ok := r.beers[id]; ok {
			beers = append(beers, b)
		}
	}
	return beers
}

func (r *fakeBeerRepo) page(beers []model.Beer, page repository.PageRequest) model.Page[model.Beer] {
	total := int64(len(beers))

	start := page.Offset()
	if start > len(beers) {
		start = len(beers)
	}
	end := start + page.Limit()
	if end > len(beers) {
		end = len(beers)
	}

	return model.NewPage(beers[start:end], page.Page, page.Size, total)
}

type fakeOutboxMsgRepo struct {
	created []repository.CreateOutboxMsgParams
}

func (r *fakeOutboxMsgRepo) WithDB(_ db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxMsgRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.created = append(r.created, params)
	return nil
}

func (r *fakeOutboxMsgRepo) ListUnprocessedOutboxMsgs(_ context.Context, _ repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r *fakeOutboxMsgRepo) BulkUpdateOutboxMsgs(_ context.Context, _ repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func newBeerService(t *testing.T) (service.BeerService, *fakeBeerRepo, *fakeOutboxMsgRepo) {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	beerRepo := newFakeBeerRepo()
	outboxRepo := &fakeOutboxMsgRepo{}
	svc := service.NewBeerService(&fakeDB{}, beerRepo, outboxRepo, v)

	return svc, beerRepo, outboxRepo
}

func seedBeer(t *testing.T, repo *fakeBeerRepo, name string, style model.BeerStyle) model.Beer {
	t.Helper()

	beer, err := repo.Save(context.Background(), model.Beer{
		BeerName:       name,
		BeerStyle:      style,
		UPC:            "0631234200036",
		QuantityOnHand: 100,
		Price:          decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	return beer
}

func TestListBeersFilterRouting(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		params     service.ListBeersParams
		wantFinder string
	}{
		{
			name:       "no filters selects unfiltered listing",
			params:     service.ListBeersParams{},
			wantFinder: "FindAll",
		},
		{
			name:       "name only",
			params:     service.ListBeersParams{BeerName: ptr.New("Galaxy")},
			wantFinder: "FindAllByNameContaining",
		},
		{
			name:       "style only",
			params:     service.ListBeersParams{BeerStyle: ptr.New(model.StyleIPA)},
			wantFinder: "FindAllByStyle",
		},
		{
			name: "name and style",
			params: service.ListBeersParams{
				BeerName:  ptr.New("Galaxy"),
				BeerStyle: ptr.New(model.StyleIPA),
			},
			wantFinder: "FindAllByNameContainingAndStyle",
		},
		{
			name:       "blank name counts as absent",
			params:     service.ListBeersParams{BeerName: ptr.New("   ")},
			wantFinder: "FindAll",
		},
		{
			name: "blank name with style selects style only",
			params: service.ListBeersParams{
				BeerName:  ptr.New("  "),
				BeerStyle: ptr.New(model.StyleStout),
			},
			wantFinder: "FindAllByStyle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newBeerService(t)

			_, err := svc.ListBeers(ctx, tt.params)

			require.NoError(t, err)
			assert.Equal(t, tt.wantFinder, repo.lastFinder)
		})
	}
}

func TestListBeersTrimsNameFilter(t *testing.T) {
	svc, repo, _ := newBeerService(t)

	_, err := svc.ListBeers(context.Background(), service.ListBeersParams{
		BeerName: ptr.New("  Galaxy Cat  "),
	})

	require.NoError(t, err)
	assert.Equal(t, "Galaxy Cat", repo.lastName)
}

func TestListBeersPageNormalization(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		params   service.ListBeersParams
		wantPage repository.PageRequest
	}{
		{
			name:     "defaults when nothing is supplied",
			params:   service.ListBeersParams{},
			wantPage: repository.PageRequest{Page: 0, Size: 25},
		},
		{
			name:     "page number is 1-based on the wire",
			params:   service.ListBeersParams{PageNumber: ptr.New(3)},
			wantPage: repository.PageRequest{Page: 2, Size: 25},
		},
		{
			name:     "zero page number falls back to the first page",
			params:   service.ListBeersParams{PageNumber: ptr.New(0)},
			wantPage: repository.PageRequest{Page: 0, Size: 25},
		},
		{
			name:     "negative page number falls back to the first page",
			params:   service.ListBeersParams{PageNumber: ptr.New(-4)},
			wantPage: repository.PageRequest{Page: 0, Size: 25},
		},
		{
			name:     "explicit page size is honored",
			params:   service.ListBeersParams{PageSize: ptr.New(50)},
			wantPage: repository.PageRequest{Page: 0, Size: 50},
		},
		{
			name:     "page size above the cap is clamped",
			params:   service.ListBeersParams{PageSize: ptr.New(5000)},
			wantPage: repository.PageRequest{Page: 0, Size: 1000},
		},
		{
			name:     "non-positive page size falls back to the default",
			params:   service.ListBeersParams{PageSize: ptr.New(0)},
			wantPage: repository.PageRequest{Page: 0, Size: 25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newBeerService(t)

			_, err := svc.ListBeers(ctx, tt.params)

			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, repo.lastPage)
		})
	}
}

func TestListBeersPageEnvelope(t *testing.T) {
	svc, repo, _ := newBeerService(t)
	for i := 0; i < 2410; i++ {
		seedBeer(t, repo, fmt.Sprintf("Beer %04d", i), model.StyleAle)
	}

	page, err := svc.ListBeers(context.Background(), service.ListBeersParams{})

	require.NoError(t, err)
	assert.Len(t, page.Content, 25)
	assert.Equal(t, int64(2410), page.TotalElements)
	assert.Equal(t, 97, page.TotalPages)
	assert.True(t, page.First())
	assert.False(t, page.Last())
}

func TestListBeersLastPage(t *testing.T) {
	svc, repo, _ := newBeerService(t)
	for i := 0; i < 30; i++ {
		seedBeer(t, repo, fmt.Sprintf("Beer %02d", i), model.StyleAle)
	}

	page, err := svc.ListBeers(context.Background(), service.ListBeersParams{
		PageNumber: ptr.New(2),
	})

	require.NoError(t, err)
	assert.Len(t, page.Content, 5)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.First())
	assert.True(t, page.Last())
}

func TestCreateBeer(t *testing.T) {
	ctx := context.Background()

	params := service.CreateBeerParams{
		BeerName:       "Galaxy Cat",
		BeerStyle:      model.StylePaleAle,
		UPC:            "0631234200036",
		QuantityOnHand: 122,
		Price:          decimal.RequireFromString("12.95"),
	}

	t.Run("assigns identity and stages the creation event", func(t *testing.T) {
		svc, repo, outbox := newBeerService(t)

		beer, err := svc.CreateBeer(ctx, params)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, beer.ID)
		assert.Equal(t, int32(0), beer.Version)
		assert.False(t, beer.CreatedDate.IsZero())
		assert.False(t, beer.UpdateDate.IsZero())

		stored, err := repo.FindByID(ctx, beer.ID)
		require.NoError(t, err)
		assert.Equal(t, beer, stored)

		require.Len(t, outbox.created, 1)
		msg := outbox.created[0]
		assert.Equal(t, event.TopicBeerCreated, msg.Topic)
		require.NotNil(t, msg.PartitionKey)
		assert.Equal(t, beer.ID.String(), *msg.PartitionKey)

		var ev event.BeerCreatedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, beer.ID.String(), ev.BeerID)
		assert.Equal(t, "Galaxy Cat", ev.BeerName)
		assert.Equal(t, principal.Anonymous, ev.CreatedBy)
	})

	t.Run("records the acting principal on the event", func(t *testing.T) {
		svc, _, outbox := newBeerService(t)

		_, err := svc.CreateBeer(principal.NewContext(ctx, "brewmaster"), params)

		require.NoError(t, err)
		require.Len(t, outbox.created, 1)

		var ev event.BeerCreatedEvent
		require.NoError(t, json.Unmarshal(outbox.created[0].Payload, &ev))
		assert.Equal(t, "brewmaster", ev.CreatedBy)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		svc, _, outbox := newBeerService(t)

		p := params
		p.BeerName = ""
		_, err := svc.CreateBeer(ctx, p)

		require.Error(t, err)
		assert.Empty(t, outbox.created)
	})

	t.Run("rejects a name over 50 characters", func(t *testing.T) {
		svc, _, _ := newBeerService(t)

		p := params
		p.BeerName = strings.Repeat("x", 51)
		_, err := svc.CreateBeer(ctx, p)

		require.Error(t, err)
	})

	t.Run("rejects an unknown style", func(t *testing.T) {
		svc, _, _ := newBeerService(t)

		p := params
		p.BeerStyle = model.BeerStyle("MALT_LIQUOR")
		_, err := svc.CreateBeer(ctx, p)

		require.Error(t, err)
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		svc, _, _ := newBeerService(t)

		p := params
		p.Price = decimal.NewFromInt(-1)
		_, err := svc.CreateBeer(ctx, p)

		var zErr zerror.ZError
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, apperr.ValidationErrorCode, zErr.Code())
	})
}

func TestUpdateBeerByID(t *testing.T) {
	ctx := context.Background()

	params := service.UpdateBeerParams{
		BeerName:       "Renamed",
		BeerStyle:      model.StyleStout,
		UPC:            "0083783375213",
		QuantityOnHand: 5,
		Price:          decimal.NewFromInt(9),
	}

	t.Run("replaces every field and bumps the version once", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		updated, err := svc.UpdateBeerByID(ctx, existing.ID, params)

		require.NoError(t, err)
		assert.Equal(t, existing.Version+1, updated.Version)
		assert.Equal(t, "Renamed", updated.BeerName)
		assert.Equal(t, model.StyleStout, updated.BeerStyle)
		assert.Equal(t, existing.CreatedDate, updated.CreatedDate)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _, _ := newBeerService(t)

		_, err := svc.UpdateBeerByID(ctx, uuid.New(), params)

		require.ErrorIs(t, err, apperr.BeerNotFoundErr)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		p := params
		p.Version = ptr.New(existing.Version + 7)
		_, err := svc.UpdateBeerByID(ctx, existing.ID, p)

		require.ErrorIs(t, err, apperr.StaleVersionErr)
	})

	t.Run("matching expected version succeeds", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		p := params
		p.Version = ptr.New(existing.Version)
		updated, err := svc.UpdateBeerByID(ctx, existing.ID, p)

		require.NoError(t, err)
		assert.Equal(t, existing.Version+1, updated.Version)
	})

	t.Run("rejects a name over 50 characters", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		p := params
		p.BeerName = strings.Repeat("x", 51)
		_, err := svc.UpdateBeerByID(ctx, existing.ID, p)

		require.Error(t, err)
	})
}

func TestPatchBeerByID(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only supplied fields", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		patched, err := svc.PatchBeerByID(ctx, existing.ID, service.PatchBeerParams{
			BeerName:       ptr.New("Nebula Cat"),
			QuantityOnHand: ptr.New(0),
		})

		require.NoError(t, err)
		assert.Equal(t, "Nebula Cat", patched.BeerName)
		assert.Equal(t, 0, patched.QuantityOnHand)
		assert.Equal(t, existing.BeerStyle, patched.BeerStyle)
		assert.Equal(t, existing.UPC, patched.UPC)
		assert.True(t, existing.Price.Equal(patched.Price))
		assert.Equal(t, existing.Version+1, patched.Version)
	})

	t.Run("blank name leaves the stored name untouched", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		patched, err := svc.PatchBeerByID(ctx, existing.ID, service.PatchBeerParams{
			BeerName: ptr.New("   "),
			Price:    ptr.New(decimal.RequireFromString("14.50")),
		})

		require.NoError(t, err)
		assert.Equal(t, "Galaxy Cat", patched.BeerName)
		assert.True(t, decimal.RequireFromString("14.50").Equal(patched.Price))
	})

	t.Run("empty patch still performs a versioned write", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		patched, err := svc.PatchBeerByID(ctx, existing.ID, service.PatchBeerParams{})

		require.NoError(t, err)
		assert.Equal(t, existing.BeerName, patched.BeerName)
		assert.Equal(t, existing.Version+1, patched.Version)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _, _ := newBeerService(t)

		_, err := svc.PatchBeerByID(ctx, uuid.New(), service.PatchBeerParams{})

		require.ErrorIs(t, err, apperr.BeerNotFoundErr)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		_, err := svc.PatchBeerByID(ctx, existing.ID, service.PatchBeerParams{
			Version: ptr.New(existing.Version + 1),
		})

		require.ErrorIs(t, err, apperr.StaleVersionErr)
	})

	t.Run("rejects an unknown style", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		_, err := svc.PatchBeerByID(ctx, existing.ID, service.PatchBeerParams{
			BeerStyle: ptr.New(model.BeerStyle("MALT_LIQUOR")),
		})

		require.Error(t, err)
	})
}

func TestDeleteBeerByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the record as it was before deletion", func(t *testing.T) {
		svc, repo, _ := newBeerService(t)
		existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

		deleted, err := svc.DeleteBeerByID(ctx, existing.ID)

		require.NoError(t, err)
		assert.Equal(t, existing, deleted)

		_, err = svc.GetBeerByID(ctx, existing.ID)
		require.ErrorIs(t, err, apperr.BeerNotFoundErr)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _, _ := newBeerService(t)

		_, err := svc.DeleteBeerByID(ctx, uuid.New())

		require.ErrorIs(t, err, apperr.BeerNotFoundErr)
	})
}

func TestGetBeerByID(t *testing.T) {
	svc, repo, _ := newBeerService(t)
	existing := seedBeer(t, repo, "Galaxy Cat", model.StylePaleAle)

	beer, err := svc.GetBeerByID(context.Background(), existing.ID)

	require.NoError(t, err)
	assert.Equal(t, existing, beer)
}
