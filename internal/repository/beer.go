package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tapcellar/beer-catalog/internal/model"
	"github.com/tapcellar/beer-catalog/internal/storage/db"
)

// BeerRepository is the record store for beers. All list variants are
// paginated and ordered by (created_date, id) so identical filters always
// return identical pages.
type BeerRepository interface {
	WithDB(db db.DB) BeerRepository
	FindAll(ctx context.Context, page PageRequest) (model.Page[model.Beer], error)
	FindByID(ctx context.Context, id uuid.UUID) (model.Beer, error)
	FindAllByNameContaining(ctx context.Context, name string, page PageRequest) (model.Page[model.Beer], error)
	FindAllByStyle(ctx context.Context, style model.BeerStyle, page PageRequest) (model.Page[model.Beer], error)
	FindAllByNameContainingAndStyle(ctx context.Context, name string, style model.BeerStyle, page PageRequest) (model.Page[model.Beer], error)

	// Save inserts when the id is unset (assigning id, version 0 and both
	// timestamps) and otherwise performs a version-checked update that bumps
	// version and update_date. A stale version yields ErrStaleVersion.
	Save(ctx context.Context, beer model.Beer) (model.Beer, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

const beerColumns = `id, version, beer_name, beer_style, upc, quantity_on_hand, price, created_date, update_date`

type beerRepository struct {
	db db.DB
}

func NewBeerRepository(db db.DB) BeerRepository {
	return &beerRepository{db: db}
}

func (r beerRepository) WithDB(db db.DB) BeerRepository {
	return &beerRepository{db: db}
}

func (r beerRepository) FindAll(ctx context.Context, page PageRequest) (model.Page[model.Beer], error) {
	return r.findPage(ctx, "", pgx.NamedArgs{}, page)
}

func (r beerRepository) FindAllByNameContaining(ctx context.Context, name string, page PageRequest) (model.Page[model.Beer], error) {
	return r.findPage(ctx, "WHERE beer_name ILIKE @pattern", pgx.NamedArgs{
		"pattern": "%" + name + "%",
	}, page)
}

func (r beerRepository) FindAllByStyle(ctx context.Context, style model.BeerStyle, page PageRequest) (model.Page[model.Beer], error) {
	return r.findPage(ctx, "WHERE beer_style = @style", pgx.NamedArgs{
		"style": style.String(),
	}, page)
}

func (r beerRepository) FindAllByNameContainingAndStyle(ctx context.Context, name string, style model.BeerStyle, page PageRequest) (model.Page[model.Beer], error) {
	return r.findPage(ctx, "WHERE beer_name ILIKE @pattern AND beer_style = @style", pgx.NamedArgs{
		"pattern": "%" + name + "%",
		"style":   style.String(),
	}, page)
}

func (r beerRepository) findPage(ctx context.Context, where string, args pgx.NamedArgs, page PageRequest) (model.Page[model.Beer], error) {
	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM beers %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args).Scan(&total); err != nil {
		return model.Page[model.Beer]{}, fmt.Errorf("count beers: %w", err)
	}

	queryArgs := pgx.NamedArgs{
		"limit":  page.Limit(),
		"offset": page.Offset(),
	}
	for k, v := range args {
		queryArgs[k] = v
	}

	query := fmt.Sprintf(`
		SELECT %s FROM beers %s
		ORDER BY created_date, id
		LIMIT @limit OFFSET @offset
	`, beerColumns, where)

	rows, err := r.db.Query(ctx, query, queryArgs)
	if err != nil {
		return model.Page[model.Beer]{}, fmt.Errorf("query beers: %w", err)
	}
	defer rows.Close()

	beers := make([]model.Beer, 0, page.Size)
	for rows.Next() {
		beer, err := scanBeer(rows)
		if err != nil {
			return model.Page[model.Beer]{}, fmt.Errorf("scan beer: %w", err)
		}
		beers = append(beers, beer)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.Beer]{}, fmt.Errorf("iterate beers: %w", err)
	}

	return model.NewPage(beers, page.Page, page.Size, total), nil
}

func (r beerRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Beer, error) {
	query := fmt.Sprintf(`SELECT %s FROM beers WHERE id = $1`, beerColumns)

	beer, err := scanBeer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Beer{}, ErrNotFound
		}
		return model.Beer{}, fmt.Errorf("find beer by id: %w", err)
	}

	return beer, nil
}

func (r beerRepository) Save(ctx context.Context, beer model.Beer) (model.Beer, error) {
	if beer.ID == uuid.Nil {
		return r.insert(ctx, beer)
	}
	return r.update(ctx, beer)
}

func (r beerRepository) insert(ctx context.Context, beer model.Beer) (model.Beer, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Beer{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	beer.ID = id
	beer.Version = 0
	beer.CreatedDate = now
	beer.UpdateDate = now

	if _, err := r.db.Exec(ctx, `
		INSERT INTO beers (id, version, beer_name, beer_style, upc, quantity_on_hand, price, created_date, update_date)
		VALUES (@id, @version, @beer_name, @beer_style, @upc, @quantity_on_hand, @price, @created_date, @update_date)
	`, beerArgs(beer)); err != nil {
		return model.Beer{}, fmt.Errorf("insert beer: %w", err)
	}

	return beer, nil
}

func (r beerRepository) update(ctx context.Context, beer model.Beer) (model.Beer, error) {
	beer.UpdateDate = time.Now().UTC()

	tag, err := r.db.Exec(ctx, `
		UPDATE beers
		SET version          = version + 1,
		    beer_name        = @beer_name,
		    beer_style       = @beer_style,
		    upc              = @upc,
		    quantity_on_hand = @quantity_on_hand,
		    price            = @price,
		    update_date      = @update_date
		WHERE id = @id AND version = @version
	`, beerArgs(beer))
	if err != nil {
		return model.Beer{}, fmt.Errorf("update beer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM beers WHERE id = $1)`, beer.ID).Scan(&exists); err != nil {
			return model.Beer{}, fmt.Errorf("check beer existence: %w", err)
		}
		if exists {
			return model.Beer{}, ErrStaleVersion
		}
		return model.Beer{}, ErrNotFound
	}

	beer.Version++
	return beer, nil
}

func (r beerRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM beers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete beer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r beerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM beers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count beers: %w", err)
	}

	return count, nil
}

func beerArgs(beer model.Beer) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":               beer.ID,
		"version":          beer.Version,
		"beer_name":        beer.BeerName,
		"beer_style":       beer.BeerStyle.String(),
		"upc":              beer.UPC,
		"quantity_on_hand": beer.QuantityOnHand,
		"price":            beer.Price,
		"created_date":     beer.CreatedDate,
		"update_date":      beer.UpdateDate,
	}
}

func scanBeer(row pgx.Row) (model.Beer, error) {
	var (
		beer  model.Beer
		style string
	)
	if err := row.Scan(
		&beer.ID,
		&beer.Version,
		&beer.BeerName,
		&style,
		&beer.UPC,
		&beer.QuantityOnHand,
		&beer.Price,
		&beer.CreatedDate,
		&beer.UpdateDate,
	); err != nil {
		return model.Beer{}, err
	}

	beer.BeerStyle = model.BeerStyle(style)
	return beer, nil
}
