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

// BeerOrderRepository persists orders and their lines. The order→customer
// relationship is a plain foreign key; listing a customer's orders is an
// explicit query here, not a collection maintained on the customer.
type BeerOrderRepository interface {
	WithDB(db db.DB) BeerOrderRepository
	FindByID(ctx context.Context, id uuid.UUID) (model.BeerOrder, error)
	FindAllByCustomerID(ctx context.Context, customerID uuid.UUID) ([]model.BeerOrder, error)

	// Create writes the order row and its lines. Callers own the surrounding
	// transaction; run it through WithDB inside db.WithTx.
	Create(ctx context.Context, order model.BeerOrder) (model.BeerOrder, error)
}

const beerOrderColumns = `id, version, customer_id, customer_ref, created_date, update_date`

type beerOrderRepository struct {
	db db.DB
}

func NewBeerOrderRepository(db db.DB) BeerOrderRepository {
	return &beerOrderRepository{db: db}
}

func (r beerOrderRepository) WithDB(db db.DB) BeerOrderRepository {
	return &beerOrderRepository{db: db}
}

func (r beerOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (model.BeerOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM beer_orders WHERE id = $1`, beerOrderColumns)

	order, err := scanBeerOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BeerOrder{}, ErrNotFound
		}
		return model.BeerOrder{}, fmt.Errorf("find beer order by id: %w", err)
	}

	lines, err := r.findLines(ctx, order.ID)
	if err != nil {
		return model.BeerOrder{}, err
	}
	order.Lines = lines

	return order, nil
}

func (r beerOrderRepository) FindAllByCustomerID(ctx context.Context, customerID uuid.UUID) ([]model.BeerOrder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM beer_orders
		WHERE customer_id = $1
		ORDER BY created_date, id
	`, beerOrderColumns)

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query beer orders: %w", err)
	}
	defer rows.Close()

	var orders []model.BeerOrder
	for rows.Next() {
		order, err := scanBeerOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan beer order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate beer orders: %w", err)
	}

	for i := range orders {
		lines, err := r.findLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}

	return orders, nil
}

func (r beerOrderRepository) Create(ctx context.Context, order model.BeerOrder) (model.BeerOrder, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.BeerOrder{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	order.ID = id
	order.Version = 0
	order.CreatedDate = now
	order.UpdateDate = now

	if _, err := r.db.Exec(ctx, `
		INSERT INTO beer_orders (id, version, customer_id, customer_ref, created_date, update_date)
		VALUES (@id, @version, @customer_id, @customer_ref, @created_date, @update_date)
	`, pgx.NamedArgs{
		"id":           order.ID,
		"version":      order.Version,
		"customer_id":  order.CustomerID,
		"customer_ref": order.CustomerRef,
		"created_date": order.CreatedDate,
		"update_date":  order.UpdateDate,
	}); err != nil {
		return model.BeerOrder{}, fmt.Errorf("insert beer order: %w", err)
	}

	for i := range order.Lines {
		lineID, err := uuid.NewV7()
		if err != nil {
			return model.BeerOrder{}, fmt.Errorf("generate uuid v7: %w", err)
		}
		order.Lines[i].ID = lineID
		order.Lines[i].BeerOrderID = order.ID

		if _, err := r.db.Exec(ctx, `
			INSERT INTO beer_order_lines (id, beer_order_id, beer_id, order_quantity)
			VALUES (@id, @beer_order_id, @beer_id, @order_quantity)
		`, pgx.NamedArgs{
			"id":             order.Lines[i].ID,
			"beer_order_id":  order.Lines[i].BeerOrderID,
			"beer_id":        order.Lines[i].BeerID,
			"order_quantity": order.Lines[i].OrderQuantity,
		}); err != nil {
			return model.BeerOrder{}, fmt.Errorf("insert beer order line: %w", err)
		}
	}

	return order, nil
}

func (r beerOrderRepository) findLines(ctx context.Context, orderID uuid.UUID) ([]model.BeerOrderLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, beer_order_id, beer_id, order_quantity
		FROM beer_order_lines
		WHERE beer_order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query beer order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.BeerOrderLine
	for rows.Next() {
		var line model.BeerOrderLine
		if err := rows.Scan(&line.ID, &line.BeerOrderID, &line.BeerID, &line.OrderQuantity); err != nil {
			return nil, fmt.Errorf("scan beer order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate beer order lines: %w", err)
	}

	return lines, nil
}

func scanBeerOrder(row pgx.Row) (model.BeerOrder, error) {
	var order model.BeerOrder
	if err := row.Scan(
		&order.ID,
		&order.Version,
		&order.CustomerID,
		&order.CustomerRef,
		&order.CreatedDate,
		&order.UpdateDate,
	); err != nil {
		return model.BeerOrder{}, err
	}

	return order, nil
}
