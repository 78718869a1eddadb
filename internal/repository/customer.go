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

type CustomerRepository interface {
	WithDB(db db.DB) CustomerRepository
	FindAll(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.Customer, error)

	// Save follows the same insert-or-version-checked-update contract as
	// BeerRepository.Save.
	Save(ctx context.Context, customer model.Customer) (model.Customer, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

const customerColumns = `id, version, name, email, created_date, update_date`

type customerRepository struct {
	db db.DB
}

func NewCustomerRepository(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) WithDB(db db.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r customerRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers ORDER BY created_date, id`, customerColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

func (r customerRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)

	customer, err := scanCustomer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, ErrNotFound
		}
		return model.Customer{}, fmt.Errorf("find customer by id: %w", err)
	}

	return customer, nil
}

func (r customerRepository) Save(ctx context.Context, customer model.Customer) (model.Customer, error) {
	if customer.ID == uuid.Nil {
		return r.insert(ctx, customer)
	}
	return r.update(ctx, customer)
}

func (r customerRepository) insert(ctx context.Context, customer model.Customer) (model.Customer, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Customer{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	customer.ID = id
	customer.Version = 0
	customer.CreatedDate = now
	customer.UpdateDate = now

	if _, err := r.db.Exec(ctx, `
		INSERT INTO customers (id, version, name, email, created_date, update_date)
		VALUES (@id, @version, @name, @email, @created_date, @update_date)
	`, customerArgs(customer)); err != nil {
		return model.Customer{}, fmt.Errorf("insert customer: %w", err)
	}

	return customer, nil
}

func (r customerRepository) update(ctx context.Context, customer model.Customer) (model.Customer, error) {
	customer.UpdateDate = time.Now().UTC()

	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET version     = version + 1,
		    name        = @name,
		    email       = @email,
		    update_date = @update_date
		WHERE id = @id AND version = @version
	`, customerArgs(customer))
	if err != nil {
		return model.Customer{}, fmt.Errorf("update customer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, customer.ID).Scan(&exists); err != nil {
			return model.Customer{}, fmt.Errorf("check customer existence: %w", err)
		}
		if exists {
			return model.Customer{}, ErrStaleVersion
		}
		return model.Customer{}, ErrNotFound
	}

	customer.Version++
	return customer, nil
}

func (r customerRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func customerArgs(customer model.Customer) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":           customer.ID,
		"version":      customer.Version,
		"name":         customer.Name,
		"email":        customer.Email,
		"created_date": customer.CreatedDate,
		"update_date":  customer.UpdateDate,
	}
}

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var customer model.Customer
	if err := row.Scan(
		&customer.ID,
		&customer.Version,
		&customer.Name,
		&customer.Email,
		&customer.CreatedDate,
		&customer.UpdateDate,
	); err != nil {
		return model.Customer{}, err
	}

	return customer, nil
}
