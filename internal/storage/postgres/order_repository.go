package postgres

import (
	"context"
	"fmt"

	"github.com/ToniMoldovan/orders-microservice/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) GetOrderByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	const query = `
SELECT order_id, customer_email, total_amount::text, currency, order_created_at, payload_hash, created_at
FROM orders
WHERE order_id = $1`

	var o domain.Order
	var amount string
	err := r.queryRow(ctx, query, orderID).
		Scan(&o.OrderID, &o.CustomerEmail, &amount, &o.Currency, &o.OrderCreatedAt, &o.PayloadHash, &o.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.TotalAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse stored amount: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (order_id, customer_email, total_amount, currency, order_created_at, payload_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		order.OrderID,
		order.CustomerEmail,
		order.TotalAmount.StringFixed(2),
		order.Currency,
		order.OrderCreatedAt,
		order.PayloadHash,
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderIDTaken
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// Ping reports connectivity to the database.
func (r *OrderRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// SchemaReady reports whether the orders table exists.
func (r *OrderRepository) SchemaReady(ctx context.Context) (bool, error) {
	var ready bool
	err := r.pool.QueryRow(ctx, `SELECT to_regclass('public.orders') IS NOT NULL`).Scan(&ready)
	if err != nil {
		return false, fmt.Errorf("check schema: %w", err)
	}
	return ready, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
