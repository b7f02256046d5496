package postgres

import (
	"context"
	"fmt"
)

// schemaDDL crea las tablas si no existen. Idempotente.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS products (
		code              TEXT PRIMARY KEY,
		name              TEXT NOT NULL UNIQUE,
		unit_price        NUMERIC(14,2) NOT NULL CONSTRAINT products_price_nonnegative CHECK (unit_price >= 0),
		cost              NUMERIC(18,4) NOT NULL DEFAULT 0,
		stock             INTEGER NOT NULL CONSTRAINT products_stock_nonnegative CHECK (stock >= 0),
		reorder_threshold INTEGER NOT NULL DEFAULT 0 CONSTRAINT products_threshold_nonnegative CHECK (reorder_threshold >= 0),
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// Libro de ventas: solo INSERT. seq conserva el orden de las líneas dentro de la venta.
	`CREATE TABLE IF NOT EXISTS sale_lines (
		id                 UUID PRIMARY KEY,
		seq                BIGSERIAL NOT NULL,
		sale_number        BIGINT NOT NULL,
		product_code       TEXT NOT NULL,
		quantity           INTEGER NOT NULL CONSTRAINT sale_lines_quantity_positive CHECK (quantity > 0),
		unit_price_at_sale NUMERIC(14,2) NOT NULL,
		cashier_id         TEXT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_lines_sale_number ON sale_lines (sale_number)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_lines_created_at ON sale_lines (created_at)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id           UUID PRIMARY KEY,
		product_code TEXT NOT NULL,
		quantity     INTEGER NOT NULL CHECK (quantity > 0),
		unit_cost    NUMERIC(18,4) NOT NULL,
		provider     TEXT NOT NULL DEFAULT '',
		created_by   TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements (product_code, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL CHECK (role IN ('admin', 'cajero')),
		status        TEXT NOT NULL DEFAULT 'active',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema aplica el DDL sobre q (pool o tx).
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schemaDDL {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema paso %d: %w", i+1, err)
		}
	}
	return nil
}
