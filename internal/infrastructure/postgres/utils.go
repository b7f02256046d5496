package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
)

// Códigos SQLSTATE que el adaptador traduce a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// constraint que protege stock >= 0 (ver schema.go)
const stockConstraint = "products_stock_nonnegative"

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// mapError traduce errores de pgx a errores de dominio y envuelve el resto con op.
//
//	23505         -> domain.ErrDuplicate
//	23514 (stock) -> domain.ErrInsufficientStock
//	23514 (otro)  -> domain.ErrInvalidInput
//	40001, 40P01  -> domain.ErrStorage (reintentable)
//	ctx vencido   -> domain.ErrStorage
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return domain.ErrDuplicate
		case codeCheckViolation:
			if pgErr.ConstraintName == stockConstraint {
				return domain.ErrInsufficientStock
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.ConstraintName)
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
