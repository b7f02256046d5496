package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, domain.ErrDuplicate},
		{"check stock", &pgconn.PgError{Code: "23514", ConstraintName: stockConstraint}, domain.ErrInsufficientStock},
		{"check otro", &pgconn.PgError{Code: "23514", ConstraintName: "products_price_nonnegative"}, domain.ErrInvalidInput},
		{"serialization", &pgconn.PgError{Code: "40001"}, domain.ErrStorage},
		{"deadlock", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"}), domain.ErrStorage},
		{"deadline", context.DeadlineExceeded, domain.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("op", tt.err), tt.want)
		})
	}
}

func TestMapError_NilYGenerico(t *testing.T) {
	assert.NoError(t, mapError("op", nil))

	base := errors.New("conn reset")
	err := mapError("insert product", base)
	assert.ErrorIs(t, err, base)
	assert.NotErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "insert product")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}
