package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/postgres"
	"github.com/jhoicas/PuntoVenta-api/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool abre un pool sobre un schema propio de DATABASE_URL y lo borra al terminar.
// Sin DATABASE_URL el test se omite.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL no definido")
	}
	ctx := context.Background()
	schema := "pos_test_" + uuid.NewString()[:8]

	admin, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 2})
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: u.String(), MaxConns: 20})
	require.NoError(t, err)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})
	return pool
}

func seedPG(t *testing.T, pool *pgxpool.Pool, code string, stock, threshold int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, postgres.NewProductRepository(pool).Create(context.Background(), &entity.Product{
		Code: code, Name: "Producto " + code, UnitPrice: decimal.NewFromInt(1000),
		Stock: stock, ReorderThreshold: threshold, CreatedAt: now, UpdatedAt: now,
	}))
}

func TestPostgres_CheckoutsConcurrentesNuncaStockNegativo(t *testing.T) {
	pool := newTestPool(t)
	seedPG(t, pool, "001", 10, 3)
	uc := sales.NewCheckoutUseCase(postgres.NewTxRunner(pool), nil, nil)

	const buyers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int64
		short   int
		other   []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := uc.Checkout(context.Background(), sales.CheckoutInput{
				Items:     []sales.BasketItem{{ProductCode: "001", Quantity: 1}},
				CashierID: fmt.Sprintf("cajero-%d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				numbers = append(numbers, res.SaleNumber)
			case errors.Is(err, domain.ErrInsufficientStock):
				short++
			default:
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Len(t, numbers, 10)
	assert.Equal(t, buyers-10, short)

	p, err := postgres.NewProductRepository(pool).GetByCode(context.Background(), "001")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	// numeración sin huecos ni colisiones
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, n := range numbers {
		assert.Equal(t, int64(i+1), n)
	}
}

func TestPostgres_RollbackNoConsumeNumero(t *testing.T) {
	pool := newTestPool(t)
	seedPG(t, pool, "001", 5, 0)
	seedPG(t, pool, "002", 1, 0)
	uc := sales.NewCheckoutUseCase(postgres.NewTxRunner(pool), nil, nil)
	ctx := context.Background()

	_, err := uc.Checkout(ctx, sales.CheckoutInput{
		Items:     []sales.BasketItem{{ProductCode: "001", Quantity: 2}, {ProductCode: "002", Quantity: 3}},
		CashierID: "cajero-1",
	})
	var lineErr *sales.LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 2, lineErr.Line)

	p, err := postgres.NewProductRepository(pool).GetByCode(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock, "la línea 1 se revierte")

	res, err := uc.Checkout(ctx, sales.CheckoutInput{
		Items:     []sales.BasketItem{{ProductCode: "001", Quantity: 2}},
		CashierID: "cajero-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.SaleNumber)
}

func TestPostgres_CheckStockNegativoEsStockInsuficiente(t *testing.T) {
	pool := newTestPool(t)
	seedPG(t, pool, "001", 1, 0)

	err := postgres.NewProductRepository(pool).UpdateStock(context.Background(), "001", -1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
