package sales_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cashier = "cajero-1"

func newStore(t *testing.T, products ...*entity.Product) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	for _, p := range products {
		require.NoError(t, s.Products().Create(context.Background(), p))
	}
	return s
}

func product(code string, stock, threshold int, price int64) *entity.Product {
	return &entity.Product{
		Code:             code,
		Name:             "Producto " + code,
		UnitPrice:        decimal.NewFromInt(price),
		Stock:            stock,
		ReorderThreshold: threshold,
	}
}

func stockOf(t *testing.T, s *memory.Store, code string) int {
	t.Helper()
	p, err := s.Products().GetByCode(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func basket(items ...sales.BasketItem) sales.CheckoutInput {
	return sales.CheckoutInput{Items: items, CashierID: cashier}
}

func item(code string, qty int) sales.BasketItem {
	return sales.BasketItem{ProductCode: code, Quantity: qty}
}

// recordingNotifier guarda los eventos publicados.
type recordingNotifier struct {
	mu     sync.Mutex
	events []sales.Event
}

func (n *recordingNotifier) Publish(e sales.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

// countingRunner cuenta cuántas transacciones se abrieron.
type countingRunner struct {
	inner sales.CheckoutTxRunner
	calls int
}

func (r *countingRunner) RunCheckout(ctx context.Context, fn func(repository.ProductRepository, repository.SaleRepository) error) error {
	r.calls++
	return r.inner.RunCheckout(ctx, fn)
}

// failingCommitRunner corre fn completo y luego simula un commit fallido: el store descarta todo.
type failingCommitRunner struct {
	inner sales.CheckoutTxRunner
	err   error
}

func (r *failingCommitRunner) RunCheckout(ctx context.Context, fn func(repository.ProductRepository, repository.SaleRepository) error) error {
	return r.inner.RunCheckout(ctx, func(p repository.ProductRepository, s repository.SaleRepository) error {
		if err := fn(p, s); err != nil {
			return err
		}
		return r.err
	})
}

func TestCheckout_Exito(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("001", 5, 0, 10))
	uc := sales.NewCheckoutUseCase(s, nil, nil)

	res, err := uc.Checkout(ctx, basket(item("001", 2)))
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.SaleNumber)
	assert.Equal(t, 3, stockOf(t, s, "001"))
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 2, res.Lines[0].Quantity)
	assert.True(t, res.Lines[0].UnitPriceAtSale.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, cashier, res.Lines[0].CashierID)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(20)))
	assert.Empty(t, res.LowStock)

	sale, err := s.Sales().GetBySaleNumber(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Len(t, sale.Lines, 1)
}

func TestCheckout_StockInsuficiente(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("001", 5, 0, 10))
	uc := sales.NewCheckoutUseCase(s, nil, nil)

	_, err := uc.Checkout(ctx, basket(item("001", 10)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var lineErr *sales.LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, "001", lineErr.ProductCode)
	assert.Equal(t, 1, lineErr.Line)

	assert.Equal(t, 5, stockOf(t, s, "001"))
	sale, err := s.Sales().GetBySaleNumber(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, sale)
}

func TestCheckout_AtomicidadFallaEnLinea2(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		product("A", 10, 0, 100),
		product("B", 1, 0, 200),
		product("C", 10, 0, 300),
	)
	uc := sales.NewCheckoutUseCase(s, nil, nil)

	_, err := uc.Checkout(ctx, basket(item("A", 2), item("B", 5), item("C", 1)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var lineErr *sales.LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 2, lineErr.Line)
	assert.Equal(t, "B", lineErr.ProductCode)

	assert.Equal(t, 10, stockOf(t, s, "A"))
	assert.Equal(t, 1, stockOf(t, s, "B"))
	assert.Equal(t, 10, stockOf(t, s, "C"))

	next, err := s.Sales().NextSaleNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "ninguna línea quedó en el libro")
}

func TestCheckout_ProductoInexistenteAbortaTodo(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("A", 10, 0, 100))
	uc := sales.NewCheckoutUseCase(s, nil, nil)

	_, err := uc.Checkout(ctx, basket(item("A", 1), item("ZZZ", 1)))
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	var lineErr *sales.LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, "ZZZ", lineErr.ProductCode)
	assert.Equal(t, 10, stockOf(t, s, "A"))
}

func TestCheckout_BajoStock(t *testing.T) {
	ctx := context.Background()

	t.Run("vende 6 de 10 con umbral 5", func(t *testing.T) {
		s := newStore(t, product("001", 10, 5, 10))
		res, err := sales.NewCheckoutUseCase(s, nil, nil).Checkout(ctx, basket(item("001", 6)))
		require.NoError(t, err)
		require.Len(t, res.LowStock, 1)
		assert.Equal(t, "001", res.LowStock[0].ProductCode)
		assert.Equal(t, 4, res.LowStock[0].Stock)
		assert.Equal(t, 5, res.LowStock[0].ReorderThreshold)
	})

	t.Run("vende 3 de 10 con umbral 5", func(t *testing.T) {
		s := newStore(t, product("001", 10, 5, 10))
		res, err := sales.NewCheckoutUseCase(s, nil, nil).Checkout(ctx, basket(item("001", 3)))
		require.NoError(t, err)
		assert.Empty(t, res.LowStock)
		assert.Equal(t, 7, stockOf(t, s, "001"))
	})
}

func TestCheckout_CodigoRepetidoSeAcumula(t *testing.T) {
	ctx := context.Background()

	s := newStore(t, product("001", 10, 6, 10))
	res, err := sales.NewCheckoutUseCase(s, nil, nil).Checkout(ctx, basket(item("001", 2), item("001", 3)))
	require.NoError(t, err)
	assert.Equal(t, 5, stockOf(t, s, "001"))
	require.Len(t, res.Lines, 2)
	require.Len(t, res.LowStock, 1, "un producto aparece una sola vez")
	assert.Equal(t, 5, res.LowStock[0].Stock)

	s2 := newStore(t, product("001", 6, 0, 10))
	_, err = sales.NewCheckoutUseCase(s2, nil, nil).Checkout(ctx, basket(item("001", 4), item("001", 4)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 6, stockOf(t, s2, "001"))
}

func TestCheckout_ValidacionSinTocarAlmacenamiento(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("001", 10, 0, 10))
	runner := &countingRunner{inner: s}
	uc := sales.NewCheckoutUseCase(runner, nil, nil)

	tests := []struct {
		name string
		in   sales.CheckoutInput
		want error
	}{
		{"sin cajero", sales.CheckoutInput{Items: []sales.BasketItem{item("001", 1)}}, domain.ErrUnauthorized},
		{"cajero en blanco", sales.CheckoutInput{Items: []sales.BasketItem{item("001", 1)}, CashierID: "  "}, domain.ErrUnauthorized},
		{"canasta vacía", basket(), domain.ErrInvalidInput},
		{"cantidad cero", basket(item("001", 0)), domain.ErrInvalidInput},
		{"cantidad negativa", basket(item("001", -2)), domain.ErrInvalidInput},
		{"código en blanco", basket(item("   ", 1)), domain.ErrInvalidInput},
		{"código con control", basket(item("00\x001", 1)), domain.ErrInvalidInput},
		{"segunda línea inválida", basket(item("001", 1), item("002", 0)), domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Checkout(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 0, runner.calls)
	assert.Equal(t, 10, stockOf(t, s, "001"))
}

func TestCheckout_CodigoSeNormaliza(t *testing.T) {
	s := newStore(t, product("001", 10, 0, 10))
	res, err := sales.NewCheckoutUseCase(s, nil, nil).Checkout(context.Background(), basket(item(" 001 ", 1)))
	require.NoError(t, err)
	assert.Equal(t, "001", res.Lines[0].ProductCode)
}

func TestCheckout_ConcurrenciaNuncaStockNegativo(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("001", 5, 0, 10))
	uc := sales.NewCheckoutUseCase(s, nil, nil)

	const workers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       []int64
		rejected int
		other    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := uc.Checkout(ctx, basket(item("001", 1)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok = append(ok, res.SaleNumber)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Len(t, ok, 5)
	assert.Equal(t, workers-5, rejected)
	assert.Equal(t, 0, stockOf(t, s, "001"))

	sort.Slice(ok, func(i, j int) bool { return ok[i] < ok[j] })
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ok)
}

func TestCheckout_NumeracionConcurrenteSinColisiones(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("001", 1000, 0, 10))
	uc := sales.NewCheckoutUseCase(s, nil, nil)

	const workers = 50
	numbers := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := uc.Checkout(ctx, basket(item("001", 1)))
			if assert.NoError(t, err) {
				numbers <- res.SaleNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool)
	for n := range numbers {
		assert.False(t, seen[n], "número repetido %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	for n := int64(1); n <= workers; n++ {
		assert.True(t, seen[n], "falta el número %d", n)
	}

	// secuenciales: estrictamente crecientes
	first, err := uc.Checkout(ctx, basket(item("001", 1)))
	require.NoError(t, err)
	second, err := uc.Checkout(ctx, basket(item("001", 1)))
	require.NoError(t, err)
	assert.Greater(t, second.SaleNumber, first.SaleNumber)
}

func TestCheckout_ReintentoTrasErrorDeAlmacenamiento(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("001", 5, 0, 10))
	in := basket(item("001", 2))

	failing := sales.NewCheckoutUseCase(&failingCommitRunner{inner: s, err: errors.New("connection reset by peer")}, nil, nil)
	_, err := failing.Checkout(ctx, in)
	require.ErrorIs(t, err, domain.ErrStorage)
	var lineErr *sales.LineError
	assert.False(t, errors.As(err, &lineErr))
	assert.Equal(t, 5, stockOf(t, s, "001"))

	res, err := sales.NewCheckoutUseCase(s, nil, nil).Checkout(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.SaleNumber)
	assert.Equal(t, 3, stockOf(t, s, "001"))

	second, err := s.Sales().GetBySaleNumber(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, second, "una sola venta confirmada")
}

func TestCheckout_ContextoCanceladoEsErrorDeAlmacenamiento(t *testing.T) {
	s := newStore(t, product("001", 5, 0, 10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sales.NewCheckoutUseCase(s, nil, nil).Checkout(ctx, basket(item("001", 1)))
	require.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, stockOf(t, s, "001"))
}

func TestCheckout_EventosSoloTrasCommit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("001", 10, 5, 10))
	notifier := &recordingNotifier{}
	uc := sales.NewCheckoutUseCase(s, notifier, nil)

	_, err := uc.Checkout(ctx, basket(item("001", 50)))
	require.Error(t, err)
	assert.Empty(t, notifier.events)

	res, err := uc.Checkout(ctx, basket(item("001", 6)))
	require.NoError(t, err)
	require.Len(t, notifier.events, 2)
	assert.Equal(t, sales.EventSaleCompleted, notifier.events[0].Type)
	assert.Equal(t, res.SaleNumber, notifier.events[0].SaleNumber)
	assert.Equal(t, sales.EventStockLow, notifier.events[1].Type)
	assert.Equal(t, res.LowStock, notifier.events[1].LowStock)
}

// failingUsers falla al consultar usuarios.
type failingUsers struct{ repository.UserRepository }

func (failingUsers) GetByID(context.Context, string) (*entity.User, error) {
	return nil, errors.New("conexión reiniciada")
}

func TestCheckout_SesionDeCajeroInactivoSeRechaza(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, product("001", 10, 0, 10))
	now := time.Now()
	require.NoError(t, s.Users().Create(ctx, &entity.User{
		ID: cashier, Email: "caja1@tienda.co", Role: entity.RoleCajero, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.Users().Create(ctx, &entity.User{
		ID: "cajero-2", Email: "caja2@tienda.co", Role: entity.RoleCajero, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.Users().UpdateStatus(ctx, "cajero-2", entity.UserStatusInactive))

	runner := &countingRunner{inner: s}
	uc := sales.NewCheckoutUseCase(runner, nil, nil).WithUserRepository(s.Users())

	for _, id := range []string{"cajero-2", "no-existe"} {
		_, err := uc.Checkout(ctx, sales.CheckoutInput{Items: []sales.BasketItem{item("001", 1)}, CashierID: id})
		assert.ErrorIs(t, err, domain.ErrUnauthorized, id)
	}
	assert.Equal(t, 0, runner.calls)
	assert.Equal(t, 10, stockOf(t, s, "001"))

	res, err := uc.Checkout(ctx, basket(item("001", 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.SaleNumber)

	broken := sales.NewCheckoutUseCase(s, nil, nil).WithUserRepository(failingUsers{})
	_, err = broken.Checkout(ctx, basket(item("001", 1)))
	assert.ErrorIs(t, err, domain.ErrStorage)
}
