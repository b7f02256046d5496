// Package memory implementa los puertos de persistencia en memoria. Cada transacción toma un
// mutex global y trabaja sobre un overlay que solo se aplica al confirmar; un error lo descarta.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var (
	_ sales.CheckoutTxRunner = (*Store)(nil)
	_ inventory.TxRunner     = (*Store)(nil)
)

// Store estado confirmado. Solo se modifica con mu tomado.
type Store struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	lines     []*entity.SaleLineItem // orden de inserción
	sales     map[int64][]*entity.SaleLineItem
	lastSale  int64
	movements []*entity.StockMovement
	users     map[string]*entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		sales:    make(map[int64][]*entity.SaleLineItem),
		users:    make(map[string]*entity.User),
	}
}

// Products devuelve los repos fuera de transacción (cada operación es atómica por sí sola).
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Sales libro de ventas fuera de transacción (solo lectura en la práctica).
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

// Movements historial de reposiciones fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{s: s} }

// Users repos de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// RunCheckout ejecuta fn con repos atados a una transacción en memoria.
func (s *Store) RunCheckout(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.run(ctx, func(t *tx) error {
		return fn(&ProductRepo{s: s, tx: t}, &SaleRepo{s: s, tx: t})
	})
}

// RunInventory ejecuta fn con repos de productos y movimientos atados a una transacción.
func (s *Store) RunInventory(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) error) error {
	return s.run(ctx, func(t *tx) error {
		return fn(&ProductRepo{s: s, tx: t}, &StockMovementRepo{s: s, tx: t})
	})
}

func (s *Store) run(ctx context.Context, fn func(t *tx) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.begin()
	if err := fn(t); err != nil {
		return err
	}
	// vencido durante la tx: se descarta igual que un commit fallido
	if err := ctxErr(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.commit()
	return nil
}

// autocommit ejecuta fn en su propia transacción corta; se usa cuando el repo no está atado a una tx.
func (s *Store) autocommit(ctx context.Context, fn func(t *tx) error) error {
	return s.run(ctx, fn)
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// tx overlay de escrituras pendientes sobre el estado confirmado.
type tx struct {
	s         *Store
	products  map[string]*entity.Product // nil = borrado en esta tx
	lines     []*entity.SaleLineItem
	movements []*entity.StockMovement
	users     []*entity.User
}

func (s *Store) begin() *tx {
	return &tx{s: s, products: make(map[string]*entity.Product)}
}

func (t *tx) product(code string) (*entity.Product, bool) {
	if p, ok := t.products[code]; ok {
		return p, p != nil
	}
	p, ok := t.s.products[code]
	return p, ok
}

// productCodes códigos visibles en la tx, ordenados.
func (t *tx) productCodes() []string {
	seen := make(map[string]bool, len(t.s.products)+len(t.products))
	var codes []string
	for code := range t.s.products {
		if _, ok := t.product(code); ok && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	for code, p := range t.products {
		if p != nil && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func (t *tx) saleLines(number int64) []*entity.SaleLineItem {
	lines := append([]*entity.SaleLineItem(nil), t.s.sales[number]...)
	for _, l := range t.lines {
		if l.SaleNumber == number {
			lines = append(lines, l)
		}
	}
	return lines
}

func (t *tx) allLines() []*entity.SaleLineItem {
	return append(append([]*entity.SaleLineItem(nil), t.s.lines...), t.lines...)
}

func (t *tx) lastSale() int64 {
	last := t.s.lastSale
	for _, l := range t.lines {
		if l.SaleNumber > last {
			last = l.SaleNumber
		}
	}
	return last
}

func (t *tx) userBy(match func(u *entity.User) bool) *entity.User {
	// la copia más reciente gana
	for i := len(t.users) - 1; i >= 0; i-- {
		if match(t.users[i]) {
			return t.users[i]
		}
	}
	for _, u := range t.s.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (t *tx) commit() {
	s := t.s
	for code, p := range t.products {
		if p == nil {
			delete(s.products, code)
			continue
		}
		s.products[code] = p
	}
	for _, l := range t.lines {
		s.lines = append(s.lines, l)
		s.sales[l.SaleNumber] = append(s.sales[l.SaleNumber], l)
		if l.SaleNumber > s.lastSale {
			s.lastSale = l.SaleNumber
		}
	}
	s.movements = append(s.movements, t.movements...)
	for _, u := range t.users {
		s.users[u.ID] = u
	}
}
