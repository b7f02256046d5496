package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.UserRepository          = (*UserRepo)(nil)
)

// exec corre fn en la tx atada o en una propia.
func exec(ctx context.Context, s *Store, t *tx, fn func(t *tx) error) error {
	if t != nil {
		if err := ctxErr(ctx); err != nil {
			return err
		}
		return fn(t)
	}
	return s.autocommit(ctx, fn)
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx *tx
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	return exec(ctx, r.s, r.tx, func(t *tx) error {
		if _, ok := t.product(product.Code); ok {
			return domain.ErrDuplicate
		}
		for _, code := range t.productCodes() {
			if p, _ := t.product(code); strings.EqualFold(p.Name, product.Name) {
				return domain.ErrDuplicate
			}
		}
		t.products[product.Code] = cloneProduct(product)
		return nil
	})
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		if p, ok := t.product(code); ok {
			out = cloneProduct(p)
		}
		return nil
	})
	return out, err
}

// GetByCodeForUpdate el mutex de la tx ya excluye a otros escritores.
func (r *ProductRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Product, error) {
	return r.GetByCode(ctx, code)
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	return r.modify(ctx, product.Code, func(t *tx, p *entity.Product) error {
		for _, code := range t.productCodes() {
			other, _ := t.product(code)
			if code != p.Code && strings.EqualFold(other.Name, product.Name) {
				return domain.ErrDuplicate
			}
		}
		p.Name = product.Name
		p.UnitPrice = product.UnitPrice
		p.ReorderThreshold = product.ReorderThreshold
		p.UpdatedAt = product.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) UpdateStock(ctx context.Context, code string, stock int) error {
	return r.modify(ctx, code, func(_ *tx, p *entity.Product) error {
		if stock < 0 {
			return domain.ErrInsufficientStock
		}
		p.Stock = stock
		p.UpdatedAt = time.Now()
		return nil
	})
}

func (r *ProductRepo) UpdateCost(ctx context.Context, code string, cost decimal.Decimal) error {
	return r.modify(ctx, code, func(_ *tx, p *entity.Product) error {
		p.Cost = cost
		p.UpdatedAt = time.Now()
		return nil
	})
}

// modify aplica fn sobre una copia y la deja en el overlay.
func (r *ProductRepo) modify(ctx context.Context, code string, fn func(t *tx, p *entity.Product) error) error {
	return exec(ctx, r.s, r.tx, func(t *tx) error {
		p, ok := t.product(code)
		if !ok {
			return domain.ErrProductNotFound
		}
		c := cloneProduct(p)
		if err := fn(t, c); err != nil {
			return err
		}
		t.products[code] = c
		return nil
	})
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		codes := t.productCodes()
		for i := offset; i < len(codes) && len(out) < limit; i++ {
			p, _ := t.product(codes[i])
			out = append(out, cloneProduct(p))
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) ListBelowReorder(ctx context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		for _, code := range t.productCodes() {
			if p, _ := t.product(code); p.IsLowStock() {
				out = append(out, cloneProduct(p))
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReorderThreshold-out[i].Stock > out[j].ReorderThreshold-out[j].Stock
	})
	return out, err
}

func (r *ProductRepo) Delete(ctx context.Context, code string) error {
	return exec(ctx, r.s, r.tx, func(t *tx) error {
		if _, ok := t.product(code); !ok {
			return domain.ErrProductNotFound
		}
		t.products[code] = nil
		return nil
	})
}

// SaleRepo libro de ventas en memoria.
type SaleRepo struct {
	s  *Store
	tx *tx
}

func (r *SaleRepo) NextSaleNumber(ctx context.Context) (int64, error) {
	var next int64
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		next = t.lastSale() + 1
		return nil
	})
	return next, err
}

func (r *SaleRepo) AppendLine(ctx context.Context, line *entity.SaleLineItem) error {
	return exec(ctx, r.s, r.tx, func(t *tx) error {
		l := *line
		t.lines = append(t.lines, &l)
		return nil
	})
}

func (r *SaleRepo) GetBySaleNumber(ctx context.Context, saleNumber int64) (*entity.Sale, error) {
	var out *entity.Sale
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		lines := t.saleLines(saleNumber)
		if len(lines) > 0 {
			out = toSale(lines)
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		var current []*entity.SaleLineItem
		flush := func() {
			if len(current) > 0 {
				out = append(out, toSale(current))
				current = nil
			}
		}
		for _, l := range t.allLines() {
			if l.Timestamp.Before(from) || !l.Timestamp.Before(to) {
				continue
			}
			if len(current) > 0 && current[0].SaleNumber != l.SaleNumber {
				flush()
			}
			current = append(current, l)
		}
		flush()
		return nil
	})
	return out, err
}

func (r *SaleRepo) DailySummary(ctx context.Context, from, to time.Time) ([]entity.DailySales, error) {
	var out []entity.DailySales
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		byDay := make(map[time.Time]*entity.DailySales)
		seen := make(map[time.Time]map[int64]bool)
		for _, l := range t.allLines() {
			if l.Timestamp.Before(from) || !l.Timestamp.Before(to) {
				continue
			}
			ts := l.Timestamp.UTC()
			day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			d, ok := byDay[day]
			if !ok {
				d = &entity.DailySales{Day: day, Revenue: decimal.Zero}
				byDay[day] = d
				seen[day] = make(map[int64]bool)
			}
			if !seen[day][l.SaleNumber] {
				seen[day][l.SaleNumber] = true
				d.SaleCount++
			}
			d.Units += l.Quantity
			d.Revenue = d.Revenue.Add(l.Subtotal())
		}
		for _, d := range byDay {
			out = append(out, *d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
		return nil
	})
	return out, err
}

func (r *SaleRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]entity.ProductSales, error) {
	var out []entity.ProductSales
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		byCode := make(map[string]*entity.ProductSales)
		for _, l := range t.allLines() {
			if l.Timestamp.Before(from) || !l.Timestamp.Before(to) {
				continue
			}
			ps, ok := byCode[l.ProductCode]
			if !ok {
				ps = &entity.ProductSales{Code: l.ProductCode, Revenue: decimal.Zero, Cost: decimal.Zero}
				if p, found := t.product(l.ProductCode); found {
					ps.Name = p.Name
					ps.Cost = p.Cost
				}
				byCode[l.ProductCode] = ps
			}
			ps.Units += l.Quantity
			ps.Revenue = ps.Revenue.Add(l.Subtotal())
		}
		for _, ps := range byCode {
			out = append(out, *ps)
		}
		sort.Slice(out, func(i, j int) bool {
			if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
				return c > 0
			}
			return out[i].Code < out[j].Code
		})
		if len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func toSale(lines []*entity.SaleLineItem) *entity.Sale {
	sale := &entity.Sale{
		Number:    lines[0].SaleNumber,
		CashierID: lines[0].CashierID,
		Date:      lines[0].Timestamp,
	}
	for _, l := range lines {
		c := *l
		sale.Lines = append(sale.Lines, &c)
	}
	return sale
}

// StockMovementRepo historial de reposiciones en memoria.
type StockMovementRepo struct {
	s  *Store
	tx *tx
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	return exec(ctx, r.s, r.tx, func(t *tx) error {
		c := *m
		t.movements = append(t.movements, &c)
		return nil
	})
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, productCode string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		all := append(append([]*entity.StockMovement(nil), t.s.movements...), t.movements...)
		skipped := 0
		// más recientes primero
		for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
			if all[i].ProductCode != productCode {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			c := *all[i]
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	s  *Store
	tx *tx
}

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return exec(ctx, r.s, r.tx, func(t *tx) error {
		if t.userBy(func(u *entity.User) bool { return strings.EqualFold(u.Email, user.Email) }) != nil {
			return domain.ErrEmailAlreadyExists
		}
		c := *user
		t.users = append(t.users, &c)
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.find(ctx, func(u *entity.User) bool { return u.ID == id })
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.find(ctx, func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepo) find(ctx context.Context, match func(u *entity.User) bool) (*entity.User, error) {
	var out *entity.User
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		if u := t.userBy(match); u != nil {
			c := *u
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	err := exec(ctx, r.s, r.tx, func(t *tx) error {
		byID := make(map[string]*entity.User, len(t.s.users)+len(t.users))
		for id, u := range t.s.users {
			byID[id] = u
		}
		for _, u := range t.users {
			byID[u.ID] = u
		}
		all := make([]*entity.User, 0, len(byID))
		for _, u := range byID {
			all = append(all, u)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
		for i := offset; i < len(all) && len(out) < limit; i++ {
			c := *all[i]
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return exec(ctx, r.s, r.tx, func(t *tx) error {
		u := t.userBy(func(u *entity.User) bool { return u.ID == id })
		if u == nil {
			return domain.ErrUserNotFound
		}
		c := *u
		c.Status = status
		c.UpdatedAt = time.Now()
		t.users = append(t.users, &c)
		return nil
	})
}
