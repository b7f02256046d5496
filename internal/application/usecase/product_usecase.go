package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. Cost y Stock se manejan vía reposición y checkout.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto. Cost inicia en 0; Stock es el inventario inicial.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" || in.UnitPrice.IsNegative() || in.Stock < 0 || in.ReorderThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		Code:             code,
		Name:             name,
		UnitPrice:        in.UnitPrice,
		Cost:             decimal.Zero,
		Stock:            in.Stock,
		ReorderThreshold: in.ReorderThreshold,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByCode obtiene un producto por código. domain.ErrProductNotFound si no existe.
func (uc *ProductUseCase) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, precio o umbral. No permite modificar Cost ni Stock.
func (uc *ProductUseCase) Update(ctx context.Context, code string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.UnitPrice = *in.UnitPrice
	}
	if in.ReorderThreshold != nil {
		if *in.ReorderThreshold < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.ReorderThreshold = *in.ReorderThreshold
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos por código con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  page.Response(),
	}, nil
}

// Delete elimina un producto por código. Las ventas registradas no se tocan.
func (uc *ProductUseCase) Delete(ctx context.Context, code string) error {
	return uc.repo.Delete(ctx, strings.TrimSpace(code))
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		Code:             p.Code,
		Name:             p.Name,
		UnitPrice:        p.UnitPrice,
		Cost:             p.Cost,
		Stock:            p.Stock,
		ReorderThreshold: p.ReorderThreshold,
		LowStock:         p.IsLowStock(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
