package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// ReceiptUseCase genera los comprobantes (PDF y XML) de ventas ya confirmadas.
// Solo lee datos comprometidos: nunca se invoca dentro de la transacción del checkout.
type ReceiptUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	pdf         ReceiptPDFGenerator
	xml         ReceiptXMLBuilder
	store       StoreInfo
}

// NewReceiptUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReceiptUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	pdf ReceiptPDFGenerator,
	xml ReceiptXMLBuilder,
	store StoreInfo,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		pdf:         pdf,
		xml:         xml,
		store:       store,
	}
}

// ReceiptPDF devuelve (pdfBytes, filename). domain.ErrSaleNotFound si la venta no existe.
func (uc *ReceiptUseCase) ReceiptPDF(ctx context.Context, saleNumber int64) ([]byte, string, error) {
	sale, lines, err := uc.load(ctx, saleNumber)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.pdf.GenerateReceiptPDF(ctx, uc.store, sale, lines)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: generar pdf: %w", err)
	}
	return pdfBytes, fmt.Sprintf("venta_%06d.pdf", saleNumber), nil
}

// ReceiptXML devuelve (xmlBytes, filename).
func (uc *ReceiptUseCase) ReceiptXML(ctx context.Context, saleNumber int64) ([]byte, string, error) {
	sale, lines, err := uc.load(ctx, saleNumber)
	if err != nil {
		return nil, "", err
	}
	xmlBytes, err := uc.xml.BuildReceiptXML(uc.store, sale, lines)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: generar xml: %w", err)
	}
	return xmlBytes, fmt.Sprintf("venta_%06d.xml", saleNumber), nil
}

func (uc *ReceiptUseCase) load(ctx context.Context, saleNumber int64) (*entity.Sale, []SaleLineForReceipt, error) {
	if saleNumber <= 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetBySaleNumber(ctx, saleNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("receipt: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, nil, domain.ErrSaleNotFound
	}
	lines, err := enrichLines(ctx, uc.productRepo, sale)
	if err != nil {
		return nil, nil, fmt.Errorf("receipt: obtener productos: %w", err)
	}
	return sale, lines, nil
}
