package sales

import (
	"context"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// CheckoutTxRunner ejecuta fn dentro de una transacción con repos de inventario y libro de ventas
// atados a ella. Commit si fn retorna nil; Rollback en cualquier otro caso.
type CheckoutTxRunner interface {
	RunCheckout(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// StoreInfo datos del local impresos en los comprobantes.
type StoreInfo struct {
	Name    string
	TaxID   string
	Address string
}

// SaleLineForReceipt línea de venta enriquecida con el nombre del producto.
type SaleLineForReceipt struct {
	entity.SaleLineItem
	ProductName string
}

// ReceiptPDFGenerator genera el PDF del comprobante de una venta confirmada.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, store StoreInfo, sale *entity.Sale, lines []SaleLineForReceipt) ([]byte, error)
}

// ReceiptXMLBuilder genera la versión XML del comprobante.
type ReceiptXMLBuilder interface {
	BuildReceiptXML(store StoreInfo, sale *entity.Sale, lines []SaleLineForReceipt) ([]byte, error)
}
