// Package pdf genera los documentos imprimibles del punto de venta con Maroto v2:
// el comprobante de una venta y el reporte de reposición.
//
// Layout del comprobante (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del local + NIT  │  Venta N° + Fecha        │
//	│  Dirección / Cajero                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Código | Producto | P.Unit | Subtotal         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                      │
//	│  QR (venta + total) + leyenda                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var moneyPrinter = message.NewPrinter(language.Spanish)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa sales.ReceiptPDFGenerator e inventory.LowStockPDFGenerator.
type MarotoPDFGenerator struct{}

var (
	_ sales.ReceiptPDFGenerator      = (*MarotoPDFGenerator)(nil)
	_ inventory.LowStockPDFGenerator = (*MarotoPDFGenerator)(nil)
)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

func newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

// GenerateReceiptPDF genera el comprobante de una venta confirmada.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(
	_ context.Context,
	store sales.StoreInfo,
	sale *entity.Sale,
	lines []sales.SaleLineForReceipt,
) ([]byte, error) {
	m := newDocument(fmt.Sprintf("Venta %06d", sale.Number), store.Name)

	m.AddRows(receiptHeaderRow(store, sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(receiptTableHeaderRow())
	m.AddRows(receiptDetailRows(lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(receiptTotalRow(sale.Total()))
	m.AddRows(line.NewRow(3))
	m.AddRows(receiptFooterRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateLowStockPDF genera el reporte de productos bajo el umbral de reorden.
func (g *MarotoPDFGenerator) GenerateLowStockPDF(_ context.Context, report inventory.LowStockReport) ([]byte, error) {
	m := newDocument("Reporte de reposición", report.StoreName)

	m.AddRows(row.New(16).Add(
		col.New(8).Add(
			text.New(nonEmpty(report.StoreName, "Punto de Venta"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("PRODUCTOS BAJO UMBRAL DE REORDEN", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(text.New("Generado: "+report.GeneratedAt, props.Text{
			Size: 8, Align: align.Right, Top: 2, Color: colorGray,
		})),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if len(report.Items) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(text.New(
			"Ningún producto está por debajo de su umbral.",
			props.Text{Size: 9, Align: align.Center, Top: 3, Color: colorGray},
		))))
	} else {
		m.AddRows(lowStockHeaderRow())
		for _, item := range report.Items {
			m.AddRows(lowStockRow(item))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones del comprobante ────────────────────────────────────────────────

func receiptHeaderRow(store sales.StoreInfo, sale *entity.Sale) core.Row {
	return row.New(24).Add(
		col.New(7).Add(
			text.New(nonEmpty(store.Name, "Punto de Venta"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+nonEmpty(store.TaxID, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
			text.New(nonEmpty(store.Address, ""), props.Text{
				Size: 8, Top: 15, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", sale.Number), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+sale.Date.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
			text.New("Cajero: "+sale.CashierID, props.Text{
				Size: 8, Align: align.Right, Top: 19, Color: colorGray,
			}),
		),
	)
}

func receiptTableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Código", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func receiptDetailRows(lines []sales.SaleLineForReceipt) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.ProductCode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatMoney(l.UnitPriceAtSale), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(formatMoney(l.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func receiptTotalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(formatMoney(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func receiptFooterRow(sale *entity.Sale) core.Row {
	qr := fmt.Sprintf("venta=%d;total=%s;fecha=%s", sale.Number, sale.Total().StringFixed(2), sale.Date.Format("2006-01-02T15:04:05Z07:00"))
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Gracias por su compra.", props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3, Color: colorPrimary,
			}),
			text.New("Conserve este comprobante para cambios y devoluciones.", props.Text{
				Size: 8, Top: 14, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── Secciones del reporte ────────────────────────────────────────────────────

func lowStockHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Código", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Stock", 1, align.Right),
		h("Umbral", 1, align.Right),
		h("Pedir", 1, align.Right),
		h("Costo est.", 2, align.Right),
	)
}

func lowStockRow(item inventory.ReportItem) core.Row {
	p := item.Product
	stockStyle := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
	if p.Stock == 0 {
		stockStyle.Color = colorAlert
		stockStyle.Style = fontstyle.Bold
	}
	estimated := p.Cost.Mul(decimal.NewFromInt(int64(item.SuggestedOrderQty)))
	return row.New(7).Add(
		col.New(1).Add(text.New(strconv.Itoa(item.Priority), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(p.Code, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(4).Add(text.New(p.Name, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(1).Add(text.New(strconv.Itoa(p.Stock), stockStyle)),
		col.New(1).Add(text.New(strconv.Itoa(p.ReorderThreshold), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(1).Add(text.New(strconv.Itoa(item.SuggestedOrderQty), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(2).Add(text.New(formatMoney(estimated), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney redondea a pesos y agrupa miles con la convención en español: 25000 → "$25.000".
func formatMoney(d decimal.Decimal) string {
	return moneyPrinter.Sprintf("$%d", d.Round(0).IntPart())
}
