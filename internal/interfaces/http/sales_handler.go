package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
)

const dateLayout = "2006-01-02"

// SalesHandler expone checkout, consultas de ventas y comprobantes.
type SalesHandler struct {
	checkout *sales.CheckoutUseCase
	query    *sales.QueryUseCase
	receipt  *sales.ReceiptUseCase
	timeout  time.Duration
}

// NewSalesHandler construye el handler. timeout <= 0 deja el contexto de la petición sin límite propio.
func NewSalesHandler(checkout *sales.CheckoutUseCase, query *sales.QueryUseCase, receipt *sales.ReceiptUseCase, timeout time.Duration) *SalesHandler {
	return &SalesHandler{checkout: checkout, query: query, receipt: receipt, timeout: timeout}
}

// Checkout godoc
// @Summary      Registrar una venta (checkout)
// @Description  Descuenta inventario y registra las líneas de venta en una sola transacción.
// @Description  Si cualquier línea falla no se confirma nada. 503 indica que es seguro reintentar.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "items: [{code, cantidad}]"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.CheckoutResponse
// @Failure      401   {object}  dto.CheckoutResponse
// @Failure      404   {object}  dto.CheckoutResponse
// @Failure      409   {object}  dto.CheckoutResponse
// @Failure      503   {object}  dto.CheckoutResponse
// @Router       /api/sales/checkout [post]
func (h *SalesHandler) Checkout(c *fiber.Ctx) error {
	cashierID := GetUserID(c)
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return checkoutFailure(c, fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}, "")
	}
	if in.CashierID != "" && in.CashierID != cashierID {
		return checkoutFailure(c, fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "el cajero no coincide con la sesión"}, "")
	}

	items := make([]sales.BasketItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, sales.BasketItem{ProductCode: it.Code, Quantity: it.Cantidad})
	}

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.checkout.Checkout(ctx, sales.CheckoutInput{Items: items, CashierID: cashierID})
	if err != nil {
		var lineErr *sales.LineError
		productCode := ""
		if errors.As(err, &lineErr) {
			productCode = lineErr.ProductCode
		}
		status, body := errorStatus(err)
		if lineErr != nil {
			body.Message = lineErr.Error()
		}
		return checkoutFailure(c, status, body, productCode)
	}

	resp := dto.CheckoutResponse{
		Status:     "success",
		SaleNumber: res.SaleNumber,
		LowStock:   make([]dto.LowStockItemDTO, 0, len(res.LowStock)),
		Items:      make([]dto.SaleLineResponse, 0, len(res.Lines)),
		Total:      &res.Total,
	}
	for _, l := range res.LowStock {
		resp.LowStock = append(resp.LowStock, dto.LowStockItemDTO{
			Code:             l.ProductCode,
			Name:             l.Name,
			Stock:            l.Stock,
			ReorderThreshold: l.ReorderThreshold,
		})
	}
	for _, l := range res.Lines {
		resp.Items = append(resp.Items, dto.SaleLineResponse{
			ProductCode: l.ProductCode,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPriceAtSale,
			Subtotal:    l.Subtotal(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func checkoutFailure(c *fiber.Ctx, status int, body dto.ErrorResponse, productCode string) error {
	return c.Status(status).JSON(dto.CheckoutResponse{
		Status:      "failure",
		Error:       &body,
		ProductCode: productCode,
		Retryable:   status == fiber.StatusServiceUnavailable,
	})
}

// GetSale godoc
// @Summary      Obtener una venta por número
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        number  path  int  true  "Número de venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{number} [get]
func (h *SalesHandler) GetSale(c *fiber.Ctx) error {
	number, err := saleNumberParam(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.query.GetSale(c.UserContext(), number)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListSales godoc
// @Summary      Ventas en un rango de fechas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Desde (YYYY-MM-DD, inclusive)"
// @Param        to    query  string  true  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200  {array}   dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SalesHandler) ListSales(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.query.ListSales(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen diario de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Desde (YYYY-MM-DD, inclusive)"
// @Param        to    query  string  true  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200  {object}  dto.SalesSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/summary [get]
func (h *SalesHandler) Summary(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.query.DailySummary(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	out.To = to.AddDate(0, 0, -1).Format(dateLayout)
	return c.JSON(out)
}

// ReceiptPDF godoc
// @Summary      Comprobante PDF de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        number  path  int  true  "Número de venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{number}/receipt.pdf [get]
func (h *SalesHandler) ReceiptPDF(c *fiber.Ctx) error {
	number, err := saleNumberParam(c)
	if err != nil {
		return writeError(c, err)
	}
	body, filename, err := h.receipt.ReceiptPDF(c.UserContext(), number)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(body)
}

// ReceiptXML godoc
// @Summary      Comprobante XML de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/xml
// @Param        number  path  int  true  "Número de venta"
// @Success      200  {string}  string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{number}/receipt.xml [get]
func (h *SalesHandler) ReceiptXML(c *fiber.Ctx) error {
	number, err := saleNumberParam(c)
	if err != nil {
		return writeError(c, err)
	}
	body, filename, err := h.receipt.ReceiptXML(c.UserContext(), number)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}

func saleNumberParam(c *fiber.Ctx) (int64, error) {
	n, err := c.ParamsInt("number")
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return int64(n), nil
}

// dateRange lee from/to (días UTC). to es inclusive: se consulta [from, to+1d).
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, strings.TrimSpace(c.Query("from")))
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidInput
	}
	to, err := time.Parse(dateLayout, strings.TrimSpace(c.Query("to")))
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidInput
	}
	return from, to.AddDate(0, 0, 1), nil
}
