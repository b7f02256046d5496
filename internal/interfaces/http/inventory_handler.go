package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
)

// InventoryHandler maneja reposiciones y reportes de inventario (protegido).
type InventoryHandler struct {
	restock       *inventory.RestockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(restock *inventory.RestockUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{restock: restock, replenishment: replenishment}
}

// Restock godoc
// @Summary      Registrar reposición de mercancía
// @Description  Suma stock y recalcula el costo promedio ponderado en una sola transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestockRequest  true  "code, quantity, unitCost, provider"
// @Success      201   {object}  dto.RestockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/restock [post]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RestockRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.restock.RestockFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de reposiciones de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        code    path   string  true   "Código del producto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.StockMovementResponse
// @Router       /api/inventory/movements/{code} [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	out, err := h.restock.ListMovements(c.UserContext(), c.Params("code"), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos por debajo de su umbral de reorden con la cantidad sugerida,
//
//	el de mayor déficit primero.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// GetLowStockPDF godoc
// @Summary      Reporte PDF de bajo stock
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list/pdf [get]
func (h *InventoryHandler) GetLowStockPDF(c *fiber.Ctx) error {
	body, filename, err := h.replenishment.LowStockPDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(body)
}
