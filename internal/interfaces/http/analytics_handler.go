package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/PuntoVenta-api/internal/application/usecase"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
)

// AnalyticsHandler maneja los endpoints de rentabilidad por producto.
type AnalyticsHandler struct {
	uc  *usecase.AnalyticsUseCase
	now func() time.Time
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *usecase.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc, now: time.Now}
}

// GetTopProducts godoc
// @Summary      Ranking de productos por ingreso (Pareto 80/20)
// @Description  Unidades, ingreso, costo y margen bruto por producto con el corte Pareto
// @Description  sobre el ingreso total del período.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from   query  string  false  "Inicio (YYYY-MM-DD). Default: primer día del mes."
// @Param        to     query  string  false  "Fin inclusive (YYYY-MM-DD). Default: hoy."
// @Param        limit  query  int     false  "Máx. productos en el ranking (default 20, max 200)."
// @Success      200  {object}  dto.TopProductsReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/analytics/top-products [get]
func (h *AnalyticsHandler) GetTopProducts(c *fiber.Ctx) error {
	today := h.now().UTC().Truncate(24 * time.Hour)
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := today

	if s := strings.TrimSpace(c.Query("from")); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return writeError(c, domain.ErrInvalidInput)
		}
		from = d
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return writeError(c, domain.ErrInvalidInput)
		}
		to = d
	}

	report, err := h.uc.TopProducts(c.UserContext(), from, to.AddDate(0, 0, 1), c.QueryInt("limit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
