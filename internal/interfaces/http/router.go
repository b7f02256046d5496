package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/PuntoVenta-api/internal/application/auth"
	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/application/usecase"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/ws"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	ProductUC       *usecase.ProductUseCase
	UserUC          *usecase.UserUseCase
	AnalyticsUC     *usecase.AnalyticsUseCase
	RestockUC       *inventory.RestockUseCase
	Replenishment   *inventory.ReplenishmentUseCase
	CheckoutUC      *sales.CheckoutUseCase
	SalesQuery      *sales.QueryUseCase
	Receipt         *sales.ReceiptUseCase
	Hub             *ws.Hub // opcional: sin hub no se expone /ws
	JWTSecret       string
	CheckoutTimeout time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleCajero)
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", anyRole, authHandler.Me)
	protected.Post("/auth/register", adminOnly, authHandler.Register)

	// Users (admin)
	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Patch("/:id/status", userHandler.SetStatus)

	// Products: lectura para cajeros, escritura solo admin
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/:code", anyRole, productHandler.GetByCode)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:code", adminOnly, productHandler.Update)
	products.Delete("/:code", adminOnly, productHandler.Delete)

	// Inventory (admin)
	invGroup := protected.Group("/inventory", adminOnly)
	inventoryHandler := NewInventoryHandler(deps.RestockUC, deps.Replenishment)
	invGroup.Post("/restock", inventoryHandler.Restock)
	invGroup.Get("/movements/:code", inventoryHandler.ListMovements)
	invGroup.Get("/replenishment-list", inventoryHandler.GetReplenishmentList)
	invGroup.Get("/replenishment-list/pdf", inventoryHandler.GetLowStockPDF)

	// Sales: summary antes de /:number
	salesGroup := protected.Group("/sales")
	salesHandler := NewSalesHandler(deps.CheckoutUC, deps.SalesQuery, deps.Receipt, deps.CheckoutTimeout)
	salesGroup.Post("/checkout", anyRole, salesHandler.Checkout)
	salesGroup.Get("/summary", adminOnly, salesHandler.Summary)
	salesGroup.Get("/", adminOnly, salesHandler.ListSales)
	salesGroup.Get("/:number", anyRole, salesHandler.GetSale)
	salesGroup.Get("/:number/receipt.pdf", anyRole, salesHandler.ReceiptPDF)
	salesGroup.Get("/:number/receipt.xml", anyRole, salesHandler.ReceiptXML)

	// Analytics (admin)
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	protected.Get("/analytics/top-products", adminOnly, analyticsHandler.GetTopProducts)

	// Notificaciones en vivo
	if deps.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", QueryTokenMiddleware(deps.JWTSecret), websocket.New(deps.Hub.Handler()))
	}
}
