package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/PuntoVenta-api/internal/application/auth"
	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/sales"
	"github.com/jhoicas/PuntoVenta-api/internal/application/usecase"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/PuntoVenta-api/internal/infrastructure/pdf"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/postgres"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/ws"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/xmlreceipt"
	httpRouter "github.com/jhoicas/PuntoVenta-api/internal/interfaces/http"
	"github.com/jhoicas/PuntoVenta-api/pkg/config"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"

	_ "github.com/jhoicas/PuntoVenta-api/docs"
)

// storage repositorios y runners transaccionales del driver elegido.
type storage struct {
	products    repository.ProductRepository
	sales       repository.SaleRepository
	movements   repository.StockMovementRepository
	users       repository.UserRepository
	checkoutTx  sales.CheckoutTxRunner
	inventoryTx inventory.TxRunner
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			products:    store.Products(),
			sales:       store.Sales(),
			movements:   store.Movements(),
			users:       store.Users(),
			checkoutTx:  store,
			inventoryTx: store,
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	txRunner := postgres.NewTxRunner(pool)
	return &storage{
		products:    postgres.NewProductRepository(pool),
		sales:       postgres.NewSaleRepository(pool),
		movements:   postgres.NewStockMovementRepository(pool),
		users:       postgres.NewUserRepository(pool),
		checkoutTx:  txRunner,
		inventoryTx: txRunner,
		close:       pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.Admin.Email != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("email", cfg.Admin.Email).Msg("administrador inicial creado")
		}
	}

	// Notificaciones en vivo: el checkout publica después del commit
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	storeInfo := sales.StoreInfo{
		Name:    cfg.Store.Name,
		TaxID:   cfg.Store.TaxID,
		Address: cfg.Store.Address,
	}
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	checkoutUC := sales.NewCheckoutUseCase(store.checkoutTx, hub, log).WithUserRepository(store.users)
	queryUC := sales.NewQueryUseCase(store.sales, store.products)
	receiptUC := sales.NewReceiptUseCase(store.sales, store.products, pdfGenerator, xmlreceipt.NewBuilder(), storeInfo)
	productUC := usecase.NewProductUseCase(store.products)
	userUC := usecase.NewUserUseCase(store.users)
	analyticsUC := usecase.NewAnalyticsUseCase(store.sales)
	restockUC := inventory.NewRestockUseCase(store.inventoryTx, store.movements, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.products, pdfGenerator, storeInfo.Name)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		UnescapePath: true,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Punto de Venta API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.StorageDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		ProductUC:       productUC,
		UserUC:          userUC,
		AnalyticsUC:     analyticsUC,
		RestockUC:       restockUC,
		Replenishment:   replenishmentUC,
		CheckoutUC:      checkoutUC,
		SalesQuery:      queryUC,
		Receipt:         receiptUC,
		Hub:             hub,
		JWTSecret:       cfg.JWT.Secret,
		CheckoutTimeout: cfg.Checkout.Timeout,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
