// seed carga productos desde la exportación CSV del sistema anterior (ISO-8859-1,
// separador ';') y crea el administrador inicial.
//
// Uso: go run ./cmd/seed [ruta/productos.csv]
// Columnas: codigo;nombre;precio;stock;umbral. La primera fila es encabezado.
// Los productos cuyo código o nombre ya existe se omiten.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jhoicas/PuntoVenta-api/internal/application/auth"
	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/usecase"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/postgres"
	"github.com/jhoicas/PuntoVenta-api/pkg/config"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	csvPath := "productos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir CSV")
	}
	defer f.Close()

	products, err := readProducts(f)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("crear esquema")
	}

	if cfg.Admin.Email != "" {
		authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
			Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
		})
		created, err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador")
		}
		log.Info().Bool("created", created).Str("email", cfg.Admin.Email).Msg("administrador")
	}

	productUC := usecase.NewProductUseCase(postgres.NewProductRepository(pool))
	var inserted, skipped int
	for _, p := range products {
		if _, err := productUC.Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				skipped++
				continue
			}
			log.Fatal().Err(err).Str("code", p.Code).Msg("crear producto")
		}
		inserted++
	}
	log.Info().Int("inserted", inserted).Int("skipped", skipped).Msg("carga de productos terminada")
}

// readProducts decodifica el CSV legado. Los números usan formato es-CO (1.234,50).
func readProducts(r io.Reader) ([]dto.CreateProductRequest, error) {
	reader := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := make([]dto.CreateProductRequest, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 5 {
			return nil, fmt.Errorf("fila %d: se esperaban 5 columnas, hay %d", line, len(rec))
		}
		price, err := parseAmount(rec[2])
		if err != nil {
			return nil, fmt.Errorf("fila %d: precio: %w", line, err)
		}
		stock, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, fmt.Errorf("fila %d: stock: %w", line, err)
		}
		threshold, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("fila %d: umbral: %w", line, err)
		}
		out = append(out, dto.CreateProductRequest{
			Code:             strings.TrimSpace(rec[0]),
			Name:             strings.TrimSpace(rec[1]),
			UnitPrice:        price,
			Stock:            stock,
			ReorderThreshold: threshold,
		})
	}
	return out, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}
