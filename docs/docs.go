// Package docs registra la especificación Swagger de la API en swaggo/swag.
// La UI la sirve desde docs/swagger.json (gofiber/contrib/swagger).
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var docTemplate string

// SwaggerInfo metadatos exportados de la especificación.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Punto de Venta API",
	Description:      "Checkout transaccional, inventario y comprobantes de venta.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
