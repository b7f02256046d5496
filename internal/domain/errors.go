package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrProductNotFound    = errors.New("producto no encontrado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrSaleNotFound       = errors.New("venta no encontrada")

	// ErrStorage agrupa fallos de almacenamiento (conexión, conflicto de serialización,
	// deadlock, commit). Nada quedó confirmado, el caller puede reintentar.
	ErrStorage = errors.New("error de almacenamiento")
)
