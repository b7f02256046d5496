package dto

// Límites de paginación de los listados (productos, movimientos, usuarios).
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest ventana limit/offset de un listado.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize lleva Limit a [1, MaxPageLimit] (DefaultPageLimit si no vino) y Offset a >= 0.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Response eco de la ventana aplicada.
func (p PageRequest) Response() PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset}
}

type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error de la API. Code es estable (VALIDATION, PRODUCT_NOT_FOUND,
// STORAGE_ERROR, ...); Message es para mostrar al cajero.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
