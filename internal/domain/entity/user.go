package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin  = "admin"
	RoleCajero = "cajero"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un trabajador del punto de venta.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, cajero
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
