package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// UserUseCase administración de trabajadores (solo admin). El alta está en auth.RegisterUser.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// List lista trabajadores, los más recientes primero.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.Normalize()
	users, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  page.Response(),
	}, nil
}

// SetStatus activa o desactiva un trabajador. Un usuario inactivo no puede iniciar sesión ni
// registrar ventas con un token anterior. Nadie puede desactivarse a sí mismo.
func (uc *UserUseCase) SetStatus(ctx context.Context, actorID, userID, status string) (*dto.UserResponse, error) {
	if status != entity.UserStatusActive && status != entity.UserStatusInactive {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrUserNotFound
	}
	if actorID == userID && status == entity.UserStatusInactive {
		return nil, fmt.Errorf("%w: no puede desactivar su propia cuenta", domain.ErrInvalidInput)
	}
	if err := uc.repo.UpdateStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return entityToUserResponse(user), nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
