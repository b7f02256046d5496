package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/usecase"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminID = "8f6c2f0e-5a1b-4c3d-9e7f-0a1b2c3d4e5f"
	cajaID  = "1d2e3f40-5a6b-4c7d-8e9f-a0b1c2d3e4f5"
)

func TestUserUseCase_ListYEstado(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	now := time.Now()
	require.NoError(t, repo.Create(ctx, &entity.User{
		ID: adminID, Email: "admin@pos.co", Role: entity.RoleAdmin, Status: entity.UserStatusActive, CreatedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &entity.User{
		ID: cajaID, Email: "caja@pos.co", Role: entity.RoleCajero, Status: entity.UserStatusActive, CreatedAt: now,
	}))
	uc := usecase.NewUserUseCase(repo)

	list, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, cajaID, list.Items[0].ID)

	out, err := uc.SetStatus(ctx, adminID, cajaID, entity.UserStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusInactive, out.Status)

	list, err = uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)

	_, err = uc.SetStatus(ctx, adminID, adminID, entity.UserStatusInactive)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.SetStatus(ctx, adminID, cajaID, "suspendido")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.SetStatus(ctx, adminID, "no-es-uuid", entity.UserStatusActive)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = uc.SetStatus(ctx, adminID, "00000000-0000-4000-8000-000000000000", entity.UserStatusActive)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
