package auth_test

import (
	"context"
	"testing"

	"github.com/jhoicas/PuntoVenta-api/internal/application/auth"
	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/memory"
	"github.com/jhoicas/PuntoVenta-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func newUseCase() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewStore().Users(), auth.JWTConfig{
		Secret: secret, ExpMinutes: 5, Issuer: "test",
	}).WithHashCost(bcrypt.MinCost)
}

func TestRegisterYLogin(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "Caja1@Tienda.co", Password: "secreta123"})
	require.NoError(t, err)
	assert.Equal(t, "caja1@tienda.co", user.Email)
	assert.Equal(t, entity.RoleCajero, user.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "caja1@tienda.co", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "caja1@tienda.co", Password: "secreta123"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, entity.RoleCajero, role)

	me, err := uc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, me.Email)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "secreta123"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.co", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@b.co", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegister_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.co", Password: "secreta123", Role: "bodeguero"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEnsureAdmin_Idempotente(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	created, err := uc.EnsureAdmin(ctx, "admin@tienda.co", "admin12345")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "admin@tienda.co", "admin12345")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := uc.Login(ctx, dto.LoginRequest{Email: "admin@tienda.co", Password: "admin12345"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.User.Role)
}
