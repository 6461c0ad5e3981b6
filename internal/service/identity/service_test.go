package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/jwt"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/memory"
)

const testSecret = "test-secret-key-for-jwt"

func newTestService(t *testing.T) (*IdentityServiceImpl, *memory.Gateway) {
	t.Helper()
	gw := memory.NewGateway()
	require.NoError(t, gw.Initialize(context.Background()))

	svc := NewIdentityService(gw, jwt.NewJWTService(testSecret, "1h")).(*IdentityServiceImpl)
	svc.hashCost = bcrypt.MinCost
	return svc, gw
}

func createEmployee(t *testing.T, svc *IdentityServiceImpl, cpf string) identity.IdentityResponse {
	t.Helper()
	resp, err := svc.CreateEmployee(context.Background(), identity.CreateEmployeeRequest{CPF: cpf, Name: "Employee " + cpf})
	require.NoError(t, err)
	return resp
}

func TestIdentityService_LoginDefaultAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Login(context.Background(), identity.LoginRequest{CPF: storage.DefaultAdminCPF, Password: storage.DefaultAdminPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.AccessTokenExpiresIn, int64(0))
	assert.Equal(t, identity.RoleAdmin, resp.Identity.Role)
}

func TestIdentityService_LoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, identity.LoginRequest{CPF: storage.DefaultAdminCPF, Password: "wrong"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)

	_, err = svc.Login(ctx, identity.LoginRequest{CPF: "99999999999", Password: "whatever"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredential)

	_, err = svc.Login(ctx, identity.LoginRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	emp := createEmployee(t, svc, "12345678901")
	_, err = svc.ToggleStatus(ctx, emp.ID)
	require.NoError(t, err)
	_, err = svc.Login(ctx, identity.LoginRequest{CPF: "12345678901", Password: "12345678901ponto"})
	assert.ErrorIs(t, err, identity.ErrIdentityInactive)
}

func TestIdentityService_CreateEmployee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	birth := "1990-05-17"
	email := ""
	resp, err := svc.CreateEmployee(ctx, identity.CreateEmployeeRequest{
		CPF:       "12345678901",
		Name:      "Ana Lima",
		BirthDate: &birth,
		Email:     &email,
	})
	require.NoError(t, err)
	assert.Equal(t, identity.RoleEmployee, resp.Role)
	assert.True(t, resp.Active)
	assert.True(t, resp.MustResetPassword)
	require.NotNil(t, resp.BirthDate)
	assert.Equal(t, "1990-05-17", *resp.BirthDate)
	assert.Nil(t, resp.Email)

	login, err := svc.Login(ctx, identity.LoginRequest{CPF: "12345678901", Password: "12345678901ponto"})
	require.NoError(t, err)
	assert.True(t, login.Identity.MustResetPassword)

	_, err = svc.CreateEmployee(ctx, identity.CreateEmployeeRequest{CPF: "12345678901", Name: "Dup"})
	assert.ErrorIs(t, err, identity.ErrCPFExists)

	_, err = svc.CreateEmployee(ctx, identity.CreateEmployeeRequest{CPF: "123", Name: "Short"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	employees, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}

func TestIdentityService_ToggleAndResetRequireEmployee(t *testing.T) {
	svc, gw := newTestService(t)
	ctx := context.Background()

	admin, err := gw.GetAdminIdentity(ctx)
	require.NoError(t, err)
	require.NotNil(t, admin)

	_, err = svc.ToggleStatus(ctx, admin.ID)
	assert.ErrorIs(t, err, identity.ErrNotAnEmployee)
	assert.ErrorIs(t, svc.ResetPassword(ctx, admin.ID), identity.ErrNotAnEmployee)

	_, err = svc.ToggleStatus(ctx, 999)
	assert.ErrorIs(t, err, identity.ErrIdentityNotFound)

	emp := createEmployee(t, svc, "12345678901")
	toggled, err := svc.ToggleStatus(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)
	toggled, err = svc.ToggleStatus(ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Active)
}

func TestIdentityService_ChangeAndResetPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	emp := createEmployee(t, svc, "12345678901")

	err := svc.ChangePassword(ctx, emp.ID, identity.ChangePasswordRequest{
		CurrentPassword: "nope",
		NewPassword:     "novasenha",
		ConfirmPassword: "novasenha",
	})
	assert.ErrorIs(t, err, identity.ErrWrongPassword)

	err = svc.ChangePassword(ctx, emp.ID, identity.ChangePasswordRequest{
		CurrentPassword: "12345678901ponto",
		NewPassword:     "novasenha",
		ConfirmPassword: "outra",
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	require.NoError(t, svc.ChangePassword(ctx, emp.ID, identity.ChangePasswordRequest{
		CurrentPassword: "12345678901ponto",
		NewPassword:     "novasenha",
		ConfirmPassword: "novasenha",
	}))

	me, err := svc.Me(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, me.MustResetPassword)

	_, err = svc.Login(ctx, identity.LoginRequest{CPF: "12345678901", Password: "novasenha"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, emp.ID))
	me, err = svc.Me(ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, me.MustResetPassword)

	_, err = svc.Login(ctx, identity.LoginRequest{CPF: "12345678901", Password: "12345678901ponto"})
	require.NoError(t, err)

	_, err = svc.Me(ctx, 999)
	assert.ErrorIs(t, err, identity.ErrIdentityNotFound)
}
