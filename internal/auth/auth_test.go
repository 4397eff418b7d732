package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimeda/stretcher-service/internal/config"
	"github.com/dimeda/stretcher-service/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		TokenExpiry:        time.Hour,
		AdminPassword:      "admin-pass",
		TechnicianPassword: "tech-pass",
		CustomerPassword:   "customer-pass",
	}
}

func TestNewService(t *testing.T) {
	service, err := NewService(testConfig())
	require.NoError(t, err)
	assert.NotNil(t, service)
	assert.Len(t, service.passwords, 3)
}

func TestService_Login(t *testing.T) {
	service, err := NewService(testConfig())
	require.NoError(t, err)

	token, err := service.Login(models.RoleAdmin, "admin-pass")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = service.Login(models.RoleAdmin, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(models.Role("ghost"), "admin-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LoginPerRolePassword(t *testing.T) {
	service, err := NewService(testConfig())
	require.NoError(t, err)

	// each portal has its own password
	_, err = service.Login(models.RoleTechnician, "tech-pass")
	assert.NoError(t, err)
	_, err = service.Login(models.RoleTechnician, "admin-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Validate(t *testing.T) {
	service, err := NewService(testConfig())
	require.NoError(t, err)

	token, err := service.Issue(models.RoleCustomer)
	require.NoError(t, err)

	role, err := service.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, role)

	// Bearer prefix is accepted
	role, err = service.Validate("Bearer " + token)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, role)
}

func TestService_ValidateInvalidToken(t *testing.T) {
	service, err := NewService(testConfig())
	require.NoError(t, err)

	_, err = service.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateWrongSecret(t *testing.T) {
	serviceA, err := NewService(testConfig())
	require.NoError(t, err)

	other := testConfig()
	other.JWTSecret = "other-secret"
	serviceB, err := NewService(other)
	require.NoError(t, err)

	token, err := serviceA.Issue(models.RoleAdmin)
	require.NoError(t, err)

	_, err = serviceB.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.TokenExpiry = -time.Minute
	service, err := NewService(cfg)
	require.NoError(t, err)

	token, err := service.Issue(models.RoleAdmin)
	require.NoError(t, err)

	_, err = service.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_Revoke(t *testing.T) {
	service, err := NewService(testConfig())
	require.NoError(t, err)

	token, err := service.Issue(models.RoleAdmin)
	require.NoError(t, err)

	_, err = service.Validate(token)
	require.NoError(t, err)

	service.Revoke(token)

	_, err = service.Validate(token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestService_RevokeUnknownTokenIsNoop(t *testing.T) {
	service, err := NewService(testConfig())
	require.NoError(t, err)

	service.Revoke("garbage")

	token, err := service.Issue(models.RoleAdmin)
	require.NoError(t, err)
	_, err = service.Validate(token)
	assert.NoError(t, err)
}

func TestService_IssueUnknownRole(t *testing.T) {
	service, err := NewService(testConfig())
	require.NoError(t, err)

	_, err = service.Issue(models.Role("ghost"))
	assert.Error(t, err)
}
