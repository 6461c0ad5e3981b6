package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, exp, err := svc.GenerateAccessToken(42, "12345678901", identity.RoleEmployee)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, exp, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)

	c, err := ClaimsFromMap(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.IdentityID)
	assert.Equal(t, "12345678901", c.CPF)
	assert.Equal(t, identity.RoleEmployee, c.Role)

	jti, ok := decoded.Get("jti")
	require.True(t, ok)
	assert.NotEmpty(t, jti)
}

func TestGenerateAccessToken_BadDuration(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")
	_, _, err := svc.GenerateAccessToken(1, "1", identity.RoleAdmin)
	assert.Error(t, err)
}

func TestClaimsFromMap_Rejects(t *testing.T) {
	_, err := ClaimsFromMap(map[string]interface{}{"type": "refresh", "identity_id": float64(1), "role": "admin"})
	assert.Error(t, err)

	_, err = ClaimsFromMap(map[string]interface{}{"type": "access", "identity_id": "1", "role": "admin"})
	assert.Error(t, err)

	_, err = ClaimsFromMap(map[string]interface{}{"type": "access", "identity_id": float64(1)})
	assert.Error(t, err)
}
