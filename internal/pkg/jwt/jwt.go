package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
)

// Claims is the subset of token claims the handlers rely on.
type Claims struct {
	IdentityID int64
	CPF        string
	Role       identity.Role
}

type Service interface {
	GenerateAccessToken(identityID int64, cpf string, role identity.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(identityID int64, cpf string, role identity.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"identity_id": identityID,
		"cpf":         cpf,
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
		"jti":         uuid.NewString(),
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ClaimsFromMap reads the access token claims placed in the request context by
// jwtauth.Verifier. Numeric claims arrive as float64 after JSON decoding.
func ClaimsFromMap(claims map[string]interface{}) (Claims, error) {
	if t, _ := claims["type"].(string); t != "access" {
		return Claims{}, errors.New("token is not an access token")
	}

	var id int64
	switch v := claims["identity_id"].(type) {
	case float64:
		id = int64(v)
	case int64:
		id = v
	case int:
		id = int64(v)
	default:
		return Claims{}, fmt.Errorf("identity_id claim has unexpected type %T", v)
	}

	cpf, _ := claims["cpf"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		return Claims{}, errors.New("role claim missing")
	}

	return Claims{IdentityID: id, CPF: cpf, Role: identity.Role(role)}, nil
}
