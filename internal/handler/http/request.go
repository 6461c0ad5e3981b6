package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/handler/http/middleware"
	"github.com/igorgomez/ponto-seguro-1/internal/handler/http/response"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/jwt"
)

var errInvalidID = errors.New("invalid id")

// decodeBody writes a 400 and returns false when the body is not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// pathID reads a positive integer URL parameter, writing a 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, errInvalidID.Error(), map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

func currentClaims(w http.ResponseWriter, r *http.Request) (jwt.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.HandleError(w, identity.ErrInvalidToken)
		return jwt.Claims{}, false
	}
	return claims, true
}

// canAccess reports whether the caller may read data owned by employeeID.
func canAccess(claims jwt.Claims, employeeID int64) bool {
	return claims.Role == identity.RoleAdmin || claims.IdentityID == employeeID
}
