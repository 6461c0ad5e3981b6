package middleware

import (
	"net/http"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			response.HandleError(w, identity.ErrInvalidToken)
			return
		}

		if claims.Role != identity.RoleAdmin {
			response.HandleError(w, identity.ErrAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
