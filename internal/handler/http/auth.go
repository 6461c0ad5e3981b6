package http

import (
	"net/http"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/handler/http/response"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	identityService identity.IdentityService
}

func NewAuthHandler(identityService identity.IdentityService) AuthHandler {
	return &authHandlerImpl{identityService: identityService}
}

func (h *authHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req identity.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.identityService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", token)
}

func (h *authHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	me, err := h.identityService.Me(r.Context(), claims.IdentityID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, me)
}

func (h *authHandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req identity.ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.identityService.ChangePassword(r.Context(), claims.IdentityID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password changed successfully", nil)
}
