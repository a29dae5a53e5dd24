package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/http/response"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /registrar
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"mensagem":   "Usuário registrado com sucesso",
		"token":      res.Token,
		"login_id":   res.AccountID,
		"crianca_id": res.ChildID,
	})
}

// POST /login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
