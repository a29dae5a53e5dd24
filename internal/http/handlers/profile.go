package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/http/response"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GET /perfil
func (ph *ProfileHandler) Get(c *gin.Context) {
	p, err := ph.profileService.Get(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, p)
}

// PUT|POST /perfil/atualizar
// Every field is required except necessidades.
func (ph *ProfileHandler) Update(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := ph.profileService.Update(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, p)
}
