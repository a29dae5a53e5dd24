package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/http/response"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type PreferenceHandler struct {
	preferenceService     services.PreferenceService
	recommendationService services.RecommendationService
}

func NewPreferenceHandler(preferenceService services.PreferenceService, recommendationService services.RecommendationService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService, recommendationService: recommendationService}
}

// GET /preferencias
func (ph *PreferenceHandler) List(c *gin.Context) {
	prefs, err := ph.preferenceService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, prefs)
}

// POST /preferencias
// body: { "chave": "tema", "valor": "escuro" }
func (ph *PreferenceHandler) Set(c *gin.Context) {
	var req services.PreferenceInput
	if !bindJSON(c, &req) {
		return
	}
	prefs, err := ph.preferenceService.Set(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, prefs)
}

// GET /recomendacoes
func (ph *PreferenceHandler) Recommendations(c *gin.Context) {
	list, err := ph.recommendationService.ListForAccount(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, list)
}
