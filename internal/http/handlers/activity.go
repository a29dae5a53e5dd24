package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/http/response"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type ActivityHandler struct {
	catalogService services.CatalogService
}

func NewActivityHandler(catalogService services.CatalogService) *ActivityHandler {
	return &ActivityHandler{catalogService: catalogService}
}

// POST /atividades
// Open to any authenticated account; there is no therapist role yet.
func (ah *ActivityHandler) Create(c *gin.Context) {
	var req services.ActivityInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.catalogService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /atividades/listar
func (ah *ActivityHandler) List(c *gin.Context) {
	list, err := ah.catalogService.ListActive(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, list)
}
