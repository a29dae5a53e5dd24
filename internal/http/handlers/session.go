package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/http/response"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	imageService   services.ImageService
}

func NewSessionHandler(sessionService services.SessionService, imageService services.ImageService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, imageService: imageService}
}

// POST /sessoes
// body: { "atividade_id": "<uuid>" }
func (sh *SessionHandler) Start(c *gin.Context) {
	var req services.StartSessionInput
	if !bindJSON(c, &req) {
		return
	}
	id, err := sh.sessionService.Start(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"sessao_id": id})
}

// POST|PUT /sessoes/atualizar
func (sh *SessionHandler) Complete(c *gin.Context) {
	var req services.CompleteSessionInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := sh.sessionService.Complete(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	body := gin.H{"mensagem": "Sessão atualizada com sucesso"}
	if res.Achievement != "" {
		body["conquista"] = res.Achievement
	}
	response.RespondOK(c, body)
}

// POST /sessoes/salvar_imagem
// body: { "sessao_id": "<uuid>", "imagem": "<base64 or data URL>" }
func (sh *SessionHandler) SaveImage(c *gin.Context) {
	var req services.ImageInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := sh.imageService.Submit(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, res)
}
