package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/http/response"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
)

// bindJSON decodes the body into dst and writes a validation error on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.RespondAPIError(c, apierr.Validation("corpo da requisição vazio"))
			return false
		}
		response.RespondAPIError(c, apierr.Validation("JSON inválido: %v", err))
		return false
	}
	return true
}
