package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
)

const internalMessage = "erro interno do servidor"

type ErrorEnvelope struct {
	Message string `json:"erro"`
	Code    string `json:"codigo,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "erro desconhecido"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Message: msg, Code: code})
}

// RespondAPIError maps err onto its API error. Internal causes are recorded on
// the gin context for the request logger and never sent to the client.
func RespondAPIError(c *gin.Context, err error) {
	apiErr := apierr.As(err)
	if apiErr == nil {
		apiErr = apierr.Internal(nil)
	}
	if apiErr.Status >= http.StatusInternalServerError {
		if apiErr.Err != nil {
			_ = c.Error(apiErr.Err)
		}
		c.JSON(apiErr.Status, ErrorEnvelope{Message: internalMessage, Code: apiErr.Code})
		return
	}
	RespondError(c, apiErr.Status, apiErr.Code, apiErr.Err)
}

// AbortWithAPIError is RespondAPIError for middleware.
func AbortWithAPIError(c *gin.Context, err error) {
	RespondAPIError(c, err)
	c.Abort()
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
