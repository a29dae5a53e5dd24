package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/http/response"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/ctxutil"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type AuthMiddleware struct {
	log    *logger.Logger
	tokens services.TokenService
}

func NewAuthMiddleware(log *logger.Logger, tokens services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), tokens: tokens}
}

// RequireAuth resolves the acting account from the bearer token. Handlers
// never read an account id from the request body.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			response.AbortWithAPIError(c, apierr.Unauthenticated(errors.New("token ausente")))
			return
		}
		ctx, err := am.tokens.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("rejected token", "path", c.Request.URL.Path, "error", err)
			response.AbortWithAPIError(c, err)
			return
		}
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.AccountID == uuid.Nil {
			response.AbortWithAPIError(c, apierr.Unauthenticated(errors.New("token inválido")))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Only the Authorization header is read. Tokens in query strings end up in
// proxy and access logs.
func extractTokenFromAll(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
