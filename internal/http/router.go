package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/mundotea/mundotea-backend/internal/http/handlers"
	httpMW "github.com/mundotea/mundotea-backend/internal/http/middleware"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// TracingService names the otelgin span source; empty disables it.
	TracingService string
	// UploadDir is served read-only under /uploads when set. Directory
	// listing is off so only holders of a file name can fetch it.
	UploadDir string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	ProfileHandler     *httpH.ProfileHandler
	SessionHandler     *httpH.SessionHandler
	AchievementHandler *httpH.AchievementHandler
	ActivityHandler    *httpH.ActivityHandler
	PreferenceHandler  *httpH.PreferenceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if strings.TrimSpace(cfg.TracingService) != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Status)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if dir := strings.TrimSpace(cfg.UploadDir); dir != "" {
		r.StaticFS("/uploads", gin.Dir(dir, false))
	}

	// Public
	if cfg.AuthHandler != nil {
		r.POST("/registrar", cfg.AuthHandler.Register)
		r.POST("/login", cfg.AuthHandler.Login)
	}
	if cfg.ActivityHandler != nil {
		r.GET("/atividades/listar", cfg.ActivityHandler.List)
	}

	protected := r.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Profile
		if cfg.ProfileHandler != nil {
			protected.GET("/perfil", cfg.ProfileHandler.Get)
			protected.PUT("/perfil/atualizar", cfg.ProfileHandler.Update)
			protected.POST("/perfil/atualizar", cfg.ProfileHandler.Update)
		}

		// Sessions
		if cfg.SessionHandler != nil {
			protected.POST("/sessoes", cfg.SessionHandler.Start)
			protected.POST("/sessoes/atualizar", cfg.SessionHandler.Complete)
			protected.PUT("/sessoes/atualizar", cfg.SessionHandler.Complete)
			protected.POST("/sessoes/salvar_imagem", cfg.SessionHandler.SaveImage)
		}

		if cfg.AchievementHandler != nil {
			protected.GET("/conquistas", cfg.AchievementHandler.List)
		}

		if cfg.ActivityHandler != nil {
			protected.POST("/atividades", cfg.ActivityHandler.Create)
		}

		if cfg.PreferenceHandler != nil {
			protected.GET("/preferencias", cfg.PreferenceHandler.List)
			protected.POST("/preferencias", cfg.PreferenceHandler.Set)
			protected.GET("/recomendacoes", cfg.PreferenceHandler.Recommendations)
		}
	}

	return r
}
