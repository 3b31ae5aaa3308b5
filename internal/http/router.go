package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/poweringeg/fichas-backend/internal/analysis"
	"github.com/poweringeg/fichas-backend/internal/config"
	"github.com/poweringeg/fichas-backend/internal/db"
	"github.com/poweringeg/fichas-backend/internal/http/handlers"
	"github.com/poweringeg/fichas-backend/internal/http/middleware"
	"github.com/poweringeg/fichas-backend/internal/mailer"

	_ "github.com/poweringeg/fichas-backend/docs"
)

func Router(cfg config.Config, store *db.Store, engine *analysis.Engine, sender mailer.Mailer, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Engine:    engine,
		Mailer:    sender,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/analyses/latest", h.AnalysesLatest)
		api.GET("/analyses/:id/reports", h.ReportsList)
		api.GET("/analyses/:id/reports/:store", h.ReportDetails)
		api.GET("/analyses/:id/reports/:store/pdf", h.ReportPDF)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/analyses", h.Analyze)
		admin.POST("/analyses/:id/reports/:store/send", h.ReportSend)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
