package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	AllowOrigins []string
	Contracts    *ContractHandler
	SignLinks    *SignLinkHandler
	Templates    *TemplateHandler
	Logs         *LogsHandler
	// ActivityLog records requests when set.
	ActivityLog gin.HandlerFunc
	Logger      *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(AccessLog(cfg.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", OrganizationHeader, UserHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	if cfg.ActivityLog != nil {
		v1.Use(cfg.ActivityLog)
	}

	// Public signing page, authenticated by the token alone
	v1.GET("/sign-links/:token", cfg.SignLinks.Get)
	v1.POST("/sign-links/:token/sign", cfg.SignLinks.Sign)

	staff := v1.Group("")
	staff.Use(RequireOrganization())
	{
		staff.GET("/contracts/signatures/export", cfg.Contracts.ExportSignatures)
		staff.POST("/contracts/:id/sign-link", cfg.Contracts.RequestSignLink)
		staff.GET("/contracts/:id/sign-link", cfg.Contracts.GetSignLink)
		staff.POST("/contracts/:id/generate-pdf", cfg.Contracts.GeneratePDF)
		staff.POST("/contracts/:id/upload-signed-pdf", cfg.Contracts.UploadSignedPDF)

		staff.GET("/templates", cfg.Templates.List)
		staff.POST("/templates", cfg.Templates.Create)
		staff.POST("/templates/validate", cfg.Templates.Validate)
		staff.GET("/templates/:id", cfg.Templates.Get)
		staff.PUT("/templates/:id", cfg.Templates.Update)
		staff.DELETE("/templates/:id", cfg.Templates.Delete)
		staff.POST("/templates/:id/duplicate", cfg.Templates.Duplicate)
		staff.GET("/templates/:id/preview", cfg.Templates.Preview)
		staff.GET("/templates/:id/placeholders", cfg.Templates.Placeholders)

		staff.GET("/activity-logs", cfg.Logs.GetAllLogs)
		staff.GET("/activity-logs/stats", cfg.Logs.GetLogStats)
	}

	return r
}
