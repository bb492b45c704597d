package http

import (
	"github.com/gin-gonic/gin"

	"health-diagnosis/internal/bootstrap"
	"health-diagnosis/internal/transport/http/handler"
	"health-diagnosis/internal/transport/http/middleware"
	"health-diagnosis/internal/transport/http/web"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())
	router.SetHTMLTemplate(web.Templates())

	upload := app.Config.Upload
	router.MaxMultipartMemory = max(upload.MaxImageBytes, upload.MaxPDFBytes)

	healthHandler := handler.NewHealthHandler(app)
	reportHandler := handler.NewReportHandler(app.Reports, handler.UploadLimits{
		MaxImageBytes: upload.MaxImageBytes,
		MaxPDFBytes:   upload.MaxPDFBytes,
	}, app.Logger)

	router.GET("/", reportHandler.Page)
	router.GET("/healthz", healthHandler.Check)

	var pageGuards, apiGuards []gin.HandlerFunc
	if app.RateLimiter != nil {
		pageGuards = append(pageGuards, middleware.RateLimitWith(app.RateLimiter, app.Logger, reportHandler.RateLimited))
		apiGuards = append(apiGuards, middleware.RateLimit(app.RateLimiter, app.Logger))
	}

	pages := router.Group("/analyze", pageGuards...)
	pages.POST("/image", reportHandler.AnalyzeImage)
	pages.POST("/pdf", reportHandler.AnalyzePDF)

	v1 := router.Group("/api/v1", apiGuards...)
	v1.POST("/analyze", reportHandler.AnalyzeAPI)

	return router
}
