package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/domain/session"
	"github.com/makkenzo/license-admin-console/internal/handler/middleware"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Views        *Views
	Tokens       session.TokenStore
	Metrics      http.Handler
	AllowOrigins []string
	AccessLog    bool
}

// NewRouter wires the console pages, the JSON mirror and the operational
// endpoints.
func NewRouter(opts RouterOptions, logger *zap.Logger) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"http://localhost:3000"}
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}

	healthHandler := NewHealthHandler(opts.Tokens, opts.Views.Session, logger)
	authHandler := NewAuthHandler(opts.Views, logger)
	consoleHandler := NewConsoleHandler(opts.Views, logger)
	licenseHandler := NewLicenseHandler(opts.Views, logger)
	apiHandler := NewAPIHandler(opts.Views, logger)

	sessionGate := middleware.SessionGate(opts.Views.Session, logger)
	apiSessionGate := middleware.APISessionGate(opts.Views.Session, logger)
	errorMiddleware := middleware.ErrorHandlerMiddleware(logger)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	if opts.AccessLog {
		router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC1123),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		}))
	}
	router.Use(middleware.RequestIDMiddleware(logger))
	router.Use(errorMiddleware)
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logMsg := "Panic recovered"
		if err, ok := recovered.(string); ok {
			logMsg = fmt.Sprintf("%s: %s", logMsg, err)
		} else if err, ok := recovered.(error); ok {
			logMsg = fmt.Sprintf("%s: %v", logMsg, err)
		}
		logger.Error(logMsg, zap.Stack("stack"))

		_ = c.Error(ierr.ErrInternalServer)
		c.Abort()
	}))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(opts.Metrics))

	router.GET(middleware.LoginPath, authHandler.LoginPage)
	router.POST(middleware.LoginPath, authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	console := router.Group("/")
	console.Use(sessionGate)
	{
		console.GET("", consoleHandler.Index)
		console.POST("nav", consoleHandler.Nav)

		licenseRoutes := console.Group("licenses")
		{
			licenseRoutes.POST("", licenseHandler.Create)
			licenseRoutes.GET("/:key", licenseHandler.Details)
			licenseRoutes.POST("/:key", licenseHandler.Update)
			licenseRoutes.POST("/:key/edit", licenseHandler.Edit)
			licenseRoutes.POST("/:key/revoke", licenseHandler.Revoke)
			licenseRoutes.POST("/:key/delete", licenseHandler.Delete)
		}
	}

	apiV1 := router.Group("/api/v1")
	apiV1.Use(apiSessionGate)
	{
		apiV1.GET("/dashboard", apiHandler.Dashboard)
		apiV1.GET("/licenses", apiHandler.Licenses)
		apiV1.GET("/stats", apiHandler.Stats)
	}

	return router, nil
}
