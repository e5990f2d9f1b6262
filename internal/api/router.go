// Package api provides HTTP routing for CertVerif. It wires handlers,
// middleware, stores, and the session manager into the application's
// endpoints.
package api

import (
	"github.com/AntiSecTech/CertVerif/internal/api/handlers"
	"github.com/AntiSecTech/CertVerif/internal/api/middleware"
	"github.com/AntiSecTech/CertVerif/internal/auth"
	"github.com/AntiSecTech/CertVerif/internal/config"
	"github.com/AntiSecTech/CertVerif/internal/session"
	"github.com/AntiSecTech/CertVerif/internal/store"
	"github.com/AntiSecTech/CertVerif/internal/verify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, certs *store.CertificateStore, admins *store.AdminStore, sessions *session.Manager, logger *zap.Logger) *gin.Engine {
	// Set Gin mode
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg))

	router.SetHTMLTemplate(loadTemplates())

	// Initialize the verification engine
	engine := verify.New(certs, logger)

	// Initialize handlers
	verifyHandler := handlers.NewVerifyHandler(engine, logger)
	authHandler := handlers.NewAuthHandler(admins, sessions, cfg.Session.CookieSecure, cfg.Session.TTL, logger)
	dashboardHandler := handlers.NewDashboardHandler(certs, logger)
	certHandler := handlers.NewCertificateHandler(certs, logger)
	adminHandler := handlers.NewAdminHandler(admins, logger)

	// Public routes
	router.GET("/", verifyHandler.Index)
	router.GET("/verify/:cert_number", verifyHandler.VerifyPage)
	router.GET("/api/verify/:cert_number", verifyHandler.VerifyAPI)
	router.POST("/api/verify/:cert_number", verifyHandler.VerifyAPI)

	router.GET("/admin/login", authHandler.ShowLogin)
	router.POST("/admin/login", authHandler.Login)
	router.GET("/admin/logout", authHandler.Logout)

	// Protected routes (require a live session)
	protected := router.Group("/admin")
	protected.Use(middleware.RequireSession(sessions))
	{
		protected.GET("/dashboard", dashboardHandler.Dashboard)

		protected.GET("/certificates", certHandler.ListPage)
		protected.GET("/certificates/new", certHandler.NewForm)
		protected.POST("/certificates/new", certHandler.Create)
		protected.GET("/certificates/edit/:cert_number", certHandler.EditForm)
		protected.PUT("/certificates/edit/:cert_number", certHandler.Update)
		protected.DELETE("/certificates/delete/:cert_number",
			middleware.RequireRole(auth.RoleAdmin), certHandler.Delete)

		// Administrator management requires the admin role throughout
		adminOnly := protected.Group("/admins")
		adminOnly.Use(middleware.RequireRole(auth.RoleAdmin))
		{
			adminOnly.GET("", adminHandler.ListPage)
			adminOnly.GET("/new", adminHandler.NewForm)
			adminOnly.POST("/new", adminHandler.Create)
			adminOnly.GET("/edit/:username", adminHandler.EditForm)
			adminOnly.PUT("/edit/:username", adminHandler.Update)
			adminOnly.DELETE("/delete/:username", adminHandler.Delete)
		}
	}

	// Serve static frontend files
	if cfg.Data.StaticDir != "" {
		router.Static("/static", cfg.Data.StaticDir)
	}

	return router
}
