package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/handlers"
	"github.com/parkonomy/kiosk-backend/internal/middleware"
	"github.com/parkonomy/kiosk-backend/internal/models"
	"github.com/parkonomy/kiosk-backend/pkg/jwt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Auth       *handlers.AuthHandler
	SiteConfig *handlers.SiteConfigHandler
	Flow       *handlers.FlowHandler
	Site       *handlers.SiteHandler
	Kiosk      *handlers.KioskHandler
	Payment    *handlers.PaymentHandler
	Carpark    *handlers.CarparkHandler
}

// Options configures the router's middleware
type Options struct {
	Tokens         *jwt.TokenService
	Logger         *zap.Logger
	AllowedOrigins []string
	LoginLimiter   *middleware.RateLimiter
	StaticDir      string
	DB             handlers.Pinger
}

// SetupRouter sets up the router
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(opts.AllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(opts.Logger))

	router.GET("/health", handlers.Health(opts.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/days", handlers.Days)
		public.GET("/parking-fee", handlers.ParkingFees)
		public.GET("/parking-fee-without-hours", handlers.ParkingFeesWithoutHours)

		login := []gin.HandlerFunc{h.Auth.Login}
		if opts.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{opts.LoginLimiter.Limit()}, login...)
		}
		public.POST("/login", login...)

		public.POST("/payment/callback", h.Payment.Callback)
	}

	// Protected routes
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(opts.Tokens, opts.Logger))
	{
		protected.GET("/protected", h.Auth.Protected)

		siteConfig := protected.Group("/site-config/:siteId", middleware.RequireSiteAccess("siteId"))
		{
			siteConfig.GET("", h.SiteConfig.Get)
			siteConfig.PUT("", h.SiteConfig.Put)
			siteConfig.GET("/:flowId", h.SiteConfig.Get)
			siteConfig.PUT("/:flowId", h.SiteConfig.Put)
		}

		protected.GET("/config/:siteId", middleware.RequireSiteAccess("siteId"), h.Site.Config)

		admin := protected.Group("", middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/flows", h.Flow.List)
			admin.GET("/flows/:workflowName", h.Flow.GetByWorkflowName)
			admin.GET("/flows/:workflowName/form", h.Flow.Form)
			admin.PUT("/flows/:flowId", h.Flow.Update)
			admin.PUT("/flows/:flowId/form", h.Flow.ApplyForm)

			admin.GET("/sites", h.Site.List)
			admin.POST("/sites", h.Site.Create)
		}

		kiosk := protected.Group("/kiosk")
		{
			kiosk.POST("/sessions", h.Kiosk.Start)
			kiosk.GET("/sessions/:id", h.Kiosk.Get)
			kiosk.DELETE("/sessions/:id", h.Kiosk.Close)
			kiosk.POST("/sessions/:id/events", h.Kiosk.Event)
			kiosk.POST("/sessions/:id/activity", h.Kiosk.Activity)
			kiosk.POST("/sessions/:id/timeout/continue", h.Kiosk.TimeoutContinue)
			kiosk.POST("/sessions/:id/timeout/reset", h.Kiosk.TimeoutReset)
			kiosk.GET("/sessions/:id/receipt.pdf", h.Kiosk.ReceiptPDF)
			kiosk.GET("/sessions/:id/receipt/qr.png", h.Kiosk.ReceiptQR)

			sites := kiosk.Group("/sites/:siteId", middleware.RequireSiteAccess("siteId"))
			sites.GET("/carpark", h.Carpark.Info)
			sites.GET("/top-donors", h.Carpark.TopDonors)
		}
	}

	if opts.StaticDir != "" {
		router.NoRoute(spa(opts.StaticDir))
	}
	return router
}

// spa serves the kiosk front-end build, falling back to index.html for
// client-side routes. Unknown API paths stay 404.
func spa(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+p)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(index)
	}
}
