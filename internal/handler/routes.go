package handler

import (
	"net/http"

	"cash4edu/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterConfig struct {
	Guard         middleware.Authenticator
	ClientKey     string
	RatePerSecond float64
	RateBurst     int
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	// Swagger mounts /swagger/*any.
	Swagger bool
}

// NewRouter builds the companion API.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", middleware.ClientKeyHeader)
	router.Use(cors.New(config))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	if cfg.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	keyed := router.Group("/", middleware.ClientKey(cfg.ClientKey, h.logger))
	if cfg.RatePerSecond > 0 {
		keyed.Use(middleware.RateLimit(cfg.RatePerSecond, cfg.RateBurst))
	}

	public := keyed.Group("/", middleware.RedirectIfAuthenticated(cfg.Guard))
	{
		public.POST("/signup", h.SignUp)
		public.POST("/verify-otp", h.VerifyOTP)
		public.POST("/forgot-password", h.ForgotPassword)
		public.POST("/reset-password", h.ResetPassword)
	}

	protected := keyed.Group("/api", middleware.RequireAuth(cfg.Guard))
	{
		protected.GET("/profile", h.Profile)
		protected.POST("/profile/refresh", h.RefreshProfile)
		protected.GET("/session", h.Session)
		protected.GET("/onboarding/progress", h.OnboardingProgress)
		protected.POST("/onboarding/:step", h.SubmitStep)
		protected.GET("/onboarding/:step/reference/:kind", h.ReferenceData)
		protected.GET("/perks", h.ListPerks)
		protected.POST("/perks/:id/redeem", h.RedeemPerk)
		protected.GET("/redemptions", h.Redemptions)
		protected.GET("/analytics", h.Analytics)
		protected.POST("/logout", h.Logout)
		protected.POST("/dashboard/visited", h.DashboardVisited)
	}

	keyed.GET("/ws/toasts", h.StreamToasts)
	return router
}
