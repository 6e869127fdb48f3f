package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/admin"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/auth"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/dashboard"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/farmers"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/home"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/notifications"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/reports"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/settings"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/visits"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
)

type AppHandlers struct {
	Home         *home.HomeHandlers
	Auth         *auth.AuthHandlers
	Dashboard    *dashboard.DashboardHandlers
	Farmers      *farmers.FarmersHandlers
	Visits       *visits.VisitsHandlers
	DailySummary *reports.DailySummaryHandlers
	Settings     *settings.SettingsHandlers
	Admin        *admin.AdminHandlers
	Notify       *notifications.NotificationsHandlers
}

// Setup registers every page. The session middleware must already be installed
// on r so guards and handlers find the visitor's manager.
func Setup(r *gin.Engine, api *apiclient.Client, log *zap.Logger) {
	setupRouter(r, setupDependencies(api, log), log)
}

func setupDependencies(api *apiclient.Client, log *zap.Logger) *AppHandlers {
	base := domain.NewBaseHandler(log, api)
	return &AppHandlers{
		Home:         home.NewHomeHandlers(base),
		Auth:         auth.NewAuthHandlers(base),
		Dashboard:    dashboard.NewDashboardHandlers(base, api),
		Farmers:      farmers.NewFarmersHandlers(base, api),
		Visits:       visits.NewVisitsHandlers(base, api),
		DailySummary: reports.NewDailySummaryHandlers(base, api),
		Settings:     settings.NewSettingsHandlers(base),
		Admin:        admin.NewAdminHandlers(base, api),
		Notify:       notifications.NewNotificationsHandlers(base, api),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, log *zap.Logger) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	public := r.Group("/")
	{
		public.GET("/", h.Home.ShowHomePage)
		public.GET("/about", h.Home.ShowAboutPage)
		public.GET("/contact", h.Home.ShowContactPage)

		public.GET("/login", h.Auth.ShowLogin)
		public.POST("/login", h.Auth.Login)
		public.GET("/register", h.Auth.ShowRegister)
		public.POST("/register", h.Auth.Register)
		public.GET("/admin/login", h.Auth.ShowAdminLogin)
		public.POST("/admin/login", h.Auth.AdminLogin)
		public.POST("/logout", h.Auth.Logout)
	}

	// Any signed-in user
	protected := r.Group("/")
	protected.Use(middleware.RequireSession())
	{
		protected.GET("/dashboard", h.Dashboard.ShowDashboard)
		protected.GET("/farmers", h.Farmers.ShowFarmers)
		protected.GET("/farmers/:id", h.Farmers.ShowFarmer)
		protected.GET("/visits", h.Visits.ShowVisits)
		protected.GET("/daily-summary", h.DailySummary.ShowDailySummary)
		protected.POST("/daily-summary", h.DailySummary.SubmitDailySummary)
		protected.GET("/settings", h.Settings.ShowSettingsPage)
	}

	// Admins only
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin())
	{
		adminGroup.GET("", h.Admin.ShowAnalytics)
		adminGroup.GET("/verify", h.Admin.ShowVerification)
		adminGroup.GET("/verify/export.csv", h.Admin.ExportCSV)
		adminGroup.PATCH("/visits/:id/verify", h.Admin.UpdateVisitStatus)
		adminGroup.GET("/reports", h.Admin.ShowReports)
		adminGroup.DELETE("/users/:id", h.Admin.DeleteConsultant)
		adminGroup.POST("/notifications/read-all", h.Notify.MarkAllRead)
		adminGroup.POST("/notifications/:id/read", h.Notify.OpenNotification)
	}

	// Unknown pages go home
	r.NoRoute(func(c *gin.Context) {
		log.Debug("Unknown path, redirecting home",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		middleware.Redirect(c, "/")
	})
}
