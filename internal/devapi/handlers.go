package devapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

type Handler struct {
	store  *Store
	jwt    *JWTService
	logger *zap.Logger
}

func NewHandler(store *Store, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, jwt: jwt, logger: logger}
}

// Register mounts the API under api (normally the /api group).
func (h *Handler) Register(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.SignUp)

	protected := api.Group("")
	protected.Use(JWTAuthMiddleware(h.jwt, h.store))
	protected.GET("/farmers", h.ListFarmers)
	protected.GET("/farmers/:id", h.GetFarmer)
	protected.GET("/visits", h.ListVisits)
	protected.GET("/reports/daily-stats", h.DailyStats)
	protected.POST("/reports", h.SubmitReport)
	protected.GET("/notifications", h.ListNotifications)
	protected.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
	protected.PUT("/notifications/:id/read", h.MarkNotificationRead)

	admin := protected.Group("")
	admin.Use(RequireAdmin())
	admin.GET("/reports/admin", h.AdminReports)
	admin.GET("/admin/metrics", h.AdminMetrics)
	admin.GET("/admin/visits", h.AdminVisits)
	admin.PATCH("/admin/visits/:id/verify", h.VerifyVisit)
	admin.DELETE("/admin/users/:id", h.DeleteUser)
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func (h *Handler) issue(c *gin.Context, status int, user models.User) {
	token, err := h.jwt.GenerateToken(user)
	if err != nil {
		message(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	c.JSON(status, apiclient.AuthResponse{Token: token, User: user})
}

func (h *Handler) Login(c *gin.Context) {
	var req apiclient.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	l := h.logger.With(zap.String("method", "Login"), zap.String("email", req.Email))

	user, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		l.Info("Rejected credentials")
		message(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	// requiredRole is advisory; the caller enforces it.
	if req.RequiredRole != nil && *req.RequiredRole != user.Role {
		l.Info("Role hint does not match", zap.Stringer("required", req.RequiredRole), zap.Stringer("role", user.Role))
	}
	l.Info("User logged in", zap.String("user_id", user.ID))
	h.issue(c, http.StatusOK, user)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req apiclient.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.store.CreateUser(req.Name, req.Email, req.Password, models.RoleStaff)
	switch {
	case errors.Is(err, models.ErrConflict):
		message(c, http.StatusBadRequest, "User already exists")
		return
	case errors.Is(err, models.ErrValidation):
		message(c, http.StatusBadRequest, "Please add all fields")
		return
	case err != nil:
		h.logger.Error("Failed to create user", zap.Error(err))
		message(c, http.StatusInternalServerError, "Registration failed")
		return
	}
	h.logger.Info("User registered", zap.String("user_id", user.ID))
	h.issue(c, http.StatusCreated, user)
}

func (h *Handler) ListFarmers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Farmers())
}

func (h *Handler) GetFarmer(c *gin.Context) {
	f, err := h.store.Farmer(c.Param("id"))
	if err != nil {
		message(c, http.StatusNotFound, "Farmer not found")
		return
	}
	c.JSON(http.StatusOK, f)
}

// ListVisits returns the caller's own visits; admins see every visit.
func (h *Handler) ListVisits(c *gin.Context) {
	u := currentUser(c)
	owner := u.ID
	if u.IsAdmin() {
		owner = ""
	}
	c.JSON(http.StatusOK, h.store.Visits(owner))
}

func (h *Handler) DailyStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.DailyStats(*currentUser(c)))
}

func (h *Handler) SubmitReport(c *gin.Context) {
	var in models.DailyReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	u := currentUser(c)
	r, err := h.store.SubmitReport(*u, in)
	if err != nil {
		message(c, http.StatusBadRequest, "Total kilometres must not be negative")
		return
	}
	h.store.NotifyAdmins("Daily report submitted", u.Name+" submitted the daily summary.", "report")
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Notifications(currentUser(c).ID))
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.store.MarkNotificationRead(currentUser(c).ID, c.Param("id")); err != nil {
		message(c, http.StatusNotFound, "Notification not found")
		return
	}
	message(c, http.StatusOK, "Notification marked as read")
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n := h.store.MarkAllNotificationsRead(currentUser(c).ID)
	h.logger.Debug("Notifications marked as read", zap.Int("count", n))
	message(c, http.StatusOK, "All notifications marked as read")
}

func (h *Handler) AdminReports(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Reports())
}

func (h *Handler) AdminMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Metrics())
}

func (h *Handler) AdminVisits(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Visits(""))
}

func (h *Handler) VerifyVisit(c *gin.Context) {
	var body struct {
		Status models.VisitStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	v, err := h.store.SetVisitStatus(c.Param("id"), body.Status)
	switch {
	case errors.Is(err, models.ErrNotFound):
		message(c, http.StatusNotFound, "Visit not found")
		return
	case err != nil:
		message(c, http.StatusBadRequest, "Status must be verified or rejected")
		return
	}
	if v.Consultant != nil {
		h.store.Notify(v.Consultant.ID, "Visit "+string(v.Status), "Your visit to "+v.FarmerName()+" was "+string(v.Status)+".", string(v.Status))
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	err := h.store.DeleteUser(id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		message(c, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, models.ErrForbidden):
		message(c, http.StatusBadRequest, "Administrators cannot be removed")
		return
	case err != nil:
		h.logger.Error("Failed to delete user", zap.String("user_id", id), zap.Error(err))
		message(c, http.StatusInternalServerError, "Could not remove user")
		return
	}
	h.logger.Info("User removed", zap.String("user_id", id))
	message(c, http.StatusOK, "User removed")
}

// NewRouter builds the standalone engine served by cmd/devapi.
func NewRouter(h *Handler, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware...)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	h.Register(r.Group("/api"))
	return r
}
