package domain

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
	"github.com/FACorreiaa/go-fieldops/internal/pkg/cache"
)

// NotificationSource feeds the notification bell in the page header.
type NotificationSource interface {
	Notifications(ctx context.Context) ([]models.Notification, error)
}

// notificationsTTL bounds how stale the bell may be.
const notificationsTTL = 30 * time.Second

type BaseHandler struct {
	Logger        *zap.Logger
	Notifications NotificationSource
	notifications *cache.UnifiedCache[[]models.Notification]
}

func NewBaseHandler(logger *zap.Logger, notifications NotificationSource) *BaseHandler {
	return &BaseHandler{
		Logger:        logger,
		Notifications: notifications,
		notifications: cache.NewUnifiedCache[[]models.Notification](notificationsTTL, "notifications", logger),
	}
}

func (h *BaseHandler) newLayoutData(c *gin.Context, title, activeNav string, content templ.Component) models.LayoutTempl {
	user := middleware.GetUserFromContext(c)
	list := h.bellNotifications(c, user)
	return models.LayoutTempl{
		Title:               title,
		Content:             content,
		Nav:                 models.NavFor(user),
		ActiveNav:           activeNav,
		User:                user,
		Notifications:       list,
		UnreadNotifications: models.Unread(list),
	}
}

// bellNotifications loads the admin bell, cached per user for
// notificationsTTL. Staff have no bell. Failures show an empty bell.
func (h *BaseHandler) bellNotifications(c *gin.Context, user *models.User) []models.Notification {
	if !user.IsAdmin() || h.Notifications == nil {
		return nil
	}
	load := func() ([]models.Notification, error) { return h.Notifications.Notifications(c.Request.Context()) }
	var list []models.Notification
	var err error
	if h.notifications != nil {
		list, err = h.notifications.GetOrLoad(user.ID, load)
	} else {
		list, err = load()
	}
	if err != nil {
		h.Logger.Debug("Failed to load notifications", zap.Error(err))
		return nil
	}
	return list
}

// ForgetNotifications drops the cached bell of the signed-in user so the next
// page shows fresh read state.
func (h *BaseHandler) ForgetNotifications(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil || h.notifications == nil {
		return
	}
	h.notifications.Delete(user.ID)
}

// Render writes component with status, timing the render.
func (h *BaseHandler) Render(c *gin.Context, status int, component templ.Component) {
	start := time.Now()
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.Logger.Error("Failed to render component", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	metrics.Get().TemplateRenderDuration.Record(c.Request.Context(), time.Since(start).Seconds())
}

// RenderPage renders content inside the layout, or the bare content for htmx
// requests that swap into an existing page.
func (h *BaseHandler) RenderPage(c *gin.Context, title, activeNav string, content templ.Component) {
	if middleware.IsHTMX(c) {
		h.Render(c, http.StatusOK, content)
		return
	}
	h.Render(c, http.StatusOK, pages.LayoutPage(h.newLayoutData(c, title, activeNav, content)))
}

// RenderBanner swaps an inline banner into target. Form handlers use it to
// report failures without reloading the page.
func (h *BaseHandler) RenderBanner(c *gin.Context, target string, banner pages.BannerProps) {
	c.Header("HX-Retarget", target)
	c.Header("HX-Reswap", "innerHTML")
	h.Render(c, http.StatusOK, pages.Banner(banner))
}
