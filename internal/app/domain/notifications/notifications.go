package notifications

import (
	"context"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

type API interface {
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// NotificationsHandlers serve the forms in the admin notification bell.
type NotificationsHandlers struct {
	*domain.BaseHandler
	api API
}

func NewNotificationsHandlers(base *domain.BaseHandler, api API) *NotificationsHandlers {
	return &NotificationsHandlers{BaseHandler: base, api: api}
}

// OpenNotification marks one notification read and sends the admin to the
// screen its type refers to. A failed update still navigates.
func (h *NotificationsHandlers) OpenNotification(c *gin.Context) {
	id := c.Param("id")
	if err := h.api.MarkNotificationRead(c.Request.Context(), id); err != nil {
		h.Logger.Warn("Failed to mark notification as read",
			zap.String("method", "OpenNotification"),
			zap.String("notification_id", id),
			zap.Error(err))
	}
	h.ForgetNotifications(c)
	middleware.Redirect(c, models.NotificationLink(c.PostForm("type")))
}

// MarkAllRead clears the bell and returns to the page it was used on.
func (h *NotificationsHandlers) MarkAllRead(c *gin.Context) {
	if err := h.api.MarkAllNotificationsRead(c.Request.Context()); err != nil {
		h.Logger.Warn("Failed to mark all notifications as read",
			zap.String("method", "MarkAllRead"),
			zap.Error(err))
	}
	h.ForgetNotifications(c)
	middleware.Redirect(c, returnPath(c))
}

// returnPath is the same-host page named by the Referer header, or the admin
// portal when there is none.
func returnPath(c *gin.Context) string {
	const fallback = "/admin"
	ref, err := url.Parse(c.Request.Referer())
	if err != nil || ref.Host != c.Request.Host {
		return fallback
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
