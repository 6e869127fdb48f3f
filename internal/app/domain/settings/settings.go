package settings

import (
	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
)

type SettingsHandlers struct {
	*domain.BaseHandler
}

func NewSettingsHandlers(base *domain.BaseHandler) *SettingsHandlers {
	return &SettingsHandlers{BaseHandler: base}
}

func (h *SettingsHandlers) ShowSettingsPage(c *gin.Context) {
	h.RenderPage(c, "Settings - FieldOps", "Settings", Profile(middleware.GetUserFromContext(c)))
}
