package home

import (
	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
)

type HomeHandlers struct {
	*domain.BaseHandler
}

func NewHomeHandlers(base *domain.BaseHandler) *HomeHandlers {
	return &HomeHandlers{BaseHandler: base}
}

func (h *HomeHandlers) ShowHomePage(c *gin.Context) {
	h.RenderPage(c, "FieldOps - Agricultural Field Operations", "Home", Landing(middleware.GetUserFromContext(c)))
}

func (h *HomeHandlers) ShowAboutPage(c *gin.Context) {
	h.RenderPage(c, "About - FieldOps", "About", About())
}

func (h *HomeHandlers) ShowContactPage(c *gin.Context) {
	h.RenderPage(c, "Contact - FieldOps", "Contact", Contact())
}
