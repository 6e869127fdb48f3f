package visits

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
)

type API interface {
	ListVisits(ctx context.Context) ([]models.Visit, error)
}

type VisitsHandlers struct {
	*domain.BaseHandler
	api API
}

func NewVisitsHandlers(base *domain.BaseHandler, api API) *VisitsHandlers {
	return &VisitsHandlers{BaseHandler: base, api: api}
}

// ShowVisits lists the visits the API returns for the signed-in user, newest
// first, optionally narrowed to one status.
func (h *VisitsHandlers) ShowVisits(c *gin.Context) {
	status := models.VisitStatus(c.Query("status"))
	if !status.Valid() {
		status = ""
	}

	all, err := h.api.ListVisits(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load visits", zap.String("method", "ShowVisits"), zap.Error(err))
		h.RenderPage(c, "Visits - FieldOps", "Visits", pages.ErrorPanel("Failed to load visits."))
		return
	}

	list := make([]models.Visit, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if status == "" || all[i].Status == status {
			list = append(list, all[i])
		}
	}
	h.RenderPage(c, "Visits - FieldOps", "Visits", Log(status, list))
}
