package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
)

// API is the admin slice of the API client.
type API interface {
	AdminMetrics(ctx context.Context) (*models.AdminMetrics, error)
	AdminVisits(ctx context.Context) ([]models.Visit, error)
	AdminReports(ctx context.Context) ([]models.DailyReport, error)
	VerifyVisit(ctx context.Context, id string, status models.VisitStatus) error
	DeleteUser(ctx context.Context, id string) error
}

type AdminHandlers struct {
	*domain.BaseHandler
	api API
}

func NewAdminHandlers(base *domain.BaseHandler, api API) *AdminHandlers {
	return &AdminHandlers{BaseHandler: base, api: api}
}

func (h *AdminHandlers) ShowAnalytics(c *gin.Context) {
	h.renderAnalytics(c, nil)
}

func (h *AdminHandlers) renderAnalytics(c *gin.Context, banner *pages.BannerProps) {
	m, err := h.api.AdminMetrics(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load admin metrics", zap.String("method", "ShowAnalytics"), zap.Error(err))
		h.RenderPage(c, "Admin Portal - FieldOps", "Admin Portal", pages.ErrorPanel("Failed to load admin metrics. Please refresh."))
		return
	}
	h.RenderPage(c, "Admin Portal - FieldOps", "Admin Portal", Analytics(*m, banner))
}

// DeleteConsultant removes a staff account and re-renders the portal with the
// outcome.
func (h *AdminHandlers) DeleteConsultant(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "DeleteConsultant"))
	id := c.Param("id")

	if err := h.api.DeleteUser(c.Request.Context(), id); err != nil {
		l.Warn("Failed to delete consultant", zap.String("user_id", id), zap.Error(err))
		msg := "Failed to delete consultant."
		if errors.Is(err, models.ErrNotFound) {
			msg = "Consultant not found."
		}
		h.renderAnalytics(c, &pages.BannerProps{Type: pages.BannerError, Message: msg, ID: "consultant-banner"})
		return
	}

	l.Info("Consultant deleted", zap.String("user_id", id))
	h.renderAnalytics(c, &pages.BannerProps{Type: pages.BannerSuccess, Message: "Consultant deleted successfully", ID: "consultant-banner"})
}

func (h *AdminHandlers) ShowReports(c *gin.Context) {
	reports, err := h.api.AdminReports(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load daily reports", zap.String("method", "ShowReports"), zap.Error(err))
		h.RenderPage(c, "Daily Reports - FieldOps", "Daily Reports", pages.ErrorPanel("Failed to load daily reports."))
		return
	}
	h.RenderPage(c, "Daily Reports - FieldOps", "Daily Reports", Reports(reports))
}

// VisitFilter narrows the verification list. An empty Status means all.
type VisitFilter struct {
	Status models.VisitStatus
	Search string
}

func filterFromQuery(c *gin.Context) VisitFilter {
	f := VisitFilter{
		Status: models.VisitStatus(c.Query("status")),
		Search: strings.TrimSpace(c.Query("q")),
	}
	if !f.Status.Valid() {
		f.Status = ""
	}
	return f
}

func (f VisitFilter) Apply(visits []models.Visit) []models.Visit {
	out := make([]models.Visit, 0, len(visits))
	for _, v := range visits {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if !v.MatchesSearch(f.Search) {
			continue
		}
		out = append(out, v)
	}
	return out
}
