package reports

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
)

const (
	msgFetchFailed  = "Failed to fetch daily stats"
	msgSubmitFailed = "Failed to submit report"
	msgSubmitted    = "Daily report submitted successfully!"
	msgKmRequired   = "Please enter the total kilometres travelled"
)

type API interface {
	DailyStats(ctx context.Context) (*models.DailyStats, error)
	SubmitDailyReport(ctx context.Context, in models.DailyReportInput) error
}

type DailySummaryHandlers struct {
	*domain.BaseHandler
	api API
}

func NewDailySummaryHandlers(base *domain.BaseHandler, api API) *DailySummaryHandlers {
	return &DailySummaryHandlers{BaseHandler: base, api: api}
}

func (h *DailySummaryHandlers) ShowDailySummary(c *gin.Context) {
	h.renderSummary(c, SummaryForm{}, nil)
}

// SubmitDailySummary posts today's report. The visit count is taken from the
// API's own stats, not from the form.
func (h *DailySummaryHandlers) SubmitDailySummary(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "SubmitDailySummary"))
	form := SummaryForm{
		TotalKm: strings.TrimSpace(c.PostForm("totalKm")),
		Summary: strings.TrimSpace(c.PostForm("summary")),
	}

	km, err := strconv.ParseFloat(form.TotalKm, 64)
	if form.TotalKm == "" || err != nil || km < 0 {
		h.renderSummary(c, form, &pages.BannerProps{Type: pages.BannerError, Message: msgKmRequired, ID: "summary-error"})
		return
	}

	ctx := c.Request.Context()
	stats, err := h.api.DailyStats(ctx)
	if err != nil {
		l.Warn("Failed to load daily stats", zap.Error(err))
		h.renderSummary(c, form, &pages.BannerProps{Type: pages.BannerError, Message: msgSubmitFailed, ID: "summary-error"})
		return
	}

	err = h.api.SubmitDailyReport(ctx, models.DailyReportInput{TotalKm: km, Summary: form.Summary, VisitCount: stats.VisitCount})
	if err != nil {
		msg := msgSubmitFailed
		if serverMsg, ok := apiclient.ServerMessage(err); ok {
			msg = serverMsg
		}
		l.Warn("Failed to submit daily report", zap.Error(err))
		h.renderSummary(c, form, &pages.BannerProps{Type: pages.BannerError, Message: msg, ID: "summary-error"})
		return
	}

	l.Info("Daily report submitted", zap.Float64("total_km", km), zap.Int("visit_count", stats.VisitCount))
	h.renderSummary(c, SummaryForm{}, &pages.BannerProps{Type: pages.BannerSuccess, Message: msgSubmitted, ID: "summary-success"})
}

// renderSummary reloads today's stats and renders the page. An empty form is
// prefilled from an already submitted report.
func (h *DailySummaryHandlers) renderSummary(c *gin.Context, form SummaryForm, banner *pages.BannerProps) {
	stats, err := h.api.DailyStats(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load daily stats", zap.String("method", "renderSummary"), zap.Error(err))
		h.RenderPage(c, "Daily Summary - FieldOps", "Daily Summary", pages.ErrorPanel(msgFetchFailed))
		return
	}
	if form == (SummaryForm{}) && stats.Report != nil {
		form = SummaryForm{
			TotalKm: strconv.FormatFloat(stats.Report.TotalKm, 'f', -1, 64),
			Summary: stats.Report.Summary,
		}
	}
	h.RenderPage(c, "Daily Summary - FieldOps", "Daily Summary", Summary(*stats, form, banner))
}
