package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
)

const recentLimit = 5

// API is the part of the API client the dashboard reads from.
type API interface {
	ListFarmers(ctx context.Context) ([]models.Farmer, error)
	ListVisits(ctx context.Context) ([]models.Visit, error)
}

type DashboardHandlers struct {
	*domain.BaseHandler
	api API
	now func() time.Time
}

func NewDashboardHandlers(base *domain.BaseHandler, api API) *DashboardHandlers {
	return &DashboardHandlers{BaseHandler: base, api: api, now: time.Now}
}

// Stats is the dashboard summary computed from the farmer and visit lists.
type Stats struct {
	Farmers         int
	Visits          int
	Pending         int
	Verified        int
	Recommendations int
	// VisitTrend is the percentage change of visits created in the last seven
	// days against the seven days before.
	VisitTrend int
	Recent     []models.Visit
}

func (h *DashboardHandlers) ShowDashboard(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "ShowDashboard"))

	var farmers []models.Farmer
	var visits []models.Visit
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		farmers, err = h.api.ListFarmers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		visits, err = h.api.ListVisits(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		l.Warn("Failed to load dashboard data", zap.Error(err))
		h.RenderPage(c, "Dashboard - FieldOps", "Dashboard", pages.ErrorPanel("Failed to load dashboard data. Please refresh."))
		return
	}

	stats := Summarize(farmers, visits, h.now())
	h.RenderPage(c, "Dashboard - FieldOps", "Dashboard", Overview(middleware.GetUserFromContext(c), stats))
}

// Summarize computes dashboard figures. Visits are assumed to be in API order,
// oldest first, so the most recent come from the tail.
func Summarize(farmers []models.Farmer, visits []models.Visit, now time.Time) Stats {
	s := Stats{Farmers: len(farmers), Visits: len(visits)}

	lastWeek := now.Add(-7 * 24 * time.Hour)
	weekBefore := now.Add(-14 * 24 * time.Hour)
	var recent, older int
	for _, v := range visits {
		switch v.Status {
		case models.VisitPending:
			s.Pending++
		case models.VisitVerified:
			s.Verified++
		case models.VisitRejected:
		}
		if v.Recommendation.HasAdvice() {
			s.Recommendations++
		}
		if v.CreatedAt == nil {
			continue
		}
		switch {
		case v.CreatedAt.After(lastWeek):
			recent++
		case v.CreatedAt.After(weekBefore):
			older++
		}
	}

	switch {
	case older > 0:
		s.VisitTrend = int(math.Floor(float64(recent-older)/float64(older)*100 + 0.5))
	case recent > 0:
		s.VisitTrend = 100
	}

	start := len(visits) - recentLimit
	if start < 0 {
		start = 0
	}
	for i := len(visits) - 1; i >= start; i-- {
		s.Recent = append(s.Recent, visits[i])
	}
	return s
}
