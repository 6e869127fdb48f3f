package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/domaintest"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) AdminMetrics(ctx context.Context) (*models.AdminMetrics, error) {
	args := m.Called(ctx)
	metrics, _ := args.Get(0).(*models.AdminMetrics)
	return metrics, args.Error(1)
}

func (m *MockAPI) AdminVisits(ctx context.Context) ([]models.Visit, error) {
	args := m.Called(ctx)
	visits, _ := args.Get(0).([]models.Visit)
	return visits, args.Error(1)
}

func (m *MockAPI) AdminReports(ctx context.Context) ([]models.DailyReport, error) {
	args := m.Called(ctx)
	reports, _ := args.Get(0).([]models.DailyReport)
	return reports, args.Error(1)
}

func (m *MockAPI) VerifyVisit(ctx context.Context, id string, status models.VisitStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockAPI) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

var sampleVisits = []models.Visit{
	{
		ID: "v1", VisitDate: date("2025-03-01"), Status: models.VisitPending, CropType: "Cotton", CropStage: "Flowering",
		Consultant: &models.PersonRef{Name: "Meera"}, Farmer: &models.PersonRef{Name: "Suresh", Village: "Wadgaon"},
		Remarks: "Leaf curl, \"severe\"\non east plot",
	},
	{
		ID: "v2", Status: models.VisitVerified,
		Consultant: &models.PersonRef{Name: "Arjun"}, Farmer: &models.PersonRef{Name: "Anita", Village: "Khed"},
	},
	{ID: "v3", Status: models.VisitRejected},
}

func newBrowser(t *testing.T, role models.Role, api API) *domaintest.Browser {
	r := domaintest.NewSignedInRouter(models.User{ID: "u1", Name: "Priya", Role: role})
	h := NewAdminHandlers(domain.NewBaseHandler(zap.NewNop(), nil), api)
	g := r.Group("/admin", middleware.RequireAdmin())
	g.GET("", h.ShowAnalytics)
	g.GET("/verify", h.ShowVerification)
	g.GET("/verify/export.csv", h.ExportCSV)
	g.PATCH("/visits/:id/verify", h.UpdateVisitStatus)
	g.GET("/reports", h.ShowReports)
	g.DELETE("/users/:id", h.DeleteConsultant)
	b := domaintest.NewBrowser(t, r)
	b.SignIn()
	return b
}

func doc(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return d
}

func TestVisitFilter(t *testing.T) {
	assert.Len(t, VisitFilter{}.Apply(sampleVisits), 3)
	assert.Len(t, VisitFilter{Status: models.VisitPending}.Apply(sampleVisits), 1)
	assert.Len(t, VisitFilter{Search: "khed"}.Apply(sampleVisits), 1)
	assert.Empty(t, VisitFilter{Status: models.VisitVerified, Search: "meera"}.Apply(sampleVisits))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleVisits))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Date", "ID", "Consultant", "Farmer", "Village", "Status", "Crop Type", "Crop Stage", "Remarks"}, records[0])
	assert.Equal(t, []string{"2025-03-01", "v1", "Meera", "Suresh", "Wadgaon", "pending", "Cotton", "Flowering", `Leaf curl, "severe" on east plot`}, records[1])
	assert.Equal(t, []string{"N/A", "v3", "Unknown", "Unknown", "Unknown", "rejected", "N/A", "N/A", ""}, records[3])
}

func TestAdminGuarding(t *testing.T) {
	api := new(MockAPI)
	w := newBrowser(t, models.RoleStaff, api).Get("/admin")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	api.AssertNotCalled(t, "AdminMetrics", mock.Anything)
}

func TestShowAnalytics(t *testing.T) {
	t.Run("renders totals", func(t *testing.T) {
		api := new(MockAPI)
		api.On("AdminMetrics", mock.Anything).Return(&models.AdminMetrics{
			Totals:           models.MetricTotals{Staff: 4, Farmers: 20, Visits: 10, Pending: 3},
			ConsultantStats:  []models.ConsultantStat{{ID: "s1", Name: "Meera", VisitCount: 6}},
			RegionalCoverage: []models.RegionCoverage{{Region: "Khed", Count: 8}, {Count: 2}},
			RecommendationTrends: models.RecommendationTrends{
				Fertilizers: []models.Bucket{{Key: "Urea", Count: 5}},
			},
		}, nil)

		d := doc(t, newBrowser(t, models.RoleAdmin, api).Get("/admin"))
		var values []string
		d.Find(".stat-card .stat-value").Each(func(_ int, s *goquery.Selection) { values = append(values, s.Text()) })
		assert.Equal(t, []string{"4", "20", "10", "3"}, values)
		assert.Contains(t, d.Find(".insight").Text(), "Average 2.5 visits per consultant")
		assert.Equal(t, 2, d.Find(".regions li").Length())
		assert.Contains(t, d.Find(".regions").Text(), "Unknown")
		assert.Contains(t, d.Find(".fertilizer-trends").Text(), "Urea")
		assert.Equal(t, 1, d.Find("a[data-nav='Admin Portal']").Length())
		button := d.Find(".consultant-row .delete-consultant")
		assert.Equal(t, "Are you sure you want to remove Meera?", button.AttrOr("hx-confirm", ""))
	})

	t.Run("error panel", func(t *testing.T) {
		api := new(MockAPI)
		api.On("AdminMetrics", mock.Anything).Return(nil, assert.AnError)
		w := newBrowser(t, models.RoleAdmin, api).Get("/admin")
		assert.Contains(t, w.Body.String(), "Failed to load admin metrics. Please refresh.")
	})
}

func TestDeleteConsultant(t *testing.T) {
	metrics := &models.AdminMetrics{ConsultantStats: []models.ConsultantStat{{ID: "s2", Name: "Arjun"}}}
	del := func(b *domaintest.Browser, id string) *goquery.Document {
		w := b.Do(domaintest.HTMX(httptest.NewRequest(http.MethodDelete, "/admin/users/"+id, nil)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "<html")
		return doc(t, w)
	}

	t.Run("removes and re-renders the portal", func(t *testing.T) {
		api := new(MockAPI)
		api.On("DeleteUser", mock.Anything, "s1").Return(nil).Once()
		api.On("AdminMetrics", mock.Anything).Return(metrics, nil)

		d := del(newBrowser(t, models.RoleAdmin, api), "s1")
		assert.Equal(t, "Consultant deleted successfully", d.Find("#consultant-banner").Text())
		assert.Equal(t, 1, d.Find(".consultant-row[data-id='s2']").Length())
		api.AssertExpectations(t)
	})

	t.Run("unknown consultant", func(t *testing.T) {
		api := new(MockAPI)
		api.On("DeleteUser", mock.Anything, "nope").Return(fmt.Errorf("delete user: %w", models.ErrNotFound))
		api.On("AdminMetrics", mock.Anything).Return(metrics, nil)

		d := del(newBrowser(t, models.RoleAdmin, api), "nope")
		assert.Equal(t, "Consultant not found.", d.Find("#consultant-banner").Text())
		assert.Equal(t, "error", d.Find("#consultant-banner").AttrOr("data-banner", ""))
	})

	t.Run("API failure", func(t *testing.T) {
		api := new(MockAPI)
		api.On("DeleteUser", mock.Anything, "s2").Return(assert.AnError)
		api.On("AdminMetrics", mock.Anything).Return(metrics, nil)

		d := del(newBrowser(t, models.RoleAdmin, api), "s2")
		assert.Equal(t, "Failed to delete consultant.", d.Find("#consultant-banner").Text())
	})

	t.Run("staff cannot delete", func(t *testing.T) {
		api := new(MockAPI)
		b := newBrowser(t, models.RoleStaff, api)
		w := b.Do(httptest.NewRequest(http.MethodDelete, "/admin/users/s2", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		api.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})
}

func TestShowVerification(t *testing.T) {
	api := new(MockAPI)
	api.On("AdminVisits", mock.Anything).Return(sampleVisits, nil)

	d := doc(t, newBrowser(t, models.RoleAdmin, api).Get("/admin/verify?status=pending&q=suresh"))
	assert.Equal(t, 1, d.Find(".visit-row").Length())

	row := d.Find(".visit-row").First()
	_, verifyDisabled := row.Find("button[data-action='verified']").Attr("disabled")
	_, rejectDisabled := row.Find("button[data-action='rejected']").Attr("disabled")
	assert.False(t, verifyDisabled)
	assert.False(t, rejectDisabled)

	var vals map[string]string
	require.NoError(t, json.Unmarshal([]byte(row.Find("button[data-action='rejected']").AttrOr("hx-vals", "")), &vals))
	assert.Equal(t, map[string]string{"status": "rejected", "filter": "pending", "q": "suresh"}, vals)
	assert.Equal(t, "/admin/visits/v1/verify", row.Find("button[data-action='rejected']").AttrOr("hx-patch", ""))

	href, _ := d.Find("a.export-csv").Attr("href")
	assert.Equal(t, "/admin/verify/export.csv?q=suresh&status=pending", href)
	selected, _ := d.Find("select[name='status'] option[selected]").Attr("value")
	assert.Equal(t, "pending", selected)
}

func TestUpdateVisitStatus(t *testing.T) {
	patch := func(b *domaintest.Browser, id string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/admin/visits/"+id+"/verify", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return b.Do(domaintest.HTMX(req))
	}

	t.Run("verifies and keeps the filter", func(t *testing.T) {
		api := new(MockAPI)
		api.On("VerifyVisit", mock.Anything, "v1", models.VisitVerified).Return(nil).Once()
		api.On("AdminVisits", mock.Anything).Return(sampleVisits, nil)

		w := patch(newBrowser(t, models.RoleAdmin, api), "v1", url.Values{"status": {"verified"}, "filter": {"verified"}})
		d := doc(t, w)
		assert.Equal(t, "Report verified successfully!", d.Find("[role='alert']").Text())
		assert.Equal(t, 1, d.Find(".visit-row").Length())
		assert.NotContains(t, w.Body.String(), "<html")
		api.AssertExpectations(t)
	})

	t.Run("failure banner", func(t *testing.T) {
		api := new(MockAPI)
		api.On("VerifyVisit", mock.Anything, "v2", models.VisitRejected).Return(assert.AnError)
		api.On("AdminVisits", mock.Anything).Return(sampleVisits, nil)

		d := doc(t, patch(newBrowser(t, models.RoleAdmin, api), "v2", url.Values{"status": {"rejected"}}))
		assert.Equal(t, "Failed to update report status.", d.Find("[role='alert']").Text())
	})
}

func TestExportCSV(t *testing.T) {
	api := new(MockAPI)
	api.On("AdminVisits", mock.Anything).Return(sampleVisits, nil)

	w := newBrowser(t, models.RoleAdmin, api).Get("/admin/verify/export.csv?status=verified")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Visit_Reports_")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "v2", records[1][1])
}

func TestShowReports(t *testing.T) {
	api := new(MockAPI)
	api.On("AdminReports", mock.Anything).Return([]models.DailyReport{
		{Consultant: &models.PersonRef{Name: "Meera"}, TotalKm: 12.5, VisitCount: 3, Summary: "Khed loop"},
		{TotalKm: 4},
	}, nil)

	d := doc(t, newBrowser(t, models.RoleAdmin, api).Get("/admin/reports"))
	assert.Equal(t, 2, d.Find(".report-row").Length())
	assert.Contains(t, d.Find(".report-row").First().Text(), "12.5")
	assert.Contains(t, d.Find(".report-row").Last().Text(), "Unknown")
}
