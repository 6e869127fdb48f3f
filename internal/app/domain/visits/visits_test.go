package visits

import (
	"context"
	"net/http"
	"testing"

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

func (m *MockAPI) ListVisits(ctx context.Context) ([]models.Visit, error) {
	args := m.Called(ctx)
	visits, _ := args.Get(0).([]models.Visit)
	return visits, args.Error(1)
}

func TestShowVisits(t *testing.T) {
	visits := []models.Visit{
		{ID: "a", Status: models.VisitVerified, Farmer: &models.PersonRef{Name: "Suresh"}},
		{ID: "b", Status: models.VisitPending, Remarks: "<i>leaf curl</i>"},
		{ID: "c", Status: models.VisitPending},
	}

	get := func(t *testing.T, path string) *goquery.Document {
		api := new(MockAPI)
		api.On("ListVisits", mock.Anything).Return(visits, nil)
		r := domaintest.NewSignedInRouter(models.User{ID: "u1", Name: "Meera", Role: models.RoleStaff})
		h := NewVisitsHandlers(domain.NewBaseHandler(zap.NewNop(), nil), api)
		r.GET("/visits", middleware.RequireSession(), h.ShowVisits)
		b := domaintest.NewBrowser(t, r)
		b.SignIn()

		w := b.Get(path)
		require.Equal(t, http.StatusOK, w.Code)
		doc, err := goquery.NewDocumentFromReader(w.Body)
		require.NoError(t, err)
		return doc
	}

	t.Run("newest first", func(t *testing.T) {
		doc := get(t, "/visits")
		var ids []string
		doc.Find(".visit-card").Each(func(_ int, s *goquery.Selection) {
			id, _ := s.Attr("data-id")
			ids = append(ids, id)
		})
		assert.Equal(t, []string{"c", "b", "a"}, ids)
		assert.Equal(t, "<i>leaf curl</i>", doc.Find(".remarks").Text())
	})

	t.Run("status filter", func(t *testing.T) {
		doc := get(t, "/visits?status=pending")
		assert.Equal(t, 2, doc.Find(".visit-card").Length())
		assert.Equal(t, "Pending", doc.Find("nav a.active").Text())
	})

	t.Run("unknown status shows everything", func(t *testing.T) {
		doc := get(t, "/visits?status=archived")
		assert.Equal(t, 3, doc.Find(".visit-card").Length())
	})
}
