package farmers

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
)

type API interface {
	ListFarmers(ctx context.Context) ([]models.Farmer, error)
	GetFarmer(ctx context.Context, id string) (*models.Farmer, error)
	ListVisits(ctx context.Context) ([]models.Visit, error)
}

type FarmersHandlers struct {
	*domain.BaseHandler
	api API
}

func NewFarmersHandlers(base *domain.BaseHandler, api API) *FarmersHandlers {
	return &FarmersHandlers{BaseHandler: base, api: api}
}

// ShowFarmers lists farmers, filtered by the q query parameter. The search box
// re-requests this page through htmx so only the content is swapped.
func (h *FarmersHandlers) ShowFarmers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	all, err := h.api.ListFarmers(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load farmers", zap.String("method", "ShowFarmers"), zap.Error(err))
		h.RenderPage(c, "Farmers - FieldOps", "Farmers", pages.ErrorPanel("Failed to load farmers."))
		return
	}

	h.RenderPage(c, "Farmers - FieldOps", "Farmers", Directory(query, Filter(all, query), len(all)))
}

// ShowFarmer is a farmer's profile with the visits logged for them.
func (h *FarmersHandlers) ShowFarmer(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "ShowFarmer"))
	id := c.Param("id")

	var farmer *models.Farmer
	var visits []models.Visit
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		farmer, err = h.api.GetFarmer(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		visits, err = h.api.ListVisits(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.RenderPage(c, "Farmer - FieldOps", "Farmers", pages.ErrorPanel("Farmer not found."))
			return
		}
		l.Warn("Failed to load farmer profile", zap.String("farmer_id", id), zap.Error(err))
		h.RenderPage(c, "Farmer - FieldOps", "Farmers", pages.ErrorPanel("Failed to load farmer profile."))
		return
	}

	h.RenderPage(c, farmer.Name+" - FieldOps", "Farmers", Profile(*farmer, VisitsOf(visits, farmer.ID)))
}

// Filter keeps farmers whose name or village matches query.
func Filter(farmers []models.Farmer, query string) []models.Farmer {
	out := make([]models.Farmer, 0, len(farmers))
	for _, f := range farmers {
		if f.MatchesQuery(query) {
			out = append(out, f)
		}
	}
	return out
}

// VisitsOf keeps the visits logged for the farmer with the given id.
func VisitsOf(visits []models.Visit, farmerID string) []models.Visit {
	var out []models.Visit
	for _, v := range visits {
		if v.Farmer != nil && v.Farmer.ID == farmerID {
			out = append(out, v)
		}
	}
	return out
}
