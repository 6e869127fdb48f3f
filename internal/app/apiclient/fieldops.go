package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

func (c *Client) ListFarmers(ctx context.Context) ([]models.Farmer, error) {
	var out []models.Farmer
	if err := c.do(ctx, http.MethodGet, "/farmers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFarmer(ctx context.Context, id string) (*models.Farmer, error) {
	var out models.Farmer
	if err := c.do(ctx, http.MethodGet, "/farmers/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListVisits(ctx context.Context) ([]models.Visit, error) {
	var out []models.Visit
	if err := c.do(ctx, http.MethodGet, "/visits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DailyStats(ctx context.Context) (*models.DailyStats, error) {
	var out models.DailyStats
	if err := c.do(ctx, http.MethodGet, "/reports/daily-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitDailyReport(ctx context.Context, in models.DailyReportInput) error {
	return c.do(ctx, http.MethodPost, "/reports", in, nil)
}

func (c *Client) AdminReports(ctx context.Context) ([]models.DailyReport, error) {
	var out []models.DailyReport
	if err := c.do(ctx, http.MethodGet, "/reports/admin", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AdminMetrics(ctx context.Context) (*models.AdminMetrics, error) {
	var out models.AdminMetrics
	if err := c.do(ctx, http.MethodGet, "/admin/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminVisits(ctx context.Context) ([]models.Visit, error) {
	var out []models.Visit
	if err := c.do(ctx, http.MethodGet, "/admin/visits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) VerifyVisit(ctx context.Context, id string, status models.VisitStatus) error {
	if status != models.VisitVerified && status != models.VisitRejected {
		return fmt.Errorf("verify visit %s to %q: %w", id, status, models.ErrValidation)
	}
	body := struct {
		Status models.VisitStatus `json:"status"`
	}{Status: status}
	return c.do(ctx, http.MethodPatch, "/admin/visits/"+url.PathEscape(id)+"/verify", body, nil)
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil)
}

// DeleteUser removes a consultant account. Admin accounts cannot be removed.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil)
}
