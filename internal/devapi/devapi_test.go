package devapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/pkg/config"
)

var testCfg = config.DevAPIConfig{
	JWTSecret:     "test-secret-key-with-at-least-32-chars",
	TokenTTL:      time.Hour,
	AdminEmail:    "admin@test.local",
	AdminPassword: "admin-pass",
	StaffEmail:    "staff@test.local",
	StaffPassword: "staff-pass",
}

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	store *Store
	srv   *httptest.Server
	token string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewStore()
	require.NoError(t, Seed(store, testCfg))
	jwtService := NewJWTService(JWTConfig{SecretKey: testCfg.JWTSecret, TokenExpiration: testCfg.TokenTTL})
	srv := httptest.NewServer(NewRouter(NewHandler(store, jwtService, nil)))
	t.Cleanup(srv.Close)
	return &fixture{store: store, srv: srv}
}

// client returns an API client that sends whatever token the fixture holds.
func (f *fixture) client(t *testing.T) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(apiclient.Options{BaseURL: f.srv.URL + "/api"},
		apiclient.TokenSourceFunc(func(context.Context) string { return f.token }), nil)
	require.NoError(t, err)
	return c
}

func (f *fixture) login(t *testing.T, email, password string) *apiclient.AuthResponse {
	t.Helper()
	resp, err := f.client(t).Login(context.Background(), apiclient.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	f.token = resp.Token
	return resp
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("valid credentials return token and profile", func(t *testing.T) {
		resp := f.login(t, testCfg.StaffEmail, testCfg.StaffPassword)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleStaff, resp.Role)
		assert.Equal(t, testCfg.StaffEmail, resp.Email)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("wrong password carries server message", func(t *testing.T) {
		_, err := f.client(t).Login(ctx, apiclient.LoginRequest{Email: testCfg.StaffEmail, Password: "nope"})
		require.Error(t, err)
		msg, ok := apiclient.ServerMessage(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid email or password", msg)
	})

	t.Run("required role is only a hint", func(t *testing.T) {
		admin := models.RoleAdmin
		resp, err := f.client(t).Login(ctx, apiclient.LoginRequest{
			Email: testCfg.StaffEmail, Password: testCfg.StaffPassword, RequiredRole: &admin,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleStaff, resp.Role)
	})
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.client(t).Register(ctx, apiclient.RegisterRequest{Name: "Neha", Email: "neha@test.local", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, resp.Role)
	assert.NotEmpty(t, resp.Token)

	_, err = f.client(t).Register(ctx, apiclient.RegisterRequest{Name: "Neha", Email: "NEHA@test.local", Password: "pw"})
	msg, _ := apiclient.ServerMessage(err)
	assert.Equal(t, "User already exists", msg)

	_, err = f.client(t).Register(ctx, apiclient.RegisterRequest{Email: "x@test.local", Password: "pw"})
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.client(t).ListFarmers(context.Background())
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Not authorized, no token", apiErr.Message)

	f.token = "garbage"
	_, err = f.client(t).ListFarmers(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not authorized, token failed", apiErr.Message)
}

func TestStaffData(t *testing.T) {
	f := newFixture(t)
	f.login(t, testCfg.StaffEmail, testCfg.StaffPassword)
	c := f.client(t)
	ctx := context.Background()

	farmers, err := c.ListFarmers(ctx)
	require.NoError(t, err)
	assert.Len(t, farmers, 3)

	visits, err := c.ListVisits(ctx)
	require.NoError(t, err)
	require.Len(t, visits, 3)
	assert.Equal(t, models.VisitPending, visits[0].Status)
	assert.Equal(t, "Field Consultant", visits[0].ConsultantName())

	stats, err := c.DailyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VisitCount)
	assert.False(t, stats.IsSubmitted)

	require.NoError(t, c.SubmitDailyReport(ctx, models.DailyReportInput{TotalKm: 42.5, Summary: "ok", VisitCount: 1}))
	stats, err = c.DailyStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.IsSubmitted)
	require.NotNil(t, stats.Report)
	assert.Equal(t, 42.5, stats.Report.TotalKm)

	notes, err := c.Notifications(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	_, err = c.AdminMetrics(ctx)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestAdminData(t *testing.T) {
	f := newFixture(t)
	f.login(t, testCfg.AdminEmail, testCfg.AdminPassword)
	c := f.client(t)
	ctx := context.Background()

	m, err := c.AdminMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MetricTotals{Staff: 1, Farmers: 3, Visits: 3, Pending: 3}, m.Totals)
	require.Len(t, m.ConsultantStats, 1)
	assert.Equal(t, 3, m.ConsultantStats[0].UniqueFarmers)
	assert.InDelta(t, 2.0/3.0, m.ConsultantStats[0].AverageRecs, 0.001)
	assert.Equal(t, []models.RegionCoverage{{Region: "Haveli", Count: 2}, {Region: "Khed", Count: 1}}, m.RegionalCoverage)
	assert.Len(t, m.VisitTrends, 3)
	assert.Equal(t, []models.Bucket{{Key: "Urea", Count: 1}}, m.RecommendationTrends.Fertilizers)

	visits, err := c.AdminVisits(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, visits)

	require.NoError(t, c.VerifyVisit(ctx, visits[0].ID, models.VisitVerified))
	m, err = c.AdminMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Totals.Pending)

	err = c.VerifyVisit(ctx, "missing", models.VisitRejected)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	reports, err := c.AdminReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestVerifyNotifiesConsultant(t *testing.T) {
	store := NewStore()
	require.NoError(t, Seed(store, testCfg))
	staff, err := store.Authenticate(testCfg.StaffEmail, testCfg.StaffPassword)
	require.NoError(t, err)
	before := len(store.Notifications(staff.ID))

	jwtService := NewJWTService(JWTConfig{SecretKey: testCfg.JWTSecret, TokenExpiration: time.Hour})
	h := NewHandler(store, jwtService, nil)
	admin, err := store.Authenticate(testCfg.AdminEmail, testCfg.AdminPassword)
	require.NoError(t, err)
	token, err := jwtService.GenerateToken(admin)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()
	c, err := apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api"},
		apiclient.TokenSourceFunc(func(context.Context) string { return token }), nil)
	require.NoError(t, err)

	visit := store.Visits(staff.ID)[0]
	require.NoError(t, c.VerifyVisit(context.Background(), visit.ID, models.VisitRejected))
	notes := store.Notifications(staff.ID)
	require.Len(t, notes, before+1)
	assert.Equal(t, "rejected", notes[0].Type, "newest first")
}

func TestAdminNotifications(t *testing.T) {
	f := newFixture(t)
	staff := f.login(t, testCfg.StaffEmail, testCfg.StaffPassword)
	ctx := context.Background()
	require.NoError(t, f.client(t).SubmitDailyReport(ctx, models.DailyReportInput{TotalKm: 10, VisitCount: 1}))

	f.login(t, testCfg.AdminEmail, testCfg.AdminPassword)
	c := f.client(t)

	notes, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"report", "visit", "farmer"}, []string{notes[0].Type, notes[1].Type, notes[2].Type})
	assert.Equal(t, 3, models.Unread(notes))

	require.NoError(t, c.MarkNotificationRead(ctx, notes[1].ID))
	notes, err = c.Notifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, models.Unread(notes))
	assert.True(t, notes[1].IsRead)

	err = c.MarkNotificationRead(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, c.MarkAllNotificationsRead(ctx))
	notes, err = c.Notifications(ctx)
	require.NoError(t, err)
	assert.Zero(t, models.Unread(notes))

	assert.Len(t, f.store.Notifications(staff.ID), 1, "staff notifications untouched")
}

func TestGetFarmer(t *testing.T) {
	f := newFixture(t)
	f.login(t, testCfg.StaffEmail, testCfg.StaffPassword)
	c := f.client(t)
	ctx := context.Background()

	all, err := c.ListFarmers(ctx)
	require.NoError(t, err)
	got, err := c.GetFarmer(ctx, all[1].ID)
	require.NoError(t, err)
	assert.Equal(t, all[1], *got)

	_, err = c.GetFarmer(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	admin := f.login(t, testCfg.AdminEmail, testCfg.AdminPassword)
	c := f.client(t)
	ctx := context.Background()

	m, err := c.AdminMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, m.ConsultantStats, 1)
	staffID := m.ConsultantStats[0].ID
	require.NotEmpty(t, staffID)

	err = c.DeleteUser(ctx, admin.ID)
	msg, _ := apiclient.ServerMessage(err)
	assert.Equal(t, "Administrators cannot be removed", msg)

	require.NoError(t, c.DeleteUser(ctx, staffID))
	assert.ErrorIs(t, c.DeleteUser(ctx, staffID), models.ErrNotFound)

	m, err = c.AdminMetrics(ctx)
	require.NoError(t, err)
	assert.Zero(t, m.Totals.Staff)
	assert.Empty(t, m.ConsultantStats)
	assert.Equal(t, 3, m.Totals.Visits, "visits outlive the account")

	_, err = f.store.Authenticate(testCfg.StaffEmail, testCfg.StaffPassword)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	f.token = ""
	_, err = f.client(t).Login(ctx, apiclient.LoginRequest{Email: testCfg.StaffEmail, Password: testCfg.StaffPassword})
	assert.Error(t, err)
}

func TestJWTService(t *testing.T) {
	s := NewJWTService(JWTConfig{SecretKey: "k1-k1-k1-k1-k1-k1-k1-k1-k1-k1-k1", TokenExpiration: time.Hour})
	user := models.User{ID: "u1", Email: "a@b.c", Role: models.RoleAdmin}

	token, err := s.GenerateToken(user)
	require.NoError(t, err)
	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	other := NewJWTService(JWTConfig{SecretKey: "k2-k2-k2-k2-k2-k2-k2-k2-k2-k2-k2", TokenExpiration: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	expired := NewJWTService(JWTConfig{SecretKey: "k1-k1-k1-k1-k1-k1-k1-k1-k1-k1-k1", TokenExpiration: -time.Minute})
	token, err = expired.GenerateToken(user)
	require.NoError(t, err)
	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)
	assert.True(t, CheckPassword(hash, "secret"))
	assert.False(t, CheckPassword(hash, "Secret"))
}
