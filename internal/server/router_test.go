package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/domaintest"
	"github.com/FACorreiaa/go-fieldops/internal/app/session"
	"github.com/FACorreiaa/go-fieldops/internal/devapi"
	"github.com/FACorreiaa/go-fieldops/internal/pkg/config"
	"github.com/FACorreiaa/go-fieldops/internal/server"
)

var devCfg = config.DevAPIConfig{
	JWTSecret:     "integration-secret-with-32-chars!!",
	TokenTTL:      time.Hour,
	AdminEmail:    "admin@it.local",
	AdminPassword: "admin-pass",
	StaffEmail:    "staff@it.local",
	StaffPassword: "staff-pass",
}

// newApp runs the web router against a freshly seeded development API.
func newApp(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := devapi.NewStore()
	require.NoError(t, devapi.Seed(store, devCfg))
	jwtService := devapi.NewJWTService(devapi.JWTConfig{SecretKey: devCfg.JWTSecret, TokenExpiration: devCfg.TokenTTL})
	backend := httptest.NewServer(devapi.NewRouter(devapi.NewHandler(store, jwtService, nil)))
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		Env: "test",
		API: config.APIConfig{BaseURL: backend.URL + "/api", Timeout: 5 * time.Second},
		Session: config.SessionConfig{
			Backend:    "memory",
			CookieName: "fieldops_session",
			Secret:     strings.Repeat("s", 32),
			TTL:        time.Hour,
		},
		Observability: config.ObservabilityConfig{ServiceName: "fieldops-web-test"},
	}
	api, err := apiclient.New(apiclient.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout},
		apiclient.TokenSourceFunc(session.TokenFromContext), zap.NewNop())
	require.NoError(t, err)

	return server.SetupRouter(cfg, session.NewMemoryBackend(cfg.Session.TTL), api, zap.NewNop())
}

func credentials(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func TestStaffJourney(t *testing.T) {
	b := domaintest.NewBrowser(t, newApp(t))

	w := b.Get("/dashboard")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = b.PostForm("/login", credentials(devCfg.StaffEmail, "wrong"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")

	w = b.PostForm("/login", credentials(devCfg.StaffEmail, devCfg.StaffPassword))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = b.Get("/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, "Field Consultant", strings.TrimSpace(doc.Find(".user-name").First().Text()))
	assert.Equal(t, 0, doc.Find("#notification-bell").Length())

	w = b.Get("/farmers?q=khed")
	require.Equal(t, http.StatusOK, w.Code)
	href, ok := parse(t, w).Find(".farmer-row a").Attr("href")
	require.True(t, ok)

	w = b.Get(href)
	require.Equal(t, http.StatusOK, w.Code)
	doc = parse(t, w)
	assert.Equal(t, "Sunita Jadhav", doc.Find("#farmer-profile h1").Text())
	assert.Equal(t, "Soybean - Flowering", doc.Find(".farmer-visit .crop").Text())

	w = b.Get("/admin")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = b.PostForm("/daily-summary", url.Values{"totalKm": {"18.5"}, "summary": {"Two farms"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Daily report submitted successfully!")

	w = b.PostForm("/logout", url.Values{})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = b.Get("/dashboard")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestAdminJourney(t *testing.T) {
	b := domaintest.NewBrowser(t, newApp(t))

	w := b.PostForm("/admin/login", credentials(devCfg.AdminEmail, devCfg.AdminPassword))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	w = b.Get("/admin")
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, 4, doc.Find(".stat-card").Length())
	assert.Equal(t, "2", doc.Find(".notification-count").Text())

	// Newest first: the visit notification opens the visit log.
	item := doc.Find("#notification-bell .notification-item").First()
	action, ok := item.Find("form").Attr("action")
	require.True(t, ok)
	w = b.PostForm(action, url.Values{"type": {item.Find("input[name='type']").AttrOr("value", "")}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/visits", w.Header().Get("Location"))
	assert.Equal(t, "1", parse(t, b.Get("/admin")).Find(".notification-count").Text())

	w = b.PostForm("/admin/notifications/read-all", url.Values{})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	doc = parse(t, b.Get("/admin"))
	assert.Equal(t, 0, doc.Find(".notification-count").Length())
	staffID, ok := doc.Find(".consultant-row").First().Attr("data-id")
	require.True(t, ok)

	w = b.Get("/admin/verify")
	require.Equal(t, http.StatusOK, w.Code)
	doc = parse(t, w)
	require.Equal(t, 3, doc.Find(".visit-row").Length())
	id, ok := doc.Find(".visit-row").First().Attr("data-id")
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodPatch, "/admin/visits/"+id+"/verify",
		strings.NewReader(url.Values{"status": {"verified"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = b.Do(domaintest.HTMX(req))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Report verified successfully!")

	w = b.Get("/admin/verify/export.csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, w.Body.String(), "verified")

	w = b.Do(domaintest.HTMX(httptest.NewRequest(http.MethodDelete, "/admin/users/"+staffID, nil)))
	require.Equal(t, http.StatusOK, w.Code)
	doc = parse(t, w)
	assert.Equal(t, "Consultant deleted successfully", doc.Find("#consultant-banner").Text())
	assert.Equal(t, 0, doc.Find(".consultant-row").Length())

	w = b.PostForm("/logout", url.Values{})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestStaffOnAdminLoginKeepsSession(t *testing.T) {
	b := domaintest.NewBrowser(t, newApp(t))

	w := b.PostForm("/admin/login", credentials(devCfg.StaffEmail, devCfg.StaffPassword))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied. You do not have administrator privileges.")

	w = b.Get("/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndUnknownPaths(t *testing.T) {
	b := domaintest.NewBrowser(t, newApp(t))

	w := b.Get("/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = b.Get("/no/such/page")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	req := domaintest.HTMX(httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	w = b.Do(req)
	assert.Equal(t, "/", w.Header().Get("HX-Redirect"))
}
