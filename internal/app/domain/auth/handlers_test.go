package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/domaintest"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

// MockAuthenticator is a mock implementation of session.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, in apiclient.LoginRequest) (*apiclient.AuthResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.AuthResponse), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, in apiclient.RegisterRequest) (*apiclient.AuthResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.AuthResponse), args.Error(1)
}

func authResponse(role models.Role) *apiclient.AuthResponse {
	return &apiclient.AuthResponse{
		Token: "tok-" + role.String(),
		User:  models.User{ID: "u-" + role.String(), Name: "Ravi", Email: "ravi@example.com", Role: role},
	}
}

func newRouter(auth *MockAuthenticator) *gin.Engine {
	r := domaintest.NewRouter(auth)
	h := NewAuthHandlers(domain.NewBaseHandler(zap.NewNop(), nil))
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/admin/login", h.ShowAdminLogin)
	r.POST("/admin/login", h.AdminLogin)
	r.POST("/logout", h.Logout)
	r.GET("/dashboard", middleware.RequireSession(), func(c *gin.Context) { c.String(http.StatusOK, "dashboard") })
	r.GET("/admin", middleware.RequireAdmin(), func(c *gin.Context) { c.String(http.StatusOK, "admin") })
	return r
}

func credentials(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func bannerText(t *testing.T, body string) string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return strings.TrimSpace(doc.Find("[role='alert']").Text())
}

func TestLogin(t *testing.T) {
	t.Run("staff land on the dashboard and stay signed in", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, apiclient.LoginRequest{Email: "ravi@example.com", Password: "pw"}).
			Return(authResponse(models.RoleStaff), nil).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/login", credentials("ravi@example.com", "pw"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))

		w = b.Get("/dashboard")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "dashboard", w.Body.String())

		w = b.Get("/login")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
		auth.AssertExpectations(t)
	})

	t.Run("admins land on the admin portal", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, mock.Anything).Return(authResponse(models.RoleAdmin), nil).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/login", credentials("ravi@example.com", "pw"))
		assert.Equal(t, "/admin", w.Header().Get("Location"))
	})

	t.Run("empty fields never reach the API", func(t *testing.T) {
		auth := new(MockAuthenticator)
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/login", credentials("ravi@example.com", ""))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Please fill in all fields", bannerText(t, w.Body.String()))
		auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("rejected credentials show the server message", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, mock.Anything).
			Return(nil, &apiclient.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/login", credentials("ravi@example.com", "wrong"))
		assert.Equal(t, "Invalid credentials", bannerText(t, w.Body.String()))

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
		require.NoError(t, err)
		email, _ := doc.Find("input[name='email']").Attr("value")
		assert.Equal(t, "ravi@example.com", email)

		w = b.Get("/dashboard")
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("htmx failures swap a banner into the form", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(credentials("a@b.c", "pw").Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := b.Do(domaintest.HTMX(req))

		assert.Equal(t, "#login-response", w.Header().Get("HX-Retarget"))
		assert.Equal(t, "Login failed", bannerText(t, w.Body.String()))
		assert.NotContains(t, w.Body.String(), "<html")
	})

	t.Run("htmx success uses HX-Redirect", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, mock.Anything).Return(authResponse(models.RoleStaff), nil).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(credentials("a@b.c", "pw").Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := b.Do(domaintest.HTMX(req))

		assert.Equal(t, "/dashboard", w.Header().Get("HX-Redirect"))
		assert.Empty(t, w.Header().Get("Location"))
	})
}

func TestAdminLogin(t *testing.T) {
	admin := models.RoleAdmin

	t.Run("sends the admin role hint", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, apiclient.LoginRequest{Email: "boss@example.com", Password: "pw", RequiredRole: &admin}).
			Return(authResponse(models.RoleAdmin), nil).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/admin/login", credentials("boss@example.com", "pw"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))

		w = b.Get("/admin")
		assert.Equal(t, "admin", w.Body.String())
		auth.AssertExpectations(t)
	})

	t.Run("staff account is told off but stays signed in", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Login", mock.Anything, mock.Anything).Return(authResponse(models.RoleStaff), nil).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/admin/login", credentials("ravi@example.com", "pw"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Access denied. You do not have administrator privileges.", bannerText(t, w.Body.String()))

		w = b.Get("/dashboard")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "dashboard", w.Body.String())

		w = b.Get("/admin")
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	})
}

func TestRegister(t *testing.T) {
	t.Run("empty fields", func(t *testing.T) {
		auth := new(MockAuthenticator)
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/register", url.Values{"name": {""}, "email": {"a@b.c"}, "password": {"pw"}})
		assert.Equal(t, "Please fill in all fields", bannerText(t, w.Body.String()))
		auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("signs the new account in", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Register", mock.Anything, apiclient.RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "pw"}).
			Return(authResponse(models.RoleStaff), nil).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/register", url.Values{"name": {"Ravi"}, "email": {"ravi@example.com"}, "password": {"pw"}})
		assert.Equal(t, "/dashboard", w.Header().Get("Location"))

		w = b.Get("/dashboard")
		assert.Equal(t, "dashboard", w.Body.String())
	})

	t.Run("duplicate email shows the server message", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Register", mock.Anything, mock.Anything).
			Return(nil, &apiclient.APIError{StatusCode: http.StatusBadRequest, Message: "User already exists"}).Once()
		b := domaintest.NewBrowser(t, newRouter(auth))

		w := b.PostForm("/register", url.Values{"name": {"Ravi"}, "email": {"ravi@example.com"}, "password": {"pw"}})
		assert.Equal(t, "User already exists", bannerText(t, w.Body.String()))

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
		require.NoError(t, err)
		name, _ := doc.Find("input[name='name']").Attr("value")
		assert.Equal(t, "Ravi", name)
		assert.Equal(t, 0, doc.Find("input[name='password'][value]").Length())
	})
}

func TestLogout(t *testing.T) {
	tests := []struct {
		role models.Role
		want string
	}{
		{models.RoleStaff, "/login"},
		{models.RoleAdmin, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			auth := new(MockAuthenticator)
			auth.On("Login", mock.Anything, mock.Anything).Return(authResponse(tt.role), nil).Once()
			b := domaintest.NewBrowser(t, newRouter(auth))
			b.PostForm("/login", credentials("ravi@example.com", "pw"))

			w := b.PostForm("/logout", nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))

			w = b.Get("/dashboard")
			assert.Equal(t, "/login", w.Header().Get("Location"))

			w = b.PostForm("/logout", nil)
			assert.Equal(t, "/login", w.Header().Get("Location"))
		})
	}
}
