// Package domaintest wires a gin engine with the real session stack for
// handler tests.
package domaintest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/session"
)

const (
	cookieName = "fieldops_session"
	signInPath = "/test/signin"
)

// StaticAuthenticator accepts any credentials and answers with User.
type StaticAuthenticator struct {
	Token string
	User  models.User
}

func (a StaticAuthenticator) Login(context.Context, apiclient.LoginRequest) (*apiclient.AuthResponse, error) {
	return &apiclient.AuthResponse{Token: a.Token, User: a.User}, nil
}

func (a StaticAuthenticator) Register(context.Context, apiclient.RegisterRequest) (*apiclient.AuthResponse, error) {
	return &apiclient.AuthResponse{Token: a.Token, User: a.User}, nil
}

// NewRouter returns an engine with signed cookies, the in-memory session backend
// and auth behind the session manager.
func NewRouter(auth session.Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(cookieName, cookie.NewStore([]byte(strings.Repeat("k", 32)))))
	r.Use(middleware.SessionMiddleware(session.NewMemoryBackend(time.Hour), auth, zap.NewNop()))
	return r
}

// NewSignedInRouter is NewRouter plus a route that signs the browser in as user.
func NewSignedInRouter(user models.User) *gin.Engine {
	r := NewRouter(StaticAuthenticator{Token: "token-" + user.ID, User: user})
	r.POST(signInPath, func(c *gin.Context) {
		m, ok := session.FromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		if res := m.Login(c.Request.Context(), user.Email, "secret", nil); !res.Success {
			c.String(http.StatusUnauthorized, res.Message)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

// Browser replays the session cookie across requests.
type Browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func NewBrowser(t *testing.T, h http.Handler) *Browser {
	return &Browser{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

// SignIn uses the route installed by NewSignedInRouter.
func (b *Browser) SignIn() {
	b.t.Helper()
	w := b.PostForm(signInPath, url.Values{})
	require.Equal(b.t, http.StatusNoContent, w.Code, w.Body.String())
}

func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

func (b *Browser) Get(path string) *httptest.ResponseRecorder {
	return b.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *Browser) PostForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.Do(req)
}

// HTMX marks req as an htmx request.
func HTMX(req *http.Request) *http.Request {
	req.Header.Set("HX-Request", "true")
	return req
}
