package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
	"github.com/FACorreiaa/go-fieldops/internal/app/session"
)

// State is the outcome of a guard for one request.
type State uint8

const (
	// Pending means the session is not resolved yet.
	Pending State = iota
	// Denied means nobody is signed in.
	Denied
	// Forbidden means a user is signed in but lacks the required role.
	Forbidden
	// Allowed means the handler may run.
	Allowed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Denied:
		return "denied"
	case Forbidden:
		return "forbidden"
	case Allowed:
		return "allowed"
	default:
		return "unknown"
	}
}

type Decision struct {
	State    State
	Redirect string
}

// Guard decides whether a route may render for the current session.
type Guard struct {
	name         string
	loginURL     string
	adminOnly    bool
	forbiddenURL string
}

// NewGuard admits any signed-in user.
func NewGuard(loginURL string) *Guard {
	return &Guard{name: "session", loginURL: loginURL}
}

// NewAdminGuard admits admins only. Signed-out visitors go to loginURL, signed-in
// users without the admin role go to forbiddenURL.
func NewAdminGuard(loginURL, forbiddenURL string) *Guard {
	return &Guard{name: "admin", loginURL: loginURL, adminOnly: true, forbiddenURL: forbiddenURL}
}

// Decide maps a session view to a decision. A nil view is pending.
func (g *Guard) Decide(v session.View) Decision {
	if v == nil || v.Loading() {
		return Decision{State: Pending}
	}
	s, ok := v.Current()
	if !ok {
		return Decision{State: Denied, Redirect: g.loginURL}
	}
	switch s.User.Role {
	case models.RoleAdmin:
		return Decision{State: Allowed}
	case models.RoleStaff:
		if g.adminOnly {
			return Decision{State: Forbidden, Redirect: g.forbiddenURL}
		}
		return Decision{State: Allowed}
	default:
		// Unknown roles never pass, whatever the guard.
		return Decision{State: Denied, Redirect: g.loginURL}
	}
}

// Handler enforces the guard on a route group.
func (g *Guard) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var view session.View
		if m, ok := session.FromContext(c.Request.Context()); ok {
			view = m
		}

		d := g.Decide(view)
		metrics.RecordGuard(c.Request.Context(), g.name, d.State.String())

		switch d.State {
		case Pending:
			c.Status(http.StatusOK)
			c.Header("Cache-Control", "no-store")
			_ = pages.WaitingIndicator().Render(c.Request.Context(), c.Writer)
			c.Abort()
		case Denied, Forbidden:
			handleAuthRedirect(c, d.Redirect)
		case Allowed:
			c.Next()
		}
	}
}

// RequireSession guards routes that need any signed-in user.
func RequireSession() gin.HandlerFunc {
	return NewGuard("/login").Handler()
}

// RequireAdmin guards the admin area.
func RequireAdmin() gin.HandlerFunc {
	return NewAdminGuard("/admin/login", "/dashboard").Handler()
}
