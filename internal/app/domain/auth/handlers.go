package auth

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/middleware"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
	"github.com/FACorreiaa/go-fieldops/internal/app/session"
)

const (
	msgMissingFields = "Please fill in all fields"
	msgNotAdmin      = "Access denied. You do not have administrator privileges."
	msgLoginFailed   = "Login failed"
	msgRegisterFail  = "Registration failed"
)

type AuthHandlers struct {
	*domain.BaseHandler
}

func NewAuthHandlers(base *domain.BaseHandler) *AuthHandlers {
	return &AuthHandlers{BaseHandler: base}
}

// HomeFor is where a user lands after signing in.
func HomeFor(user *models.User) string {
	if user != nil && user.IsAdmin() {
		return "/admin"
	}
	return "/dashboard"
}

func (h *AuthHandlers) ShowLogin(c *gin.Context) {
	if user := middleware.GetUserFromContext(c); user != nil {
		middleware.Redirect(c, HomeFor(user))
		return
	}
	h.RenderPage(c, "Sign In - FieldOps", "Sign In", SignIn(FormState{}))
}

func (h *AuthHandlers) ShowAdminLogin(c *gin.Context) {
	if user := middleware.GetUserFromContext(c); user != nil && user.IsAdmin() {
		middleware.Redirect(c, "/admin")
		return
	}
	h.RenderPage(c, "Admin Sign In - FieldOps", "Sign In", AdminSignIn(FormState{}))
}

func (h *AuthHandlers) ShowRegister(c *gin.Context) {
	if user := middleware.GetUserFromContext(c); user != nil {
		middleware.Redirect(c, HomeFor(user))
		return
	}
	h.RenderPage(c, "Register - FieldOps", "Sign In", SignUp(FormState{}))
}

func (h *AuthHandlers) Login(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "Login"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	state := FormState{Email: email}

	if email == "" || password == "" {
		h.fail(c, signInForm, state, msgMissingFields)
		return
	}

	m, ok := session.FromContext(c.Request.Context())
	if !ok {
		l.Error("No session manager on request")
		h.fail(c, signInForm, state, msgLoginFailed)
		return
	}

	res := m.Login(c.Request.Context(), email, password, nil)
	if !res.Success {
		h.fail(c, signInForm, state, res.Message)
		return
	}
	middleware.Redirect(c, HomeFor(res.User))
}

// AdminLogin asks the API for an admin session. A valid non-admin account still
// signs in; the visitor stays on the form with an access-denied banner.
func (h *AuthHandlers) AdminLogin(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "AdminLogin"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	state := FormState{Email: email}

	if email == "" || password == "" {
		h.fail(c, adminSignInForm, state, msgMissingFields)
		return
	}

	m, ok := session.FromContext(c.Request.Context())
	if !ok {
		l.Error("No session manager on request")
		h.fail(c, adminSignInForm, state, msgLoginFailed)
		return
	}

	role := models.RoleAdmin
	res := m.Login(c.Request.Context(), email, password, &role)
	if !res.Success {
		h.fail(c, adminSignInForm, state, res.Message)
		return
	}
	if !res.User.IsAdmin() {
		l.Info("Non-admin signed in through admin login", zap.String("user_id", res.User.ID))
		h.fail(c, adminSignInForm, state, msgNotAdmin)
		return
	}
	middleware.Redirect(c, "/admin")
}

func (h *AuthHandlers) Register(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "Register"))
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	state := FormState{Name: name, Email: email}

	if name == "" || email == "" || password == "" {
		h.fail(c, signUpForm, state, msgMissingFields)
		return
	}

	m, ok := session.FromContext(c.Request.Context())
	if !ok {
		l.Error("No session manager on request")
		h.fail(c, signUpForm, state, msgRegisterFail)
		return
	}

	res := m.Register(c.Request.Context(), name, email, password)
	if !res.Success {
		h.fail(c, signUpForm, state, res.Message)
		return
	}
	middleware.Redirect(c, HomeFor(res.User))
}

// Logout clears the session. Admins land on the public home page, staff on the
// sign-in form.
func (h *AuthHandlers) Logout(c *gin.Context) {
	dest := "/login"
	if m, ok := session.FromContext(c.Request.Context()); ok {
		if user := m.User(); user != nil && user.IsAdmin() {
			dest = "/"
		}
		m.Logout(c.Request.Context())
	}
	middleware.Redirect(c, dest)
}

// fail reports a form error: htmx gets the banner swapped into the form, a
// plain POST gets the whole page back.
func (h *AuthHandlers) fail(c *gin.Context, form formConfig, state FormState, message string) {
	banner := pages.BannerProps{Type: pages.BannerError, Message: message, ID: form.responseID + "-error"}
	if middleware.IsHTMX(c) {
		h.RenderBanner(c, "#"+form.responseID, banner)
		return
	}
	state.Banner = &banner
	var content templ.Component
	switch form.action {
	case adminSignInForm.action:
		content = AdminSignIn(state)
	case signUpForm.action:
		content = SignUp(state)
	default:
		content = SignIn(state)
	}
	h.RenderPage(c, form.heading+" - FieldOps", "Sign In", content)
}
