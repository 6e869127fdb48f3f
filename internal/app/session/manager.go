package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/apiclient"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/observability/metrics"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
)

// Authenticator is the slice of the API client the manager needs.
type Authenticator interface {
	Login(ctx context.Context, in apiclient.LoginRequest) (*apiclient.AuthResponse, error)
	Register(ctx context.Context, in apiclient.RegisterRequest) (*apiclient.AuthResponse, error)
}

// Result is the outcome of Login and Register. Failures are reported here,
// never as errors: callers branch on Success and show Message.
type Result struct {
	Success bool
	User    *models.User
	Message string
}

// View is the read side of a manager, which is all guards and pages need.
type View interface {
	Loading() bool
	Current() (models.Session, bool)
}

// Manager owns one visitor's session: it is the only writer of the token and
// user keys in its Storage.
type Manager struct {
	store  Storage
	auth   Authenticator
	logger *zap.Logger

	initOnce sync.Once
	mu       sync.RWMutex
	loading  bool
	current  *models.Session
}

var _ View = (*Manager)(nil)

func NewManager(store Storage, auth Authenticator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:   store,
		auth:    auth,
		logger:  logger,
		loading: true,
	}
}

// Initialize resolves the persisted session. It runs once; later calls return
// immediately. Corrupt or partial state is purged and the manager resolves
// logged out. Loading is false when it returns.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		s, err := m.readPersisted(ctx)
		if err != nil {
			m.logger.Warn("Discarding persisted session", zap.Error(err))
			metrics.Get().SessionPurgesTotal.Add(ctx, 1)
			m.purge(ctx)
		}

		m.mu.Lock()
		m.current = s
		m.loading = false
		m.mu.Unlock()
	})
}

// readPersisted returns (nil, nil) for a clean logged-out store and an error
// wrapping ErrCorruptSession for anything that must be purged.
func (m *Manager) readPersisted(ctx context.Context) (*models.Session, error) {
	token, hasToken, err := m.store.Get(ctx, TokenKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", TokenKey, models.ErrCorruptSession, err)
	}
	rawUser, hasUser, err := m.store.Get(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", UserKey, models.ErrCorruptSession, err)
	}

	switch {
	case !hasToken && !hasUser:
		return nil, nil
	case !hasToken || token == "":
		return nil, fmt.Errorf("user without token: %w", models.ErrCorruptSession)
	case !hasUser:
		return nil, fmt.Errorf("token without user: %w", models.ErrCorruptSession)
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, fmt.Errorf("decode user: %w: %w", models.ErrCorruptSession, err)
	}
	s := &models.Session{Token: token, User: user}
	if !s.Valid() {
		return nil, fmt.Errorf("user has no role: %w", models.ErrCorruptSession)
	}
	return s, nil
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Current returns the resolved session, if any.
func (m *Manager) Current() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.Session{}, false
	}
	return *m.current, true
}

// User is a convenience for templates; nil when logged out.
func (m *Manager) User() *models.User {
	s, ok := m.Current()
	if !ok {
		return nil
	}
	return &s.User
}

// Token reads the persisted bearer token. It satisfies apiclient.TokenSource.
func (m *Manager) Token(ctx context.Context) string {
	token, ok, err := m.store.Get(ctx, TokenKey)
	if err != nil || !ok {
		return ""
	}
	return token
}

// Login authenticates against the API. requiredRole is forwarded as a hint;
// whether the returned user satisfies it is the caller's decision.
func (m *Manager) Login(ctx context.Context, email, password string, requiredRole *models.Role) Result {
	l := m.logger.With(zap.String("method", "Login"), zap.String("email", email))

	resp, err := m.auth.Login(ctx, apiclient.LoginRequest{
		Email:        email,
		Password:     password,
		RequiredRole: requiredRole,
	})
	res := m.establish(ctx, l, resp, err, loginFailed)
	metrics.RecordAuth(ctx, "login", res.Success)
	return res
}

// Register creates the account and signs the visitor in with the returned token.
func (m *Manager) Register(ctx context.Context, name, email, password string) Result {
	l := m.logger.With(zap.String("method", "Register"), zap.String("email", email))

	resp, err := m.auth.Register(ctx, apiclient.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	res := m.establish(ctx, l, resp, err, registrationFailed)
	metrics.RecordAuth(ctx, "register", res.Success)
	return res
}

func (m *Manager) establish(ctx context.Context, l *zap.Logger, resp *apiclient.AuthResponse, err error, fallback string) Result {
	if err != nil {
		if msg, ok := apiclient.ServerMessage(err); ok {
			l.Info("Authentication rejected", zap.String("reason", msg))
			return Result{Message: msg}
		}
		l.Warn("Authentication request failed", zap.Error(err))
		return Result{Message: fallback}
	}

	s := models.Session{Token: resp.Token, User: resp.User}
	if !s.Valid() {
		l.Error("Authentication response unusable",
			zap.Bool("has_token", resp.Token != ""),
			zap.Stringer("role", resp.User.Role),
			zap.Error(models.ErrMissingToken))
		return Result{Message: fallback}
	}

	if err := m.persist(ctx, s); err != nil {
		l.Error("Failed to persist session", zap.Error(err))
		m.purge(ctx)
		m.setCurrent(nil)
		return Result{Message: fallback}
	}
	m.setCurrent(&s)

	l.Info("Session established", zap.String("user_id", s.User.ID), zap.Stringer("role", s.User.Role))
	user := s.User
	return Result{Success: true, User: &user}
}

func (m *Manager) persist(ctx context.Context, s models.Session) error {
	rawUser, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.Set(ctx, TokenKey, s.Token); err != nil {
		return fmt.Errorf("write %s: %w", TokenKey, err)
	}
	if err := m.store.Set(ctx, UserKey, string(rawUser)); err != nil {
		return fmt.Errorf("write %s: %w", UserKey, err)
	}
	return nil
}

// Logout forgets the session locally. Calling it while logged out is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	m.purge(ctx)
	m.setCurrent(nil)
	m.logger.Debug("Session cleared")
}

func (m *Manager) purge(ctx context.Context) {
	var errs error
	for _, key := range []string{TokenKey, UserKey} {
		if err := m.store.Remove(ctx, key); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		m.logger.Error("Failed to purge persisted session", zap.Error(errs))
	}
}

func (m *Manager) setCurrent(s *models.Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}
