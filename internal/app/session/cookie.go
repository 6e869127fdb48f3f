package session

import (
	"context"
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// CookieBackend keeps token and user inside the visitor's signed session
// cookie. The cookie is tamper-proof but not encrypted, so the browser can read
// the token it carries.
type CookieBackend struct{}

func (CookieBackend) Name() string { return "cookie" }

func (CookieBackend) Storage(c *gin.Context) (Storage, error) {
	return &cookieStorage{s: sessions.Default(c)}, nil
}

type cookieStorage struct {
	s sessions.Session
}

func (st *cookieStorage) Get(_ context.Context, key string) (string, bool, error) {
	raw := st.s.Get(key)
	if raw == nil {
		return "", false, nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", true, fmt.Errorf("cookie key %q holds %T: %w", key, raw, errNotString)
	}
	return v, true, nil
}

func (st *cookieStorage) Set(_ context.Context, key, value string) error {
	st.s.Set(key, value)
	return st.s.Save()
}

func (st *cookieStorage) Remove(_ context.Context, key string) error {
	st.s.Delete(key)
	return st.s.Save()
}
