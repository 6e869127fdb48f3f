package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, st Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := st.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, TokenKey, "abc"))
	v, ok, err := st.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, st.Set(ctx, TokenKey, "def"))
	v, _, _ = st.Get(ctx, TokenKey)
	assert.Equal(t, "def", v, "last write wins")

	require.NoError(t, st.Remove(ctx, TokenKey))
	_, ok, err = st.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Remove(ctx, TokenKey), "removing a missing key is not an error")
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())

	b := NewMemoryBackend(time.Hour)
	ctx := context.Background()
	require.NoError(t, b.ForVisitor("a").Set(ctx, TokenKey, "for-a"))
	_, ok, err := b.ForVisitor("b").Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok, "visitors do not share keys")
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b := &RedisBackend{Client: rdb, Prefix: "test:session", TTL: time.Hour}
	exerciseStorage(t, b.ForVisitor("v1"))

	ctx := context.Background()
	require.NoError(t, b.ForVisitor("v2").Set(ctx, UserKey, `{"role":"staff"}`))
	assert.Equal(t, `{"role":"staff"}`, mr.HGet("test:session:v2", UserKey))
	assert.Equal(t, time.Hour, mr.TTL("test:session:v2"))

	mr.Close()
	_, _, err := b.ForVisitor("v2").Get(ctx, UserKey)
	assert.Error(t, err, "an unreachable redis is reported, not treated as empty")
}

// cookieRouter exposes a backend over HTTP so the cookie round trip can be
// observed the way a browser would see it.
func cookieRouter(b Backend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("fieldops_session", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.POST("/set", func(c *gin.Context) {
		st, err := b.Storage(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if err := st.Set(c.Request.Context(), TokenKey, c.Query("v")); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/get", func(c *gin.Context) {
		st, err := b.Storage(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		v, ok, err := st.Get(c.Request.Context(), TokenKey)
		if err != nil || !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.String(http.StatusOK, v)
	})
	return r
}

func TestBackendsAcrossRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backends := []Backend{
		CookieBackend{},
		NewMemoryBackend(time.Hour),
		&RedisBackend{Client: rdb},
	}

	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			r := cookieRouter(b)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/set?v=abc", nil))
			require.Equal(t, http.StatusNoContent, w.Code)
			cookies := w.Result().Cookies()
			require.NotEmpty(t, cookies)

			req := httptest.NewRequest(http.MethodGet, "/get", nil)
			for _, c := range cookies {
				req.AddCookie(c)
			}
			w = httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "abc", w.Body.String())

			w = httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get", nil))
			assert.Equal(t, http.StatusNotFound, w.Code, "a different browser sees nothing")
		})
	}
}

func TestCookieBackendSignsWithoutEncrypting(t *testing.T) {
	r := cookieRouter(CookieBackend{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/set?v=visible-token", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	// securecookie layout: base64(date|base64(gob value)|mac).
	outer, err := base64.URLEncoding.DecodeString(cookies[0].Value)
	require.NoError(t, err)
	parts := bytes.SplitN(outer, []byte("|"), 3)
	require.Len(t, parts, 3)
	payload, err := base64.URLEncoding.DecodeString(string(parts[1]))
	require.NoError(t, err)
	assert.Contains(t, string(payload), "visible-token", "the payload is readable without a key")

	tampered := *cookies[0]
	v := []byte(tampered.Value)
	if v[12] == 'A' {
		v[12] = 'B'
	} else {
		v[12] = 'A'
	}
	tampered.Value = string(v)
	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(&tampered)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "a modified cookie fails the signature check")
}
