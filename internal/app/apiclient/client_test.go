package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func staticToken(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) string { return token })
}

func TestBearerTransport(t *testing.T) {
	t.Run("adds header without touching the caller's request", func(t *testing.T) {
		var seen *http.Request
		var seenBody string
		tr := &BearerTransport{
			Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				seen = r
				b, _ := io.ReadAll(r.Body)
				seenBody = string(b)
				return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
			}),
			Source: staticToken("abc"),
		}

		req := httptest.NewRequest(http.MethodPatch, "http://api.test/admin/visits/1/verify", strings.NewReader(`{"status":"verified"}`))
		_, err := tr.RoundTrip(req)
		require.NoError(t, err)

		assert.Equal(t, "Bearer abc", seen.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPatch, seen.Method)
		assert.Equal(t, "http://api.test/admin/visits/1/verify", seen.URL.String())
		assert.Equal(t, `{"status":"verified"}`, seenBody)
		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("no token leaves the request undecorated", func(t *testing.T) {
		tr := &BearerTransport{
			Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				assert.Empty(t, r.Header.Get("Authorization"))
				return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
			}),
			Source: staticToken(""),
		}
		_, err := tr.RoundTrip(httptest.NewRequest(http.MethodGet, "http://api.test/farmers", nil))
		require.NoError(t, err)
	})

	t.Run("401 is handed back untouched", func(t *testing.T) {
		calls := 0
		tr := &BearerTransport{
			Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				calls++
				return &http.Response{StatusCode: http.StatusUnauthorized, Body: http.NoBody}, nil
			}),
			Source: staticToken("expired"),
		}
		resp, err := tr.RoundTrip(httptest.NewRequest(http.MethodGet, "http://api.test/visits", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 1, calls)
	})
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/farmers":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Not authorized as an admin"}`))
		case "/api/visits":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL + "/api/"}, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.ListFarmers(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	msg, ok := ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Not authorized as an admin", msg)

	_, err = c.ListVisits(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	_, ok = ServerMessage(err)
	assert.False(t, ok)

	_, err = c.Notifications(ctx)
	require.Error(t, err)
	assert.NotErrorAs(t, err, &apiErr)
	assert.Contains(t, err.Error(), "decode GET /notifications")
}

func TestLoginRequestBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"token":"t1","_id":"u1","name":"Asha","email":"a@x.com","role":"admin"}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL + "/api"}, nil, nil)
	require.NoError(t, err)

	resp, err := c.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Contains(t, got, "requiredRole")
	assert.Nil(t, got["requiredRole"])
	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, models.User{ID: "u1", Name: "Asha", Email: "a@x.com", Role: models.RoleAdmin}, resp.User)

	admin := models.RoleAdmin
	_, err = c.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "pw", RequiredRole: &admin})
	require.NoError(t, err)
	assert.Equal(t, "admin", got["requiredRole"])
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "localhost:5000"}, nil, nil)
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "/api"}, nil, nil)
	assert.Error(t, err)
}

func TestVerifyVisitRejectsPending(t *testing.T) {
	c, err := New(Options{BaseURL: "http://api.test"}, nil, nil)
	require.NoError(t, err)
	err = c.VerifyVisit(context.Background(), "v1", models.VisitPending)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestNotFoundMatchesModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Farmer not found"}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL}, nil, nil)
	require.NoError(t, err)

	_, err = c.GetFarmer(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NotErrorIs(t, (&APIError{StatusCode: http.StatusForbidden}), models.ErrNotFound)
}

func TestWriteEndpoints(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.EscapedPath()})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL + "/api"}, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.MarkNotificationRead(ctx, "n 1"))
	require.NoError(t, c.MarkAllNotificationsRead(ctx))
	require.NoError(t, c.DeleteUser(ctx, "u7"))

	assert.Equal(t, []call{
		{http.MethodPut, "/api/notifications/n%201/read"},
		{http.MethodPut, "/api/notifications/read-all"},
		{http.MethodDelete, "/api/admin/users/u7"},
	}, calls)
}
