package session

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Persisted keys. A logged-in visitor has both, a logged-out visitor neither.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// visitorKey holds the visitor id in the signed session cookie for backends that
// keep the values server side.
const visitorKey = "visitor_id"

// Storage is the durable key/value store a visitor's session lives in. Writes
// are visible to the next Get as soon as they return.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend hands out the Storage belonging to the visitor behind a request.
type Backend interface {
	Name() string
	Storage(c *gin.Context) (Storage, error)
}

// visitorID returns the id stored in the visitor's signed cookie, minting one on
// first contact. It needs the gin-contrib/sessions middleware upstream.
func visitorID(c *gin.Context) (string, error) {
	s := sessions.Default(c)
	if id, ok := s.Get(visitorKey).(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	s.Set(visitorKey, id)
	if err := s.Save(); err != nil {
		return "", err
	}
	return id, nil
}
