package session

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

var errNotString = errors.New("stored value is not a string")

// MemoryBackend keeps visitor keys in process memory. Sessions die with the
// process, so it is meant for development and tests.
type MemoryBackend struct {
	cache *cache.Cache
}

// NewMemoryBackend expires idle entries after ttl; zero never expires them.
func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryBackend{cache: cache.New(ttl, 10*time.Minute)}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Storage(c *gin.Context) (Storage, error) {
	id, err := visitorID(c)
	if err != nil {
		return nil, err
	}
	return b.ForVisitor(id), nil
}

func (b *MemoryBackend) ForVisitor(id string) Storage {
	return &memoryStorage{cache: b.cache, prefix: id + ":"}
}

// NewMemoryStorage returns a standalone storage, handy as a fake in tests.
func NewMemoryStorage() Storage {
	return &memoryStorage{cache: cache.New(cache.NoExpiration, 0), prefix: ""}
}

type memoryStorage struct {
	cache  *cache.Cache
	prefix string
}

func (st *memoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	raw, ok := st.cache.Get(st.prefix + key)
	if !ok {
		return "", false, nil
	}
	v, isString := raw.(string)
	if !isString {
		return "", true, errNotString
	}
	return v, true, nil
}

func (st *memoryStorage) Set(_ context.Context, key, value string) error {
	st.cache.SetDefault(st.prefix+key, value)
	return nil
}

func (st *memoryStorage) Remove(_ context.Context, key string) error {
	st.cache.Delete(st.prefix + key)
	return nil
}
