package cache

import (
	"os"
	"testing"
	"time"

	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestManager(maxSize int, ttl time.Duration) *Manager {
	return NewManager(&config.CacheConfig{
		Enabled:         true,
		ResultMaxSize:   maxSize,
		ResultTTL:       ttl,
		CleanupInterval: time.Minute,
	})
}

func TestManagerSetAndGet(t *testing.T) {
	manager := newTestManager(10, time.Minute)

	key := manager.GenerateKey("matches", "egg", "3")
	manager.Set(key, `{"count":0}`)

	value, ok := manager.Get(key)
	assert.True(t, ok)
	assert.Equal(t, `{"count":0}`, value)

	_, ok = manager.Get(manager.GenerateKey("matches", "egg", "4"))
	assert.False(t, ok)
}

func TestManagerGenerateKeyDeterministic(t *testing.T) {
	manager := newTestManager(10, time.Minute)

	assert.Equal(t,
		manager.GenerateKey("a", "b", "c"),
		manager.GenerateKey("a", "b", "c"),
	)
	assert.NotEqual(t,
		manager.GenerateKey("a", "b", "c"),
		manager.GenerateKey("a", "bc"),
	)
}

func TestManagerExpiry(t *testing.T) {
	manager := newTestManager(10, 10*time.Millisecond)

	key := manager.GenerateKey("matches")
	manager.Set(key, "value")

	time.Sleep(30 * time.Millisecond)

	_, ok := manager.Get(key)
	assert.False(t, ok, "expired entry must behave as a miss")
}

func TestManagerEvictsWhenFull(t *testing.T) {
	manager := newTestManager(2, time.Minute)

	manager.Set("a", "1")
	manager.Set("b", "2")

	// 讀取 a 提升其使用次數，LRU 淘汰應挑 b
	_, ok := manager.Get("a")
	assert.True(t, ok)

	manager.Set("c", "3")

	_, ok = manager.Get("a")
	assert.True(t, ok)
	_, ok = manager.Get("c")
	assert.True(t, ok)
	_, ok = manager.Get("b")
	assert.False(t, ok)
}

func TestManagerDisabled(t *testing.T) {
	manager := NewManager(&config.CacheConfig{Enabled: false})

	manager.Set("key", "value")
	_, ok := manager.Get("key")
	assert.False(t, ok)
}

func TestManagerStats(t *testing.T) {
	manager := newTestManager(10, time.Minute)

	manager.Set("key", "value")
	manager.Get("key")
	manager.Get("other")

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
}
