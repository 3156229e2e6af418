package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Manager 查詢結果的短期記憶體快取。
// 以查詢參數的雜湊為鍵，TTL 較短（預設 10 分鐘），與外部資料快取互相獨立。
type Manager struct {
	config  *config.CacheConfig
	enabled bool
	mu      sync.Mutex
	store   map[string]resultEntry
	stats   managerStats
}

// resultEntry 快取條目
type resultEntry struct {
	value       string
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// managerStats 快取統計
type managerStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建結果快取管理器
func NewManager(cfg *config.CacheConfig) *Manager {
	m := &Manager{
		config:  cfg,
		enabled: cfg.Enabled,
		store:   make(map[string]resultEntry),
	}

	if !cfg.Enabled {
		common.LogInfo("Result cache disabled")
		return m
	}

	// 啟動清理過期條目的協程
	go m.startCleanup()

	common.LogInfo("結果快取已初始化",
		zap.Int("最大容量", cfg.ResultMaxSize),
		zap.Duration("存活時間", cfg.ResultTTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

// GenerateKey 由查詢參數生成快取鍵
func (m *Manager) GenerateKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// Get 讀取快取結果
func (m *Manager) Get(key string) (string, bool) {
	if !m.enabled {
		return "", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		return "", false
	}

	// 檢查是否過期
	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		return "", false
	}

	// 更新訪問統計
	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++

	return entry.value, true
}

// Set 寫入快取結果
func (m *Manager) Set(key, value string) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 容量已滿時先清過期條目，仍滿則執行 LRU 淘汰
	if len(m.store) >= m.config.ResultMaxSize {
		m.cleanup()
		if len(m.store) >= m.config.ResultMaxSize {
			m.evictLRU()
		}
	}

	now := time.Now()
	m.store[key] = resultEntry{
		value:       value,
		expiresAt:   now.Add(m.config.ResultTTL),
		createdAt:   now,
		lastAccess:  now,
		accessCount: 0,
	}
}

// startCleanup 啟動清理過期條目的協程
func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		evicted := m.cleanup()
		m.mu.Unlock()
		if evicted > 0 {
			common.LogDebug("結果快取清理執行",
				zap.Int("清理數量", evicted),
			)
		}
	}
}

// cleanup 清理過期條目，呼叫端需持有鎖
func (m *Manager) cleanup() int {
	now := time.Now()
	count := 0

	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	return count
}

// evictLRU 淘汰最少使用的條目，呼叫端需持有鎖
func (m *Manager) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
	}
}

// GetStats 獲取快取統計信息
func (m *Manager) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.stats.hits + m.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.ResultMaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": hitRatio,
	}
}

// Close 關閉結果快取
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]resultEntry)
	common.LogInfo("結果快取已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
