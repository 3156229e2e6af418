package cache

import (
	"context"
	"errors"
	"fmt"

	"fridge-chef/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// ErrMiss 表示快取未命中（不存在或已過期，對呼叫端無區別）
var ErrMiss = errors.New("cache miss")

// Service 外部食譜資料的持久快取服務。
// 上游目錄變動緩慢，payload 以 JSON 字串存放並套用固定 TTL。
type Service struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewService 創建快取服務
func NewService(cfg *config.CacheConfig) (*Service, error) {
	if !cfg.Enabled {
		return &Service{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{
		client: client,
		config: cfg,
	}, nil
}

// GetMeal 讀取食譜詳情快取
func (s *Service) GetMeal(ctx context.Context, mealID string) (string, error) {
	return s.get(ctx, mealKey(mealID))
}

// SetMeal 寫入食譜詳情快取
func (s *Service) SetMeal(ctx context.Context, mealID, payload string) error {
	return s.set(ctx, mealKey(mealID), payload)
}

// GetFilter 讀取食材過濾結果快取
func (s *Service) GetFilter(ctx context.Context, ingredient string) (string, error) {
	return s.get(ctx, filterKey(ingredient))
}

// SetFilter 寫入食材過濾結果快取
func (s *Service) SetFilter(ctx context.Context, ingredient, payload string) error {
	return s.set(ctx, filterKey(ingredient), payload)
}

// get 讀取快取，未命中回傳 ErrMiss
func (s *Service) get(ctx context.Context, key string) (string, error) {
	if !s.config.Enabled || s.client == nil {
		return "", ErrMiss
	}

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	return data, nil
}

// set 寫入快取。寫入為冪等 upsert，同鍵後寫者勝
func (s *Service) set(ctx context.Context, key, payload string) error {
	if !s.config.Enabled || s.client == nil {
		return nil
	}

	if err := s.client.Set(ctx, key, payload, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// Close 關閉快取連線
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// mealKey 產生食譜詳情的快取鍵
func mealKey(mealID string) string {
	return fmt.Sprintf("mealdb:meal:%s", mealID)
}

// filterKey 產生食材過濾結果的快取鍵
func filterKey(ingredient string) string {
	return fmt.Sprintf("mealdb:filter:%s", ingredient)
}
