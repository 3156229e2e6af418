package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fridge-chef/internal/infrastructure/config"
)

// 清單集合名稱
const (
	CollectionInventory = "inventory"
	CollectionCart      = "cart"
)

// Store 清單儲存介面。項目以小寫去空白形式存放，
// List 回傳排序去重後的集合。兩種後端可互換，比對引擎不感知差異。
type Store interface {
	List(ctx context.Context, collection string) ([]string, error)
	Replace(ctx context.Context, collection string, items []string) error
	Add(ctx context.Context, collection, item string) error
	Remove(ctx context.Context, collection, item string) error
	Close() error
}

// New 依設定選擇儲存後端
func New(cfg *config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.DataDir)
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// validCollection 檢查集合名稱是否合法
func validCollection(collection string) error {
	switch collection {
	case CollectionInventory, CollectionCart:
		return nil
	default:
		return fmt.Errorf("unknown collection: %s", collection)
	}
}

// cleanItem 清理單一項目：去空白、轉小寫
func cleanItem(item string) string {
	return strings.ToLower(strings.TrimSpace(item))
}

// cleanItems 清理項目清單：去空項、去重、排序
func cleanItems(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		cleaned := cleanItem(item)
		if cleaned == "" {
			continue
		}
		seen[cleaned] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for item := range seen {
		result = append(result, item)
	}
	sort.Strings(result)
	return result
}
