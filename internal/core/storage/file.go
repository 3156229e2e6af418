package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore 本地 JSON 檔案後端，每個集合一個檔案
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// fileDocument 檔案格式：{"items": [...]}
type fileDocument struct {
	Items []string `json:"items"`
}

// NewFileStore 創建檔案儲存後端
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// List 讀取集合內容，檔案不存在時建立空集合
func (s *FileStore) List(ctx context.Context, collection string) ([]string, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(collection)
}

// Replace 以新的項目清單覆寫集合
func (s *FileStore) Replace(ctx context.Context, collection string, items []string) error {
	if err := validCollection(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(collection, cleanItems(items))
}

// Add 新增項目至集合
func (s *FileStore) Add(ctx context.Context, collection, item string) error {
	if err := validCollection(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(collection)
	if err != nil {
		return err
	}
	items = append(items, item)
	return s.save(collection, cleanItems(items))
}

// Remove 自集合移除項目
func (s *FileStore) Remove(ctx context.Context, collection, item string) error {
	if err := validCollection(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(collection)
	if err != nil {
		return err
	}

	cleaned := cleanItem(item)
	kept := make([]string, 0, len(items))
	for _, existing := range items {
		if existing != cleaned {
			kept = append(kept, existing)
		}
	}
	return s.save(collection, kept)
}

// Close 實現 Store 介面，檔案後端無持久連線
func (s *FileStore) Close() error {
	return nil
}

// load 讀取集合檔案，呼叫端需持有鎖
func (s *FileStore) load(collection string) ([]string, error) {
	path := s.path(collection)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 首次存取時建立空集合檔案
			if err := s.save(collection, []string{}); err != nil {
				return nil, err
			}
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cleanItems(doc.Items), nil
}

// save 寫入集合檔案，呼叫端需持有鎖
func (s *FileStore) save(collection string, items []string) error {
	path := s.path(collection)

	data, err := json.MarshalIndent(fileDocument{Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", collection, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// path 取得集合檔案路徑
func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}
