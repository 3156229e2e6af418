package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// collectionTables 集合對應的資料表
var collectionTables = map[string]string{
	CollectionInventory: "inventory_items",
	CollectionCart:      "cart_items",
}

// PostgresStore 遠端資料表後端，每個集合一張單欄位資料表
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore 創建 Postgres 儲存後端並確保資料表存在
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, table := range collectionTables {
		schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			item TEXT PRIMARY KEY
		);
		`, table)
		if _, err := db.Exec(schema); err != nil {
			return nil, fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	return &PostgresStore{db: db}, nil
}

// List 讀取集合內容
func (s *PostgresStore) List(ctx context.Context, collection string) ([]string, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	var items []string
	if err := s.db.SelectContext(ctx, &items, fmt.Sprintf("SELECT item FROM %s", table)); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	return cleanItems(items), nil
}

// Replace 以新的項目清單覆寫集合
func (s *PostgresStore) Replace(ctx context.Context, collection string, items []string) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", collection, err)
	}

	for _, item := range cleanItems(items) {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (item) VALUES ($1) ON CONFLICT (item) DO NOTHING", table),
			item,
		); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

// Add 新增項目至集合，重複項目為冪等 upsert
func (s *PostgresStore) Add(ctx context.Context, collection, item string) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}

	cleaned := cleanItem(item)
	if cleaned == "" {
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (item) VALUES ($1) ON CONFLICT (item) DO NOTHING", table),
		cleaned,
	); err != nil {
		return fmt.Errorf("failed to add to %s: %w", collection, err)
	}
	return nil
}

// Remove 自集合移除項目
func (s *PostgresStore) Remove(ctx context.Context, collection, item string) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}

	cleaned := cleanItem(item)
	if cleaned == "" {
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE item = $1", table),
		cleaned,
	); err != nil {
		return fmt.Errorf("failed to remove from %s: %w", collection, err)
	}
	return nil
}

// Close 關閉資料庫連線
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// tableFor 取得集合對應的資料表名稱
func tableFor(collection string) (string, error) {
	table, ok := collectionTables[collection]
	if !ok {
		return "", fmt.Errorf("unknown collection: %s", collection)
	}
	return table, nil
}
