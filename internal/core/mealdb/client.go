package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fridge-chef/internal/core/cache"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client TheMealDB API 客戶端。
// 所有查詢先走持久快取，未命中才向上游發送請求並回寫快取。
type Client struct {
	client *resty.Client
	cache  *cache.Service
}

// filterResponse filter.php 的回應結構
type filterResponse struct {
	Meals []MealSummary `json:"meals"`
}

// lookupResponse lookup.php 的回應結構，保留原始 payload 供快取回寫
type lookupResponse struct {
	Meals []json.RawMessage `json:"meals"`
}

// NewClient 創建 TheMealDB 客戶端
func NewClient(cfg *config.Config, cacheSvc *cache.Service) *Client {
	client := resty.New().
		SetBaseURL(cfg.MealDB.BaseURL).
		SetTimeout(cfg.MealDB.Timeout)

	return &Client{
		client: client,
		cache:  cacheSvc,
	}
}

// FilterByIngredient 查詢含指定食材的食譜摘要，順序不定，可能為空
func (c *Client) FilterByIngredient(ctx context.Context, ingredient string) ([]MealSummary, error) {
	// 先查快取
	if cached, err := c.cache.GetFilter(ctx, ingredient); err == nil {
		var summaries []MealSummary
		if err := common.ParseJSON(cached, &summaries); err == nil {
			common.LogCacheHit("filter", ingredient)
			return summaries, nil
		}
		common.LogWarn("過濾快取內容無法解析，改走上游",
			zap.String("食材", ingredient),
		)
	} else if err != cache.ErrMiss {
		// 快取故障不影響查詢，降級為直接請求
		common.LogWarn("過濾快取讀取失敗",
			zap.String("食材", ingredient),
			zap.Error(err),
		)
	} else {
		common.LogCacheMiss("filter", ingredient)
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("i", ingredient).
		Get("/filter.php")
	common.LogSourceCall("filter.php", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to query filter endpoint: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("filter endpoint returned status %d", resp.StatusCode())
	}

	var result filterResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse filter response: %w", err)
	}

	// 上游對查無結果回傳 meals: null，統一收斂為空切片
	summaries := result.Meals
	if summaries == nil {
		summaries = []MealSummary{}
	}

	// 回寫快取（空結果也快取，避免重複打上游）
	if payload, err := common.ToJSON(summaries); err == nil {
		if err := c.cache.SetFilter(ctx, ingredient, payload); err != nil {
			common.LogWarn("過濾快取寫入失敗",
				zap.String("食材", ingredient),
				zap.Error(err),
			)
		}
	}

	return summaries, nil
}

// LookupMeal 查詢完整食譜詳情，查無結果時回傳 (nil, nil)
func (c *Client) LookupMeal(ctx context.Context, mealID string) (*Meal, error) {
	// 先查快取
	if cached, err := c.cache.GetMeal(ctx, mealID); err == nil {
		var meal Meal
		if err := common.ParseJSON(cached, &meal); err == nil {
			common.LogCacheHit("meal", mealID)
			return &meal, nil
		}
		common.LogWarn("詳情快取內容無法解析，改走上游",
			zap.String("食譜", mealID),
		)
	} else if err != cache.ErrMiss {
		common.LogWarn("詳情快取讀取失敗",
			zap.String("食譜", mealID),
			zap.Error(err),
		)
	} else {
		common.LogCacheMiss("meal", mealID)
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("i", mealID).
		Get("/lookup.php")
	common.LogSourceCall("lookup.php", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to query lookup endpoint: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("lookup endpoint returned status %d", resp.StatusCode())
	}

	var result lookupResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse lookup response: %w", err)
	}

	if len(result.Meals) == 0 {
		return nil, nil
	}

	var meal Meal
	if err := json.Unmarshal(result.Meals[0], &meal); err != nil {
		return nil, fmt.Errorf("failed to parse meal payload: %w", err)
	}

	// 回寫快取，存原始 payload
	if err := c.cache.SetMeal(ctx, mealID, string(result.Meals[0])); err != nil {
		common.LogWarn("詳情快取寫入失敗",
			zap.String("食譜", mealID),
			zap.Error(err),
		)
	}

	return &meal, nil
}
