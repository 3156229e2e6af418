package match

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fridge-chef/internal/core/mealdb"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeSource 食譜來源的窄介面，由 mealdb.Client 實作
type RecipeSource interface {
	FilterByIngredient(ctx context.Context, ingredient string) ([]mealdb.MealSummary, error)
	LookupMeal(ctx context.Context, mealID string) (*mealdb.Meal, error)
}

// Service 食譜比對引擎
type Service struct {
	source         RecipeSource
	candidateLimit int
	workers        int
}

// NewService 創建比對引擎
func NewService(source RecipeSource, cfg *config.MatchConfig) *Service {
	return &Service{
		source:         source,
		candidateLimit: cfg.CandidateLimit,
		workers:        cfg.Workers,
	}
}

// Match 依設定分派比對模式：
// 指定必含食材時走必含食材模式，否則依缺漏門檻搜尋。
func (s *Service) Match(ctx context.Context, inventory []string, settings Settings) []RecipeMatch {
	if settings.RequiredIngredient != "" {
		return s.MatchByRequiredIngredient(ctx, settings.RequiredIngredient, inventory)
	}
	return s.MatchByInventory(ctx, inventory, settings.MaxMissing, settings.Sources)
}

// MatchByInventory 依庫存比對食譜：
// 以每個庫存食材撈候選食譜，併發抓取詳情後計算缺漏食材，
// 保留缺漏數不超過 maxMissing 的結果並排序。
// 單一候選的失敗只影響該筆結果，不影響整體查詢。
func (s *Service) MatchByInventory(ctx context.Context, inventory []string, maxMissing int, sources []string) []RecipeMatch {
	queryID := common.GenerateUUID()
	start := time.Now()

	normalized := NormalizeList(inventory)
	if len(normalized) == 0 {
		return []RecipeMatch{}
	}

	inventorySet := make(map[string]struct{}, len(normalized))
	for _, item := range normalized {
		inventorySet[item] = struct{}{}
	}

	results := []RecipeMatch{}
	if s.sourceSelected(sources, SourceMealDB) {
		results = append(results, s.matchMealDB(ctx, normalized, inventorySet, maxMissing)...)
	}

	// 排序鍵固定，結果順序與併發完成順序無關
	sort.Slice(results, func(i, j int) bool {
		if len(results[i].Missing) != len(results[j].Missing) {
			return len(results[i].Missing) < len(results[j].Missing)
		}
		nameI, nameJ := strings.ToLower(results[i].Name), strings.ToLower(results[j].Name)
		if nameI != nameJ {
			return nameI < nameJ
		}
		return results[i].Source < results[j].Source
	})

	common.LogInfo("庫存比對完成",
		zap.String("query_id", queryID),
		zap.Int("庫存食材數", len(normalized)),
		zap.Int("符合食譜數", len(results)),
		zap.Int("缺漏上限", maxMissing),
		zap.Duration("耗時", time.Since(start)),
	)

	return results
}

// MatchByRequiredIngredient 找出所有含必備食材的食譜，
// 標注相對庫存的缺漏食材，不套用缺漏數門檻。
func (s *Service) MatchByRequiredIngredient(ctx context.Context, required string, inventory []string) []RecipeMatch {
	queryID := common.GenerateUUID()
	start := time.Now()

	normalizedRequired := NormalizeItem(required)
	if normalizedRequired == "" {
		return []RecipeMatch{}
	}

	normalized := NormalizeList(inventory)
	inventorySet := make(map[string]struct{}, len(normalized))
	for _, item := range normalized {
		inventorySet[item] = struct{}{}
	}

	results := []RecipeMatch{}
	summaries, err := s.source.FilterByIngredient(ctx, normalizedRequired)
	if err != nil {
		common.LogWarn("必含食材查詢失敗",
			zap.String("query_id", queryID),
			zap.String("食材", normalizedRequired),
			zap.Error(err),
		)
		return results
	}

	for _, summary := range summaries {
		if summary.ID == "" {
			continue
		}
		meal, err := s.source.LookupMeal(ctx, summary.ID)
		if err != nil || meal == nil {
			continue
		}
		if match, ok := s.buildMatch(meal, inventorySet, 0, false); ok {
			results = append(results, match)
		}
	}

	// 無門檻過濾，只依名稱與來源排序
	sort.Slice(results, func(i, j int) bool {
		nameI, nameJ := strings.ToLower(results[i].Name), strings.ToLower(results[j].Name)
		if nameI != nameJ {
			return nameI < nameJ
		}
		return results[i].Source < results[j].Source
	})

	common.LogInfo("必含食材比對完成",
		zap.String("query_id", queryID),
		zap.String("食材", normalizedRequired),
		zap.Int("符合食譜數", len(results)),
		zap.Duration("耗時", time.Since(start)),
	)

	return results
}

// matchMealDB 對 TheMealDB 來源執行庫存比對
func (s *Service) matchMealDB(ctx context.Context, inventory []string, inventorySet map[string]struct{}, maxMissing int) []RecipeMatch {
	candidateIDs := s.candidateMealIDs(ctx, inventory)
	if len(candidateIDs) == 0 {
		return nil
	}

	// 併發抓取詳情：固定寬度的 worker pool，單一任務失敗只跳過該筆
	ids := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var results []RecipeMatch

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for mealID := range ids {
				meal, err := s.source.LookupMeal(ctx, mealID)
				if err != nil {
					common.LogDebug("候選食譜詳情抓取失敗，跳過",
						zap.String("食譜", mealID),
						zap.Error(err),
					)
					continue
				}
				if meal == nil {
					continue
				}
				if match, ok := s.buildMatch(meal, inventorySet, maxMissing, true); ok {
					mu.Lock()
					results = append(results, match)
					mu.Unlock()
				}
			}
		}()
	}

	for _, mealID := range candidateIDs {
		ids <- mealID
	}
	close(ids)
	wg.Wait()

	return results
}

// candidateMealIDs 以每個庫存食材撈候選食譜並聯集其 ID。
// 覆蓋優先於精準：食譜只要含任一庫存食材即成為候選。
func (s *Service) candidateMealIDs(ctx context.Context, inventory []string) []string {
	seen := make(map[string]struct{})
	for _, ingredient := range inventory {
		summaries, err := s.source.FilterByIngredient(ctx, ingredient)
		if err != nil {
			common.LogDebug("候選食譜查詢失敗，跳過該食材",
				zap.String("食材", ingredient),
				zap.Error(err),
			)
			continue
		}
		// 每個食材最多取前 candidateLimit 筆，限制扇出規模
		if len(summaries) > s.candidateLimit {
			summaries = summaries[:s.candidateLimit]
		}
		for _, summary := range summaries {
			if summary.ID != "" {
				seen[summary.ID] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// buildMatch 由食譜詳情組出比對結果。
// 分類在排除集合、或啟用門檻且缺漏數超標時回傳 false。
func (s *Service) buildMatch(meal *mealdb.Meal, inventorySet map[string]struct{}, maxMissing int, enforceThreshold bool) (RecipeMatch, bool) {
	category := strings.ToLower(strings.TrimSpace(meal.Category))
	if _, excluded := excludedCategories[category]; excluded {
		return RecipeMatch{}, false
	}

	ingredients := NormalizeList(meal.RawIngredients())

	missing := []string{}
	for _, ingredient := range ingredients {
		if _, have := inventorySet[ingredient]; have {
			continue
		}
		if _, staple := ignoreStaples[ingredient]; staple {
			continue
		}
		missing = append(missing, ingredient)
	}

	if enforceThreshold && len(missing) > maxMissing {
		return RecipeMatch{}, false
	}

	return RecipeMatch{
		ID:          meal.ID,
		Name:        meal.Name,
		Thumbnail:   meal.Thumbnail,
		Ingredients: ingredients,
		Missing:     missing,
		Source:      SourceMealDB,
		DetailsURL:  detailsURL(meal.ID),
	}, true
}

// sourceSelected 檢查來源是否在選取集合內；空集合視為全選，未知來源靜默忽略
func (s *Service) sourceSelected(sources []string, source string) bool {
	if len(sources) == 0 {
		return true
	}
	for _, selected := range sources {
		if selected == source {
			return true
		}
	}
	return false
}
