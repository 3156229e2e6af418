package match

import (
	"net/http"
	"strconv"
	"strings"

	"fridge-chef/internal/core/cache"
	matchService "fridge-chef/internal/core/match"
	"fridge-chef/internal/core/storage"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜比對處理器
type Handler struct {
	engine            *matchService.Service
	store             storage.Store
	results           *cache.Manager
	defaultMaxMissing int
}

// matchResponse 比對查詢的響應結構
type matchResponse struct {
	Count   int                        `json:"count"`
	Matches []matchService.RecipeMatch `json:"matches"`
}

// NewHandler 創建比對處理器
func NewHandler(engine *matchService.Service, store storage.Store, results *cache.Manager, cfg *config.MatchConfig) *Handler {
	return &Handler{
		engine:            engine,
		store:             store,
		results:           results,
		defaultMaxMissing: cfg.MaxMissingDefault,
	}
}

// HandleMatches 處理比對查詢。
// 帶 ingredient 參數時走必含食材模式並優先於缺漏門檻搜尋；
// 結果以查詢參數為鍵做短期快取。
func (h *Handler) HandleMatches(c *gin.Context) {
	// 解析缺漏門檻
	maxMissingParam := c.DefaultQuery("max_missing", strconv.Itoa(h.defaultMaxMissing))
	maxMissing, err := strconv.Atoi(maxMissingParam)
	if err != nil || maxMissing < 0 {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "max_missing must be a non-negative integer",
		})
		return
	}

	required := strings.TrimSpace(c.Query("ingredient"))
	sources := parseSources(c.QueryArray("sources"))

	// 載入庫存：儲存層故障無安全預設值，直接回報失敗
	inventory, err := h.store.List(c.Request.Context(), storage.CollectionInventory)
	if err != nil {
		common.LogError("庫存載入失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrStorageUnavailable.Code,
			Message: common.ErrStorageUnavailable.Message,
		})
		return
	}

	// 結果快取查詢
	key := h.results.GenerateKey(
		"matches",
		required,
		strconv.Itoa(maxMissing),
		strings.Join(sources, ","),
		strings.Join(inventory, ","),
	)
	if cached, ok := h.results.Get(key); ok {
		common.LogCacheHit("result", key)
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
		return
	}

	// 必含食材模式優先於門檻搜尋
	matches := h.engine.Match(c.Request.Context(), inventory, matchService.Settings{
		MaxMissing:         maxMissing,
		RequiredIngredient: required,
		Sources:            sources,
	})

	response := matchResponse{
		Count:   len(matches),
		Matches: matches,
	}

	payload, err := common.ToJSON(response)
	if err != nil {
		common.LogError("比對結果序列化失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrCodeInternalError,
			Message: common.ErrInternalError.Message,
		})
		return
	}

	h.results.Set(key, payload)
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
}

// parseSources 解析來源參數，支援重複參數與逗號分隔
func parseSources(raw []string) []string {
	var sources []string
	for _, entry := range raw {
		for _, source := range strings.Split(entry, ",") {
			source = strings.TrimSpace(source)
			if source != "" {
				sources = append(sources, source)
			}
		}
	}
	return sources
}
