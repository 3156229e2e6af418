package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fridge-chef/internal/api/handlers/health"
	matchHandler "fridge-chef/internal/api/handlers/match"
	"fridge-chef/internal/api/handlers/pantry"
	"fridge-chef/internal/api/middleware"
	"fridge-chef/internal/core/cache"
	matchService "fridge-chef/internal/core/match"
	"fridge-chef/internal/core/mealdb"
	"fridge-chef/internal/core/storage"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置：庫存比對會對上游做多次往返，放寬至 60 秒
	timeoutDuration = 60 * time.Second
	// 請求體大小限制 (1MB)，清單操作的 payload 都很小
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheSvc *cache.Service, resultCache *cache.Manager, store storage.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("mealdb_base_url", cfg.MealDB.BaseURL),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Int("match_workers", cfg.Match.Workers),
	)

	// 初始化食譜來源客戶端與比對引擎
	sourceClient := mealdb.NewClient(cfg, cacheSvc)
	engine := matchService.NewService(sourceClient, &cfg.Match)
	if engine == nil {
		common.LogError("Failed to initialize match engine")
		return nil, fmt.Errorf("failed to initialize match engine")
	}

	// 初始化處理器
	matches := matchHandler.NewHandler(engine, store, resultCache, &cfg.Match)
	lists := pantry.NewHandler(store)

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		// 創建新的請求上下文
		req := c.Request.WithContext(ctx)
		c.Request = req

		// 設置配置與結果快取（供健康檢查使用）
		c.Set("config", cfg)
		c.Set("result_cache", resultCache)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		// 食譜比對
		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("/matches", matches.HandleMatches)
		}

		// 冰箱庫存清單
		inventoryGroup := api.Group("/inventory")
		{
			inventoryGroup.GET("", lists.List(storage.CollectionInventory))
			inventoryGroup.POST("", lists.Add(storage.CollectionInventory))
			inventoryGroup.DELETE("/:item", lists.Remove(storage.CollectionInventory))
		}

		// 購物清單
		cartGroup := api.Group("/cart")
		{
			cartGroup.GET("", lists.List(storage.CollectionCart))
			cartGroup.POST("", lists.Add(storage.CollectionCart))
			cartGroup.DELETE("/:item", lists.Remove(storage.CollectionCart))
			cartGroup.POST("/missing", lists.AddMissing())
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
