package pantry

import (
	"net/http"
	"strings"

	"fridge-chef/internal/core/storage"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 庫存與購物清單處理器，兩個集合共用同一組操作
type Handler struct {
	store storage.Store
}

// itemRequest 新增項目的請求結構
type itemRequest struct {
	Item string `json:"item"`
}

// itemsRequest 批次新增項目的請求結構
type itemsRequest struct {
	Items []string `json:"items"`
}

// listResponse 清單響應結構
type listResponse struct {
	Items []string `json:"items"`
}

// NewHandler 創建清單處理器
func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

// List 回傳集合內容
func (h *Handler) List(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.store.List(c.Request.Context(), collection)
		if err != nil {
			h.storageError(c, collection, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Items: items})
	}
}

// Add 新增單一項目，回傳更新後的集合
func (h *Handler) Add(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req itemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "invalid request body",
			})
			return
		}

		if strings.TrimSpace(req.Item) == "" {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrEmptyItem.Code,
				Message: common.ErrEmptyItem.Message,
			})
			return
		}

		if err := h.store.Add(c.Request.Context(), collection, req.Item); err != nil {
			h.storageError(c, collection, err)
			return
		}

		items, err := h.store.List(c.Request.Context(), collection)
		if err != nil {
			h.storageError(c, collection, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Items: items})
	}
}

// Remove 移除單一項目，回傳更新後的集合
func (h *Handler) Remove(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		item := c.Param("item")
		if strings.TrimSpace(item) == "" {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrEmptyItem.Code,
				Message: common.ErrEmptyItem.Message,
			})
			return
		}

		if err := h.store.Remove(c.Request.Context(), collection, item); err != nil {
			h.storageError(c, collection, err)
			return
		}

		items, err := h.store.List(c.Request.Context(), collection)
		if err != nil {
			h.storageError(c, collection, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Items: items})
	}
}

// AddMissing 將缺漏食材批次加入購物清單
func (h *Handler) AddMissing() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req itemsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "invalid request body",
			})
			return
		}

		for _, item := range req.Items {
			if strings.TrimSpace(item) == "" {
				continue
			}
			if err := h.store.Add(c.Request.Context(), storage.CollectionCart, item); err != nil {
				h.storageError(c, storage.CollectionCart, err)
				return
			}
		}

		items, err := h.store.List(c.Request.Context(), storage.CollectionCart)
		if err != nil {
			h.storageError(c, storage.CollectionCart, err)
			return
		}
		c.JSON(http.StatusOK, listResponse{Items: items})
	}
}

// storageError 回報儲存層故障
func (h *Handler) storageError(c *gin.Context, collection string, err error) {
	common.LogError("清單儲存操作失敗",
		zap.String("集合", collection),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrStorageUnavailable.Code,
		Message: common.ErrStorageUnavailable.Message,
	})
}
