package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Centers       int    `json:"centers"`       // 目录中的回收中心数
	CatalogSource string `json:"catalogSource"` // 目录来源
	LoadedAt      string `json:"loadedAt"`      // 最近一次加载时间
	Sessions      int    `json:"sessions"`      // 活跃会话数
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	loadedAt := ""
	if t := h.catalog.LoadedAt(); !t.IsZero() {
		loadedAt = t.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, StatusResponse{
		Centers:       h.catalog.Len(),
		CatalogSource: h.catalog.Source().String(),
		LoadedAt:      loadedAt,
		Sessions:      h.sessions.Len(),
	})
}
