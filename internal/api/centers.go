package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewastelocator/internal/sharecode"
)

// ListCenters 回收中心目录
// GET /api/centers
func (h *Handler) ListCenters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"centers": h.catalog.Centers()})
}

// CenterQR 回收中心位置二维码
// GET /api/centers/:index/qr.png
func (h *Handler) CenterQR(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid center index"})
		return
	}
	center, ok := h.catalog.At(idx)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "center not found"})
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	if size > 1024 {
		size = 1024
	}
	png, err := sharecode.PNG(center, size)
	if err != nil {
		h.logger.Error("qr generation failed", zap.Int("index", idx), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr generation failed"})
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
