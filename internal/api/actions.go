package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewastelocator/internal/app"
	"ewastelocator/internal/exporter"
	"ewastelocator/internal/geo"
)

// SearchRequest 搜索请求
type SearchRequest struct {
	Query string `json:"query"`
}

// LocateRequest 浏览器上报的定位结果
type LocateRequest struct {
	Supported bool    `json:"supported"`
	Denied    bool    `json:"denied"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Accuracy  float64 `json:"accuracy"`
}

// PickupRequest 上门回收表单；count 接受数字或字符串
type PickupRequest struct {
	Type    string          `json:"type"`
	Count   json.RawMessage `json:"count"`
	Address string          `json:"address"`
	Date    string          `json:"date"`
}

// ExportRequest 导出请求
type ExportRequest struct {
	Format string `json:"format"`
}

// MessageRequest 联系留言
type MessageRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// DownloadInfo 一次性下载地址
type DownloadInfo struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// ActionResponse 操作结果
type ActionResponse struct {
	app.Outcome
	Download *DownloadInfo `json:"download,omitempty"`
}

// MapInit 页面加载：默认视图与全部回收中心
// GET /api/map/init
func (h *Handler) MapInit(c *gin.Context) {
	st := currentSession(c)
	st.Lock()
	out := h.controller.Init(st)
	st.Unlock()
	h.respond(c, out, nil)
}

// Search 搜索回收中心
// POST /api/actions/search
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	st := currentSession(c)
	st.Lock()
	out := h.controller.Search(st, req.Query)
	st.Unlock()
	h.respond(c, out, nil)
}

// StartLocate 使用我的位置：先校验会话，浏览器据结果决定是否请求定位
// POST /api/actions/locate/start
func (h *Handler) StartLocate(c *gin.Context) {
	st := currentSession(c)
	st.Lock()
	out := h.controller.RequestLocation(st)
	st.Unlock()
	h.respond(c, out, nil)
}

// Locate 上报定位结果
// POST /api/actions/locate
func (h *Handler) Locate(c *gin.Context) {
	var req LocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var loc geo.Locator
	if req.Supported {
		r := geo.Reported{Denied: req.Denied}
		if !req.Denied {
			r.Position = &geo.Position{Lat: req.Lat, Lng: req.Lng, Accuracy: req.Accuracy}
		}
		loc = r
	}

	st := currentSession(c)
	st.Lock()
	out := h.controller.UseMyLocation(c.Request.Context(), st, loc)
	st.Unlock()
	h.respond(c, out, nil)
}

// SubmitPickup 提交上门回收请求
// POST /api/actions/pickup
func (h *Handler) SubmitPickup(c *gin.Context) {
	var req PickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	form := app.PickupForm{
		Type:    req.Type,
		Count:   rawCount(req.Count),
		Address: req.Address,
		Date:    req.Date,
	}

	st := currentSession(c)
	st.Lock()
	out, err := h.controller.SubmitPickup(c.Request.Context(), st, form)
	st.Unlock()
	h.respond(c, out, err)
}

// rawCount 把 JSON 数字或字符串统一为文本，交给控制器校验
func rawCount(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.Atoi(n.String()); err == nil {
			return n.String()
		}
		// 1.0 这类写法按整数处理
		if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return n.String()
	}
	return strings.TrimSpace(string(raw))
}

// GetFolder 当前用户的文件夹
// GET /api/folder
func (h *Handler) GetFolder(c *gin.Context) {
	st := currentSession(c)
	st.Lock()
	out, err := h.controller.Folder(c.Request.Context(), st)
	st.Unlock()
	h.respond(c, out, err)
}

// ExportFolder 导出文件夹，返回一次性下载地址
// POST /api/actions/export
func (h *Handler) ExportFolder(c *gin.Context) {
	var req ExportRequest
	// 请求体可省略
	_ = c.ShouldBindJSON(&req)

	format, err := exporter.ParseFormat(strings.ToLower(strings.TrimSpace(req.Format)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st := currentSession(c)
	st.Lock()
	email := st.Email
	out, err := h.controller.ExportFolder(c.Request.Context(), st, format)
	st.Unlock()
	if err == nil && out.Download != nil {
		h.logger.Info("folder exported", zap.String("email", email), zap.String("file", out.Download.FileName))
	}
	h.respond(c, out, err)
}

// SubmitMessage 提交联系留言
// POST /api/actions/message
func (h *Handler) SubmitMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	st := currentSession(c)
	st.Lock()
	out, err := h.controller.SubmitMessage(c.Request.Context(), st, app.MessageForm{Name: req.Name, Body: req.Message})
	st.Unlock()
	h.respond(c, out, err)
}

// DownloadExport 下载导出文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	item, ok := h.downloads.take(token, currentSession(c).Token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+item.artifact.FileName+`"`)
	c.Data(http.StatusOK, item.artifact.ContentType, item.artifact.Body)
}

// respond 统一输出操作结果
func (h *Handler) respond(c *gin.Context, out app.Outcome, err error) {
	if err != nil {
		h.logger.Error("action failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := ActionResponse{Outcome: out}
	if out.Download != nil {
		token := h.downloads.put(*out.Download, currentSession(c).Token, downloadTTL)
		resp.Download = &DownloadInfo{
			URL:      "/api/export/download/" + token,
			FileName: out.Download.FileName,
		}
	}

	status := http.StatusOK
	if out.Denied {
		status = http.StatusUnauthorized
	}
	c.JSON(status, resp)
}
