package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewastelocator/internal/app"
	"ewastelocator/internal/catalog"
	"ewastelocator/internal/session"
)

const (
	// SessionCookie 会话 cookie 名
	SessionCookie = "ewaste_session"

	sessionKey  = "session"
	downloadTTL = 5 * time.Minute
)

// Accounts 登录所需的用户存储
type Accounts interface {
	CreateUser(ctx context.Context, email, password string) error
	Authenticate(ctx context.Context, email, password string) error
}

// Handler API 处理器
type Handler struct {
	controller *app.Controller
	catalog    *catalog.Catalog
	sessions   *session.Store
	accounts   Accounts
	downloads  *downloadStore
	logger     *zap.Logger
	secure     bool
}

// NewHandler 创建 API 处理器
func NewHandler(controller *app.Controller, cat *catalog.Catalog, sessions *session.Store, accounts Accounts, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		controller: controller,
		catalog:    cat,
		sessions:   sessions,
		accounts:   accounts,
		downloads:  newDownloadStore(),
		logger:     logger,
	}
}

// SetSecureCookies HTTPS 部署时开启
func (h *Handler) SetSecureCookies(secure bool) {
	h.secure = secure
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.Use(h.withSession)

	// 系统状态
	router.GET("/status", h.GetStatus)

	// 回收中心目录
	router.GET("/centers", h.ListCenters)
	router.GET("/centers/:index/qr.png", h.CenterQR)

	// 地图初始化
	router.GET("/map/init", h.MapInit)

	// 会话
	router.GET("/session", h.GetSession)
	router.POST("/session/register", h.Register)
	router.POST("/session/login", h.Login)
	router.POST("/session/logout", h.Logout)

	// 用户操作（需登录）
	router.POST("/actions/search", h.Search)
	router.POST("/actions/locate/start", h.StartLocate)
	router.POST("/actions/locate", h.Locate)
	router.POST("/actions/pickup", h.SubmitPickup)
	router.POST("/actions/export", h.ExportFolder)
	router.POST("/actions/message", h.SubmitMessage)

	// 文件夹
	router.GET("/folder", h.GetFolder)
	router.GET("/export/download/:token", h.DownloadExport)
}

// withSession 按 cookie 取会话，不存在时新建
func (h *Handler) withSession(c *gin.Context) {
	var st *session.State
	if token, err := c.Cookie(SessionCookie); err == nil {
		st, _ = h.sessions.Get(token)
	}
	if st == nil {
		st = h.sessions.Create()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, st.Token, 0, "/", "", h.secure, true)
	}
	c.Set(sessionKey, st)
	c.Next()
}

func currentSession(c *gin.Context) *session.State {
	v, _ := c.Get(sessionKey)
	st, _ := v.(*session.State)
	return st
}
