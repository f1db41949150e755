package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewastelocator/internal/store"
)

// SessionResponse 会话状态
type SessionResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Email    string `json:"email,omitempty"`
}

// CredentialsRequest 注册/登录请求
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GetSession 获取当前会话状态
// GET /api/session
func (h *Handler) GetSession(c *gin.Context) {
	st := currentSession(c)
	st.Lock()
	resp := SessionResponse{LoggedIn: st.LoggedIn, Email: st.Email}
	st.Unlock()
	c.JSON(http.StatusOK, resp)
}

// Register 注册并登录
// POST /api/session/register
func (h *Handler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	if err := h.accounts.CreateUser(c.Request.Context(), email, req.Password); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}
	h.login(c, email)
}

// Login 登录：校验密码后设置会话标记
// POST /api/session/login
func (h *Handler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	email := strings.TrimSpace(req.Email)

	if err := h.accounts.Authenticate(c.Request.Context(), email, req.Password); err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.login(c, email)
}

func (h *Handler) login(c *gin.Context, email string) {
	st := currentSession(c)
	if !h.sessions.Login(st.Token, email) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	h.logger.Info("user logged in", zap.String("email", email))
	c.JSON(http.StatusOK, SessionResponse{LoggedIn: true, Email: email})
}

// Logout 退出登录
// POST /api/session/logout
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout(currentSession(c).Token)
	c.JSON(http.StatusOK, SessionResponse{})
}
