/*
 * @module api/controllers/auth_controller
 * @description 鉴权API控制器：登录、登出与当前用户查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/auth_design.md
 * @stateFlow 登录 -> 下发会话Cookie -> 请求期校验 -> 登出清除
 * @rules Cookie为HttpOnly；登录失败不区分用户名/密码错误
 * @dependencies qc-service/service/auth, github.com/go-chi/render
 * @refs api/middleware/session_auth.go
 */

package controllers

import (
	"errors"
	"net/http"
	"time"

	"qc-service/api/middleware"
	"qc-service/service/auth"

	"github.com/go-chi/render"
)

// AuthController 鉴权控制器
type AuthController struct {
	auth *auth.Service
}

// NewAuthController 创建鉴权控制器实例
func NewAuthController(authService *auth.Service) *AuthController {
	return &AuthController{auth: authService}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 用户登录
// @Summary 用户登录
// @Accept json
// @Produce json
// @Param body body LoginRequest true "登录信息"
// @Success 200 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /api/auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "请求参数格式错误")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "用户名和密码不能为空")
		return
	}

	session, err := c.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	render.JSON(w, r, SuccessResponse("登录成功", map[string]interface{}{
		"username":   session.Username,
		"role":       session.Role,
		"expires_at": session.ExpiresAt,
	}))
}

// Logout 用户登出
// @Summary 用户登出
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.CurrentSession(r.Context()); session != nil {
		if err := c.auth.Logout(r.Context(), session.ID); err != nil {
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	render.JSON(w, r, SuccessResponse("登出成功", nil))
}

// Me 查询当前登录用户
// @Summary 查询当前登录用户
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.CurrentSession(r.Context())
	if session == nil {
		writeError(w, r, http.StatusUnauthorized, "未登录")
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", session))
}
