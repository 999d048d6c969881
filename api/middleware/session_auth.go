/*
 * @module api/middleware/session_auth
 * @description 会话鉴权中间件：从Cookie提取会话ID，校验后注入请求上下文；
 *              提供按角色分级的门禁
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference dev_docs/auth_design.md
 * @stateFlow Cookie提取 -> 会话校验 -> 上下文注入 -> 下一个处理器
 * @rules 未登录401、角色不足403；健康检查与登录入口不经过本中间件
 * @dependencies net/http, qc-service/service/auth
 * @refs service/auth/auth_service.go, api/routes.go
 */

package middleware

import (
	"context"
	"net/http"

	"qc-service/service/auth"
	"qc-service/service/models"

	"github.com/go-chi/render"
)

// ContextKey 上下文键类型
type ContextKey string

// SessionKey 会话在上下文中的键
const SessionKey ContextKey = "session"

// SessionCookieName 会话Cookie名称
const SessionCookieName = "qc_session"

// SessionAuth 会话鉴权中间件
type SessionAuth struct {
	auth *auth.Service
}

// NewSessionAuth 创建会话鉴权中间件实例
func NewSessionAuth(authService *auth.Service) *SessionAuth {
	return &SessionAuth{auth: authService}
}

// RequireAuthentication 要求有效会话
func (m *SessionAuth) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(w, r)
			return
		}

		session, err := m.auth.Current(r.Context(), cookie.Value)
		if err != nil {
			unauthorized(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser 要求普通用户及以上角色
func (m *SessionAuth) RequireUser(next http.Handler) http.Handler {
	return m.requireRole(next, models.RoleUser, models.RoleAdmin)
}

// RequireAdmin 要求管理员角色
func (m *SessionAuth) RequireAdmin(next http.Handler) http.Handler {
	return m.requireRole(next, models.RoleAdmin)
}

func (m *SessionAuth) requireRole(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := CurrentSession(r.Context())
		if session == nil {
			unauthorized(w, r)
			return
		}
		for _, role := range roles {
			if session.Role == role {
				next.ServeHTTP(w, r)
				return
			}
		}
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, map[string]interface{}{
			"success": false,
			"msg":     "没有权限执行该操作",
		})
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"msg":     "未登录或会话已过期",
	})
}

// CurrentSession 从上下文取当前会话，未登录返回nil
func CurrentSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(SessionKey).(*auth.Session)
	return session
}

// CurrentUsername 从上下文取当前用户名，未登录返回 system
func CurrentUsername(ctx context.Context) string {
	if session := CurrentSession(ctx); session != nil {
		return session.Username
	}
	return "system"
}
