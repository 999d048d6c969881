/*
 * @module service/auth/auth_service
 * @description 会话鉴权服务：登录校验（bcrypt）、会话创建/销毁/查询
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/auth_design.md
 * @stateFlow 登录 -> 会话写入存储 -> 请求期校验 -> 登出删除
 * @rules 停用账号不允许登录；登录失败统一返回"用户名或密码错误"，不区分原因
 * @dependencies golang.org/x/crypto/bcrypt, github.com/google/uuid
 * @refs service/auth/session_store.go, service/models/user.go
 */

package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"qc-service/service/models"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials 用户名或密码错误（含账号停用）
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// Service 鉴权服务
type Service struct {
	db    *gorm.DB
	store SessionStore
	ttl   time.Duration
}

// NewService 创建鉴权服务，会话有效期由 SESSION_TTL_HOURS 控制，缺省8小时
func NewService(db *gorm.DB, store SessionStore) *Service {
	ttlHours := cast.ToInt(os.Getenv("SESSION_TTL_HOURS"))
	if ttlHours <= 0 {
		ttlHours = 8
	}
	return &Service{db: db, store: store, ttl: time.Duration(ttlHours) * time.Hour}
}

// Store 返回底层会话存储（健康检查使用）
func (s *Service) Store() SessionStore {
	return s.store
}

// Login 校验用户名密码并创建会话
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		slog.Warn("停用账号尝试登录", "username", username)
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	slog.Info("用户登录成功", "username", username, "role", user.Role)
	return session, nil
}

// Logout 销毁会话
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// Current 查询会话，过期或不存在返回 ErrSessionNotFound
func (s *Service) Current(ctx context.Context, sessionID string) (*Session, error) {
	return s.store.Get(ctx, sessionID)
}
