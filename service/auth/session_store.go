/*
 * @module service/auth/session_store
 * @description 会话存储：配置了REDIS_ADDR时使用Redis（带TTL），否则退化为进程内存储
 * @architecture 适配器模式 - 统一会话存储接口
 * @documentReference dev_docs/auth_design.md
 * @stateFlow 登录写入 -> 请求期读取 -> 过期/登出删除
 * @rules 过期会话视同不存在；内存实现由janitor周期清理
 * @dependencies github.com/go-redis/redis/v8, encoding/json
 * @refs service/auth/auth_service.go, api/middleware/session_auth.go
 */

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("会话不存在或已过期")

// Session 登录会话
type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore 会话存储接口
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewSessionStore 按环境选择会话存储实现
func NewSessionStore() SessionStore {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		slog.Info("未配置REDIS_ADDR，会话使用进程内存储")
		return NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	slog.Info("会话使用Redis存储", "addr", addr)
	return &RedisStore{client: client}
}

// RedisStore Redis会话存储，以TTL实现过期
type RedisStore struct {
	client *redis.Client
}

func sessionKey(id string) string {
	return "qc:session:" + id
}

// Save 写入会话
func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	value, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("会话过期时间必须在将来")
	}
	return s.client.Set(ctx, sessionKey(session.ID), value, ttl).Err()
}

// Get 读取会话
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	value, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(value, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete 删除会话
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

// Ping 健康检查
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 关闭底层Redis客户端
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore 进程内会话存储，开发与测试环境使用
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	done     chan struct{}
	once     sync.Once
}

// NewMemoryStore 创建进程内会话存储并启动清理协程
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go store.janitor()
	return store
}

// Save 写入会话
func (s *MemoryStore) Save(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

// Get 读取会话，过期视同不存在
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// Delete 删除会话
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Ping 健康检查
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close 停止清理协程，重复调用安全
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// janitor 周期清理过期会话
func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, session := range s.sessions {
				if now.After(session.ExpiresAt) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
