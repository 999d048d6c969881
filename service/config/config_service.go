/*
 * @module service/config/config_service
 * @description 系统配置服务，读取/更新 sysconfig 表，最新一行生效
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/sync_design.md
 * @stateFlow 配置轮询读取 -> 同步服务/连接管理器消费
 * @rules 配置变更只追加字段更新，不换行；密码字段仅在显式提交时覆盖
 * @dependencies gorm.io/gorm, qc-service/service/models
 * @refs service/sync/mssql_manager.go, api/controllers/sysconfig_controller.go
 */

package config

import (
	"context"
	"errors"

	"qc-service/service/models"

	"gorm.io/gorm"
)

// ErrNoConfig sysconfig 表中没有任何配置行
var ErrNoConfig = errors.New("系统配置不存在")

// Service 系统配置服务
type Service struct {
	db *gorm.DB
}

// NewService 创建系统配置服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetLatest 读取最新生效的配置行
func (s *Service) GetLatest(ctx context.Context) (*models.SysConfig, error) {
	var cfg models.SysConfig
	err := s.db.WithContext(ctx).Order("updated_at DESC, id DESC").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateRequest 配置更新请求，密码单独提交避免覆盖为空
type UpdateRequest struct {
	MssqlHost           string  `json:"mssql_host"`
	MssqlPort           int     `json:"mssql_port"`
	MssqlDatabase       string  `json:"mssql_database"`
	MssqlUser           string  `json:"mssql_user"`
	MssqlPassword       *string `json:"mssql_password,omitempty"`
	SyncIntervalMinutes int     `json:"sync_interval_minutes"`
	SamplingLevel       string  `json:"sampling_level"`
	SamplingAQL         string  `json:"sampling_aql"`
}

// Update 更新最新配置行
func (s *Service) Update(ctx context.Context, req *UpdateRequest, userID string) (*models.SysConfig, error) {
	if req.SyncIntervalMinutes <= 0 {
		return nil, errors.New("同步间隔必须为正数（分钟）")
	}
	if req.MssqlPort <= 0 || req.MssqlPort > 65535 {
		return nil, errors.New("无效的MSSQL端口")
	}

	cfg, err := s.GetLatest(ctx)
	if err != nil {
		return nil, err
	}

	cfg.MssqlHost = req.MssqlHost
	cfg.MssqlPort = req.MssqlPort
	cfg.MssqlDatabase = req.MssqlDatabase
	cfg.MssqlUser = req.MssqlUser
	if req.MssqlPassword != nil {
		cfg.MssqlPassword = *req.MssqlPassword
	}
	cfg.SyncIntervalMinutes = req.SyncIntervalMinutes
	if req.SamplingLevel != "" {
		cfg.SamplingLevel = req.SamplingLevel
	}
	if req.SamplingAQL != "" {
		cfg.SamplingAQL = req.SamplingAQL
	}
	cfg.UpdatedBy = userID

	if err := s.db.WithContext(ctx).Save(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}
