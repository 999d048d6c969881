/*
 * @module service/sync/scheduler
 * @description 同步调度器：每分钟触发一次Sync，是否真正导入由sysconfig中的间隔决定
 * @architecture 基于cron库的定时调度
 * @documentReference dev_docs/sync_design.md
 * @stateFlow Start -> 周期触发Sync -> Stop
 * @rules 触发周期固定一分钟，间隔闸门在Sync内实现；调度器失败只记日志
 * @dependencies github.com/robfig/cron/v3
 * @refs service/sync/sync_service.go
 */

package sync

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler 周期性触发同步检查
type Scheduler struct {
	service *Service
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler 创建同步调度器
func NewScheduler(service *Service) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		service: service,
		cron:    cron.New(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@every 1m", s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("同步调度器已启动", "check_interval", "1m")
	return nil
}

// Stop 停止调度器，等待在途任务结束
func (s *Scheduler) Stop() {
	s.cancel()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	slog.Info("同步调度器已停止")
}

// runOnce 执行一次同步检查
func (s *Scheduler) runOnce() {
	result, err := s.service.Sync(s.ctx)
	if err != nil {
		slog.Error("定时同步执行失败", "error", err)
		return
	}
	if !result.ShouldImport {
		return
	}
	slog.Info("定时同步完成",
		"imported", result.Imported,
		"updated", result.Updated,
		"skipped", result.Skipped)
}
