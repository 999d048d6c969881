/*
 * @module service/monitoring/health_checker
 * @description 健康检查器：聚合数据库、会话存储与内存状态，
 *              输出 healthy/degraded/unhealthy 总体判定
 * @architecture 监控层 - 组件探活聚合
 * @documentReference dev_docs/ops_design.md
 * @stateFlow 逐组件探活 -> 汇总判定 -> JSON输出
 * @rules 数据库不可用即unhealthy；任一组件告警为degraded
 * @dependencies gorm.io/gorm, runtime
 * @refs api/controllers/health_controller.go
 */

package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"qc-service/service/auth"

	"gorm.io/gorm"
)

// 组件状态
const (
	StatusOK   = "ok"
	StatusWarn = "warn"
	StatusDown = "down"
)

// 总体判定
const (
	VerdictHealthy   = "healthy"
	VerdictDegraded  = "degraded"
	VerdictUnhealthy = "unhealthy"
)

// 堆内存超过该值时报告告警
const memoryWarnBytes = 1 << 30 // 1 GiB

// ComponentStatus 单组件状态
type ComponentStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

// HealthStatus 健康检查聚合结果
type HealthStatus struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components"`
}

// HealthChecker 健康检查器
type HealthChecker struct {
	db    *gorm.DB
	store auth.SessionStore
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(db *gorm.DB, store auth.SessionStore) *HealthChecker {
	return &HealthChecker{db: db, store: store}
}

// Check 执行一次健康检查
func (h *HealthChecker) Check(ctx context.Context) *HealthStatus {
	components := map[string]ComponentStatus{
		"database": h.checkDatabase(ctx),
		"sessions": h.checkSessions(ctx),
		"memory":   h.checkMemory(),
	}

	verdict := VerdictHealthy
	for name, c := range components {
		switch c.Status {
		case StatusDown:
			if name == "database" {
				verdict = VerdictUnhealthy
			} else if verdict != VerdictUnhealthy {
				verdict = VerdictDegraded
			}
		case StatusWarn:
			if verdict == VerdictHealthy {
				verdict = VerdictDegraded
			}
		}
	}

	return &HealthStatus{
		Status:     verdict,
		Timestamp:  time.Now(),
		Components: components,
	}
}

// checkDatabase 数据库探活
func (h *HealthChecker) checkDatabase(ctx context.Context) ComponentStatus {
	sqlDB, err := h.db.DB()
	if err != nil {
		return ComponentStatus{Status: StatusDown, Message: err.Error()}
	}

	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return ComponentStatus{Status: StatusDown, Message: err.Error()}
	}
	return ComponentStatus{Status: StatusOK, LatencyMs: time.Since(start).Milliseconds()}
}

// checkSessions 会话存储探活
func (h *HealthChecker) checkSessions(ctx context.Context) ComponentStatus {
	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.store.Ping(pingCtx); err != nil {
		return ComponentStatus{Status: StatusDown, Message: err.Error()}
	}
	return ComponentStatus{Status: StatusOK, LatencyMs: time.Since(start).Milliseconds()}
}

// checkMemory 内存状态
func (h *HealthChecker) checkMemory() ComponentStatus {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	status := StatusOK
	if stats.HeapAlloc > memoryWarnBytes {
		status = StatusWarn
	}
	return ComponentStatus{
		Status:  status,
		Message: formatBytes(stats.HeapAlloc),
	}
}

func formatBytes(b uint64) string {
	const mb = 1 << 20
	return fmt.Sprintf("heap %d MiB", b/mb)
}
