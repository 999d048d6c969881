/*
 * @module api/controllers/health_controller
 * @description 健康检查控制器：聚合数据库/会话/内存状态，供容器探活与负载均衡使用
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/ops_design.md
 * @stateFlow HTTP请求处理流程
 * @rules unhealthy返回503，其余200
 * @dependencies qc-service/service/monitoring, github.com/go-chi/render
 * @refs service/monitoring/health_checker.go
 */

package controllers

import (
	"net/http"
	"time"

	"qc-service/service/monitoring"

	"github.com/go-chi/render"
)

// HealthController 健康检查控制器
type HealthController struct {
	checker *monitoring.HealthChecker
}

// NewHealthController 创建健康检查控制器实例
func NewHealthController(checker *monitoring.HealthChecker) *HealthController {
	return &HealthController{checker: checker}
}

// Health 健康检查
// @Summary 健康检查
// @Description 聚合数据库、会话存储与内存状态
// @Tags 系统
// @Produce json
// @Success 200 {object} monitoring.HealthStatus
// @Failure 503 {object} monitoring.HealthStatus
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	status := c.checker.Check(r.Context())
	if status.Status == monitoring.VerdictUnhealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// ReadyResponse 就绪检查响应结构
type ReadyResponse struct {
	Status    string    `json:"status" example:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service" example:"qc-service"`
}

// Ready 就绪检查
// @Summary 就绪检查
// @Tags 系统
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /ready [get]
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ReadyResponse{
		Status:    "ready",
		Timestamp: time.Now(),
		Service:   "qc-service",
	})
}
