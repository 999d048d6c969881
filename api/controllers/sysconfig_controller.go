/*
 * @module api/controllers/sysconfig_controller
 * @description 系统配置API控制器：读取与更新sysconfig
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/sync_design.md
 * @stateFlow 读取最新配置 -> 管理员提交更新 -> 同步服务下轮生效
 * @rules 更新仅限管理员；连接密码不回显
 * @dependencies qc-service/service/config, github.com/go-chi/render
 * @refs service/config/config_service.go
 */

package controllers

import (
	"errors"
	"net/http"

	"qc-service/api/middleware"
	"qc-service/service/config"

	"github.com/go-chi/render"
)

// SysConfigController 系统配置控制器
type SysConfigController struct {
	config *config.Service
}

// NewSysConfigController 创建系统配置控制器实例
func NewSysConfigController(configService *config.Service) *SysConfigController {
	return &SysConfigController{config: configService}
}

// Get 读取最新配置
// @Summary 读取系统配置
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/sysconfig [get]
func (c *SysConfigController) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.config.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, config.ErrNoConfig) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", cfg))
}

// Update 更新配置
// @Summary 更新系统配置
// @Accept json
// @Produce json
// @Param body body config.UpdateRequest true "配置信息"
// @Success 200 {object} APIResponse
// @Router /api/sysconfig [put]
func (c *SysConfigController) Update(w http.ResponseWriter, r *http.Request) {
	var req config.UpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return
	}

	cfg, err := c.config.Update(r.Context(), &req, middleware.CurrentUsername(r.Context()))
	if err != nil {
		if errors.Is(err, config.ErrNoConfig) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	render.JSON(w, r, SuccessResponse("更新成功", cfg))
}
