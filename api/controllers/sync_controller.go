/*
 * @module api/controllers/sync_controller
 * @description ERP导入API控制器：手动触发导入与镜像记录查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/sync_design.md
 * @stateFlow 手动触发 -> 导入服务执行 -> 返回计数结果
 * @rules 手动导入绕过间隔闸门；源级失败返回502
 * @dependencies qc-service/service/sync, github.com/go-chi/render
 * @refs service/sync/sync_service.go
 */

package controllers

import (
	"net/http"

	"qc-service/service/sync"

	"github.com/go-chi/render"
)

// SyncController ERP导入控制器
type SyncController struct {
	sync *sync.Service
}

// NewSyncController 创建导入控制器实例
func NewSyncController(syncService *sync.Service) *SyncController {
	return &SyncController{sync: syncService}
}

// TriggerImport 手动触发一次导入，可选日期范围
// @Summary 手动触发ERP导入
// @Accept json
// @Produce json
// @Param body body sync.ImportParams false "日期范围，格式2006-01-02"
// @Success 200 {object} APIResponse
// @Failure 502 {object} APIResponse
// @Router /api/inf-lots/sync [post]
func (c *SyncController) TriggerImport(w http.ResponseWriter, r *http.Request) {
	var params sync.ImportParams
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &params); err != nil {
			writeError(w, r, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
			return
		}
	}

	result, err := c.sync.ImportFromMSSQL(r.Context(), params)
	if err != nil {
		if result != nil {
			// 源级失败：返回结构化失败结果
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, APIResponse{Success: false, Msg: result.Message, Data: result})
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	render.JSON(w, r, SuccessResponse(result.Message, result))
}

// CheckSync 执行一次带间隔闸门的同步检查
// @Summary 执行同步检查
// @Produce json
// @Success 200 {object} APIResponse
// @Router /api/inf-lots/sync/check [post]
func (c *SyncController) CheckSync(w http.ResponseWriter, r *http.Request) {
	result, err := c.sync.Sync(r.Context())
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	render.JSON(w, r, SuccessResponse(result.Message, result))
}
