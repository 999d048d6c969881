/*
 * @module service/registry/registry
 * @description 实体注册表：静态的 名称->主键风格/路由工厂 映射，启动时统一装配路由。
 *              以编译期类型化的工厂表替代源系统的运行期导出形状探测
 * @architecture 注册表模式 - 显式工厂映射
 * @documentReference dev_docs/entity_design.md
 * @stateFlow 遍历注册表 -> 执行工厂 -> 失败降级为占位路由 -> 汇总装配结果
 * @rules 单个实体装配失败不中断其余实体；DiscoverAndRegister 总是完成并返回汇总
 * @dependencies github.com/go-chi/chi/v5, gorm.io/gorm
 * @refs api/routes.go, service/entity/config.go
 */

package registry

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"qc-service/service/entity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// RouterFactory 实体路由工厂，由注册表在装配期调用
type RouterFactory func(db *gorm.DB) chi.Router

// Entry 注册表条目
type Entry struct {
	Name    string          // 实体名
	Pattern entity.KeyStyle // 主键风格
	APIPath string          // 挂载路径（相对 /api）
	Table   string          // 数据库表名
	Factory RouterFactory   // 类型化路由工厂
}

// EntityResult 单个实体的装配结果
type EntityResult struct {
	Entity  string `json:"entity"`
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Summary 装配汇总，DiscoverAndRegister 的稳定返回值
type Summary struct {
	TotalEntities int            `json:"total_entities"`
	Successful    int            `json:"successful"`
	Failed        int            `json:"failed"`
	Duration      time.Duration  `json:"duration"`
	Results       []EntityResult `json:"results"`
}

// DiscoverAndRegister 遍历注册表并将实体路由挂载到父路由上。
// 工厂返回nil或panic时降级挂载占位路由并记录失败，从不中断装配。
func DiscoverAndRegister(r chi.Router, db *gorm.DB, entries []Entry) *Summary {
	start := time.Now()
	summary := &Summary{
		TotalEntities: len(entries),
		Results:       make([]EntityResult, 0, len(entries)),
	}

	for _, e := range entries {
		router, err := buildRouter(e, db)
		result := EntityResult{Entity: e.Name, Path: e.APIPath, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
			router = stubRouter(e)
			summary.Failed++
			slog.Error("实体路由装配失败，挂载占位路由",
				"entity", e.Name, "path", e.APIPath, "error", err)
		} else {
			summary.Successful++
			slog.Debug("实体路由装配成功", "entity", e.Name, "path", e.APIPath)
		}

		r.Mount(e.APIPath, router)
		summary.Results = append(summary.Results, result)
	}

	summary.Duration = time.Since(start)
	slog.Info("实体注册表装配完成",
		"total", summary.TotalEntities,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"duration", summary.Duration.String())
	return summary
}

// buildRouter 执行工厂并吸收panic
func buildRouter(e Entry, db *gorm.DB) (router chi.Router, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			router = nil
			err = fmt.Errorf("路由工厂panic: %v", rec)
		}
	}()

	if e.Factory == nil {
		return nil, fmt.Errorf("实体 %s 未配置路由工厂", e.Name)
	}
	router = e.Factory(db)
	if router == nil {
		return nil, fmt.Errorf("实体 %s 的路由工厂返回了空路由", e.Name)
	}
	return router, nil
}

// stubRouter 占位路由：列表与单条查询返回未实现标记，保证路径可探活
func stubRouter(e Entry) chi.Router {
	r := chi.NewRouter()
	notImplemented := func(w http.ResponseWriter, req *http.Request) {
		render.Status(req, http.StatusNotImplemented)
		render.JSON(w, req, map[string]interface{}{
			"success": false,
			"msg":     fmt.Sprintf("实体 %s 暂未实现", e.Name),
		})
	}
	r.Get("/", notImplemented)
	r.Get("/{key}", notImplemented)
	return r
}
