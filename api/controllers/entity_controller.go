/*
 * @module api/controllers/entity_controller
 * @description 通用实体API控制器：由泛型CRUD服务参数化，统一列表/增删改查路由
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/entity_design.md
 * @stateFlow HTTP请求 -> 参数解析 -> 服务调用 -> 信封响应
 * @rules 分页参数 page/limit，排序 sort_by/sort_dir，搜索 search，过滤 is_active
 * @dependencies qc-service/service/entity, github.com/go-chi/render, github.com/spf13/cast
 * @refs service/entity/service.go, api/routes.go
 */

package controllers

import (
	"net/http"

	"qc-service/api/middleware"
	"qc-service/service/entity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// EntityController 通用实体控制器
type EntityController[T any] struct {
	svc *entity.Service[T]
}

// NewEntityController 创建通用实体控制器
func NewEntityController[T any](svc *entity.Service[T]) *EntityController[T] {
	return &EntityController[T]{svc: svc}
}

// Router 构造实体的标准CRUD路由
func (c *EntityController[T]) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Get("/{key}", c.Get)
	r.Put("/{key}", c.Update)
	r.Put("/{key}/active", c.SetActive)
	r.Delete("/{key}", c.Delete)
	return r
}

// List 分页查询实体列表
// @Summary 分页查询实体列表
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param search query string false "搜索关键字"
// @Param is_active query bool false "启用状态过滤"
// @Success 200 {object} APIResponse
func (c *EntityController[T]) List(w http.ResponseWriter, r *http.Request) {
	result, err := c.svc.List(r.Context(), parseQueryOptions(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", result))
}

// Get 按主键查询实体
func (c *EntityController[T]) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := c.svc.GetByKey(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", rec))
}

// Create 创建实体
func (c *EntityController[T]) Create(w http.ResponseWriter, r *http.Request) {
	var req T
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return
	}

	rec, err := c.svc.Create(r.Context(), &req, middleware.CurrentUsername(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, SuccessResponse("创建成功", rec))
}

// Update 更新实体
func (c *EntityController[T]) Update(w http.ResponseWriter, r *http.Request) {
	var req T
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return
	}

	rec, err := c.svc.Update(r.Context(), chi.URLParam(r, "key"), &req, middleware.CurrentUsername(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("更新成功", rec))
}

// SetActive 启用/停用实体
func (c *EntityController[T]) SetActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.IsActive == nil {
		writeError(w, r, http.StatusBadRequest, "请求必须包含 is_active 字段")
		return
	}

	err := c.svc.SetActive(r.Context(), chi.URLParam(r, "key"), *req.IsActive, middleware.CurrentUsername(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("更新成功", nil))
}

// Delete 删除实体
func (c *EntityController[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// parseQueryOptions 解析通用列表查询参数
func parseQueryOptions(r *http.Request) entity.QueryOptions {
	q := r.URL.Query()
	opts := entity.QueryOptions{
		Page:    cast.ToInt(q.Get("page")),
		Limit:   cast.ToInt(q.Get("limit")),
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
		Search:  q.Get("search"),
	}
	if v := q.Get("is_active"); v != "" {
		b := cast.ToBool(v)
		opts.IsActive = &b
	}
	return opts
}
