/*
 * @module service/entity/query
 * @description 通用实体查询选项与分页结果定义
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/entity_design.md
 * @stateFlow 控制器解析查询参数 -> 服务执行过滤/分页 -> 返回列表结果
 * @rules totalPages == ceil(total/limit)，返回行数不超过limit
 * @dependencies gorm.io/gorm
 * @refs api/controllers/entity_controller.go
 */

package entity

// QueryOptions 列表查询选项
type QueryOptions struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	SortBy   string `json:"sort_by"`
	SortDir  string `json:"sort_dir"` // asc, desc
	Search   string `json:"search"`
	IsActive *bool  `json:"is_active"`
}

// Pagination 分页信息
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// ListResult 列表查询结果
type ListResult[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
