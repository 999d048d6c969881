/*
 * @module service/entity/service
 * @description 通用实体CRUD服务，泛型参数化行类型，配置值参数化表行为
 * @architecture 分层架构 - 业务服务层，组合替代继承
 * @documentReference dev_docs/entity_design.md
 * @stateFlow 规范化 -> 校验 -> 审计字段写入 -> 持久化
 * @rules 校验先于任何写操作；总数与分页查询共用同一过滤谓词；错误以error返回，控制器负责映射响应
 * @dependencies gorm.io/gorm, github.com/lib/pq, github.com/spf13/cast
 * @refs service/entity/config.go, api/controllers/entity_controller.go
 */

package entity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lib/pq"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// Auditable 带审计字段的实体
type Auditable interface {
	SetAudit(userID string, isCreate bool)
}

// Hooks 实体级别的扩展点，均可为空
type Hooks[T any] struct {
	// Normalize 持久化前的字段规范化
	Normalize func(rec *T)
	// Merge 更新场景下从现有记录结转请求未提供的字段
	Merge func(existing, rec *T)
	// Validate 写前校验；excludeKey 非空时表示更新场景，唯一性检查需排除自身
	Validate func(tx *gorm.DB, rec *T, excludeKey interface{}) error
}

// Service 通用实体CRUD服务
type Service[T any] struct {
	db    *gorm.DB
	cfg   Config
	hooks Hooks[T]
}

// NewService 创建通用实体服务
func NewService[T any](db *gorm.DB, cfg Config, hooks Hooks[T]) *Service[T] {
	return &Service[T]{db: db, cfg: cfg.Normalized(), hooks: hooks}
}

// Config 返回实体配置
func (s *Service[T]) Config() Config {
	return s.cfg
}

// Create 创建实体记录
func (s *Service[T]) Create(ctx context.Context, rec *T, userID string) (*T, error) {
	if s.hooks.Normalize != nil {
		s.hooks.Normalize(rec)
	}
	if s.hooks.Validate != nil {
		if err := s.hooks.Validate(s.db.WithContext(ctx), rec, nil); err != nil {
			return nil, err
		}
	}
	if a, ok := any(rec).(Auditable); ok {
		a.SetAudit(userID, true)
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Update 按主键更新实体记录，返回更新后的完整记录
func (s *Service[T]) Update(ctx context.Context, key string, rec *T, userID string) (*T, error) {
	cond, keyVal, err := s.keyCondition(key)
	if err != nil {
		return nil, err
	}

	var existing T
	if err := s.db.WithContext(ctx).Where(cond, keyVal).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.hooks.Normalize != nil {
		s.hooks.Normalize(rec)
	}
	if s.hooks.Merge != nil {
		s.hooks.Merge(&existing, rec)
	}
	if s.hooks.Validate != nil {
		if err := s.hooks.Validate(s.db.WithContext(ctx), rec, keyVal); err != nil {
			return nil, err
		}
	}
	if a, ok := any(rec).(Auditable); ok {
		a.SetAudit(userID, false)
	}

	// 按白名单列写入，零值字段同样生效；is_active 的翻转走 SetActive
	query := s.db.WithContext(ctx).Model(new(T)).Where(cond, keyVal)
	if len(s.cfg.UpdateFields) > 0 {
		columns := append([]string{}, s.cfg.UpdateFields...)
		if _, ok := any(rec).(Auditable); ok {
			columns = append(columns, "updated_by", "updated_at")
		}
		query = query.Select(columns)
	}
	if err := query.Updates(rec).Error; err != nil {
		return nil, err
	}

	var updated T
	if err := s.db.WithContext(ctx).Where(cond, keyVal).First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetActive 启用/停用实体记录
func (s *Service[T]) SetActive(ctx context.Context, key string, active bool, userID string) error {
	if !s.cfg.HasActiveFlag {
		return NewValidationError("is_active", "该实体不支持启用/停用")
	}
	cond, keyVal, err := s.keyCondition(key)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(new(T)).Where(cond, keyVal).
		UpdateColumns(map[string]interface{}{
			"is_active":  active,
			"updated_by": userID,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 按主键删除实体记录
func (s *Service[T]) Delete(ctx context.Context, key string) error {
	cond, keyVal, err := s.keyCondition(key)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where(cond, keyVal).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByKey 按主键查询实体记录
func (s *Service[T]) GetByKey(ctx context.Context, key string) (*T, error) {
	cond, keyVal, err := s.keyCondition(key)
	if err != nil {
		return nil, err
	}

	var rec T
	if err := s.db.WithContext(ctx).Where(cond, keyVal).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List 分页查询实体列表，总数与数据查询共用同一过滤谓词
func (s *Service[T]) List(ctx context.Context, opts QueryOptions) (*ListResult[T], error) {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	query := s.applyFilters(s.db.WithContext(ctx).Model(new(T)), opts)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []T
	err := query.Order(s.orderClause(opts)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}

	return &ListResult[T]{
		Items: items,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

// applyFilters 应用isActive与自由文本搜索过滤
func (s *Service[T]) applyFilters(query *gorm.DB, opts QueryOptions) *gorm.DB {
	if s.cfg.HasActiveFlag && opts.IsActive != nil {
		query = query.Where("is_active = ?", *opts.IsActive)
	}

	search := strings.TrimSpace(opts.Search)
	if search != "" && len(s.cfg.SearchFields) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		conds := make([]string, 0, len(s.cfg.SearchFields))
		args := make([]interface{}, 0, len(s.cfg.SearchFields))
		for _, field := range s.cfg.SearchFields {
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", pq.QuoteIdentifier(field)))
			args = append(args, pattern)
		}
		query = query.Where(strings.Join(conds, " OR "), args...)
	}

	return query
}

// orderClause 构造排序子句，排序列必须在白名单内
func (s *Service[T]) orderClause(opts QueryOptions) string {
	column := s.cfg.KeyColumn
	if opts.SortBy != "" {
		for _, field := range s.cfg.SortFields {
			if field == opts.SortBy {
				column = opts.SortBy
				break
			}
		}
	}

	direction := "ASC"
	if strings.EqualFold(opts.SortDir, "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", pq.QuoteIdentifier(column), direction)
}

// keyCondition 按主键风格解析键值，返回查询条件
func (s *Service[T]) keyCondition(key string) (string, interface{}, error) {
	cond := fmt.Sprintf("%s = ?", pq.QuoteIdentifier(s.cfg.KeyColumn))

	switch s.cfg.KeyStyle {
	case KeyCode:
		code := strings.TrimSpace(key)
		if code == "" {
			return "", nil, NewValidationError(s.cfg.KeyColumn, "编码不能为空")
		}
		return cond, code, nil
	default:
		id, err := cast.ToInt64E(key)
		if err != nil || id <= 0 {
			return "", nil, NewValidationError(s.cfg.KeyColumn, "无效的ID")
		}
		return cond, id, nil
	}
}
