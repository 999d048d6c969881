/*
 * @module service/entity/config
 * @description 通用实体层配置定义，以配置值+泛型组合替代继承式基类
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/entity_design.md
 * @stateFlow 启动时由实体注册表静态构造，运行期只读
 * @rules 排序与搜索字段必须在白名单内，主键风格决定键解析方式
 * @dependencies gorm.io/gorm
 * @refs service/registry/registry.go, service/entity/service.go
 */

package entity

import "errors"

// KeyStyle 实体主键风格
type KeyStyle string

const (
	// KeySerial 自增整型主键
	KeySerial KeyStyle = "serial"
	// KeyCode 业务编码字符串主键
	KeyCode KeyStyle = "code"
	// KeySpecial 特殊实体，不走通用CRUD路由
	KeySpecial KeyStyle = "special"
)

// Config 实体配置，参数化通用CRUD服务
type Config struct {
	Name          string   // 实体名，如 defects
	Table         string   // 数据库表名
	KeyStyle      KeyStyle // 主键风格
	KeyColumn     string   // 主键列名，缺省按风格推导
	SearchFields  []string // 自由文本搜索列白名单
	SortFields    []string // 排序列白名单
	UpdateFields  []string // 更新时写入的列白名单，零值字段同样写入
	HasActiveFlag bool     // 是否支持 is_active 过滤
	DefaultLimit  int      // 缺省分页大小
	MaxLimit      int      // 分页大小上限
}

// Normalized 填充缺省值后的配置副本
func (c Config) Normalized() Config {
	if c.KeyColumn == "" {
		switch c.KeyStyle {
		case KeyCode:
			c.KeyColumn = "code"
		default:
			c.KeyColumn = "id"
		}
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 100
	}
	return c
}

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// ValidationError 输入校验错误，控制器映射为400
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError 创建校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
