/*
 * @module service/models/user
 * @description 用户模型定义，密码以 bcrypt 哈希存储
 * @architecture 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 用户创建 -> 登录鉴权 -> 停用
 * @rules 用户名全局唯一，密码哈希不允许通过API返回
 * @dependencies gorm.io/gorm
 * @refs service/auth/auth_service.go
 */

package models

// 用户角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 用户模型
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"not null;unique;size:50"`
	PasswordHash string `json:"-" gorm:"not null;size:100"`
	// Password 仅用于接收创建/改密请求的明文，规范化阶段转哈希后清空
	Password string `json:"password,omitempty" gorm:"-"`
	DisplayName  string `json:"display_name" gorm:"size:100"`
	Role         string `json:"role" gorm:"not null;default:'user';size:20"` // admin, user
	IsActive     bool   `json:"is_active" gorm:"not null;default:true"`
	AuditFields
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
