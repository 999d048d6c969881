/*
 * @module service/models/common
 * @description 公共模型字段定义，审计字段由服务层统一写入
 * @architecture 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 记录创建/更新时写入审计信息
 * @rules 审计字段只通过服务层写入，不允许客户端直接提交
 * @dependencies gorm.io/gorm
 * @refs service/entity/service.go
 */

package models

import (
	"time"
)

// AuditFields 审计字段，嵌入到需要记录操作人的模型中
type AuditFields struct {
	CreatedBy string    `json:"created_by" gorm:"size:100"`
	UpdatedBy string    `json:"updated_by" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// SetAudit 写入审计字段，由通用实体服务在写操作前调用
func (a *AuditFields) SetAudit(userID string, isCreate bool) {
	now := time.Now()
	if isCreate {
		a.CreatedBy = userID
		a.CreatedAt = now
	}
	a.UpdatedBy = userID
	a.UpdatedAt = now
}
