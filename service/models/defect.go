/*
 * @module service/models/defect
 * @description 不良代码相关模型定义，包括不良代码、不良分组和不良图片
 * @architecture 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 不良代码生命周期管理，图片随不良代码级联管理
 * @rules 不良代码名称全局唯一（忽略大小写），图片以二进制形式存储
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/entity/service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Defect 不良代码模型
type Defect struct {
	ID            uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string `json:"name" gorm:"not null;size:100;index"`
	Description   string `json:"description" gorm:"size:500"`
	IsActive      bool   `json:"is_active" gorm:"not null;default:true"`
	DefectGroupID *uint  `json:"defect_group_id" gorm:"index"`
	AuditFields

	// 关联关系
	DefectGroup *DefectGroup  `json:"defect_group,omitempty" gorm:"foreignKey:DefectGroupID"`
	Images      []DefectImage `json:"images,omitempty" gorm:"foreignKey:DefectID"`
}

// TableName 指定表名
func (Defect) TableName() string {
	return "defects"
}

// DefectGroup 不良分组模型
type DefectGroup struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"not null;size:100;index"`
	Description string `json:"description" gorm:"size:500"`
	IsActive    bool   `json:"is_active" gorm:"not null;default:true"`
	AuditFields
}

// TableName 指定表名
func (DefectGroup) TableName() string {
	return "defect_groups"
}

// DefectImage 不良图片模型，随不良代码级联删除（应用层管理）
type DefectImage struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	DefectID    uint      `json:"defect_id" gorm:"not null;index"`
	FileName    string    `json:"file_name" gorm:"size:255"`
	ContentType string    `json:"content_type" gorm:"size:100"`
	ImageData   []byte    `json:"-" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (DefectImage) TableName() string {
	return "defect_images"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (di *DefectImage) BeforeCreate(tx *gorm.DB) error {
	if di.ID == "" {
		di.ID = uuid.New().String()
	}
	return nil
}
