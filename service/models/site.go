/*
 * @module service/models/site
 * @description 基础主数据模型定义，包括工厂站点和产品机型
 * @architecture 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 主数据维护流程，以编码为主键
 * @rules 编码由业务方分配，创建后不可修改
 * @dependencies gorm.io/gorm
 * @refs service/entity/service.go
 */

package models

// Site 工厂站点模型，以站点编码为主键
type Site struct {
	Code     string `json:"code" gorm:"primaryKey;type:varchar(20)"`
	Name     string `json:"name" gorm:"not null;size:100"`
	Region   string `json:"region" gorm:"size:50"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`
	AuditFields
}

// TableName 指定表名
func (Site) TableName() string {
	return "sites"
}

// ProductModel 产品机型模型，以机型编码为主键
type ProductModel struct {
	Code     string `json:"code" gorm:"primaryKey;type:varchar(30)"`
	Name     string `json:"name" gorm:"not null;size:100"`
	Customer string `json:"customer" gorm:"size:100"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`
	AuditFields
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "product_models"
}
