/*
 * @module service/models/inspection_lot
 * @description 检验批次模型定义，LAR/DPPM/IQA 报表的数据基础
 * @architecture 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 批次录入 -> 检验判定(pass/fail) -> 报表聚合
 * @rules 工作周(ww)与年份在录入时固化，报表SQL按其分组
 * @dependencies gorm.io/gorm
 * @refs service/report/report_service.go
 */

package models

import "time"

// 检验批次判定结果
const (
	LotStatusPass = "pass"
	LotStatusFail = "fail"
)

// InspectionLot 检验批次模型
type InspectionLot struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	LotNo         string    `json:"lot_no" gorm:"not null;size:50;index"`
	SiteCode      string    `json:"site_code" gorm:"size:20;index"`
	ModelCode     string    `json:"model_code" gorm:"size:30;index"`
	Year          int       `json:"year" gorm:"not null;index"`
	WW            int       `json:"ww" gorm:"column:ww;not null"` // 工作周
	Qty           int       `json:"qty" gorm:"not null;default:0"`
	SampleSize    int       `json:"sample_size" gorm:"not null;default:0"`
	Rejects       int       `json:"rejects" gorm:"not null;default:0"`
	Status        string    `json:"status" gorm:"not null;default:'pass';size:10"` // pass, fail
	DefectGroupID *uint     `json:"defect_group_id" gorm:"index"`
	InspectedAt   time.Time `json:"inspected_at"`
	AuditFields

	// 关联关系
	DefectGroup *DefectGroup `json:"defect_group,omitempty" gorm:"foreignKey:DefectGroupID"`
}

// TableName 指定表名
func (InspectionLot) TableName() string {
	return "inspection_lots"
}
