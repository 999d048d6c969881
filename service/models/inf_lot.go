/*
 * @module service/models/inf_lot
 * @description ERP投入记录镜像模型，从外部MSSQL dbo.Input 表单向同步
 * @architecture 数据模型层
 * @documentReference dev_docs/sync_design.md
 * @stateFlow MSSQL拉取 -> 按主键upsert -> imported_at 记录本次写入时间
 * @rules 主键沿用源系统ID，imported_at 用于判定下次同步资格
 * @dependencies gorm.io/gorm
 * @refs service/sync/sync_service.go
 */

package models

import "time"

// InfLotInputRecord ERP投入记录镜像，按源系统主键upsert
type InfLotInputRecord struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	LotNo      string     `json:"lot_no" gorm:"size:50;index"`
	PartSite   string     `json:"part_site" gorm:"size:20"`
	LineNo     string     `json:"line_no" gorm:"size:20"`
	ItemNo     string     `json:"item_no" gorm:"size:50"`
	Model      string     `json:"model" gorm:"size:30;index"`
	Version    string     `json:"version" gorm:"size:20"`
	InputDate  time.Time  `json:"input_date" gorm:"index"`
	FinishOn   *time.Time `json:"finish_on"`
	ImportedAt time.Time  `json:"imported_at" gorm:"index"` // 最近一次同步写入时间
}

// TableName 指定表名
func (InfLotInputRecord) TableName() string {
	return "inf_lot_input_records"
}
