/*
 * @module service/models/sysconfig
 * @description 系统配置模型，保存MSSQL连接参数、同步间隔和抽样设置
 * @architecture 数据模型层
 * @documentReference dev_docs/sync_design.md
 * @stateFlow 配置存储 -> 轮询读取 -> 配置更新
 * @rules 取updated_at最新的一行生效；连接密码不通过API返回
 * @dependencies gorm.io/gorm
 * @refs service/sync/mssql_manager.go, service/sync/sync_service.go
 */

package models

import "time"

// SysConfig 系统配置模型，最新一行生效
type SysConfig struct {
	ID                  uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	MssqlHost           string `json:"mssql_host" gorm:"size:100"`
	MssqlPort           int    `json:"mssql_port" gorm:"default:1433"`
	MssqlDatabase       string `json:"mssql_database" gorm:"size:100"`
	MssqlUser           string `json:"mssql_user" gorm:"size:100"`
	MssqlPassword       string `json:"-" gorm:"size:200"`
	SyncIntervalMinutes int    `json:"sync_interval_minutes" gorm:"not null;default:60"`
	SamplingLevel       string `json:"sampling_level" gorm:"size:20;default:'II'"`  // 抽样检验水平
	SamplingAQL         string `json:"sampling_aql" gorm:"size:20;default:'0.65'"` // 抽样AQL
	UpdatedBy           string `json:"updated_by" gorm:"size:100"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName 指定表名
func (SysConfig) TableName() string {
	return "sysconfig"
}
