/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数：内存sqlite数据库与测试数据工厂
 * @architecture 测试基础设施
 * @documentReference dev_docs/test_plan.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"qc-service/service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建内存sqlite测试数据库并迁移全部模型
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	err = db.AutoMigrate(
		&models.Site{},
		&models.ProductModel{},
		&models.DefectGroup{},
		&models.Defect{},
		&models.DefectImage{},
		&models.InspectionLot{},
		&models.InfLotInputRecord{},
		&models.SysConfig{},
		&models.User{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清空所有表的数据
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"defect_images",
		"defects",
		"defect_groups",
		"inspection_lots",
		"inf_lot_input_records",
		"sysconfig",
		"users",
		"sites",
		"product_models",
	}
	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// CreateSysConfig 创建一行系统配置
func (f *TestDataFactory) CreateSysConfig(intervalMinutes int) *models.SysConfig {
	cfg := &models.SysConfig{
		MssqlHost:           "erp.example.local",
		MssqlPort:           1433,
		MssqlDatabase:       "erp",
		MssqlUser:           "reader",
		MssqlPassword:       "secret",
		SyncIntervalMinutes: intervalMinutes,
		SamplingLevel:       "II",
		SamplingAQL:         "0.65",
		UpdatedBy:           "system",
	}
	if err := f.DB.Create(cfg).Error; err != nil {
		panic(err)
	}
	return cfg
}

// CreateDefectGroup 创建不良分组
func (f *TestDataFactory) CreateDefectGroup(name string) *models.DefectGroup {
	group := &models.DefectGroup{Name: name, IsActive: true}
	group.SetAudit("system", true)
	if err := f.DB.Create(group).Error; err != nil {
		panic(err)
	}
	return group
}

// CreateInspectionLot 创建检验批次
func (f *TestDataFactory) CreateInspectionLot(year, ww int, model, status string, qty, rejects int, groupID *uint) *models.InspectionLot {
	lot := &models.InspectionLot{
		LotNo:         fmt.Sprintf("LOT-%d-%d-%d", year, ww, time.Now().UnixNano()),
		ModelCode:     model,
		Year:          year,
		WW:            ww,
		Qty:           qty,
		SampleSize:    qty / 10,
		Rejects:       rejects,
		Status:        status,
		DefectGroupID: groupID,
		InspectedAt:   time.Now(),
	}
	lot.SetAudit("system", true)
	if err := f.DB.Create(lot).Error; err != nil {
		panic(err)
	}
	return lot
}

// CreateInfLot 创建ERP镜像记录
func (f *TestDataFactory) CreateInfLot(id int64, importedAt time.Time) *models.InfLotInputRecord {
	rec := &models.InfLotInputRecord{
		ID:         id,
		LotNo:      fmt.Sprintf("INF-%d", id),
		Model:      "MX100",
		InputDate:  importedAt.Add(-24 * time.Hour),
		ImportedAt: importedAt,
	}
	if err := f.DB.Create(rec).Error; err != nil {
		panic(err)
	}
	return rec
}
