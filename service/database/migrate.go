/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构
 * @architecture 数据访问层 - 迁移管理
 * @documentReference dev_docs/model.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致
 * @dependencies qc-service/service/models, gorm.io/gorm
 * @refs service/init.go
 */

package database

import (
	"log"

	"qc-service/service/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 基础主数据相关表
	err := db.AutoMigrate(
		&models.Site{},
		&models.ProductModel{},
		&models.DefectGroup{},
		&models.Defect{},
		&models.DefectImage{},
	)
	if err != nil {
		return err
	}

	// 检验与报表基础表
	err = db.AutoMigrate(
		&models.InspectionLot{},
	)
	if err != nil {
		return err
	}

	// 同步与配置相关表
	err = db.AutoMigrate(
		&models.InfLotInputRecord{},
		&models.SysConfig{},
	)
	if err != nil {
		return err
	}

	// 用户相关表
	err = db.AutoMigrate(
		&models.User{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// InitializeData 初始化基础数据，重复执行保持幂等
func InitializeData(db *gorm.DB) error {
	if err := seedAdminUser(db); err != nil {
		return err
	}
	return seedSysConfig(db)
}

// seedAdminUser 初始化默认管理员账号
func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "admin",
		PasswordHash: string(hash),
		DisplayName:  "系统管理员",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	admin.SetAudit("system", true)

	log.Println("创建默认管理员账号 admin，请在首次登录后修改密码")
	return db.Create(&admin).Error
}

// seedSysConfig 初始化默认系统配置行
func seedSysConfig(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.SysConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	cfg := models.SysConfig{
		MssqlPort:           1433,
		SyncIntervalMinutes: 60,
		SamplingLevel:       "II",
		SamplingAQL:         "0.65",
		UpdatedBy:           "system",
	}
	return db.Create(&cfg).Error
}
