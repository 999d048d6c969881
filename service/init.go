/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移与全局服务装配
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/model.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才提供API服务
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/database/migrate.go
 */

package service

import (
	"fmt"
	"log"
	"os"

	"qc-service/service/auth"
	"qc-service/service/catalog"
	"qc-service/service/config"
	"qc-service/service/database"
	"qc-service/service/defect"
	"qc-service/service/entity"
	"qc-service/service/event"
	"qc-service/service/models"
	"qc-service/service/monitoring"
	"qc-service/service/report"
	"qc-service/service/sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB *gorm.DB

	GlobalConfigService *config.Service
	GlobalAuthService   *auth.Service
	GlobalEventPublisher *event.Publisher
	GlobalMSSQLManager  *sync.MSSQLManager
	GlobalSyncService   *sync.Service
	GlobalSyncScheduler *sync.Scheduler
	GlobalReportService *report.Service
	GlobalImageService  *defect.ImageService
	GlobalHealthChecker *monitoring.HealthChecker

	GlobalDefectService        *entity.Service[models.Defect]
	GlobalDefectGroupService   *entity.Service[models.DefectGroup]
	GlobalUserService          *entity.Service[models.User]
	GlobalSiteService          *entity.Service[models.Site]
	GlobalProductModelService  *entity.Service[models.ProductModel]
	GlobalInspectionLotService *entity.Service[models.InspectionLot]
	GlobalInfLotService        *entity.Service[models.InfLotInputRecord]
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "qc")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("基础数据初始化失败: %v", err)
	}
	log.Println("数据库迁移与基础数据初始化完成")
}

// initServices 初始化服务
func initServices() {
	GlobalConfigService = config.NewService(DB)
	GlobalAuthService = auth.NewService(DB, auth.NewSessionStore())
	GlobalEventPublisher = event.NewPublisher()

	GlobalMSSQLManager = sync.NewMSSQLManager(GlobalConfigService)
	GlobalSyncService = sync.NewService(DB, GlobalConfigService, GlobalMSSQLManager, GlobalEventPublisher)
	GlobalSyncScheduler = sync.NewScheduler(GlobalSyncService)

	GlobalReportService = report.NewService(DB)
	GlobalImageService = defect.NewImageService(DB)
	GlobalHealthChecker = monitoring.NewHealthChecker(DB, GlobalAuthService.Store())

	GlobalDefectService = catalog.NewDefectService(DB)
	GlobalDefectGroupService = catalog.NewDefectGroupService(DB)
	GlobalUserService = catalog.NewUserService(DB)
	GlobalSiteService = catalog.NewSiteService(DB)
	GlobalProductModelService = catalog.NewProductModelService(DB)
	GlobalInspectionLotService = catalog.NewInspectionLotService(DB)
	GlobalInfLotService = catalog.NewInfLotService(DB)

	if err := GlobalSyncScheduler.Start(); err != nil {
		log.Fatalf("同步调度器启动失败: %v", err)
	}
}

// Shutdown 进程退出前的清理：停调度器、关外部连接、关数据库池
func Shutdown() {
	if GlobalSyncScheduler != nil {
		GlobalSyncScheduler.Stop()
	}
	if GlobalMSSQLManager != nil {
		if err := GlobalMSSQLManager.Close(); err != nil {
			log.Printf("关闭MSSQL连接池失败: %v", err)
		}
	}
	if GlobalEventPublisher != nil {
		if err := GlobalEventPublisher.Close(); err != nil {
			log.Printf("关闭事件发布器失败: %v", err)
		}
	}
	if GlobalAuthService != nil {
		if err := GlobalAuthService.Store().Close(); err != nil {
			log.Printf("关闭会话存储失败: %v", err)
		}
	}
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("资源清理完成")
}
