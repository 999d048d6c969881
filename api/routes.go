/*
 * @module api/routes
 * @description API路由配置模块：中间件栈、鉴权入口、报表路由与实体注册表装配
 * @architecture RESTful API架构
 * @documentReference dev_docs/api_design.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs service/registry/registry.go
 */

package api

import (
	"os"

	"qc-service/api/controllers"
	authmw "qc-service/api/middleware"
	"qc-service/service"
	"qc-service/service/entity"
	"qc-service/service/registry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"gorm.io/gorm"
)

// InitRoute 初始化所有API路由，返回实体注册表的装配汇总
func InitRoute(r *chi.Mux) *registry.Summary {
	// 基础中间件
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查，不经过鉴权
	healthController := controllers.NewHealthController(service.GlobalHealthChecker)
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	sessionAuth := authmw.NewSessionAuth(service.GlobalAuthService)
	authController := controllers.NewAuthController(service.GlobalAuthService)

	var summary *registry.Summary
	r.Route("/api", func(r chi.Router) {
		// 登录入口不经过鉴权
		r.Post("/auth/login", authController.Login)

		r.Group(func(r chi.Router) {
			r.Use(sessionAuth.RequireAuthentication)
			r.Use(sessionAuth.RequireUser)

			r.Post("/auth/logout", authController.Logout)
			r.Get("/auth/me", authController.Me)

			// 报表查询
			reportController := controllers.NewReportController(service.GlobalReportService)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/lar", reportController.LAR)
				r.Get("/dppm", reportController.DPPM)
				r.Get("/iqa/summary", reportController.IQASummary)
			})

			// 实体注册表装配
			summary = registry.DiscoverAndRegister(r, service.DB, EntityEntries(sessionAuth))
		})
	})

	return summary
}

// EntityEntries 实体注册表：实体名 -> 主键风格/挂载路径/路由工厂 的静态映射
func EntityEntries(sessionAuth *authmw.SessionAuth) []registry.Entry {
	return []registry.Entry{
		{
			Name: "defects", Pattern: entity.KeySerial, APIPath: "/defects", Table: "defects",
			Factory: func(db *gorm.DB) chi.Router {
				r := controllers.NewEntityController(service.GlobalDefectService).Router()
				images := controllers.NewDefectImageController(service.GlobalImageService)
				r.Post("/{key}/images", images.Upload)
				r.Get("/{key}/images", images.List)
				r.Delete("/{key}/images", images.DeleteByDefect)
				r.Get("/{key}/images/{imageID}", images.Download)
				return r
			},
		},
		{
			Name: "defect-groups", Pattern: entity.KeySerial, APIPath: "/defect-groups", Table: "defect_groups",
			Factory: func(db *gorm.DB) chi.Router {
				return controllers.NewEntityController(service.GlobalDefectGroupService).Router()
			},
		},
		{
			Name: "users", Pattern: entity.KeySerial, APIPath: "/users", Table: "users",
			Factory: func(db *gorm.DB) chi.Router {
				r := chi.NewRouter()
				r.Use(sessionAuth.RequireAdmin)
				r.Mount("/", controllers.NewEntityController(service.GlobalUserService).Router())
				return r
			},
		},
		{
			Name: "sites", Pattern: entity.KeyCode, APIPath: "/sites", Table: "sites",
			Factory: func(db *gorm.DB) chi.Router {
				return controllers.NewEntityController(service.GlobalSiteService).Router()
			},
		},
		{
			Name: "product-models", Pattern: entity.KeyCode, APIPath: "/product-models", Table: "product_models",
			Factory: func(db *gorm.DB) chi.Router {
				return controllers.NewEntityController(service.GlobalProductModelService).Router()
			},
		},
		{
			Name: "inspection-lots", Pattern: entity.KeySerial, APIPath: "/inspection-lots", Table: "inspection_lots",
			Factory: func(db *gorm.DB) chi.Router {
				return controllers.NewEntityController(service.GlobalInspectionLotService).Router()
			},
		},
		{
			Name: "sysconfig", Pattern: entity.KeySpecial, APIPath: "/sysconfig", Table: "sysconfig",
			Factory: func(db *gorm.DB) chi.Router {
				r := chi.NewRouter()
				ctrl := controllers.NewSysConfigController(service.GlobalConfigService)
				r.Get("/", ctrl.Get)
				r.With(sessionAuth.RequireAdmin).Put("/", ctrl.Update)
				return r
			},
		},
		{
			Name: "inf-lots", Pattern: entity.KeySpecial, APIPath: "/inf-lots", Table: "inf_lot_input_records",
			Factory: func(db *gorm.DB) chi.Router {
				r := chi.NewRouter()
				lots := controllers.NewEntityController(service.GlobalInfLotService)
				syncController := controllers.NewSyncController(service.GlobalSyncService)
				r.Get("/", lots.List)
				r.Get("/{key}", lots.Get)
				r.With(sessionAuth.RequireAdmin).Post("/sync", syncController.TriggerImport)
				r.With(sessionAuth.RequireAdmin).Post("/sync/check", syncController.CheckSync)
				return r
			},
		},
	}
}
