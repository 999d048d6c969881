/*
 * @module service/catalog/entity_catalog
 * @description 各业务实体的通用CRUD服务定义：配置值 + 规范化/校验钩子
 * @architecture 分层架构 - 业务服务层装配
 * @documentReference dev_docs/entity_design.md
 * @stateFlow 启动时构造一次，进程生命周期内复用
 * @rules 名称类字段统一NFC规范化并忽略大小写去重；校验先于写入
 * @dependencies qc-service/service/entity, golang.org/x/crypto/bcrypt
 * @refs service/init.go, api/routes.go
 */

package catalog

import (
	"regexp"
	"strings"

	"qc-service/service/entity"
	"qc-service/service/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,30}$`)

// NewDefectService 不良代码实体服务
func NewDefectService(db *gorm.DB) *entity.Service[models.Defect] {
	cfg := entity.Config{
		Name:          "defects",
		Table:         "defects",
		KeyStyle:      entity.KeySerial,
		SearchFields:  []string{"name", "description"},
		SortFields:    []string{"id", "name", "created_at", "updated_at"},
		UpdateFields:  []string{"name", "description", "defect_group_id"},
		HasActiveFlag: true,
	}
	hooks := entity.Hooks[models.Defect]{
		Normalize: func(rec *models.Defect) {
			rec.Name = entity.NormalizeName(rec.Name)
			rec.Description = strings.TrimSpace(rec.Description)
		},
		Validate: func(tx *gorm.DB, rec *models.Defect, excludeKey interface{}) error {
			if err := entity.ValidateName("name", rec.Name); err != nil {
				return err
			}
			exists, err := entity.NameExists(tx, "defects", "name", "id", rec.Name, excludeKey)
			if err != nil {
				return err
			}
			if exists {
				return entity.NewValidationError("name", "名称已存在")
			}
			return nil
		},
	}
	return entity.NewService(db, cfg, hooks)
}

// NewDefectGroupService 不良分组实体服务
func NewDefectGroupService(db *gorm.DB) *entity.Service[models.DefectGroup] {
	cfg := entity.Config{
		Name:          "defect-groups",
		Table:         "defect_groups",
		KeyStyle:      entity.KeySerial,
		SearchFields:  []string{"name", "description"},
		SortFields:    []string{"id", "name", "created_at"},
		UpdateFields:  []string{"name", "description"},
		HasActiveFlag: true,
	}
	hooks := entity.Hooks[models.DefectGroup]{
		Normalize: func(rec *models.DefectGroup) {
			rec.Name = entity.NormalizeName(rec.Name)
			rec.Description = strings.TrimSpace(rec.Description)
		},
		Validate: func(tx *gorm.DB, rec *models.DefectGroup, excludeKey interface{}) error {
			if err := entity.ValidateName("name", rec.Name); err != nil {
				return err
			}
			exists, err := entity.NameExists(tx, "defect_groups", "name", "id", rec.Name, excludeKey)
			if err != nil {
				return err
			}
			if exists {
				return entity.NewValidationError("name", "名称已存在")
			}
			return nil
		},
	}
	return entity.NewService(db, cfg, hooks)
}

// NewUserService 用户实体服务，明文密码在规范化阶段转为bcrypt哈希
func NewUserService(db *gorm.DB) *entity.Service[models.User] {
	cfg := entity.Config{
		Name:          "users",
		Table:         "users",
		KeyStyle:      entity.KeySerial,
		SearchFields:  []string{"username", "display_name"},
		SortFields:    []string{"id", "username", "created_at"},
		UpdateFields:  []string{"username", "display_name", "role", "password_hash"},
		HasActiveFlag: true,
	}
	hooks := entity.Hooks[models.User]{
		Normalize: func(rec *models.User) {
			rec.Username = strings.ToLower(strings.TrimSpace(rec.Username))
			rec.DisplayName = entity.NormalizeName(rec.DisplayName)
			if rec.Password != "" {
				if hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), bcrypt.DefaultCost); err == nil {
					rec.PasswordHash = string(hash)
				}
				rec.Password = ""
			}
		},
		Merge: func(existing, rec *models.User) {
			// 更新请求未携带新密码时保留原哈希
			if rec.PasswordHash == "" {
				rec.PasswordHash = existing.PasswordHash
			}
		},
		Validate: func(tx *gorm.DB, rec *models.User, excludeKey interface{}) error {
			if !codePattern.MatchString(rec.Username) {
				return entity.NewValidationError("username", "用户名只允许2-30位字母、数字、下划线或中划线")
			}
			if rec.Role != models.RoleAdmin && rec.Role != models.RoleUser {
				return entity.NewValidationError("role", "无效的角色")
			}
			if excludeKey == nil && rec.PasswordHash == "" {
				return entity.NewValidationError("password", "密码不能为空")
			}
			exists, err := entity.NameExists(tx, "users", "username", "id", rec.Username, excludeKey)
			if err != nil {
				return err
			}
			if exists {
				return entity.NewValidationError("username", "用户名已存在")
			}
			return nil
		},
	}
	return entity.NewService(db, cfg, hooks)
}

// NewSiteService 工厂站点实体服务
func NewSiteService(db *gorm.DB) *entity.Service[models.Site] {
	cfg := entity.Config{
		Name:          "sites",
		Table:         "sites",
		KeyStyle:      entity.KeyCode,
		SearchFields:  []string{"code", "name", "region"},
		SortFields:    []string{"code", "name", "created_at"},
		// 编码创建后不可变，不进入更新白名单
		UpdateFields:  []string{"name", "region"},
		HasActiveFlag: true,
	}
	hooks := entity.Hooks[models.Site]{
		Normalize: func(rec *models.Site) {
			rec.Code = strings.ToUpper(strings.TrimSpace(rec.Code))
			rec.Name = entity.NormalizeName(rec.Name)
			rec.Region = strings.TrimSpace(rec.Region)
		},
		Validate: func(tx *gorm.DB, rec *models.Site, excludeKey interface{}) error {
			if excludeKey == nil && !codePattern.MatchString(rec.Code) {
				return entity.NewValidationError("code", "编码只允许2-30位字母、数字、下划线或中划线")
			}
			if err := entity.ValidateName("name", rec.Name); err != nil {
				return err
			}
			if excludeKey == nil {
				exists, err := entity.NameExists(tx, "sites", "code", "code", rec.Code, nil)
				if err != nil {
					return err
				}
				if exists {
					return entity.NewValidationError("code", "编码已存在")
				}
			}
			return nil
		},
	}
	return entity.NewService(db, cfg, hooks)
}

// NewProductModelService 产品机型实体服务
func NewProductModelService(db *gorm.DB) *entity.Service[models.ProductModel] {
	cfg := entity.Config{
		Name:          "product-models",
		Table:         "product_models",
		KeyStyle:      entity.KeyCode,
		SearchFields:  []string{"code", "name", "customer"},
		SortFields:    []string{"code", "name", "created_at"},
		// 编码创建后不可变，不进入更新白名单
		UpdateFields:  []string{"name", "customer"},
		HasActiveFlag: true,
	}
	hooks := entity.Hooks[models.ProductModel]{
		Normalize: func(rec *models.ProductModel) {
			rec.Code = strings.ToUpper(strings.TrimSpace(rec.Code))
			rec.Name = entity.NormalizeName(rec.Name)
			rec.Customer = strings.TrimSpace(rec.Customer)
		},
		Validate: func(tx *gorm.DB, rec *models.ProductModel, excludeKey interface{}) error {
			if excludeKey == nil && !codePattern.MatchString(rec.Code) {
				return entity.NewValidationError("code", "编码只允许2-30位字母、数字、下划线或中划线")
			}
			if err := entity.ValidateName("name", rec.Name); err != nil {
				return err
			}
			if excludeKey == nil {
				exists, err := entity.NameExists(tx, "product_models", "code", "code", rec.Code, nil)
				if err != nil {
					return err
				}
				if exists {
					return entity.NewValidationError("code", "编码已存在")
				}
			}
			return nil
		},
	}
	return entity.NewService(db, cfg, hooks)
}

// NewInspectionLotService 检验批次实体服务
func NewInspectionLotService(db *gorm.DB) *entity.Service[models.InspectionLot] {
	cfg := entity.Config{
		Name:         "inspection-lots",
		Table:        "inspection_lots",
		KeyStyle:     entity.KeySerial,
		SearchFields: []string{"lot_no", "model_code"},
		SortFields:   []string{"id", "lot_no", "year", "ww", "inspected_at"},
		UpdateFields: []string{
			"lot_no", "site_code", "model_code", "year", "ww",
			"qty", "sample_size", "rejects", "status", "defect_group_id", "inspected_at",
		},
	}
	hooks := entity.Hooks[models.InspectionLot]{
		Normalize: func(rec *models.InspectionLot) {
			rec.LotNo = strings.TrimSpace(rec.LotNo)
			rec.SiteCode = strings.ToUpper(strings.TrimSpace(rec.SiteCode))
			rec.ModelCode = strings.ToUpper(strings.TrimSpace(rec.ModelCode))
		},
		Validate: func(tx *gorm.DB, rec *models.InspectionLot, excludeKey interface{}) error {
			if rec.LotNo == "" {
				return entity.NewValidationError("lot_no", "批次号不能为空")
			}
			if rec.Status != models.LotStatusPass && rec.Status != models.LotStatusFail {
				return entity.NewValidationError("status", "判定结果必须为 pass 或 fail")
			}
			if rec.WW < 1 || rec.WW > 53 {
				return entity.NewValidationError("ww", "工作周必须在1-53之间")
			}
			if rec.Qty < 0 || rec.SampleSize < 0 || rec.Rejects < 0 {
				return entity.NewValidationError("qty", "数量字段不允许为负数")
			}
			if rec.Rejects > rec.SampleSize && rec.SampleSize > 0 {
				return entity.NewValidationError("rejects", "不良数不能超过抽样数")
			}
			return nil
		},
	}
	return entity.NewService(db, cfg, hooks)
}

// NewInfLotService ERP镜像记录的只读查询服务，写入只发生在同步路径
func NewInfLotService(db *gorm.DB) *entity.Service[models.InfLotInputRecord] {
	cfg := entity.Config{
		Name:         "inf-lots",
		Table:        "inf_lot_input_records",
		KeyStyle:     entity.KeySerial,
		SearchFields: []string{"lot_no", "item_no", "model"},
		SortFields:   []string{"id", "lot_no", "input_date", "imported_at"},
	}
	return entity.NewService(db, cfg, entity.Hooks[models.InfLotInputRecord]{})
}
