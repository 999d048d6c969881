/*
 * @module service/defect/image_service
 * @description 不良图片服务：单张/批量上传、读取与按不良代码批量删除。
 *              批量写入包裹在单个事务中，级联删除由应用层管理
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/entity_design.md
 * @stateFlow 校验归属不良代码 -> 事务内逐张写入 -> 提交/回滚
 * @rules 单文件上限5MB，仅允许图片MIME类型；归属不良代码必须存在
 * @dependencies gorm.io/gorm
 * @refs service/models/defect.go, api/controllers/defect_image_controller.go
 */

package defect

import (
	"context"
	"errors"
	"fmt"

	"qc-service/service/entity"
	"qc-service/service/models"

	"gorm.io/gorm"
)

// MaxImageSize 单文件大小上限
const MaxImageSize = 5 << 20 // 5 MB

// 允许的图片MIME类型
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageUpload 待写入的图片
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ImageService 不良图片服务
type ImageService struct {
	db *gorm.DB
}

// NewImageService 创建不良图片服务
func NewImageService(db *gorm.DB) *ImageService {
	return &ImageService{db: db}
}

// ValidateUpload 校验单个上传文件
func ValidateUpload(upload *ImageUpload) error {
	if len(upload.Data) == 0 {
		return entity.NewValidationError("image", "图片内容为空")
	}
	if len(upload.Data) > MaxImageSize {
		return entity.NewValidationError("image", "图片超过5MB上限")
	}
	if !allowedImageTypes[upload.ContentType] {
		return entity.NewValidationError("image", fmt.Sprintf("不支持的图片类型: %s", upload.ContentType))
	}
	return nil
}

// BulkCreate 批量写入图片，所有写入在同一事务内，任一失败整体回滚
func (s *ImageService) BulkCreate(ctx context.Context, defectID uint, uploads []ImageUpload) ([]models.DefectImage, error) {
	if len(uploads) == 0 {
		return nil, entity.NewValidationError("images", "没有待上传的图片")
	}
	for i := range uploads {
		if err := ValidateUpload(&uploads[i]); err != nil {
			return nil, err
		}
	}

	if err := s.ensureDefectExists(ctx, defectID); err != nil {
		return nil, err
	}

	images := make([]models.DefectImage, 0, len(uploads))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, upload := range uploads {
			image := models.DefectImage{
				DefectID:    defectID,
				FileName:    upload.FileName,
				ContentType: upload.ContentType,
				ImageData:   upload.Data,
			}
			if err := tx.Create(&image).Error; err != nil {
				return err
			}
			images = append(images, image)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// Get 按ID读取图片（含二进制内容）
func (s *ImageService) Get(ctx context.Context, imageID string) (*models.DefectImage, error) {
	var image models.DefectImage
	err := s.db.WithContext(ctx).Where("id = ?", imageID).First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// ListByDefect 列出某不良代码的图片元数据（不含二进制内容）
func (s *ImageService) ListByDefect(ctx context.Context, defectID uint) ([]models.DefectImage, error) {
	var images []models.DefectImage
	err := s.db.WithContext(ctx).
		Select("id", "defect_id", "file_name", "content_type", "created_at").
		Where("defect_id = ?", defectID).
		Order("created_at ASC").
		Find(&images).Error
	return images, err
}

// DeleteByDefect 按不良代码批量删除图片，返回删除数量
func (s *ImageService) DeleteByDefect(ctx context.Context, defectID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("defect_id = ?", defectID).Delete(&models.DefectImage{})
	return result.RowsAffected, result.Error
}

// ensureDefectExists 校验归属不良代码存在
func (s *ImageService) ensureDefectExists(ctx context.Context, defectID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Defect{}).Where("id = ?", defectID).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return entity.ErrNotFound
	}
	return nil
}
