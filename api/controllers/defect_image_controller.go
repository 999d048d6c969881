/*
 * @module api/controllers/defect_image_controller
 * @description 不良图片API控制器：multipart上传（单张image/多张images[]）、下载与批量删除
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/entity_design.md
 * @stateFlow multipart解析 -> 逐文件读取 -> 服务层事务写入
 * @rules 单文件上限5MB，仅允许图片MIME；下载按存储的Content-Type回写
 * @dependencies qc-service/service/defect, mime/multipart
 * @refs service/defect/image_service.go
 */

package controllers

import (
	"io"
	"mime/multipart"
	"net/http"

	"qc-service/service/defect"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// 整个multipart请求体的内存上限
const maxUploadMemory = 32 << 20

// DefectImageController 不良图片控制器
type DefectImageController struct {
	images *defect.ImageService
}

// NewDefectImageController 创建不良图片控制器实例
func NewDefectImageController(images *defect.ImageService) *DefectImageController {
	return &DefectImageController{images: images}
}

// Upload 上传图片，支持单字段image与多字段images[]
// @Summary 上传不良图片
// @Accept multipart/form-data
// @Produce json
// @Param key path int true "不良代码ID"
// @Success 201 {object} APIResponse
// @Router /api/defects/{key}/images [post]
func (c *DefectImageController) Upload(w http.ResponseWriter, r *http.Request) {
	defectID := cast.ToUint(chi.URLParam(r, "key"))
	if defectID == 0 {
		writeError(w, r, http.StatusBadRequest, "无效的不良代码ID")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart请求解析失败: "+err.Error())
		return
	}

	var headers []*multipart.FileHeader
	if form := r.MultipartForm; form != nil {
		headers = append(headers, form.File["image"]...)
		headers = append(headers, form.File["images[]"]...)
	}
	if len(headers) == 0 {
		writeError(w, r, http.StatusBadRequest, "请求中没有图片文件")
		return
	}

	uploads := make([]defect.ImageUpload, 0, len(headers))
	for _, header := range headers {
		upload, err := readUpload(header)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		uploads = append(uploads, *upload)
	}

	images, err := c.images.BulkCreate(r.Context(), defectID, uploads)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// 响应中不携带二进制内容
	meta := make([]map[string]interface{}, 0, len(images))
	for _, img := range images {
		meta = append(meta, map[string]interface{}{
			"id":           img.ID,
			"defect_id":    img.DefectID,
			"file_name":    img.FileName,
			"content_type": img.ContentType,
			"created_at":   img.CreatedAt,
		})
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, SuccessResponse("上传成功", meta))
}

// List 列出不良代码下的图片元数据
// @Summary 列出不良图片
// @Produce json
// @Param key path int true "不良代码ID"
// @Success 200 {object} APIResponse
// @Router /api/defects/{key}/images [get]
func (c *DefectImageController) List(w http.ResponseWriter, r *http.Request) {
	defectID := cast.ToUint(chi.URLParam(r, "key"))
	if defectID == 0 {
		writeError(w, r, http.StatusBadRequest, "无效的不良代码ID")
		return
	}

	images, err := c.images.ListByDefect(r.Context(), defectID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", images))
}

// Download 下载图片二进制内容
// @Summary 下载不良图片
// @Produce image/jpeg
// @Param imageID path string true "图片ID"
// @Router /api/defects/{key}/images/{imageID} [get]
func (c *DefectImageController) Download(w http.ResponseWriter, r *http.Request) {
	image, err := c.images.Get(r.Context(), chi.URLParam(r, "imageID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", image.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(image.ImageData)
}

// DeleteByDefect 删除不良代码下的所有图片
// @Summary 批量删除不良图片
// @Produce json
// @Param key path int true "不良代码ID"
// @Success 200 {object} APIResponse
// @Router /api/defects/{key}/images [delete]
func (c *DefectImageController) DeleteByDefect(w http.ResponseWriter, r *http.Request) {
	defectID := cast.ToUint(chi.URLParam(r, "key"))
	if defectID == 0 {
		writeError(w, r, http.StatusBadRequest, "无效的不良代码ID")
		return
	}

	deleted, err := c.images.DeleteByDefect(r.Context(), defectID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", map[string]int64{"deleted": deleted}))
}

// readUpload 读取单个multipart文件
func readUpload(header *multipart.FileHeader) (*defect.ImageUpload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// 多读一个字节以识别超限文件
	data, err := io.ReadAll(io.LimitReader(file, defect.MaxImageSize+1))
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	return &defect.ImageUpload{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
