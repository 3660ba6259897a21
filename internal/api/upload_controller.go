package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/integration"
)

// 允许上传的附件扩展名
var allowedUploadExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".txt":  true,
	".csv":  true,
}

// 上传大小上限 20MB
const maxUploadSize = 20 << 20

// UploadController 附件上传控制器
// 文件先落到对象存储,返回 URL;附件元数据随记录操作一起落库
type UploadController struct {
	storage integration.ObjectStorage
}

// NewUploadController 创建附件上传控制器
func NewUploadController(storage integration.ObjectStorage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

// Upload 上传附件
// @Summary      上传附件
// @Description  multipart 上传文件到对象存储,返回可访问 URL
// @Tags         附件
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "附件文件"
// @Param        folder formData string false "存储目录" default(attachments)
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /uploads [post]
// @Security     BearerAuth
func (c *UploadController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		Error(ctx, http.StatusBadRequest, "missing file", err.Error())
		return
	}
	if file.Size > maxUploadSize {
		Error(ctx, http.StatusBadRequest, "file too large", "max upload size is 20MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		Error(ctx, http.StatusBadRequest, "unsupported file type", ext)
		return
	}

	folder := ctx.PostForm("folder")
	if folder == "" {
		folder = "attachments"
	}
	// 目录名只取最后一段,防止路径穿越
	folder = filepath.Base(folder)

	tmpDir, err := os.MkdirTemp("", "eqms-upload-")
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to prepare upload", err.Error())
		return
	}
	defer os.RemoveAll(tmpDir)

	localPath := filepath.Join(tmpDir, filepath.Base(file.Filename))
	if err := ctx.SaveUploadedFile(file, localPath); err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to save upload", err.Error())
		return
	}

	url, err := c.storage.Upload(ctx.Request.Context(), localPath, folder)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to store file", err.Error())
		return
	}

	Success(ctx, gin.H{
		"file_name": file.Filename,
		"url":       url,
	})
}
