package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
)

// BackupController 备份管理接口, 仅管理员可用
type BackupController struct {
	backups *service.BackupService
}

// NewBackupController 创建备份控制器
func NewBackupController(backups *service.BackupService) *BackupController {
	return &BackupController{backups: backups}
}

// CreateBackup 创建数据库备份
// @Summary      创建数据备份
// @Description  生成压缩的数据库备份文件
// @Tags         系统管理
// @Produce      json
// @Success      200  {object}  Response{data=service.BackupInfo}
// @Failure      500  {object}  ErrorResponse
// @Router       /backups [post]
// @Security     BearerAuth
func (c *BackupController) CreateBackup(ctx *gin.Context) {
	info, err := c.backups.CreateBackup(ctx.Request.Context())
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to create backup", err.Error())
		return
	}
	Success(ctx, info)
}

// ListBackups 列出全部备份文件
// @Summary      备份列表
// @Description  列出所有可用的备份文件
// @Tags         系统管理
// @Produce      json
// @Success      200  {object}  Response{data=[]service.BackupInfo}
// @Failure      500  {object}  ErrorResponse
// @Router       /backups [get]
// @Security     BearerAuth
func (c *BackupController) ListBackups(ctx *gin.Context) {
	backups, err := c.backups.ListBackups(ctx.Request.Context())
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to list backups", err.Error())
		return
	}
	Success(ctx, backups)
}

// RestoreBackup 从指定备份文件恢复数据库
// @Summary      恢复备份
// @Description  使用指定的备份文件恢复数据库
// @Tags         系统管理
// @Produce      json
// @Param        filename  path      string  true  "备份文件名"
// @Success      200       {object}  Response
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /backups/{filename}/restore [post]
// @Security     BearerAuth
func (c *BackupController) RestoreBackup(ctx *gin.Context) {
	filename := ctx.Param("filename")
	if filename == "" || filename != filepath.Base(filename) {
		Error(ctx, http.StatusBadRequest, "invalid filename", "filename must not contain path separators")
		return
	}

	backups, err := c.backups.ListBackups(ctx.Request.Context())
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to list backups", err.Error())
		return
	}
	var path string
	for _, b := range backups {
		if b.Filename == filename {
			path = b.Path
			break
		}
	}
	if path == "" {
		Error(ctx, http.StatusNotFound, "backup not found", filename)
		return
	}

	if err := c.backups.RestoreBackup(ctx.Request.Context(), path); err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to restore backup", err.Error())
		return
	}
	Success(ctx, nil)
}

// DeleteBackup 删除指定备份文件
// @Summary      删除备份
// @Description  删除指定的备份文件
// @Tags         系统管理
// @Produce      json
// @Param        filename  path      string  true  "备份文件名"
// @Success      200       {object}  Response
// @Failure      400       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /backups/{filename} [delete]
// @Security     BearerAuth
func (c *BackupController) DeleteBackup(ctx *gin.Context) {
	filename := ctx.Param("filename")
	if filename == "" {
		Error(ctx, http.StatusBadRequest, "invalid filename", "filename is required")
		return
	}
	if err := c.backups.DeleteBackup(ctx.Request.Context(), filename); err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to delete backup", err.Error())
		return
	}
	Success(ctx, nil)
}
