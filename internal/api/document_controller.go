package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/integration"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
)

// DocumentController 受控文档控制器
type DocumentController struct {
	documentService service.DocumentService
	textgen         integration.TextGenerator
}

// NewDocumentController 创建受控文档控制器
// textgen 为 nil 时起草辅助接口返回 503
func NewDocumentController(documentService service.DocumentService, textgen integration.TextGenerator) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		textgen:         textgen,
	}
}

// CreateDocumentRequest 创建受控文档请求
type CreateDocumentRequest struct {
	Type         string               `json:"type" binding:"required"`
	Name         string               `json:"name" binding:"required"`
	DepartmentID string               `json:"department_id" binding:"required"`
	Initial      service.VersionInput `json:"initial" binding:"required"`
}

// Create 创建受控文档
// @Summary      创建受控文档
// @Description  创建文档容器及 1.0 草稿版本,编号按部门前缀与类型代码生成
// @Tags         文档管理
// @Accept       json
// @Produce      json
// @Param        request body CreateDocumentRequest true "文档信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /documents [post]
// @Security     BearerAuth
func (c *DocumentController) Create(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req CreateDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	detail, err := c.documentService.Create(ctx.Request.Context(), actor, &model.DocumentModel{
		Type:         req.Type,
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
	}, req.Initial)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, detail)
}

// Get 获取文档详情
// @Summary      获取文档详情
// @Description  返回文档容器、全部版本及当前生效版本
// @Tags         文档管理
// @Produce      json
// @Param        id path string true "文档 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /documents/{id} [get]
// @Security     BearerAuth
func (c *DocumentController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	detail, err := c.documentService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, detail)
}

// List 查询文档列表
// @Summary      查询文档列表
// @Tags         文档管理
// @Produce      json
// @Param        type query string false "文档类型"
// @Param        department_id query string false "部门 ID"
// @Success      200  {object}  Response
// @Router       /documents [get]
// @Security     BearerAuth
func (c *DocumentController) List(ctx *gin.Context) {
	filter := &repository.DocumentFilter{}
	if v := ctx.Query("type"); v != "" {
		filter.Type = &v
	}
	if v := ctx.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}

	documents, err := c.documentService.List(ctx.Request.Context(), filter)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, documents)
}

// Draft 文档内容起草辅助
// @Summary      文档内容起草辅助
// @Description  调用文本生成服务生成文档草稿,未配置时返回 503
// @Tags         文档管理
// @Accept       json
// @Produce      json
// @Param        request body object{prompt=string,temperature=number} true "起草提示"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /documents/draft [post]
// @Security     BearerAuth
func (c *DocumentController) Draft(ctx *gin.Context) {
	if c.textgen == nil {
		Error(ctx, http.StatusServiceUnavailable, "text generation is not configured", "")
		return
	}

	var req struct {
		Prompt      string  `json:"prompt" binding:"required"`
		Temperature float64 `json:"temperature"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if req.Temperature <= 0 {
		req.Temperature = 0.7
	}

	content, err := c.textgen.Generate(ctx.Request.Context(), req.Prompt, req.Temperature)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to generate draft", err.Error())
		return
	}

	Success(ctx, gin.H{"content": content})
}

// CreateVersion 创建文档新版本
// @Summary      创建文档新版本
// @Description  基于最新版本号递增,major 升主版本,minor 升次版本
// @Tags         文档管理
// @Accept       json
// @Produce      json
// @Param        id path string true "文档 ID"
// @Param        request body service.VersionInput true "版本内容"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /documents/{id}/versions [post]
// @Security     BearerAuth
func (c *DocumentController) CreateVersion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	var req service.VersionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	version, err := c.documentService.CreateVersion(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, version)
}

// GetVersion 获取版本详情
// @Summary      获取版本详情
// @Tags         文档管理
// @Produce      json
// @Param        versionId path string true "版本 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /document-versions/{versionId} [get]
// @Security     BearerAuth
func (c *DocumentController) GetVersion(ctx *gin.Context) {
	versionID := ctx.Param("versionId")
	if !validateRecordID(ctx, versionID) {
		return
	}

	version, err := c.documentService.GetVersion(ctx.Request.Context(), versionID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, version)
}

// SubmitVersion 提交版本进入审查
// @Summary      提交版本
// @Description  草稿版本提交审查,仅作者或管理员可操作
// @Tags         文档管理
// @Produce      json
// @Param        versionId path string true "版本 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /document-versions/{versionId}/submit [post]
// @Security     BearerAuth
func (c *DocumentController) SubmitVersion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	versionID := ctx.Param("versionId")
	if !validateRecordID(ctx, versionID) {
		return
	}

	version, err := c.documentService.SubmitVersion(ctx.Request.Context(), actor, versionID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, version)
}

// ReviewVersion 审查版本
// @Summary      审查版本
// @Description  同意进入批准环节,拒绝退回草稿
// @Tags         文档管理
// @Accept       json
// @Produce      json
// @Param        versionId path string true "版本 ID"
// @Param        request body service.ReviewInput true "审查结论"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /document-versions/{versionId}/review [post]
// @Security     BearerAuth
func (c *DocumentController) ReviewVersion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	versionID := ctx.Param("versionId")
	if !validateRecordID(ctx, versionID) {
		return
	}

	var req service.ReviewInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	version, err := c.documentService.ReviewVersion(ctx.Request.Context(), actor, versionID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, version)
}

// ApproveVersion 批准版本
// @Summary      批准版本
// @Description  批准后旧生效版本归档,同一文档同时只有一个生效版本
// @Tags         文档管理
// @Accept       json
// @Produce      json
// @Param        versionId path string true "版本 ID"
// @Param        request body service.ReviewInput true "批准结论"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /document-versions/{versionId}/approve [post]
// @Security     BearerAuth
func (c *DocumentController) ApproveVersion(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	versionID := ctx.Param("versionId")
	if !validateRecordID(ctx, versionID) {
		return
	}

	var req service.ReviewInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	version, err := c.documentService.ApproveVersion(ctx.Request.Context(), actor, versionID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, version)
}
