package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// CAPAController CAPA 记录控制器
type CAPAController struct {
	capaService service.CAPAService
}

// NewCAPAController 创建 CAPA 记录控制器
func NewCAPAController(capaService service.CAPAService) *CAPAController {
	return &CAPAController{
		capaService: capaService,
	}
}

// CreateCAPARequest 创建 CAPA 请求
type CreateCAPARequest struct {
	DeviationID      string                    `json:"deviation_id" binding:"required"`
	DepartmentID     string                    `json:"department_id" binding:"required"`
	RootCause        string                    `json:"root_cause"`
	CorrectiveAction string                    `json:"corrective_action"`
	PreventiveAction string                    `json:"preventive_action"`
	Attachments      []service.AttachmentInput `json:"attachments"`
}

// Create 创建 CAPA 记录
// @Summary      创建 CAPA 记录
// @Description  关联偏差记录创建 CAPA,首条 CAPA 会把父偏差转入 CAPA Initiated
// @Tags         CAPA 管理
// @Accept       json
// @Produce      json
// @Param        request body CreateCAPARequest true "CAPA 信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /capas [post]
// @Security     BearerAuth
func (c *CAPAController) Create(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req CreateCAPARequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	capa, err := c.capaService.Create(ctx.Request.Context(), actor, &model.CAPAModel{
		DeviationID:      req.DeviationID,
		DepartmentID:     req.DepartmentID,
		RootCause:        req.RootCause,
		CorrectiveAction: req.CorrectiveAction,
		PreventiveAction: req.PreventiveAction,
	}, req.Attachments)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, capa)
}

// Get 获取 CAPA 详情
// @Summary      获取 CAPA 详情
// @Tags         CAPA 管理
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /capas/{id} [get]
// @Security     BearerAuth
func (c *CAPAController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	detail, err := c.capaService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, detail)
}

// List 查询 CAPA 列表
// @Summary      查询 CAPA 列表
// @Tags         CAPA 管理
// @Produce      json
// @Param        status query string false "状态"
// @Param        department_id query string false "部门 ID"
// @Param        deviation_id query string false "偏差 ID"
// @Success      200  {object}  Response
// @Router       /capas [get]
// @Security     BearerAuth
func (c *CAPAController) List(ctx *gin.Context) {
	filter := &repository.CAPAFilter{}
	if v := ctx.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := ctx.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := ctx.Query("deviation_id"); v != "" {
		filter.DeviationID = &v
	}
	if v := ctx.Query("created_by"); v != "" {
		filter.CreatedBy = &v
	}

	capas, err := c.capaService.List(ctx.Request.Context(), filter)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, capas)
}

// ListOverdue 查询超期 CAPA
// @Summary      查询超期 CAPA
// @Description  截止日期已过且未关闭的 CAPA
// @Tags         CAPA 管理
// @Produce      json
// @Success      200  {object}  Response
// @Router       /capas/overdue [get]
// @Security     BearerAuth
func (c *CAPAController) ListOverdue(ctx *gin.Context) {
	capas, err := c.capaService.ListOverdue(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, capas)
}

// Submit 提交 CAPA
// @Summary      提交 CAPA
// @Tags         CAPA 管理
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /capas/{id}/submit [post]
// @Security     BearerAuth
func (c *CAPAController) Submit(ctx *gin.Context) {
	c.transition(ctx, func(actor workflow.Actor, id string) (*model.CAPAModel, error) {
		return c.capaService.Submit(ctx.Request.Context(), actor, id)
	})
}

// Review 部门负责人审查
// @Summary      部门负责人审查 CAPA
// @Tags         CAPA 管理
// @Accept       json
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Param        request body service.ReviewInput true "审查结论"
// @Success      200  {object}  Response
// @Router       /capas/{id}/review [post]
// @Security     BearerAuth
func (c *CAPAController) Review(ctx *gin.Context) {
	c.review(ctx, c.capaService.Review)
}

// QAReview QA 审查
// @Summary      QA 审查 CAPA
// @Tags         CAPA 管理
// @Accept       json
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Param        request body service.ReviewInput true "审查结论"
// @Success      200  {object}  Response
// @Router       /capas/{id}/qa-review [post]
// @Security     BearerAuth
func (c *CAPAController) QAReview(ctx *gin.Context) {
	c.review(ctx, c.capaService.QAReview)
}

// AssignTeam 指派调查组
// @Summary      指派 CAPA 调查组
// @Tags         CAPA 管理
// @Accept       json
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Param        request body service.TeamInput true "调查组成员"
// @Success      200  {object}  Response
// @Router       /capas/{id}/team [post]
// @Security     BearerAuth
func (c *CAPAController) AssignTeam(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	var req service.TeamInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	capa, err := c.capaService.AssignTeam(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, capa)
}

// RecordInvestigation 记录调查结果
// @Summary      记录调查结果
// @Description  调查组成员记录根因与纠正/预防措施,完成调查
// @Tags         CAPA 管理
// @Accept       json
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Param        request body service.InvestigationInput true "调查结果"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /capas/{id}/investigation [post]
// @Security     BearerAuth
func (c *CAPAController) RecordInvestigation(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	var req service.InvestigationInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	capa, err := c.capaService.RecordInvestigation(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, capa)
}

// StartImmediateActions 启动立即措施
// @Summary      启动立即措施
// @Tags         CAPA 管理
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Success      200  {object}  Response
// @Router       /capas/{id}/immediate-actions [post]
// @Security     BearerAuth
func (c *CAPAController) StartImmediateActions(ctx *gin.Context) {
	c.transition(ctx, func(actor workflow.Actor, id string) (*model.CAPAModel, error) {
		return c.capaService.StartImmediateActions(ctx.Request.Context(), actor, id)
	})
}

// InitiateChangeControlRequest 从 CAPA 发起变更请求
type InitiateChangeControlRequest struct {
	ChangeType    string             `json:"change_type"`
	Duration      string             `json:"duration"`
	CategoryID    string             `json:"category_id"`
	DepartmentID  string             `json:"department_id" binding:"required"`
	LocationID    string             `json:"location_id"`
	AffectedItem  model.AffectedItem `json:"affected_item"`
	Description   string             `json:"description" binding:"required"`
	Justification string             `json:"justification"`
}

// InitiateChangeControl 从 CAPA 发起变更控制
// @Summary      从 CAPA 发起变更控制
// @Description  创建回链 CAPA 的变更控制记录,CAPA 转入 Change Control Initiated
// @Tags         CAPA 管理
// @Accept       json
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Param        request body InitiateChangeControlRequest true "变更信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /capas/{id}/change-control [post]
// @Security     BearerAuth
func (c *CAPAController) InitiateChangeControl(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	var req InitiateChangeControlRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	capa, err := c.capaService.InitiateChangeControl(ctx.Request.Context(), actor, id, &model.ChangeControlModel{
		ChangeType:    req.ChangeType,
		Duration:      req.Duration,
		CategoryID:    req.CategoryID,
		DepartmentID:  req.DepartmentID,
		LocationID:    req.LocationID,
		AffectedItem:  req.AffectedItem,
		Description:   req.Description,
		Justification: req.Justification,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, capa)
}

// Close 关闭 CAPA
// @Summary      关闭 CAPA
// @Tags         CAPA 管理
// @Produce      json
// @Param        id path string true "CAPA ID"
// @Success      200  {object}  Response
// @Router       /capas/{id}/close [post]
// @Security     BearerAuth
func (c *CAPAController) Close(ctx *gin.Context) {
	c.transition(ctx, func(actor workflow.Actor, id string) (*model.CAPAModel, error) {
		return c.capaService.Close(ctx.Request.Context(), actor, id)
	})
}

// transition 无请求体的状态转移公共处理
func (c *CAPAController) transition(ctx *gin.Context, fn func(workflow.Actor, string) (*model.CAPAModel, error)) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	capa, err := fn(actor, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, capa)
}

// review 带审查结论的状态转移公共处理
func (c *CAPAController) review(ctx *gin.Context, fn func(ctxIn context.Context, actor workflow.Actor, id string, in service.ReviewInput) (*model.CAPAModel, error)) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	var req service.ReviewInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	capa, err := fn(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, capa)
}
