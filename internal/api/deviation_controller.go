package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/auth"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/utils"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// requireActor 从上下文取出操作者,缺失时返回 401
func requireActor(ctx *gin.Context) (workflow.Actor, bool) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "missing actor in context")
	}
	return actor, ok
}

// validateRecordID 验证记录 ID 并返回错误响应(如果无效)
func validateRecordID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateRecordID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid record ID", err.Error())
		return false
	}
	return true
}

// DeviationController 偏差记录控制器
type DeviationController struct {
	deviationService service.DeviationService
}

// NewDeviationController 创建偏差记录控制器
func NewDeviationController(deviationService service.DeviationService) *DeviationController {
	return &DeviationController{
		deviationService: deviationService,
	}
}

// CreateDeviationRequest 创建偏差请求
type CreateDeviationRequest struct {
	PlannedType         string                    `json:"planned_type"`
	GMPRelevant         bool                      `json:"gmp_relevant"`
	CategoryID          string                    `json:"category_id"`
	DepartmentID        string                    `json:"department_id" binding:"required"`
	LocationID          string                    `json:"location_id"`
	AffectedItem        model.AffectedItem        `json:"affected_item"`
	DocumentID          string                    `json:"document_id"`
	Description         string                    `json:"description" binding:"required"`
	DetailedDescription string                    `json:"detailed_description"`
	ImmediateActions    string                    `json:"immediate_actions"`
	Attachments         []service.AttachmentInput `json:"attachments"`
}

func (r *CreateDeviationRequest) model() *model.DeviationModel {
	return &model.DeviationModel{
		PlannedType:         r.PlannedType,
		GMPRelevant:         r.GMPRelevant,
		CategoryID:          r.CategoryID,
		DepartmentID:        r.DepartmentID,
		LocationID:          r.LocationID,
		AffectedItem:        r.AffectedItem,
		DocumentID:          r.DocumentID,
		Description:         r.Description,
		DetailedDescription: r.DetailedDescription,
		ImmediateActions:    r.ImmediateActions,
	}
}

// Create 创建偏差记录
// @Summary      创建偏差记录
// @Description  创建草稿状态的偏差记录,编号按部门前缀自动生成
// @Tags         偏差管理
// @Accept       json
// @Produce      json
// @Param        request body CreateDeviationRequest true "偏差信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /deviations [post]
// @Security     BearerAuth
func (c *DeviationController) Create(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req CreateDeviationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	deviation, err := c.deviationService.Create(ctx.Request.Context(), actor, req.model(), req.Attachments)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, deviation)
}

// Get 获取偏差详情
// @Summary      获取偏差详情
// @Description  返回偏差记录及附件、调查组、影响评估和关联 CAPA
// @Tags         偏差管理
// @Produce      json
// @Param        id path string true "偏差 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /deviations/{id} [get]
// @Security     BearerAuth
func (c *DeviationController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	detail, err := c.deviationService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, detail)
}

// List 查询偏差列表
// @Summary      查询偏差列表
// @Description  按状态、部门、分类、创建人和时间范围过滤
// @Tags         偏差管理
// @Produce      json
// @Param        status query string false "状态"
// @Param        department_id query string false "部门 ID"
// @Param        category_id query string false "分类 ID"
// @Param        created_by query string false "创建人 ID"
// @Success      200  {object}  Response
// @Router       /deviations [get]
// @Security     BearerAuth
func (c *DeviationController) List(ctx *gin.Context) {
	filter := &repository.DeviationFilter{}
	if v := ctx.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := ctx.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := ctx.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := ctx.Query("created_by"); v != "" {
		filter.CreatedBy = &v
	}
	if v := ctx.Query("start_time"); v != "" {
		filter.StartTime = &v
	}
	if v := ctx.Query("end_time"); v != "" {
		filter.EndTime = &v
	}

	deviations, err := c.deviationService.List(ctx.Request.Context(), filter)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, deviations)
}

// Update 更新偏差记录
// @Summary      更新偏差记录
// @Description  仅草稿状态可更新,仅创建人或管理员可操作
// @Tags         偏差管理
// @Accept       json
// @Produce      json
// @Param        id path string true "偏差 ID"
// @Param        request body CreateDeviationRequest true "偏差信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /deviations/{id} [put]
// @Security     BearerAuth
func (c *DeviationController) Update(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	var req CreateDeviationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	deviation, err := c.deviationService.Update(ctx.Request.Context(), actor, id, req.model())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, deviation)
}

// Submit 提交偏差进入审查流程
// @Summary      提交偏差
// @Description  草稿提交给部门负责人审查
// @Tags         偏差管理
// @Produce      json
// @Param        id path string true "偏差 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /deviations/{id}/submit [post]
// @Security     BearerAuth
func (c *DeviationController) Submit(ctx *gin.Context) {
	c.transition(ctx, func(actor workflow.Actor, id string) (*model.DeviationModel, error) {
		return c.deviationService.Submit(ctx.Request.Context(), actor, id)
	})
}

// Review 部门负责人审查
// @Summary      部门负责人审查
// @Description  同意进入 QA 审查,拒绝退回草稿
// @Tags         偏差管理
// @Accept       json
// @Produce      json
// @Param        id path string true "偏差 ID"
// @Param        request body service.ReviewInput true "审查结论"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /deviations/{id}/review [post]
// @Security     BearerAuth
func (c *DeviationController) Review(ctx *gin.Context) {
	c.review(ctx, c.deviationService.Review)
}

// QAReview QA 审查
// @Summary      QA 审查
// @Description  QA 接受或拒绝,拒绝退回草稿
// @Tags         偏差管理
// @Accept       json
// @Produce      json
// @Param        id path string true "偏差 ID"
// @Param        request body service.ReviewInput true "审查结论"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /deviations/{id}/qa-review [post]
// @Security     BearerAuth
func (c *DeviationController) QAReview(ctx *gin.Context) {
	c.review(ctx, c.deviationService.QAReview)
}

// AssignTeam 指派调查组
// @Summary      指派调查组
// @Description  QA 接受后指派调查组成员
// @Tags         偏差管理
// @Accept       json
// @Produce      json
// @Param        id path string true "偏差 ID"
// @Param        request body service.TeamInput true "调查组成员"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /deviations/{id}/team [post]
// @Security     BearerAuth
func (c *DeviationController) AssignTeam(ctx *gin.Context) {
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

	deviation, err := c.deviationService.AssignTeam(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, deviation)
}

// RecordImpact 记录影响评估
// @Summary      记录影响评估
// @Description  调查组成员提交问卷答案,校验答案类型后完成影响评估
// @Tags         偏差管理
// @Accept       json
// @Produce      json
// @Param        id path string true "偏差 ID"
// @Param        request body object{answers=[]service.AnswerInput} true "问卷答案"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /deviations/{id}/impact-assessment [post]
// @Security     BearerAuth
func (c *DeviationController) RecordImpact(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	var req struct {
		Answers []service.AnswerInput `json:"answers" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	deviation, err := c.deviationService.RecordImpact(ctx.Request.Context(), actor, id, req.Answers)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, deviation)
}

// transition 无请求体的状态转移公共处理
func (c *DeviationController) transition(ctx *gin.Context, fn func(workflow.Actor, string) (*model.DeviationModel, error)) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	deviation, err := fn(actor, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, deviation)
}

// review 带审查结论的状态转移公共处理
func (c *DeviationController) review(ctx *gin.Context, fn func(ctxIn context.Context, actor workflow.Actor, id string, in service.ReviewInput) (*model.DeviationModel, error)) {
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

	deviation, err := fn(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, deviation)
}
