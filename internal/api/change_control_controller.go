package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/service"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// ChangeControlController 变更控制记录控制器
type ChangeControlController struct {
	ccService service.ChangeControlService
}

// NewChangeControlController 创建变更控制记录控制器
func NewChangeControlController(ccService service.ChangeControlService) *ChangeControlController {
	return &ChangeControlController{
		ccService: ccService,
	}
}

// CreateChangeControlRequest 创建变更控制请求
type CreateChangeControlRequest struct {
	ChangeType     string                    `json:"change_type"`
	Duration       string                    `json:"duration"`
	CategoryID     string                    `json:"category_id"`
	DepartmentID   string                    `json:"department_id" binding:"required"`
	LocationID     string                    `json:"location_id"`
	AffectedItem   model.AffectedItem        `json:"affected_item"`
	DocumentID     string                    `json:"document_id"`
	Description    string                    `json:"description" binding:"required"`
	Justification  string                    `json:"justification"`
	SimilarChanges string                    `json:"similar_changes"`
	RiskScore      int                       `json:"risk_score"`
	TargetDate     *time.Time                `json:"target_date"`
	Attachments    []service.AttachmentInput `json:"attachments"`
}

// Create 创建变更控制记录
// @Summary      创建变更控制记录
// @Description  创建草稿状态的独立变更控制记录
// @Tags         变更控制
// @Accept       json
// @Produce      json
// @Param        request body CreateChangeControlRequest true "变更信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /change-controls [post]
// @Security     BearerAuth
func (c *ChangeControlController) Create(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req CreateChangeControlRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	cc, err := c.ccService.Create(ctx.Request.Context(), actor, &model.ChangeControlModel{
		ChangeType:     req.ChangeType,
		Duration:       req.Duration,
		CategoryID:     req.CategoryID,
		DepartmentID:   req.DepartmentID,
		LocationID:     req.LocationID,
		AffectedItem:   req.AffectedItem,
		DocumentID:     req.DocumentID,
		Description:    req.Description,
		Justification:  req.Justification,
		SimilarChanges: req.SimilarChanges,
		RiskScore:      req.RiskScore,
		TargetDate:     req.TargetDate,
	}, req.Attachments)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, cc)
}

// Get 获取变更详情
// @Summary      获取变更详情
// @Tags         变更控制
// @Produce      json
// @Param        id path string true "变更 ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  ErrorResponse
// @Router       /change-controls/{id} [get]
// @Security     BearerAuth
func (c *ChangeControlController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	detail, err := c.ccService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, detail)
}

// List 查询变更列表
// @Summary      查询变更列表
// @Tags         变更控制
// @Produce      json
// @Param        status query string false "状态"
// @Param        department_id query string false "部门 ID"
// @Param        change_type query string false "变更类型"
// @Success      200  {object}  Response
// @Router       /change-controls [get]
// @Security     BearerAuth
func (c *ChangeControlController) List(ctx *gin.Context) {
	filter := &repository.ChangeControlFilter{}
	if v := ctx.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := ctx.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := ctx.Query("change_type"); v != "" {
		filter.ChangeType = &v
	}
	if v := ctx.Query("created_by"); v != "" {
		filter.CreatedBy = &v
	}

	ccs, err := c.ccService.List(ctx.Request.Context(), filter)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, ccs)
}

// Submit 提交变更
// @Summary      提交变更
// @Tags         变更控制
// @Produce      json
// @Param        id path string true "变更 ID"
// @Success      200  {object}  Response
// @Router       /change-controls/{id}/submit [post]
// @Security     BearerAuth
func (c *ChangeControlController) Submit(ctx *gin.Context) {
	c.transition(ctx, func(actor workflow.Actor, id string) (*model.ChangeControlModel, error) {
		return c.ccService.Submit(ctx.Request.Context(), actor, id)
	})
}

// Review 部门负责人审查
// @Summary      部门负责人审查变更
// @Tags         变更控制
// @Accept       json
// @Produce      json
// @Param        id path string true "变更 ID"
// @Param        request body service.ReviewInput true "审查结论"
// @Success      200  {object}  Response
// @Router       /change-controls/{id}/review [post]
// @Security     BearerAuth
func (c *ChangeControlController) Review(ctx *gin.Context) {
	c.review(ctx, c.ccService.Review)
}

// QAReview QA 审查
// @Summary      QA 审查变更
// @Tags         变更控制
// @Accept       json
// @Produce      json
// @Param        id path string true "变更 ID"
// @Param        request body service.ReviewInput true "审查结论"
// @Success      200  {object}  Response
// @Router       /change-controls/{id}/qa-review [post]
// @Security     BearerAuth
func (c *ChangeControlController) QAReview(ctx *gin.Context) {
	c.review(ctx, c.ccService.QAReview)
}

// AssignTeam 指派评估组
// @Summary      指派变更评估组
// @Tags         变更控制
// @Accept       json
// @Produce      json
// @Param        id path string true "变更 ID"
// @Param        request body service.TeamInput true "评估组成员"
// @Success      200  {object}  Response
// @Router       /change-controls/{id}/team [post]
// @Security     BearerAuth
func (c *ChangeControlController) AssignTeam(ctx *gin.Context) {
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

	cc, err := c.ccService.AssignTeam(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, cc)
}

// RecordImpact 记录影响评估
// @Summary      记录变更影响评估
// @Tags         变更控制
// @Accept       json
// @Produce      json
// @Param        id path string true "变更 ID"
// @Param        request body object{answers=[]service.AnswerInput} true "问卷答案"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /change-controls/{id}/impact-assessment [post]
// @Security     BearerAuth
func (c *ChangeControlController) RecordImpact(ctx *gin.Context) {
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

	cc, err := c.ccService.RecordImpact(ctx.Request.Context(), actor, id, req.Answers)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, cc)
}

// RecordHistoricalCheck 记录历史核查
// @Summary      记录历史核查
// @Description  评估完成后核查历史相似变更,备注必填
// @Tags         变更控制
// @Accept       json
// @Produce      json
// @Param        id path string true "变更 ID"
// @Param        request body service.HistoricalCheckInput true "核查备注"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /change-controls/{id}/historical-check [post]
// @Security     BearerAuth
func (c *ChangeControlController) RecordHistoricalCheck(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	var req service.HistoricalCheckInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	cc, err := c.ccService.RecordHistoricalCheck(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, cc)
}

// Acknowledge 批准人确认
// @Summary      批准人确认变更
// @Tags         变更控制
// @Produce      json
// @Param        id path string true "变更 ID"
// @Success      200  {object}  Response
// @Router       /change-controls/{id}/acknowledge [post]
// @Security     BearerAuth
func (c *ChangeControlController) Acknowledge(ctx *gin.Context) {
	c.transition(ctx, func(actor workflow.Actor, id string) (*model.ChangeControlModel, error) {
		return c.ccService.Acknowledge(ctx.Request.Context(), actor, id)
	})
}

// Close 关闭变更
// @Summary      关闭变更
// @Tags         变更控制
// @Produce      json
// @Param        id path string true "变更 ID"
// @Success      200  {object}  Response
// @Router       /change-controls/{id}/close [post]
// @Security     BearerAuth
func (c *ChangeControlController) Close(ctx *gin.Context) {
	c.transition(ctx, func(actor workflow.Actor, id string) (*model.ChangeControlModel, error) {
		return c.ccService.Close(ctx.Request.Context(), actor, id)
	})
}

// transition 无请求体的状态转移公共处理
func (c *ChangeControlController) transition(ctx *gin.Context, fn func(workflow.Actor, string) (*model.ChangeControlModel, error)) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !validateRecordID(ctx, id) {
		return
	}

	cc, err := fn(actor, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, cc)
}

// review 带审查结论的状态转移公共处理
func (c *ChangeControlController) review(ctx *gin.Context, fn func(ctxIn context.Context, actor workflow.Actor, id string, in service.ReviewInput) (*model.ChangeControlModel, error)) {
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

	cc, err := fn(ctx.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	Success(ctx, cc)
}
