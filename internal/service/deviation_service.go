package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/metrics"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// AttachmentInput 附件输入
// 文件已上传到对象存储,这里只落库元数据
type AttachmentInput struct {
	Field    string `json:"field"`
	FileName string `json:"file_name" binding:"required"`
	URL      string `json:"url" binding:"required"`
}

// ReviewInput 审查输入
type ReviewInput struct {
	Approve  bool   `json:"approve"`
	Comments string `json:"comments"`
}

// TeamInput 调查组输入
type TeamInput struct {
	MemberIDs []string `json:"member_ids" binding:"required"`
	Remarks   string   `json:"remarks"`
}

// DeviationDetail 偏差详情投影
type DeviationDetail struct {
	Deviation   *model.DeviationModel         `json:"deviation"`
	Attachments []*model.AttachmentModel      `json:"attachments"`
	Team        *model.InvestigationTeamModel `json:"team,omitempty"`
	Assessment  *model.ImpactAssessmentModel  `json:"assessment,omitempty"`
	CAPAs       []*model.CAPAModel            `json:"capas"`
}

// DeviationService 偏差记录服务接口
type DeviationService interface {
	Create(ctx context.Context, actor workflow.Actor, d *model.DeviationModel, attachments []AttachmentInput) (*model.DeviationModel, error)
	Get(ctx context.Context, id string) (*DeviationDetail, error)
	List(ctx context.Context, filter *repository.DeviationFilter) ([]*model.DeviationModel, error)
	Update(ctx context.Context, actor workflow.Actor, id string, d *model.DeviationModel) (*model.DeviationModel, error)

	Submit(ctx context.Context, actor workflow.Actor, id string) (*model.DeviationModel, error)
	Review(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.DeviationModel, error)
	QAReview(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.DeviationModel, error)
	AssignTeam(ctx context.Context, actor workflow.Actor, id string, in TeamInput) (*model.DeviationModel, error)
	RecordImpact(ctx context.Context, actor workflow.Actor, id string, answers []AnswerInput) (*model.DeviationModel, error)
}

// deviationService 偏差记录服务实现
type deviationService struct {
	db          *gorm.DB
	machine     *workflow.Machine
	deviations  repository.DeviationRepository
	capas       repository.CAPARepository
	teams       repository.TeamRepository
	impacts     repository.ImpactRepository
	attachments repository.AttachmentRepository
	catalog     repository.CatalogRepository
	users       repository.UserRepository
	audit       AuditLogService
	notifier    Notifier
}

// NewDeviationService 创建偏差记录服务
func NewDeviationService(
	db *gorm.DB,
	deviations repository.DeviationRepository,
	capas repository.CAPARepository,
	teams repository.TeamRepository,
	impacts repository.ImpactRepository,
	attachments repository.AttachmentRepository,
	catalog repository.CatalogRepository,
	users repository.UserRepository,
	audit AuditLogService,
	notifier Notifier,
) DeviationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &deviationService{
		db:          db,
		machine:     workflow.DeviationMachine(),
		deviations:  deviations,
		capas:       capas,
		teams:       teams,
		impacts:     impacts,
		attachments: attachments,
		catalog:     catalog,
		users:       users,
		audit:       audit,
		notifier:    notifier,
	}
}

// Create 创建偏差记录
// 记录与附件元数据在同一事务中写入,编号在 BeforeCreate 钩子中生成
func (s *deviationService) Create(ctx context.Context, actor workflow.Actor, d *model.DeviationModel, attachments []AttachmentInput) (*model.DeviationModel, error) {
	d.CreatedBy = actor.UserID
	d.Status = string(workflow.StatusDraft)
	if err := d.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		for _, in := range attachments {
			att := &model.AttachmentModel{
				ParentType: model.ParentTypeDeviation,
				ParentID:   d.ID,
				Field:      in.Field,
				FileName:   in.FileName,
				URL:        in.URL,
				UploadedBy: actor.UserID,
			}
			if err := s.attachments.Save(tx, att); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err, "failed to create deviation")
	}

	metrics.RecordCreated("deviation")
	_ = s.audit.RecordAction(ctx, actor.UserID, "create", "deviation", d.ID, map[string]string{
		"deviation_number": d.DeviationNumber,
	})
	return d, nil
}

// Get 查询偏差详情,聚合附件、调查组、影响评估和关联 CAPA
func (s *deviationService) Get(ctx context.Context, id string) (*DeviationDetail, error) {
	d, err := s.deviations.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "deviation not found")
	}

	detail := &DeviationDetail{Deviation: d}

	if detail.Attachments, err = s.attachments.FindByParent(model.ParentTypeDeviation, id); err != nil {
		return nil, wrapError(err, "failed to load attachments")
	}
	if team, err := s.teams.FindByParent(model.ParentTypeDeviation, id); err == nil {
		detail.Team = team
	}
	if assessment, err := s.impacts.FindByParent(model.ParentTypeDeviation, id); err == nil {
		detail.Assessment = assessment
	}
	if detail.CAPAs, err = s.capas.FindByDeviationID(id); err != nil {
		return nil, wrapError(err, "failed to load CAPAs")
	}
	return detail, nil
}

// List 查询偏差列表
func (s *deviationService) List(ctx context.Context, filter *repository.DeviationFilter) ([]*model.DeviationModel, error) {
	ds, err := s.deviations.FindByFilter(filter)
	if err != nil {
		return nil, wrapError(err, "failed to list deviations")
	}
	return ds, nil
}

// Update 修改偏差记录
// 仅 Draft 状态可修改,且仅创建者本人或管理员可操作
func (s *deviationService) Update(ctx context.Context, actor workflow.Actor, id string, in *model.DeviationModel) (*model.DeviationModel, error) {
	d, err := s.deviations.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "deviation not found")
	}
	if d.Status != string(workflow.StatusDraft) {
		return nil, NewInvalid("only draft deviations can be updated")
	}
	if d.CreatedBy != actor.UserID && actor.Role != workflow.RoleAdmin {
		return nil, NewForbidden("only the creator can update this deviation")
	}

	d.PlannedType = in.PlannedType
	d.GMPRelevant = in.GMPRelevant
	d.CategoryID = in.CategoryID
	d.LocationID = in.LocationID
	d.AffectedItem = in.AffectedItem
	d.DocumentID = in.DocumentID
	d.Description = in.Description
	d.DetailedDescription = in.DetailedDescription
	d.ImmediateActions = in.ImmediateActions
	if err := d.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}

	if err := s.deviations.Save(d); err != nil {
		return nil, wrapError(err, "failed to update deviation")
	}
	_ = s.audit.RecordAction(ctx, actor.UserID, "update", "deviation", d.ID, nil)
	return d, nil
}

// Submit 提交偏差进入部门负责人审查
func (s *deviationService) Submit(ctx context.Context, actor workflow.Actor, id string) (*model.DeviationModel, error) {
	now := time.Now()
	return s.applyTransition(ctx, actor, id, workflow.ActionSubmit, map[string]interface{}{
		"submitted_by": actor.UserID,
		"submitted_at": &now,
	}, nil)
}

// Review 部门负责人审查,拒绝时回到 Draft
func (s *deviationService) Review(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.DeviationModel, error) {
	action := workflow.ActionReviewApprove
	if !in.Approve {
		action = workflow.ActionReviewReject
	}
	now := time.Now()
	return s.applyTransition(ctx, actor, id, action, map[string]interface{}{
		"reviewed_by":     actor.UserID,
		"reviewed_at":     &now,
		"review_comments": in.Comments,
	}, nil)
}

// QAReview QA 审查,拒绝时回到 Draft
func (s *deviationService) QAReview(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.DeviationModel, error) {
	action := workflow.ActionQAApprove
	if !in.Approve {
		action = workflow.ActionQAReject
	}
	now := time.Now()
	return s.applyTransition(ctx, actor, id, action, map[string]interface{}{
		"qa_reviewer":    actor.UserID,
		"qa_reviewed_at": &now,
		"qa_comments":    in.Comments,
	}, nil)
}

// AssignTeam 指派调查组,调查组与状态转移在同一事务中写入
func (s *deviationService) AssignTeam(ctx context.Context, actor workflow.Actor, id string, in TeamInput) (*model.DeviationModel, error) {
	team, err := buildTeam(model.ParentTypeDeviation, id, actor.UserID, in, s.users)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"team_assigned_by": actor.UserID,
	}
	return s.applyTransition(ctx, actor, id, workflow.ActionAssignTeam, updates,
		func(tx *gorm.DB, d *model.DeviationModel) error {
			if err := s.teams.Save(tx, team); err != nil {
				return err
			}
			updates["investigation_team_id"] = team.ID
			return nil
		})
}

// RecordImpact 记录影响评估,仅调查组成员可操作
// 答案与状态转移在同一事务中写入
func (s *deviationService) RecordImpact(ctx context.Context, actor workflow.Actor, id string, answers []AnswerInput) (*model.DeviationModel, error) {
	validated, err := buildAssessmentAnswers(s.catalog, answers)
	if err != nil {
		return nil, err
	}
	assessment := &model.ImpactAssessmentModel{
		ParentType: model.ParentTypeDeviation,
		ParentID:   id,
		RecordedBy: actor.UserID,
		Answers:    validated,
	}
	updates := map[string]interface{}{}
	return s.applyTransition(ctx, actor, id, workflow.ActionRecordImpact, updates,
		func(tx *gorm.DB, d *model.DeviationModel) error {
			if err := s.impacts.Save(tx, assessment); err != nil {
				return err
			}
			updates["impact_assessment_id"] = assessment.ID
			return nil
		})
}

// applyTransition 执行状态转移
// 先解析转移和授权,副作用与条件状态更新在同一事务中执行;
// 条件更新未命中说明状态已被并发修改,事务整体回滚
func (s *deviationService) applyTransition(
	ctx context.Context,
	actor workflow.Actor,
	id string,
	action workflow.Action,
	updates map[string]interface{},
	sideEffect func(tx *gorm.DB, d *model.DeviationModel) error,
) (*model.DeviationModel, error) {
	d, err := s.deviations.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "deviation not found")
	}

	t, err := s.machine.Resolve(workflow.Status(d.Status), action)
	if err != nil {
		return nil, wrapError(err, "invalid deviation transition")
	}

	teamMember := false
	if t.TeamMember {
		if team, err := s.teams.FindByParent(model.ParentTypeDeviation, id); err == nil {
			teamMember = team.HasMember(actor.UserID)
		}
	}
	if err := s.machine.Authorize(t, actor, d.DepartmentID, teamMember); err != nil {
		return nil, wrapError(err, "deviation transition not authorized")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if sideEffect != nil {
			if err := sideEffect(tx, d); err != nil {
				return err
			}
		}
		updates["status"] = string(t.To)
		return s.deviations.TransitionStatus(tx, id, string(t.From), updates)
	})
	if err != nil {
		return nil, wrapError(err, "failed to transition deviation")
	}

	metrics.RecordTransition("deviation", string(action))
	_ = s.audit.RecordAction(ctx, actor.UserID, string(action), "deviation", id, map[string]string{
		"from": string(t.From),
		"to":   string(t.To),
	})
	s.notifier.NotifyStatusChange("deviation", d.ID, d.DeviationNumber, string(t.To))

	return s.deviations.FindByID(id)
}

// buildTeam 构造调查组并校验成员存在
func buildTeam(parentType string, parentID string, createdBy string, in TeamInput, users repository.UserRepository) (*model.InvestigationTeamModel, error) {
	if len(in.MemberIDs) == 0 {
		return nil, NewInvalid("at least one team member is required")
	}
	team := &model.InvestigationTeamModel{
		ParentType: parentType,
		ParentID:   parentID,
		CreatedBy:  createdBy,
		Remarks:    in.Remarks,
	}
	seen := make(map[string]bool, len(in.MemberIDs))
	for _, userID := range in.MemberIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true
		if _, err := users.FindByID(userID); err != nil {
			return nil, wrapError(err, "team member "+userID+" not found")
		}
		team.Members = append(team.Members, model.TeamMemberModel{UserID: userID})
	}
	return team, nil
}
