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

// HistoricalCheckInput 历史核查输入
type HistoricalCheckInput struct {
	Remarks string `json:"remarks" binding:"required"`
}

// ChangeControlDetail 变更控制详情投影
type ChangeControlDetail struct {
	ChangeControl *model.ChangeControlModel     `json:"change_control"`
	Attachments   []*model.AttachmentModel      `json:"attachments"`
	Team          *model.InvestigationTeamModel `json:"team,omitempty"`
	Assessment    *model.ImpactAssessmentModel  `json:"assessment,omitempty"`
}

// ChangeControlService 变更控制服务接口
type ChangeControlService interface {
	Create(ctx context.Context, actor workflow.Actor, cc *model.ChangeControlModel, attachments []AttachmentInput) (*model.ChangeControlModel, error)
	Get(ctx context.Context, id string) (*ChangeControlDetail, error)
	List(ctx context.Context, filter *repository.ChangeControlFilter) ([]*model.ChangeControlModel, error)

	Submit(ctx context.Context, actor workflow.Actor, id string) (*model.ChangeControlModel, error)
	Review(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.ChangeControlModel, error)
	QAReview(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.ChangeControlModel, error)
	AssignTeam(ctx context.Context, actor workflow.Actor, id string, in TeamInput) (*model.ChangeControlModel, error)
	RecordImpact(ctx context.Context, actor workflow.Actor, id string, answers []AnswerInput) (*model.ChangeControlModel, error)
	RecordHistoricalCheck(ctx context.Context, actor workflow.Actor, id string, in HistoricalCheckInput) (*model.ChangeControlModel, error)
	Acknowledge(ctx context.Context, actor workflow.Actor, id string) (*model.ChangeControlModel, error)
	Close(ctx context.Context, actor workflow.Actor, id string) (*model.ChangeControlModel, error)
}

// changeControlService 变更控制服务实现
type changeControlService struct {
	db             *gorm.DB
	machine        *workflow.Machine
	changeControls repository.ChangeControlRepository
	teams          repository.TeamRepository
	impacts        repository.ImpactRepository
	attachments    repository.AttachmentRepository
	catalog        repository.CatalogRepository
	users          repository.UserRepository
	audit          AuditLogService
	notifier       Notifier
}

// NewChangeControlService 创建变更控制服务
func NewChangeControlService(
	db *gorm.DB,
	changeControls repository.ChangeControlRepository,
	teams repository.TeamRepository,
	impacts repository.ImpactRepository,
	attachments repository.AttachmentRepository,
	catalog repository.CatalogRepository,
	users repository.UserRepository,
	audit AuditLogService,
	notifier Notifier,
) ChangeControlService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &changeControlService{
		db:             db,
		machine:        workflow.ChangeControlMachine(),
		changeControls: changeControls,
		teams:          teams,
		impacts:        impacts,
		attachments:    attachments,
		catalog:        catalog,
		users:          users,
		audit:          audit,
		notifier:       notifier,
	}
}

// Create 创建变更控制记录,记录与附件元数据在同一事务中写入
func (s *changeControlService) Create(ctx context.Context, actor workflow.Actor, cc *model.ChangeControlModel, attachments []AttachmentInput) (*model.ChangeControlModel, error) {
	cc.CreatedBy = actor.UserID
	cc.Status = string(workflow.StatusDraft)
	if err := cc.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cc).Error; err != nil {
			return err
		}
		for _, in := range attachments {
			att := &model.AttachmentModel{
				ParentType: model.ParentTypeChangeControl,
				ParentID:   cc.ID,
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
		return nil, wrapError(err, "failed to create change control")
	}

	metrics.RecordCreated("change_control")
	_ = s.audit.RecordAction(ctx, actor.UserID, "create", "change_control", cc.ID, map[string]string{
		"change_number": cc.ChangeNumber,
	})
	return cc, nil
}

// Get 查询变更控制详情,聚合附件、调查组和影响评估
func (s *changeControlService) Get(ctx context.Context, id string) (*ChangeControlDetail, error) {
	cc, err := s.changeControls.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "change control not found")
	}

	detail := &ChangeControlDetail{ChangeControl: cc}
	if detail.Attachments, err = s.attachments.FindByParent(model.ParentTypeChangeControl, id); err != nil {
		return nil, wrapError(err, "failed to load attachments")
	}
	if team, err := s.teams.FindByParent(model.ParentTypeChangeControl, id); err == nil {
		detail.Team = team
	}
	if assessment, err := s.impacts.FindByParent(model.ParentTypeChangeControl, id); err == nil {
		detail.Assessment = assessment
	}
	return detail, nil
}

// List 查询变更控制列表
func (s *changeControlService) List(ctx context.Context, filter *repository.ChangeControlFilter) ([]*model.ChangeControlModel, error) {
	cs, err := s.changeControls.FindByFilter(filter)
	if err != nil {
		return nil, wrapError(err, "failed to list change controls")
	}
	return cs, nil
}

// Submit 提交变更控制进入部门负责人审查
func (s *changeControlService) Submit(ctx context.Context, actor workflow.Actor, id string) (*model.ChangeControlModel, error) {
	now := time.Now()
	return s.applyTransition(ctx, actor, id, workflow.ActionSubmit, map[string]interface{}{
		"submitted_by": actor.UserID,
		"submitted_at": &now,
	}, nil)
}

// Review 部门负责人审查
func (s *changeControlService) Review(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.ChangeControlModel, error) {
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

// QAReview QA 审查
func (s *changeControlService) QAReview(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.ChangeControlModel, error) {
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

// AssignTeam 指派调查组
func (s *changeControlService) AssignTeam(ctx context.Context, actor workflow.Actor, id string, in TeamInput) (*model.ChangeControlModel, error) {
	team, err := buildTeam(model.ParentTypeChangeControl, id, actor.UserID, in, s.users)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"team_assigned_by": actor.UserID,
	}
	return s.applyTransition(ctx, actor, id, workflow.ActionAssignTeam, updates,
		func(tx *gorm.DB, cc *model.ChangeControlModel) error {
			if err := s.teams.Save(tx, team); err != nil {
				return err
			}
			updates["investigation_team_id"] = team.ID
			return nil
		})
}

// RecordImpact 记录影响评估,仅调查组成员可操作
func (s *changeControlService) RecordImpact(ctx context.Context, actor workflow.Actor, id string, answers []AnswerInput) (*model.ChangeControlModel, error) {
	validated, err := buildAssessmentAnswers(s.catalog, answers)
	if err != nil {
		return nil, err
	}
	assessment := &model.ImpactAssessmentModel{
		ParentType: model.ParentTypeChangeControl,
		ParentID:   id,
		RecordedBy: actor.UserID,
		Answers:    validated,
	}
	return s.applyTransition(ctx, actor, id, workflow.ActionRecordImpact, map[string]interface{}{},
		func(tx *gorm.DB, cc *model.ChangeControlModel) error {
			return s.impacts.Save(tx, assessment)
		})
}

// RecordHistoricalCheck 记录历史核查结论,仅调查组成员可操作
func (s *changeControlService) RecordHistoricalCheck(ctx context.Context, actor workflow.Actor, id string, in HistoricalCheckInput) (*model.ChangeControlModel, error) {
	if in.Remarks == "" {
		return nil, NewInvalid("historical check remarks are required")
	}
	return s.applyTransition(ctx, actor, id, workflow.ActionRecordHistoricalCheck, map[string]interface{}{
		"historical_check_remarks": in.Remarks,
	}, nil)
}

// Acknowledge 批准人确认变更
func (s *changeControlService) Acknowledge(ctx context.Context, actor workflow.Actor, id string) (*model.ChangeControlModel, error) {
	now := time.Now()
	return s.applyTransition(ctx, actor, id, workflow.ActionAcknowledge, map[string]interface{}{
		"acknowledged_by": actor.UserID,
		"acknowledged_at": &now,
	}, nil)
}

// Close 关闭变更控制
func (s *changeControlService) Close(ctx context.Context, actor workflow.Actor, id string) (*model.ChangeControlModel, error) {
	now := time.Now()
	return s.applyTransition(ctx, actor, id, workflow.ActionClose, map[string]interface{}{
		"closed_by": actor.UserID,
		"closed_at": &now,
	}, nil)
}

// applyTransition 执行变更控制状态转移
func (s *changeControlService) applyTransition(
	ctx context.Context,
	actor workflow.Actor,
	id string,
	action workflow.Action,
	updates map[string]interface{},
	sideEffect func(tx *gorm.DB, cc *model.ChangeControlModel) error,
) (*model.ChangeControlModel, error) {
	cc, err := s.changeControls.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "change control not found")
	}

	t, err := s.machine.Resolve(workflow.Status(cc.Status), action)
	if err != nil {
		return nil, wrapError(err, "invalid change control transition")
	}

	teamMember := false
	if t.TeamMember {
		if team, err := s.teams.FindByParent(model.ParentTypeChangeControl, id); err == nil {
			teamMember = team.HasMember(actor.UserID)
		}
	}
	if err := s.machine.Authorize(t, actor, cc.DepartmentID, teamMember); err != nil {
		return nil, wrapError(err, "change control transition not authorized")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if sideEffect != nil {
			if err := sideEffect(tx, cc); err != nil {
				return err
			}
		}
		updates["status"] = string(t.To)
		return s.changeControls.TransitionStatus(tx, id, string(t.From), updates)
	})
	if err != nil {
		return nil, wrapError(err, "failed to transition change control")
	}

	metrics.RecordTransition("change_control", string(action))
	_ = s.audit.RecordAction(ctx, actor.UserID, string(action), "change_control", id, map[string]string{
		"from": string(t.From),
		"to":   string(t.To),
	})
	s.notifier.NotifyStatusChange("change_control", cc.ID, cc.ChangeNumber, string(t.To))

	return s.changeControls.FindByID(id)
}
