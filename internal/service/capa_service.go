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

// InvestigationInput 调查结论输入
type InvestigationInput struct {
	RootCause        string     `json:"root_cause" binding:"required"`
	CorrectiveAction string     `json:"corrective_action"`
	PreventiveAction string     `json:"preventive_action"`
	DueDate          *time.Time `json:"due_date"`
}

// CAPADetail CAPA 详情投影
type CAPADetail struct {
	CAPA           *model.CAPAModel              `json:"capa"`
	Attachments    []*model.AttachmentModel      `json:"attachments"`
	Team           *model.InvestigationTeamModel `json:"team,omitempty"`
	ChangeControls []*model.ChangeControlModel   `json:"change_controls"`
}

// CAPAService 纠正预防措施服务接口
type CAPAService interface {
	Create(ctx context.Context, actor workflow.Actor, c *model.CAPAModel, attachments []AttachmentInput) (*model.CAPAModel, error)
	Get(ctx context.Context, id string) (*CAPADetail, error)
	List(ctx context.Context, filter *repository.CAPAFilter) ([]*model.CAPAModel, error)
	ListOverdue(ctx context.Context) ([]*model.CAPAModel, error)

	Submit(ctx context.Context, actor workflow.Actor, id string) (*model.CAPAModel, error)
	Review(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.CAPAModel, error)
	QAReview(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.CAPAModel, error)
	AssignTeam(ctx context.Context, actor workflow.Actor, id string, in TeamInput) (*model.CAPAModel, error)
	RecordInvestigation(ctx context.Context, actor workflow.Actor, id string, in InvestigationInput) (*model.CAPAModel, error)
	StartImmediateActions(ctx context.Context, actor workflow.Actor, id string) (*model.CAPAModel, error)
	InitiateChangeControl(ctx context.Context, actor workflow.Actor, id string, cc *model.ChangeControlModel) (*model.CAPAModel, error)
	Close(ctx context.Context, actor workflow.Actor, id string) (*model.CAPAModel, error)
}

// capaService 纠正预防措施服务实现
type capaService struct {
	db               *gorm.DB
	machine          *workflow.Machine
	deviationMachine *workflow.Machine
	capas            repository.CAPARepository
	deviations       repository.DeviationRepository
	changeControls   repository.ChangeControlRepository
	teams            repository.TeamRepository
	attachments      repository.AttachmentRepository
	users            repository.UserRepository
	audit            AuditLogService
	notifier         Notifier
}

// NewCAPAService 创建纠正预防措施服务
func NewCAPAService(
	db *gorm.DB,
	capas repository.CAPARepository,
	deviations repository.DeviationRepository,
	changeControls repository.ChangeControlRepository,
	teams repository.TeamRepository,
	attachments repository.AttachmentRepository,
	users repository.UserRepository,
	audit AuditLogService,
	notifier Notifier,
) CAPAService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &capaService{
		db:               db,
		machine:          workflow.CAPAMachine(),
		deviationMachine: workflow.DeviationMachine(),
		capas:            capas,
		deviations:       deviations,
		changeControls:   changeControls,
		teams:            teams,
		attachments:      attachments,
		users:            users,
		audit:            audit,
		notifier:         notifier,
	}
}

// Create 创建 CAPA 记录
// 父偏差须处于影响评估完成或已发起 CAPA 状态;首次创建时
// 偏差在同一事务中转入 CAPA Initiated,后续 CAPA 不再转移
func (s *capaService) Create(ctx context.Context, actor workflow.Actor, c *model.CAPAModel, attachments []AttachmentInput) (*model.CAPAModel, error) {
	c.CreatedBy = actor.UserID
	c.Status = string(workflow.StatusDraft)
	if err := c.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}

	deviation, err := s.deviations.FindByID(c.DeviationID)
	if err != nil {
		return nil, wrapError(err, "deviation not found")
	}

	transitionDeviation := false
	switch workflow.Status(deviation.Status) {
	case workflow.StatusCAPAInitiated:
		// 已有 CAPA,偏差不再转移
	default:
		t, err := s.deviationMachine.Resolve(workflow.Status(deviation.Status), workflow.ActionInitiateCAPA)
		if err != nil {
			return nil, wrapError(err, "deviation does not allow CAPA initiation")
		}
		if err := s.deviationMachine.Authorize(t, actor, deviation.DepartmentID, false); err != nil {
			return nil, wrapError(err, "CAPA initiation not authorized")
		}
		transitionDeviation = true
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		for _, in := range attachments {
			att := &model.AttachmentModel{
				ParentType: model.ParentTypeCAPA,
				ParentID:   c.ID,
				Field:      in.Field,
				FileName:   in.FileName,
				URL:        in.URL,
				UploadedBy: actor.UserID,
			}
			if err := s.attachments.Save(tx, att); err != nil {
				return err
			}
		}
		if transitionDeviation {
			return s.deviations.TransitionStatus(tx, deviation.ID,
				string(workflow.StatusImpactDone),
				map[string]interface{}{"status": string(workflow.StatusCAPAInitiated)})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err, "failed to create CAPA")
	}

	metrics.RecordCreated("capa")
	if transitionDeviation {
		metrics.RecordTransition("deviation", string(workflow.ActionInitiateCAPA))
		s.notifier.NotifyStatusChange("deviation", deviation.ID, deviation.DeviationNumber, string(workflow.StatusCAPAInitiated))
	}
	_ = s.audit.RecordAction(ctx, actor.UserID, "create", "capa", c.ID, map[string]string{
		"capa_number":  c.CAPANumber,
		"deviation_id": c.DeviationID,
	})
	return c, nil
}

// Get 查询 CAPA 详情,聚合附件、调查组和衍生的变更控制记录
func (s *capaService) Get(ctx context.Context, id string) (*CAPADetail, error) {
	c, err := s.capas.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "CAPA not found")
	}

	detail := &CAPADetail{CAPA: c}
	if detail.Attachments, err = s.attachments.FindByParent(model.ParentTypeCAPA, id); err != nil {
		return nil, wrapError(err, "failed to load attachments")
	}
	if team, err := s.teams.FindByParent(model.ParentTypeCAPA, id); err == nil {
		detail.Team = team
	}
	if detail.ChangeControls, err = s.changeControls.FindByCAPAID(id); err != nil {
		return nil, wrapError(err, "failed to load change controls")
	}
	return detail, nil
}

// List 查询 CAPA 列表
func (s *capaService) List(ctx context.Context, filter *repository.CAPAFilter) ([]*model.CAPAModel, error) {
	cs, err := s.capas.FindByFilter(filter)
	if err != nil {
		return nil, wrapError(err, "failed to list CAPAs")
	}
	return cs, nil
}

// ListOverdue 查询超过到期日且未关闭的 CAPA
func (s *capaService) ListOverdue(ctx context.Context) ([]*model.CAPAModel, error) {
	cs, err := s.capas.FindOverdue(time.Now())
	if err != nil {
		return nil, wrapError(err, "failed to list overdue CAPAs")
	}
	return cs, nil
}

// Submit 提交 CAPA 进入部门负责人审查
func (s *capaService) Submit(ctx context.Context, actor workflow.Actor, id string) (*model.CAPAModel, error) {
	now := time.Now()
	return s.applyTransition(ctx, actor, id, workflow.ActionSubmit, map[string]interface{}{
		"submitted_by": actor.UserID,
		"submitted_at": &now,
	}, nil)
}

// Review 部门负责人审查
func (s *capaService) Review(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.CAPAModel, error) {
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
func (s *capaService) QAReview(ctx context.Context, actor workflow.Actor, id string, in ReviewInput) (*model.CAPAModel, error) {
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
func (s *capaService) AssignTeam(ctx context.Context, actor workflow.Actor, id string, in TeamInput) (*model.CAPAModel, error) {
	team, err := buildTeam(model.ParentTypeCAPA, id, actor.UserID, in, s.users)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"team_assigned_by": actor.UserID,
	}
	return s.applyTransition(ctx, actor, id, workflow.ActionAssignTeam, updates,
		func(tx *gorm.DB, c *model.CAPAModel) error {
			if err := s.teams.Save(tx, team); err != nil {
				return err
			}
			updates["investigation_team_id"] = team.ID
			return nil
		})
}

// RecordInvestigation 记录调查结论,仅调查组成员可操作
func (s *capaService) RecordInvestigation(ctx context.Context, actor workflow.Actor, id string, in InvestigationInput) (*model.CAPAModel, error) {
	if in.RootCause == "" {
		return nil, NewInvalid("root cause is required")
	}
	return s.applyTransition(ctx, actor, id, workflow.ActionRecordInvestigation, map[string]interface{}{
		"root_cause":        in.RootCause,
		"corrective_action": in.CorrectiveAction,
		"preventive_action": in.PreventiveAction,
		"due_date":          in.DueDate,
	}, nil)
}

// StartImmediateActions 进入立即措施执行
func (s *capaService) StartImmediateActions(ctx context.Context, actor workflow.Actor, id string) (*model.CAPAModel, error) {
	return s.applyTransition(ctx, actor, id, workflow.ActionStartImmediateActions, map[string]interface{}{}, nil)
}

// InitiateChangeControl 由 CAPA 发起变更控制
// 变更控制记录与 CAPA 状态转移在同一事务中写入,CAPA 回链变更控制 ID
func (s *capaService) InitiateChangeControl(ctx context.Context, actor workflow.Actor, id string, cc *model.ChangeControlModel) (*model.CAPAModel, error) {
	cc.CAPAID = id
	cc.CreatedBy = actor.UserID
	cc.Status = string(workflow.StatusDraft)
	if err := cc.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}

	updates := map[string]interface{}{}
	c, err := s.applyTransition(ctx, actor, id, workflow.ActionInitiateChangeControl, updates,
		func(tx *gorm.DB, c *model.CAPAModel) error {
			if err := tx.Create(cc).Error; err != nil {
				return err
			}
			updates["change_control_id"] = cc.ID
			return nil
		})
	if err != nil {
		return nil, err
	}

	metrics.RecordCreated("change_control")
	_ = s.audit.RecordAction(ctx, actor.UserID, "create", "change_control", cc.ID, map[string]string{
		"change_number": cc.ChangeNumber,
		"capa_id":       id,
	})
	return c, nil
}

// Close 关闭 CAPA
func (s *capaService) Close(ctx context.Context, actor workflow.Actor, id string) (*model.CAPAModel, error) {
	return s.applyTransition(ctx, actor, id, workflow.ActionClose, map[string]interface{}{}, nil)
}

// applyTransition 执行 CAPA 状态转移
// 与偏差服务同构: 解析转移、授权、副作用与条件更新在同一事务中执行
func (s *capaService) applyTransition(
	ctx context.Context,
	actor workflow.Actor,
	id string,
	action workflow.Action,
	updates map[string]interface{},
	sideEffect func(tx *gorm.DB, c *model.CAPAModel) error,
) (*model.CAPAModel, error) {
	c, err := s.capas.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "CAPA not found")
	}

	t, err := s.machine.Resolve(workflow.Status(c.Status), action)
	if err != nil {
		return nil, wrapError(err, "invalid CAPA transition")
	}

	teamMember := false
	if t.TeamMember {
		if team, err := s.teams.FindByParent(model.ParentTypeCAPA, id); err == nil {
			teamMember = team.HasMember(actor.UserID)
		}
	}
	if err := s.machine.Authorize(t, actor, c.DepartmentID, teamMember); err != nil {
		return nil, wrapError(err, "CAPA transition not authorized")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if sideEffect != nil {
			if err := sideEffect(tx, c); err != nil {
				return err
			}
		}
		updates["status"] = string(t.To)
		return s.capas.TransitionStatus(tx, id, string(t.From), updates)
	})
	if err != nil {
		return nil, wrapError(err, "failed to transition CAPA")
	}

	metrics.RecordTransition("capa", string(action))
	_ = s.audit.RecordAction(ctx, actor.UserID, string(action), "capa", id, map[string]string{
		"from": string(t.From),
		"to":   string(t.To),
	})
	s.notifier.NotifyStatusChange("capa", c.ID, c.CAPANumber, string(t.To))

	return s.capas.FindByID(id)
}
