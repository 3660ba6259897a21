package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/metrics"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/repository"
	"github.com/Corporate-Prism/EQMS-server-sub000/internal/workflow"
)

// VersionInput 文档版本内容输入
type VersionInput struct {
	Purpose     string `json:"purpose"`
	Scope       string `json:"scope"`
	Content     string `json:"content" binding:"required"`
	VersionType string `json:"version_type"` // major | minor,缺省 minor
}

// DocumentDetail 文档详情投影
type DocumentDetail struct {
	Document        *model.DocumentModel          `json:"document"`
	Versions        []*model.DocumentVersionModel `json:"versions"`
	ApprovedVersion *model.DocumentVersionModel   `json:"approved_version,omitempty"`
}

// DocumentService 受控文档服务接口
// 文档版本生命周期独立于质量记录工作流:
// draft -> under_review -> under_approval -> approved -> archived
type DocumentService interface {
	Create(ctx context.Context, actor workflow.Actor, doc *model.DocumentModel, initial VersionInput) (*DocumentDetail, error)
	Get(ctx context.Context, id string) (*DocumentDetail, error)
	List(ctx context.Context, filter *repository.DocumentFilter) ([]*model.DocumentModel, error)

	CreateVersion(ctx context.Context, actor workflow.Actor, documentID string, in VersionInput) (*model.DocumentVersionModel, error)
	GetVersion(ctx context.Context, versionID string) (*model.DocumentVersionModel, error)
	SubmitVersion(ctx context.Context, actor workflow.Actor, versionID string) (*model.DocumentVersionModel, error)
	ReviewVersion(ctx context.Context, actor workflow.Actor, versionID string, in ReviewInput) (*model.DocumentVersionModel, error)
	ApproveVersion(ctx context.Context, actor workflow.Actor, versionID string, in ReviewInput) (*model.DocumentVersionModel, error)
}

// documentService 受控文档服务实现
type documentService struct {
	db        *gorm.DB
	documents repository.DocumentRepository
	audit     AuditLogService
	notifier  Notifier
}

// NewDocumentService 创建受控文档服务
func NewDocumentService(db *gorm.DB, documents repository.DocumentRepository, audit AuditLogService, notifier Notifier) DocumentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &documentService{
		db:        db,
		documents: documents,
		audit:     audit,
		notifier:  notifier,
	}
}

// Create 创建文档容器并写入 1.0 初始草稿版本
// 容器与初始版本在同一事务中写入
func (s *documentService) Create(ctx context.Context, actor workflow.Actor, doc *model.DocumentModel, initial VersionInput) (*DocumentDetail, error) {
	doc.CreatedBy = actor.UserID
	if err := doc.Validate(); err != nil {
		return nil, NewInvalid(err.Error())
	}
	if initial.Content == "" {
		return nil, NewInvalid("initial version content is required")
	}

	version := &model.DocumentVersionModel{
		VersionNumber: "1.0",
		VersionType:   model.VersionBumpMajor,
		Status:        model.VersionDraft,
		Purpose:       initial.Purpose,
		Scope:         initial.Scope,
		Content:       initial.Content,
		CreatedBy:     actor.UserID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		version.DocumentID = doc.ID
		return s.documents.SaveVersion(tx, version)
	})
	if err != nil {
		return nil, wrapError(err, "failed to create document")
	}

	metrics.RecordCreated("document")
	_ = s.audit.RecordAction(ctx, actor.UserID, "create", "document", doc.ID, map[string]string{
		"document_number": doc.DocumentNumber,
		"type":            doc.Type,
	})
	return &DocumentDetail{Document: doc, Versions: []*model.DocumentVersionModel{version}}, nil
}

// Get 查询文档详情,聚合版本历史和当前生效版本
func (s *documentService) Get(ctx context.Context, id string) (*DocumentDetail, error) {
	doc, err := s.documents.FindByID(id)
	if err != nil {
		return nil, wrapError(err, "document not found")
	}

	detail := &DocumentDetail{Document: doc}
	if detail.Versions, err = s.documents.FindVersions(id); err != nil {
		return nil, wrapError(err, "failed to load document versions")
	}
	if approved, err := s.documents.FindApprovedVersion(id); err == nil {
		detail.ApprovedVersion = approved
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapError(err, "failed to load approved version")
	}
	return detail, nil
}

// List 查询文档列表
func (s *documentService) List(ctx context.Context, filter *repository.DocumentFilter) ([]*model.DocumentModel, error) {
	docs, err := s.documents.FindByFilter(filter)
	if err != nil {
		return nil, wrapError(err, "failed to list documents")
	}
	return docs, nil
}

// CreateVersion 基于最新版本创建新草稿版本
// 版本号按递增类型计算: minor 递增次版本号,major 递增主版本号并归零次版本号
func (s *documentService) CreateVersion(ctx context.Context, actor workflow.Actor, documentID string, in VersionInput) (*model.DocumentVersionModel, error) {
	if _, err := s.documents.FindByID(documentID); err != nil {
		return nil, wrapError(err, "document not found")
	}
	if in.Content == "" {
		return nil, NewInvalid("version content is required")
	}
	bump := in.VersionType
	if bump == "" {
		bump = model.VersionBumpMinor
	}
	if bump != model.VersionBumpMinor && bump != model.VersionBumpMajor {
		return nil, NewInvalid("version type must be major or minor")
	}

	latest, err := s.documents.FindLatestVersion(documentID)
	if err != nil {
		return nil, wrapError(err, "failed to load latest version")
	}
	number, err := model.NextVersionNumber(latest.VersionNumber, bump)
	if err != nil {
		return nil, NewInternal("failed to compute next version number", err)
	}

	version := &model.DocumentVersionModel{
		DocumentID:    documentID,
		VersionNumber: number,
		VersionType:   bump,
		Status:        model.VersionDraft,
		Purpose:       in.Purpose,
		Scope:         in.Scope,
		Content:       in.Content,
		CreatedBy:     actor.UserID,
	}
	if err := s.documents.SaveVersion(nil, version); err != nil {
		return nil, wrapError(err, "failed to create document version")
	}

	_ = s.audit.RecordAction(ctx, actor.UserID, "create_version", "document", documentID, map[string]string{
		"version_id":     version.ID,
		"version_number": version.VersionNumber,
	})
	return version, nil
}

// GetVersion 查询文档版本(含评审记录)
func (s *documentService) GetVersion(ctx context.Context, versionID string) (*model.DocumentVersionModel, error) {
	v, err := s.documents.FindVersionByID(versionID)
	if err != nil {
		return nil, wrapError(err, "document version not found")
	}
	return v, nil
}

// SubmitVersion 提交草稿版本进入评审
func (s *documentService) SubmitVersion(ctx context.Context, actor workflow.Actor, versionID string) (*model.DocumentVersionModel, error) {
	v, err := s.documents.FindVersionByID(versionID)
	if err != nil {
		return nil, wrapError(err, "document version not found")
	}
	if v.Status != model.VersionDraft {
		return nil, NewInvalid("only draft versions can be submitted")
	}
	if v.CreatedBy != actor.UserID && actor.Role != workflow.RoleAdmin {
		return nil, NewForbidden("only the author can submit this version")
	}

	now := time.Now()
	err = s.documents.TransitionVersionStatus(nil, versionID, model.VersionDraft, map[string]interface{}{
		"status":       model.VersionUnderReview,
		"submitted_at": &now,
	})
	if err != nil {
		return nil, wrapError(err, "failed to submit document version")
	}

	_ = s.audit.RecordAction(ctx, actor.UserID, "submit_version", "document", v.DocumentID, map[string]string{
		"version_id": versionID,
	})
	return s.documents.FindVersionByID(versionID)
}

// ReviewVersion 评审版本
// 通过进入审批,拒绝回到草稿;评审意见落库为评审记录
func (s *documentService) ReviewVersion(ctx context.Context, actor workflow.Actor, versionID string, in ReviewInput) (*model.DocumentVersionModel, error) {
	if actor.Role != workflow.RoleReviewer && actor.Role != workflow.RoleAdmin {
		return nil, NewForbidden("only reviewers can review document versions")
	}
	v, err := s.documents.FindVersionByID(versionID)
	if err != nil {
		return nil, wrapError(err, "document version not found")
	}
	if v.Status != model.VersionUnderReview {
		return nil, NewInvalid("only versions under review can be reviewed")
	}

	next := model.VersionUnderApproval
	if !in.Approve {
		next = model.VersionDraft
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.Comments != "" {
			review := &model.DocumentReviewModel{
				VersionID:  versionID,
				ReviewerID: actor.UserID,
				Comment:    in.Comments,
			}
			if err := tx.Create(review).Error; err != nil {
				return err
			}
		}
		return s.documents.TransitionVersionStatus(tx, versionID, model.VersionUnderReview, map[string]interface{}{
			"status": next,
		})
	})
	if err != nil {
		return nil, wrapError(err, "failed to review document version")
	}

	_ = s.audit.RecordAction(ctx, actor.UserID, "review_version", "document", v.DocumentID, map[string]string{
		"version_id": versionID,
		"result":     next,
	})
	return s.documents.FindVersionByID(versionID)
}

// ApproveVersion 审批版本
// 通过时在同一事务中把同文档此前 approved 的版本归档,任意时刻至多一个生效版本;
// 拒绝回到草稿
func (s *documentService) ApproveVersion(ctx context.Context, actor workflow.Actor, versionID string, in ReviewInput) (*model.DocumentVersionModel, error) {
	if actor.Role != workflow.RoleApprover && actor.Role != workflow.RoleAdmin {
		return nil, NewForbidden("only approvers can approve document versions")
	}
	v, err := s.documents.FindVersionByID(versionID)
	if err != nil {
		return nil, wrapError(err, "document version not found")
	}
	if v.Status != model.VersionUnderApproval {
		return nil, NewInvalid("only versions under approval can be approved")
	}

	if !in.Approve {
		err = s.documents.TransitionVersionStatus(nil, versionID, model.VersionUnderApproval, map[string]interface{}{
			"status": model.VersionDraft,
		})
		if err != nil {
			return nil, wrapError(err, "failed to reject document version")
		}
		_ = s.audit.RecordAction(ctx, actor.UserID, "reject_version", "document", v.DocumentID, map[string]string{
			"version_id": versionID,
		})
		return s.documents.FindVersionByID(versionID)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.DocumentVersionModel{}).
			Where("document_id = ? AND status = ?", v.DocumentID, model.VersionApproved).
			Update("status", model.VersionArchived).Error; err != nil {
			return err
		}
		return s.documents.TransitionVersionStatus(tx, versionID, model.VersionUnderApproval, map[string]interface{}{
			"status":      model.VersionApproved,
			"approved_by": actor.UserID,
			"approved_at": &now,
		})
	})
	if err != nil {
		return nil, wrapError(err, "failed to approve document version")
	}

	_ = s.audit.RecordAction(ctx, actor.UserID, "approve_version", "document", v.DocumentID, map[string]string{
		"version_id":     versionID,
		"version_number": v.VersionNumber,
	})
	s.notifier.NotifyStatusChange("document", v.DocumentID, v.VersionNumber, model.VersionApproved)
	return s.documents.FindVersionByID(versionID)
}
