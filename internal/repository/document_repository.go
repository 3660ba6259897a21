package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// DocumentRepository 受控文档仓储接口
// 覆盖文档容器、版本和评审记录
type DocumentRepository interface {
	Save(doc *model.DocumentModel) error
	FindByID(id string) (*model.DocumentModel, error)
	FindByType(docType string) ([]*model.DocumentModel, error)
	FindByFilter(filter *DocumentFilter) ([]*model.DocumentModel, error)

	SaveVersion(tx *gorm.DB, v *model.DocumentVersionModel) error
	FindVersionByID(id string) (*model.DocumentVersionModel, error)
	FindVersions(documentID string) ([]*model.DocumentVersionModel, error)
	// FindLatestVersion 查找文档最近创建的版本,用于计算下一版本号
	FindLatestVersion(documentID string) (*model.DocumentVersionModel, error)
	// FindApprovedVersion 查找文档当前 approved 的版本(至多一个)
	FindApprovedVersion(documentID string) (*model.DocumentVersionModel, error)

	// TransitionVersionStatus 带状态前置条件的版本更新,未命中时返回 ErrStatusConflict
	TransitionVersionStatus(tx *gorm.DB, id string, from string, updates map[string]interface{}) error

	SaveReview(review *model.DocumentReviewModel) error
	FindReviews(versionID string) ([]*model.DocumentReviewModel, error)
}

// DocumentFilter 文档查询过滤器
type DocumentFilter struct {
	Type         *string
	DepartmentID *string
}

// documentRepository 受控文档仓储实现
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建受控文档仓储
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Save 保存文档容器
func (r *documentRepository) Save(doc *model.DocumentModel) error {
	return r.db.Save(doc).Error
}

// FindByID 根据 ID 查找文档容器
func (r *documentRepository) FindByID(id string) (*model.DocumentModel, error) {
	var doc model.DocumentModel
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByType 按类型查找文档容器
func (r *documentRepository) FindByType(docType string) ([]*model.DocumentModel, error) {
	var docs []*model.DocumentModel
	err := r.db.Where("type = ?", docType).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

// FindByFilter 根据过滤器查找文档容器
func (r *documentRepository) FindByFilter(filter *DocumentFilter) ([]*model.DocumentModel, error) {
	var docs []*model.DocumentModel
	query := r.db.Model(&model.DocumentModel{})

	if filter != nil {
		if filter.Type != nil {
			query = query.Where("type = ?", *filter.Type)
		}
		if filter.DepartmentID != nil {
			query = query.Where("department_id = ?", *filter.DepartmentID)
		}
	}

	err := query.Order("created_at DESC").Find(&docs).Error
	return docs, err
}

// SaveVersion 保存文档版本
func (r *documentRepository) SaveVersion(tx *gorm.DB, v *model.DocumentVersionModel) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(v).Error
}

// FindVersionByID 根据 ID 查找文档版本
func (r *documentRepository) FindVersionByID(id string) (*model.DocumentVersionModel, error) {
	var v model.DocumentVersionModel
	if err := r.db.Preload("Reviews").Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// FindVersions 查找文档的全部版本
func (r *documentRepository) FindVersions(documentID string) ([]*model.DocumentVersionModel, error) {
	var vs []*model.DocumentVersionModel
	err := r.db.Where("document_id = ?", documentID).Order("created_at DESC").Find(&vs).Error
	return vs, err
}

// FindLatestVersion 查找文档最近创建的版本
func (r *documentRepository) FindLatestVersion(documentID string) (*model.DocumentVersionModel, error) {
	var v model.DocumentVersionModel
	err := r.db.Where("document_id = ?", documentID).Order("created_at DESC").First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindApprovedVersion 查找文档当前 approved 的版本
func (r *documentRepository) FindApprovedVersion(documentID string) (*model.DocumentVersionModel, error) {
	var v model.DocumentVersionModel
	err := r.db.Where("document_id = ? AND status = ?", documentID, model.VersionApproved).
		Order("approved_at DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// TransitionVersionStatus 带状态前置条件的版本更新
func (r *documentRepository) TransitionVersionStatus(tx *gorm.DB, id string, from string, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.DocumentVersionModel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// SaveReview 保存评审记录
func (r *documentRepository) SaveReview(review *model.DocumentReviewModel) error {
	return r.db.Save(review).Error
}

// FindReviews 查找版本的全部评审记录
func (r *documentRepository) FindReviews(versionID string) ([]*model.DocumentReviewModel, error) {
	var rs []*model.DocumentReviewModel
	err := r.db.Where("version_id = ?", versionID).Order("created_at ASC").Find(&rs).Error
	return rs, err
}
