package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// AttachmentRepository 附件仓储接口
type AttachmentRepository interface {
	Save(tx *gorm.DB, att *model.AttachmentModel) error
	FindByParent(parentType string, parentID string) ([]*model.AttachmentModel, error)
	Delete(id string) error
}

// attachmentRepository 附件仓储实现
type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository 创建附件仓储
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

// Save 保存附件记录
func (r *attachmentRepository) Save(tx *gorm.DB, att *model.AttachmentModel) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(att).Error
}

// FindByParent 查找父记录的全部附件
func (r *attachmentRepository) FindByParent(parentType string, parentID string) ([]*model.AttachmentModel, error) {
	var atts []*model.AttachmentModel
	err := r.db.Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		Order("created_at ASC").
		Find(&atts).Error
	return atts, err
}

// Delete 删除附件记录
func (r *attachmentRepository) Delete(id string) error {
	return r.db.Delete(&model.AttachmentModel{}, "id = ?", id).Error
}
