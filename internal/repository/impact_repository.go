package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// ImpactRepository 影响评估仓储接口
type ImpactRepository interface {
	Save(tx *gorm.DB, assessment *model.ImpactAssessmentModel) error
	FindByID(id string) (*model.ImpactAssessmentModel, error)
	FindByParent(parentType string, parentID string) (*model.ImpactAssessmentModel, error)
}

// impactRepository 影响评估仓储实现
type impactRepository struct {
	db *gorm.DB
}

// NewImpactRepository 创建影响评估仓储
func NewImpactRepository(db *gorm.DB) ImpactRepository {
	return &impactRepository{db: db}
}

// Save 保存影响评估(含答案,答案通过关联一并写入)
func (r *impactRepository) Save(tx *gorm.DB, assessment *model.ImpactAssessmentModel) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(assessment).Error
}

// FindByID 根据 ID 查找影响评估(含答案)
func (r *impactRepository) FindByID(id string) (*model.ImpactAssessmentModel, error) {
	var a model.ImpactAssessmentModel
	if err := r.db.Preload("Answers").Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByParent 根据父记录查找影响评估(含答案)
func (r *impactRepository) FindByParent(parentType string, parentID string) (*model.ImpactAssessmentModel, error) {
	var a model.ImpactAssessmentModel
	err := r.db.Preload("Answers").
		Where("parent_type = ? AND parent_id = ?", parentType, parentID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}
