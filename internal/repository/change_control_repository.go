package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// ChangeControlRepository 变更控制记录仓储接口
type ChangeControlRepository interface {
	Save(c *model.ChangeControlModel) error
	FindByID(id string) (*model.ChangeControlModel, error)
	FindByCAPAID(capaID string) ([]*model.ChangeControlModel, error)
	FindByFilter(filter *ChangeControlFilter) ([]*model.ChangeControlModel, error)
	TransitionStatus(tx *gorm.DB, id string, from string, updates map[string]interface{}) error
}

// ChangeControlFilter 变更控制查询过滤器
type ChangeControlFilter struct {
	Status       *string
	DepartmentID *string
	ChangeType   *string
	CreatedBy    *string
}

// changeControlRepository 变更控制记录仓储实现
type changeControlRepository struct {
	db *gorm.DB
}

// NewChangeControlRepository 创建变更控制记录仓储
func NewChangeControlRepository(db *gorm.DB) ChangeControlRepository {
	return &changeControlRepository{db: db}
}

// Save 保存变更控制记录
func (r *changeControlRepository) Save(c *model.ChangeControlModel) error {
	return r.db.Save(c).Error
}

// FindByID 根据 ID 查找变更控制记录
func (r *changeControlRepository) FindByID(id string) (*model.ChangeControlModel, error) {
	var c model.ChangeControlModel
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByCAPAID 查找由指定 CAPA 触发的变更控制记录
func (r *changeControlRepository) FindByCAPAID(capaID string) ([]*model.ChangeControlModel, error) {
	var cs []*model.ChangeControlModel
	err := r.db.Where("capa_id = ?", capaID).Order("created_at ASC").Find(&cs).Error
	return cs, err
}

// FindByFilter 根据过滤器查找变更控制记录
func (r *changeControlRepository) FindByFilter(filter *ChangeControlFilter) ([]*model.ChangeControlModel, error) {
	var cs []*model.ChangeControlModel
	query := r.db.Model(&model.ChangeControlModel{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.DepartmentID != nil {
			query = query.Where("department_id = ?", *filter.DepartmentID)
		}
		if filter.ChangeType != nil {
			query = query.Where("change_type = ?", *filter.ChangeType)
		}
		if filter.CreatedBy != nil {
			query = query.Where("created_by = ?", *filter.CreatedBy)
		}
	}

	err := query.Order("created_at DESC").Find(&cs).Error
	return cs, err
}

// TransitionStatus 带状态前置条件的更新,未命中时返回 ErrStatusConflict
func (r *changeControlRepository) TransitionStatus(tx *gorm.DB, id string, from string, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.ChangeControlModel{}).
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
