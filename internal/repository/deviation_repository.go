package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// DeviationRepository 偏差记录仓储接口
type DeviationRepository interface {
	Save(d *model.DeviationModel) error
	FindByID(id string) (*model.DeviationModel, error)
	FindByFilter(filter *DeviationFilter) ([]*model.DeviationModel, error)
	// TransitionStatus 带状态前置条件的更新,未命中时返回 ErrStatusConflict
	TransitionStatus(tx *gorm.DB, id string, from string, updates map[string]interface{}) error
}

// DeviationFilter 偏差查询过滤器
type DeviationFilter struct {
	Status       *string
	DepartmentID *string
	CategoryID   *string
	CreatedBy    *string
	StartTime    *string
	EndTime      *string
}

// deviationRepository 偏差记录仓储实现
type deviationRepository struct {
	db *gorm.DB
}

// NewDeviationRepository 创建偏差记录仓储
func NewDeviationRepository(db *gorm.DB) DeviationRepository {
	return &deviationRepository{db: db}
}

// Save 保存偏差记录
func (r *deviationRepository) Save(d *model.DeviationModel) error {
	return r.db.Save(d).Error
}

// FindByID 根据 ID 查找偏差记录
func (r *deviationRepository) FindByID(id string) (*model.DeviationModel, error) {
	var d model.DeviationModel
	if err := r.db.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByFilter 根据过滤器查找偏差记录
func (r *deviationRepository) FindByFilter(filter *DeviationFilter) ([]*model.DeviationModel, error) {
	var ds []*model.DeviationModel
	query := r.db.Model(&model.DeviationModel{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.DepartmentID != nil {
			query = query.Where("department_id = ?", *filter.DepartmentID)
		}
		if filter.CategoryID != nil {
			query = query.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.CreatedBy != nil {
			query = query.Where("created_by = ?", *filter.CreatedBy)
		}
		if filter.StartTime != nil {
			query = query.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			query = query.Where("created_at <= ?", *filter.EndTime)
		}
	}

	err := query.Order("created_at DESC").Find(&ds).Error
	return ds, err
}

// TransitionStatus 带状态前置条件的更新
// WHERE id AND status 的条件更新实现乐观并发,并发审查请求最多一个生效
func (r *deviationRepository) TransitionStatus(tx *gorm.DB, id string, from string, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.DeviationModel{}).
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
