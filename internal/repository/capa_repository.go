package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// CAPARepository CAPA 记录仓储接口
type CAPARepository interface {
	Save(c *model.CAPAModel) error
	FindByID(id string) (*model.CAPAModel, error)
	FindByDeviationID(deviationID string) ([]*model.CAPAModel, error)
	FindByFilter(filter *CAPAFilter) ([]*model.CAPAModel, error)
	// FindOverdue 查找超过到期日且未关闭的 CAPA
	FindOverdue(now time.Time) ([]*model.CAPAModel, error)
	TransitionStatus(tx *gorm.DB, id string, from string, updates map[string]interface{}) error
}

// CAPAFilter CAPA 查询过滤器
type CAPAFilter struct {
	Status       *string
	DepartmentID *string
	DeviationID  *string
	CreatedBy    *string
}

// capaRepository CAPA 记录仓储实现
type capaRepository struct {
	db *gorm.DB
}

// NewCAPARepository 创建 CAPA 记录仓储
func NewCAPARepository(db *gorm.DB) CAPARepository {
	return &capaRepository{db: db}
}

// Save 保存 CAPA 记录
func (r *capaRepository) Save(c *model.CAPAModel) error {
	return r.db.Save(c).Error
}

// FindByID 根据 ID 查找 CAPA 记录
func (r *capaRepository) FindByID(id string) (*model.CAPAModel, error) {
	var c model.CAPAModel
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByDeviationID 查找偏差记录下的全部 CAPA
func (r *capaRepository) FindByDeviationID(deviationID string) ([]*model.CAPAModel, error) {
	var cs []*model.CAPAModel
	err := r.db.Where("deviation_id = ?", deviationID).Order("created_at ASC").Find(&cs).Error
	return cs, err
}

// FindByFilter 根据过滤器查找 CAPA 记录
func (r *capaRepository) FindByFilter(filter *CAPAFilter) ([]*model.CAPAModel, error) {
	var cs []*model.CAPAModel
	query := r.db.Model(&model.CAPAModel{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.DepartmentID != nil {
			query = query.Where("department_id = ?", *filter.DepartmentID)
		}
		if filter.DeviationID != nil {
			query = query.Where("deviation_id = ?", *filter.DeviationID)
		}
		if filter.CreatedBy != nil {
			query = query.Where("created_by = ?", *filter.CreatedBy)
		}
	}

	err := query.Order("created_at DESC").Find(&cs).Error
	return cs, err
}

// FindOverdue 查找超期未关闭的 CAPA
func (r *capaRepository) FindOverdue(now time.Time) ([]*model.CAPAModel, error) {
	var cs []*model.CAPAModel
	err := r.db.Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", now, "Closed").
		Order("due_date ASC").
		Find(&cs).Error
	return cs, err
}

// TransitionStatus 带状态前置条件的更新,未命中时返回 ErrStatusConflict
func (r *capaRepository) TransitionStatus(tx *gorm.DB, id string, from string, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.CAPAModel{}).
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
