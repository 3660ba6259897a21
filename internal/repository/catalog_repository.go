package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// CatalogRepository 目录数据仓储接口
// 覆盖地点、设备、影响评估问题和两类分类的基础持久化
type CatalogRepository interface {
	SaveLocation(loc *model.LocationModel) error
	FindLocations() ([]*model.LocationModel, error)
	FindLocationByID(id string) (*model.LocationModel, error)
	DeleteLocation(id string) error

	SaveEquipment(eq *model.EquipmentModel) error
	FindEquipment() ([]*model.EquipmentModel, error)
	FindEquipmentByID(id string) (*model.EquipmentModel, error)
	DeleteEquipment(id string) error

	SaveQuestion(q *model.QuestionModel) error
	FindQuestions() ([]*model.QuestionModel, error)
	FindQuestionByID(id string) (*model.QuestionModel, error)
	DeleteQuestion(id string) error

	SaveDeviationCategory(c *model.DeviationCategoryModel) error
	FindDeviationCategories() ([]*model.DeviationCategoryModel, error)
	DeleteDeviationCategory(id string) error

	SaveChangeCategory(c *model.ChangeCategoryModel) error
	FindChangeCategories() ([]*model.ChangeCategoryModel, error)
	DeleteChangeCategory(id string) error
}

// catalogRepository 目录数据仓储实现
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录数据仓储
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// SaveLocation 保存地点
func (r *catalogRepository) SaveLocation(loc *model.LocationModel) error {
	return r.db.Save(loc).Error
}

// FindLocations 查找所有地点
func (r *catalogRepository) FindLocations() ([]*model.LocationModel, error) {
	var locs []*model.LocationModel
	err := r.db.Order("name ASC").Find(&locs).Error
	return locs, err
}

// FindLocationByID 根据 ID 查找地点
func (r *catalogRepository) FindLocationByID(id string) (*model.LocationModel, error) {
	var loc model.LocationModel
	if err := r.db.Where("id = ?", id).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// DeleteLocation 删除地点
func (r *catalogRepository) DeleteLocation(id string) error {
	return r.db.Delete(&model.LocationModel{}, "id = ?", id).Error
}

// SaveEquipment 保存设备
func (r *catalogRepository) SaveEquipment(eq *model.EquipmentModel) error {
	return r.db.Save(eq).Error
}

// FindEquipment 查找所有设备
func (r *catalogRepository) FindEquipment() ([]*model.EquipmentModel, error) {
	var eqs []*model.EquipmentModel
	err := r.db.Order("name ASC").Find(&eqs).Error
	return eqs, err
}

// FindEquipmentByID 根据 ID 查找设备
func (r *catalogRepository) FindEquipmentByID(id string) (*model.EquipmentModel, error) {
	var eq model.EquipmentModel
	if err := r.db.Where("id = ?", id).First(&eq).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

// DeleteEquipment 删除设备
func (r *catalogRepository) DeleteEquipment(id string) error {
	return r.db.Delete(&model.EquipmentModel{}, "id = ?", id).Error
}

// SaveQuestion 保存问题
func (r *catalogRepository) SaveQuestion(q *model.QuestionModel) error {
	return r.db.Save(q).Error
}

// FindQuestions 查找所有问题
func (r *catalogRepository) FindQuestions() ([]*model.QuestionModel, error) {
	var qs []*model.QuestionModel
	err := r.db.Order("created_at ASC").Find(&qs).Error
	return qs, err
}

// FindQuestionByID 根据 ID 查找问题
func (r *catalogRepository) FindQuestionByID(id string) (*model.QuestionModel, error) {
	var q model.QuestionModel
	if err := r.db.Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// DeleteQuestion 删除问题
func (r *catalogRepository) DeleteQuestion(id string) error {
	return r.db.Delete(&model.QuestionModel{}, "id = ?", id).Error
}

// SaveDeviationCategory 保存偏差分类
func (r *catalogRepository) SaveDeviationCategory(c *model.DeviationCategoryModel) error {
	return r.db.Save(c).Error
}

// FindDeviationCategories 查找所有偏差分类
func (r *catalogRepository) FindDeviationCategories() ([]*model.DeviationCategoryModel, error) {
	var cs []*model.DeviationCategoryModel
	err := r.db.Order("name ASC").Find(&cs).Error
	return cs, err
}

// DeleteDeviationCategory 删除偏差分类
func (r *catalogRepository) DeleteDeviationCategory(id string) error {
	return r.db.Delete(&model.DeviationCategoryModel{}, "id = ?", id).Error
}

// SaveChangeCategory 保存变更分类
func (r *catalogRepository) SaveChangeCategory(c *model.ChangeCategoryModel) error {
	return r.db.Save(c).Error
}

// FindChangeCategories 查找所有变更分类
func (r *catalogRepository) FindChangeCategories() ([]*model.ChangeCategoryModel, error) {
	var cs []*model.ChangeCategoryModel
	err := r.db.Order("name ASC").Find(&cs).Error
	return cs, err
}

// DeleteChangeCategory 删除变更分类
func (r *catalogRepository) DeleteChangeCategory(id string) error {
	return r.db.Delete(&model.ChangeCategoryModel{}, "id = ?", id).Error
}
