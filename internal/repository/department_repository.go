package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// DepartmentRepository 部门仓储接口
type DepartmentRepository interface {
	Save(dept *model.DepartmentModel) error
	FindByID(id string) (*model.DepartmentModel, error)
	FindByName(name string) (*model.DepartmentModel, error)
	FindAll() ([]*model.DepartmentModel, error)
	Delete(id string) error
}

// departmentRepository 部门仓储实现
type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建部门仓储
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

// Save 保存部门
func (r *departmentRepository) Save(dept *model.DepartmentModel) error {
	return r.db.Save(dept).Error
}

// FindByID 根据 ID 查找部门
func (r *departmentRepository) FindByID(id string) (*model.DepartmentModel, error) {
	var dept model.DepartmentModel
	if err := r.db.Where("id = ?", id).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

// FindByName 根据名称查找部门
func (r *departmentRepository) FindByName(name string) (*model.DepartmentModel, error) {
	var dept model.DepartmentModel
	if err := r.db.Where("name = ?", name).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

// FindAll 查找所有部门
func (r *departmentRepository) FindAll() ([]*model.DepartmentModel, error) {
	var depts []*model.DepartmentModel
	err := r.db.Order("name ASC").Find(&depts).Error
	return depts, err
}

// Delete 删除部门
func (r *departmentRepository) Delete(id string) error {
	return r.db.Delete(&model.DepartmentModel{}, "id = ?", id).Error
}
