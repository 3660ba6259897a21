package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// RoleRepository 角色仓储接口
type RoleRepository interface {
	Save(role *model.RoleModel) error
	FindByID(id string) (*model.RoleModel, error)
	FindByName(name string) (*model.RoleModel, error)
	FindAll() ([]*model.RoleModel, error)
	Delete(id string) error
}

// roleRepository 角色仓储实现
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓储
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// Save 保存角色
func (r *roleRepository) Save(role *model.RoleModel) error {
	return r.db.Save(role).Error
}

// FindByID 根据 ID 查找角色
func (r *roleRepository) FindByID(id string) (*model.RoleModel, error) {
	var role model.RoleModel
	if err := r.db.Where("id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// FindByName 根据名称查找角色
func (r *roleRepository) FindByName(name string) (*model.RoleModel, error) {
	var role model.RoleModel
	if err := r.db.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// FindAll 查找所有角色
func (r *roleRepository) FindAll() ([]*model.RoleModel, error) {
	var roles []*model.RoleModel
	err := r.db.Order("name ASC").Find(&roles).Error
	return roles, err
}

// Delete 删除角色
func (r *roleRepository) Delete(id string) error {
	return r.db.Delete(&model.RoleModel{}, "id = ?", id).Error
}
