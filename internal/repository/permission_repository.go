package repository

import (
	"gorm.io/gorm"

	"github.com/Corporate-Prism/EQMS-server-sub000/internal/model"
)

// PermissionRepository 权限仓储接口
type PermissionRepository interface {
	Save(perm *model.PermissionModel) error
	FindByID(id string) (*model.PermissionModel, error)
	FindAll() ([]*model.PermissionModel, error)
	Delete(id string) error

	SaveRolePermission(rp *model.RolePermissionModel) error
	FindByRoleID(roleID string) ([]*model.RolePermissionModel, error)
	DeleteRolePermission(roleID string, permissionID string) error
}

// permissionRepository 权限仓储实现
type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository 创建权限仓储
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

// Save 保存权限
func (r *permissionRepository) Save(perm *model.PermissionModel) error {
	return r.db.Save(perm).Error
}

// FindByID 根据 ID 查找权限
func (r *permissionRepository) FindByID(id string) (*model.PermissionModel, error) {
	var perm model.PermissionModel
	if err := r.db.Where("id = ?", id).First(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

// FindAll 查找所有权限
func (r *permissionRepository) FindAll() ([]*model.PermissionModel, error) {
	var perms []*model.PermissionModel
	err := r.db.Order("name ASC").Find(&perms).Error
	return perms, err
}

// Delete 删除权限
func (r *permissionRepository) Delete(id string) error {
	return r.db.Delete(&model.PermissionModel{}, "id = ?", id).Error
}

// SaveRolePermission 保存角色-权限关联
func (r *permissionRepository) SaveRolePermission(rp *model.RolePermissionModel) error {
	return r.db.Save(rp).Error
}

// FindByRoleID 查找角色的全部权限关联
func (r *permissionRepository) FindByRoleID(roleID string) ([]*model.RolePermissionModel, error) {
	var rps []*model.RolePermissionModel
	err := r.db.Preload("Permission").Where("role_id = ?", roleID).Find(&rps).Error
	return rps, err
}

// DeleteRolePermission 删除角色-权限关联
func (r *permissionRepository) DeleteRolePermission(roleID string, permissionID string) error {
	return r.db.Delete(&model.RolePermissionModel{}, "role_id = ? AND permission_id = ?", roleID, permissionID).Error
}
